// Package auth is the client-side authentication repository over the auth gateway.
package auth

import (
	"context"

	"github.com/dmitrijs2005/stockkeeper/internal/client/client"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/dmitrijs2005/stockkeeper/internal/optional"
)

type Repository interface {
	Login(ctx context.Context, email, password string) (models.User, error)
	Register(ctx context.Context, email, password string) (models.User, error)
	IsUserLoggedIn() bool
	CurrentUser() optional.Option[models.User]
	Logout()
}

type GatewayRepository struct {
	gw client.AuthGateway
}

var _ Repository = (*GatewayRepository)(nil)

func NewGatewayRepository(gw client.AuthGateway) *GatewayRepository {
	return &GatewayRepository{gw: gw}
}

// Login returns the gateway's error unchanged.
func (r *GatewayRepository) Login(ctx context.Context, email, password string) (models.User, error) {
	return r.gw.LoginUser(ctx, email, password)
}

func (r *GatewayRepository) Register(ctx context.Context, email, password string) (models.User, error) {
	return r.gw.RegisterUser(ctx, email, password)
}

func (r *GatewayRepository) IsUserLoggedIn() bool {
	return r.gw.IsUserLoggedIn()
}

func (r *GatewayRepository) CurrentUser() optional.Option[models.User] {
	return r.gw.CurrentUser()
}

func (r *GatewayRepository) Logout() {
	r.gw.Logout()
}
