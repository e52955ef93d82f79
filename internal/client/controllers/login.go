package controllers

import (
	"context"

	"github.com/dmitrijs2005/stockkeeper/internal/client/repositories/auth"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
)

// Login passes sign-in calls through to the auth repository.
type Login struct {
	auth auth.Repository
}

func NewLogin(auth auth.Repository) *Login {
	return &Login{auth: auth}
}

func (l *Login) Login(ctx context.Context, email, password string) (models.User, error) {
	return l.auth.Login(ctx, email, password)
}

func (l *Login) Register(ctx context.Context, email, password string) (models.User, error) {
	return l.auth.Register(ctx, email, password)
}

func (l *Login) IsUserLoggedIn() bool {
	return l.auth.IsUserLoggedIn()
}
