// Package users stores user accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills its ID. A taken email is common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetUserByEmail returns common.ErrorNotFound for an unknown email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID returns common.ErrorNotFound for an unknown id.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}
