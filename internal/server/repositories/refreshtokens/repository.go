// Package refreshtokens stores the opaque refresh tokens issued at sign-in.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
)

type Repository interface {
	// Create stores token for userID, valid for validity from now.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error
	// Find returns common.ErrorNotFound for an unknown token.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)
	// Delete removes token; a missing token is not an error.
	Delete(ctx context.Context, token string) error
	// DeleteExpired purges tokens that expired before now and reports how many.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
