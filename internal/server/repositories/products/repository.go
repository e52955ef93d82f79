// Package products stores inventory lines. Three backends share one
// contract: PostgreSQL, MongoDB and an in-process map.
package products

import (
	"context"

	"github.com/dmitrijs2005/stockkeeper/internal/models"
)

type Repository interface {
	// List returns every product ordered by code, then id. Never nil.
	List(ctx context.Context) ([]models.Product, error)
	// Get returns common.ErrorNotFound for an unknown id.
	Get(ctx context.Context, id string) (models.Product, error)
	// Upsert stores p under p.ID, replacing any existing record.
	Upsert(ctx context.Context, p models.Product) error
	// Delete removes id; a missing id is not an error.
	Delete(ctx context.Context, id string) error
	// Total is the sum of price*quantity over all products, 0 when empty.
	Total(ctx context.Context) (float64, error)
}
