// Package products is the client-side product repository. It forwards to the
// remote product store and adds nothing but logging: ordering, error values
// and absence semantics are the store's.
package products

import (
	"context"

	"github.com/dmitrijs2005/stockkeeper/internal/client/client"
	"github.com/dmitrijs2005/stockkeeper/internal/live"
	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/dmitrijs2005/stockkeeper/internal/optional"
)

type Repository interface {
	AllProducts() live.Stream[[]models.Product]
	TotalInventoryValue() live.Stream[float64]
	ProductByID(ctx context.Context, id string) (optional.Option[models.Product], error)
	InsertProduct(ctx context.Context, p models.Product) (string, error)
	UpdateProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

type RemoteRepository struct {
	store client.ProductStore
	log   logging.Logger
}

var _ Repository = (*RemoteRepository)(nil)

func NewRemoteRepository(store client.ProductStore, log logging.Logger) *RemoteRepository {
	return &RemoteRepository{store: store, log: log.With("module", "products_repository")}
}

func (r *RemoteRepository) AllProducts() live.Stream[[]models.Product] {
	return r.store.AllProducts()
}

func (r *RemoteRepository) TotalInventoryValue() live.Stream[float64] {
	return r.store.TotalInventoryValue()
}

func (r *RemoteRepository) ProductByID(ctx context.Context, id string) (optional.Option[models.Product], error) {
	return r.store.ProductByID(ctx, id)
}

func (r *RemoteRepository) InsertProduct(ctx context.Context, p models.Product) (string, error) {
	id, err := r.store.InsertProduct(ctx, p)
	if err != nil {
		return "", err
	}
	r.log.Debug(ctx, "product inserted", "id", id)
	return id, nil
}

func (r *RemoteRepository) UpdateProduct(ctx context.Context, p models.Product) error {
	if err := r.store.UpdateProduct(ctx, p); err != nil {
		return err
	}
	r.log.Debug(ctx, "product updated", "id", p.ID)
	return nil
}

func (r *RemoteRepository) DeleteProduct(ctx context.Context, id string) error {
	if err := r.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	r.log.Debug(ctx, "product deleted", "id", id)
	return nil
}
