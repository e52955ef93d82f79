package controllers

import (
	"context"

	"github.com/dmitrijs2005/stockkeeper/internal/client/repositories/products"
	"github.com/dmitrijs2005/stockkeeper/internal/live"
	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/dmitrijs2005/stockkeeper/internal/optional"
	"github.com/dmitrijs2005/stockkeeper/internal/scope"
)

// Products is the shared CRUD controller used by the list, add and edit screens.
//
// ProductsFlow and TotalFlow subscribe to the store on first use and keep the
// subscription until Close. Add, Update and Delete do not report their
// outcome; a failure is only logged, and the flows show the result once the
// store re-emits.
type Products struct {
	repo  products.Repository
	log   logging.Logger
	scope *scope.Scope

	ProductsFlow *live.Shared[[]models.Product]
	TotalFlow    *live.Shared[float64]
}

func NewProducts(parent context.Context, repo products.Repository, log logging.Logger) *Products {
	c := &Products{
		repo:  repo,
		log:   log.With("module", "products_controller"),
		scope: scope.New(parent),
	}

	c.ProductsFlow = live.NewShared(repo.AllProducts(), []models.Product{}, c.scope.Go, func(err error) {
		c.log.Error(context.Background(), "products flow failed", "error", err)
	})
	c.TotalFlow = live.NewShared(repo.TotalInventoryValue(), 0.0, c.scope.Go, func(err error) {
		c.log.Error(context.Background(), "total flow failed", "error", err)
	})

	return c
}

// ProductByID looks id up in the list currently held by ProductsFlow. It is
// absent until the flow has emitted a list containing id.
func (c *Products) ProductByID(id string) optional.Option[models.Product] {
	c.ProductsFlow.Start()

	p, ok := models.FindByID(c.ProductsFlow.Value(), id)
	if !ok {
		return optional.None[models.Product]()
	}
	return optional.Some(p)
}

func (c *Products) AddProduct(p models.Product) {
	c.scope.Go(func(ctx context.Context) {
		if _, err := c.repo.InsertProduct(ctx, p); err != nil {
			c.log.Warn(ctx, "add product failed, result dropped", "name", p.Name, "error", err)
		}
	})
}

func (c *Products) UpdateProduct(p models.Product) {
	c.scope.Go(func(ctx context.Context) {
		if err := c.repo.UpdateProduct(ctx, p); err != nil {
			c.log.Warn(ctx, "update product failed, result dropped", "id", p.ID, "error", err)
		}
	})
}

func (c *Products) DeleteProduct(id string) {
	c.scope.Go(func(ctx context.Context) {
		if err := c.repo.DeleteProduct(ctx, id); err != nil {
			c.log.Warn(ctx, "delete product failed, result dropped", "id", id, "error", err)
		}
	})
}

// Close cancels the flows and any pending mutation.
func (c *Products) Close() {
	c.scope.Close()
}
