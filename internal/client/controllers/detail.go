package controllers

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/stockkeeper/internal/client/repositories/products"
	"github.com/dmitrijs2005/stockkeeper/internal/live"
	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/dmitrijs2005/stockkeeper/internal/optional"
	"github.com/dmitrijs2005/stockkeeper/internal/scope"
)

var (
	ErrNoProductLoaded = errors.New("no product loaded")
	ErrClosed          = errors.New("controller closed")
)

// Detail drives the single product screen.
type Detail struct {
	repo  products.Repository
	log   logging.Logger
	scope *scope.Scope

	Product   *live.State[optional.Option[models.Product]]
	IsLoading *live.State[bool]
}

func NewDetail(parent context.Context, repo products.Repository, log logging.Logger) *Detail {
	return &Detail{
		repo:      repo,
		log:       log.With("module", "detail_controller"),
		scope:     scope.New(parent),
		Product:   live.NewState(optional.None[models.Product]()),
		IsLoading: live.NewState(false),
	}
}

// LoadProduct fetches id into Product. An empty id is ignored. IsLoading is
// true from the call until the lookup finishes, whatever its outcome; a
// failed lookup leaves Product absent.
func (d *Detail) LoadProduct(id string) {
	if id == "" {
		return
	}

	d.IsLoading.Set(true)
	ok := d.scope.Go(func(ctx context.Context) {
		defer d.IsLoading.Set(false)

		p, err := d.repo.ProductByID(ctx, id)
		if err != nil {
			d.log.Error(ctx, "load product failed", "id", id, "error", err)
			d.Product.Set(optional.None[models.Product]())
			return
		}
		d.Product.Set(p)
	})
	if !ok {
		d.IsLoading.Set(false)
	}
}

// DeleteCurrentProduct deletes the loaded product. Exactly one of onDeleted
// and onError is called, once. Without a loaded product onError runs
// immediately with ErrNoProductLoaded.
func (d *Detail) DeleteCurrentProduct(onDeleted func(), onError func(error)) {
	current, ok := d.Product.Value().Get()
	if !ok {
		onError(ErrNoProductLoaded)
		return
	}

	launched := d.scope.Go(func(ctx context.Context) {
		if err := d.deleteProduct(ctx, current.ID); err != nil {
			d.log.Warn(ctx, "delete product failed", "id", current.ID, "error", err)
			onError(err)
			return
		}
		onDeleted()
	})
	if !launched {
		onError(ErrClosed)
	}
}

// deleteProduct turns a panic in the repository into an error.
func (d *Detail) deleteProduct(ctx context.Context, id string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("delete product %s: panic: %v", id, r)
		}
	}()
	return d.repo.DeleteProduct(ctx, id)
}

func (d *Detail) Close() {
	d.scope.Close()
}
