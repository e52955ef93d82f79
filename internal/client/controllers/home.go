package controllers

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/stockkeeper/internal/client/repositories/auth"
	"github.com/dmitrijs2005/stockkeeper/internal/client/repositories/products"
	"github.com/dmitrijs2005/stockkeeper/internal/live"
	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/dmitrijs2005/stockkeeper/internal/scope"
)

// Home drives the product list screen.
type Home struct {
	products products.Repository
	auth     auth.Repository
	log      logging.Logger
	scope    *scope.Scope

	Products  *live.State[[]models.Product]
	IsLoading *live.State[bool]

	mu         sync.Mutex
	cancelLoad context.CancelFunc
}

func NewHome(parent context.Context, products products.Repository, auth auth.Repository, log logging.Logger) *Home {
	return &Home{
		products:  products,
		auth:      auth,
		log:       log.With("module", "home_controller"),
		scope:     scope.New(parent),
		Products:  live.NewState([]models.Product{}),
		IsLoading: live.NewState(false),
	}
}

// LoadProducts starts following the product list. Without a signed-in user
// the list is emptied and the store is not contacted. A repeated call
// replaces the running subscription.
func (h *Home) LoadProducts() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cancelLoad != nil {
		h.cancelLoad()
		h.cancelLoad = nil
	}

	if !h.auth.CurrentUser().IsPresent() {
		h.Products.Set([]models.Product{})
		h.IsLoading.Set(false)
		return
	}

	h.IsLoading.Set(true)
	cancel, ok := h.scope.Child(h.collect)
	if !ok {
		h.IsLoading.Set(false)
		return
	}
	h.cancelLoad = cancel
}

func (h *Home) collect(ctx context.Context) {
	err := h.products.AllProducts()(ctx, func(list []models.Product) {
		h.publish(ctx, func() {
			h.Products.Set(list)
			h.IsLoading.Set(false)
		})
	})

	h.publish(ctx, func() {
		if err != nil {
			h.log.Error(ctx, "product list subscription failed", "error", err)
			h.Products.Set([]models.Product{})
		}
		h.IsLoading.Set(false)
	})
}

// publish runs set unless ctx was cancelled. LoadProducts cancels under
// h.mu, so a replaced subscription cannot write after the reset.
func (h *Home) publish(ctx context.Context, set func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	set()
}

// Close stops the subscription and waits for it to finish.
func (h *Home) Close() {
	h.scope.Close()
}
