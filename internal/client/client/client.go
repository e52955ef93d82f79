package client

import (
	"context"

	"github.com/dmitrijs2005/stockkeeper/internal/live"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/dmitrijs2005/stockkeeper/internal/optional"
)

// ProductStore is the remote product store.
type ProductStore interface {
	// AllProducts re-emits the whole list after every change in the store.
	AllProducts() live.Stream[[]models.Product]
	// TotalInventoryValue re-emits the store-computed total after every change.
	TotalInventoryValue() live.Stream[float64]
	// ProductByID reports an unknown id as absent, not as an error.
	ProductByID(ctx context.Context, id string) (optional.Option[models.Product], error)
	InsertProduct(ctx context.Context, p models.Product) (string, error)
	UpdateProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// AuthGateway signs users in and holds the current session in memory.
type AuthGateway interface {
	LoginUser(ctx context.Context, email, password string) (models.User, error)
	RegisterUser(ctx context.Context, email, password string) (models.User, error)
	CurrentUser() optional.Option[models.User]
	IsUserLoggedIn() bool
	Logout()
}

// Client is everything the CLI needs from the server.
type Client interface {
	ProductStore
	AuthGateway
	Ping(ctx context.Context) error
	ExportSnapshot(ctx context.Context) (string, error)
	Close() error
}
