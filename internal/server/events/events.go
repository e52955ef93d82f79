// Package events publishes product change events for downstream consumers.
package events

import (
	"context"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/models"
)

type Type string

const (
	ProductInserted Type = "product.inserted"
	ProductUpdated  Type = "product.updated"
	ProductDeleted  Type = "product.deleted"
)

// ProductEvent is one store change. For deletions only Product.ID is set.
type ProductEvent struct {
	Type    Type           `json:"type"`
	Product models.Product `json:"product"`
	At      time.Time      `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev ProductEvent) error
	Close() error
}

// NopPublisher drops every event. It is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ProductEvent) error { return nil }
func (NopPublisher) Close() error { return nil }
