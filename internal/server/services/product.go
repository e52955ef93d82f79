package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/dmitrijs2005/stockkeeper/internal/server/events"
	"github.com/dmitrijs2005/stockkeeper/internal/server/notify"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/products"
	"github.com/google/uuid"
)

// ChangeFeed hands out change signals, see notify.Hub.
type ChangeFeed interface {
	Subscribe() (<-chan struct{}, func())
}

type SnapshotExporter interface {
	Export(ctx context.Context, key string, body []byte) (string, error)
}

// Snapshot is the exported document.
type Snapshot struct {
	ExportedAt time.Time        `json:"exported_at"`
	ExportedBy string           `json:"exported_by"`
	Total      float64          `json:"total"`
	Products   []models.Product `json:"products"`
}

// ProductService is the server side of the remote store. Every successful
// mutation signals the notifier, which wakes the live streams, and then
// publishes a change event; event failures are logged and never fail the
// mutation.
type ProductService struct {
	repo     products.Repository
	notifier notify.Notifier
	changes  ChangeFeed
	events   events.Publisher
	exporter SnapshotExporter
	log      logging.Logger
	now      func() time.Time
}

func NewProductService(repo products.Repository, notifier notify.Notifier, changes ChangeFeed,
	publisher events.Publisher, exporter SnapshotExporter, log logging.Logger) *ProductService {
	return &ProductService{
		repo:     repo,
		notifier: notifier,
		changes:  changes,
		events:   publisher,
		exporter: exporter,
		log:      log.With("module", "products"),
		now:      time.Now,
	}
}

func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	return s.repo.List(ctx)
}

func (s *ProductService) Get(ctx context.Context, id string) (models.Product, error) {
	if strings.TrimSpace(id) == "" {
		return models.Product{}, common.ErrorNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *ProductService) Total(ctx context.Context) (float64, error) {
	return s.repo.Total(ctx)
}

// Insert stores p under a freshly generated id, ignoring any id the caller
// set, and returns that id.
func (s *ProductService) Insert(ctx context.Context, p models.Product) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	p.ID = uuid.NewString()

	if err := s.repo.Upsert(ctx, p); err != nil {
		return "", fmt.Errorf("insert product: %w", err)
	}
	s.changed(ctx, events.ProductInserted, p)
	return p.ID, nil
}

// Update replaces the record stored under p.ID, creating it when absent.
func (s *ProductService) Update(ctx context.Context, p models.Product) error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: product id is required", common.ErrorValidation)
	}
	if err := p.Validate(); err != nil {
		return err
	}

	if err := s.repo.Upsert(ctx, p); err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	s.changed(ctx, events.ProductUpdated, p)
	return nil
}

// Delete removes id. Deleting an unknown id succeeds.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: product id is required", common.ErrorValidation)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.changed(ctx, events.ProductDeleted, models.Product{ID: id})
	return nil
}

// WatchProducts sends the full product list now and again after every
// change until ctx is done or send fails.
func (s *ProductService) WatchProducts(ctx context.Context, send func([]models.Product) error) error {
	return watch(ctx, s.changes, s.repo.List, send)
}

// WatchTotal is WatchProducts for the inventory value.
func (s *ProductService) WatchTotal(ctx context.Context, send func(float64) error) error {
	return watch(ctx, s.changes, s.repo.Total, send)
}

// ExportSnapshot writes the current inventory as a JSON document to object
// storage and returns a time-limited download URL.
func (s *ProductService) ExportSnapshot(ctx context.Context, userID string) (string, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return "", fmt.Errorf("export snapshot: %w", err)
	}

	now := s.now().UTC()
	body, err := json.MarshalIndent(Snapshot{
		ExportedAt: now,
		ExportedBy: userID,
		Total:      models.TotalOf(list),
		Products:   list,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("export snapshot: %w", err)
	}

	key := fmt.Sprintf("exports/%d/%02d/%02d/%s.json", now.Year(), now.Month(), now.Day(), uuid.NewString())
	url, err := s.exporter.Export(ctx, key, body)
	if err != nil {
		return "", fmt.Errorf("export snapshot: %w", err)
	}

	s.log.Info(ctx, "snapshot exported", "key", key, "products", len(list))
	return url, nil
}

func (s *ProductService) changed(ctx context.Context, typ events.Type, p models.Product) {
	s.notifier.Notify(ctx)

	ev := events.ProductEvent{Type: typ, Product: p, At: s.now().UTC()}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn(ctx, "publishing product event failed", "type", typ, "id", p.ID, "error", err)
	}
}

// watch subscribes before the first query so a change racing with it is
// never lost.
func watch[T any](ctx context.Context, feed ChangeFeed, query func(context.Context) (T, error), send func(T) error) error {
	ch, cancel := feed.Subscribe()
	defer cancel()

	for {
		v, err := query(ctx)
		if err != nil {
			return err
		}
		if err := send(v); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
	}
}
