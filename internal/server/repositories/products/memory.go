package products

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
)

// MemoryRepository keeps products in a map. Contents are lost on restart.
type MemoryRepository struct {
	mu   sync.RWMutex
	data map[string]models.Product
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[string]models.Product)}
}

func (r *MemoryRepository) List(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	list := make([]models.Product, 0, len(r.data))
	for _, p := range r.data {
		list = append(list, p)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].Code != list[j].Code {
			return list[i].Code < list[j].Code
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.data[id]
	if !ok {
		return models.Product{}, common.ErrorNotFound
	}
	return p, nil
}

func (r *MemoryRepository) Upsert(_ context.Context, p models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[p.ID] = p
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, id)
	return nil
}

func (r *MemoryRepository) Total(_ context.Context) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total float64
	for _, p := range r.data {
		total += p.Total()
	}
	return total, nil
}
