package products

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	total, err := repo.Total(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)

	require.NoError(t, repo.Upsert(ctx, models.Product{ID: "b", Code: 2, Name: "Bolt", Price: 0.5, Quantity: 10}))
	require.NoError(t, repo.Upsert(ctx, models.Product{ID: "a", Code: 2, Name: "Anchor", Price: 1, Quantity: 1}))
	require.NoError(t, repo.Upsert(ctx, models.Product{ID: "w", Code: 1, Name: "Widget", Price: 9.99, Quantity: 7}))

	list, err = repo.List(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(list))
	for _, p := range list {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"w", "a", "b"}, ids)

	total, err = repo.Total(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 75.93, total, 1e-9)

	require.NoError(t, repo.Upsert(ctx, models.Product{ID: "w", Code: 1, Name: "Widget", Price: 10, Quantity: 1}))
	got, err := repo.Get(ctx, "w")
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.Price)

	require.NoError(t, repo.Delete(ctx, "w"))
	require.NoError(t, repo.Delete(ctx, "w"))

	_, err = repo.Get(ctx, "w")
	require.ErrorIs(t, err, common.ErrorNotFound)
}
