package metadata

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func TestSetAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k1", []byte{0x01, 0x02}))

	v, found, err := r.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte{0x01, 0x02}, v)
}

func TestGet_Absent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, found, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, v)
}

func TestSet_Upsert(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("old")))
	require.NoError(t, r.Set(ctx, "k", []byte("new")))

	v, _, err := r.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("new"), v)
}

func TestListDeleteClear(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte{0xAA}))
	require.NoError(t, r.Set(ctx, "b", []byte{0xBB, 0xCC}))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"a": {0xAA}, "b": {0xBB, 0xCC}}, m)

	require.NoError(t, r.Delete(ctx, "a"))
	require.NoError(t, r.Delete(ctx, "a"), "deleting twice is fine")
	_, found, err := r.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, r.Clear(ctx))
	m, err = r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestBoolean(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	v, err := r.GetBoolean(ctx, "logged_in", false)
	require.NoError(t, err)
	assert.False(t, v, "absent key yields the default")

	v, err = r.GetBoolean(ctx, "logged_in", true)
	require.NoError(t, err)
	assert.True(t, v)

	require.NoError(t, r.PutBoolean(ctx, "logged_in", true))
	v, err = r.GetBoolean(ctx, "logged_in", false)
	require.NoError(t, err)
	assert.True(t, v)

	require.NoError(t, r.Set(ctx, "broken", []byte("maybe")))
	v, err = r.GetBoolean(ctx, "broken", true)
	require.Error(t, err)
	assert.True(t, v)
}

func TestDBErrorsWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, _, err := r.Get(ctx, "k")
	require.ErrorContains(t, err, "failed to get metadata[k]")

	require.ErrorContains(t, r.Set(ctx, "k", []byte("v")), "failed to set metadata[k]")
	require.ErrorContains(t, r.Delete(ctx, "k"), "failed to delete metadata[k]")
	require.ErrorContains(t, r.Clear(ctx), "failed to clear metadata")

	_, err = r.List(ctx)
	require.ErrorContains(t, err, "failed to list metadata")

	_, err = r.GetBoolean(ctx, "k", false)
	require.Error(t, err)
}
