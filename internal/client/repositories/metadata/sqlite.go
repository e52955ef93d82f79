// Package metadata is the client's local key/value store. It backs the
// session flag and any other small piece of client state that must survive
// a restart.
package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
)

type Repository interface {
	// Get reports found=false for an absent key.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error

	GetBoolean(ctx context.Context, key string, def bool) (bool, error)
	PutBoolean(ctx context.Context, key string, v bool) error
}

type SQLiteRepository struct {
	db dbx.DBTX
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return value, true, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM metadata`); err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) (map[string][]byte, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM metadata`)
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]byte)
	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		result[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate metadata rows: %w", err)
	}
	return result, nil
}

// GetBoolean returns def when key is absent. A stored value that is not a
// boolean is an error.
func (r *SQLiteRepository) GetBoolean(ctx context.Context, key string, def bool) (bool, error) {
	raw, found, err := r.Get(ctx, key)
	if err != nil || !found {
		return def, err
	}
	v, err := strconv.ParseBool(string(raw))
	if err != nil {
		return def, fmt.Errorf("metadata[%s] is not a boolean: %w", key, err)
	}
	return v, nil
}

func (r *SQLiteRepository) PutBoolean(ctx context.Context, key string, v bool) error {
	return r.Set(ctx, key, []byte(strconv.FormatBool(v)))
}
