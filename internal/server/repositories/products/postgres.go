package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

var _ Repository = (*PostgresRepository)(nil)

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.Product, error) {
	query := `
		SELECT id, code, name, price, quantity
		FROM products
		ORDER BY code, id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	list := make([]models.Product, 0)
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Price, &p.Quantity); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return list, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (models.Product, error) {
	query := `
		SELECT id, code, name, price, quantity
		FROM products
		WHERE id = $1
	`

	var p models.Product
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Code, &p.Name, &p.Price, &p.Quantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Product{}, common.ErrorNotFound
		}
		return models.Product{}, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, p models.Product) error {
	query := `
		INSERT INTO products (id, code, name, price, quantity)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET code = EXCLUDED.code,
		    name = EXCLUDED.name,
		    price = EXCLUDED.price,
		    quantity = EXCLUDED.quantity,
		    updated_at = now()
	`

	if _, err := r.db.ExecContext(ctx, query, p.ID, p.Code, p.Name, p.Price, p.Quantity); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM products
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Total(ctx context.Context) (float64, error) {
	query := `
		SELECT COALESCE(SUM(price * quantity), 0)
		FROM products
	`

	var total float64
	if err := r.db.QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return total, nil
}
