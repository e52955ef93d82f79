package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

var _ Repository = (*PostgresRepository)(nil)

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (email, salt, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.Salt, user.PasswordHash).Scan(&user.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx,
		`SELECT id, email, password_hash, salt FROM users
		 WHERE email = $1
		 `, email)
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.getUser(ctx,
		`SELECT id, email, password_hash, salt FROM users
		 WHERE id = $1
		 `, id)
}

func (r *PostgresRepository) getUser(ctx context.Context, query string, arg string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Salt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}
