package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/toyshop-pos/toyshop/internal/shared"
)

// Repository loads staff accounts for credential checks.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository backed by PostgreSQL.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindByUsername returns the account with the given username.
func (r *Repository) FindByUsername(ctx context.Context, username string) (User, error) {
	const query = `
		SELECT id, username, full_name, password_hash, role, active
		FROM users
		WHERE username = $1`

	var u User
	err := r.pool.QueryRow(ctx, query, username).Scan(
		&u.ID, &u.Username, &u.FullName, &u.PasswordHash, &u.Role, &u.Active,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, shared.ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("auth: find by username: %w", err)
	}
	return u, nil
}

// FindByID returns the account with the given id.
func (r *Repository) FindByID(ctx context.Context, id string) (User, error) {
	const query = `
		SELECT id, username, full_name, password_hash, role, active
		FROM users
		WHERE id = $1`

	var u User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Username, &u.FullName, &u.PasswordHash, &u.Role, &u.Active,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, shared.ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("auth: find by id: %w", err)
	}
	return u, nil
}
