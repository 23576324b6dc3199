package categories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/toyshop-pos/toyshop/internal/shared"
)

// Repository persists categories in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all categories ordered by name.
func (r *Repository) List(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("categories: list: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("categories: scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Get returns the category with the given id.
func (r *Repository) Get(ctx context.Context, id string) (Category, error) {
	var c Category
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, shared.ErrNotFound
	}
	if err != nil {
		return Category{}, fmt.Errorf("categories: get: %w", err)
	}
	return c, nil
}

// Insert stores a new category. Name collisions report shared.ErrDuplicate.
func (r *Repository) Insert(ctx context.Context, c Category) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO categories (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Name, c.Description, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("category %q already exists: %w", c.Name, shared.ErrDuplicate)
		}
		return fmt.Errorf("categories: insert: %w", err)
	}
	return nil
}

// Update stores the mutable fields of a category.
func (r *Repository) Update(ctx context.Context, c Category) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE categories SET name = $2, description = $3, updated_at = $4
		WHERE id = $1`,
		c.ID, c.Name, c.Description, c.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("category %q already exists: %w", c.Name, shared.ErrDuplicate)
		}
		return fmt.Errorf("categories: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ProductCount returns how many products reference the category.
func (r *Repository) ProductCount(ctx context.Context, id string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE category_id = $1`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("categories: product count: %w", err)
	}
	return n, nil
}

// Delete removes a category.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("categories: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
