// Package settings stores the store-wide key/value configuration: store
// identity, tax percentage, cashier discount permission.
package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/toyshop-pos/toyshop/internal/shared"
)

// Well-known setting keys.
const (
	KeyStoreName              = "store_name"
	KeyStoreAddress           = "store_address"
	KeyStorePhone             = "store_phone"
	KeyReceiptFooter          = "receipt_footer"
	KeyTaxPercentage          = "tax_percentage"
	KeyCashierDiscountAllowed = "cashier_discount_allowed"
)

// Repository persists settings in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get returns the value for a key.
func (r *Repository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.pool.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", shared.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("settings: get: %w", err)
	}
	return value, nil
}

// All returns every stored setting.
func (r *Repository) All(ctx context.Context) (map[string]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("settings: all: %w", err)
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("settings: scan: %w", err)
		}
		out[key] = value
	}
	return out, rows.Err()
}

// Set upserts a key.
func (r *Repository) Set(ctx context.Context, key, value string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value)
	if err != nil {
		return fmt.Errorf("settings: set: %w", err)
	}
	return nil
}
