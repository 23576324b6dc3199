package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/toyshop-pos/toyshop/internal/shared"
)

// Repository persists stock positions in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const itemSelect = `
	SELECT i.product_id, p.name, COALESCE(p.barcode, ''), i.quantity, p.min_stock, i.updated_at
	FROM inventory i
	JOIN products p ON p.id = i.product_id`

func scanItem(row pgx.Row) (Item, error) {
	var it Item
	err := row.Scan(&it.ProductID, &it.ProductName, &it.Barcode, &it.Quantity, &it.MinStock, &it.UpdatedAt)
	return it, err
}

// Get returns one product's stock position.
func (r *Repository) Get(ctx context.Context, productID string) (Item, error) {
	it, err := scanItem(r.pool.QueryRow(ctx, itemSelect+` WHERE i.product_id = $1`, productID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, shared.ErrNotFound
	}
	if err != nil {
		return Item{}, fmt.Errorf("inventory: get: %w", err)
	}
	return it, nil
}

// List returns all stock positions ordered by product name.
func (r *Repository) List(ctx context.Context) ([]Item, error) {
	rows, err := r.pool.Query(ctx, itemSelect+` ORDER BY p.name`)
	if err != nil {
		return nil, fmt.Errorf("inventory: list: %w", err)
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("inventory: scan: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ListLowStock returns available products at or below their minimum stock.
func (r *Repository) ListLowStock(ctx context.Context) ([]Item, error) {
	rows, err := r.pool.Query(ctx, itemSelect+`
		WHERE i.quantity <= p.min_stock AND p.status = 'available'
		ORDER BY p.name`)
	if err != nil {
		return nil, fmt.Errorf("inventory: list low stock: %w", err)
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("inventory: scan: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Adjust applies a manual adjustment and returns the resulting quantity.
// Subtract clamps at zero so manual corrections never drive stock negative.
func (r *Repository) Adjust(ctx context.Context, productID string, mode AdjustMode, amount int) (int, error) {
	const query = `
		UPDATE inventory
		SET quantity = CASE
			WHEN $2 = 'add' THEN quantity + $3
			WHEN $2 = 'subtract' THEN GREATEST(quantity - $3, 0)
			ELSE $3
		END,
		updated_at = now()
		WHERE product_id = $1
		RETURNING quantity`

	var quantity int
	err := r.pool.QueryRow(ctx, query, productID, string(mode), amount).Scan(&quantity)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, shared.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("inventory: adjust: %w", err)
	}
	return quantity, nil
}
