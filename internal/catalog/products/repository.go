package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/toyshop-pos/toyshop/internal/platform/db"
	"github.com/toyshop-pos/toyshop/internal/shared"
)

// Repository persists products in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const productSelect = `
	SELECT p.id, p.name, p.description, COALESCE(p.barcode, ''), p.category_id, c.name,
	       p.purchase_price, p.selling_price, p.min_stock, p.age_group, p.status,
	       p.created_at, p.updated_at, COALESCE(i.quantity, 0)
	FROM products p
	JOIN categories c ON c.id = p.category_id
	LEFT JOIN inventory i ON i.product_id = p.id`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Barcode, &p.CategoryID, &p.CategoryName,
		&p.PurchasePrice, &p.SellingPrice, &p.MinStock, &p.AgeGroup, &p.Status,
		&p.CreatedAt, &p.UpdatedAt, &p.Quantity,
	)
	return p, err
}

// List returns products matching the filter, ordered by name. Search matches
// name substrings or exact barcodes.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	query := productSelect + ` WHERE 1=1`
	args := []any{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%", filter.Search)
		query += fmt.Sprintf(" AND (p.name ILIKE $%d OR p.barcode = $%d)", len(args)-1, len(args))
	}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		query += fmt.Sprintf(" AND p.category_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND p.status = $%d", len(args))
	}
	query += ` ORDER BY p.name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("products: list: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("products: scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Get returns the product with the given id.
func (r *Repository) Get(ctx context.Context, id string) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, productSelect+` WHERE p.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, shared.ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("products: get: %w", err)
	}
	return p, nil
}

// GetByBarcode returns the product with the given barcode.
func (r *Repository) GetByBarcode(ctx context.Context, barcode string) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, productSelect+` WHERE p.barcode = $1`, barcode))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, shared.ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("products: get by barcode: %w", err)
	}
	return p, nil
}

// Insert stores a new product and its zero-quantity inventory row in a
// single transaction so a product never exists without a stock record.
func (r *Repository) Insert(ctx context.Context, p Product) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO products (id, name, description, barcode, category_id, purchase_price, selling_price, min_stock, age_group, status, created_at, updated_at)
			VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, $12)`,
			p.ID, p.Name, p.Description, p.Barcode, p.CategoryID, p.PurchasePrice, p.SellingPrice, p.MinStock, p.AgeGroup, p.Status, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) {
				switch pgErr.Code {
				case "23505":
					return fmt.Errorf("barcode %q already registered: %w", p.Barcode, shared.ErrDuplicate)
				case "23503":
					return fmt.Errorf("category %s does not exist: %w", p.CategoryID, shared.ErrNotFound)
				}
			}
			return fmt.Errorf("products: insert: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO inventory (product_id, quantity, updated_at)
			VALUES ($1, 0, $2)`,
			p.ID, p.CreatedAt)
		if err != nil {
			return fmt.Errorf("products: insert inventory row: %w", err)
		}
		return nil
	})
}

// Update stores the mutable fields of a product.
func (r *Repository) Update(ctx context.Context, p Product) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products
		SET name = $2, description = $3, barcode = NULLIF($4, ''), category_id = $5,
		    purchase_price = $6, selling_price = $7, min_stock = $8, age_group = $9, status = $10, updated_at = $11
		WHERE id = $1`,
		p.ID, p.Name, p.Description, p.Barcode, p.CategoryID, p.PurchasePrice, p.SellingPrice, p.MinStock, p.AgeGroup, p.Status, p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("barcode %q already registered: %w", p.Barcode, shared.ErrDuplicate)
		}
		return fmt.Errorf("products: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a product. Products referenced by past sales cannot be
// removed and are marked discontinued instead; the caller learns which
// happened through the returned flag.
func (r *Repository) Delete(ctx context.Context, id string) (discontinued bool, err error) {
	err = db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var refs int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM sale_items WHERE product_id = $1`, id).Scan(&refs); err != nil {
			return fmt.Errorf("products: count references: %w", err)
		}

		if refs > 0 {
			tag, err := tx.Exec(ctx, `UPDATE products SET status = $2, updated_at = now() WHERE id = $1`, id, StatusDiscontinued)
			if err != nil {
				return fmt.Errorf("products: discontinue: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return shared.ErrNotFound
			}
			discontinued = true
			return nil
		}

		if _, err := tx.Exec(ctx, `DELETE FROM inventory WHERE product_id = $1`, id); err != nil {
			return fmt.Errorf("products: delete inventory row: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("products: delete: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
	return discontinued, err
}
