package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/toyshop-pos/toyshop/internal/platform/db"
	"github.com/toyshop-pos/toyshop/internal/shared"
)

// StockRow is the locked stock position of a product during checkout.
// PurchasePrice is captured onto the sale line for profit reporting.
type StockRow struct {
	ProductID     string
	Name          string
	PurchasePrice float64
	Quantity      int
}

// TxRepository is the write surface available inside a checkout transaction.
type TxRepository interface {
	NextBillNumber(ctx context.Context) (string, error)
	StockForUpdate(ctx context.Context, productID string) (StockRow, error)
	DecrementStock(ctx context.Context, productID string, quantity int) error
	InsertSale(ctx context.Context, sale Sale) error
	InsertSaleItem(ctx context.Context, item SaleItem) error
}

// Repository persists sales in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx runs fn inside a serializable transaction against a transactional
// view of the repository. Stock checks and the writes they guard stay in
// the same transaction, so two checkouts can never both take the last unit.
func (r *Repository) WithTx(ctx context.Context, fn func(tx TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

// NextBillNumber returns one past the highest numeric bill number on
// record, starting at "1". Non-numeric bill numbers are ignored.
func (r *txRepository) NextBillNumber(ctx context.Context) (string, error) {
	const query = `
		SELECT COALESCE(MAX(bill_number::bigint), 0) + 1
		FROM sales
		WHERE bill_number ~ '^[0-9]+$'`

	var next int64
	if err := r.tx.QueryRow(ctx, query).Scan(&next); err != nil {
		return "", fmt.Errorf("sales: next bill number: %w", err)
	}
	return fmt.Sprintf("%d", next), nil
}

func (r *txRepository) StockForUpdate(ctx context.Context, productID string) (StockRow, error) {
	const query = `
		SELECT p.id, p.name, p.purchase_price, i.quantity
		FROM products p
		JOIN inventory i ON i.product_id = p.id
		WHERE p.id = $1 AND p.status = 'available'
		FOR UPDATE OF i`

	var row StockRow
	err := r.tx.QueryRow(ctx, query, productID).
		Scan(&row.ProductID, &row.Name, &row.PurchasePrice, &row.Quantity)
	if errors.Is(err, pgx.ErrNoRows) {
		return StockRow{}, fmt.Errorf("product %s not found or not available: %w", productID, shared.ErrNotFound)
	}
	if err != nil {
		return StockRow{}, fmt.Errorf("sales: stock for update: %w", err)
	}
	return row, nil
}

func (r *txRepository) DecrementStock(ctx context.Context, productID string, quantity int) error {
	_, err := r.tx.Exec(ctx, `
		UPDATE inventory SET quantity = quantity - $2, updated_at = now()
		WHERE product_id = $1`,
		productID, quantity)
	if err != nil {
		return fmt.Errorf("sales: decrement stock: %w", err)
	}
	return nil
}

func (r *txRepository) InsertSale(ctx context.Context, sale Sale) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO sales (id, bill_number, cashier_id, customer_name, customer_phone, subtotal, tax_percentage, tax, discount, total, payment_method, paid, change, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		sale.ID, sale.BillNumber, sale.CashierID, sale.CustomerName, sale.CustomerPhone,
		sale.Subtotal, sale.TaxPercentage, sale.Tax, sale.Discount, sale.Total,
		sale.PaymentMethod, sale.Paid, sale.Change, sale.Notes, sale.CreatedAt)
	if err != nil {
		return fmt.Errorf("sales: insert sale: %w", err)
	}
	return nil
}

func (r *txRepository) InsertSaleItem(ctx context.Context, item SaleItem) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO sale_items (id, sale_id, product_id, product_name, quantity, unit_price, purchase_price, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		item.ID, item.SaleID, item.ProductID, item.ProductName, item.Quantity,
		item.UnitPrice, item.PurchasePrice, item.LineTotal)
	if err != nil {
		return fmt.Errorf("sales: insert sale item: %w", err)
	}
	return nil
}

const saleSelect = `
	SELECT s.id, s.bill_number, s.cashier_id, COALESCE(u.full_name, ''),
	       s.customer_name, s.customer_phone, s.subtotal, s.tax_percentage, s.tax,
	       s.discount, s.total, s.payment_method, s.paid, s.change, s.notes, s.created_at
	FROM sales s
	LEFT JOIN users u ON u.id = s.cashier_id`

func scanSale(row pgx.Row) (Sale, error) {
	var s Sale
	err := row.Scan(
		&s.ID, &s.BillNumber, &s.CashierID, &s.CashierName,
		&s.CustomerName, &s.CustomerPhone, &s.Subtotal, &s.TaxPercentage, &s.Tax,
		&s.Discount, &s.Total, &s.PaymentMethod, &s.Paid, &s.Change, &s.Notes, &s.CreatedAt,
	)
	return s, err
}

// Get returns a sale without its items.
func (r *Repository) Get(ctx context.Context, id string) (Sale, error) {
	sale, err := scanSale(r.pool.QueryRow(ctx, saleSelect+` WHERE s.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Sale{}, shared.ErrNotFound
	}
	if err != nil {
		return Sale{}, fmt.Errorf("sales: get: %w", err)
	}
	return sale, nil
}

// ListItems returns the lines of a sale.
func (r *Repository) ListItems(ctx context.Context, saleID string) ([]SaleItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, sale_id, product_id, product_name, quantity, unit_price, purchase_price, line_total
		FROM sale_items WHERE sale_id = $1
		ORDER BY product_name`, saleID)
	if err != nil {
		return nil, fmt.Errorf("sales: list items: %w", err)
	}
	defer rows.Close()

	var out []SaleItem
	for rows.Next() {
		var it SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.ProductName,
			&it.Quantity, &it.UnitPrice, &it.PurchasePrice, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("sales: scan item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// List returns sales matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Sale, error) {
	query := saleSelect + ` WHERE 1=1`
	args := []any{}

	if filter.CashierID != "" {
		args = append(args, filter.CashierID)
		query += fmt.Sprintf(" AND s.cashier_id = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(" AND s.created_at >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(" AND s.created_at < $%d", len(args))
	}
	query += ` ORDER BY s.created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sales: list: %w", err)
	}
	defer rows.Close()

	var out []Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("sales: scan: %w", err)
		}
		out = append(out, sale)
	}
	return out, rows.Err()
}
