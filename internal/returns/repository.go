package returns

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/toyshop-pos/toyshop/internal/platform/db"
	"github.com/toyshop-pos/toyshop/internal/shared"
)

// SaleRef is the slice of a sale a return needs: ownership and bill number.
type SaleRef struct {
	ID         string
	BillNumber string
	CashierID  string
}

// SaleItemRef is the slice of a sale item a return needs.
type SaleItemRef struct {
	ID          string
	SaleID      string
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   float64
}

// TxRepository is the write surface available inside a return transaction.
type TxRepository interface {
	GetSale(ctx context.Context, saleID string) (SaleRef, error)
	GetSaleItem(ctx context.Context, saleItemID string) (SaleItemRef, error)
	ReturnedQuantity(ctx context.Context, saleItemID string) (int, error)
	IncrementStock(ctx context.Context, productID string, quantity int) error
	InsertReturn(ctx context.Context, ret Return) error
	InsertReturnItem(ctx context.Context, item ReturnItem) error
}

// Repository persists returns in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx runs fn inside a serializable transaction. The over-return check
// and the rows it guards commit together, so two concurrent returns of the
// same sale item cannot both pass the availability check.
func (r *Repository) WithTx(ctx context.Context, fn func(tx TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetSale(ctx context.Context, saleID string) (SaleRef, error) {
	var ref SaleRef
	err := r.tx.QueryRow(ctx, `
		SELECT id, bill_number, cashier_id FROM sales WHERE id = $1`, saleID).
		Scan(&ref.ID, &ref.BillNumber, &ref.CashierID)
	if errors.Is(err, pgx.ErrNoRows) {
		return SaleRef{}, shared.ErrNotFound
	}
	if err != nil {
		return SaleRef{}, fmt.Errorf("returns: get sale: %w", err)
	}
	return ref, nil
}

// GetSaleItem locks the sale item row so concurrent returns against the
// same line serialize on it.
func (r *txRepository) GetSaleItem(ctx context.Context, saleItemID string) (SaleItemRef, error) {
	var ref SaleItemRef
	err := r.tx.QueryRow(ctx, `
		SELECT id, sale_id, product_id, product_name, quantity, unit_price
		FROM sale_items WHERE id = $1
		FOR UPDATE`, saleItemID).
		Scan(&ref.ID, &ref.SaleID, &ref.ProductID, &ref.ProductName, &ref.Quantity, &ref.UnitPrice)
	if errors.Is(err, pgx.ErrNoRows) {
		return SaleItemRef{}, shared.ErrNotFound
	}
	if err != nil {
		return SaleItemRef{}, fmt.Errorf("returns: get sale item: %w", err)
	}
	return ref, nil
}

func (r *txRepository) ReturnedQuantity(ctx context.Context, saleItemID string) (int, error) {
	var total int
	err := r.tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0) FROM return_items WHERE sale_item_id = $1`, saleItemID).
		Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("returns: returned quantity: %w", err)
	}
	return total, nil
}

func (r *txRepository) IncrementStock(ctx context.Context, productID string, quantity int) error {
	_, err := r.tx.Exec(ctx, `
		UPDATE inventory SET quantity = quantity + $2, updated_at = now()
		WHERE product_id = $1`,
		productID, quantity)
	if err != nil {
		return fmt.Errorf("returns: increment stock: %w", err)
	}
	return nil
}

func (r *txRepository) InsertReturn(ctx context.Context, ret Return) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO returns (id, return_number, sale_id, cashier_id, reason, refund_method, refund_total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		ret.ID, ret.ReturnNumber, ret.SaleID, ret.CashierID, ret.Reason, ret.RefundMethod, ret.RefundTotal, ret.CreatedAt)
	if err != nil {
		return fmt.Errorf("returns: insert return: %w", err)
	}
	return nil
}

func (r *txRepository) InsertReturnItem(ctx context.Context, item ReturnItem) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO return_items (id, return_id, sale_item_id, product_id, product_name, quantity, unit_price, refund_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		item.ID, item.ReturnID, item.SaleItemID, item.ProductID, item.ProductName,
		item.Quantity, item.UnitPrice, item.RefundAmount)
	if err != nil {
		return fmt.Errorf("returns: insert return item: %w", err)
	}
	return nil
}

const returnSelect = `
	SELECT r.id, r.return_number, r.sale_id, s.bill_number, r.cashier_id, s.cashier_id,
	       r.reason, r.refund_method, r.refund_total, r.created_at
	FROM returns r
	JOIN sales s ON s.id = r.sale_id`

func scanReturn(row pgx.Row) (Return, error) {
	var ret Return
	err := row.Scan(&ret.ID, &ret.ReturnNumber, &ret.SaleID, &ret.BillNumber,
		&ret.CashierID, &ret.SaleCashierID, &ret.Reason, &ret.RefundMethod, &ret.RefundTotal, &ret.CreatedAt)
	return ret, err
}

// Get returns a posted return without its items.
func (r *Repository) Get(ctx context.Context, id string) (Return, error) {
	ret, err := scanReturn(r.pool.QueryRow(ctx, returnSelect+` WHERE r.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Return{}, shared.ErrNotFound
	}
	if err != nil {
		return Return{}, fmt.Errorf("returns: get: %w", err)
	}
	return ret, nil
}

// ListItems returns the lines of a posted return.
func (r *Repository) ListItems(ctx context.Context, returnID string) ([]ReturnItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, return_id, sale_item_id, product_id, product_name, quantity, unit_price, refund_amount
		FROM return_items WHERE return_id = $1
		ORDER BY product_name`, returnID)
	if err != nil {
		return nil, fmt.Errorf("returns: list items: %w", err)
	}
	defer rows.Close()

	var out []ReturnItem
	for rows.Next() {
		var it ReturnItem
		if err := rows.Scan(&it.ID, &it.ReturnID, &it.SaleItemID, &it.ProductID,
			&it.ProductName, &it.Quantity, &it.UnitPrice, &it.RefundAmount); err != nil {
			return nil, fmt.Errorf("returns: scan item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// List returns posted returns, newest first. A non-empty cashierID scopes
// the listing to returns against that cashier's sales.
func (r *Repository) List(ctx context.Context, cashierID string) ([]Return, error) {
	query := returnSelect
	args := []any{}
	if cashierID != "" {
		args = append(args, cashierID)
		query += ` WHERE s.cashier_id = $1`
	}
	query += ` ORDER BY r.created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("returns: list: %w", err)
	}
	defer rows.Close()

	var out []Return
	for rows.Next() {
		ret, err := scanReturn(rows)
		if err != nil {
			return nil, fmt.Errorf("returns: scan: %w", err)
		}
		out = append(out, ret)
	}
	return out, rows.Err()
}

// ReturnableItems lists the sale's items with their remaining returnable
// quantity outside of a posting transaction, for the returns screen.
func (r *Repository) ReturnableItems(ctx context.Context, saleID string) ([]ReturnableItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT si.id, si.product_id, si.product_name, si.quantity, si.unit_price,
		       COALESCE(SUM(ri.quantity), 0)
		FROM sale_items si
		LEFT JOIN return_items ri ON ri.sale_item_id = si.id
		WHERE si.sale_id = $1
		GROUP BY si.id, si.product_id, si.product_name, si.quantity, si.unit_price
		ORDER BY si.product_name`, saleID)
	if err != nil {
		return nil, fmt.Errorf("returns: returnable items: %w", err)
	}
	defer rows.Close()

	var out []ReturnableItem
	for rows.Next() {
		var it ReturnableItem
		if err := rows.Scan(&it.SaleItemID, &it.ProductID, &it.ProductName,
			&it.Sold, &it.UnitPrice, &it.Returned); err != nil {
			return nil, fmt.Errorf("returns: scan returnable: %w", err)
		}
		it.Available = it.Sold - it.Returned
		it.State = DeriveState(it.Sold, it.Returned)
		out = append(out, it)
	}
	return out, rows.Err()
}

// GetSaleRef loads sale ownership outside of a transaction, for access checks.
func (r *Repository) GetSaleRef(ctx context.Context, saleID string) (SaleRef, error) {
	var ref SaleRef
	err := r.pool.QueryRow(ctx, `
		SELECT id, bill_number, cashier_id FROM sales WHERE id = $1`, saleID).
		Scan(&ref.ID, &ref.BillNumber, &ref.CashierID)
	if errors.Is(err, pgx.ErrNoRows) {
		return SaleRef{}, shared.ErrNotFound
	}
	if err != nil {
		return SaleRef{}, fmt.Errorf("returns: get sale ref: %w", err)
	}
	return ref, nil
}
