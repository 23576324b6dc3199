package reports

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository runs report projections against PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SalesSummary aggregates sales and refunds over the period.
func (r *Repository) SalesSummary(ctx context.Context, period Period) (SalesSummary, error) {
	var summary SalesSummary
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(subtotal), 0),
		       COALESCE(SUM(tax), 0),
		       COALESCE(SUM(discount), 0),
		       COALESCE(SUM(total), 0)
		FROM sales
		WHERE created_at >= $1 AND created_at < $2`,
		period.From, period.To).
		Scan(&summary.SaleCount, &summary.Gross, &summary.Tax, &summary.Discount, &summary.Net)
	if err != nil {
		return SalesSummary{}, fmt.Errorf("reports: sales summary: %w", err)
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(refund_total), 0)
		FROM returns
		WHERE created_at >= $1 AND created_at < $2`,
		period.From, period.To).
		Scan(&summary.RefundTotal)
	if err != nil {
		return SalesSummary{}, fmt.Errorf("reports: refund summary: %w", err)
	}
	return summary, nil
}

// ProfitSummary computes revenue against purchase cost, net of returns.
func (r *Repository) ProfitSummary(ctx context.Context, period Period) (ProfitSummary, error) {
	var summary ProfitSummary
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(si.line_total), 0),
		       COALESCE(SUM(si.purchase_price * si.quantity), 0)
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		WHERE s.created_at >= $1 AND s.created_at < $2`,
		period.From, period.To).
		Scan(&summary.Revenue, &summary.Cost)
	if err != nil {
		return ProfitSummary{}, fmt.Errorf("reports: profit summary: %w", err)
	}

	var refunded, refundedCost float64
	err = r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(ri.refund_amount), 0),
		       COALESCE(SUM(si.purchase_price * ri.quantity), 0)
		FROM return_items ri
		JOIN returns rt ON rt.id = ri.return_id
		JOIN sale_items si ON si.id = ri.sale_item_id
		WHERE rt.created_at >= $1 AND rt.created_at < $2`,
		period.From, period.To).
		Scan(&refunded, &refundedCost)
	if err != nil {
		return ProfitSummary{}, fmt.Errorf("reports: refunded profit: %w", err)
	}

	summary.Revenue -= refunded
	summary.Cost -= refundedCost
	summary.Profit = summary.Revenue - summary.Cost
	return summary, nil
}

// TopProducts lists the best selling products over the period.
func (r *Repository) TopProducts(ctx context.Context, period Period, limit int) ([]ProductPerformance, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT si.product_id, si.product_name, SUM(si.quantity), SUM(si.line_total)
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		WHERE s.created_at >= $1 AND s.created_at < $2
		GROUP BY si.product_id, si.product_name
		ORDER BY SUM(si.quantity) DESC
		LIMIT $3`,
		period.From, period.To, limit)
	if err != nil {
		return nil, fmt.Errorf("reports: top products: %w", err)
	}
	defer rows.Close()

	var out []ProductPerformance
	for rows.Next() {
		var p ProductPerformance
		if err := rows.Scan(&p.ProductID, &p.ProductName, &p.QuantitySold, &p.Revenue); err != nil {
			return nil, fmt.Errorf("reports: scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CategoryPerformance breaks sales down by category.
func (r *Repository) CategoryPerformance(ctx context.Context, period Period) ([]CategoryPerformance, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.name, SUM(si.quantity), SUM(si.line_total)
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		JOIN products p ON p.id = si.product_id
		JOIN categories c ON c.id = p.category_id
		WHERE s.created_at >= $1 AND s.created_at < $2
		GROUP BY c.id, c.name
		ORDER BY SUM(si.line_total) DESC`,
		period.From, period.To)
	if err != nil {
		return nil, fmt.Errorf("reports: category performance: %w", err)
	}
	defer rows.Close()

	var out []CategoryPerformance
	for rows.Next() {
		var c CategoryPerformance
		if err := rows.Scan(&c.CategoryID, &c.CategoryName, &c.QuantitySold, &c.Revenue); err != nil {
			return nil, fmt.Errorf("reports: scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CashierPerformance breaks sales down by cashier.
func (r *Repository) CashierPerformance(ctx context.Context, period Period) ([]CashierPerformance, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.cashier_id, COALESCE(u.full_name, ''), COUNT(*), COALESCE(SUM(s.total), 0)
		FROM sales s
		LEFT JOIN users u ON u.id = s.cashier_id
		WHERE s.created_at >= $1 AND s.created_at < $2
		GROUP BY s.cashier_id, u.full_name
		ORDER BY SUM(s.total) DESC`,
		period.From, period.To)
	if err != nil {
		return nil, fmt.Errorf("reports: cashier performance: %w", err)
	}
	defer rows.Close()

	var out []CashierPerformance
	for rows.Next() {
		var c CashierPerformance
		if err := rows.Scan(&c.CashierID, &c.CashierName, &c.SaleCount, &c.Revenue); err != nil {
			return nil, fmt.Errorf("reports: scan cashier: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// HourlySales buckets the period's sales by hour of day.
func (r *Repository) HourlySales(ctx context.Context, period Period) ([]HourlySales, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT EXTRACT(HOUR FROM created_at)::int, COUNT(*), COALESCE(SUM(total), 0)
		FROM sales
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY 1
		ORDER BY 1`,
		period.From, period.To)
	if err != nil {
		return nil, fmt.Errorf("reports: hourly sales: %w", err)
	}
	defer rows.Close()

	var out []HourlySales
	for rows.Next() {
		var h HourlySales
		if err := rows.Scan(&h.Hour, &h.SaleCount, &h.Revenue); err != nil {
			return nil, fmt.Errorf("reports: scan hourly: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// Valuation prices the current stock at purchase and selling prices.
func (r *Repository) Valuation(ctx context.Context) (Valuation, error) {
	var v Valuation
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(p.purchase_price * i.quantity), 0),
		       COALESCE(SUM(p.selling_price * i.quantity), 0)
		FROM inventory i
		JOIN products p ON p.id = i.product_id
		WHERE p.status = 'available'`).
		Scan(&v.PurchaseValue, &v.SellingValue)
	if err != nil {
		return Valuation{}, fmt.Errorf("reports: valuation: %w", err)
	}
	return v, nil
}

// LowStockCount counts available products at or below minimum stock.
func (r *Repository) LowStockCount(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM inventory i
		JOIN products p ON p.id = i.product_id
		WHERE i.quantity <= p.min_stock AND p.status = 'available'`).
		Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("reports: low stock count: %w", err)
	}
	return n, nil
}
