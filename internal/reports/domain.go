// Package reports builds sales, profit and stock analytics from posted
// transactions.
package reports

import "time"

// Period bounds a report. To is exclusive.
type Period struct {
	From time.Time
	To   time.Time
}

// SalesSummary aggregates posted sales over a period.
type SalesSummary struct {
	SaleCount   int
	Gross       float64
	Tax         float64
	Discount    float64
	Net         float64
	RefundTotal float64
}

// ProfitSummary aggregates revenue against purchase cost.
type ProfitSummary struct {
	Revenue float64
	Cost    float64
	Profit  float64
}

// ProductPerformance is one product's sales over a period.
type ProductPerformance struct {
	ProductID    string
	ProductName  string
	QuantitySold int
	Revenue      float64
}

// CategoryPerformance is one category's sales over a period.
type CategoryPerformance struct {
	CategoryID   string
	CategoryName string
	QuantitySold int
	Revenue      float64
}

// CashierPerformance is one cashier's sales over a period.
type CashierPerformance struct {
	CashierID   string
	CashierName string
	SaleCount   int
	Revenue     float64
}

// HourlySales is sales volume bucketed by hour of day.
type HourlySales struct {
	Hour      int
	SaleCount int
	Revenue   float64
}

// Valuation is the stock value of the whole catalog at current quantities.
type Valuation struct {
	PurchaseValue float64
	SellingValue  float64
}

// Dashboard is the aggregated landing view.
type Dashboard struct {
	Today         SalesSummary
	Profit        ProfitSummary
	TopProducts   []ProductPerformance
	LowStockCount int
}
