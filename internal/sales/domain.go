// Package sales implements the point-of-sale transaction engine: totals,
// tax, discounts, change and atomic stock deduction.
package sales

import (
	"math"
	"time"
)

// Sale is a completed checkout. Monetary fields are captured at posting
// time and never recomputed from the catalog afterwards.
type Sale struct {
	ID            string
	BillNumber    string
	CashierID     string
	CashierName   string
	CustomerName  string
	CustomerPhone string
	Subtotal      float64
	TaxPercentage float64
	Tax           float64
	Discount      float64
	Total         float64
	PaymentMethod string
	Paid          float64
	Change        float64
	Notes         string
	CreatedAt     time.Time

	Items []SaleItem
}

// SaleItem is one product line on a sale.
type SaleItem struct {
	ID            string
	SaleID        string
	ProductID     string
	ProductName   string
	Quantity      int
	UnitPrice     float64
	PurchasePrice float64
	LineTotal     float64
}

// PaymentMethodCash is the default when the register does not say otherwise.
const PaymentMethodCash = "cash"

// CreateSaleInput carries a checkout request.
type CreateSaleInput struct {
	Items         []CreateSaleItem
	Discount      float64
	PaymentMethod string
	Paid          float64
	CustomerName  string
	CustomerPhone string
	Notes         string
}

// CreateSaleItem is one requested line. UnitPrice is taken as supplied so
// the register can honor point-in-time prices and deliberate overrides; the
// catalog price is never re-read at posting time.
type CreateSaleItem struct {
	ProductID string
	Quantity  int
	UnitPrice float64
}

// ListFilter narrows sale listings.
type ListFilter struct {
	CashierID string
	From      time.Time
	To        time.Time
}

// roundMoney rounds to two decimal places. All derived monetary values go
// through here so stored amounts match what the receipt shows.
func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
