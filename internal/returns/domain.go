// Package returns implements post-sale merchandise returns with
// partial-quantity support and refund calculation.
package returns

import "time"

// ReturnState describes how much of a sale item has come back. It is
// always derived from the recorded return quantities, never stored.
type ReturnState string

const (
	StateUnreturned        ReturnState = "unreturned"
	StatePartiallyReturned ReturnState = "partially_returned"
	StateFullyReturned     ReturnState = "fully_returned"
)

// DeriveState computes the return state from sold and returned quantities.
func DeriveState(sold, returned int) ReturnState {
	switch {
	case returned <= 0:
		return StateUnreturned
	case returned < sold:
		return StatePartiallyReturned
	default:
		return StateFullyReturned
	}
}

// Return is a posted merchandise return against a single sale.
// CashierID is whoever posted the return; SaleCashierID is the cashier of
// the originating sale and is what access checks key on, so an
// admin-posted return stays visible to the cashier who made the sale.
type Return struct {
	ID            string
	ReturnNumber  string
	SaleID        string
	BillNumber    string
	CashierID     string
	SaleCashierID string
	Reason        string
	RefundMethod  string
	RefundTotal   float64
	CreatedAt     time.Time

	Items []ReturnItem
}

// ReturnItem is one returned line, tied to the original sale item.
type ReturnItem struct {
	ID           string
	ReturnID     string
	SaleItemID   string
	ProductID    string
	ProductName  string
	Quantity     int
	UnitPrice    float64
	RefundAmount float64
}

// RefundMethodCash is the default when no refund method is given.
const RefundMethodCash = "cash"

// CreateReturnInput carries a return request.
type CreateReturnInput struct {
	SaleID       string
	Reason       string
	RefundMethod string
	Items        []CreateReturnItem
}

// CreateReturnItem is one requested return line.
type CreateReturnItem struct {
	SaleItemID string
	Quantity   int
}

// ReturnableItem describes a sale item with its remaining returnable quantity.
type ReturnableItem struct {
	SaleItemID  string
	ProductID   string
	ProductName string
	Sold        int
	Returned    int
	Available   int
	UnitPrice   float64
	State       ReturnState
}
