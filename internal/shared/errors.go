package shared

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across domain services.
var (
	// ErrValidation indicates missing or malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrForbidden indicates a role or ownership mismatch.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound indicates a referenced resource is absent.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a uniqueness conflict.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInsufficientPayment indicates paid amount below the sale total.
	ErrInsufficientPayment = errors.New("insufficient payment")
	// ErrInsufficientStock indicates requested quantity exceeds on-hand stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrOverReturn indicates requested return quantity exceeds the returnable remainder.
	ErrOverReturn = errors.New("return quantity exceeds returnable amount")
)

// ValidationError wraps ErrValidation with a user-facing message.
func ValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// InsufficientStockError carries the product and remaining quantity so the
// caller can display a corrective message.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d", name, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// OverReturnError carries the maximum returnable quantity for a sale item.
type OverReturnError struct {
	SaleItemID string
	Available  int
	Requested  int
}

func (e *OverReturnError) Error() string {
	return fmt.Sprintf("cannot return %d items, only %d available to return", e.Requested, e.Available)
}

func (e *OverReturnError) Unwrap() error { return ErrOverReturn }
