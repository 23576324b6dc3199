// Package inventory tracks on-hand stock per product.
package inventory

import "time"

// AdjustMode selects how an adjustment changes the stored quantity.
type AdjustMode string

const (
	// ModeAdd increases the quantity by the given amount.
	ModeAdd AdjustMode = "add"
	// ModeSubtract decreases the quantity, clamped at zero.
	ModeSubtract AdjustMode = "subtract"
	// ModeSet overwrites the quantity with the given amount.
	ModeSet AdjustMode = "set"
)

// Valid reports whether the mode is one of the known adjustment modes.
func (m AdjustMode) Valid() bool {
	switch m {
	case ModeAdd, ModeSubtract, ModeSet:
		return true
	}
	return false
}

// Item is one product's stock position.
type Item struct {
	ProductID   string
	ProductName string
	Barcode     string
	Quantity    int
	MinStock    int
	UpdatedAt   time.Time
}

// LowStock reports whether the item sits at or below its minimum.
func (i Item) LowStock() bool {
	return i.Quantity <= i.MinStock
}

// AdjustInput carries the parameters of a manual stock adjustment.
type AdjustInput struct {
	ProductID string
	Mode      AdjustMode
	Amount    int
	Reason    string
}
