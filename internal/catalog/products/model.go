// Package products manages the sellable catalog.
package products

import "time"

// Status of a catalog entry. Discontinued products stay on record for
// historical sales but are excluded from selling paths.
const (
	StatusAvailable    = "available"
	StatusDiscontinued = "discontinued"
)

// Product is a sellable catalog entry. Prices are unit prices.
type Product struct {
	ID            string
	Name          string
	Description   string
	Barcode       string
	CategoryID    string
	CategoryName  string
	PurchasePrice float64
	SellingPrice  float64
	MinStock      int
	AgeGroup      string
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Quantity is the current on-hand stock, joined from inventory.
	Quantity int
}

// ProductInput carries the fields for creating or updating a product.
type ProductInput struct {
	Name          string
	Description   string
	Barcode       string
	CategoryID    string
	PurchasePrice float64
	SellingPrice  float64
	MinStock      int
	AgeGroup      string
}

// ListFilter narrows product listings.
type ListFilter struct {
	Search     string
	CategoryID string
	Status     string
}
