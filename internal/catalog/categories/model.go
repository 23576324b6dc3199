// Package categories manages the product category tree (flat, single level).
package categories

import "time"

// Category groups products for browsing and reporting.
type Category struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CategoryInput carries the fields for creating or updating a category.
type CategoryInput struct {
	Name        string
	Description string
}
