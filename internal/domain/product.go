package domain

import (
	"time"
)

// UnknownCategoryName is the placeholder shown when a product's category
// cannot be resolved. The seed catalogue is French, so the placeholder is too.
const UnknownCategoryName = "Aucune"

// DefaultMinStockLevel is applied when a product is created without an
// explicit alert threshold.
const DefaultMinStockLevel = 10

// Product represents an inventory item
type Product struct {
	ID             int64     `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Description    string    `json:"description" db:"description"`
	CategoryID     *int64    `json:"category_id" db:"category_id"`
	PurchasePrice  float64   `json:"purchase_price" db:"purchase_price"`
	SellingPrice   float64   `json:"selling_price" db:"selling_price"`
	RemainingStock int       `json:"remaining_stock" db:"remaining_stock"`
	MinStockLevel  int       `json:"min_stock_level" db:"min_stock_level"`
	ImageURL       string    `json:"image_url" db:"image_url"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`

	// CategoryName is derived at read time by joining against the
	// category collection; it is never stored.
	CategoryName string `json:"category_name,omitempty" db:"-"`
}

// LowStock reports whether the product is at or below its alert threshold.
// It is advisory only; the data layer never enforces a stock floor.
func (p *Product) LowStock() bool {
	return p.RemainingStock <= p.MinStockLevel
}

// Category represents a product category
type Category struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ResolveCategoryNames populates CategoryName on each product from the given
// category list, falling back to the placeholder when the reference is nil or
// dangling.
func ResolveCategoryNames(products []Product, categories []Category) {
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	for i := range products {
		products[i].CategoryName = UnknownCategoryName
		if products[i].CategoryID != nil {
			if name, ok := names[*products[i].CategoryID]; ok {
				products[i].CategoryName = name
			}
		}
	}
}
