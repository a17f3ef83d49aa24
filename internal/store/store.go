package store

import (
	"context"

	"stockroom/internal/domain"
)

// RecordStore is the persistence contract shared by the MySQL, local-storage
// and JSON-file backends. It carries no business logic: id assignment and
// durability only. Validation, defaults and timestamps belong to the
// mutation service.
type RecordStore interface {
	// ListCategories returns all categories ordered by name ascending.
	ListCategories(ctx context.Context) ([]domain.Category, error)

	// ListProducts returns all products in no guaranteed order.
	ListProducts(ctx context.Context) ([]domain.Product, error)

	// GetProduct returns the product with the given id, or
	// domain.ErrNotFound.
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)

	// InsertProduct stores a new product and returns the assigned id.
	// The assigned id never collides with any id ever issued by this
	// store instance.
	InsertProduct(ctx context.Context, p *domain.Product) (int64, error)

	// ReplaceProduct overwrites the product with the given id, or returns
	// domain.ErrNotFound when absent.
	ReplaceProduct(ctx context.Context, id int64, p *domain.Product) error

	// RemoveProduct deletes the product with the given id, or returns
	// domain.ErrNotFound when absent.
	RemoveProduct(ctx context.Context, id int64) error
}
