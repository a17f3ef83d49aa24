package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stockroom/internal/domain"
	"stockroom/internal/query"
	"stockroom/internal/store"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Warning is a non-fatal side-effect report attached to an otherwise
// successful mutation, so callers and tests can assert on best-effort
// cleanup instead of grepping logs.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ProductInput carries the mutable fields of a product. Prices are pointers
// so a missing field is distinguishable from zero.
type ProductInput struct {
	Name           string   `json:"name" validate:"required"`
	Description    string   `json:"description"`
	CategoryID     *int64   `json:"category_id"`
	PurchasePrice  *float64 `json:"purchase_price" validate:"required,gte=0"`
	SellingPrice   *float64 `json:"selling_price" validate:"required,gte=0"`
	RemainingStock int      `json:"remaining_stock"`
	MinStockLevel  *int     `json:"min_stock_level" validate:"omitempty,gte=0"`
	ImageURL       string   `json:"image_url"`
}

// ProductSearcher is the optional accelerated listing path a record store
// may offer (the MySQL store pushes the predicate down as SQL). Results must
// be superset-compatible with the in-memory query engine.
type ProductSearcher interface {
	SearchProducts(ctx context.Context, params query.Params) ([]domain.Product, query.Pagination, error)
}

// ProductService is the mutation and listing surface used by the transport
// layer and the offline side of the facade.
type ProductService interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListProducts(ctx context.Context, params query.Params) ([]domain.Product, query.Pagination, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (int64, error)
	UpdateProduct(ctx context.Context, id int64, input ProductInput) error
	DeleteProduct(ctx context.Context, id int64) ([]Warning, error)
}

type productService struct {
	store    store.RecordStore
	searcher ProductSearcher // nil when the store has no accelerated path
	images   ImageStore
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

// NewProductService creates a ProductService over the given record store.
// searcher may be nil; images may be nil when the backend manages no files.
func NewProductService(recordStore store.RecordStore, searcher ProductSearcher, images ImageStore, logger *zap.Logger) ProductService {
	return &productService{
		store:    recordStore,
		searcher: searcher,
		images:   images,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// ListCategories returns all categories in the store's stable order.
func (s *productService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.store.ListCategories(ctx)
}

// ListProducts computes the visible page for the request, preferring the
// store's accelerated path when one exists.
func (s *productService) ListProducts(ctx context.Context, params query.Params) ([]domain.Product, query.Pagination, error) {
	if s.searcher != nil {
		return s.searcher.SearchProducts(ctx, params)
	}

	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, query.Pagination{}, err
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, query.Pagination{}, err
	}

	page, pagination := query.Run(products, categories, params)
	return page, pagination, nil
}

// FilterProducts returns the full filtered and sorted set without
// pagination. The offline facade path uses it to synthesize a single page.
func FilterProducts(ctx context.Context, recordStore store.RecordStore, params query.Params) ([]domain.Product, error) {
	products, err := recordStore.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := recordStore.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return query.Filter(products, categories, params), nil
}

// GetProduct returns one product with its category name resolved.
func (s *productService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	resolved := []domain.Product{*p}
	domain.ResolveCategoryNames(resolved, categories)
	return &resolved[0], nil
}

// CreateProduct validates the input, applies defaults and stores the record.
func (s *productService) CreateProduct(ctx context.Context, input ProductInput) (int64, error) {
	if err := s.validate.Struct(input); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := s.now()
	p := &domain.Product{
		Name:           input.Name,
		Description:    input.Description,
		CategoryID:     input.CategoryID,
		PurchasePrice:  *input.PurchasePrice,
		SellingPrice:   *input.SellingPrice,
		RemainingStock: input.RemainingStock,
		MinStockLevel:  domain.DefaultMinStockLevel,
		ImageURL:       input.ImageURL,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if input.MinStockLevel != nil {
		p.MinStockLevel = *input.MinStockLevel
	}

	id, err := s.store.InsertProduct(ctx, p)
	if err != nil {
		return 0, err
	}

	s.logger.Info("Product created",
		zap.Int64("id", id),
		zap.String("name", p.Name),
	)
	return id, nil
}

// UpdateProduct replaces every mutable field of an existing product.
// created_at and id are preserved; a missing id is domain.ErrNotFound.
func (s *productService) UpdateProduct(ctx context.Context, id int64, input ProductInput) error {
	if err := s.validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	existing, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	p := &domain.Product{
		ID:             id,
		Name:           input.Name,
		Description:    input.Description,
		CategoryID:     input.CategoryID,
		PurchasePrice:  *input.PurchasePrice,
		SellingPrice:   *input.SellingPrice,
		RemainingStock: input.RemainingStock,
		MinStockLevel:  existing.MinStockLevel,
		ImageURL:       input.ImageURL,
		CreatedAt:      existing.CreatedAt,
		UpdatedAt:      s.now(),
	}
	if input.MinStockLevel != nil {
		p.MinStockLevel = *input.MinStockLevel
	}

	return s.store.ReplaceProduct(ctx, id, p)
}

// DeleteProduct removes the record and, when it owned a server-managed
// image file, attempts to remove that file. File cleanup is best-effort: a
// failure is reported as a warning, never as a mutation failure.
func (s *productService) DeleteProduct(ctx context.Context, id int64) ([]Warning, error) {
	existing, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.RemoveProduct(ctx, id); err != nil {
		return nil, err
	}

	var warnings []Warning
	if existing.ImageURL != "" && s.images != nil {
		if err := s.images.Remove(ctx, existing.ImageURL); err != nil && !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("Failed to remove product image",
				zap.Int64("id", id),
				zap.String("image_url", existing.ImageURL),
				zap.Error(err),
			)
			warnings = append(warnings, Warning{
				Code:    "image_cleanup_failed",
				Message: fmt.Sprintf("could not remove image %s: %v", existing.ImageURL, err),
			})
		}
	}

	s.logger.Info("Product deleted", zap.Int64("id", id))
	return warnings, nil
}
