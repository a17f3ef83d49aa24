// Package localstore persists the catalogue to a local-storage-style
// key-value medium: one serialized array per collection plus a reserved
// settings entry. It is the offline counterpart of the MySQL store.
package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"stockroom/internal/domain"
	"stockroom/internal/store"

	"go.uber.org/zap"
)

const (
	categoriesKey = "stockroom.categories"
	productsKey   = "stockroom.products"

	// settingsKey is reserved for presentation-layer preferences; the data
	// layer never touches its contents.
	settingsKey = "stockroom.settings"
)

type Store struct {
	mu     sync.Mutex
	medium Medium
	logger *zap.Logger
}

// New opens a store over the given medium, seeding the default catalogue if
// the medium is empty. Seeding is idempotent: an already-seeded medium is
// left untouched.
func New(medium Medium, logger *zap.Logger) (*Store, error) {
	s := &Store{medium: medium, logger: logger}

	_, ok, err := medium.Get(categoriesKey)
	if err != nil {
		return nil, fmt.Errorf("failed to probe medium: %w", err)
	}
	if !ok {
		if err := s.reseed(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) reseed() error {
	if err := s.writeCategories(store.DefaultCategories()); err != nil {
		return err
	}
	return s.writeProducts(store.DefaultProducts())
}

// readCategories decodes the category entry, recovering from a corrupt
// payload by reseeding the defaults.
func (s *Store) readCategories() ([]domain.Category, error) {
	data, ok, err := s.medium.Get(categoriesKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		if err := s.reseed(); err != nil {
			return nil, err
		}
		return store.DefaultCategories(), nil
	}

	var categories []domain.Category
	if err := json.Unmarshal(data, &categories); err != nil {
		s.logger.Warn("Category entry unreadable, reseeding defaults",
			zap.String("key", categoriesKey),
			zap.Error(fmt.Errorf("%w: %v", domain.ErrMediumCorrupt, err)),
		)
		if err := s.reseed(); err != nil {
			return nil, err
		}
		return store.DefaultCategories(), nil
	}
	return categories, nil
}

func (s *Store) readProducts() ([]domain.Product, error) {
	data, ok, err := s.medium.Get(productsKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		if err := s.reseed(); err != nil {
			return nil, err
		}
		return store.DefaultProducts(), nil
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		s.logger.Warn("Product entry unreadable, reseeding defaults",
			zap.String("key", productsKey),
			zap.Error(fmt.Errorf("%w: %v", domain.ErrMediumCorrupt, err)),
		)
		if err := s.reseed(); err != nil {
			return nil, err
		}
		return store.DefaultProducts(), nil
	}
	return products, nil
}

func (s *Store) writeCategories(categories []domain.Category) error {
	data, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}
	return s.medium.Set(categoriesKey, data)
}

func (s *Store) writeProducts(products []domain.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to encode products: %w", err)
	}
	return s.medium.Set(productsKey, data)
}

// ListCategories returns all categories ordered by name ascending.
func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	categories, err := s.readCategories()
	if err != nil {
		return nil, err
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

// ListProducts returns all products without ordering guarantees.
func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readProducts()
}

// GetProduct returns the product with the given id.
func (s *Store) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.readProducts()
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			p := products[i]
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

// InsertProduct assigns max(existing ids)+1 and appends the record.
func (s *Store) InsertProduct(ctx context.Context, p *domain.Product) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.readProducts()
	if err != nil {
		return 0, err
	}

	var maxID int64
	for i := range products {
		if products[i].ID > maxID {
			maxID = products[i].ID
		}
	}

	stored := *p
	stored.ID = maxID + 1
	products = append(products, stored)

	if err := s.writeProducts(products); err != nil {
		return 0, err
	}
	return stored.ID, nil
}

// ReplaceProduct overwrites the record with the given id.
func (s *Store) ReplaceProduct(ctx context.Context, id int64, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.readProducts()
	if err != nil {
		return err
	}

	for i := range products {
		if products[i].ID == id {
			stored := *p
			stored.ID = id
			products[i] = stored
			return s.writeProducts(products)
		}
	}
	return domain.ErrNotFound
}

// RemoveProduct deletes the record with the given id.
func (s *Store) RemoveProduct(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.readProducts()
	if err != nil {
		return err
	}

	for i := range products {
		if products[i].ID == id {
			products = append(products[:i], products[i+1:]...)
			return s.writeProducts(products)
		}
	}
	return domain.ErrNotFound
}
