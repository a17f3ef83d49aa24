// Package jsonstore persists the catalogue as one flat JSON document on
// disk. It backs the demo deployment, where no database is provisioned.
package jsonstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"stockroom/internal/domain"
	"stockroom/internal/store"

	"go.uber.org/zap"
)

// document is the on-disk layout: both collections in a single file.
type document struct {
	Categories []domain.Category `json:"categories"`
	Products   []domain.Product  `json:"products"`
}

type Store struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
}

// New opens the store at path, seeding the default catalogue when the file
// does not exist. Re-opening an already-seeded file is a no-op.
func New(path string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	s := &Store{path: path, logger: logger}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.write(seedDocument()); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat data file: %w", err)
	}
	return s, nil
}

func seedDocument() *document {
	return &document{
		Categories: store.DefaultCategories(),
		Products:   store.DefaultProducts(),
	}
}

// read loads the document, recovering from an unreadable file by reseeding
// the defaults.
func (s *Store) read() (*document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	doc := &document{}
	if err := json.Unmarshal(data, doc); err != nil {
		s.logger.Warn("Data file unreadable, reseeding defaults",
			zap.String("path", s.path),
			zap.Error(fmt.Errorf("%w: %v", domain.ErrMediumCorrupt, err)),
		)
		doc = seedDocument()
		if err := s.write(doc); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// write commits the document via a temp file and rename, so a crash or an
// aborted request never leaves a torn file behind.
func (s *Store) write(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode data file: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write data file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to commit data file: %w", err)
	}
	return nil
}

// ListCategories returns all categories ordered by name ascending.
func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	categories := doc.Categories
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

// ListProducts returns all products without ordering guarantees.
func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return doc.Products, nil
}

// GetProduct returns the product with the given id.
func (s *Store) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	for i := range doc.Products {
		if doc.Products[i].ID == id {
			p := doc.Products[i]
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

// InsertProduct assigns max(existing ids)+1 and appends the record.
func (s *Store) InsertProduct(ctx context.Context, p *domain.Product) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return 0, err
	}

	var maxID int64
	for i := range doc.Products {
		if doc.Products[i].ID > maxID {
			maxID = doc.Products[i].ID
		}
	}

	stored := *p
	stored.ID = maxID + 1
	doc.Products = append(doc.Products, stored)

	if err := s.write(doc); err != nil {
		return 0, err
	}
	return stored.ID, nil
}

// ReplaceProduct overwrites the record with the given id.
func (s *Store) ReplaceProduct(ctx context.Context, id int64, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}

	for i := range doc.Products {
		if doc.Products[i].ID == id {
			stored := *p
			stored.ID = id
			doc.Products[i] = stored
			return s.write(doc)
		}
	}
	return domain.ErrNotFound
}

// RemoveProduct deletes the record with the given id.
func (s *Store) RemoveProduct(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}

	for i := range doc.Products {
		if doc.Products[i].ID == id {
			doc.Products = append(doc.Products[:i], doc.Products[i+1:]...)
			return s.write(doc)
		}
	}
	return domain.ErrNotFound
}
