package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"stockroom/internal/domain"
	"stockroom/internal/store/localstore"

	"go.uber.org/zap"
)

func f64(v float64) *float64 { return &v }

func newTestService(t *testing.T, images ImageStore) (*productService, *localstore.Store) {
	t.Helper()
	recordStore, err := localstore.New(localstore.NewMemoryMedium(), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	svc := NewProductService(recordStore, nil, images, zap.NewNop()).(*productService)
	return svc, recordStore
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	created := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return created }

	id, err := svc.CreateProduct(ctx, ProductInput{
		Name:          "Mètre ruban 5m",
		PurchasePrice: f64(2.0),
		SellingPrice:  f64(4.5),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	p, err := svc.GetProduct(ctx, id)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if p.MinStockLevel != domain.DefaultMinStockLevel {
		t.Fatalf("expected default min stock %d, got %d", domain.DefaultMinStockLevel, p.MinStockLevel)
	}
	if !p.CreatedAt.Equal(created) || !p.UpdatedAt.Equal(created) {
		t.Fatalf("timestamps not applied: created=%v updated=%v", p.CreatedAt, p.UpdatedAt)
	}
}

func TestCreateRejectsMissingFields(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		input ProductInput
	}{
		{"missing name", ProductInput{PurchasePrice: f64(1), SellingPrice: f64(2)}},
		{"missing purchase price", ProductInput{Name: "x", SellingPrice: f64(2)}},
		{"missing selling price", ProductInput{Name: "x", PurchasePrice: f64(1)}},
		{"negative price", ProductInput{Name: "x", PurchasePrice: f64(-1), SellingPrice: f64(2)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateProduct(ctx, tt.input); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

// Round trip: create, update every mutable field, read back. created_at must
// survive the update, updated_at must advance.
func TestUpdateRoundTrip(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	created := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return created }

	id, err := svc.CreateProduct(ctx, ProductInput{
		Name:          "Cutter 18mm",
		PurchasePrice: f64(1.2),
		SellingPrice:  f64(2.9),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated := created.Add(48 * time.Hour)
	svc.now = func() time.Time { return updated }

	categoryID := int64(5)
	minStock := 3
	err = svc.UpdateProduct(ctx, id, ProductInput{
		Name:           "Cutter 25mm",
		Description:    "lame sécable large",
		CategoryID:     &categoryID,
		PurchasePrice:  f64(1.8),
		SellingPrice:   f64(3.9),
		RemainingStock: 77,
		MinStockLevel:  &minStock,
		ImageURL:       "/uploads/cutter.png",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	p, err := svc.GetProduct(ctx, id)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if p.Name != "Cutter 25mm" || p.Description != "lame sécable large" ||
		p.PurchasePrice != 1.8 || p.SellingPrice != 3.9 ||
		p.RemainingStock != 77 || p.MinStockLevel != 3 ||
		p.ImageURL != "/uploads/cutter.png" ||
		p.CategoryID == nil || *p.CategoryID != 5 {
		t.Fatalf("mutable fields not replaced: %+v", p)
	}
	if !p.CreatedAt.Equal(created) {
		t.Fatalf("created_at changed: %v", p.CreatedAt)
	}
	if !p.UpdatedAt.Equal(updated) {
		t.Fatalf("updated_at not advanced: %v", p.UpdatedAt)
	}
	if p.CategoryName != "Quincaillerie" {
		t.Fatalf("category name not resolved: %q", p.CategoryName)
	}
}

func TestUpdateMissingProductFails(t *testing.T) {
	svc, _ := newTestService(t, nil)

	err := svc.UpdateProduct(context.Background(), 9999, ProductInput{
		Name:          "fantôme",
		PurchasePrice: f64(1),
		SellingPrice:  f64(2),
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteRemovesImageFile(t *testing.T) {
	dir := t.TempDir()
	images, err := NewDiskImageStore(dir, 5_000_000)
	if err != nil {
		t.Fatalf("failed to create image store: %v", err)
	}

	svc, _ := newTestService(t, images)
	ctx := context.Background()

	// Place a file the product points at.
	if err := os.WriteFile(filepath.Join(dir, "abc.png"), []byte("png"), 0o644); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}

	id, err := svc.CreateProduct(ctx, ProductInput{
		Name:          "Pelle",
		PurchasePrice: f64(5),
		SellingPrice:  f64(9),
		ImageURL:      "/uploads/abc.png",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	warnings, err := svc.DeleteProduct(ctx, id)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %+v", warnings)
	}
	if _, err := os.Stat(filepath.Join(dir, "abc.png")); !os.IsNotExist(err) {
		t.Fatalf("image file not removed: %v", err)
	}
}

// A file that is already gone is still a clean delete, with no warning.
func TestDeleteWithMissingImageFileStillSucceeds(t *testing.T) {
	images, err := NewDiskImageStore(t.TempDir(), 5_000_000)
	if err != nil {
		t.Fatalf("failed to create image store: %v", err)
	}

	svc, _ := newTestService(t, images)
	ctx := context.Background()

	id, err := svc.CreateProduct(ctx, ProductInput{
		Name:          "Brouette",
		PurchasePrice: f64(30),
		SellingPrice:  f64(55),
		ImageURL:      "/uploads/gone.png",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	warnings, err := svc.DeleteProduct(ctx, id)
	if err != nil {
		t.Fatalf("delete must succeed with a missing file: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("missing file should not warn: %+v", warnings)
	}
}

type failingImageStore struct{}

func (failingImageStore) Save(ctx context.Context, filename, contentType string, r io.Reader, size int64) (string, error) {
	return "", errors.New("unexpected save")
}

func (failingImageStore) Remove(ctx context.Context, imageURL string) error {
	return errors.New("disk on fire")
}

func TestDeleteReportsCleanupWarning(t *testing.T) {
	svc, _ := newTestService(t, failingImageStore{})
	ctx := context.Background()

	id, err := svc.CreateProduct(ctx, ProductInput{
		Name:          "Sécateur",
		PurchasePrice: f64(6),
		SellingPrice:  f64(11),
		ImageURL:      "/uploads/secateur.png",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	warnings, err := svc.DeleteProduct(ctx, id)
	if err != nil {
		t.Fatalf("cleanup failure must not fail the delete: %v", err)
	}
	if len(warnings) != 1 || warnings[0].Code != "image_cleanup_failed" {
		t.Fatalf("expected one cleanup warning, got %+v", warnings)
	}

	// The record itself is gone regardless.
	if _, err := svc.GetProduct(ctx, id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("record still present after delete: %v", err)
	}
}
