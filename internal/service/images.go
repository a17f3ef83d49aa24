package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"stockroom/internal/domain"

	"github.com/google/uuid"
)

// publicPrefix is the URL root under which disk-stored images are served.
const publicPrefix = "/uploads/"

// ImageStore persists uploaded product images. The disk variant produces a
// stable relative path; the inline variant produces a base64 data URI. The
// two representations render the same image but are not interchangeable as
// stored values, so they are never carried across a backend switch.
type ImageStore interface {
	// Save validates and stores the payload, returning the value to put in
	// a product's image_url field.
	Save(ctx context.Context, filename, contentType string, r io.Reader, size int64) (string, error)

	// Remove deletes the backing file for a previously saved image_url.
	// domain.ErrNotFound means the file was already gone.
	Remove(ctx context.Context, imageURL string) error
}

// validateImage applies the shared upload rules: declared media type must be
// an image class and the payload must fit the configured ceiling.
func validateImage(contentType string, size, maxBytes int64) error {
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedMedia, contentType)
	}
	if size > maxBytes {
		return fmt.Errorf("%w: %d bytes (limit %d)", domain.ErrPayloadTooLarge, size, maxBytes)
	}
	return nil
}

// DiskImageStore writes images under the public uploads root, named with a
// generated token that preserves the original extension.
type DiskImageStore struct {
	dir      string
	maxBytes int64
}

func NewDiskImageStore(dir string, maxBytes int64) (*DiskImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &DiskImageStore{dir: dir, maxBytes: maxBytes}, nil
}

func (s *DiskImageStore) Save(ctx context.Context, filename, contentType string, r io.Reader, size int64) (string, error) {
	if err := validateImage(contentType, size, s.maxBytes); err != nil {
		return "", err
	}

	name := uuid.New().String() + strings.ToLower(filepath.Ext(filename))
	target := filepath.Join(s.dir, name)

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}

	// LimitReader backs the declared size up with a hard byte cap.
	written, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(target)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	if written > s.maxBytes {
		os.Remove(target)
		return "", fmt.Errorf("%w: %d bytes (limit %d)", domain.ErrPayloadTooLarge, written, s.maxBytes)
	}

	return publicPrefix + name, nil
}

// Remove deletes the file behind a /uploads/ URL. Anything outside the
// uploads root is rejected.
func (s *DiskImageStore) Remove(ctx context.Context, imageURL string) error {
	if !strings.HasPrefix(imageURL, publicPrefix) {
		return fmt.Errorf("%w: not an uploads path: %s", domain.ErrValidation, imageURL)
	}

	name := strings.TrimPrefix(imageURL, publicPrefix)
	if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return fmt.Errorf("%w: invalid uploads path: %s", domain.ErrValidation, imageURL)
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to remove upload file: %w", err)
	}
	return nil
}

// InlineImageStore encodes images as base64 data URIs for the offline
// backend, where the encoding lives inside the product record itself.
type InlineImageStore struct {
	maxBytes int64
}

func NewInlineImageStore(maxBytes int64) *InlineImageStore {
	return &InlineImageStore{maxBytes: maxBytes}
}

func (s *InlineImageStore) Save(ctx context.Context, filename, contentType string, r io.Reader, size int64) (string, error) {
	if err := validateImage(contentType, size, s.maxBytes); err != nil {
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read image payload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", fmt.Errorf("%w: %d bytes (limit %d)", domain.ErrPayloadTooLarge, len(data), s.maxBytes)
	}

	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data)), nil
}

// Remove is a no-op: an inline image disappears with the record holding it.
func (s *InlineImageStore) Remove(ctx context.Context, imageURL string) error {
	return nil
}
