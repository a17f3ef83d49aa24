// Package facade is the single entry point the presentation layer talks to.
// Every operation independently tries the networked backend first and, on a
// transport-level failure only, re-issues the call against the offline
// backend. Application-level errors from a reachable backend pass through
// untouched: they prove the network path is up.
package facade

import (
	"bytes"
	"context"
	"errors"

	"stockroom/internal/domain"
	"stockroom/internal/query"
	"stockroom/internal/service"
	"stockroom/internal/store"

	"go.uber.org/zap"
)

// ProductPage is a facade listing result. Degraded is true when the offline
// backend served the call, so a UI can surface a banner without the
// response shape changing.
type ProductPage struct {
	Products   []domain.Product
	Pagination query.Pagination
	Degraded   bool
}

// Facade hides backend selection behind one client surface. The fail-over
// decision is per call, never a sticky mode switch.
type Facade struct {
	remote Remote
	local  service.ProductService

	// localStore backs the unpaginated offline listing path.
	localStore store.RecordStore

	// images encodes offline uploads inline, since the offline backend has
	// no file system of record.
	images service.ImageStore

	logger *zap.Logger
}

func New(remote Remote, localStore store.RecordStore, logger *zap.Logger) *Facade {
	images := service.NewInlineImageStore(5_000_000)
	return &Facade{
		remote:     remote,
		local:      service.NewProductService(localStore, nil, images, logger),
		localStore: localStore,
		images:     images,
		logger:     logger,
	}
}

// failedTransport reports whether err is a transport-level failure, the only
// class that may substitute the offline backend's result.
func failedTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

func (f *Facade) logFailover(op string, err error) {
	f.logger.Warn("Network path unavailable, serving from offline backend",
		zap.String("op", op),
		zap.Error(err),
	)
}

// ListCategories lists categories, falling back to the offline set when the
// network path is down.
func (f *Facade) ListCategories(ctx context.Context) ([]domain.Category, bool, error) {
	categories, err := f.remote.ListCategories(ctx)
	if err == nil {
		return categories, false, nil
	}
	if !failedTransport(err) {
		return nil, false, err
	}
	f.logFailover("list_categories", err)

	categories, err = f.local.ListCategories(ctx)
	return categories, true, err
}

// ListProducts lists a product page. The offline backend does not paginate,
// so its result is shaped into a single page holding every filtered item:
// the caller never special-cases the backend origin.
func (f *Facade) ListProducts(ctx context.Context, params query.Params) (*ProductPage, error) {
	products, pagination, err := f.remote.ListProducts(ctx, params)
	if err == nil {
		return &ProductPage{Products: products, Pagination: pagination}, nil
	}
	if !failedTransport(err) {
		return nil, err
	}
	f.logFailover("list_products", err)

	filtered, err := service.FilterProducts(ctx, f.localStore, params)
	if err != nil {
		return nil, err
	}
	return &ProductPage{
		Products: filtered,
		Pagination: query.Pagination{
			CurrentPage:  1,
			TotalPages:   1,
			TotalItems:   len(filtered),
			ItemsPerPage: len(filtered),
		},
		Degraded: true,
	}, nil
}

// GetProduct has no offline equivalent: a transport failure is reported as
// a failure rather than silently returning empty.
func (f *Facade) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return f.remote.GetProduct(ctx, id)
}

// CreateProduct creates a product, writing to the offline collection when
// the network path is down. Ids are not portable across backends.
func (f *Facade) CreateProduct(ctx context.Context, input service.ProductInput) (int64, bool, error) {
	id, err := f.remote.CreateProduct(ctx, input)
	if err == nil {
		return id, false, nil
	}
	if !failedTransport(err) {
		return 0, false, err
	}
	f.logFailover("create_product", err)

	id, err = f.local.CreateProduct(ctx, input)
	return id, true, err
}

// UpdateProduct updates a product on whichever backend is reachable.
func (f *Facade) UpdateProduct(ctx context.Context, id int64, input service.ProductInput) (bool, error) {
	err := f.remote.UpdateProduct(ctx, id, input)
	if err == nil {
		return false, nil
	}
	if !failedTransport(err) {
		return false, err
	}
	f.logFailover("update_product", err)

	return true, f.local.UpdateProduct(ctx, id, input)
}

// DeleteProduct deletes a product on whichever backend is reachable.
func (f *Facade) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	err := f.remote.DeleteProduct(ctx, id)
	if err == nil {
		return false, nil
	}
	if !failedTransport(err) {
		return false, err
	}
	f.logFailover("delete_product", err)

	_, err = f.local.DeleteProduct(ctx, id)
	return true, err
}

// UploadImage stores an image. The networked path yields a server-relative
// file path; the offline path yields an inline data URI. The two encodings
// are functionally equivalent but never interchangeable as stored values.
func (f *Facade) UploadImage(ctx context.Context, filename, contentType string, payload []byte) (string, bool, error) {
	// Each attempt gets a fresh reader so the fallback never sees a
	// drained stream.
	imageURL, err := f.remote.UploadImage(ctx, filename, contentType, bytes.NewReader(payload))
	if err == nil {
		return imageURL, false, nil
	}
	if !failedTransport(err) {
		return "", false, err
	}
	f.logFailover("upload_image", err)

	imageURL, err = f.images.Save(ctx, filename, contentType, bytes.NewReader(payload), int64(len(payload)))
	return imageURL, true, err
}

// DeleteImage removes a server-managed image file. Offline it is a no-op:
// inline encodings die with the record holding them.
func (f *Facade) DeleteImage(ctx context.Context, imageURL string) (bool, error) {
	err := f.remote.DeleteImage(ctx, imageURL)
	if err == nil {
		return false, nil
	}
	if !failedTransport(err) {
		return false, err
	}
	f.logFailover("delete_image", err)

	return true, f.images.Remove(ctx, imageURL)
}
