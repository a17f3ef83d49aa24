package transport

import (
	"errors"
	"net/http"
	"strconv"

	"stockroom/internal/domain"
	"stockroom/internal/middleware"
	"stockroom/internal/query"
	"stockroom/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for categories and products.
type ProductHandler struct {
	products service.ProductService
	logger   *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		logger:   logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", h.ListCategories)
		r.Get("/products", h.ListProducts)
		r.Get("/products/{id}", h.GetProduct)
		r.Post("/products", h.CreateProduct)
		r.Put("/products", h.UpdateProduct)
		r.Delete("/products", h.DeleteProduct)
	})
}

// ListCategories handles GET /api/categories
func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.products.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		respondError(w, statusFor(err), "failed to list categories")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"categories": categories,
	})
}

// ListProducts handles GET /api/products with search, filter, sort and
// pagination query parameters.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := query.Params{
		Search:    q.Get("search"),
		Category:  q.Get("category"),
		SortBy:    q.Get("sortBy"),
		SortOrder: query.SortOrder(q.Get("sortOrder")),
	}
	params.Page, _ = strconv.Atoi(q.Get("page"))
	params.PageSize, _ = strconv.Atoi(q.Get("limit"))
	params.Normalize()

	products, pagination, err := h.products.ListProducts(r.Context(), params)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		respondError(w, statusFor(err), "failed to list products")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"products":   products,
		"pagination": pagination,
	})
}

// GetProduct handles GET /api/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.products.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("Failed to get product", zap.Int64("id", id), zap.Error(err))
		respondError(w, statusFor(err), "failed to get product")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"product": product,
	})
}

// productRequest is the create/update payload; update carries the id.
type productRequest struct {
	ID int64 `json:"id"`
	service.ProductInput
}

// CreateProduct handles POST /api/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	id, err := h.products.CreateProduct(r.Context(), req.ProductInput)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to create product", zap.Error(err))
		respondError(w, statusFor(err), "failed to create product")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"id":      id,
	})
}

// UpdateProduct handles PUT /api/products (id in body)
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	if req.ID == 0 {
		respondError(w, http.StatusBadRequest, "product id is required")
		return
	}

	if err := h.products.UpdateProduct(r.Context(), req.ID, req.ProductInput); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Product not found")
			return
		}
		if errors.Is(err, domain.ErrValidation) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to update product", zap.Int64("id", req.ID), zap.Error(err))
		respondError(w, statusFor(err), "failed to update product")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// DeleteProduct handles DELETE /api/products?id=
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	warnings, err := h.products.DeleteProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("Failed to delete product", zap.Int64("id", id), zap.Error(err))
		respondError(w, statusFor(err), "failed to delete product")
		return
	}

	resp := map[string]interface{}{"success": true}
	if len(warnings) > 0 {
		resp["warnings"] = warnings
	}
	respondJSON(w, http.StatusOK, resp)
}

// validationMessage flattens decode/validation failures into one line.
func validationMessage(err error) string {
	if fields := middleware.FormatValidationErrors(err); len(fields) > 0 {
		msg := "validation failed:"
		for _, f := range fields {
			msg += " " + f.Field + " (" + f.Message + ")"
		}
		return msg
	}
	return "invalid request body"
}
