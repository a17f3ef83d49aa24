// Package query computes the visible product set for a request: category
// join, search, filter, sort and pagination. It is independent of which
// record store produced the rows, so all three backends share one semantic.
package query

import (
	"sort"
	"strconv"
	"strings"

	"stockroom/internal/domain"
)

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

const (
	// MaxPageSize is the hard ceiling on requested page sizes.
	MaxPageSize = 100

	// DefaultPageSize is used when no limit is requested.
	DefaultPageSize = 50

	// CategoryAll disables category filtering.
	CategoryAll = "all"
)

// validSortFields guards ORDER BY inputs; anything else falls back to
// created_at.
var validSortFields = map[string]bool{
	"name":            true,
	"created_at":      true,
	"updated_at":      true,
	"remaining_stock": true,
	"selling_price":   true,
}

// Params captures one product listing request.
type Params struct {
	Search    string
	Category  string // "all" or a category id
	Page      int
	PageSize  int
	SortBy    string
	SortOrder SortOrder
}

// Normalize clamps and defaults the parameters in place: page >= 1,
// page size in [1, MaxPageSize], a whitelisted sort field and a valid
// direction.
func (p *Params) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	if !validSortFields[p.SortBy] {
		p.SortBy = "created_at"
	}
	if p.SortOrder != SortOrderAsc && p.SortOrder != SortOrderDesc {
		p.SortOrder = SortOrderDesc
	}
	if p.Category == "" {
		p.Category = CategoryAll
	}
}

// CategoryID returns the parsed category filter, or nil when filtering is
// disabled or the value is not an id.
func (p *Params) CategoryID() *int64 {
	if p.Category == "" || p.Category == CategoryAll {
		return nil
	}
	id, err := strconv.ParseInt(p.Category, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

// Pagination is the metadata returned alongside every page.
type Pagination struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNextPage  bool `json:"hasNextPage"`
	HasPrevPage  bool `json:"hasPrevPage"`
}

// NewPagination derives the metadata for a page over totalItems matches.
func NewPagination(page, pageSize, totalItems int) Pagination {
	totalPages := 0
	if totalItems > 0 {
		totalPages = (totalItems + pageSize - 1) / pageSize
	}
	return Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   totalItems,
		ItemsPerPage: pageSize,
		HasNextPage:  page < totalPages,
		HasPrevPage:  page > 1 && totalItems > 0,
	}
}

// Matches reports whether the product passes the search and category
// predicates. The same predicate backs both the count and the page, so the
// two can never disagree.
func Matches(p *domain.Product, params *Params) bool {
	if search := strings.TrimSpace(params.Search); search != "" {
		needle := strings.ToLower(search)
		if !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			return false
		}
	}
	if id := params.CategoryID(); id != nil {
		if p.CategoryID == nil || *p.CategoryID != *id {
			return false
		}
	}
	return true
}

// Filter returns the products matching the search and category predicates,
// with category names resolved.
func Filter(products []domain.Product, categories []domain.Category, params Params) []domain.Product {
	params.Normalize()

	matched := make([]domain.Product, 0, len(products))
	for i := range products {
		if Matches(&products[i], &params) {
			matched = append(matched, products[i])
		}
	}
	domain.ResolveCategoryNames(matched, categories)
	sortProducts(matched, params.SortBy, params.SortOrder)
	return matched
}

// Run executes the full pipeline and slices out the requested page. A page
// past the end yields an empty slice, not an error.
func Run(products []domain.Product, categories []domain.Category, params Params) ([]domain.Product, Pagination) {
	params.Normalize()

	matched := Filter(products, categories, params)

	page := NewPagination(params.Page, params.PageSize, len(matched))

	offset := (params.Page - 1) * params.PageSize
	if offset >= len(matched) {
		return []domain.Product{}, page
	}
	end := offset + params.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], page
}

func sortProducts(products []domain.Product, sortBy string, order SortOrder) {
	less := func(a, b *domain.Product) bool {
		switch sortBy {
		case "name":
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		case "updated_at":
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.Before(b.UpdatedAt)
			}
		case "remaining_stock":
			if a.RemainingStock != b.RemainingStock {
				return a.RemainingStock < b.RemainingStock
			}
		case "selling_price":
			if a.SellingPrice != b.SellingPrice {
				return a.SellingPrice < b.SellingPrice
			}
		default: // created_at
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		}
		// Equal keys never flip with the direction; ids break ties
		// ascending so ordering is deterministic.
		return false
	}

	sort.SliceStable(products, func(i, j int) bool {
		a, b := &products[i], &products[j]
		if less(a, b) {
			return order == SortOrderAsc
		}
		if less(b, a) {
			return order == SortOrderDesc
		}
		return a.ID < b.ID
	})
}
