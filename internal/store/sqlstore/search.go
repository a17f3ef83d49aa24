package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"stockroom/internal/domain"
	"stockroom/internal/query"
)

// SearchProducts is the SQL-accelerated listing path: the filter predicate
// is pushed down as WHERE clauses and the count and page queries share it,
// so totalItems always agrees with the page contents. Results match the
// in-memory query engine for plain substring searches.
func (s *Store) SearchProducts(ctx context.Context, params query.Params) ([]domain.Product, query.Pagination, error) {
	params.Normalize()

	where := []string{}
	args := []interface{}{}

	if search := strings.TrimSpace(params.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		where = append(where, "(LOWER(p.name) LIKE ? OR LOWER(p.description) LIKE ?)")
		args = append(args, pattern, pattern)
	}

	if id := params.CategoryID(); id != nil {
		where = append(where, "p.category_id = ?")
		args = append(args, *id)
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products p %s", whereClause)
	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, query.Pagination{}, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize

	// Sort field and order come from the normalized whitelist, never from
	// raw request input. Ties break by id ascending.
	pageQuery := fmt.Sprintf(`
		SELECT p.id, p.name, p.description, p.category_id, p.purchase_price,
		       p.selling_price, p.remaining_stock, p.min_stock_level, p.image_url,
		       p.created_at, p.updated_at,
		       COALESCE(c.name, ?) AS category_name
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		%s
		ORDER BY p.%s %s, p.id ASC
		LIMIT ? OFFSET ?
	`, whereClause, params.SortBy, params.SortOrder)

	queryArgs := append([]interface{}{domain.UnknownCategoryName}, args...)
	queryArgs = append(queryArgs, params.PageSize, offset)

	rows, err := s.db.QueryContext(ctx, pageQuery, queryArgs...)
	if err != nil {
		return nil, query.Pagination{}, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var (
			p          domain.Product
			categoryID sql.NullInt64
		)
		err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &categoryID, &p.PurchasePrice,
			&p.SellingPrice, &p.RemainingStock, &p.MinStockLevel, &p.ImageURL,
			&p.CreatedAt, &p.UpdatedAt, &p.CategoryName,
		)
		if err != nil {
			return nil, query.Pagination{}, fmt.Errorf("failed to scan product: %w", err)
		}
		if categoryID.Valid {
			p.CategoryID = &categoryID.Int64
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, query.Pagination{}, fmt.Errorf("error iterating products: %w", err)
	}

	return products, query.NewPagination(params.Page, params.PageSize, total), nil
}
