package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"stockroom/internal/domain"
	"stockroom/internal/store"
)

// Store implements store.RecordStore against MySQL.
type Store struct {
	db *sql.DB
}

// New creates a Store over an opened pool and seeds the default catalogue
// when the category table is empty. Seeding is idempotent.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.seed(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// seed writes the default category and product sets on first use only.
func (s *Store) seed(ctx context.Context) error {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to probe categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range store.DefaultCategories() {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO categories (id, name, description, created_at) VALUES (?, ?, ?, ?)`,
			c.ID, c.Name, c.Description, c.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to seed category %q: %w", c.Name, err)
		}
	}

	for _, p := range store.DefaultProducts() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO products
				(id, name, description, category_id, purchase_price, selling_price,
				 remaining_stock, min_stock_level, image_url, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Description, p.CategoryID, p.PurchasePrice, p.SellingPrice,
			p.RemainingStock, p.MinStockLevel, p.ImageURL, p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to seed product %q: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}
	return nil
}

// ListCategories retrieves all categories ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, created_at
		FROM categories
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// ListProducts retrieves all products without ordering.
func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, category_id, purchase_price, selling_price,
		       remaining_stock, min_stock_level, image_url, created_at, updated_at
		FROM products
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// GetProduct retrieves a product by id.
func (s *Store) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var (
		p          domain.Product
		categoryID sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, category_id, purchase_price, selling_price,
		       remaining_stock, min_stock_level, image_url, created_at, updated_at
		FROM products
		WHERE id = ?
	`, id).Scan(
		&p.ID, &p.Name, &p.Description, &categoryID, &p.PurchasePrice, &p.SellingPrice,
		&p.RemainingStock, &p.MinStockLevel, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product by id: %w", err)
	}
	if categoryID.Valid {
		p.CategoryID = &categoryID.Int64
	}
	return &p, nil
}

// InsertProduct stores a new product; the id is an auto-increment surrogate
// assigned by the database.
func (s *Store) InsertProduct(ctx context.Context, p *domain.Product) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO products
			(name, description, category_id, purchase_price, selling_price,
			 remaining_stock, min_stock_level, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Description, p.CategoryID, p.PurchasePrice, p.SellingPrice,
		p.RemainingStock, p.MinStockLevel, p.ImageURL, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read assigned id: %w", err)
	}
	return id, nil
}

// ReplaceProduct updates an existing product; created_at and id are never
// touched.
func (s *Store) ReplaceProduct(ctx context.Context, id int64, p *domain.Product) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = ?, description = ?, category_id = ?, purchase_price = ?,
		    selling_price = ?, remaining_stock = ?, min_stock_level = ?,
		    image_url = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, p.Description, p.CategoryID, p.PurchasePrice, p.SellingPrice,
		p.RemainingStock, p.MinStockLevel, p.ImageURL, p.UpdatedAt, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RemoveProduct deletes a product by id.
func (s *Store) RemoveProduct(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanProducts(rows *sql.Rows) ([]domain.Product, error) {
	products := []domain.Product{}
	for rows.Next() {
		var (
			p          domain.Product
			categoryID sql.NullInt64
		)
		err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &categoryID, &p.PurchasePrice,
			&p.SellingPrice, &p.RemainingStock, &p.MinStockLevel, &p.ImageURL,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if categoryID.Valid {
			p.CategoryID = &categoryID.Int64
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}
