package repository

import (
	"context"
	"database/sql"
	"fmt"

	"visual-product-builder/db"
	"visual-product-builder/models"
)

// ProductRepository handles database reads for products
type ProductRepository struct{}

// NewProductRepository creates a new ProductRepository
func NewProductRepository() *ProductRepository {
	return &ProductRepository{}
}

// Ensure ProductRepository implements ProductRepositoryInterface
var _ ProductRepositoryInterface = (*ProductRepository)(nil)

// GetByID returns a product by id, or nil if it does not exist
func (r *ProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	query := `SELECT id, name, sku, regular_price, is_active, created_at FROM products WHERE id = $1`

	var p models.Product
	err := db.DB.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.SKU,
		&p.RegularPrice,
		&p.IsActive,
		&p.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return &p, nil
}
