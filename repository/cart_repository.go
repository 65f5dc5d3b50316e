package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"visual-product-builder/db"
	"visual-product-builder/models"
)

// CartRepository handles database operations for carts and cart items.
// Validated elements are stored as JSONB so the customization survives cart
// serialization unchanged.
type CartRepository struct{}

// NewCartRepository creates a new CartRepository
func NewCartRepository() *CartRepository {
	return &CartRepository{}
}

// Ensure CartRepository implements CartRepositoryInterface
var _ CartRepositoryInterface = (*CartRepository)(nil)

// EnsureCart creates the cart row if it does not exist yet
func (r *CartRepository) EnsureCart(ctx context.Context, token string) error {
	query := `
		INSERT INTO carts (token, created_at, updated_at)
		VALUES ($1, NOW(), NOW())
		ON CONFLICT (token) DO NOTHING
	`
	if _, err := db.DB.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("failed to ensure cart %s: %w", token, err)
	}
	return nil
}

// AddItem inserts a cart line item and returns its id
func (r *CartRepository) AddItem(ctx context.Context, item *models.CartItem) (int64, error) {
	elementsJSON, err := json.Marshal(item.Elements)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal validated elements: %w", err)
	}

	query := `
		INSERT INTO cart_items (cart_token, product_id, variation_id, quantity, vpb_elements, vpb_configuration, vpb_image_data, line_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var id int64
	err = db.DB.QueryRowContext(ctx, query,
		item.CartToken,
		item.ProductID,
		item.VariationID,
		item.Quantity,
		elementsJSON,
		item.Summary,
		item.ImageData,
		item.LinePrice,
	).Scan(&id)
	if err != nil {
		log.Printf("❌ Error inserting cart item: %v", err)
		return 0, fmt.Errorf("failed to insert cart item: %w", err)
	}

	log.Printf("🛒 Cart item %d added to cart %s (product=%d, elements=%d)", id, item.CartToken, item.ProductID, len(item.Elements))
	return id, nil
}

const cartItemColumns = `id, cart_token, product_id, variation_id, quantity, vpb_elements, vpb_configuration, vpb_image_data, line_price`

func scanCartItem(row interface {
	Scan(dest ...interface{}) error
}) (*models.CartItem, error) {
	var item models.CartItem
	var elementsJSON []byte
	err := row.Scan(
		&item.ID,
		&item.CartToken,
		&item.ProductID,
		&item.VariationID,
		&item.Quantity,
		&elementsJSON,
		&item.Summary,
		&item.ImageData,
		&item.LinePrice,
	)
	if err != nil {
		return nil, err
	}
	if len(elementsJSON) > 0 {
		if err := json.Unmarshal(elementsJSON, &item.Elements); err != nil {
			return nil, fmt.Errorf("failed to unmarshal validated elements: %w", err)
		}
	}
	return &item, nil
}

// GetItems returns all line items in a cart, oldest first
func (r *CartRepository) GetItems(ctx context.Context, token string) ([]models.CartItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM cart_items WHERE cart_token = $1 ORDER BY id ASC`, cartItemColumns)

	rows, err := db.DB.QueryContext(ctx, query, token)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	var items []models.CartItem
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// GetItem returns a single cart line item, or nil if it does not exist
func (r *CartRepository) GetItem(ctx context.Context, itemID int64) (*models.CartItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM cart_items WHERE id = $1`, cartItemColumns)

	item, err := scanCartItem(db.DB.QueryRowContext(ctx, query, itemID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cart item %d: %w", itemID, err)
	}
	return item, nil
}

// UpdateItemPrice overwrites the line price computed by the repricing stage
func (r *CartRepository) UpdateItemPrice(ctx context.Context, itemID int64, price int64) error {
	result, err := db.DB.ExecContext(ctx,
		`UPDATE cart_items SET line_price = $1 WHERE id = $2`, price, itemID,
	)
	if err != nil {
		return fmt.Errorf("failed to update price for cart item %d: %w", itemID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("cart item with id %d does not exist", itemID)
	}
	return nil
}

// DeleteItem removes a cart line item
func (r *CartRepository) DeleteItem(ctx context.Context, itemID int64) error {
	result, err := db.DB.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete cart item %d: %w", itemID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("cart item with id %d does not exist", itemID)
	}
	return nil
}
