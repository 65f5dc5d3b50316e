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

// OrderRepository handles database operations for orders, order items and
// snapshot attachments
type OrderRepository struct{}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

// Ensure OrderRepository implements OrderRepositoryInterface
var _ OrderRepositoryInterface = (*OrderRepository)(nil)

// CreateOrder inserts an order row and returns its id
func (r *OrderRepository) CreateOrder(ctx context.Context, cartToken string, total int64) (int64, error) {
	query := `
		INSERT INTO orders (cart_token, status, total, created_at)
		VALUES ($1, 'created', $2, NOW())
		RETURNING id
	`

	var id int64
	if err := db.DB.QueryRowContext(ctx, query, cartToken, total).Scan(&id); err != nil {
		log.Printf("❌ Error creating order: %v", err)
		return 0, fmt.Errorf("failed to create order: %w", err)
	}

	log.Printf("✅ Order %d created from cart %s (total=%d)", id, cartToken, total)
	return id, nil
}

// GetOrder returns an order by id, or nil if it does not exist
func (r *OrderRepository) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	query := `SELECT id, cart_token, status, total, created_at FROM orders WHERE id = $1`

	var o models.Order
	err := db.DB.QueryRowContext(ctx, query, orderID).Scan(
		&o.ID,
		&o.CartToken,
		&o.Status,
		&o.Total,
		&o.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order %d: %w", orderID, err)
	}
	return &o, nil
}

// InsertItem inserts an order line item and returns its id
func (r *OrderRepository) InsertItem(ctx context.Context, item *models.OrderItem) (int64, error) {
	elementsJSON, err := json.Marshal(item.Elements)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal validated elements: %w", err)
	}

	query := `
		INSERT INTO order_items (order_id, product_id, variation_id, quantity, vpb_elements, vpb_configuration, vpb_elements_price, vpb_has_image, vpb_image_id, line_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	var id int64
	err = db.DB.QueryRowContext(ctx, query,
		item.OrderID,
		item.ProductID,
		item.VariationID,
		item.Quantity,
		elementsJSON,
		item.Summary,
		item.ElementsPrice,
		item.ImageStatus,
		item.ImageID,
		item.LinePrice,
	).Scan(&id)
	if err != nil {
		log.Printf("❌ Error inserting order item: %v", err)
		return 0, fmt.Errorf("failed to insert order item: %w", err)
	}

	return id, nil
}

// GetItems returns all line items for an order, oldest first
func (r *OrderRepository) GetItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, variation_id, quantity, vpb_elements, vpb_configuration, vpb_elements_price, vpb_has_image, vpb_image_id, line_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC
	`

	rows, err := db.DB.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		var elementsJSON []byte
		var imageID sql.NullInt64
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.VariationID,
			&item.Quantity,
			&elementsJSON,
			&item.Summary,
			&item.ElementsPrice,
			&item.ImageStatus,
			&imageID,
			&item.LinePrice,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		if len(elementsJSON) > 0 {
			if err := json.Unmarshal(elementsJSON, &item.Elements); err != nil {
				return nil, fmt.Errorf("failed to unmarshal validated elements: %w", err)
			}
		}
		if imageID.Valid {
			id := imageID.Int64
			item.ImageID = &id
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

// SetItemImage updates the snapshot image status (and attachment reference)
// on an order line item. The only mutation allowed after order creation.
func (r *OrderRepository) SetItemImage(ctx context.Context, itemID int64, status string, imageID *int64) error {
	result, err := db.DB.ExecContext(ctx,
		`UPDATE order_items SET vpb_has_image = $1, vpb_image_id = $2 WHERE id = $3`,
		status, imageID, itemID,
	)
	if err != nil {
		return fmt.Errorf("failed to update image status for order item %d: %w", itemID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("order item with id %d does not exist", itemID)
	}
	return nil
}

// InsertAttachment registers a stored snapshot image and returns its id
func (r *OrderRepository) InsertAttachment(ctx context.Context, att *models.Attachment) (int64, error) {
	query := `
		INSERT INTO attachments (order_id, file_path, mime_type, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id
	`

	var id int64
	err := db.DB.QueryRowContext(ctx, query,
		att.OrderID,
		att.FilePath,
		att.MimeType,
		att.SizeBytes,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert attachment: %w", err)
	}

	log.Printf("📎 Attachment %d registered for order %d (%s)", id, att.OrderID, att.FilePath)
	return id, nil
}

// GetAttachment returns an attachment by id, or nil if it does not exist
func (r *OrderRepository) GetAttachment(ctx context.Context, id int64) (*models.Attachment, error) {
	query := `SELECT id, order_id, file_path, mime_type, size_bytes, created_at FROM attachments WHERE id = $1`

	var att models.Attachment
	err := db.DB.QueryRowContext(ctx, query, id).Scan(
		&att.ID,
		&att.OrderID,
		&att.FilePath,
		&att.MimeType,
		&att.SizeBytes,
		&att.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attachment %d: %w", id, err)
	}
	return &att, nil
}

// DeleteAttachment removes an attachment row
func (r *OrderRepository) DeleteAttachment(ctx context.Context, id int64) error {
	if _, err := db.DB.ExecContext(ctx, `DELETE FROM attachments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete attachment %d: %w", id, err)
	}
	return nil
}
