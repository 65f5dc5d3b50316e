package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math"
	"strings"

	"visual-product-builder/db"
	"visual-product-builder/models"
)

// ElementFilterParams represents optional filter parameters for elements
type ElementFilterParams struct {
	Category     *string
	ColorLabel   *string
	CollectionID *int
	ActiveOnly   bool
}

// ElementRepository handles database operations for catalog elements
type ElementRepository struct{}

// NewElementRepository creates a new ElementRepository
func NewElementRepository() *ElementRepository {
	return &ElementRepository{}
}

// Ensure ElementRepository implements ElementRepositoryInterface
var _ ElementRepositoryInterface = (*ElementRepository)(nil)

const elementColumns = `id, name, category, color_label, color_hex, image_ref, price, sort_order, is_svg, is_active, collection_id, created_at`

func scanElement(row interface {
	Scan(dest ...interface{}) error
}) (*models.Element, error) {
	var e models.Element
	var collectionID sql.NullInt64
	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Category,
		&e.ColorLabel,
		&e.ColorHex,
		&e.ImageRef,
		&e.Price,
		&e.SortOrder,
		&e.IsSVG,
		&e.IsActive,
		&collectionID,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if collectionID.Valid {
		id := int(collectionID.Int64)
		e.CollectionID = &id
	}
	return &e, nil
}

// GetByID returns a single element by id, or nil if it does not exist.
// Always reads the live row; callers rely on price and is_active being current.
func (r *ElementRepository) GetByID(ctx context.Context, id int) (*models.Element, error) {
	query := fmt.Sprintf(`SELECT %s FROM elements WHERE id = $1`, elementColumns)

	e, err := scanElement(db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get element %d: %w", id, err)
	}
	return e, nil
}

// List returns elements matching the filter, ordered by sort_order then id
func (r *ElementRepository) List(ctx context.Context, filter ElementFilterParams) ([]models.Element, error) {
	query := fmt.Sprintf(`SELECT %s FROM elements`, elementColumns)

	var conditions []string
	var args []interface{}
	argNum := 1

	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argNum))
		args = append(args, strings.ToLower(*filter.Category))
		argNum++
	}
	if filter.ColorLabel != nil {
		conditions = append(conditions, fmt.Sprintf("color_label = $%d", argNum))
		args = append(args, strings.ToLower(*filter.ColorLabel))
		argNum++
	}
	if filter.CollectionID != nil {
		conditions = append(conditions, fmt.Sprintf("collection_id = $%d", argNum))
		args = append(args, *filter.CollectionID)
		argNum++
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active = true")
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY sort_order ASC, id ASC"

	rows, err := db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list elements: %w", err)
	}
	defer rows.Close()

	var elements []models.Element
	for rows.Next() {
		e, err := scanElement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan element: %w", err)
		}
		elements = append(elements, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating elements: %w", err)
	}

	return elements, nil
}

// Insert creates a new element and returns its id
func (r *ElementRepository) Insert(ctx context.Context, req *models.SaveElementRequest) (int, error) {
	log.Printf("📦 Insert element: name=%s, category=%s, price=%d", req.Name, req.Category, req.Price)

	query := `
		INSERT INTO elements (name, category, color_label, color_hex, image_ref, price, sort_order, is_svg, is_active, collection_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING id
	`

	var id int
	err := db.DB.QueryRowContext(ctx, query,
		req.Name,
		strings.ToLower(req.Category),
		req.ColorLabel,
		req.ColorHex,
		req.ImageRef,
		req.Price,
		req.SortOrder,
		req.IsSVG,
		req.IsActive,
		req.CollectionID,
	).Scan(&id)
	if err != nil {
		log.Printf("❌ Error inserting element: %v", err)
		return 0, fmt.Errorf("failed to insert element: %w", err)
	}

	log.Printf("✅ Element inserted with id=%d", id)
	return id, nil
}

// Update updates an existing element
func (r *ElementRepository) Update(ctx context.Context, id int, req *models.SaveElementRequest) error {
	query := `
		UPDATE elements
		SET name = $1, category = $2, color_label = $3, color_hex = $4, image_ref = $5,
		    price = $6, sort_order = $7, is_svg = $8, is_active = $9, collection_id = $10
		WHERE id = $11
	`

	result, err := db.DB.ExecContext(ctx, query,
		req.Name,
		strings.ToLower(req.Category),
		req.ColorLabel,
		req.ColorHex,
		req.ImageRef,
		req.Price,
		req.SortOrder,
		req.IsSVG,
		req.IsActive,
		req.CollectionID,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update element %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("element with id %d does not exist", id)
	}

	return nil
}

// Delete removes an element from the catalog
func (r *ElementRepository) Delete(ctx context.Context, id int) error {
	result, err := db.DB.ExecContext(ctx, `DELETE FROM elements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete element %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("element with id %d does not exist", id)
	}

	log.Printf("🗑️  Element %d deleted", id)
	return nil
}

// BulkPrice applies an absolute or percentage price change to all elements in
// a category (or all elements when category is empty). Prices never go below
// zero. Returns the number of updated rows.
func (r *ElementRepository) BulkPrice(ctx context.Context, req *models.BulkPriceRequest) (int, error) {
	if req.Amount == nil && req.Percent == nil {
		return 0, fmt.Errorf("either amount or percent must be set")
	}
	if req.Amount != nil && req.Percent != nil {
		return 0, fmt.Errorf("amount and percent are mutually exclusive")
	}

	var query string
	var args []interface{}

	if req.Amount != nil {
		query = `UPDATE elements SET price = GREATEST(price + $1, 0)`
		args = append(args, *req.Amount)
	} else {
		// Round half away from zero, like a manual repricing would
		factor := 1 + *req.Percent/100
		if factor < 0 {
			factor = 0
		}
		query = `UPDATE elements SET price = GREATEST(ROUND(price * $1), 0)`
		args = append(args, math.Round(factor*10000)/10000)
	}

	if req.Category != "" {
		query += fmt.Sprintf(" WHERE category = $%d", len(args)+1)
		args = append(args, strings.ToLower(req.Category))
	}

	result, err := db.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk update prices: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	log.Printf("💰 BulkPrice: %d elements updated", affected)
	return int(affected), nil
}

// CountByCollection returns the number of elements assigned to a collection
func (r *ElementRepository) CountByCollection(ctx context.Context, collectionID int) (int, error) {
	var count int
	err := db.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM elements WHERE collection_id = $1`, collectionID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count elements in collection %d: %w", collectionID, err)
	}
	return count, nil
}

// ExistsByImageRef checks whether an element already references the given image
func (r *ElementRepository) ExistsByImageRef(ctx context.Context, imageRef string) (bool, error) {
	var exists bool
	err := db.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM elements WHERE image_ref = $1)`, imageRef,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check image_ref existence: %w", err)
	}
	return exists, nil
}

// InsertImport inserts an element discovered by the Drive import as an
// inactive row priced at zero, pending review by a catalog manager
func (r *ElementRepository) InsertImport(ctx context.Context, imp *models.ElementImport) (int, error) {
	req := &models.SaveElementRequest{
		Name:       imp.Name,
		Category:   imp.Category,
		ColorLabel: imp.ColorLabel,
		ImageRef:   imp.DriveFileID,
		Price:      0,
		IsSVG:      imp.IsSVG,
		IsActive:   false,
	}
	return r.Insert(ctx, req)
}
