package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"visual-product-builder/db"
	"visual-product-builder/models"
)

// CollectionRepository handles database operations for collections
type CollectionRepository struct{}

// NewCollectionRepository creates a new CollectionRepository
func NewCollectionRepository() *CollectionRepository {
	return &CollectionRepository{}
}

// Ensure CollectionRepository implements CollectionRepositoryInterface
var _ CollectionRepositoryInterface = (*CollectionRepository)(nil)

const collectionColumns = `id, name, slug, description, theme_color, thumbnail, is_sample, is_active, sort_order, created_at`

func scanCollection(row interface {
	Scan(dest ...interface{}) error
}) (*models.Collection, error) {
	var c models.Collection
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Slug,
		&c.Description,
		&c.ThemeColor,
		&c.Thumbnail,
		&c.IsSample,
		&c.IsActive,
		&c.SortOrder,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByID returns a collection by id, or nil if it does not exist
func (r *CollectionRepository) GetByID(ctx context.Context, id int) (*models.Collection, error) {
	query := fmt.Sprintf(`SELECT %s FROM collections WHERE id = $1`, collectionColumns)

	c, err := scanCollection(db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get collection %d: %w", id, err)
	}
	return c, nil
}

// List returns collections ordered by sort_order then id
func (r *CollectionRepository) List(ctx context.Context, activeOnly bool) ([]models.Collection, error) {
	query := fmt.Sprintf(`SELECT %s FROM collections`, collectionColumns)
	if activeOnly {
		query += " WHERE is_active = true"
	}
	query += " ORDER BY sort_order ASC, id ASC"

	rows, err := db.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	var collections []models.Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		collections = append(collections, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collections: %w", err)
	}

	return collections, nil
}

// Count returns the total number of collections
func (r *CollectionRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := db.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM collections`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count collections: %w", err)
	}
	return count, nil
}

// Insert creates a new collection and returns its id
func (r *CollectionRepository) Insert(ctx context.Context, req *models.SaveCollectionRequest) (int, error) {
	log.Printf("📦 Insert collection: name=%s, slug=%s", req.Name, req.Slug)

	query := `
		INSERT INTO collections (name, slug, description, theme_color, thumbnail, is_sample, is_active, sort_order, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id
	`

	var id int
	err := db.DB.QueryRowContext(ctx, query,
		req.Name,
		req.Slug,
		req.Description,
		req.ThemeColor,
		req.Thumbnail,
		req.IsSample,
		req.IsActive,
		req.SortOrder,
	).Scan(&id)
	if err != nil {
		log.Printf("❌ Error inserting collection: %v", err)
		return 0, fmt.Errorf("failed to insert collection: %w", err)
	}

	log.Printf("✅ Collection inserted with id=%d", id)
	return id, nil
}

// Update updates an existing collection
func (r *CollectionRepository) Update(ctx context.Context, id int, req *models.SaveCollectionRequest) error {
	query := `
		UPDATE collections
		SET name = $1, slug = $2, description = $3, theme_color = $4, thumbnail = $5,
		    is_sample = $6, is_active = $7, sort_order = $8
		WHERE id = $9
	`

	result, err := db.DB.ExecContext(ctx, query,
		req.Name,
		req.Slug,
		req.Description,
		req.ThemeColor,
		req.Thumbnail,
		req.IsSample,
		req.IsActive,
		req.SortOrder,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update collection %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("collection with id %d does not exist", id)
	}

	return nil
}

// Delete removes a collection. Elements referencing it keep existing with a
// nulled collection_id (ON DELETE SET NULL on the foreign key).
func (r *CollectionRepository) Delete(ctx context.Context, id int) error {
	result, err := db.DB.ExecContext(ctx, `DELETE FROM collections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete collection %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("collection with id %d does not exist", id)
	}

	log.Printf("🗑️  Collection %d deleted", id)
	return nil
}

// LinkProduct links a collection to a product. Linking the same pair twice
// is a no-op (unique pair constraint, ON CONFLICT DO NOTHING).
func (r *CollectionRepository) LinkProduct(ctx context.Context, productID, collectionID, sortOrder int) error {
	query := `
		INSERT INTO product_collections (product_id, collection_id, sort_order)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_id, collection_id) DO NOTHING
	`

	if _, err := db.DB.ExecContext(ctx, query, productID, collectionID, sortOrder); err != nil {
		return fmt.Errorf("failed to link product %d to collection %d: %w", productID, collectionID, err)
	}
	return nil
}

// UnlinkProduct removes a product/collection link
func (r *CollectionRepository) UnlinkProduct(ctx context.Context, productID, collectionID int) error {
	query := `DELETE FROM product_collections WHERE product_id = $1 AND collection_id = $2`

	if _, err := db.DB.ExecContext(ctx, query, productID, collectionID); err != nil {
		return fmt.Errorf("failed to unlink product %d from collection %d: %w", productID, collectionID, err)
	}
	return nil
}
