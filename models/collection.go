package models

// Collection represents a named, themed grouping of elements
type Collection struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	ThemeColor  string `json:"themeColor"`
	Thumbnail   string `json:"thumbnail"`
	IsSample    bool   `json:"isSample"`
	IsActive    bool   `json:"isActive"`
	SortOrder   int    `json:"sortOrder"`
	CreatedAt   string `json:"createdAt"`
}

// ProductCollection links a collection to a product.
// The (product_id, collection_id) pair is unique.
type ProductCollection struct {
	ProductID    int `json:"productId"`
	CollectionID int `json:"collectionId"`
	SortOrder    int `json:"sortOrder"`
}

// SaveCollectionRequest is the request body for creating or updating a collection
type SaveCollectionRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	ThemeColor  string `json:"theme_color"`
	Thumbnail   string `json:"thumbnail"`
	IsSample    bool   `json:"is_sample"`
	IsActive    bool   `json:"is_active"`
	SortOrder   int    `json:"sort_order"`
}

// AdminResult is the structured success/failure signal returned by
// catalog mutation endpoints
type AdminResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      int    `json:"id,omitempty"`
}
