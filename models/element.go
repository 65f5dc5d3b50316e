package models

// Element categories
const (
	CategoryLetter = "letter"
	CategoryNumber = "number"
	CategoryShape  = "shape"
)

// ValidCategories is a map of valid element categories
var ValidCategories = map[string]bool{
	CategoryLetter: true,
	CategoryNumber: true,
	CategoryShape:  true,
}

// Element represents a purchasable visual unit in the catalog
type Element struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	ColorLabel   string `json:"colorLabel"`
	ColorHex     string `json:"colorHex"`
	ImageRef     string `json:"imageRef"`
	Price        int64  `json:"price"` // in cents
	SortOrder    int    `json:"sortOrder"`
	IsSVG        bool   `json:"isSvg"`
	IsActive     bool   `json:"isActive"`
	CollectionID *int   `json:"collectionId,omitempty"`
	CreatedAt    string `json:"createdAt"`
}

// ValidatedElement is a server-rebuilt element reference stored on cart
// and order line items. Price is the catalog price at validation time.
type ValidatedElement struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Price int64  `json:"price"`
}

// SaveElementRequest is the request body for creating or updating an element
type SaveElementRequest struct {
	Name         string `json:"name"`
	Category     string `json:"category"`
	ColorLabel   string `json:"color_label"`
	ColorHex     string `json:"color_hex"`
	ImageRef     string `json:"image_ref"`
	Price        int64  `json:"price"`
	SortOrder    int    `json:"sort_order"`
	IsSVG        bool   `json:"is_svg"`
	IsActive     bool   `json:"is_active"`
	CollectionID *int   `json:"collection_id"`
}

// BulkPriceRequest is the request body for bulk price updates.
// Exactly one of Amount or Percent should be set.
type BulkPriceRequest struct {
	Category string   `json:"category"`
	Amount   *int64   `json:"amount"`  // absolute delta in cents
	Percent  *float64 `json:"percent"` // percentage delta, e.g. 10 = +10%
}

// ElementImport represents an element image discovered in a Drive folder,
// parsed from its filename, before it is inserted into the catalog
type ElementImport struct {
	DriveFileID string `json:"driveFileId"`
	ImageURL    string `json:"imageUrl"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	ColorLabel  string `json:"colorLabel"`
	IsSVG       bool   `json:"isSvg"`
}
