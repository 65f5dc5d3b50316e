package models

// Snapshot image statuses on an order line item
const (
	ImageStatusPending = "pending"
	ImageStatusSaved   = "saved"
	ImageStatusFailed  = "failed"
)

// Order represents a placed order
type Order struct {
	ID        int64  `json:"id"`
	CartToken string `json:"cartToken"`
	Status    string `json:"status"`
	Total     int64  `json:"total"`
	CreatedAt string `json:"createdAt"`
}

// OrderItem represents an order line item with the customization fields
// copied from the cart at order creation. Immutable afterwards except for
// the image status transition pending → saved|failed.
type OrderItem struct {
	ID          int64 `json:"id"`
	OrderID     int64 `json:"orderId"`
	ProductID   int   `json:"productId"`
	VariationID int   `json:"variationId"`
	Quantity    int   `json:"quantity"`

	Elements []ValidatedElement `json:"_vpb_elements,omitempty"`
	Summary  string             `json:"_vpb_configuration,omitempty"`
	// ElementsPrice is the cached sum of validated element prices at order
	// time, kept for historical display even if catalog prices change later.
	ElementsPrice int64  `json:"_vpb_elements_price"`
	ImageStatus   string `json:"_vpb_has_image,omitempty"`
	ImageID       *int64 `json:"_vpb_image_id,omitempty"`

	LinePrice int64 `json:"linePrice"`
}

// Attachment is a durable stored snapshot image linked to an order
type Attachment struct {
	ID        int64  `json:"id"`
	OrderID   int64  `json:"orderId"`
	FilePath  string `json:"filePath"`
	MimeType  string `json:"mimeType"`
	SizeBytes int64  `json:"sizeBytes"`
	CreatedAt string `json:"createdAt"`
}

// CheckoutRequest is the request body for order creation
type CheckoutRequest struct {
	CartToken string `json:"cart_token"`
}
