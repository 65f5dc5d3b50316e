package models

// CartItem represents a cart line item, extended with the validated
// customization fields produced by the ingest stage
type CartItem struct {
	ID          int64  `json:"id"`
	CartToken   string `json:"cartToken"`
	ProductID   int    `json:"productId"`
	VariationID int    `json:"variationId"`
	Quantity    int    `json:"quantity"`

	// Customization extension. Elements is the server-rebuilt validated
	// list; Summary is the human-readable configuration string; ImageData
	// is the raw submitted snapshot payload, stored as-is and decoded only
	// at order time.
	Elements  []ValidatedElement `json:"vpb_elements,omitempty"`
	Summary   string             `json:"vpb_configuration,omitempty"`
	ImageData string             `json:"vpb_image_data,omitempty"`

	// LinePrice is the authoritative price set by the repricing stage,
	// in cents. It is fully overwritten on every totals pass.
	LinePrice int64 `json:"linePrice"`
}

// HasCustomization reports whether the item carries validated elements
func (i *CartItem) HasCustomization() bool {
	return len(i.Elements) > 0
}

// AddToCartRequest is the request body for the add-to-cart endpoint.
// Configuration carries the transport payload as a raw JSON string, the
// same way a hidden form field would.
type AddToCartRequest struct {
	CartToken     string `json:"cart_token"`
	ProductID     int    `json:"product_id"`
	VariationID   int    `json:"variation_id"`
	Quantity      int    `json:"quantity"`
	Configuration string `json:"vpb_configuration"`
	ImageData     string `json:"vpb_image_data"`
}

// CartView is the response body for the cart endpoint
type CartView struct {
	Token string     `json:"token"`
	Items []CartItem `json:"items"`
	Total int64      `json:"total"`
}
