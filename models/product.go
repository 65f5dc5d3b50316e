package models

// Product represents a customizable base product
type Product struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	SKU          string `json:"sku"`
	RegularPrice int64  `json:"regularPrice"` // in cents
	IsActive     bool   `json:"isActive"`
	CreatedAt    string `json:"createdAt"`
}
