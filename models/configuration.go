package models

// ImageDataPrefix is the only accepted prefix for submitted snapshot images.
// Anything else is discarded at ingest.
const ImageDataPrefix = "data:image/png;base64,"

// ConfiguredElement is one element in the client→server transport payload.
// It deliberately carries no price field: price is never trusted from the
// client and is always resolved from the catalog on the server.
type ConfiguredElement struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	ColorHex string `json:"colorHex"`
	IsSVG    bool   `json:"isSvg"`
}

// ConfigurationPayload is the transport payload submitted at add-to-cart time,
// carried as a JSON string field
type ConfigurationPayload struct {
	Elements []ConfiguredElement `json:"elements"`
}

// SessionElement is an element held in an in-progress configurator session.
// Price is the catalog price at add time and is used only for the running
// display total; it never enters the transport payload.
type SessionElement struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	ColorHex string `json:"colorHex"`
	IsSVG    bool   `json:"isSvg"`
	Price    int64  `json:"price"`
}

// Transport converts a session element to its transport form, dropping price
func (e SessionElement) Transport() ConfiguredElement {
	return ConfiguredElement{
		ID:       e.ID,
		Name:     e.Name,
		Color:    e.Color,
		ColorHex: e.ColorHex,
		IsSVG:    e.IsSVG,
	}
}

// Draft is a persisted in-progress configuration, keyed per product.
// Timestamp is unix seconds at last save; consumers must ignore drafts
// older than DraftMaxAgeSeconds.
type Draft struct {
	Elements  []SessionElement `json:"elements"`
	Timestamp int64            `json:"timestamp"`
}

// DraftMaxAgeSeconds is the freshness window for persisted drafts
const DraftMaxAgeSeconds = 3600
