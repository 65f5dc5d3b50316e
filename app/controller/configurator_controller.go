package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"visual-product-builder/models"
	"visual-product-builder/pricing"
	"visual-product-builder/repository"
	"visual-product-builder/session"
)

// ConfiguratorController exposes the configurator session state machine over
// the AJAX surface the storefront uses
type ConfiguratorController struct {
	manager     *session.Manager
	elementRepo repository.ElementRepositoryInterface
	productRepo repository.ProductRepositoryInterface
	pipeline    *pricing.Pipeline
}

// NewConfiguratorController creates a new ConfiguratorController
func NewConfiguratorController(
	manager *session.Manager,
	elementRepo repository.ElementRepositoryInterface,
	productRepo repository.ProductRepositoryInterface,
	pipeline *pricing.Pipeline,
) *ConfiguratorController {
	return &ConfiguratorController{
		manager:     manager,
		elementRepo: elementRepo,
		productRepo: productRepo,
		pipeline:    pipeline,
	}
}

type sessionView struct {
	SessionID    string                  `json:"sessionId"`
	ProductID    int                     `json:"productId"`
	Elements     []models.SessionElement `json:"elements"`
	Count        int                     `json:"count"`
	Limit        int                     `json:"limit"`
	DisplayTotal int64                   `json:"displayTotal"`
	CanReorder   bool                    `json:"canReorder"`
}

func viewOf(s *session.Session) sessionView {
	elements := s.Elements()
	if elements == nil {
		elements = []models.SessionElement{}
	}
	return sessionView{
		SessionID:    s.ID,
		ProductID:    s.ProductID,
		Elements:     elements,
		Count:        len(elements),
		Limit:        s.Limit,
		DisplayTotal: s.DisplayTotal(),
		CanReorder:   s.CanReorder,
	}
}

// Create handles POST /configurator/sessions.
// With cart_item_id set, the saved cart configuration replaces local state
// before the session is returned. With previous_session_id set, a fresh
// local draft is restored instead.
func (c *ConfiguratorController) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID         int    `json:"product_id"`
		CartItemID        int64  `json:"cart_item_id"`
		PreviousSessionID string `json:"previous_session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	product, err := c.productRepo.GetByID(r.Context(), req.ProductID)
	if err != nil {
		log.Printf("❌ Create session: product lookup failed: %v", err)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	if product == nil {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}

	var s *session.Session
	if req.CartItemID == 0 && req.PreviousSessionID != "" {
		s, err = c.manager.Resume(r.Context(), req.PreviousSessionID, product)
	} else {
		s, err = c.manager.Create(r.Context(), product, req.CartItemID)
	}
	if err != nil {
		log.Printf("❌ Create session: %v", err)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, viewOf(s))
}

// Get handles GET /configurator/sessions/:id
func (c *ConfiguratorController) Get(w http.ResponseWriter, r *http.Request) {
	s := c.sessionFromPath(w, r)
	if s == nil {
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}

// AddElement handles POST /configurator/sessions/:id/elements.
// The element is resolved from the live catalog; its current price becomes
// the price-at-add-time used for the display total.
func (c *ConfiguratorController) AddElement(w http.ResponseWriter, r *http.Request) {
	s := c.sessionFromPath(w, r)
	if s == nil {
		return
	}

	var req struct {
		ElementID int `json:"element_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	element, err := c.elementRepo.GetByID(r.Context(), req.ElementID)
	if err != nil {
		log.Printf("❌ AddElement: catalog lookup failed: %v", err)
		http.Error(w, "Failed to add element", http.StatusInternalServerError)
		return
	}
	if element == nil || !element.IsActive {
		http.Error(w, "Element not available", http.StatusNotFound)
		return
	}

	err = s.AddElement(r.Context(), models.SessionElement{
		ID:       element.ID,
		Name:     element.Name,
		Color:    element.ColorLabel,
		ColorHex: element.ColorHex,
		IsSVG:    element.IsSVG,
		Price:    element.Price,
	})
	if err != nil {
		if errors.Is(err, session.ErrLimitReached) {
			// Blocking, user-visible warning; state unchanged
			writeJSON(w, http.StatusConflict, map[string]interface{}{
				"warning": err.Error(),
				"session": viewOf(s),
			})
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, viewOf(s))
}

// Undo handles POST /configurator/sessions/:id/undo
func (c *ConfiguratorController) Undo(w http.ResponseWriter, r *http.Request) {
	s := c.sessionFromPath(w, r)
	if s == nil {
		return
	}

	s.Undo(r.Context())
	writeJSON(w, http.StatusOK, viewOf(s))
}

// Reset handles POST /configurator/sessions/:id/reset
func (c *ConfiguratorController) Reset(w http.ResponseWriter, r *http.Request) {
	s := c.sessionFromPath(w, r)
	if s == nil {
		return
	}

	var req struct {
		Confirm bool `json:"confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if err := s.Reset(r.Context(), req.Confirm); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, viewOf(s))
}

// Reorder handles POST /configurator/sessions/:id/reorder
func (c *ConfiguratorController) Reorder(w http.ResponseWriter, r *http.Request) {
	s := c.sessionFromPath(w, r)
	if s == nil {
		return
	}

	var req struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if err := s.Reorder(r.Context(), req.From, req.To); err != nil {
		if errors.Is(err, session.ErrReorderNotAllowed) {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, viewOf(s))
}

// Submit handles POST /configurator/sessions/:id/submit.
// Serializes the transport payload (no prices) and hands off to the pricing
// pipeline's add-to-cart. The submission latch rejects re-entry while a
// submission, including its best-effort snapshot, is in flight.
func (c *ConfiguratorController) Submit(w http.ResponseWriter, r *http.Request) {
	s := c.sessionFromPath(w, r)
	if s == nil {
		return
	}

	var req struct {
		CartToken   string `json:"cart_token"`
		VariationID int    `json:"variation_id"`
		Quantity    int    `json:"quantity"`
		ImageData   string `json:"image_data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.CartToken) == "" {
		http.Error(w, "cart_token is required", http.StatusBadRequest)
		return
	}

	release, err := s.BeginSubmit()
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	defer release()

	payload, err := json.Marshal(s.Payload())
	if err != nil {
		log.Printf("❌ Submit: failed to serialize payload: %v", err)
		http.Error(w, "Failed to submit configuration", http.StatusInternalServerError)
		return
	}

	item, err := c.pipeline.AddToCart(r.Context(), &models.AddToCartRequest{
		CartToken:     req.CartToken,
		ProductID:     s.ProductID,
		VariationID:   req.VariationID,
		Quantity:      req.Quantity,
		Configuration: string(payload),
		ImageData:     req.ImageData,
	})
	if err != nil {
		log.Printf("❌ Submit: %v", err)
		http.Error(w, "Failed to add to cart", http.StatusInternalServerError)
		return
	}

	// The draft is intentionally not cleared: the shopper may resume or
	// duplicate the design within the freshness window.
	c.manager.Drop(s.ID)

	writeJSON(w, http.StatusCreated, item)
}

// sessionFromPath resolves the :id segment of /configurator/sessions/:id[/action]
func (c *ConfiguratorController) sessionFromPath(w http.ResponseWriter, r *http.Request) *session.Session {
	path := strings.TrimPrefix(r.URL.Path, "/configurator/sessions/")
	id := path
	if idx := strings.Index(path, "/"); idx >= 0 {
		id = path[:idx]
	}
	if id == "" {
		http.Error(w, "Invalid session id", http.StatusBadRequest)
		return nil
	}

	s := c.manager.Get(id)
	if s == nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return nil
	}
	return s
}
