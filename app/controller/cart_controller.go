package controller

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"visual-product-builder/models"
	"visual-product-builder/pricing"
	"visual-product-builder/repository"
)

// CartController handles HTTP requests for the cart
type CartController struct {
	repository repository.CartRepositoryInterface
	pipeline   *pricing.Pipeline
}

// NewCartController creates a new CartController
func NewCartController(repo repository.CartRepositoryInterface, pipeline *pricing.Pipeline) *CartController {
	return &CartController{
		repository: repo,
		pipeline:   pipeline,
	}
}

// AddItem handles POST /cart/items, the native form-submission path.
// The configuration arrives as a raw JSON string, exactly as a hidden form
// field would carry it. An empty cart_token starts a new cart.
func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.AddToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.CartToken) == "" {
		req.CartToken = uuid.NewString()
	}
	if req.ProductID <= 0 {
		http.Error(w, "product_id must be greater than 0", http.StatusBadRequest)
		return
	}

	item, err := c.pipeline.AddToCart(r.Context(), &req)
	if err != nil {
		log.Printf("❌ AddItem: %v", err)
		if strings.Contains(err.Error(), "does not exist") {
			http.Error(w, "Product not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to add to cart", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// GetCart handles GET /cart/:token.
// Every view of the cart is a totals pass: all customized line items are
// repriced from live catalog data before the cart is returned.
func (c *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/cart/"), "/")
	if token == "" || strings.Contains(token, "/") {
		http.Error(w, "Invalid cart token", http.StatusBadRequest)
		return
	}

	ctx := pricing.BeginPass(r.Context())
	total, err := c.pipeline.Reprice(ctx, token)
	if err != nil {
		log.Printf("❌ GetCart: reprice failed: %v", err)
		http.Error(w, "Failed to load cart", http.StatusInternalServerError)
		return
	}

	items, err := c.repository.GetItems(ctx, token)
	if err != nil {
		log.Printf("❌ GetCart: %v", err)
		http.Error(w, "Failed to load cart", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []models.CartItem{}
	}

	writeJSON(w, http.StatusOK, models.CartView{
		Token: token,
		Items: items,
		Total: total,
	})
}

// DeleteItem handles DELETE /cart/items/:id
func (c *CartController) DeleteItem(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/cart/items/"), "/")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		http.Error(w, "Invalid cart item id", http.StatusBadRequest)
		return
	}

	if err := c.repository.DeleteItem(r.Context(), id); err != nil {
		log.Printf("❌ DeleteItem %d: %v", id, err)
		if strings.Contains(err.Error(), "does not exist") {
			http.Error(w, "Cart item not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to delete cart item", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
