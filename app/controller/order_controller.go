package controller

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"visual-product-builder/models"
	"visual-product-builder/pricing"
	"visual-product-builder/repository"
	"visual-product-builder/service"
)

// OrderController handles checkout and order read endpoints
type OrderController struct {
	repository      repository.OrderRepositoryInterface
	pipeline        *pricing.Pipeline
	sheetService    *service.SheetService
	snapshotService *service.SnapshotService
}

// NewOrderController creates a new OrderController
func NewOrderController(
	repo repository.OrderRepositoryInterface,
	pipeline *pricing.Pipeline,
	sheetService *service.SheetService,
	snapshotService *service.SnapshotService,
) *OrderController {
	return &OrderController{
		repository:      repo,
		pipeline:        pipeline,
		sheetService:    sheetService,
		snapshotService: snapshotService,
	}
}

// Checkout handles POST /checkout. Materializes the order from the cart,
// then runs image persistence. Image failures never block the order.
func (c *OrderController) Checkout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.CartToken) == "" {
		http.Error(w, "cart_token is required", http.StatusBadRequest)
		return
	}

	orderID, err := c.pipeline.Materialize(r.Context(), req.CartToken)
	if err != nil {
		log.Printf("❌ Checkout: %v", err)
		if strings.Contains(err.Error(), "is empty") {
			http.Error(w, "Cart is empty", http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to create order", http.StatusInternalServerError)
		return
	}

	// Synchronous within order processing; per-item failures are terminal
	// statuses, not errors
	if err := c.pipeline.PersistImages(r.Context(), orderID, req.CartToken); err != nil {
		log.Printf("⚠️  Checkout: image persistence pass failed for order %d: %v", orderID, err)
	}

	order, err := c.repository.GetOrder(r.Context(), orderID)
	if err != nil || order == nil {
		log.Printf("❌ Checkout: failed to load created order %d: %v", orderID, err)
		http.Error(w, "Failed to load order", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// GetOrder handles GET /admin/orders/:id, returning the order with its items
func (c *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := c.orderIDFromPath(w, r.URL.Path, "")
	if !ok {
		return
	}

	order, err := c.repository.GetOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("❌ GetOrder %d: %v", orderID, err)
		http.Error(w, "Failed to get order", http.StatusInternalServerError)
		return
	}
	if order == nil {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}

	items, err := c.repository.GetItems(r.Context(), orderID)
	if err != nil {
		log.Printf("❌ GetOrder %d items: %v", orderID, err)
		http.Error(w, "Failed to get order items", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"order": order,
		"items": items,
	})
}

// Sheet handles GET /admin/orders/:id/sheet?format=html|pdf
func (c *OrderController) Sheet(w http.ResponseWriter, r *http.Request) {
	orderID, ok := c.orderIDFromPath(w, r.URL.Path, "/sheet")
	if !ok {
		return
	}

	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = "pdf"
	}

	switch format {
	case "html":
		html, err := c.sheetService.RenderSheetHTML(r.Context(), orderID)
		if err != nil {
			log.Printf("❌ Sheet %d: %v", orderID, err)
			http.Error(w, "Failed to render sheet", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(html))
	case "pdf":
		pdf, err := c.sheetService.GeneratePDF(r.Context(), orderID)
		if err != nil {
			log.Printf("❌ Sheet %d: %v", orderID, err)
			http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="order_%d_sheet.pdf"`, orderID))
		w.Write(pdf)
	default:
		http.Error(w, "format must be html or pdf", http.StatusBadRequest)
	}
}

// Thumbnail handles GET /admin/orders/:id/items/:itemID/thumbnail
func (c *OrderController) Thumbnail(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/admin/orders/")
	parts := strings.Split(strings.TrimSuffix(path, "/thumbnail"), "/items/")
	if len(parts) != 2 {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}

	orderID, err1 := strconv.ParseInt(parts[0], 10, 64)
	itemID, err2 := strconv.ParseInt(parts[1], 10, 64)
	if err1 != nil || err2 != nil {
		http.Error(w, "Invalid order or item id", http.StatusBadRequest)
		return
	}

	items, err := c.repository.GetItems(r.Context(), orderID)
	if err != nil {
		log.Printf("❌ Thumbnail: %v", err)
		http.Error(w, "Failed to load order items", http.StatusInternalServerError)
		return
	}

	for _, item := range items {
		if item.ID != itemID {
			continue
		}
		if item.ImageStatus != models.ImageStatusSaved || item.ImageID == nil {
			http.Error(w, "No saved snapshot for this item", http.StatusNotFound)
			return
		}

		att, err := c.repository.GetAttachment(r.Context(), *item.ImageID)
		if err != nil || att == nil {
			http.Error(w, "Attachment not found", http.StatusNotFound)
			return
		}

		thumb, err := c.snapshotService.Thumbnail(att)
		if err != nil {
			log.Printf("❌ Thumbnail: %v", err)
			http.Error(w, "Failed to generate thumbnail", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(thumb)
		return
	}

	http.Error(w, "Order item not found", http.StatusNotFound)
}

// orderIDFromPath extracts the :id segment of /admin/orders/:id[suffix]
func (c *OrderController) orderIDFromPath(w http.ResponseWriter, path, suffix string) (int64, bool) {
	raw := strings.TrimPrefix(path, "/admin/orders/")
	raw = strings.TrimSuffix(raw, suffix)
	raw = strings.TrimSuffix(raw, "/")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		http.Error(w, "Invalid order id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
