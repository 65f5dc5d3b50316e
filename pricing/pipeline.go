package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"visual-product-builder/models"
	"visual-product-builder/repository"
)

// SnapshotStore persists a submitted snapshot image payload for an order.
// Persist must leave no partial file behind on failure; Remove cleans up a
// previously written file when a later step fails.
type SnapshotStore interface {
	Persist(ctx context.Context, orderID int64, imageData string) (filePath string, sizeBytes int64, err error)
	Remove(filePath string)
}

// Pipeline is the authoritative pricing and validation pipeline over the
// cart lifecycle. The catalog is its single source of truth: the only price
// input anywhere in the pipeline is a catalog lookup keyed by element id —
// client-supplied prices never enter.
type Pipeline struct {
	elements  repository.ElementRepositoryInterface
	products  repository.ProductRepositoryInterface
	carts     repository.CartRepositoryInterface
	orders    repository.OrderRepositoryInterface
	snapshots SnapshotStore
}

// NewPipeline creates a pricing pipeline
func NewPipeline(
	elements repository.ElementRepositoryInterface,
	products repository.ProductRepositoryInterface,
	carts repository.CartRepositoryInterface,
	orders repository.OrderRepositoryInterface,
	snapshots SnapshotStore,
) *Pipeline {
	return &Pipeline{
		elements:  elements,
		products:  products,
		carts:     carts,
		orders:    orders,
		snapshots: snapshots,
	}
}

// Ingest validates a raw submitted configuration against the live catalog.
// Malformed payloads and unknown or inactive elements degrade silently: a
// shopper's broken client state must never block checkout. The image payload
// is kept raw, and only when it carries the exact PNG data-URI prefix.
func (p *Pipeline) Ingest(ctx context.Context, rawConfig string, imageData string) (validated []models.ValidatedElement, summary string, image string) {
	if strings.TrimSpace(rawConfig) == "" {
		return nil, "", ""
	}

	var payload models.ConfigurationPayload
	if err := json.Unmarshal([]byte(rawConfig), &payload); err != nil {
		log.Printf("⚠️  Ingest: malformed configuration payload, treating as plain product: %v", err)
		return nil, "", ""
	}
	if len(payload.Elements) == 0 {
		return nil, "", ""
	}

	var parts []string
	for _, submitted := range payload.Elements {
		e, err := p.elements.GetByID(ctx, submitted.ID)
		if err != nil {
			log.Printf("❌ Ingest: catalog lookup failed for element %d: %v", submitted.ID, err)
			continue
		}
		if e == nil || !e.IsActive {
			// Dropped, not substituted
			log.Printf("⚠️  Ingest: dropping element %d (not in catalog or inactive)", submitted.ID)
			continue
		}

		validated = append(validated, models.ValidatedElement{
			ID:    e.ID,
			Name:  e.Name,
			Color: e.ColorLabel,
			Price: e.Price,
		})
		parts = append(parts, fmt.Sprintf("%s (%s)", e.Name, e.ColorLabel))
	}

	if len(validated) == 0 {
		// No customization at all; the item behaves as a plain product
		return nil, "", ""
	}

	summary = strings.Join(parts, ", ")

	if strings.HasPrefix(imageData, models.ImageDataPrefix) {
		image = imageData
	}

	log.Printf("✅ Ingest: %d of %d submitted elements validated", len(validated), len(payload.Elements))
	return validated, summary, image
}

// AddToCart runs the ingest stage and stores the resulting line item.
// The initial line price comes from the same catalog lookups; the repricing
// stage will overwrite it on every subsequent totals pass.
func (p *Pipeline) AddToCart(ctx context.Context, req *models.AddToCartRequest) (*models.CartItem, error) {
	product, err := p.products.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up product %d: %w", req.ProductID, err)
	}
	if product == nil {
		return nil, fmt.Errorf("product %d does not exist", req.ProductID)
	}

	validated, summary, image := p.Ingest(ctx, req.Configuration, req.ImageData)

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	price := product.RegularPrice
	for _, v := range validated {
		price += v.Price
	}

	item := &models.CartItem{
		CartToken:   req.CartToken,
		ProductID:   req.ProductID,
		VariationID: req.VariationID,
		Quantity:    quantity,
		Elements:    validated,
		Summary:     summary,
		ImageData:   image,
		LinePrice:   price,
	}

	if err := p.carts.EnsureCart(ctx, req.CartToken); err != nil {
		return nil, err
	}
	id, err := p.carts.AddItem(ctx, item)
	if err != nil {
		return nil, err
	}
	item.ID = id
	return item, nil
}

// Reprice recomputes the price of every customized line item from live
// catalog data and returns the cart total. All previously set prices are
// fully overwritten; there is no accumulation. Within one pass started by
// BeginPass, effects execute at most once and repeated calls return the
// first result. Repricing never fails outward per element: an element that
// vanished or went inactive simply contributes zero.
func (p *Pipeline) Reprice(ctx context.Context, cartToken string) (int64, error) {
	state := passFrom(ctx)
	if state != nil {
		state.mu.Lock()
		defer state.mu.Unlock()
		if state.repriced {
			return state.total, nil
		}
	}

	items, err := p.carts.GetItems(ctx, cartToken)
	if err != nil {
		return 0, err
	}

	var total int64
	for i := range items {
		item := &items[i]
		if item.HasCustomization() {
			price, err := p.priceItem(ctx, item)
			if err != nil {
				return 0, err
			}
			if price != item.LinePrice {
				if err := p.carts.UpdateItemPrice(ctx, item.ID, price); err != nil {
					return 0, err
				}
			}
			item.LinePrice = price
		}
		total += item.LinePrice * int64(item.Quantity)
	}

	if state != nil {
		state.repriced = true
		state.total = total
	}

	log.Printf("💰 Reprice: cart %s total = %d", cartToken, total)
	return total, nil
}

// priceItem computes base regular price plus the current catalog price of
// each still-active validated element. Price-at-validation-time is not
// reused here.
func (p *Pipeline) priceItem(ctx context.Context, item *models.CartItem) (int64, error) {
	product, err := p.products.GetByID(ctx, item.ProductID)
	if err != nil {
		return 0, fmt.Errorf("failed to look up product %d: %w", item.ProductID, err)
	}
	if product == nil {
		// Product gone from the catalog; keep the last computed price
		return item.LinePrice, nil
	}

	price := product.RegularPrice
	for _, v := range item.Elements {
		e, err := p.elements.GetByID(ctx, v.ID)
		if err != nil {
			log.Printf("❌ Reprice: catalog lookup failed for element %d: %v", v.ID, err)
			continue
		}
		if e == nil || !e.IsActive {
			continue
		}
		price += e.Price
	}
	return price, nil
}

// Materialize creates an order from a cart. The validated elements and
// summary are copied verbatim onto the order line items; elements_price is
// cached from the validated prices for historical display; items with an
// image payload start in the pending image state.
func (p *Pipeline) Materialize(ctx context.Context, cartToken string) (int64, error) {
	// Final authoritative totals pass before the order is cut
	total, err := p.Reprice(BeginPass(ctx), cartToken)
	if err != nil {
		return 0, fmt.Errorf("failed to reprice cart %s: %w", cartToken, err)
	}

	items, err := p.carts.GetItems(ctx, cartToken)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, fmt.Errorf("cart %s is empty", cartToken)
	}

	orderID, err := p.orders.CreateOrder(ctx, cartToken, total)
	if err != nil {
		return 0, err
	}

	for _, item := range items {
		var elementsPrice int64
		for _, v := range item.Elements {
			elementsPrice += v.Price
		}

		imageStatus := ""
		if item.HasCustomization() && item.ImageData != "" {
			imageStatus = models.ImageStatusPending
		}

		orderItem := &models.OrderItem{
			OrderID:       orderID,
			ProductID:     item.ProductID,
			VariationID:   item.VariationID,
			Quantity:      item.Quantity,
			Elements:      item.Elements,
			Summary:       item.Summary,
			ElementsPrice: elementsPrice,
			ImageStatus:   imageStatus,
			LinePrice:     item.LinePrice,
		}
		if _, err := p.orders.InsertItem(ctx, orderItem); err != nil {
			return 0, err
		}
	}

	log.Printf("✅ Materialize: order %d created from cart %s (%d items)", orderID, cartToken, len(items))
	return orderID, nil
}

// PersistImages runs the image-persistence stage for every order line item
// in the pending state. Failures are terminal per item (status failed) and
// never block order completion.
func (p *Pipeline) PersistImages(ctx context.Context, orderID int64, cartToken string) error {
	orderItems, err := p.orders.GetItems(ctx, orderID)
	if err != nil {
		return err
	}

	cartItems, err := p.carts.GetItems(ctx, cartToken)
	if err != nil {
		return err
	}

	for _, item := range orderItems {
		if item.ImageStatus != models.ImageStatusPending {
			continue
		}

		match := matchCartItem(cartItems, &item)
		if match == nil || match.ImageData == "" {
			log.Printf("⚠️  PersistImages: no matching cart entry for order item %d", item.ID)
			p.markImage(ctx, item.ID, models.ImageStatusFailed, nil)
			continue
		}

		filePath, size, err := p.snapshots.Persist(ctx, orderID, match.ImageData)
		if err != nil {
			log.Printf("❌ PersistImages: failed to persist snapshot for order item %d: %v", item.ID, err)
			p.markImage(ctx, item.ID, models.ImageStatusFailed, nil)
			continue
		}

		attID, err := p.orders.InsertAttachment(ctx, &models.Attachment{
			OrderID:   orderID,
			FilePath:  filePath,
			MimeType:  "image/png",
			SizeBytes: size,
		})
		if err != nil {
			log.Printf("❌ PersistImages: failed to register attachment for order item %d: %v", item.ID, err)
			p.snapshots.Remove(filePath)
			p.markImage(ctx, item.ID, models.ImageStatusFailed, nil)
			continue
		}

		p.markImage(ctx, item.ID, models.ImageStatusSaved, &attID)
		log.Printf("✅ PersistImages: snapshot saved for order item %d (attachment %d)", item.ID, attID)
	}

	return nil
}

func (p *Pipeline) markImage(ctx context.Context, itemID int64, status string, imageID *int64) {
	if err := p.orders.SetItemImage(ctx, itemID, status, imageID); err != nil {
		log.Printf("❌ Failed to set image status %s on order item %d: %v", status, itemID, err)
	}
}

// matchCartItem locates the cart entry for an order item by product id,
// variation id and exact validated-elements equality
func matchCartItem(cartItems []models.CartItem, item *models.OrderItem) *models.CartItem {
	for i := range cartItems {
		c := &cartItems[i]
		if c.ProductID != item.ProductID || c.VariationID != item.VariationID {
			continue
		}
		if elementsEqual(c.Elements, item.Elements) {
			return c
		}
	}
	return nil
}

func elementsEqual(a, b []models.ValidatedElement) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
