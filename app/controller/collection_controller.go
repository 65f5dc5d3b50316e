package controller

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"visual-product-builder/entitlement"
	"visual-product-builder/models"
	"visual-product-builder/repository"
)

// CollectionController handles HTTP requests for collections. Creation and
// element assignment are gated by the plan's quantitative limits.
type CollectionController struct {
	repository  repository.CollectionRepositoryInterface
	elementRepo repository.ElementRepositoryInterface
	policy      entitlement.Policy
}

// NewCollectionController creates a new CollectionController
func NewCollectionController(repo repository.CollectionRepositoryInterface, elementRepo repository.ElementRepositoryInterface, policy entitlement.Policy) *CollectionController {
	return &CollectionController{
		repository:  repo,
		elementRepo: elementRepo,
		policy:      policy,
	}
}

// List handles GET /admin/collections?active=true
func (c *CollectionController) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	collections, err := c.repository.List(r.Context(), r.URL.Query().Get("active") == "true")
	if err != nil {
		log.Printf("❌ List collections: %v", err)
		http.Error(w, "Failed to list collections", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, collections)
}

// Get handles GET /admin/collections/:id
func (c *CollectionController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r.URL.Path, "/admin/collections/")
	if err != nil {
		http.Error(w, "Invalid collection id", http.StatusBadRequest)
		return
	}

	collection, err := c.repository.GetByID(r.Context(), id)
	if err != nil {
		log.Printf("❌ Get collection %d: %v", id, err)
		http.Error(w, "Failed to get collection", http.StatusInternalServerError)
		return
	}
	if collection == nil {
		http.Error(w, "Collection not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, collection)
}

// Create handles POST /admin/collections.
// Rejected outright with a user-visible message when the plan's collection
// limit would be exceeded.
func (c *CollectionController) Create(w http.ResponseWriter, r *http.Request) {
	var req models.SaveCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAdminError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	if msg := validateCollection(&req); msg != "" {
		writeAdminError(w, http.StatusBadRequest, msg)
		return
	}

	count, err := c.repository.Count(r.Context())
	if err != nil {
		log.Printf("❌ Count collections: %v", err)
		writeAdminError(w, http.StatusInternalServerError, "Failed to save collection")
		return
	}

	limits := c.policy.Limits()
	if !entitlement.Allows(limits.MaxCollections, count) {
		writeAdminError(w, http.StatusForbidden,
			fmt.Sprintf("Your plan allows at most %d collections", limits.MaxCollections))
		return
	}

	id, err := c.repository.Insert(r.Context(), &req)
	if err != nil {
		log.Printf("❌ Create collection: %v", err)
		if strings.Contains(err.Error(), "duplicate") {
			writeAdminError(w, http.StatusConflict, "A collection with this slug already exists")
			return
		}
		writeAdminError(w, http.StatusInternalServerError, "Failed to save collection")
		return
	}

	writeJSON(w, http.StatusCreated, models.AdminResult{Success: true, Message: "Collection created", ID: id})
}

// Update handles PUT /admin/collections/:id
func (c *CollectionController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r.URL.Path, "/admin/collections/")
	if err != nil {
		http.Error(w, "Invalid collection id", http.StatusBadRequest)
		return
	}

	var req models.SaveCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAdminError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	if msg := validateCollection(&req); msg != "" {
		writeAdminError(w, http.StatusBadRequest, msg)
		return
	}

	if err := c.repository.Update(r.Context(), id, &req); err != nil {
		log.Printf("❌ Update collection %d: %v", id, err)
		if strings.Contains(err.Error(), "does not exist") {
			writeAdminError(w, http.StatusNotFound, "Collection not found")
			return
		}
		writeAdminError(w, http.StatusInternalServerError, "Failed to save collection")
		return
	}

	writeJSON(w, http.StatusOK, models.AdminResult{Success: true, Message: "Collection updated", ID: id})
}

// Delete handles DELETE /admin/collections/:id.
// Elements in the collection are kept; their collection reference is nulled.
func (c *CollectionController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r.URL.Path, "/admin/collections/")
	if err != nil {
		http.Error(w, "Invalid collection id", http.StatusBadRequest)
		return
	}

	if err := c.repository.Delete(r.Context(), id); err != nil {
		log.Printf("❌ Delete collection %d: %v", id, err)
		if strings.Contains(err.Error(), "does not exist") {
			writeAdminError(w, http.StatusNotFound, "Collection not found")
			return
		}
		writeAdminError(w, http.StatusInternalServerError, "Failed to delete collection")
		return
	}

	writeJSON(w, http.StatusOK, models.AdminResult{Success: true, Message: "Collection deleted", ID: id})
}

// AssignElement handles POST /admin/collections/:id/elements.
// Rejected when the plan's elements-per-collection limit would be exceeded.
func (c *CollectionController) AssignElement(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/admin/collections/")
	collectionID, err := strconv.Atoi(strings.TrimSuffix(path, "/elements"))
	if err != nil {
		http.Error(w, "Invalid collection id", http.StatusBadRequest)
		return
	}

	var req struct {
		ElementID int `json:"element_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAdminError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	count, err := c.elementRepo.CountByCollection(r.Context(), collectionID)
	if err != nil {
		log.Printf("❌ Count elements in collection %d: %v", collectionID, err)
		writeAdminError(w, http.StatusInternalServerError, "Failed to assign element")
		return
	}

	limits := c.policy.Limits()
	if !entitlement.Allows(limits.MaxElementsPerCollection, count) {
		writeAdminError(w, http.StatusForbidden,
			fmt.Sprintf("Your plan allows at most %d elements per collection", limits.MaxElementsPerCollection))
		return
	}

	element, err := c.elementRepo.GetByID(r.Context(), req.ElementID)
	if err != nil {
		log.Printf("❌ Get element %d: %v", req.ElementID, err)
		writeAdminError(w, http.StatusInternalServerError, "Failed to assign element")
		return
	}
	if element == nil {
		writeAdminError(w, http.StatusNotFound, "Element not found")
		return
	}

	update := &models.SaveElementRequest{
		Name:         element.Name,
		Category:     element.Category,
		ColorLabel:   element.ColorLabel,
		ColorHex:     element.ColorHex,
		ImageRef:     element.ImageRef,
		Price:        element.Price,
		SortOrder:    element.SortOrder,
		IsSVG:        element.IsSVG,
		IsActive:     element.IsActive,
		CollectionID: &collectionID,
	}
	if err := c.elementRepo.Update(r.Context(), element.ID, update); err != nil {
		log.Printf("❌ Assign element %d to collection %d: %v", element.ID, collectionID, err)
		writeAdminError(w, http.StatusInternalServerError, "Failed to assign element")
		return
	}

	writeJSON(w, http.StatusOK, models.AdminResult{Success: true, Message: "Element assigned", ID: element.ID})
}

// LinkProduct handles POST /admin/collections/:id/products
func (c *CollectionController) LinkProduct(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/admin/collections/")
	collectionID, err := strconv.Atoi(strings.TrimSuffix(path, "/products"))
	if err != nil {
		http.Error(w, "Invalid collection id", http.StatusBadRequest)
		return
	}

	var req struct {
		ProductID int `json:"product_id"`
		SortOrder int `json:"sort_order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAdminError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	if r.Method == http.MethodDelete {
		if err := c.repository.UnlinkProduct(r.Context(), req.ProductID, collectionID); err != nil {
			log.Printf("❌ Unlink product %d from collection %d: %v", req.ProductID, collectionID, err)
			writeAdminError(w, http.StatusInternalServerError, "Failed to unlink product")
			return
		}
		writeJSON(w, http.StatusOK, models.AdminResult{Success: true, Message: "Product unlinked"})
		return
	}

	if err := c.repository.LinkProduct(r.Context(), req.ProductID, collectionID, req.SortOrder); err != nil {
		log.Printf("❌ Link product %d to collection %d: %v", req.ProductID, collectionID, err)
		writeAdminError(w, http.StatusInternalServerError, "Failed to link product")
		return
	}

	writeJSON(w, http.StatusOK, models.AdminResult{Success: true, Message: "Product linked"})
}

func validateCollection(req *models.SaveCollectionRequest) string {
	if strings.TrimSpace(req.Name) == "" {
		return "name cannot be empty"
	}
	if strings.TrimSpace(req.Slug) == "" {
		return "slug cannot be empty"
	}
	return ""
}
