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
	"visual-product-builder/service"
)

// ElementController handles HTTP requests for the element catalog
type ElementController struct {
	repository    repository.ElementRepositoryInterface
	importService service.ImportServiceInterface
	policy        entitlement.Policy
}

// NewElementController creates a new ElementController.
// importService may be nil when Drive credentials are not configured.
func NewElementController(repo repository.ElementRepositoryInterface, importService service.ImportServiceInterface, policy entitlement.Policy) *ElementController {
	return &ElementController{
		repository:    repo,
		importService: importService,
		policy:        policy,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ Error encoding response: %v", err)
	}
}

func writeAdminError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.AdminResult{Success: false, Message: message})
}

// List handles GET /admin/elements?category=&color=&collection_id=&active=
func (c *ElementController) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var filter repository.ElementFilterParams
	if v := strings.TrimSpace(r.URL.Query().Get("category")); v != "" {
		filter.Category = &v
	}
	if v := strings.TrimSpace(r.URL.Query().Get("color")); v != "" {
		filter.ColorLabel = &v
	}
	if v := strings.TrimSpace(r.URL.Query().Get("collection_id")); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "collection_id must be an integer", http.StatusBadRequest)
			return
		}
		filter.CollectionID = &id
	}
	filter.ActiveOnly = r.URL.Query().Get("active") == "true"

	elements, err := c.repository.List(r.Context(), filter)
	if err != nil {
		log.Printf("❌ List elements: %v", err)
		http.Error(w, "Failed to list elements", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, elements)
}

// Get handles GET /admin/elements/:id
func (c *ElementController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r.URL.Path, "/admin/elements/")
	if err != nil {
		http.Error(w, "Invalid element id", http.StatusBadRequest)
		return
	}

	element, err := c.repository.GetByID(r.Context(), id)
	if err != nil {
		log.Printf("❌ Get element %d: %v", id, err)
		http.Error(w, "Failed to get element", http.StatusInternalServerError)
		return
	}
	if element == nil {
		http.Error(w, "Element not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, element)
}

// Create handles POST /admin/elements
func (c *ElementController) Create(w http.ResponseWriter, r *http.Request) {
	var req models.SaveElementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAdminError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	if msg := c.validateElement(&req); msg != "" {
		writeAdminError(w, http.StatusBadRequest, msg)
		return
	}

	id, err := c.repository.Insert(r.Context(), &req)
	if err != nil {
		log.Printf("❌ Create element: %v", err)
		writeAdminError(w, http.StatusInternalServerError, "Failed to save element")
		return
	}

	writeJSON(w, http.StatusCreated, models.AdminResult{Success: true, Message: "Element created", ID: id})
}

// Update handles PUT /admin/elements/:id
func (c *ElementController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r.URL.Path, "/admin/elements/")
	if err != nil {
		http.Error(w, "Invalid element id", http.StatusBadRequest)
		return
	}

	var req models.SaveElementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAdminError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	if msg := c.validateElement(&req); msg != "" {
		writeAdminError(w, http.StatusBadRequest, msg)
		return
	}

	if err := c.repository.Update(r.Context(), id, &req); err != nil {
		log.Printf("❌ Update element %d: %v", id, err)
		if strings.Contains(err.Error(), "does not exist") {
			writeAdminError(w, http.StatusNotFound, "Element not found")
			return
		}
		writeAdminError(w, http.StatusInternalServerError, "Failed to save element")
		return
	}

	writeJSON(w, http.StatusOK, models.AdminResult{Success: true, Message: "Element updated", ID: id})
}

// Delete handles DELETE /admin/elements/:id
func (c *ElementController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r.URL.Path, "/admin/elements/")
	if err != nil {
		http.Error(w, "Invalid element id", http.StatusBadRequest)
		return
	}

	if err := c.repository.Delete(r.Context(), id); err != nil {
		log.Printf("❌ Delete element %d: %v", id, err)
		if strings.Contains(err.Error(), "does not exist") {
			writeAdminError(w, http.StatusNotFound, "Element not found")
			return
		}
		writeAdminError(w, http.StatusInternalServerError, "Failed to delete element")
		return
	}

	writeJSON(w, http.StatusOK, models.AdminResult{Success: true, Message: "Element deleted", ID: id})
}

// BulkPrice handles POST /admin/elements/bulk-price
func (c *ElementController) BulkPrice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.BulkPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAdminError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	updated, err := c.repository.BulkPrice(r.Context(), &req)
	if err != nil {
		log.Printf("❌ BulkPrice: %v", err)
		writeAdminError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, models.AdminResult{Success: true, Message: fmt.Sprintf("%d elements updated", updated)})
}

// Import handles POST /admin/elements/import?folderId=...
func (c *ElementController) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !c.policy.CanUse(entitlement.FeatureDriveImport) {
		writeAdminError(w, http.StatusForbidden, "Drive import is not available on your plan")
		return
	}
	if c.importService == nil {
		writeAdminError(w, http.StatusServiceUnavailable, "Drive import is not configured")
		return
	}

	folderID := strings.TrimSpace(r.URL.Query().Get("folderId"))
	if folderID == "" {
		writeAdminError(w, http.StatusBadRequest, "folderId parameter is required")
		return
	}

	_, inserted, skipped, total, err := c.importService.ImportElements(r.Context(), folderID)
	if err != nil {
		log.Printf("❌ Import elements: %v", err)
		writeAdminError(w, http.StatusInternalServerError, "Failed to import elements")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"inserted": inserted,
		"skipped":  skipped,
		"total":    total,
	})
}

func (c *ElementController) validateElement(req *models.SaveElementRequest) string {
	if strings.TrimSpace(req.Name) == "" {
		return "name cannot be empty"
	}
	if !models.ValidCategories[strings.ToLower(req.Category)] {
		return "category must be letter, number or shape"
	}
	if req.Price < 0 {
		return "price cannot be negative"
	}
	if req.IsSVG && !c.policy.CanUse(entitlement.FeatureSVGUpload) {
		return "SVG elements are not available on your plan"
	}
	return ""
}

// idFromPath extracts a trailing integer id from a URL path
func idFromPath(path, prefix string) (int, error) {
	raw := strings.TrimPrefix(path, prefix)
	raw = strings.TrimSuffix(raw, "/")
	if raw == "" || strings.Contains(raw, "/") {
		return 0, fmt.Errorf("invalid id in path %s", path)
	}
	return strconv.Atoi(raw)
}
