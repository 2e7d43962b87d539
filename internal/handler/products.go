package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/swiftstore/internal/service"
)

// ProductsHandler handles authenticated catalog management. Every route is
// nested under the store id, and ownership is verified before any catalog
// call; a mismatch reads as not found.
type ProductsHandler struct {
	catalog *service.CatalogService
	stores  *service.StoreService
	logger  *slog.Logger
}

// NewProductsHandler creates a new products handler
func NewProductsHandler(catalog *service.CatalogService, stores *service.StoreService, logger *slog.Logger) *ProductsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductsHandler{catalog: catalog, stores: stores, logger: logger}
}

// ownedStore verifies the path's store belongs to the caller and returns
// the store id, or writes the 404 itself.
func (h *ProductsHandler) ownedStore(w http.ResponseWriter, r *http.Request) (string, bool) {
	storeID := r.PathValue("storeId")
	if !h.stores.VerifyStoreOwnership(r.Context(), storeID, callerID(r)) {
		writeError(w, http.StatusNotFound, "not found")
		return "", false
	}
	return storeID, true
}

// List handles GET /api/stores/{storeId}/products
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	storeID, ok := h.ownedStore(w, r)
	if !ok {
		return
	}
	products, err := h.catalog.ListProducts(r.Context(), storeID, false)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// Create handles POST /api/stores/{storeId}/products
func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	storeID, ok := h.ownedStore(w, r)
	if !ok {
		return
	}
	var input service.CreateProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	product, err := h.catalog.CreateProduct(r.Context(), storeID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// Get handles GET /api/stores/{storeId}/products/{productId}
func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	storeID, ok := h.ownedStore(w, r)
	if !ok {
		return
	}
	product, err := h.catalog.GetProduct(r.Context(), storeID, r.PathValue("productId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// Update handles PUT /api/stores/{storeId}/products/{productId}
func (h *ProductsHandler) Update(w http.ResponseWriter, r *http.Request) {
	storeID, ok := h.ownedStore(w, r)
	if !ok {
		return
	}
	var input service.UpdateProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	product, err := h.catalog.UpdateProduct(r.Context(), storeID, r.PathValue("productId"), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/stores/{storeId}/products/{productId}
func (h *ProductsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	storeID, ok := h.ownedStore(w, r)
	if !ok {
		return
	}
	if err := h.catalog.DeleteProduct(r.Context(), storeID, r.PathValue("productId")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// CreateVariant handles POST /api/stores/{storeId}/products/{productId}/variants
func (h *ProductsHandler) CreateVariant(w http.ResponseWriter, r *http.Request) {
	storeID, ok := h.ownedStore(w, r)
	if !ok {
		return
	}
	var input service.CreateVariantInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	variant, err := h.catalog.AddVariant(r.Context(), storeID, r.PathValue("productId"), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, variant)
}

// DeleteVariant handles DELETE /api/stores/{storeId}/products/{productId}/variants/{variantId}
func (h *ProductsHandler) DeleteVariant(w http.ResponseWriter, r *http.Request) {
	storeID, ok := h.ownedStore(w, r)
	if !ok {
		return
	}
	err := h.catalog.DeleteVariant(r.Context(), storeID, r.PathValue("productId"), r.PathValue("variantId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
