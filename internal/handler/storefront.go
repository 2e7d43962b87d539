package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/swiftstore/internal/service"
	"github.com/yourorg/swiftstore/internal/tenant"
)

// StorefrontHandler serves the public, shopper-facing surface. No
// authentication; tenancy comes from the subdomain, either as a path
// parameter (the public API) or via the router's tags (tenant-context
// routes).
type StorefrontHandler struct {
	stores  *service.StoreService
	catalog *service.CatalogService
	logger  *slog.Logger
}

// NewStorefrontHandler creates a new storefront handler
func NewStorefrontHandler(stores *service.StoreService, catalog *service.CatalogService, logger *slog.Logger) *StorefrontHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StorefrontHandler{stores: stores, catalog: catalog, logger: logger}
}

// GetBySubdomain handles GET /api/storefront/{subdomain}: the public
// store+catalog projection.
func (h *StorefrontHandler) GetBySubdomain(w http.ResponseWriter, r *http.Request) {
	view, err := h.stores.Storefront(r.Context(), r.PathValue("subdomain"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Products handles GET /api/storefront/products: published products of the
// store resolved from the request's host. This route must be reached
// through the edge router; without tenant tags it fails with the distinct
// tenant-context error, never a bare 500.
func (h *StorefrontHandler) Products(w http.ResponseWriter, r *http.Request) {
	tc, err := tenant.RequireTenant(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	products, err := h.catalog.ListProducts(r.Context(), tc.StoreID, true)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// Page handles GET /{subdomain}: the storefront page path produced by the
// router's rewrite. Served as the same projection as the public API; the
// rendering front end consumes it.
func (h *StorefrontHandler) Page(w http.ResponseWriter, r *http.Request) {
	tc, err := tenant.RequireTenant(r)
	if err != nil {
		// Direct hits on /{something} without a resolved tenant are not
		// storefronts.
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	view, verr := h.stores.Storefront(r.Context(), tc.Subdomain)
	if verr != nil {
		writeServiceError(w, verr)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
