package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/yourorg/swiftstore/internal/domain"
	"github.com/yourorg/swiftstore/internal/security/middleware"
	"github.com/yourorg/swiftstore/internal/service"
)

// StoresHandler handles authenticated store management.
type StoresHandler struct {
	storeService *service.StoreService
	logger       *slog.Logger
}

// NewStoresHandler creates a new stores handler
func NewStoresHandler(storeService *service.StoreService, logger *slog.Logger) *StoresHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StoresHandler{storeService: storeService, logger: logger}
}

// callerID extracts the authenticated user id attached by the guard.
func callerID(r *http.Request) string {
	if claims := middleware.GetClaimsFromContext(r.Context()); claims != nil {
		return claims.UserID
	}
	return ""
}

// Create handles POST /api/stores
func (h *StoresHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var input service.CreateStoreInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	store, err := h.storeService.CreateStore(r.Context(), userID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, store)
}

// Get handles GET /api/stores/{storeId}
func (h *StoresHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	storeID := r.PathValue("storeId")
	if !h.storeService.VerifyStoreOwnership(r.Context(), storeID, userID) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	store, err := h.storeService.GetStoreForUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, store)
}

// Update handles PUT /api/stores/{storeId}
func (h *StoresHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	storeID := r.PathValue("storeId")

	var input struct {
		Name        string `json:"name"`
		Logo        string `json:"logo,omitempty"`
		Description string `json:"description,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.Name == "" {
		writeError(w, http.StatusBadRequest, "store name is required")
		return
	}

	store := &domain.Store{
		ID:          storeID,
		Name:        input.Name,
		Logo:        input.Logo,
		Description: input.Description,
	}
	if err := h.storeService.UpdateStore(r.Context(), userID, store); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, store)
}

// UserStore handles GET /api/users/{userId}/store: the caller's own store
// id, used by the dashboard shell after sign-in.
func (h *StoresHandler) UserStore(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" || userID != r.PathValue("userId") {
		// Asking about someone else's store reads as not found.
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	store, err := h.storeService.GetStoreForUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"storeId": store.ID})
}
