package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/swiftstore/internal/service"
)

// CheckoutHandler exposes the three-phase payment protocol.
type CheckoutHandler struct {
	checkout *service.CheckoutService
	logger   *slog.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkout *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckoutHandler{checkout: checkout, logger: logger}
}

// Initiate handles POST /api/startbutton/initiate
func (h *CheckoutHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	var req service.InitiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.checkout.Initiate(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Process handles GET /api/startbutton/process?paymentId=...: the provider
// sends the shopper back here; we look the order up and redirect. Always a
// 302, never an error body.
func (h *CheckoutHandler) Process(w http.ResponseWriter, r *http.Request) {
	paymentID := r.URL.Query().Get("paymentId")
	target := h.checkout.Process(r.Context(), paymentID)
	http.Redirect(w, r, target, http.StatusFound)
}

// Webhook handles POST /api/startbutton/webhook. Structurally invalid
// payloads get a 400; everything else acks with success so the provider
// never retry-storms us, even when the referenced order is unknown.
func (h *CheckoutHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	var event service.WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"status":  "error",
			"message": "invalid webhook payload",
		})
		return
	}
	if !event.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"status":  "error",
			"message": "missing event_type, data.id, or data.reference",
		})
		return
	}

	h.checkout.HandleWebhook(r.Context(), event)

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "event processed",
	})
}
