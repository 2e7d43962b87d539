package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/swiftstore/internal/service"
)

// OrdersHandler handles authenticated, dashboard-originated order routes.
type OrdersHandler struct {
	orders *service.OrderService
	logger *slog.Logger
}

// NewOrdersHandler creates a new orders handler
func NewOrdersHandler(orders *service.OrderService, logger *slog.Logger) *OrdersHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrdersHandler{orders: orders, logger: logger}
}

type createOrderRequest struct {
	StoreID       string              `json:"storeId"`
	CustomerID    string              `json:"customerId,omitempty"`
	CustomerEmail string              `json:"customerEmail,omitempty"`
	CustomerPhone string              `json:"customerPhone,omitempty"`
	Items         []service.OrderLine `json:"items"`
}

// Create handles POST /api/orders: the direct dashboard path that commits
// order creation and stock decrement atomically. The customer may be given
// by id or, for walk-in entry, by email (found or created in the store).
func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.StoreID == "" {
		writeError(w, http.StatusBadRequest, "storeId is required")
		return
	}

	customerID := req.CustomerID
	if customerID == "" {
		customer, err := h.orders.FindOrCreateCustomer(r.Context(), req.StoreID, req.CustomerEmail, req.CustomerPhone)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		customerID = customer.ID
	}

	order, err := h.orders.CreateOrder(r.Context(), userID, req.StoreID, customerID, req.Items)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

// List handles GET /api/stores/{storeId}/orders
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context(), callerID(r), r.PathValue("storeId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// Get handles GET /api/stores/{storeId}/orders/{orderId}
func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), callerID(r), r.PathValue("storeId"), r.PathValue("orderId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
