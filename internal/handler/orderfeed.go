package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yourorg/swiftstore/internal/events"
	"github.com/yourorg/swiftstore/internal/service"
)

// OrderFeedHandler streams order lifecycle events to the store owner's
// dashboard over a WebSocket. Events for other stores are filtered out
// before they reach the wire.
type OrderFeedHandler struct {
	hub            *events.Hub
	stores         *service.StoreService
	logger         *slog.Logger
	allowedOrigins []string
}

// NewOrderFeedHandler creates a new order feed handler
func NewOrderFeedHandler(hub *events.Hub, stores *service.StoreService, allowedOrigins []string, logger *slog.Logger) *OrderFeedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderFeedHandler{
		hub:            hub,
		stores:         stores,
		logger:         logger,
		allowedOrigins: allowedOrigins,
	}
}

func (h *OrderFeedHandler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range h.allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			h.logger.Warn("websocket origin rejected", slog.String("origin", origin))
			return false
		},
	}
}

// ServeHTTP handles GET /ws/orders. The guard has already attached the
// caller's identity; the feed is scoped to the caller's own store.
func (h *OrderFeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}
	store, err := h.stores.GetStoreForUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	upgrader := h.getUpgrader()
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer ws.Close()

	sub, cancel := h.hub.Subscribe()
	defer cancel()

	// Drain client frames so close/ping handling works; we never read data.
	go func() {
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case ev, ok := <-sub:
			if !ok {
				return
			}
			if ev.StoreID != store.ID {
				continue
			}
			if err := ws.WriteJSON(ev); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.logger.Debug("order feed closed", slog.String("store_id", store.ID))
				}
				return
			}
		}
	}
}
