// Package events carries order lifecycle notifications from the services
// to in-process consumers such as the dashboard websocket feed.
package events

import (
	"log/slog"
	"sync"
	"time"

	"github.com/yourorg/swiftstore/internal/domain"
)

// OrderEvent is published whenever an order is created or changes status.
type OrderEvent struct {
	OrderID     string             `json:"orderId"`
	StoreID     string             `json:"storeId"`
	Status      domain.OrderStatus `json:"status"`
	TotalAmount int64              `json:"totalAmount"`
	At          time.Time          `json:"at"`
}

// Hub fans OrderEvents out to subscribers. Publishing never blocks: a
// subscriber that cannot keep up loses events rather than stalling the
// request path.
type Hub struct {
	mu     sync.RWMutex
	subs   map[chan OrderEvent]struct{}
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:   make(map[chan OrderEvent]struct{}),
		logger: logger,
	}
}

// Subscribe registers a consumer. The returned cancel func must be called
// to release the subscription.
func (h *Hub) Subscribe() (<-chan OrderEvent, func()) {
	ch := make(chan OrderEvent, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber with room in its buffer.
func (h *Hub) Publish(ev OrderEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.logger.Warn("dropping order event for slow subscriber",
				slog.String("order_id", ev.OrderID),
			)
		}
	}
}
