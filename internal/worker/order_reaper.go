package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/swiftstore/internal/domain"
	"github.com/yourorg/swiftstore/internal/observability/metrics"
)

// OrderReaper periodically cancels PENDING checkout orders whose shopper
// never completed payment. The checkout path defers stock decrement to the
// payment webhook, so a stale checkout order holds no stock and cancelling
// it is purely a bookkeeping transition. Dashboard orders decrement stock
// at creation and are never reaped.
type OrderReaper struct {
	orders     domain.OrderRepository
	logger     *slog.Logger
	interval   time.Duration
	pendingTTL time.Duration
}

// NewOrderReaper creates a new order reaper
func NewOrderReaper(orders domain.OrderRepository, logger *slog.Logger, interval, pendingTTL time.Duration) *OrderReaper {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderReaper{
		orders:     orders,
		logger:     logger,
		interval:   interval,
		pendingTTL: pendingTTL,
	}
}

// Start begins the reaper loop. It runs until ctx is cancelled.
func (w *OrderReaper) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("order reaper started",
		slog.Duration("interval", w.interval),
		slog.Duration("pending_ttl", w.pendingTTL),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("order reaper stopped")
			return
		case <-ticker.C:
			w.reap(ctx)
		}
	}
}

func (w *OrderReaper) reap(ctx context.Context) {
	cutoff := time.Now().Add(-w.pendingTTL)
	ids, err := w.orders.CancelStalePending(ctx, cutoff)
	if err != nil {
		w.logger.Error("failed to reap stale pending orders",
			slog.String("error", err.Error()),
		)
		return
	}
	if len(ids) == 0 {
		return
	}

	metrics.ObserveOrdersReaped(len(ids))
	for _, id := range ids {
		w.logger.Info("cancelled stale pending order", slog.String("order_id", id))
	}
}
