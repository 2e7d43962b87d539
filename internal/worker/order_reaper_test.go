package worker

import (
	"context"
	"testing"
	"time"

	"github.com/yourorg/swiftstore/internal/domain"
)

type stubOrderRepo struct {
	domain.OrderRepository
	orders map[string]*domain.Order
}

func (s *stubOrderRepo) CancelStalePending(ctx context.Context, cutoff time.Time) ([]string, error) {
	var ids []string
	for _, o := range s.orders {
		if o.Status == domain.OrderPending && o.PaymentID != "" && o.CreatedAt.Before(cutoff) {
			o.Status = domain.OrderCancelled
			ids = append(ids, o.ID)
		}
	}
	return ids, nil
}

func TestReapCancelsOnlyStalePendingCheckout(t *testing.T) {
	now := time.Now()
	repo := &stubOrderRepo{orders: map[string]*domain.Order{
		"stale":  {ID: "stale", Status: domain.OrderPending, PaymentID: "sb_1_stale", CreatedAt: now.Add(-2 * time.Hour)},
		"fresh":  {ID: "fresh", Status: domain.OrderPending, PaymentID: "sb_1_fresh", CreatedAt: now.Add(-time.Minute)},
		"paid":   {ID: "paid", Status: domain.OrderPaid, PaymentID: "sb_1_paid", CreatedAt: now.Add(-2 * time.Hour)},
		"failed": {ID: "failed", Status: domain.OrderFailed, PaymentID: "sb_1_failed", CreatedAt: now.Add(-2 * time.Hour)},
		// Dashboard order: no payment id, stock already decremented at
		// creation. Reaping it would leak the decrement.
		"manual": {ID: "manual", Status: domain.OrderPending, CreatedAt: now.Add(-2 * time.Hour)},
	}}

	w := NewOrderReaper(repo, nil, time.Minute, time.Hour)
	w.reap(context.Background())

	want := map[string]domain.OrderStatus{
		"stale":  domain.OrderCancelled,
		"fresh":  domain.OrderPending,
		"paid":   domain.OrderPaid,
		"failed": domain.OrderFailed,
		"manual": domain.OrderPending,
	}
	for id, status := range want {
		if got := repo.orders[id].Status; got != status {
			t.Errorf("order %s status = %s, want %s", id, got, status)
		}
	}
}
