package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yourorg/swiftstore/internal/domain"
	"github.com/yourorg/swiftstore/internal/tenant"
)

func (f *fixture) checkoutService(gateway *fakeGateway, dedupe EventDeduper) *CheckoutService {
	return NewCheckoutService(
		f.orders, f.customers, f.products, f.stores,
		gateway, dedupe, nil, nil,
		"USD", "http://swiftstore.test",
	)
}

func TestInitiateAssignsPaymentIDInTwoSteps(t *testing.T) {
	f := seed(t)
	gw := &fakeGateway{}
	s := f.checkoutService(gw, nil)
	ctx := context.Background()

	res, err := s.Initiate(ctx, InitiateRequest{
		StoreID:       f.store.ID,
		CustomerID:    f.customer.ID,
		Items:         []OrderLine{{VariantID: f.variant.ID, Quantity: 2}},
		CustomerEmail: "shopper@example.com",
	})
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}

	if res.Amount != 2000 || res.Currency != "USD" || res.Status != "PENDING" {
		t.Errorf("result = %+v", res)
	}
	// Final id encodes the order id; the provisional one must be gone.
	if !strings.HasSuffix(res.PaymentID, res.OrderID) {
		t.Errorf("payment id %q does not encode order id %q", res.PaymentID, res.OrderID)
	}
	order, err := f.orders.GetByID(ctx, f.store.ID, res.OrderID)
	if err != nil {
		t.Fatalf("order not persisted: %v", err)
	}
	if order.PaymentID != res.PaymentID {
		t.Errorf("persisted payment id = %q, want %q", order.PaymentID, res.PaymentID)
	}
	if !strings.Contains(res.RedirectURL, res.PaymentID) {
		t.Errorf("redirect url %q must carry the payment id", res.RedirectURL)
	}
	// Stock settles at webhook time, not initiation.
	if got := f.products.stock(f.variant.ID); got != 3 {
		t.Errorf("stock after initiate = %d, want 3 (deferred decrement)", got)
	}
	if len(gw.registered) != 1 || gw.registered[0].OrderID != res.OrderID {
		t.Errorf("provider registration = %+v", gw.registered)
	}
}

func TestInitiateInsufficientStockNamesShortfall(t *testing.T) {
	f := seed(t)
	s := f.checkoutService(&fakeGateway{}, nil)

	_, err := s.Initiate(context.Background(), InitiateRequest{
		StoreID:    f.store.ID,
		CustomerID: f.customer.ID,
		Items:      []OrderLine{{VariantID: f.variant.ID, Quantity: 5}},
	})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("err = %v, want insufficient stock", err)
	}
	if !strings.Contains(err.Error(), "requested 5, available 3") {
		t.Errorf("error %q must name the shortfall", err.Error())
	}
}

func TestInitiateUnknownCustomerIsNotFound(t *testing.T) {
	f := seed(t)
	s := f.checkoutService(&fakeGateway{}, nil)

	_, err := s.Initiate(context.Background(), InitiateRequest{
		StoreID:    f.store.ID,
		CustomerID: "ghost",
		Items:      []OrderLine{{VariantID: f.variant.ID, Quantity: 1}},
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func initiated(t *testing.T, f *fixture, s *CheckoutService) *InitiateResult {
	t.Helper()
	res, err := s.Initiate(context.Background(), InitiateRequest{
		StoreID:    f.store.ID,
		CustomerID: f.customer.ID,
		Items:      []OrderLine{{VariantID: f.variant.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	return res
}

func TestProcessRedirectsToOrderSuccess(t *testing.T) {
	f := seed(t)
	s := f.checkoutService(&fakeGateway{}, nil)
	res := initiated(t, f, s)

	got := s.Process(context.Background(), res.PaymentID)
	want := "http://swiftstore.test/acme/order-success?orderId=" + res.OrderID
	if got != want {
		t.Errorf("process redirect = %q, want %q", got, want)
	}
}

func TestProcessUnknownPaymentRedirectsToCart(t *testing.T) {
	f := seed(t)
	s := f.checkoutService(&fakeGateway{}, nil)

	// Tenant known from the host: back to that store's cart.
	ctx := tenant.WithContext(context.Background(), tenant.Context{StoreID: f.store.ID, Subdomain: "acme"})
	if got := s.Process(ctx, "sb_0_ghost"); got != "http://swiftstore.test/acme/cart?error=order_not_found" {
		t.Errorf("tenant-scoped miss redirect = %q", got)
	}

	// No tenant: apex with the error flag.
	if got := s.Process(context.Background(), "sb_0_ghost"); got != "http://swiftstore.test/?error=order_not_found" {
		t.Errorf("apex miss redirect = %q", got)
	}
}

func TestWebhookSuccessSettlesOrderAndStock(t *testing.T) {
	f := seed(t)
	s := f.checkoutService(&fakeGateway{}, newMemDeduper())
	res := initiated(t, f, s)
	ctx := context.Background()

	s.HandleWebhook(ctx, WebhookEvent{
		EventType: "payment.success",
		Data:      WebhookData{ID: res.PaymentID, Reference: res.OrderID},
	})

	order, _ := f.orders.GetByID(ctx, f.store.ID, res.OrderID)
	if order.Status != domain.OrderPaid {
		t.Errorf("status = %s, want PAID", order.Status)
	}
	if got := f.products.stock(f.variant.ID); got != 1 {
		t.Errorf("stock after settlement = %d, want 1", got)
	}
}

func TestWebhookDuplicateSuccessDoesNotDoubleDecrement(t *testing.T) {
	f := seed(t)
	s := f.checkoutService(&fakeGateway{}, newMemDeduper())
	res := initiated(t, f, s)
	ctx := context.Background()

	ev := WebhookEvent{
		EventType: "payment.success",
		Data:      WebhookData{ID: res.PaymentID, Reference: res.OrderID},
	}
	s.HandleWebhook(ctx, ev)
	s.HandleWebhook(ctx, ev)

	if got := f.products.stock(f.variant.ID); got != 1 {
		t.Errorf("stock after duplicate delivery = %d, want 1", got)
	}
}

func TestWebhookFailedAndCancelledTransitions(t *testing.T) {
	f := seed(t)
	s := f.checkoutService(&fakeGateway{}, newMemDeduper())
	ctx := context.Background()

	res := initiated(t, f, s)
	s.HandleWebhook(ctx, WebhookEvent{
		EventType: "payment.failed",
		Data:      WebhookData{ID: res.PaymentID, Reference: res.OrderID},
	})
	order, _ := f.orders.GetByID(ctx, f.store.ID, res.OrderID)
	if order.Status != domain.OrderFailed {
		t.Errorf("status = %s, want FAILED", order.Status)
	}

	// A later cancellation must not move an already-failed order.
	s.HandleWebhook(ctx, WebhookEvent{
		EventType: "payment.cancelled",
		Data:      WebhookData{ID: "evt-other", Reference: res.OrderID},
	})
	order, _ = f.orders.GetByID(ctx, f.store.ID, res.OrderID)
	if order.Status != domain.OrderFailed {
		t.Errorf("status after late cancel = %s, want FAILED", order.Status)
	}

	// No stock moves on failure paths.
	if got := f.products.stock(f.variant.ID); got != 3 {
		t.Errorf("stock = %d, want 3", got)
	}
}

func TestWebhookUnknownEventTypeIsIgnored(t *testing.T) {
	f := seed(t)
	s := f.checkoutService(&fakeGateway{}, newMemDeduper())
	res := initiated(t, f, s)
	ctx := context.Background()

	s.HandleWebhook(ctx, WebhookEvent{
		EventType: "payment.refund_requested",
		Data:      WebhookData{ID: "evt-x", Reference: res.OrderID},
	})

	order, _ := f.orders.GetByID(ctx, f.store.ID, res.OrderID)
	if order.Status != domain.OrderPending {
		t.Errorf("status = %s, want PENDING (unknown events mutate nothing)", order.Status)
	}
	if got := f.products.stock(f.variant.ID); got != 3 {
		t.Errorf("stock = %d, want 3", got)
	}
}

func TestWebhookUnknownOrderIsSwallowed(t *testing.T) {
	f := seed(t)
	s := f.checkoutService(&fakeGateway{}, newMemDeduper())

	// Must not panic or mutate anything; the handler acks regardless.
	s.HandleWebhook(context.Background(), WebhookEvent{
		EventType: "payment.success",
		Data:      WebhookData{ID: "evt-y", Reference: "no-such-order"},
	})
	if got := f.products.stock(f.variant.ID); got != 3 {
		t.Errorf("stock = %d, want 3", got)
	}
}

func TestInitiateProviderFailureSurfaces(t *testing.T) {
	f := seed(t)
	s := f.checkoutService(&fakeGateway{failRegister: true}, nil)

	_, err := s.Initiate(context.Background(), InitiateRequest{
		StoreID:    f.store.ID,
		CustomerID: f.customer.ID,
		Items:      []OrderLine{{VariantID: f.variant.ID, Quantity: 1}},
	})
	if err == nil {
		t.Fatal("expected provider failure to surface")
	}
}
