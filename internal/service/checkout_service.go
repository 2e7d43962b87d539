package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/yourorg/swiftstore/internal/domain"
	"github.com/yourorg/swiftstore/internal/events"
	"github.com/yourorg/swiftstore/internal/observability/metrics"
	"github.com/yourorg/swiftstore/internal/tenant"
)

const webhookDedupeTTL = 24 * time.Hour

// EventDeduper claims a key exactly once within a TTL window. The redis
// client satisfies this; tests use an in-memory fake.
type EventDeduper interface {
	ClaimOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// CheckoutService orchestrates the three-phase payment protocol: initiate,
// redirect/process, webhook. Stock is not decremented at initiation; it
// settles when the provider confirms payment.
type CheckoutService struct {
	orders    domain.OrderRepository
	customers domain.CustomerRepository
	products  domain.ProductRepository
	stores    domain.StoreRepository
	gateway   domain.PaymentGateway
	dedupe    EventDeduper
	hub       *events.Hub
	logger    *slog.Logger
	currency  string
	baseURL   string
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	orders domain.OrderRepository,
	customers domain.CustomerRepository,
	products domain.ProductRepository,
	stores domain.StoreRepository,
	gateway domain.PaymentGateway,
	dedupe EventDeduper,
	hub *events.Hub,
	logger *slog.Logger,
	currency, baseURL string,
) *CheckoutService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckoutService{
		orders:    orders,
		customers: customers,
		products:  products,
		stores:    stores,
		gateway:   gateway,
		dedupe:    dedupe,
		hub:       hub,
		logger:    logger,
		currency:  currency,
		baseURL:   baseURL,
	}
}

// InitiateRequest is the checkout initiation body.
type InitiateRequest struct {
	StoreID       string      `json:"storeId"`
	CustomerID    string      `json:"customerId"`
	Items         []OrderLine `json:"items"`
	CustomerEmail string      `json:"customerEmail"`
	CustomerPhone string      `json:"customerPhone,omitempty"`
	ReturnURL     string      `json:"returnUrl,omitempty"`
	CancelURL     string      `json:"cancelUrl,omitempty"`
}

// InitiateResult is returned to the storefront to start the redirect.
type InitiateResult struct {
	PaymentID   string `json:"paymentId"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	RedirectURL string `json:"redirectUrl"`
	OrderID     string `json:"orderId"`
	Status      string `json:"status"`
}

// Initiate validates the cart against live stock, creates the PENDING order
// with price/name snapshots, and assigns the payment identifier in two
// steps: a provisional id before the order row exists, then the final id
// encoding the order id. No stock is decremented here.
func (s *CheckoutService) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error) {
	if req.StoreID == "" || req.CustomerID == "" {
		metrics.ObserveCheckoutInitiation("invalid")
		return nil, validationErr("storeId and customerId are required")
	}

	store, err := s.stores.GetByID(ctx, req.StoreID)
	if err != nil {
		metrics.ObserveCheckoutInitiation("not_found")
		return nil, err
	}
	if _, err := s.customers.GetByID(ctx, store.ID, req.CustomerID); err != nil {
		metrics.ObserveCheckoutInitiation("not_found")
		return nil, err
	}

	items, total, err := buildOrderItems(ctx, s.products, store.ID, req.Items, true)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			metrics.ObserveCheckoutInitiation("insufficient_stock")
		} else {
			metrics.ObserveCheckoutInitiation("invalid")
		}
		return nil, err
	}

	order := &domain.Order{
		StoreID:     store.ID,
		CustomerID:  req.CustomerID,
		Status:      domain.OrderPending,
		TotalAmount: total,
		Items:       items,
		PaymentID:   s.gateway.ProvisionalPaymentID(),
	}
	if err := s.orders.Create(ctx, order); err != nil {
		metrics.ObserveCheckoutInitiation("error")
		s.logger.Error("failed to create checkout order",
			slog.String("store_id", store.ID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	paymentID := s.gateway.PaymentIDFor(order.ID)
	if err := s.orders.UpdatePaymentID(ctx, order.ID, paymentID); err != nil {
		metrics.ObserveCheckoutInitiation("error")
		return nil, err
	}
	order.PaymentID = paymentID

	if err := s.gateway.Register(ctx, &domain.PaymentTransaction{
		PaymentID: paymentID,
		Amount:    total,
		Currency:  s.currency,
		Email:     req.CustomerEmail,
		Phone:     req.CustomerPhone,
		OrderID:   order.ID,
		ReturnURL: req.ReturnURL,
		CancelURL: req.CancelURL,
	}); err != nil {
		metrics.ObserveCheckoutInitiation("provider_error")
		s.logger.Error("payment provider registration failed",
			slog.String("order_id", order.ID),
			slog.String("payment_id", paymentID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("payment provider unavailable: %w", err)
	}

	metrics.ObserveCheckoutInitiation("success")
	metrics.ObserveOrderCreated("checkout")
	s.publish(order)
	s.logger.Info("checkout initiated",
		slog.String("order_id", order.ID),
		slog.String("payment_id", paymentID),
		slog.String("store_id", store.ID),
		slog.Int64("amount", total),
	)

	return &InitiateResult{
		PaymentID:   paymentID,
		Amount:      total,
		Currency:    s.currency,
		RedirectURL: s.gateway.RedirectURL(paymentID),
		OrderID:     order.ID,
		Status:      string(domain.OrderPending),
	}, nil
}

// Process is the pure lookup-and-redirect phase: the provider sends the
// shopper back carrying the payment id, and we pick the destination. No
// state is mutated.
func (s *CheckoutService) Process(ctx context.Context, paymentID string) string {
	order, err := s.orders.GetByPaymentID(ctx, paymentID)
	if err == nil {
		store, serr := s.stores.GetByID(ctx, order.StoreID)
		if serr == nil {
			return fmt.Sprintf("%s/%s/order-success?orderId=%s", s.baseURL, store.Subdomain, url.QueryEscape(order.ID))
		}
		s.logger.Error("failed to load store for payment redirect",
			slog.String("order_id", order.ID),
			slog.String("error", serr.Error()),
		)
	} else if !errors.Is(err, domain.ErrNotFound) {
		s.logger.Error("payment lookup failed",
			slog.String("payment_id", paymentID),
			slog.String("error", err.Error()),
		)
	}

	// Unknown payment: back to the cart when the host told us the store,
	// the apex site otherwise.
	if tc, ok := tenant.FromContext(ctx); ok {
		return fmt.Sprintf("%s/%s/cart?error=order_not_found", s.baseURL, tc.Subdomain)
	}
	return s.baseURL + "/?error=order_not_found"
}

// WebhookEvent is the provider's asynchronous notification.
type WebhookEvent struct {
	EventType string      `json:"event_type"`
	Data      WebhookData `json:"data"`
}

// WebhookData carries the provider-side transaction fields. Reference is
// the order id we handed the provider at registration.
type WebhookData struct {
	ID        string `json:"id"`
	Status    string `json:"status,omitempty"`
	Reference string `json:"reference"`
	Amount    int64  `json:"amount,omitempty"`
	Customer  struct {
		Email string `json:"email,omitempty"`
	} `json:"customer,omitempty"`
}

// Valid reports whether the event is structurally usable. Reference is the
// order id we handed the provider; without it no event can be applied.
func (e *WebhookEvent) Valid() bool {
	return e.EventType != "" && e.Data.ID != "" && e.Data.Reference != ""
}

// HandleWebhook applies a well-formed provider event. Semantic failures
// (unknown order, unknown event type, storage trouble) are logged and
// swallowed so the caller always acks; surfacing them would only make the
// provider retry-storm us.
func (s *CheckoutService) HandleWebhook(ctx context.Context, event WebhookEvent) {
	if claimed := s.claimEvent(ctx, event.Data.ID); !claimed {
		metrics.ObserveWebhookEvent(event.EventType, "duplicate")
		s.logger.Info("duplicate webhook event ignored",
			slog.String("event_id", event.Data.ID),
			slog.String("event_type", event.EventType),
		)
		return
	}

	orderID := event.Data.Reference

	switch event.EventType {
	case "payment.success":
		oversold, err := s.orders.MarkPaidAndDecrementStock(ctx, orderID, event.Data.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				metrics.ObserveWebhookEvent(event.EventType, "order_not_found")
				s.logger.Warn("payment success for unknown order",
					slog.String("order_id", orderID),
					slog.String("payment_id", event.Data.ID),
				)
			} else {
				metrics.ObserveWebhookEvent(event.EventType, "error")
				s.logger.Error("failed to settle paid order",
					slog.String("order_id", orderID),
					slog.String("error", err.Error()),
				)
			}
			return
		}
		for _, variantID := range oversold {
			metrics.ObserveOversold()
			s.logger.Warn("stock clamped at zero during settlement",
				slog.String("order_id", orderID),
				slog.String("variant_id", variantID),
			)
		}
		metrics.ObserveWebhookEvent(event.EventType, "success")
		s.publishStatus(ctx, event.Data.ID)

	case "payment.failed":
		s.transition(ctx, event, domain.OrderFailed)

	case "payment.cancelled":
		s.transition(ctx, event, domain.OrderCancelled)

	default:
		metrics.ObserveWebhookEvent(event.EventType, "unknown_type")
		s.logger.Info("ignoring unknown webhook event type",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.Data.ID),
		)
	}
}

func (s *CheckoutService) transition(ctx context.Context, event WebhookEvent, status domain.OrderStatus) {
	orderID := event.Data.Reference
	if err := s.orders.UpdateStatus(ctx, orderID, status); err != nil {
		metrics.ObserveWebhookEvent(event.EventType, "error")
		s.logger.Error("failed to transition order status",
			slog.String("order_id", orderID),
			slog.String("status", string(status)),
			slog.String("error", err.Error()),
		)
		return
	}
	metrics.ObserveWebhookEvent(event.EventType, "success")
	s.publishStatus(ctx, event.Data.ID)
}

// claimEvent dedupes by provider event id. A dedupe backend failure fails
// open: processing a duplicate is recoverable, dropping a real event is not.
func (s *CheckoutService) claimEvent(ctx context.Context, eventID string) bool {
	if s.dedupe == nil || eventID == "" {
		return true
	}
	claimed, err := s.dedupe.ClaimOnce(ctx, "webhook:evt:"+eventID, webhookDedupeTTL)
	if err != nil {
		s.logger.Warn("webhook dedupe unavailable",
			slog.String("event_id", eventID),
			slog.String("error", err.Error()),
		)
		return true
	}
	return claimed
}

func (s *CheckoutService) publish(order *domain.Order) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(events.OrderEvent{
		OrderID:     order.ID,
		StoreID:     order.StoreID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		At:          time.Now(),
	})
}

// publishStatus re-reads the order by its provider payment id and, when
// found, notifies feed subscribers of the new status. Best effort only.
func (s *CheckoutService) publishStatus(ctx context.Context, paymentID string) {
	if s.hub == nil || paymentID == "" {
		return
	}
	order, err := s.orders.GetByPaymentID(ctx, paymentID)
	if err != nil {
		return
	}
	s.publish(order)
}
