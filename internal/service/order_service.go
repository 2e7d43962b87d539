package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/yourorg/swiftstore/internal/domain"
	"github.com/yourorg/swiftstore/internal/events"
	"github.com/yourorg/swiftstore/internal/observability/metrics"
)

// OrderService handles dashboard-originated order operations. Unlike the
// checkout path, the dashboard path commits order creation and stock
// decrement as one atomic unit.
type OrderService struct {
	orders    domain.OrderRepository
	customers domain.CustomerRepository
	products  domain.ProductRepository
	stores    *StoreService
	hub       *events.Hub
	logger    *slog.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	orders domain.OrderRepository,
	customers domain.CustomerRepository,
	products domain.ProductRepository,
	stores *StoreService,
	hub *events.Hub,
	logger *slog.Logger,
) *OrderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderService{
		orders:    orders,
		customers: customers,
		products:  products,
		stores:    stores,
		hub:       hub,
		logger:    logger,
	}
}

// OrderLine is one (variant, quantity) pair of an order request.
type OrderLine struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

// buildOrderItems validates each line against the store and snapshots the
// variant name and current price. No stock is mutated here; stock guards
// live in the repository transaction (dashboard path) or the webhook
// settlement (checkout path).
func buildOrderItems(ctx context.Context, products domain.ProductRepository, storeID string, lines []OrderLine, enforceStock bool) ([]domain.OrderItem, int64, error) {
	if len(lines) == 0 {
		return nil, 0, validationErr("at least one item is required")
	}

	var items []domain.OrderItem
	var total int64
	for _, line := range lines {
		if line.VariantID == "" {
			return nil, 0, validationErr("item variantId is required")
		}
		if line.Quantity <= 0 {
			return nil, 0, validationErr("item quantity must be positive")
		}

		variant, variantStoreID, err := products.GetVariant(ctx, line.VariantID)
		if err != nil {
			return nil, 0, err
		}
		// A variant under another store is a plain miss, never a hint that
		// it exists elsewhere.
		if variantStoreID != storeID {
			return nil, 0, domain.ErrNotFound
		}
		if enforceStock && line.Quantity > variant.Stock {
			return nil, 0, &domain.InsufficientStockError{
				VariantName: variant.Name,
				Requested:   line.Quantity,
				Available:   variant.Stock,
			}
		}

		items = append(items, domain.OrderItem{
			VariantID:       variant.ID,
			VariantName:     variant.Name,
			Quantity:        line.Quantity,
			PriceAtPurchase: variant.Price,
		})
		total += variant.Price * int64(line.Quantity)
	}
	return items, total, nil
}

// CreateOrder creates a dashboard order for a store the caller owns. Order
// row, item snapshots, and stock decrements commit atomically; any
// insufficient line aborts the whole thing.
func (s *OrderService) CreateOrder(ctx context.Context, userID, storeID, customerID string, lines []OrderLine) (*domain.Order, error) {
	if !s.stores.VerifyStoreOwnership(ctx, storeID, userID) {
		return nil, domain.ErrNotFound
	}
	if _, err := s.customers.GetByID(ctx, storeID, customerID); err != nil {
		return nil, err
	}

	items, total, err := buildOrderItems(ctx, s.products, storeID, lines, true)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		StoreID:     storeID,
		CustomerID:  customerID,
		Status:      domain.OrderPending,
		TotalAmount: total,
		Items:       items,
	}
	if err := s.orders.CreateWithStockDecrement(ctx, order); err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			return nil, err
		}
		s.logger.Error("failed to create dashboard order",
			slog.String("store_id", storeID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	metrics.ObserveOrderCreated("dashboard")
	s.publish(order)
	s.logger.Info("dashboard order created",
		slog.String("order_id", order.ID),
		slog.String("store_id", storeID),
		slog.Int64("total_amount", order.TotalAmount),
	)
	return order, nil
}

// ListOrders lists a store's orders for its owner.
func (s *OrderService) ListOrders(ctx context.Context, userID, storeID string) ([]*domain.Order, error) {
	if !s.stores.VerifyStoreOwnership(ctx, storeID, userID) {
		return nil, domain.ErrNotFound
	}
	return s.orders.ListByStore(ctx, storeID)
}

// GetOrder retrieves one order for the store's owner.
func (s *OrderService) GetOrder(ctx context.Context, userID, storeID, orderID string) (*domain.Order, error) {
	if !s.stores.VerifyStoreOwnership(ctx, storeID, userID) {
		return nil, domain.ErrNotFound
	}
	return s.orders.GetByID(ctx, storeID, orderID)
}

// FindOrCreateCustomer returns the store's customer with this email,
// creating it on first sight. Email uniqueness is per store.
func (s *OrderService) FindOrCreateCustomer(ctx context.Context, storeID, email, phone string) (*domain.Customer, error) {
	if email == "" {
		return nil, validationErr("customer email is required")
	}
	customer, err := s.customers.GetByEmail(ctx, storeID, email)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	customer = &domain.Customer{
		StoreID: storeID,
		Email:   email,
		Phone:   phone,
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *OrderService) publish(order *domain.Order) {
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
