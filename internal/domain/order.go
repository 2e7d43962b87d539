package domain

import (
	"context"
	"time"
)

// OrderStatus enumerates the order lifecycle. PENDING moves to PAID on a
// payment-success webhook, or to FAILED/CANCELLED on the matching provider
// events. Nothing ever leaves PAID.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderPaid      OrderStatus = "PAID"
	OrderFailed    OrderStatus = "FAILED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// Customer is identified by email unique within its store. The same email
// may exist as distinct rows in different stores.
type Customer struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"storeId"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Order belongs to one store and one customer of that same store.
type Order struct {
	ID          string      `json:"id"`
	StoreID     string      `json:"storeId"`
	CustomerID  string      `json:"customerId"`
	Status      OrderStatus `json:"status"`
	TotalAmount int64       `json:"totalAmount"` // minor units, sum of items
	PaymentID   string      `json:"paymentId,omitempty"`
	Items       []OrderItem `json:"items,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// OrderItem snapshots the variant name and price at order creation. The
// snapshot is never recomputed from the live variant, so historical totals
// stay stable when prices change.
type OrderItem struct {
	ID              string `json:"id"`
	OrderID         string `json:"orderId"`
	VariantID       string `json:"variantId"`
	VariantName     string `json:"variantName"`
	Quantity        int    `json:"quantity"`
	PriceAtPurchase int64  `json:"priceAtPurchase"` // minor units
}

// CustomerRepository defines data access for customers
type CustomerRepository interface {
	Create(ctx context.Context, customer *Customer) error
	GetByID(ctx context.Context, storeID, customerID string) (*Customer, error)
	GetByEmail(ctx context.Context, storeID, email string) (*Customer, error)
}

// OrderRepository defines data access for orders
type OrderRepository interface {
	// Create persists the order and its items in one transaction.
	Create(ctx context.Context, order *Order) error
	// CreateWithStockDecrement persists the order, its items, and the
	// matching stock decrements as a single all-or-nothing unit. It fails
	// with ErrInsufficientStock if any guarded decrement would go negative.
	CreateWithStockDecrement(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, storeID, orderID string) (*Order, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*Order, error)
	ListByStore(ctx context.Context, storeID string) ([]*Order, error)
	UpdatePaymentID(ctx context.Context, orderID, paymentID string) error
	UpdateStatus(ctx context.Context, orderID string, status OrderStatus) error
	// MarkPaidAndDecrementStock transitions the order to PAID, records the
	// provider payment id, and decrements stock for every item in one
	// transaction. Decrements clamp at zero; clamped variant ids are
	// returned so the caller can log the oversell.
	MarkPaidAndDecrementStock(ctx context.Context, orderID, paymentID string) (oversold []string, err error)
	// CancelStalePending cancels PENDING checkout orders (those carrying a
	// payment id) older than cutoff and returns the affected order ids.
	// Dashboard orders hold their stock from creation and are left alone.
	CancelStalePending(ctx context.Context, cutoff time.Time) ([]string, error)
}
