package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yourorg/swiftstore/internal/domain"
)

type fixture struct {
	stores    *memStoreRepo
	products  *memProductRepo
	customers *memCustomerRepo
	orders    *memOrderRepo

	store    *domain.Store
	customer *domain.Customer
	variant  *domain.ProductVariant
}

// seed creates one store with one published product (price 1000, stock 3)
// and one customer.
func seed(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		stores:    newMemStoreRepo(),
		products:  newMemProductRepo(),
		customers: newMemCustomerRepo(),
	}
	f.orders = newMemOrderRepo(f.products)

	f.store = &domain.Store{Name: "Acme", Subdomain: "acme", UserID: "owner-1"}
	if err := f.stores.Create(ctx, f.store); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	product := &domain.Product{
		StoreID:   f.store.ID,
		Name:      "T-Shirt",
		Published: true,
		Variants: []domain.ProductVariant{
			{Name: "Small", Price: 1000, Stock: 3},
		},
	}
	if err := f.products.Create(ctx, product); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	f.variant = &product.Variants[0]

	f.customer = &domain.Customer{StoreID: f.store.ID, Email: "shopper@example.com"}
	if err := f.customers.Create(ctx, f.customer); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return f
}

func (f *fixture) orderService() *OrderService {
	stores := NewStoreService(f.stores, f.products, nil, nil)
	return NewOrderService(f.orders, f.customers, f.products, stores, nil, nil)
}

func TestCreateOrderDecrementsStockAtomically(t *testing.T) {
	f := seed(t)
	s := f.orderService()
	ctx := context.Background()

	order, err := s.CreateOrder(ctx, "owner-1", f.store.ID, f.customer.ID, []OrderLine{
		{VariantID: f.variant.ID, Quantity: 3},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.TotalAmount != 3000 {
		t.Errorf("total = %d, want 3000", order.TotalAmount)
	}
	if got := f.products.stock(f.variant.ID); got != 0 {
		t.Errorf("stock after full order = %d, want 0", got)
	}
}

func TestCreateOrderInsufficientStockLeavesStockUnchanged(t *testing.T) {
	f := seed(t)
	s := f.orderService()
	ctx := context.Background()

	_, err := s.CreateOrder(ctx, "owner-1", f.store.ID, f.customer.ID, []OrderLine{
		{VariantID: f.variant.ID, Quantity: 4},
	})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("err = %v, want insufficient stock", err)
	}
	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("err %T does not name the shortfall", err)
	}
	if stockErr.Requested != 4 || stockErr.Available != 3 {
		t.Errorf("shortfall = %+v, want requested 4 available 3", stockErr)
	}
	if got := f.products.stock(f.variant.ID); got != 3 {
		t.Errorf("stock after failed order = %d, want 3 (no partial decrement)", got)
	}
	if orders, _ := f.orders.ListByStore(ctx, f.store.ID); len(orders) != 0 {
		t.Errorf("failed order must not be persisted, found %d", len(orders))
	}
}

func TestCreateOrderRequiresOwnership(t *testing.T) {
	f := seed(t)
	s := f.orderService()
	ctx := context.Background()

	_, err := s.CreateOrder(ctx, "intruder", f.store.ID, f.customer.ID, []OrderLine{
		{VariantID: f.variant.ID, Quantity: 1},
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want not found (never forbidden)", err)
	}
}

func TestCreateOrderRejectsForeignVariant(t *testing.T) {
	f := seed(t)
	ctx := context.Background()

	// Second store owned by the same user, with its own variant.
	other := &domain.Store{Name: "Beta", Subdomain: "beta", UserID: "owner-1"}
	if err := f.stores.Create(ctx, other); err != nil {
		t.Fatal(err)
	}
	foreign := &domain.Product{
		StoreID:  other.ID,
		Name:     "Mug",
		Variants: []domain.ProductVariant{{Name: "Std", Price: 500, Stock: 10}},
	}
	if err := f.products.Create(ctx, foreign); err != nil {
		t.Fatal(err)
	}

	s := f.orderService()
	_, err := s.CreateOrder(ctx, "owner-1", f.store.ID, f.customer.ID, []OrderLine{
		{VariantID: foreign.Variants[0].ID, Quantity: 1},
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("cross-store variant must read as not found, got %v", err)
	}
}

func TestPriceSnapshotSurvivesPriceChange(t *testing.T) {
	f := seed(t)
	s := f.orderService()
	ctx := context.Background()

	order, err := s.CreateOrder(ctx, "owner-1", f.store.ID, f.customer.ID, []OrderLine{
		{VariantID: f.variant.ID, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	// Double the live price after the order exists.
	f.products.variants[f.variant.ID].Price = 2000

	reread, err := f.orders.GetByID(ctx, f.store.ID, order.ID)
	if err != nil {
		t.Fatalf("reread order: %v", err)
	}
	if reread.Items[0].PriceAtPurchase != 1000 {
		t.Errorf("snapshot price = %d, want 1000", reread.Items[0].PriceAtPurchase)
	}
	if reread.TotalAmount != 1000 {
		t.Errorf("total = %d, want 1000", reread.TotalAmount)
	}
}

func TestFindOrCreateCustomerScopedPerStore(t *testing.T) {
	f := seed(t)
	s := f.orderService()
	ctx := context.Background()

	other := &domain.Store{Name: "Beta", Subdomain: "beta", UserID: "owner-2"}
	if err := f.stores.Create(ctx, other); err != nil {
		t.Fatal(err)
	}

	a, err := s.FindOrCreateCustomer(ctx, f.store.ID, "dup@example.com", "")
	if err != nil {
		t.Fatalf("first store: %v", err)
	}
	b, err := s.FindOrCreateCustomer(ctx, other.ID, "dup@example.com", "")
	if err != nil {
		t.Fatalf("second store: %v", err)
	}
	if a.ID == b.ID {
		t.Error("identical emails under different stores must be distinct rows")
	}

	again, err := s.FindOrCreateCustomer(ctx, f.store.ID, "dup@example.com", "")
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != a.ID {
		t.Error("repeat lookup in same store must return the existing customer")
	}
}

func TestListOrdersRequiresOwnership(t *testing.T) {
	f := seed(t)
	s := f.orderService()
	ctx := context.Background()

	if _, err := s.ListOrders(ctx, "intruder", f.store.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	if _, err := s.ListOrders(ctx, "owner-1", f.store.ID); err != nil {
		t.Fatalf("owner list failed: %v", err)
	}
}

func TestStaleDashboardOrderIsNeverReaped(t *testing.T) {
	f := seed(t)
	s := f.orderService()
	ctx := context.Background()

	order, err := s.CreateOrder(ctx, "owner-1", f.store.ID, f.customer.ID, []OrderLine{
		{VariantID: f.variant.ID, Quantity: 2},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if got := f.products.stock(f.variant.ID); got != 1 {
		t.Fatalf("stock after dashboard order = %d, want 1", got)
	}

	// Dashboard orders carry no payment id and already hold their stock;
	// a cutoff in the future must still leave them alone.
	ids, err := f.orders.CancelStalePending(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("cancel stale pending: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("reaped ids = %v, want none", ids)
	}

	reread, err := s.GetOrder(ctx, "owner-1", f.store.ID, order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if reread.Status != domain.OrderPending {
		t.Errorf("status = %s, want PENDING", reread.Status)
	}
	if got := f.products.stock(f.variant.ID); got != 1 {
		t.Errorf("stock after reap = %d, want 1", got)
	}
}
