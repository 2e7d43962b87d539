package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/yourorg/swiftstore/internal/domain"
)

// PostgresOrderRepository implements domain.OrderRepository using PostgreSQL
type PostgresOrderRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresOrderRepository creates a new order repository
func NewPostgresOrderRepository(db *sql.DB, logger *slog.Logger) *PostgresOrderRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresOrderRepository{db: db, logger: logger}
}

func insertOrder(ctx context.Context, tx *sql.Tx, order *domain.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	query := `
		INSERT INTO orders (id, store_id, customer_id, status, total_amount, payment_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := tx.QueryRowContext(ctx, query,
		order.ID,
		order.StoreID,
		order.CustomerID,
		order.Status,
		order.TotalAmount,
		order.PaymentID,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		item.OrderID = order.ID
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, variant_id, variant_name, quantity, price_at_purchase)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, item.ID, item.OrderID, item.VariantID, item.VariantName, item.Quantity, item.PriceAtPurchase)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}
	return nil
}

// Create persists the order and its snapshot items in one transaction
// without touching stock. The checkout flow uses this; stock settles at
// payment success.
func (r *PostgresOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertOrder(ctx, tx, order); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}
	return nil
}

// CreateWithStockDecrement persists the order, its items, and the matching
// guarded stock decrements as one all-or-nothing unit. A decrement that
// would go negative aborts the whole transaction with
// domain.InsufficientStockError, leaving no order and no stock mutation.
func (r *PostgresOrderRepository) CreateWithStockDecrement(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertOrder(ctx, tx, order); err != nil {
		return err
	}

	for _, item := range order.Items {
		res, err := tx.ExecContext(ctx, `
			UPDATE product_variants
			SET stock = stock - $1
			WHERE id = $2 AND stock >= $1
		`, item.Quantity, item.VariantID)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check rows affected: %w", err)
		}
		if rows == 0 {
			var available int
			_ = tx.QueryRowContext(ctx, `SELECT stock FROM product_variants WHERE id = $1`, item.VariantID).Scan(&available)
			return &domain.InsufficientStockError{
				VariantName: item.VariantName,
				Requested:   item.Quantity,
				Available:   available,
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}
	return nil
}

const orderColumns = `id, store_id, customer_id, status, total_amount, COALESCE(payment_id, ''), created_at, updated_at`

func (r *PostgresOrderRepository) scanOrder(ctx context.Context, row *sql.Row) (*domain.Order, error) {
	o := &domain.Order{}
	err := row.Scan(&o.ID, &o.StoreID, &o.CustomerID, &o.Status, &o.TotalAmount, &o.PaymentID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PostgresOrderRepository) loadItems(ctx context.Context, order *domain.Order) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, variant_id, variant_name, quantity, price_at_purchase
		FROM order_items
		WHERE order_id = $1
	`, order.ID)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.VariantID, &item.VariantName, &item.Quantity, &item.PriceAtPurchase); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}

// GetByID retrieves an order scoped to its store
func (r *PostgresOrderRepository) GetByID(ctx context.Context, storeID, orderID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND store_id = $2`
	return r.scanOrder(ctx, r.db.QueryRowContext(ctx, query, orderID, storeID))
}

// GetByPaymentID retrieves an order by its provider payment identifier
func (r *PostgresOrderRepository) GetByPaymentID(ctx context.Context, paymentID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE payment_id = $1`
	return r.scanOrder(ctx, r.db.QueryRowContext(ctx, query, paymentID))
}

// ListByStore returns a store's orders newest first
func (r *PostgresOrderRepository) ListByStore(ctx context.Context, storeID string) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE store_id = $1
		ORDER BY created_at DESC
	`, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var out []*domain.Order
	for rows.Next() {
		o := &domain.Order{}
		if err := rows.Scan(&o.ID, &o.StoreID, &o.CustomerID, &o.Status, &o.TotalAmount, &o.PaymentID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, o := range out {
		if err := r.loadItems(ctx, o); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// UpdatePaymentID records the final payment identifier on the order
func (r *PostgresOrderRepository) UpdatePaymentID(ctx context.Context, orderID, paymentID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET payment_id = $1, updated_at = now() WHERE id = $2`, paymentID, orderID)
	if err != nil {
		return fmt.Errorf("failed to update payment id: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStatus applies a webhook-driven transition out of PENDING. Orders
// already PAID, FAILED, or CANCELLED are left alone, which makes repeated
// provider deliveries harmless.
func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
	`, status, orderID, domain.OrderPending)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return nil
}

// MarkPaidAndDecrementStock is the payment-success settlement: PAID status,
// provider payment id, and the stock decrements for every item commit as
// one transaction. Decrements clamp at zero; clamped variant ids are
// returned so the caller can log the oversell loudly.
func (r *PostgresOrderRepository) MarkPaidAndDecrementStock(ctx context.Context, orderID, paymentID string) ([]string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, payment_id = $2, updated_at = now()
		WHERE id = $3 AND status = $4
	`, domain.OrderPaid, paymentID, orderID, domain.OrderPending)
	if err != nil {
		return nil, fmt.Errorf("failed to mark order paid: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		// Already settled (or unknown): make sure the order exists, then
		// treat the delivery as a duplicate.
		var status domain.OrderStatus
		err := tx.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = $1`, orderID).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to check order status: %w", err)
		}
		return nil, nil
	}

	itemRows, err := tx.QueryContext(ctx, `
		SELECT variant_id, quantity FROM order_items WHERE order_id = $1
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	type line struct {
		variantID string
		quantity  int
	}
	var lines []line
	for itemRows.Next() {
		var l line
		if err := itemRows.Scan(&l.variantID, &l.quantity); err != nil {
			itemRows.Close()
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		lines = append(lines, l)
	}
	itemRows.Close()
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	var oversold []string
	for _, l := range lines {
		res, err := tx.ExecContext(ctx, `
			UPDATE product_variants
			SET stock = stock - $1
			WHERE id = $2 AND stock >= $1
		`, l.quantity, l.variantID)
		if err != nil {
			return nil, fmt.Errorf("failed to decrement stock: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to check rows affected: %w", err)
		}
		if affected == 0 {
			// The shopper already paid; clamp rather than fail the
			// settlement.
			if _, err := tx.ExecContext(ctx,
				`UPDATE product_variants SET stock = 0 WHERE id = $1 AND stock < $2`, l.variantID, l.quantity); err != nil {
				return nil, fmt.Errorf("failed to clamp stock: %w", err)
			}
			oversold = append(oversold, l.variantID)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}
	return oversold, nil
}

// CancelStalePending cancels PENDING checkout orders created before cutoff.
// Checkout orders are the ones carrying a payment id; dashboard orders have
// none and already hold their stock, so cancelling those here would leak
// the decrement.
func (r *PostgresOrderRepository) CancelStalePending(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = now()
		WHERE status = $2 AND created_at < $3
		  AND payment_id IS NOT NULL AND payment_id <> ''
		RETURNING id
	`, domain.OrderCancelled, domain.OrderPending, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel stale orders: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan order id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
