package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/yourorg/swiftstore/internal/domain"
)

// PostgresCustomerRepository implements domain.CustomerRepository using PostgreSQL.
// Customer email uniqueness is scoped per store by a composite unique index,
// so identical emails may exist under different tenants.
type PostgresCustomerRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresCustomerRepository creates a new customer repository
func NewPostgresCustomerRepository(db *sql.DB, logger *slog.Logger) *PostgresCustomerRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCustomerRepository{db: db, logger: logger}
}

// Create inserts a customer
func (r *PostgresCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}
	query := `
		INSERT INTO customers (id, store_id, email, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		customer.ID, customer.StoreID, customer.Email, customer.Phone,
	).Scan(&customer.CreatedAt)
	if err != nil {
		r.logger.Error("failed to create customer",
			slog.String("store_id", customer.StoreID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

// GetByID retrieves a customer scoped to its store
func (r *PostgresCustomerRepository) GetByID(ctx context.Context, storeID, customerID string) (*domain.Customer, error) {
	c := &domain.Customer{}
	query := `
		SELECT id, store_id, email, phone, created_at
		FROM customers
		WHERE id = $1 AND store_id = $2
	`
	err := r.db.QueryRowContext(ctx, query, customerID, storeID).Scan(
		&c.ID, &c.StoreID, &c.Email, &c.Phone, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return c, nil
}

// GetByEmail retrieves a customer by email within one store
func (r *PostgresCustomerRepository) GetByEmail(ctx context.Context, storeID, email string) (*domain.Customer, error) {
	c := &domain.Customer{}
	query := `
		SELECT id, store_id, email, phone, created_at
		FROM customers
		WHERE store_id = $1 AND email = $2
	`
	err := r.db.QueryRowContext(ctx, query, storeID, email).Scan(
		&c.ID, &c.StoreID, &c.Email, &c.Phone, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer by email: %w", err)
	}
	return c, nil
}
