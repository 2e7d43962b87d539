package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/yourorg/swiftstore/internal/domain"
)

// PostgresStoreRepository implements domain.StoreRepository using PostgreSQL
type PostgresStoreRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresStoreRepository creates a new store repository
func NewPostgresStoreRepository(db *sql.DB, logger *slog.Logger) *PostgresStoreRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStoreRepository{db: db, logger: logger}
}

// Create inserts a store. A subdomain collision surfaces as
// domain.ErrDuplicateSubdomain via the unique index.
func (r *PostgresStoreRepository) Create(ctx context.Context, store *domain.Store) error {
	if store.ID == "" {
		store.ID = uuid.NewString()
	}
	query := `
		INSERT INTO stores (id, name, subdomain, user_id, logo, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		store.ID,
		store.Name,
		store.Subdomain,
		store.UserID,
		store.Logo,
		store.Description,
	).Scan(&store.CreatedAt, &store.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrDuplicateSubdomain
		}
		r.logger.Error("failed to create store",
			slog.String("subdomain", store.Subdomain),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create store: %w", err)
	}
	return nil
}

const storeColumns = `id, name, subdomain, user_id, logo, description, created_at, updated_at`

func (r *PostgresStoreRepository) scanStore(row *sql.Row) (*domain.Store, error) {
	s := &domain.Store{}
	err := row.Scan(&s.ID, &s.Name, &s.Subdomain, &s.UserID, &s.Logo, &s.Description, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	return s, nil
}

// GetByID retrieves a store by ID
func (r *PostgresStoreRepository) GetByID(ctx context.Context, id string) (*domain.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE id = $1`
	return r.scanStore(r.db.QueryRowContext(ctx, query, id))
}

// GetBySubdomain retrieves a store by its unique subdomain
func (r *PostgresStoreRepository) GetBySubdomain(ctx context.Context, subdomain string) (*domain.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE subdomain = $1`
	return r.scanStore(r.db.QueryRowContext(ctx, query, subdomain))
}

// RefBySubdomain is the router's point lookup on the unique subdomain
// index: id and subdomain only, never a scan.
func (r *PostgresStoreRepository) RefBySubdomain(ctx context.Context, subdomain string) (*domain.StoreRef, error) {
	ref := &domain.StoreRef{}
	query := `SELECT id, subdomain FROM stores WHERE subdomain = $1`
	err := r.db.QueryRowContext(ctx, query, subdomain).Scan(&ref.ID, &ref.Subdomain)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve subdomain: %w", err)
	}
	return ref, nil
}

// GetByUserID retrieves the store owned by a user
func (r *PostgresStoreRepository) GetByUserID(ctx context.Context, userID string) (*domain.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE user_id = $1 ORDER BY created_at LIMIT 1`
	return r.scanStore(r.db.QueryRowContext(ctx, query, userID))
}

// Update updates mutable store fields. The subdomain is immutable once
// created and is deliberately not part of the statement.
func (r *PostgresStoreRepository) Update(ctx context.Context, store *domain.Store) error {
	query := `
		UPDATE stores
		SET name = $1, logo = $2, description = $3, updated_at = now()
		WHERE id = $4
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query, store.Name, store.Logo, store.Description, store.ID).Scan(&store.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to update store: %w", err)
	}
	return nil
}
