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

// PostgresProductRepository implements domain.ProductRepository using PostgreSQL
type PostgresProductRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresProductRepository creates a new product repository
func NewPostgresProductRepository(db *sql.DB, logger *slog.Logger) *PostgresProductRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresProductRepository{db: db, logger: logger}
}

// Create inserts a product and its initial variants in one transaction.
func (r *PostgresProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO products (id, store_id, name, description, images, published)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err = tx.QueryRowContext(ctx, query,
		product.ID,
		product.StoreID,
		product.Name,
		product.Description,
		pq.Array(product.Images),
		product.Published,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	for i := range product.Variants {
		v := &product.Variants[i]
		if v.ID == "" {
			v.ID = uuid.NewString()
		}
		v.ProductID = product.ID
		_, err := tx.ExecContext(ctx, `
			INSERT INTO product_variants (id, product_id, name, price, stock)
			VALUES ($1, $2, $3, $4, $5)
		`, v.ID, v.ProductID, v.Name, v.Price, v.Stock)
		if err != nil {
			return fmt.Errorf("failed to create variant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit product: %w", err)
	}
	return nil
}

// GetByID returns the product only when it belongs to storeID. The store
// filter is part of the query, so a cross-tenant id is a plain miss.
func (r *PostgresProductRepository) GetByID(ctx context.Context, storeID, productID string) (*domain.Product, error) {
	p := &domain.Product{}
	var images pq.StringArray
	query := `
		SELECT id, store_id, name, description, images, published, created_at, updated_at
		FROM products
		WHERE id = $1 AND store_id = $2
	`
	err := r.db.QueryRowContext(ctx, query, productID, storeID).Scan(
		&p.ID, &p.StoreID, &p.Name, &p.Description, &images, &p.Published, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	p.Images = images

	variants, err := r.ListVariants(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	for _, v := range variants {
		p.Variants = append(p.Variants, *v)
	}
	return p, nil
}

// ListByStore returns a store's products newest first, with variants.
func (r *PostgresProductRepository) ListByStore(ctx context.Context, storeID string, publishedOnly bool) ([]*domain.Product, error) {
	query := `
		SELECT id, store_id, name, description, images, published, created_at, updated_at
		FROM products
		WHERE store_id = $1 AND ($2 = false OR published = true)
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, storeID, publishedOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var out []*domain.Product
	for rows.Next() {
		p := &domain.Product{}
		var images pq.StringArray
		if err := rows.Scan(&p.ID, &p.StoreID, &p.Name, &p.Description, &images, &p.Published, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		p.Images = images
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, p := range out {
		variants, err := r.ListVariants(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		for _, v := range variants {
			p.Variants = append(p.Variants, *v)
		}
	}
	return out, nil
}

// Update updates product fields. The store_id filter keeps the write
// tenant-scoped; store_id itself never changes.
func (r *PostgresProductRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, images = $3, published = $4, updated_at = now()
		WHERE id = $5 AND store_id = $6
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		product.Name,
		product.Description,
		pq.Array(product.Images),
		product.Published,
		product.ID,
		product.StoreID,
	).Scan(&product.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

// Delete removes a product and, via cascade, its variants.
func (r *PostgresProductRepository) Delete(ctx context.Context, storeID, productID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1 AND store_id = $2`, productID, storeID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
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

// CreateVariant inserts a variant for an existing product.
func (r *PostgresProductRepository) CreateVariant(ctx context.Context, variant *domain.ProductVariant) error {
	if variant.ID == "" {
		variant.ID = uuid.NewString()
	}
	query := `
		INSERT INTO product_variants (id, product_id, name, price, stock)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		variant.ID, variant.ProductID, variant.Name, variant.Price, variant.Stock,
	).Scan(&variant.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create variant: %w", err)
	}
	return nil
}

// GetVariant returns a variant plus the id of the store owning it, joined
// through the product, so callers can verify tenancy.
func (r *PostgresProductRepository) GetVariant(ctx context.Context, variantID string) (*domain.ProductVariant, string, error) {
	v := &domain.ProductVariant{}
	var storeID string
	query := `
		SELECT v.id, v.product_id, v.name, v.price, v.stock, v.created_at, p.store_id
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.id = $1
	`
	err := r.db.QueryRowContext(ctx, query, variantID).Scan(
		&v.ID, &v.ProductID, &v.Name, &v.Price, &v.Stock, &v.CreatedAt, &storeID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", domain.ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to get variant: %w", err)
	}
	return v, storeID, nil
}

// ListVariants returns a product's variants oldest first.
func (r *PostgresProductRepository) ListVariants(ctx context.Context, productID string) ([]*domain.ProductVariant, error) {
	query := `
		SELECT id, product_id, name, price, stock, created_at
		FROM product_variants
		WHERE product_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}
	defer rows.Close()

	var out []*domain.ProductVariant
	for rows.Next() {
		v := &domain.ProductVariant{}
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Name, &v.Price, &v.Stock, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// DeleteVariant removes a variant scoped to its product.
func (r *PostgresProductRepository) DeleteVariant(ctx context.Context, productID, variantID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM product_variants WHERE id = $1 AND product_id = $2`, variantID, productID)
	if err != nil {
		return fmt.Errorf("failed to delete variant: %w", err)
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
