package domain

import (
	"context"
	"time"
)

// Product belongs to exactly one store. The StoreID never changes and every
// access path must verify it against the caller's resolved tenant.
type Product struct {
	ID          string           `json:"id"`
	StoreID     string           `json:"storeId"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Images      []string         `json:"images"`
	Published   bool             `json:"published"`
	Variants    []ProductVariant `json:"variants,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// ProductVariant is a purchasable SKU. Price is in minor currency units
// (cents) and stock never goes negative.
type ProductVariant struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"` // minor units
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProductRepository defines data access for products and their variants
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	// GetByID returns the product only when it belongs to storeID;
	// a cross-tenant id resolves to ErrNotFound.
	GetByID(ctx context.Context, storeID, productID string) (*Product, error)
	ListByStore(ctx context.Context, storeID string, publishedOnly bool) ([]*Product, error)
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, storeID, productID string) error

	CreateVariant(ctx context.Context, variant *ProductVariant) error
	// GetVariant also reports the owning store so callers can verify tenancy.
	GetVariant(ctx context.Context, variantID string) (*ProductVariant, string, error)
	ListVariants(ctx context.Context, productID string) ([]*ProductVariant, error)
	DeleteVariant(ctx context.Context, productID, variantID string) error
}
