package service

import (
	"context"
	"log/slog"

	"github.com/yourorg/swiftstore/internal/domain"
)

// CatalogService handles tenant-scoped product and variant operations. Every
// method takes the resolved store identity explicitly; a row under another
// store is indistinguishable from a missing row.
type CatalogService struct {
	products domain.ProductRepository
	logger   *slog.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(products domain.ProductRepository, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{products: products, logger: logger}
}

// CreateProductInput carries a product creation request.
type CreateProductInput struct {
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Images      []string             `json:"images,omitempty"`
	Published   bool                 `json:"published"`
	Variants    []CreateVariantInput `json:"variants,omitempty"`
}

// CreateVariantInput carries a variant creation request.
type CreateVariantInput struct {
	Name  string `json:"name"`
	Price int64  `json:"price"` // minor units
	Stock int    `json:"stock"`
}

func validateVariant(v CreateVariantInput) error {
	if v.Name == "" {
		return validationErr("variant name is required")
	}
	if v.Price < 0 {
		return validationErr("variant price must be non-negative")
	}
	if v.Stock < 0 {
		return validationErr("variant stock must be non-negative")
	}
	return nil
}

// CreateProduct creates a product with its initial variants under storeID.
func (s *CatalogService) CreateProduct(ctx context.Context, storeID string, input CreateProductInput) (*domain.Product, error) {
	if input.Name == "" {
		return nil, validationErr("product name is required")
	}
	for _, v := range input.Variants {
		if err := validateVariant(v); err != nil {
			return nil, err
		}
	}

	product := &domain.Product{
		StoreID:     storeID,
		Name:        input.Name,
		Description: input.Description,
		Images:      input.Images,
		Published:   input.Published,
	}
	for _, v := range input.Variants {
		product.Variants = append(product.Variants, domain.ProductVariant{
			Name:  v.Name,
			Price: v.Price,
			Stock: v.Stock,
		})
	}

	if err := s.products.Create(ctx, product); err != nil {
		s.logger.Error("failed to create product",
			slog.String("store_id", storeID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return product, nil
}

// ListProducts lists a store's products, optionally published only.
func (s *CatalogService) ListProducts(ctx context.Context, storeID string, publishedOnly bool) ([]*domain.Product, error) {
	return s.products.ListByStore(ctx, storeID, publishedOnly)
}

// GetProduct retrieves one product scoped to the store.
func (s *CatalogService) GetProduct(ctx context.Context, storeID, productID string) (*domain.Product, error) {
	return s.products.GetByID(ctx, storeID, productID)
}

// UpdateProductInput carries a product update request.
type UpdateProductInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Images      []string `json:"images,omitempty"`
	Published   bool     `json:"published"`
}

// UpdateProduct updates product fields scoped to the store.
func (s *CatalogService) UpdateProduct(ctx context.Context, storeID, productID string, input UpdateProductInput) (*domain.Product, error) {
	if input.Name == "" {
		return nil, validationErr("product name is required")
	}
	product, err := s.products.GetByID(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}
	product.Name = input.Name
	product.Description = input.Description
	product.Images = input.Images
	product.Published = input.Published
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product and its variants scoped to the store.
func (s *CatalogService) DeleteProduct(ctx context.Context, storeID, productID string) error {
	return s.products.Delete(ctx, storeID, productID)
}

// AddVariant creates a variant under an existing product of the store.
func (s *CatalogService) AddVariant(ctx context.Context, storeID, productID string, input CreateVariantInput) (*domain.ProductVariant, error) {
	if err := validateVariant(input); err != nil {
		return nil, err
	}
	// Scoped fetch doubles as the ownership check.
	if _, err := s.products.GetByID(ctx, storeID, productID); err != nil {
		return nil, err
	}
	variant := &domain.ProductVariant{
		ProductID: productID,
		Name:      input.Name,
		Price:     input.Price,
		Stock:     input.Stock,
	}
	if err := s.products.CreateVariant(ctx, variant); err != nil {
		return nil, err
	}
	return variant, nil
}

// DeleteVariant removes a variant scoped to its product and store.
func (s *CatalogService) DeleteVariant(ctx context.Context, storeID, productID, variantID string) error {
	if _, err := s.products.GetByID(ctx, storeID, productID); err != nil {
		return err
	}
	return s.products.DeleteVariant(ctx, productID, variantID)
}
