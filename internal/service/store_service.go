package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/yourorg/swiftstore/internal/domain"
	"github.com/yourorg/swiftstore/internal/tenant"
)

var subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// reservedSubdomains can never be claimed by a store; they collide with
// platform hostnames or routing namespaces.
var reservedSubdomains = map[string]bool{
	"www":       true,
	"api":       true,
	"app":       true,
	"admin":     true,
	"dashboard": true,
}

// StoreService handles store lifecycle and ownership checks.
type StoreService struct {
	stores    domain.StoreRepository
	products  domain.ProductRepository
	directory *tenant.Directory
	logger    *slog.Logger
}

// NewStoreService creates a new store service
func NewStoreService(
	stores domain.StoreRepository,
	products domain.ProductRepository,
	directory *tenant.Directory,
	logger *slog.Logger,
) *StoreService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreService{
		stores:    stores,
		products:  products,
		directory: directory,
		logger:    logger,
	}
}

// CreateStoreInput carries the store creation request.
type CreateStoreInput struct {
	Name        string `json:"name"`
	Subdomain   string `json:"subdomain"`
	Logo        string `json:"logo,omitempty"`
	Description string `json:"description,omitempty"`
}

// CreateStore creates a store owned by userID. A subdomain collision
// surfaces as domain.ErrDuplicateSubdomain.
func (s *StoreService) CreateStore(ctx context.Context, userID string, input CreateStoreInput) (*domain.Store, error) {
	if userID == "" {
		return nil, validationErr("user id is required")
	}
	if input.Name == "" {
		return nil, validationErr("store name is required")
	}

	subdomain := strings.ToLower(strings.TrimSpace(input.Subdomain))
	if !subdomainPattern.MatchString(subdomain) {
		return nil, validationErr("subdomain must be lowercase letters, digits, and hyphens")
	}
	if reservedSubdomains[subdomain] {
		return nil, validationErr("subdomain is reserved")
	}

	store := &domain.Store{
		Name:        input.Name,
		Subdomain:   subdomain,
		UserID:      userID,
		Logo:        input.Logo,
		Description: input.Description,
	}
	if err := s.stores.Create(ctx, store); err != nil {
		if errors.Is(err, domain.ErrDuplicateSubdomain) {
			return nil, err
		}
		s.logger.Error("failed to create store",
			slog.String("subdomain", subdomain),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("store created",
		slog.String("store_id", store.ID),
		slog.String("subdomain", store.Subdomain),
		slog.String("user_id", userID),
	)
	return store, nil
}

// GetStoreForUser returns the store owned by userID.
func (s *StoreService) GetStoreForUser(ctx context.Context, userID string) (*domain.Store, error) {
	return s.stores.GetByUserID(ctx, userID)
}

// UpdateStore updates mutable store fields after an ownership check. The
// subdomain is immutable, so the directory cache needs no invalidation for
// routing, but the storefront projection does.
func (s *StoreService) UpdateStore(ctx context.Context, userID string, store *domain.Store) error {
	if !s.VerifyStoreOwnership(ctx, store.ID, userID) {
		return domain.ErrNotFound
	}
	existing, err := s.stores.GetByID(ctx, store.ID)
	if err != nil {
		return err
	}
	existing.Name = store.Name
	existing.Logo = store.Logo
	existing.Description = store.Description
	if err := s.stores.Update(ctx, existing); err != nil {
		return err
	}
	*store = *existing
	if s.directory != nil {
		s.directory.Invalidate(existing.Subdomain)
	}
	return nil
}

// VerifyStoreOwnership reports whether storeID is owned by userID. It never
// returns an error; any miss or storage failure reads as "not the owner".
func (s *StoreService) VerifyStoreOwnership(ctx context.Context, storeID, userID string) bool {
	if storeID == "" || userID == "" {
		return false
	}
	store, err := s.stores.GetByID(ctx, storeID)
	if err != nil {
		return false
	}
	return store.UserID == userID
}

// StorefrontView is the public projection of a store and its published
// catalog, served to shoppers by subdomain.
type StorefrontView struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Subdomain   string            `json:"subdomain"`
	Logo        string            `json:"logo,omitempty"`
	Description string            `json:"description,omitempty"`
	Products    []*domain.Product `json:"products"`
}

// Storefront loads the public store+catalog projection for a subdomain.
// Only published products appear.
func (s *StoreService) Storefront(ctx context.Context, subdomain string) (*StorefrontView, error) {
	store, err := s.stores.GetBySubdomain(ctx, subdomain)
	if err != nil {
		return nil, err
	}
	products, err := s.products.ListByStore(ctx, store.ID, true)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []*domain.Product{}
	}
	return &StorefrontView{
		ID:          store.ID,
		Name:        store.Name,
		Subdomain:   store.Subdomain,
		Logo:        store.Logo,
		Description: store.Description,
		Products:    products,
	}, nil
}
