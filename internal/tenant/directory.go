package tenant

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/yourorg/swiftstore/internal/domain"
	"github.com/yourorg/swiftstore/pkg/cache"
)

// Directory maps subdomains to store identity for the request router.
// Lookups are point queries on the unique subdomain index; positive results
// are cached briefly because the router runs on every storefront request.
type Directory struct {
	stores   domain.StoreRepository
	cache    *cache.Cache
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewDirectory creates a store directory. A nil cache disables caching.
func NewDirectory(stores domain.StoreRepository, c *cache.Cache, ttl time.Duration, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Directory{stores: stores, cache: c, cacheTTL: ttl, logger: logger}
}

// Lookup resolves a subdomain to a StoreRef. Unknown subdomains return
// domain.ErrNotFound; anything else is a storage fault for the caller to
// surface as a 500.
func (d *Directory) Lookup(ctx context.Context, subdomain string) (*domain.StoreRef, error) {
	key := "storedir:" + subdomain
	if d.cache != nil {
		if v, ok := d.cache.Get(key); ok {
			return v.(*domain.StoreRef), nil
		}
	}

	ref, err := d.stores.RefBySubdomain(ctx, subdomain)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		d.logger.Error("store directory lookup failed",
			slog.String("subdomain", subdomain),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if d.cache != nil {
		d.cache.Set(key, ref, d.cacheTTL)
	}
	return ref, nil
}

// LoadStorefront returns the full store record for page rendering. The
// router never calls this; it only needs the StoreRef projection.
func (d *Directory) LoadStorefront(ctx context.Context, subdomain string) (*domain.Store, error) {
	return d.stores.GetBySubdomain(ctx, subdomain)
}

// Invalidate drops a cached subdomain, used after store mutations.
func (d *Directory) Invalidate(subdomain string) {
	if d.cache != nil {
		d.cache.Delete("storedir:" + subdomain)
	}
}
