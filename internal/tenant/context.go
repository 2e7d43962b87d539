package tenant

import (
	"context"
	"errors"
	"net/http"
)

// Header names the router uses to tag a resolved request. Downstream
// handlers read them through FromRequest/FromContext only.
const (
	HeaderStoreID   = "x-store-id"
	HeaderSubdomain = "x-store-subdomain"
)

// ErrNoTenant reports a storefront handler invoked without a resolved
// tenant. It is distinct from generic server faults so operators can tell
// routing misconfiguration apart from storage errors.
var ErrNoTenant = errors.New("tenant context not found: this route must be accessed via a store subdomain")

// Context is the per-request (storeId, subdomain) pair.
type Context struct {
	StoreID   string `json:"storeId"`
	Subdomain string `json:"subdomain"`
}

type contextKey struct{}

// WithContext returns a child context carrying the resolved tenant.
func WithContext(ctx context.Context, tc Context) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// FromContext reads the tenant attached by the router. The second return is
// false unless both the store id and subdomain are present. It never fails.
func FromContext(ctx context.Context) (Context, bool) {
	tc, ok := ctx.Value(contextKey{}).(Context)
	if !ok || tc.StoreID == "" || tc.Subdomain == "" {
		return Context{}, false
	}
	return tc, true
}

// FromRequest reads the tenant tags from the request: the context value when
// present, else the injected headers. Header fallback keeps the accessor
// usable for handlers mounted outside the router chain in tests.
func FromRequest(r *http.Request) (Context, bool) {
	if tc, ok := FromContext(r.Context()); ok {
		return tc, true
	}
	tc := Context{
		StoreID:   r.Header.Get(HeaderStoreID),
		Subdomain: r.Header.Get(HeaderSubdomain),
	}
	if tc.StoreID == "" || tc.Subdomain == "" {
		return Context{}, false
	}
	return tc, true
}

// RequireTenant is the strict accessor for storefront handlers that must
// never operate tenant-less.
func RequireTenant(r *http.Request) (Context, error) {
	tc, ok := FromRequest(r)
	if !ok {
		return Context{}, ErrNoTenant
	}
	return tc, nil
}
