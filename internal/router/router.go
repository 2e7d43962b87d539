// Package router implements the edge middleware that maps each incoming
// request to a tenant before any handler runs.
package router

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yourorg/swiftstore/internal/domain"
	"github.com/yourorg/swiftstore/internal/observability/metrics"
	"github.com/yourorg/swiftstore/internal/tenant"
)

// Guard is the identity provider's "require" mechanism for protected
// routes. Protect must write its own terminal response (401/403) and
// return false when the request may not continue; on success it returns
// the request with identity claims attached to its context.
type Guard interface {
	Protect(w http.ResponseWriter, r *http.Request) (*http.Request, bool)
}

// Router decides, once per request and before any handler, between
// pass-through, a terminal 404, or rewrite+tag.
type Router struct {
	directory *tenant.Directory
	guard     Guard
	logger    *slog.Logger

	publicPrefixes    []string
	protectedPrefixes []string
}

// New creates the edge router.
func New(directory *tenant.Directory, guard Guard, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		directory: directory,
		guard:     guard,
		logger:    logger,
		publicPrefixes: []string{
			"/static/",
			"/assets/",
			"/favicon.ico",
			"/api/",
			"/sign-in",
			"/sign-up",
			"/healthz",
			"/readyz",
			"/metrics",
			"/ws/",
		},
		protectedPrefixes: []string{
			"/dashboard",
			"/api/stores",
			"/api/products",
			"/api/orders",
			"/api/users",
			"/ws/orders",
		},
	}
}

func hasPrefixAny(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func (rt *Router) isPublicPath(path string) bool {
	return hasPrefixAny(path, rt.publicPrefixes)
}

func (rt *Router) isProtectedRoute(path string) bool {
	return hasPrefixAny(path, rt.protectedPrefixes)
}

// wantsTenantTags reports the /api paths that bypass rewriting but still
// want tenant tags when the host carries a known subdomain: storefront
// handlers require them, and the payment process redirect uses them to send
// an unknown payment back to the store's cart instead of the apex.
func wantsTenantTags(path string) bool {
	return strings.HasPrefix(path, "/api/storefront/") ||
		path == "/api/startbutton/process"
}

// Middleware runs tenant resolution synchronously in the pipeline's entry
// stage; tags are attached before any downstream handler executes.
func (rt *Router) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Public and dashboard namespaces skip subdomain resolution.
		if rt.isPublicPath(path) || strings.HasPrefix(path, "/dashboard") {
			if wantsTenantTags(path) {
				r = rt.tagFromHost(r)
			}
			if rt.isProtectedRoute(path) && rt.guard != nil {
				var ok bool
				if r, ok = rt.guard.Protect(w, r); !ok {
					return
				}
			}
			next.ServeHTTP(w, r)
			return
		}

		subdomain := tenant.SubdomainFromHost(r.Host)

		// No subdomain: the apex/marketing site.
		if subdomain == "" {
			metrics.ObserveTenantResolution("apex")
			if rt.isProtectedRoute(path) && rt.guard != nil {
				var ok bool
				if r, ok = rt.guard.Protect(w, r); !ok {
					return
				}
			}
			next.ServeHTTP(w, r)
			return
		}

		ref, err := rt.directory.Lookup(r.Context(), subdomain)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				metrics.ObserveTenantResolution("not_found")
				rt.logger.Info("unknown store subdomain",
					slog.String("subdomain", subdomain),
					slog.String("path", path),
				)
				http.Error(w, "Store not found", http.StatusNotFound)
				return
			}
			metrics.ObserveTenantResolution("error")
			rt.logger.Error("store lookup failed",
				slog.String("subdomain", subdomain),
				slog.String("error", err.Error()),
			)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		metrics.ObserveTenantResolution("resolved")
		r.URL.Path = RewritePath(path, ref.Subdomain)

		next.ServeHTTP(w, tagRequest(r, ref))
	})
}

// RewritePath prefixes path with /<subdomain>. The rewrite is idempotent so
// internal re-entry never double-prefixes, and the root path becomes exactly
// /<subdomain> with no trailing slash.
func RewritePath(path, subdomain string) string {
	prefix := "/" + subdomain
	switch {
	case path == "/" || path == "":
		return prefix
	case path == prefix, strings.HasPrefix(path, prefix+"/"):
		return path
	default:
		return prefix + path
	}
}

// tagFromHost best-effort resolves the host for tag-wanting API calls.
// Failures leave the request untagged; the handler decides what an absent
// tenant means (RequireTenant error, apex redirect).
func (rt *Router) tagFromHost(r *http.Request) *http.Request {
	subdomain := tenant.SubdomainFromHost(r.Host)
	if subdomain == "" {
		return r
	}
	ref, err := rt.directory.Lookup(r.Context(), subdomain)
	if err != nil {
		return r
	}
	return tagRequest(r, ref)
}

func tagRequest(r *http.Request, ref *domain.StoreRef) *http.Request {
	r.Header.Set(tenant.HeaderStoreID, ref.ID)
	r.Header.Set(tenant.HeaderSubdomain, ref.Subdomain)
	return r.WithContext(tenant.WithContext(r.Context(), tenant.Context{
		StoreID:   ref.ID,
		Subdomain: ref.Subdomain,
	}))
}
