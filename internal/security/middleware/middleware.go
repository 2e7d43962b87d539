package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yourorg/swiftstore/internal/security/audit"
	"github.com/yourorg/swiftstore/internal/security/auth"
	"github.com/yourorg/swiftstore/internal/security/ratelimit"
)

type ClaimsContextKey struct{}

// AuthGuard answers "is this request from a signed-in dashboard user". It
// writes the terminal 401 itself; on success it returns the request with
// claims attached to its context.
type AuthGuard struct {
	tm     *auth.TokenManager
	logger *slog.Logger
}

func NewAuthGuard(tm *auth.TokenManager, logger *slog.Logger) *AuthGuard {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthGuard{tm: tm, logger: logger}
}

func (g *AuthGuard) Protect(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		unauthorized(w, "missing auth")
		return r, false
	}

	tokenString, err := auth.ExtractToken(authHeader)
	if err != nil {
		unauthorized(w, "invalid auth")
		return r, false
	}

	claims, err := g.tm.ValidateToken(tokenString)
	if err != nil {
		g.logger.Info("token rejected", slog.String("error", err.Error()))
		unauthorized(w, "invalid token")
		return r, false
	}

	ctx := context.WithValue(r.Context(), ClaimsContextKey{}, claims)
	return r.WithContext(ctx), true
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	http.Error(w, `{"error":"`+msg+`"}`, http.StatusUnauthorized)
}

// RateLimitMiddleware limits dashboard API traffic per authenticated user,
// falling back to the remote address for anonymous requests. Storefront
// and infrastructure endpoints are not limited here.
func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/healthz" || r.URL.Path == "/readyz" || r.URL.Path == "/metrics" ||
				strings.HasPrefix(r.URL.Path, "/api/storefront/") ||
				strings.HasPrefix(r.URL.Path, "/api/startbutton/") ||
				strings.HasPrefix(r.URL.Path, "/ws/") {
				next.ServeHTTP(w, r)
				return
			}

			key := r.RemoteAddr
			if i := strings.LastIndexByte(key, ':'); i >= 0 {
				key = key[:i]
			}
			if claims := GetClaimsFromContext(r.Context()); claims != nil {
				key = claims.UserID
			}

			if !limiter.Allow(key) {
				log.Warn("rate limit exceeded",
					slog.String("key", key),
					slog.String("path", r.URL.Path),
				)
				http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// auditTarget maps a mutating dashboard path onto its resource kind and id.
// This runs before ServeMux matching, so ids come from the raw path, not
// from wildcards. Routes: /api/stores[/{sid}[/products[/{pid}[/variants
// [/{vid}]]]]] and /api/orders.
func auditTarget(path string) (resource, id string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || parts[0] != "api" {
		return "", "", false
	}
	switch parts[1] {
	case "orders":
		return "order", "", true
	case "stores":
		switch {
		case len(parts) == 2:
			return "store", "", true
		case len(parts) == 3:
			return "store", parts[2], true
		case parts[3] == "products":
			if len(parts) >= 6 && parts[5] == "variants" {
				if len(parts) >= 7 {
					return "variant", parts[6], true
				}
				return "variant", "", true
			}
			if len(parts) >= 5 {
				return "product", parts[4], true
			}
			return "product", "", true
		}
	}
	return "", "", false
}

// AuditMiddleware records mutating dashboard actions before they execute.
func AuditMiddleware(auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := ""
			if claims := GetClaimsFromContext(r.Context()); claims != nil {
				userID = claims.UserID
			}

			if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodDelete {
				if resource, id, ok := auditTarget(r.URL.Path); ok {
					auditLog.LogAction(r.Context(), userID, strings.ToLower(r.Method), resource, id, "initiated", "")
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c := ctx.Value(ClaimsContextKey{}); c != nil {
		return c.(*auth.Claims)
	}
	return nil
}
