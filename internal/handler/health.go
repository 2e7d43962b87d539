package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/yourorg/swiftstore/internal/infrastructure/redis"
	"github.com/yourorg/swiftstore/pkg/database"
)

// HealthHandler handles liveness and readiness endpoints.
type HealthHandler struct {
	db     *database.ConnectionPool
	redis  *redis.Client
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.ConnectionPool, redisClient *redis.Client, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{db: db, redis: redisClient, logger: logger}
}

// Health handles GET /healthz: liveness only.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /readyz: 200 only when postgres and redis answer.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	healthy := true

	if h.db != nil {
		if err := h.db.Health(ctx); err != nil {
			checks["postgres"] = "error: " + err.Error()
			healthy = false
		} else {
			checks["postgres"] = "ok"
		}
	} else {
		checks["postgres"] = "not configured"
		healthy = false
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			checks["redis"] = "error: " + err.Error()
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	} else {
		// Redis is optional; the platform degrades to no webhook dedupe.
		checks["redis"] = "not configured"
	}

	status := "ready"
	code := http.StatusOK
	if !healthy {
		status = "not_ready"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status": status,
		"checks": checks,
	})

	h.logger.Debug("readiness check",
		slog.String("status", status),
		slog.String("postgres", checks["postgres"]),
		slog.String("redis", checks["redis"]),
	)
}
