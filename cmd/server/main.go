package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/yourorg/swiftstore/internal/events"
	"github.com/yourorg/swiftstore/internal/featureflags"
	"github.com/yourorg/swiftstore/internal/handler"
	"github.com/yourorg/swiftstore/internal/infrastructure/logger"
	"github.com/yourorg/swiftstore/internal/infrastructure/redis"
	"github.com/yourorg/swiftstore/internal/infrastructure/startbutton"
	"github.com/yourorg/swiftstore/internal/observability/metrics"
	"github.com/yourorg/swiftstore/internal/observability/tracing"
	"github.com/yourorg/swiftstore/internal/repository"
	"github.com/yourorg/swiftstore/internal/router"
	"github.com/yourorg/swiftstore/internal/security/audit"
	"github.com/yourorg/swiftstore/internal/security/auth"
	"github.com/yourorg/swiftstore/internal/security/middleware"
	"github.com/yourorg/swiftstore/internal/security/ratelimit"
	"github.com/yourorg/swiftstore/internal/service"
	"github.com/yourorg/swiftstore/internal/tenant"
	"github.com/yourorg/swiftstore/internal/worker"
	"github.com/yourorg/swiftstore/pkg/cache"
	"github.com/yourorg/swiftstore/pkg/config"
	"github.com/yourorg/swiftstore/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting SwiftStore server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing (no-op unless OTEL_EXPORTER_OTLP_ENDPOINT is set)
	shutdownTracing, err := tracing.Init(ctx, log, "swiftstore", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Initialize Redis client. Redis only backs webhook dedupe, so the
	// server degrades rather than refusing to start without it.
	redisClient, err := redis.NewClient(cfg.RedisURL, log)
	if err != nil {
		log.Warn("redis unavailable, webhook dedupe disabled", slog.String("error", err.Error()))
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	// 5. Initialize Postgres connection pool
	db, err := database.NewConnectionPool(ctx, &database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}, log)
	if err != nil {
		log.Error("failed to connect to Postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	// 6. Initialize repositories
	storeRepo := repository.NewPostgresStoreRepository(db.DB(), log)
	productRepo := repository.NewPostgresProductRepository(db.DB(), log)
	customerRepo := repository.NewPostgresCustomerRepository(db.DB(), log)
	orderRepo := repository.NewPostgresOrderRepository(db.DB(), log)
	userRepo := repository.NewPostgresUserRepository(db.DB(), log)

	// 7. Initialize the tenant directory and payment gateway
	directory := tenant.NewDirectory(storeRepo, cache.New(),
		time.Duration(cfg.StoreCacheTTLSeconds)*time.Second, log)
	gateway := startbutton.NewClient(cfg.StartbuttonAPIURL, cfg.StartbuttonAPIKey, cfg.BaseURL, log)
	hub := events.NewHub(log)

	// 8. Initialize services
	tokenManager := auth.NewTokenManager(os.Getenv("JWT_SECRET"), "swiftstore")
	authService := service.NewAuthService(userRepo, tokenManager, log)
	storeService := service.NewStoreService(storeRepo, productRepo, directory, log)
	catalogService := service.NewCatalogService(productRepo, log)
	orderService := service.NewOrderService(orderRepo, customerRepo, productRepo, storeService, hub, log)

	var dedupe service.EventDeduper
	if redisClient != nil {
		dedupe = redisClient
	}
	checkoutService := service.NewCheckoutService(orderRepo, customerRepo, productRepo, storeRepo,
		gateway, dedupe, hub, log, cfg.Currency, cfg.BaseURL)

	// 9. Initialize handlers
	rateLimiter := ratelimit.NewLimiter(100, time.Minute) // 100 requests per minute per user
	authHandler := handler.NewAuthHandler(authService, rateLimiter, log)
	storesHandler := handler.NewStoresHandler(storeService, log)
	productsHandler := handler.NewProductsHandler(catalogService, storeService, log)
	ordersHandler := handler.NewOrdersHandler(orderService, log)
	storefrontHandler := handler.NewStorefrontHandler(storeService, catalogService, log)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService, log)
	orderFeedHandler := handler.NewOrderFeedHandler(hub, storeService, cfg.CORSAllowedOrigins, log)
	healthHandler := handler.NewHealthHandler(db, redisClient, log)

	// 9a. Initialize security components
	guard := middleware.NewAuthGuard(tokenManager, log)
	auditLogger := audit.NewLogger(log)

	// 10. Setup HTTP routes
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	mux.HandleFunc("POST /api/stores", storesHandler.Create)
	mux.HandleFunc("GET /api/stores/{storeId}", storesHandler.Get)
	mux.HandleFunc("PUT /api/stores/{storeId}", storesHandler.Update)
	mux.HandleFunc("GET /api/users/{userId}/store", storesHandler.UserStore)

	mux.HandleFunc("GET /api/stores/{storeId}/products", productsHandler.List)
	mux.HandleFunc("POST /api/stores/{storeId}/products", productsHandler.Create)
	mux.HandleFunc("GET /api/stores/{storeId}/products/{productId}", productsHandler.Get)
	mux.HandleFunc("PUT /api/stores/{storeId}/products/{productId}", productsHandler.Update)
	mux.HandleFunc("DELETE /api/stores/{storeId}/products/{productId}", productsHandler.Delete)
	mux.HandleFunc("POST /api/stores/{storeId}/products/{productId}/variants", productsHandler.CreateVariant)
	mux.HandleFunc("DELETE /api/stores/{storeId}/products/{productId}/variants/{variantId}", productsHandler.DeleteVariant)

	mux.HandleFunc("POST /api/orders", ordersHandler.Create)
	mux.HandleFunc("GET /api/stores/{storeId}/orders", ordersHandler.List)
	mux.HandleFunc("GET /api/stores/{storeId}/orders/{orderId}", ordersHandler.Get)

	mux.HandleFunc("GET /api/storefront/products", storefrontHandler.Products)
	mux.HandleFunc("GET /api/storefront/{subdomain}", storefrontHandler.GetBySubdomain)

	mux.HandleFunc("POST /api/startbutton/initiate", checkoutHandler.Initiate)
	mux.HandleFunc("GET /api/startbutton/process", checkoutHandler.Process)
	mux.HandleFunc("POST /api/startbutton/webhook", checkoutHandler.Webhook)

	mux.Handle("GET /ws/orders", orderFeedHandler)

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)

	// Rewritten storefront paths land here: /{subdomain} after the edge
	// router prefixes the store's subdomain.
	mux.HandleFunc("GET /{subdomain}", storefrontHandler.Page)

	// 11. Chain middleware. Ordering matters: the edge router resolves the
	// tenant and runs the auth guard first, so rate limiting and auditing
	// below it can key off the authenticated user.
	edge := router.New(directory, guard, log)

	protected := middleware.RateLimitMiddleware(rateLimiter, log)(
		middleware.AuditMiddleware(auditLogger)(
			middleware.ValidateJSONContentType(log)(mux),
		),
	)
	routed := edge.Middleware(protected)

	// CORS sits outside the edge router so preflight requests never hit the
	// auth guard.
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		routed.ServeHTTP(w, r)
	})

	rootHandler := withRequestID(
		metrics.HTTPMetricsMiddleware(
			otelhttp.NewHandler(handlerWithCORS, "swiftstore"),
		),
		log,
	)

	// 12. Start the stale-order reaper in the background
	if featureflags.Enabled("disable_order_reaper") {
		log.Info("order reaper disabled by flag")
	} else {
		reaper := worker.NewOrderReaper(orderRepo, log,
			time.Duration(cfg.ReaperIntervalMinutes)*time.Minute,
			time.Duration(cfg.PendingOrderTTLMinutes)*time.Minute,
		)
		go reaper.Start(ctx)
	}

	// 13. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
		slog.String("currency", cfg.Currency),
		slog.Bool("webhook_dedupe", redisClient != nil),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Info("shutdown signal received")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	cancel() // Stop the order reaper
	rateLimiter.Stop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("host", r.Host),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}
