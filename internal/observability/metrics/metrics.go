package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swiftstore_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "swiftstore_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	tenantResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swiftstore_tenant_resolutions_total",
		Help: "Edge router resolution outcomes (apex, resolved, not_found, error)",
	}, []string{"outcome"})

	checkoutInitiations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swiftstore_checkout_initiations_total",
		Help: "Checkout initiation attempts by result",
	}, []string{"result"})

	webhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swiftstore_webhook_events_total",
		Help: "Payment webhook events by type and result",
	}, []string{"event_type", "result"})

	ordersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swiftstore_orders_created_total",
		Help: "Orders created by origin (checkout, dashboard)",
	}, []string{"origin"})

	ordersReaped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swiftstore_orders_reaped_total",
		Help: "Stale pending orders cancelled by the reaper",
	})

	oversoldVariants = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swiftstore_oversold_variants_total",
		Help: "Stock decrements clamped at zero during payment settlement",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveTenantResolution records one router resolution outcome.
func ObserveTenantResolution(outcome string) {
	tenantResolutions.WithLabelValues(outcome).Inc()
}

// ObserveCheckoutInitiation records a checkout initiation attempt.
func ObserveCheckoutInitiation(result string) {
	checkoutInitiations.WithLabelValues(result).Inc()
}

// ObserveWebhookEvent records a payment webhook delivery.
func ObserveWebhookEvent(eventType, result string) {
	webhookEvents.WithLabelValues(eventType, result).Inc()
}

// ObserveOrderCreated counts a persisted order by origin.
func ObserveOrderCreated(origin string) {
	ordersCreated.WithLabelValues(origin).Inc()
}

// ObserveOrdersReaped counts stale pending orders the reaper cancelled.
func ObserveOrdersReaped(count int) {
	ordersReaped.Add(float64(count))
}

// ObserveOversold counts a settlement decrement clamped at zero.
func ObserveOversold() {
	oversoldVariants.Inc()
}
