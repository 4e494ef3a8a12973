package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamRequestsTotal tracks every attempt made against the rate API.
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rajaongkir_api_requests_total",
			Help: "Total number of RajaOngkir API attempts (by endpoint, method, and status).",
		},
		[]string{"endpoint", "method", "status"},
	)

	// UpstreamRequestDuration measures the duration of single attempts.
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rajaongkir_api_request_duration_seconds",
			Help:    "Duration of RajaOngkir API attempts in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms → ~10s
		},
		[]string{"endpoint", "method"},
	)

	// CooldownEvents counts breaker trips and short-circuited calls.
	CooldownEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rajaongkir_cooldown_events_total",
			Help: "Cooldown trips (by reason) and calls skipped while cooling down.",
		},
		[]string{"event", "reason"}, // event = trip | skip
	)

	// CacheAccess tracks memo hits, cache hits and misses per operation.
	CacheAccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rajaongkir_cache_access_total",
			Help: "Response cache lookups by operation and result.",
		},
		[]string{"operation", "result"}, // result = memo_hit | hit | miss | error
	)

	// QuotesTotal counts quote outcomes at the orchestrator boundary.
	QuotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shipping_quotes_total",
			Help: "Shipping quotes by outcome and failing stage.",
		},
		[]string{"outcome", "stage"},
	)

	// NATSPublishErrors tracks NATS publish failures by subject.
	NATSPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nats_publish_errors_total",
			Help: "Number of NATS publish failures by subject.",
		},
		[]string{"subject"},
	)
)

// IncUpstreamRequest increments the attempt counter.
func IncUpstreamRequest(endpoint, method, status string) {
	UpstreamRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
}

// IncCooldown records a breaker event.
func IncCooldown(event, reason string) {
	CooldownEvents.WithLabelValues(event, reason).Inc()
}

// IncCache records a cache lookup result.
func IncCache(operation, result string) {
	CacheAccess.WithLabelValues(operation, result).Inc()
}

// IncQuote records a quote outcome; stage is empty on success.
func IncQuote(outcome, stage string) {
	QuotesTotal.WithLabelValues(outcome, stage).Inc()
}

// IncNATSPublishError increments the NATS publish error counter for the given subject.
func IncNATSPublishError(subject string) {
	NATSPublishErrors.WithLabelValues(subject).Inc()
}

// ObserveDuration records elapsed time since start into a HistogramVec or SummaryVec.
func ObserveDuration(v any, start time.Time, labels ...string) {
	duration := time.Since(start).Seconds()
	switch metric := v.(type) {
	case *prometheus.HistogramVec:
		metric.WithLabelValues(labels...).Observe(duration)
	case *prometheus.SummaryVec:
		metric.WithLabelValues(labels...).Observe(duration)
	}
}
