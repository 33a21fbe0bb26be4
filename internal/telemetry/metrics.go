package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the QUILL gateway.
type Metrics struct {
	RequestTotal      *prometheus.CounterVec
	RequestDurationMs *prometheus.HistogramVec
	CacheEventTotal   *prometheus.CounterVec
	FallbackTotal     *prometheus.CounterVec
	RateLimitWaitMs   prometheus.Histogram
	RateLimitHitTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RequestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "quill_request_total",
			Help: "Total number of provider calls made by the orchestrator.",
		}, []string{"operation", "provider", "status"}),

		RequestDurationMs: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quill_request_duration_ms",
			Help:    "Provider call duration in milliseconds.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
		}, []string{"operation", "provider"}),

		CacheEventTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "quill_cache_event_total",
			Help: "Response cache lookups by result.",
		}, []string{"result"}),

		FallbackTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "quill_fallback_total",
			Help: "Fallback hops taken after a primary provider failure.",
		}, []string{"from", "to"}),

		RateLimitWaitMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "quill_rate_limit_wait_ms",
			Help:    "Time spent waiting on the outbound token bucket in milliseconds.",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000},
		}),

		RateLimitHitTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "quill_rate_limit_hit_total",
			Help: "Requests rejected by per-key rate limiting, by dimension.",
		}, []string{"dimension", "key_id"}),
	}
}

// RecordRequest records one provider call outcome.
func (m *Metrics) RecordRequest(operation, provider, status string, duration time.Duration) {
	m.RequestTotal.WithLabelValues(operation, provider, status).Inc()
	m.RequestDurationMs.WithLabelValues(operation, provider).Observe(float64(duration.Milliseconds()))
}

// RecordCacheEvent records a cache lookup result ("hit" or "miss").
func (m *Metrics) RecordCacheEvent(result string) {
	m.CacheEventTotal.WithLabelValues(result).Inc()
}

// RecordFallback records one fallback hop.
func (m *Metrics) RecordFallback(from, to string) {
	m.FallbackTotal.WithLabelValues(from, to).Inc()
}

// RecordRateLimitWait records time spent blocked on the token bucket.
func (m *Metrics) RecordRateLimitWait(d time.Duration) {
	m.RateLimitWaitMs.Observe(float64(d.Milliseconds()))
}

// RecordRateLimitHit records a per-key limit rejection.
func (m *Metrics) RecordRateLimitHit(dimension, keyID string) {
	m.RateLimitHitTotal.WithLabelValues(dimension, keyID).Inc()
}
