package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewMetrics(t *testing.T) {
	m := NewMetrics()

	if m.RequestTotal == nil {
		t.Error("RequestTotal should not be nil")
	}
	if m.RequestDurationMs == nil {
		t.Error("RequestDurationMs should not be nil")
	}
	if m.CacheEventTotal == nil {
		t.Error("CacheEventTotal should not be nil")
	}
	if m.FallbackTotal == nil {
		t.Error("FallbackTotal should not be nil")
	}
	if m.RateLimitWaitMs == nil {
		t.Error("RateLimitWaitMs should not be nil")
	}
	if m.RateLimitHitTotal == nil {
		t.Error("RateLimitHitTotal should not be nil")
	}
}

func testMetrics() *Metrics {
	// Use fresh unregistered collectors to avoid polluting the default
	// registry across tests.
	return &Metrics{
		RequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "test_quill_request_total",
			Help: "Test counter",
		}, []string{"operation", "provider", "status"}),
		RequestDurationMs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "test_quill_request_duration_ms",
			Help:    "Test histogram",
			Buckets: []float64{100, 500, 1000},
		}, []string{"operation", "provider"}),
		CacheEventTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "test_quill_cache_event_total",
			Help: "Test counter",
		}, []string{"result"}),
		FallbackTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "test_quill_fallback_total",
			Help: "Test counter",
		}, []string{"from", "to"}),
		RateLimitWaitMs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "test_quill_rate_limit_wait_ms",
			Help:    "Test histogram",
			Buckets: []float64{1, 10, 100},
		}),
		RateLimitHitTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "test_quill_rate_limit_hit_total",
			Help: "Test counter",
		}, []string{"dimension", "key_id"}),
	}
}

func counterValue(t *testing.T, vec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	counter, err := vec.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("failed to get metric: %v", err)
	}
	var metric dto.Metric
	counter.Write(&metric)
	return *metric.Counter.Value
}

func TestRecordRequest(t *testing.T) {
	m := testMetrics()

	m.RecordRequest("grammar_check", "openai", "ok", 150*time.Millisecond)
	m.RecordRequest("grammar_check", "openai", "ok", 200*time.Millisecond)
	m.RecordRequest("rephrase", "local", "timeout", 30*time.Second)

	if got := counterValue(t, m.RequestTotal, "grammar_check", "openai", "ok"); got != 2 {
		t.Errorf("expected request count 2, got %v", got)
	}
	if got := counterValue(t, m.RequestTotal, "rephrase", "local", "timeout"); got != 1 {
		t.Errorf("expected request count 1, got %v", got)
	}
}

func TestRecordCacheEvent(t *testing.T) {
	m := testMetrics()

	m.RecordCacheEvent("hit")
	m.RecordCacheEvent("hit")
	m.RecordCacheEvent("miss")

	if got := counterValue(t, m.CacheEventTotal, "hit"); got != 2 {
		t.Errorf("expected 2 hits, got %v", got)
	}
	if got := counterValue(t, m.CacheEventTotal, "miss"); got != 1 {
		t.Errorf("expected 1 miss, got %v", got)
	}
}

func TestRecordFallback(t *testing.T) {
	m := testMetrics()

	m.RecordFallback("local", "openai")

	if got := counterValue(t, m.FallbackTotal, "local", "openai"); got != 1 {
		t.Errorf("expected fallback count 1, got %v", got)
	}
}

func TestRecordRateLimitHit(t *testing.T) {
	m := testMetrics()

	m.RecordRateLimitHit("rpm", "key-1")
	m.RecordRateLimitHit("quota", "key-1")

	if got := counterValue(t, m.RateLimitHitTotal, "rpm", "key-1"); got != 1 {
		t.Errorf("expected rpm hit count 1, got %v", got)
	}
	if got := counterValue(t, m.RateLimitHitTotal, "quota", "key-1"); got != 1 {
		t.Errorf("expected quota hit count 1, got %v", got)
	}
}
