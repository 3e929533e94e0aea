package metrics

import (
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// invalidChar forces metric names to conform to Prometheus's restrictions
var invalidChar = regexp.MustCompile("([^a-zA-Z0-9_:])")

func clean(s string) string {
	return invalidChar.ReplaceAllLiteralString(s, "_")
}

// Outcome labels for parse and evaluation counters
const (
	OutcomeSuccess    = "success"
	OutcomeMismatch   = "mismatch"
	OutcomeExhausted  = "exhausted"
	OutcomeIncomplete = "incomplete"
	OutcomeError      = "error"
)

// Metrics holds the collectors of one process. Each instance owns its own
// registry so tests can create as many as they like.
type Metrics struct {
	registry      *prometheus.Registry
	namespace     string
	evictionsOnce sync.Once

	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	tokens      prometheus.Histogram
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	history     prometheus.Gauge
}

// New creates and registers all collectors under namespace
func New(namespace string) *Metrics {
	namespace = clean(namespace)
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry:  reg,
		namespace: namespace,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Parse and evaluate requests by operation, associativity and outcome.",
		}, []string{"operation", "assoc", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time spent handling a request.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"operation"}),
		tokens: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "input_tokens",
			Help:      "Number of tokens per parsed input.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Requests answered from the result cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Requests that had to be parsed.",
		}),
		history: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_entries",
			Help:      "Entries currently held by the history store.",
		}),
	}

	reg.MustRegister(
		m.requests, m.latency, m.tokens, m.cacheHits, m.cacheMisses, m.history,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest records one finished request
func (m *Metrics) ObserveRequest(operation, assoc, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(operation, assoc, outcome).Inc()
	m.latency.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveTokens records the token count of one input
func (m *Metrics) ObserveTokens(n int) {
	if m == nil {
		return
	}
	m.tokens.Observe(float64(n))
}

// CacheHit counts a cache hit
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

// CacheMiss counts a cache miss
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}

// TrackCacheEvictions exports evictions as the cache_evictions_total counter.
// Only the first call on m takes effect.
func (m *Metrics) TrackCacheEvictions(evictions func() int64) {
	if m == nil {
		return
	}
	m.evictionsOnce.Do(func() {
		m.registry.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      "cache_evictions_total",
			Help:      "Cached results pushed out because the cache was full.",
		}, func() float64 { return float64(evictions()) }))
	})
}

// SetHistorySize updates the history gauge
func (m *Metrics) SetHistorySize(n int64) {
	if m == nil {
		return
	}
	m.history.Set(float64(n))
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the /metrics endpoint for this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
