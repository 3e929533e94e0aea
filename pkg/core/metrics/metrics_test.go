package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	assert.Equal(t, "frege_test", clean("frege-test"))
	assert.Equal(t, "a_b_c", clean("a.b-c"))
}

func TestMetrics_Counters(t *testing.T) {
	m := New("frege")

	m.ObserveRequest("parse", "right", OutcomeSuccess, time.Millisecond)
	m.ObserveRequest("parse", "right", OutcomeSuccess, time.Millisecond)
	m.ObserveRequest("parse", "left", OutcomeMismatch, time.Millisecond)
	m.CacheHit()
	m.CacheMiss()
	m.CacheMiss()
	m.SetHistorySize(7)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("parse", "right", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("parse", "left", OutcomeMismatch)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheHits))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheMisses))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.history))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("parse", "right", OutcomeSuccess, time.Millisecond)
		m.ObserveTokens(3)
		m.CacheHit()
		m.CacheMiss()
		m.SetHistorySize(1)
		m.TrackCacheEvictions(func() int64 { return 1 })
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New("frege")
	m.ObserveTokens(3)
	m.ObserveRequest("evaluate", "right", OutcomeSuccess, time.Millisecond)

	rw := httptest.NewRecorder()
	m.Handler().ServeHTTP(rw, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rw.Result().Body)
	require.NoError(t, err)
	text := string(body)
	assert.True(t, strings.Contains(text, `frege_requests_total{assoc="right",operation="evaluate",outcome="success"} 1`), text)
	assert.Contains(t, text, "frege_input_tokens_count 1")
	assert.Contains(t, text, "go_goroutines")
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New("frege")
		New("frege")
	})
}

func TestMetrics_TrackCacheEvictions(t *testing.T) {
	m := New("frege")
	var evicted int64 = 3
	m.TrackCacheEvictions(func() int64 { return evicted })
	m.TrackCacheEvictions(func() int64 { return 100 })

	expected := `
# HELP frege_cache_evictions_total Cached results pushed out because the cache was full.
# TYPE frege_cache_evictions_total counter
frege_cache_evictions_total 3
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "frege_cache_evictions_total"))

	evicted = 5
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(),
		strings.NewReader(strings.Replace(expected, "total 3", "total 5", 1)), "frege_cache_evictions_total"))
}
