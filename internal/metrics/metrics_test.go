package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorsRecord(t *testing.T) {
	m := New()

	m.ObserveHTTP("/readings", http.MethodPost, http.StatusCreated, 15*time.Millisecond)
	m.ObserveHTTP("/readings", http.MethodPost, http.StatusCreated, 5*time.Millisecond)
	m.ReadingCreated("reduced")
	m.ChartUnavailable()
	m.InsightGenerated("reading", "template")
	m.CompatibilityScored("Good")
	m.CacheLookup(true)
	m.CacheLookup(false)
	m.RateLimited()
	m.ChatMessage("user")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/readings", http.MethodPost, "201")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.readingsCreated.WithLabelValues("reduced")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.chartUnavailable))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.insights.WithLabelValues("reading", "template")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimited))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveHTTP("/", http.MethodGet, 200, time.Second)
		m.ReadingCreated("full")
		m.ChartUnavailable()
		m.InsightGenerated("chat", "genai")
		m.CompatibilityScored("Excellent")
		m.CacheLookup(false)
		m.RateLimited()
		m.ChatMessage("assistant")
	})
	assert.Nil(t, m.Registry())
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ReadingCreated("full")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `astronum_readings_created_total{confidence="full"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
