// Package metrics owns the Prometheus registry and the collectors the server
// and services report to. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "astronum"

// Metrics groups the application collectors.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	rateLimited      prometheus.Counter
	cacheLookups     *prometheus.CounterVec
	readingsCreated  *prometheus.CounterVec
	chartUnavailable prometheus.Counter
	insights         *prometheus.CounterVec
	compatibility    *prometheus.CounterVec
	chatMessages     *prometheus.CounterVec
}

// New registers every collector on a fresh registry, along with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by result.",
		}, []string{"result"}),
		readingsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_created_total",
			Help:      "Readings created by confidence.",
		}, []string{"confidence"}),
		chartUnavailable: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_unavailable_total",
			Help:      "Readings whose chart could not be computed.",
		}),
		insights: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insights_generated_total",
			Help:      "Generated commentary by kind and source.",
		}, []string{"kind", "source"}),
		compatibility: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compatibility_scored_total",
			Help:      "Compatibility comparisons by category.",
		}, []string{"category"}),
		chatMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_messages_total",
			Help:      "Chat messages persisted by role.",
		}, []string{"role"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.rateLimited,
		m.cacheLookups,
		m.readingsCreated,
		m.chartUnavailable,
		m.insights,
		m.compatibility,
		m.chatMessages,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		Registry:      m.registry,
		ErrorHandling: promhttp.ContinueOnError,
	})
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// RateLimited counts a rejected request.
func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

// CacheLookup counts a response cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ReadingCreated counts a stored reading.
func (m *Metrics) ReadingCreated(confidence string) {
	if m == nil {
		return
	}
	m.readingsCreated.WithLabelValues(confidence).Inc()
}

// ChartUnavailable counts a chart that fell back to numerology only.
func (m *Metrics) ChartUnavailable() {
	if m == nil {
		return
	}
	m.chartUnavailable.Inc()
}

// InsightGenerated counts commentary by kind (reading, compatibility, chat)
// and source (template, genai).
func (m *Metrics) InsightGenerated(kind, source string) {
	if m == nil {
		return
	}
	m.insights.WithLabelValues(kind, source).Inc()
}

// CompatibilityScored counts a comparison.
func (m *Metrics) CompatibilityScored(category string) {
	if m == nil {
		return
	}
	m.compatibility.WithLabelValues(category).Inc()
}

// ChatMessage counts a persisted chat message.
func (m *Metrics) ChatMessage(role string) {
	if m == nil {
		return
	}
	m.chatMessages.WithLabelValues(role).Inc()
}
