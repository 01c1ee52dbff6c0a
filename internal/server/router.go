package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vanshika/astronum/backend/internal/metrics"
)

// RouterDependencies collects handler dependencies.
type RouterDependencies struct {
	Health           HealthService
	API              *APIHandlers
	Metrics          *metrics.Metrics
	ExposeMetrics    bool
	Limiter          *RateLimiter
	Clients          *ClientResolver
	AllowedOrigins   []string
	AllowCredentials bool
}

// NewRouter wires the HTTP routes exposed by the backend API.
func NewRouter(logger *slog.Logger, deps RouterDependencies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		payload := map[string]any{
			"status": "ok",
		}

		if deps.Health != nil {
			if err := deps.Health.Probe(ctx); err != nil {
				logger.Error("health probe failed", "error", err)
				status = http.StatusServiceUnavailable
				payload["status"] = "degraded"
				payload["error"] = err.Error()
			}
		}

		respondJSON(w, status, payload)
	})

	if deps.ExposeMetrics && deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics.Handler())
	}

	if deps.API != nil {
		api := deps.API
		mux.HandleFunc("POST /readings", api.createReading)
		mux.HandleFunc("GET /readings", api.listReadings)
		mux.HandleFunc("GET /readings/{id}", api.getReading)

		mux.HandleFunc("POST /compatibility", api.compatibility)
		mux.HandleFunc("GET /compatibility/{id}", api.getCompatibilityReport)

		mux.HandleFunc("GET /people", api.listPeople)
		mux.HandleFunc("GET /people/{readingId}/connections", api.personConnections)
		mux.HandleFunc("GET /people/{readingId}/matches", api.topMatches)

		mux.HandleFunc("POST /chat/sessions", api.startChatSession)
		mux.HandleFunc("GET /chat/sessions/{id}", api.getChatSession)
		mux.HandleFunc("POST /chat/sessions/{id}/messages", api.sendChatMessage)

		mux.HandleFunc("GET /export/readings", api.exportReadings)
		mux.HandleFunc("GET /export/people", api.exportPeople)
	}

	handler := rateLimitMiddleware(deps.Limiter, deps.Clients, deps.Metrics, isOperational)(mux)
	handler = metricsMiddleware(deps.Metrics, handler)
	handler = loggingMiddleware(logger, deps.Clients, handler)
	if len(deps.AllowedOrigins) > 0 {
		handler = corsMiddleware(deps.AllowedOrigins, deps.AllowCredentials)(handler)
	}
	return handler
}

// isOperational matches endpoints that are never rate limited.
func isOperational(r *http.Request) bool {
	return r.URL.Path == "/healthz" || r.URL.Path == "/metrics"
}

// loggingMiddleware tags each request with an X-Request-ID (kept from the
// client when reasonable) and logs one line per request.
func loggingMiddleware(logger *slog.Logger, clients *ClientResolver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := requestID(r)
		w.Header().Set("X-Request-ID", reqID)

		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		level := slog.LevelInfo
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.LogAttrs(r.Context(), level, "request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.String("client", clients.Key(r)),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func requestID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-Request-ID")); id != "" && len(id) <= 64 {
		return id
	}
	return uuid.NewString()
}

// metricsMiddleware labels requests by the matched route pattern so path
// parameters do not explode label cardinality.
func metricsMiddleware(m *metrics.Metrics, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		} else if _, path, ok := strings.Cut(route, " "); ok {
			route = path
		}
		m.ObserveHTTP(route, r.Method, rec.status, time.Since(start))
	})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// corsMiddleware answers pre-flight requests and decorates responses for
// origins on the allow-list. "*" admits any origin; the request origin is
// echoed back so credentials keep working.
func corsMiddleware(allowedOrigins []string, allowCredentials bool) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			allowed[origin] = true
		}
	}
	originOK := func(origin string) bool {
		return origin != "" && (allowed[origin] || allowed["*"])
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			preflight := r.Method == http.MethodOptions

			if !originOK(origin) {
				if preflight {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			if allowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			h.Set("Access-Control-Expose-Headers", strings.Join(exposedHeaders, ", "))

			if preflight {
				h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
				h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				h.Set("Access-Control-Max-Age", "600")
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

var exposedHeaders = []string{
	"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset",
	"Retry-After", "X-Cache", "X-Request-ID",
}
