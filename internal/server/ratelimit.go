package server

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/vanshika/astronum/backend/internal/metrics"
)

// RateLimiter is a per-client fixed-window counter. A limit of zero or less
// disables it.
type RateLimiter struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	nowFn     func() time.Time
	clients   map[string]*clientWindow
	lastSweep time.Time
}

type clientWindow struct {
	start time.Time
	count int
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	Reset      time.Time
	RetryAfter time.Duration
}

// NewRateLimiter allows limit requests per client in each window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		nowFn:   time.Now,
		clients: make(map[string]*clientWindow),
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (l *RateLimiter) WithClock(nowFn func() time.Time) *RateLimiter {
	if nowFn != nil {
		l.nowFn = nowFn
	}
	return l
}

// Enabled reports whether requests can ever be rejected.
func (l *RateLimiter) Enabled() bool {
	return l != nil && l.limit > 0 && l.window > 0
}

// Allow counts one request from key against its current window.
func (l *RateLimiter) Allow(key string) Decision {
	if !l.Enabled() {
		return Decision{Allowed: true}
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFn()
	l.sweep(now)

	w, ok := l.clients[key]
	if !ok || !now.Before(w.start.Add(l.window)) {
		w = &clientWindow{start: now}
		l.clients[key] = w
	}
	reset := w.start.Add(l.window)
	if w.count >= l.limit {
		return Decision{Allowed: false, Limit: l.limit, Reset: reset, RetryAfter: reset.Sub(now)}
	}
	w.count++
	return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit - w.count, Reset: reset}
}

// sweep drops expired windows at most once per window.
func (l *RateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	for key, w := range l.clients {
		if !now.Before(w.start.Add(l.window)) {
			delete(l.clients, key)
		}
	}
	l.lastSweep = now
}

func (l *RateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func rateLimitMiddleware(limiter *RateLimiter, clients *ClientResolver, m *metrics.Metrics, exempt func(*http.Request) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !limiter.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || (exempt != nil && exempt(r)) {
				next.ServeHTTP(w, r)
				return
			}
			d := limiter.Allow(clients.Key(r))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))
			if !d.Allowed {
				m.RateLimited()
				retry := int(math.Ceil(d.RetryAfter.Seconds()))
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
