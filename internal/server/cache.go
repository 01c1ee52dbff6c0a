package server

import (
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

const defaultCacheEntries = 1024

// ResponseCache holds serialized responses keyed by request fingerprint
// until their TTL passes. A TTL of zero or less disables it.
type ResponseCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	nowFn      func() time.Time
	entries    map[uint64]cachedResponse
}

type cachedResponse struct {
	status  int
	body    []byte
	expires time.Time
}

// NewResponseCache creates a cache; maxEntries of zero or less uses a default.
func NewResponseCache(ttl time.Duration, maxEntries int) *ResponseCache {
	if maxEntries <= 0 {
		maxEntries = defaultCacheEntries
	}
	return &ResponseCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		nowFn:      time.Now,
		entries:    make(map[uint64]cachedResponse),
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (c *ResponseCache) WithClock(nowFn func() time.Time) *ResponseCache {
	if nowFn != nil {
		c.nowFn = nowFn
	}
	return c
}

// Enabled reports whether Set stores anything.
func (c *ResponseCache) Enabled() bool {
	return c != nil && c.ttl > 0
}

// Get returns the live entry for key.
func (c *ResponseCache) Get(key uint64) (body []byte, status int, ok bool) {
	if !c.Enabled() {
		return nil, 0, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, found := c.entries[key]
	if !found {
		return nil, 0, false
	}
	if !c.nowFn().Before(entry.expires) {
		delete(c.entries, key)
		return nil, 0, false
	}
	return entry.body, entry.status, true
}

// Set stores body under key for the cache TTL.
func (c *ResponseCache) Set(key uint64, status int, body []byte) {
	if !c.Enabled() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.nowFn()
	if len(c.entries) >= c.maxEntries {
		c.evict(now)
	}
	c.entries[key] = cachedResponse{status: status, body: body, expires: now.Add(c.ttl)}
}

// evict drops expired entries, then the soonest-expiring one if still full.
func (c *ResponseCache) evict(now time.Time) {
	var (
		oldestKey uint64
		oldest    time.Time
	)
	for key, entry := range c.entries {
		if !now.Before(entry.expires) {
			delete(c.entries, key)
			continue
		}
		if oldest.IsZero() || entry.expires.Before(oldest) {
			oldest, oldestKey = entry.expires, key
		}
	}
	if len(c.entries) >= c.maxEntries {
		delete(c.entries, oldestKey)
	}
}

// Len returns the number of stored entries, live or not.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Fingerprint hashes the request parts with surrounding space trimmed. Case
// is kept: it shows up in stored names and generated text.
func Fingerprint(parts ...string) uint64 {
	d := xxhash.New()
	for _, p := range parts {
		_, _ = d.WriteString(strings.TrimSpace(p))
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}
