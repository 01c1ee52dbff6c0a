package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseCacheTTL(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	c := NewResponseCache(time.Minute, 0).WithClock(func() time.Time { return now })

	key := Fingerprint("a", "b")
	c.Set(key, 201, []byte(`{"ok":true}`))

	body, status, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, 201, status)
	assert.JSONEq(t, `{"ok":true}`, string(body))

	now = now.Add(59 * time.Second)
	_, _, ok = c.Get(key)
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, _, ok = c.Get(key)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestResponseCacheEvictsSoonestExpiring(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	c := NewResponseCache(time.Minute, 2).WithClock(func() time.Time { return now })

	c.Set(1, 200, []byte("one"))
	now = now.Add(time.Second)
	c.Set(2, 200, []byte("two"))
	now = now.Add(time.Second)
	c.Set(3, 200, []byte("three"))

	assert.Equal(t, 2, c.Len())
	_, _, ok := c.Get(1)
	assert.False(t, ok)
	_, _, ok = c.Get(3)
	assert.True(t, ok)
}

func TestResponseCacheDisabled(t *testing.T) {
	var nilCache *ResponseCache
	assert.False(t, nilCache.Enabled())
	_, _, ok := nilCache.Get(1)
	assert.False(t, ok)
	nilCache.Set(1, 200, nil)

	c := NewResponseCache(0, 0)
	c.Set(1, 200, []byte("x"))
	assert.Equal(t, 0, c.Len())
}

func TestFingerprintNormalizes(t *testing.T) {
	assert.Equal(t, Fingerprint("John Smith", "1990-05-15"), Fingerprint("  John Smith ", "1990-05-15"))
	assert.NotEqual(t, Fingerprint("John Smith", "1990-05-15"), Fingerprint("john smith", "1990-05-15"))
	assert.NotEqual(t, Fingerprint("ab", "c"), Fingerprint("a", "bc"))
}
