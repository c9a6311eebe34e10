package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestTTLCache_SetAndGet(t *testing.T) {
	// Arrange
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewTTLCache[string, []string](5*time.Minute, 0, WithClock(clock.Now))
	defer c.Stop()

	// Act
	c.Set("rates", []string{"express", "standard"})
	got, ok := c.Get("rates")

	// Assert
	assert.True(t, ok, "Fresh entry should be returned")
	assert.Equal(t, []string{"express", "standard"}, got)

	_, ok = c.Get("missing")
	assert.False(t, ok, "Missing entry should not be returned")
}

func TestTTLCache_Expiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewTTLCache[string, int](time.Minute, 0, WithClock(clock.Now))
	defer c.Stop()

	c.Set("a", 1)
	c.SetWithTTL("b", 2, 10*time.Minute)

	clock.Advance(time.Minute)

	_, ok := c.Get("a")
	assert.False(t, ok, "Entry at exactly its TTL should be expired")
	v, ok := c.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	assert.Equal(t, 2, c.Size(), "Expired entries stay until swept")
	assert.Equal(t, 1, c.ActiveSize())

	removed := c.performCleanup()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, c.Size())
}

func TestTTLCache_DeleteClearAndStats(t *testing.T) {
	c := NewTTLCache[string, string](time.Minute, 0)
	defer c.Stop()

	c.Set("x", "1")
	c.Set("y", "2")
	c.Delete("x")

	stats := c.GetStats()
	assert.Equal(t, 1, stats["total_entries"])
	assert.Equal(t, 1, stats["active_entries"])
	assert.Equal(t, "1m0s", stats["ttl_duration"])

	c.Clear()
	assert.Equal(t, 0, c.Size())
}

func TestTTLCache_StopIsIdempotent(t *testing.T) {
	c := NewTTLCache[string, string](time.Minute, 10*time.Millisecond)

	assert.NotPanics(t, func() {
		c.Stop()
		c.Stop()
	})
}
