package cache

import (
	"log/slog"
	"sync"
	"time"
)

// CacheEntry represents a cached item with expiration time
type CacheEntry[V any] struct {
	Value     V
	ExpiresAt time.Time
}

// TTLCache is a thread-safe cache whose entries expire after a fixed TTL
type TTLCache[K comparable, V any] struct {
	items         map[K]*CacheEntry[V]
	mutex         sync.RWMutex
	ttl           time.Duration
	now           func() time.Time
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	stopOnce      sync.Once
}

// Option configures a TTLCache
type Option func(*config)

type config struct {
	now func() time.Time
}

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// NewTTLCache creates a new TTL cache. A cleanupInterval <= 0 disables the background sweep;
// expired entries are still never returned.
func NewTTLCache[K comparable, V any](ttl, cleanupInterval time.Duration, opts ...Option) *TTLCache[K, V] {
	cfg := config{now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &TTLCache[K, V]{
		items:       make(map[K]*CacheEntry[V]),
		ttl:         ttl,
		now:         cfg.now,
		stopCleanup: make(chan struct{}),
	}

	if cleanupInterval > 0 {
		c.cleanupTicker = time.NewTicker(cleanupInterval)
		go c.cleanupExpiredEntries()
	}

	slog.Debug("TTL cache initialized",
		"ttl", ttl.String(),
		"cleanup_interval", cleanupInterval.String())

	return c
}

// Set stores a value with the cache's TTL
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with an explicit TTL
func (c *TTLCache[K, V]) SetWithTTL(key K, value V, ttl time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items[key] = &CacheEntry[V]{
		Value:     value,
		ExpiresAt: c.now().Add(ttl),
	}
}

// Get retrieves a value if it exists and hasn't expired
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var zero V
	entry, exists := c.items[key]
	if !exists || !c.now().Before(entry.ExpiresAt) {
		return zero, false
	}
	return entry.Value, true
}

// Delete removes a specific key
func (c *TTLCache[K, V]) Delete(key K) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.items, key)
}

// Size returns the number of items including expired ones not yet swept
func (c *TTLCache[K, V]) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.items)
}

// ActiveSize returns the number of non-expired items
func (c *TTLCache[K, V]) ActiveSize() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	now := c.now()
	active := 0
	for _, entry := range c.items {
		if now.Before(entry.ExpiresAt) {
			active++
		}
	}
	return active
}

// Clear removes all items
func (c *TTLCache[K, V]) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	removed := len(c.items)
	c.items = make(map[K]*CacheEntry[V])

	slog.Debug("Cache cleared", "removed_items", removed)
}

// Stop stops the cleanup goroutine. Safe to call more than once.
func (c *TTLCache[K, V]) Stop() {
	c.stopOnce.Do(func() {
		if c.cleanupTicker != nil {
			c.cleanupTicker.Stop()
		}
		close(c.stopCleanup)
	})
}

func (c *TTLCache[K, V]) cleanupExpiredEntries() {
	for {
		select {
		case <-c.cleanupTicker.C:
			c.performCleanup()
		case <-c.stopCleanup:
			return
		}
	}
}

// performCleanup removes expired entries and returns how many were dropped
func (c *TTLCache[K, V]) performCleanup() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	expired := 0
	for key, entry := range c.items {
		if !now.Before(entry.ExpiresAt) {
			delete(c.items, key)
			expired++
		}
	}

	if expired > 0 {
		slog.Debug("Cache cleanup completed",
			"expired_entries", expired,
			"remaining_entries", len(c.items))
	}
	return expired
}

// GetStats returns cache statistics
func (c *TTLCache[K, V]) GetStats() map[string]interface{} {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	now := c.now()
	active, expired := 0, 0
	for _, entry := range c.items {
		if now.Before(entry.ExpiresAt) {
			active++
		} else {
			expired++
		}
	}

	return map[string]interface{}{
		"total_entries":   len(c.items),
		"active_entries":  active,
		"expired_entries": expired,
		"ttl_duration":    c.ttl.String(),
	}
}
