package cache

import (
	"sync"
	"time"
)

// TTLCache is a small keyed cache with per-entry expiry. It backs the filter
// dropdown endpoints, where the value set changes rarely but the queries that
// compute it scan whole tables.
type TTLCache[T any] struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]*cacheItem[T]
}

type cacheItem[T any] struct {
	data      T
	expiresAt time.Time
}

// NewTTLCache creates a cache whose entries expire ttl after being set.
func NewTTLCache[T any](ttl time.Duration) *TTLCache[T] {
	return &TTLCache[T]{
		ttl:   ttl,
		items: make(map[string]*cacheItem[T]),
	}
}

// Get retrieves a value from the cache.
func (c *TTLCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	item, exists := c.items[key]
	if !exists {
		return zero, false
	}

	if time.Now().After(item.expiresAt) {
		delete(c.items, key)
		return zero, false
	}

	return item.data, true
}

// Set stores a value in the cache.
func (c *TTLCache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &cacheItem[T]{
		data:      data,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Invalidate removes a key from the cache. Writers call this after any
// mutation that could change the cached value set.
func (c *TTLCache[T]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// Size returns the current number of items in the cache, expired or not.
func (c *TTLCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.items)
}
