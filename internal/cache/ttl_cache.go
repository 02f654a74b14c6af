package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value   V
	expires time.Time
}

// TTL is a small in-memory cache with per-entry expiry, used to keep the
// trial gate from re-reading the tenant row on every request.
type TTL[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]entry[V]
}

func NewTTL[K comparable, V any]() *TTL[K, V] {
	return &TTL[K, V]{entries: make(map[K]entry[V])}
}

// Get returns the cached value when present and unexpired.
func (c *TTL[K, V]) Get(key K, now time.Time) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if now.After(item.expires) {
		delete(c.entries, key)
		return zero, false
	}
	return item.value, true
}

// Set stores a value until now+ttl. Non-positive TTLs are ignored.
func (c *TTL[K, V]) Set(key K, value V, now time.Time, ttl time.Duration) {
	if c == nil || ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expires: now.Add(ttl)}
	c.mu.Unlock()
}

// Invalidate drops a cached entry.
func (c *TTL[K, V]) Invalidate(key K) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
