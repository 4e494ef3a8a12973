package cache

import (
	"sync"
	"time"
)

type ttlItem[T any] struct {
	value      T
	expiration time.Time
}

// TTL is a thread-safe in-memory map with per-entry expiry.
type TTL[T any] struct {
	mu   sync.RWMutex
	data map[string]ttlItem[T]
	ttl  time.Duration
	now  func() time.Time
}

// NewTTL creates a TTL map whose Put uses defaultTTL.
func NewTTL[T any](defaultTTL time.Duration) *TTL[T] {
	return &TTL[T]{
		data: make(map[string]ttlItem[T]),
		ttl:  defaultTTL,
		now:  time.Now,
	}
}

// Get returns a value if present and not expired.
func (c *TTL[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	item, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		var zero T
		return zero, false
	}
	if !c.now().Before(item.expiration) {
		c.mu.Lock()
		if cur, ok := c.data[key]; ok && cur.expiration.Equal(item.expiration) {
			delete(c.data, key)
		}
		c.mu.Unlock()
		var zero T
		return zero, false
	}
	return item.value, true
}

// Put inserts or overwrites an entry with the default TTL.
func (c *TTL[T]) Put(key string, value T) {
	c.PutFor(key, value, c.ttl)
}

// PutFor inserts or overwrites an entry that expires after ttl.
func (c *TTL[T]) PutFor(key string, value T, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = ttlItem[T]{
		value:      value,
		expiration: c.now().Add(ttl),
	}
}

// Bust deletes a single entry.
func (c *TTL[T]) Bust(key string) {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included until swept.
func (c *TTL[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// StartCleaner periodically removes expired entries until stop is closed.
func (c *TTL[T]) StartCleaner(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.cleanupExpired()
		case <-stop:
			return
		}
	}
}

func (c *TTL[T]) cleanupExpired() {
	now := c.now()
	c.mu.Lock()
	for k, v := range c.data {
		if !now.Before(v.expiration) {
			delete(c.data, k)
		}
	}
	c.mu.Unlock()
}
