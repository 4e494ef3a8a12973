// Package breaker holds the upstream-instability cooldown flag. While the flag
// is set no new upstream request is attempted, for any endpoint.
package breaker

import (
	"context"
	"sync"
	"time"
)

// Cooldown is a time-boxed, process-wide circuit breaker.
type Cooldown interface {
	// Active reports whether calls should be short-circuited right now.
	Active(ctx context.Context) bool
	// Trip opens the breaker for d. A later Trip extends the window.
	Trip(ctx context.Context, d time.Duration)
}

// MemoryCooldown is the in-process Cooldown.
type MemoryCooldown struct {
	mu    sync.Mutex
	until time.Time
	now   func() time.Time
}

func NewMemoryCooldown() *MemoryCooldown {
	return &MemoryCooldown{now: time.Now}
}

func (c *MemoryCooldown) Active(_ context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now().Before(c.until)
}

func (c *MemoryCooldown) Trip(_ context.Context, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.until = c.now().Add(d)
}

// Until returns the end of the current window (zero if never tripped).
func (c *MemoryCooldown) Until() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.until
}
