package breaker

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryCooldown_Window(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCooldown()
	c.now = func() time.Time { return now }

	assert.False(t, c.Active(ctx), "fresh breaker must be closed")

	c.Trip(ctx, 60*time.Second)
	assert.True(t, c.Active(ctx))
	assert.Equal(t, now.Add(60*time.Second), c.Until())

	now = now.Add(59 * time.Second)
	assert.True(t, c.Active(ctx))

	now = now.Add(time.Second)
	assert.False(t, c.Active(ctx), "breaker closes when the window ends")
}

func TestMemoryCooldown_TripExtends(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCooldown()
	c.now = func() time.Time { return now }

	c.Trip(ctx, 10*time.Second)
	now = now.Add(8 * time.Second)
	c.Trip(ctx, 10*time.Second)
	now = now.Add(5 * time.Second)

	assert.True(t, c.Active(ctx))
}

func newTestRedisCooldown(t *testing.T) (*RedisCooldown, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisCooldown(rdb, "rajaongkir:cooldown", zap.NewNop()), mr
}

func TestRedisCooldown_Window(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisCooldown(t)

	assert.False(t, c.Active(ctx))

	c.Trip(ctx, 60*time.Second)
	assert.True(t, c.Active(ctx))
	assert.True(t, mr.Exists("rajaongkir:cooldown"))

	mr.FastForward(61 * time.Second)
	assert.False(t, c.Active(ctx))
}

func TestRedisCooldown_FailsOpen(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisCooldown(t)
	c.Trip(ctx, time.Minute)
	mr.Close()

	assert.False(t, c.Active(ctx), "unreachable redis must not block calls")
	c.Trip(ctx, time.Minute) // logs, no panic
}
