package breaker

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCooldown shares the cooldown flag between replicas through a single
// expiring key. Redis errors fail open: an unreachable Redis never blocks
// upstream calls on its own.
type RedisCooldown struct {
	rdb    *redis.Client
	key    string
	logger *zap.Logger
}

func NewRedisCooldown(rdb *redis.Client, key string, logger *zap.Logger) *RedisCooldown {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCooldown{rdb: rdb, key: key, logger: logger}
}

func (c *RedisCooldown) Active(ctx context.Context) bool {
	n, err := c.rdb.Exists(ctx, c.key).Result()
	if err != nil {
		c.logger.Warn("cooldown.redis_check_failed", zap.String("key", c.key), zap.Error(err))
		return false
	}
	return n > 0
}

func (c *RedisCooldown) Trip(ctx context.Context, d time.Duration) {
	if err := c.rdb.Set(ctx, c.key, "1", d).Err(); err != nil {
		c.logger.Warn("cooldown.redis_trip_failed", zap.String("key", c.key), zap.Error(err))
	}
}
