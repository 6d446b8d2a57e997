package edgefilter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter shares fixed-window counters between instances. The first hit
// of a window creates the counter and sets its TTL to the window.
type RedisLimiter struct {
	rdb       *redis.Client
	keyPrefix string
	window    time.Duration
	limit     int
}

func NewRedisLimiter(rdb *redis.Client, keyPrefix string, window time.Duration, limit int) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, keyPrefix: keyPrefix, window: window, limit: limit}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	key = l.keyPrefix + ":" + key

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("incr %s: %w", key, err)
	}
	if count == 1 {
		if err := l.rdb.PExpire(ctx, key, l.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("pexpire %s: %w", key, err)
		}
		return decide(1, l.limit, time.Now().Add(l.window)), nil
	}

	ttl, err := l.rdb.PTTL(ctx, key).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("pttl %s: %w", key, err)
	}
	// A counter left without TTL would never reset.
	if ttl < 0 {
		if err := l.rdb.PExpire(ctx, key, l.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("pexpire %s: %w", key, err)
		}
		ttl = l.window
	}
	return decide(int(count), l.limit, time.Now().Add(ttl)), nil
}
