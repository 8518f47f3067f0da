package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed one-minute window counter shared by every replica.
type RedisLimiter struct {
	client *redis.Client
	limit  int // requests per window
	window time.Duration
	now    func() time.Time
}

func NewRedisLimiter(client *redis.Client, limit int) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: time.Minute,
		now:    time.Now,
	}
}

func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	slot := r.now().Unix() / int64(r.window.Seconds())
	redisKey := fmt.Sprintf("ratelimit:%s:%d", key, slot)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, r.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit counter: %w", err)
	}
	return incr.Val() <= int64(r.limit), nil
}
