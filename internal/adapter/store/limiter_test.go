package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisLimiterWindow(t *testing.T) {
	mr, client := setupMiniRedis(t)
	l := NewRedisLimiter(client, 5)
	now := time.Date(2026, 10, 19, 9, 30, 5, 0, time.UTC)
	l.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		ok, err := l.Allow(ctx, "203.0.113.7")
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i+1)
	}
	ok, err := l.Allow(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, ok)

	// other clients have their own counter
	ok, err = l.Allow(ctx, "198.51.100.1")
	require.NoError(t, err)
	assert.True(t, ok)

	key := "ratelimit:203.0.113.7:29873370"
	require.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))

	// next window starts fresh
	now = now.Add(time.Minute)
	ok, err = l.Allow(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLimiterUnavailable(t *testing.T) {
	mr, client := setupMiniRedis(t)
	l := NewRedisLimiter(client, 5)
	mr.Close()

	_, err := l.Allow(context.Background(), "203.0.113.7")
	assert.Error(t, err)
}

func TestMemoryLimiter(t *testing.T) {
	l := NewMemoryLimiter(5)
	now := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		ok, _ := l.Allow(ctx, "a")
		assert.True(t, ok, "request %d", i+1)
	}
	ok, _ := l.Allow(ctx, "a")
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, "b")
	assert.True(t, ok)

	// one token refills every 12 seconds
	now = now.Add(13 * time.Second)
	ok, _ = l.Allow(ctx, "a")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "a")
	assert.False(t, ok)
}

func TestMemoryLimiterDropsIdleKeys(t *testing.T) {
	l := NewMemoryLimiter(5)
	now := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	l.lastCleanup = now

	_, _ = l.Allow(context.Background(), "idle")
	now = now.Add(10 * time.Minute)
	_, _ = l.Allow(context.Background(), "active")

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.buckets, "idle")
	assert.Contains(t, l.buckets, "active")
}
