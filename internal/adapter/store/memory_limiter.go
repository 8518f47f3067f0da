package store

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MemoryLimiter keeps a token bucket per key in process memory. It is the
// limiter for single-instance deployments without Redis.
type MemoryLimiter struct {
	perMinute int
	idleTTL   time.Duration

	mu          sync.Mutex
	buckets     map[string]*bucket
	lastCleanup time.Time
	now         func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewMemoryLimiter(perMinute int) *MemoryLimiter {
	return &MemoryLimiter{
		perMinute:   perMinute,
		idleTTL:     5 * time.Minute,
		buckets:     make(map[string]*bucket),
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[key]
	if !ok {
		// a full minute's worth of burst, refilled evenly
		b = &bucket{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(m.perMinute)), m.perMinute)}
		m.buckets[key] = b
	}
	b.lastSeen = now
	allowed := b.limiter.AllowN(now, 1)

	if now.Sub(m.lastCleanup) > m.idleTTL {
		m.cleanup(now)
	}
	return allowed, nil
}

func (m *MemoryLimiter) cleanup(now time.Time) {
	for key, b := range m.buckets {
		if now.Sub(b.lastSeen) > m.idleTTL {
			delete(m.buckets, key)
		}
	}
	m.lastCleanup = now
}
