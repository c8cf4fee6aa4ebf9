package repository

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleAfter is how long an unused bucket is kept. A bucket idle for longer
// than its window is full again, so dropping it loses nothing.
const idleAfter = 10 * time.Minute

type limiterKey struct {
	key    int64
	limit  int
	window time.Duration
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// MemoryRateLimiter is a per-process token bucket per key. A bucket refills
// limit tokens over window and holds at most limit tokens.
type MemoryRateLimiter struct {
	mu        sync.Mutex
	limiters  map[limiterKey]*limiterEntry
	lastSweep time.Time
	now       func() time.Time
}

func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{
		limiters: make(map[limiterKey]*limiterEntry),
		now:      time.Now,
	}
}

func (r *MemoryRateLimiter) getLimiter(k limiterKey, now time.Time) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	if now.Sub(r.lastSweep) >= idleAfter {
		r.sweep(now)
	}

	entry, ok := r.limiters[k]
	if !ok {
		// limit/window в секундах: без округления интервала до нуля
		every := rate.Limit(float64(k.limit) / k.window.Seconds())
		entry = &limiterEntry{lim: rate.NewLimiter(every, k.limit)}
		r.limiters[k] = entry
	}
	entry.lastSeen = now
	return entry.lim
}

func (r *MemoryRateLimiter) sweep(now time.Time) {
	for k, entry := range r.limiters {
		idle := now.Sub(entry.lastSeen)
		if idle >= idleAfter && idle >= k.window {
			delete(r.limiters, k)
		}
	}
	r.lastSweep = now
}

func (r *MemoryRateLimiter) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.limiters)
}

func (r *MemoryRateLimiter) CheckRateLimit(_ context.Context, key int64, limit int, window time.Duration) (bool, error) {
	if limit <= 0 || window <= 0 {
		return false, nil
	}
	now := r.now()
	return r.getLimiter(limiterKey{key: key, limit: limit, window: window}, now).AllowN(now, 1), nil
}
