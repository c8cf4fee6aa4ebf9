package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"shareit/internal/domain"

	"github.com/rs/zerolog"
)

const primaryRetryInterval = time.Minute

// FailoverRateLimiter uses primary until it errors, then serves from
// fallback and retries primary once per primaryRetryInterval.
type FailoverRateLimiter struct {
	primary  domain.RateLimiter
	fallback domain.RateLimiter
	logger   *zerolog.Logger

	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time
}

func NewFailoverRateLimiter(primary, fallback domain.RateLimiter, logger *zerolog.Logger) *FailoverRateLimiter {
	return &FailoverRateLimiter{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverRateLimiter) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary rate limiter failed, falling back to memory")
	r.isDown.Store(true)
	r.mu.Lock()
	r.lastCheck = time.Now()
	r.mu.Unlock()
}

func (r *FailoverRateLimiter) shouldRetryPrimary() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if time.Since(r.lastCheck) <= primaryRetryInterval {
		return false
	}
	r.lastCheck = time.Now()
	return true
}

func (r *FailoverRateLimiter) CheckRateLimit(ctx context.Context, key int64, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() || r.shouldRetryPrimary() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			if r.isDown.Swap(false) {
				r.logger.Info().Msg("Primary rate limiter recovered")
			}
			return allowed, nil
		}
		r.markDown(err)
	}

	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}
