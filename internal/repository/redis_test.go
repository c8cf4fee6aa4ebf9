package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRateLimiter(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	defer client.Close()

	limiter := NewRedisRateLimiter(client)
	ctx := context.Background()

	t.Run("WithinLimit", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			allowed, err := limiter.CheckRateLimit(ctx, 1, 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
		}
		assert.True(t, s.Exists("rate_limit:1"))
		assert.Equal(t, time.Minute, s.TTL("rate_limit:1"))
	})

	t.Run("OverLimit", func(t *testing.T) {
		allowed, err := limiter.CheckRateLimit(ctx, 1, 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("KeysAreIndependent", func(t *testing.T) {
		allowed, err := limiter.CheckRateLimit(ctx, 2, 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("WindowExpiry", func(t *testing.T) {
		s.FastForward(time.Minute + time.Second)

		allowed, err := limiter.CheckRateLimit(ctx, 1, 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("ServerDown", func(t *testing.T) {
		s.SetError("server down")
		defer s.SetError("")

		_, err := limiter.CheckRateLimit(ctx, 3, 3, time.Minute)
		assert.Error(t, err)
	})
}

func TestRedisRateLimiter_NilClient(t *testing.T) {
	limiter := NewRedisRateLimiter(nil)

	_, err := limiter.CheckRateLimit(context.Background(), 1, 1, time.Second)
	assert.Error(t, err)
}

func TestRedisHelpers(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := NewRedisClient(configFor(s.Addr()))

	assert.NoError(t, Ping(context.Background(), client))
	assert.NoError(t, Close(client))
	assert.NoError(t, Close(nil))
}
