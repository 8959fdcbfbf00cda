package ratelimit

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func newLimiter(t *testing.T, server *miniredis.Miniredis, limit int, clock *fakeClock) *FixedWindowLimiter {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	limiter, err := NewFixedWindowLimiter(client, "test:ratelimit", limit, time.Minute, WithClock(clock.Now))
	require.NoError(t, err)
	return limiter
}

func TestFixedWindowLimiter_QuotaAndReset(t *testing.T) {
	server := miniredis.RunT(t)
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	limiter := newLimiter(t, server, 2, clock)

	for i := 0; i < 2; i++ {
		ok, err := limiter.Allow("10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok, "request %d should pass", i+1)
	}
	ok, err := limiter.Allow("10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok, "third request should be blocked")

	ok, err = limiter.Allow("10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok, "quota is per key")

	clock.t = clock.t.Add(time.Minute)
	ok, err = limiter.Allow("10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok, "next window starts fresh")
}

func TestFixedWindowLimiter_FailsClosed(t *testing.T) {
	server := miniredis.RunT(t)
	limiter := newLimiter(t, server, 1, &fakeClock{t: time.Now()})
	server.Close()

	ok, err := limiter.Allow("10.0.0.1")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestNewFixedWindowLimiter_Validation(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})

	_, err := NewFixedWindowLimiter(nil, "", 1, time.Second)
	assert.Error(t, err)
	_, err = NewFixedWindowLimiter(client, "", 0, time.Second)
	assert.Error(t, err)
	_, err = NewFixedWindowLimiter(client, "", 1, 0)
	assert.Error(t, err)
}
