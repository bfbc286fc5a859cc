package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCounter struct{}

func (failingCounter) Incr(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("redis down")
}

func TestLimiter_MemoryFixedWindow(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	counter := NewMemoryCounter()
	counter.now = func() time.Time { return now }
	limiter := NewLimiter(counter, 5, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ok, err := limiter.Allow(ctx, "1.2.3.4:/api/auth/login")
		require.NoError(t, err)
		assert.True(t, ok, "request %d must pass", i+1)
	}

	ok, err := limiter.Allow(ctx, "1.2.3.4:/api/auth/login")
	require.NoError(t, err)
	assert.False(t, ok, "sixth request in the window is rejected")

	ok, err = limiter.Allow(ctx, "5.6.7.8:/api/auth/login")
	require.NoError(t, err)
	assert.True(t, ok, "other keys have their own window")

	now = now.Add(time.Minute)
	ok, err = limiter.Allow(ctx, "1.2.3.4:/api/auth/login")
	require.NoError(t, err)
	assert.True(t, ok, "window resets after it expires")
}

func TestMemoryCounter_SweepsExpired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	counter := NewMemoryCounter()
	counter.now = func() time.Time { return now }

	_, _ = counter.Incr(context.Background(), "a", time.Second)
	_, _ = counter.Incr(context.Background(), "b", time.Second)
	require.Len(t, counter.windows, 2)

	now = now.Add(2 * time.Minute)
	_, _ = counter.Incr(context.Background(), "c", time.Second)
	assert.Len(t, counter.windows, 1)
}

func TestMemoryCounter_Concurrent(t *testing.T) {
	counter := NewMemoryCounter()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = counter.Incr(context.Background(), "k", time.Minute)
		}()
	}
	wg.Wait()

	n, err := counter.Incr(context.Background(), "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(51), n)
}

func TestRedisCounter(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := NewLimiter(NewRedisCounter(client, ""), 2, time.Minute)
	ctx := context.Background()

	for _, want := range []bool{true, true, false} {
		ok, err := limiter.Allow(ctx, "ip:/api/waiting-list")
		require.NoError(t, err)
		assert.Equal(t, want, ok)
	}

	assert.True(t, mr.Exists("rate_limit:ip:/api/waiting-list"))
	assert.InDelta(t, time.Minute.Seconds(), mr.TTL("rate_limit:ip:/api/waiting-list").Seconds(), 1)

	mr.FastForward(time.Minute + time.Second)
	ok, err := limiter.Allow(ctx, "ip:/api/waiting-list")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLimiter_CounterError(t *testing.T) {
	limiter := NewLimiter(failingCounter{}, 5, time.Minute)
	ok, err := limiter.Allow(context.Background(), "k")
	assert.Error(t, err)
	assert.False(t, ok)
}
