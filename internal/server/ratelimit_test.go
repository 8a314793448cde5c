package server

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock returns a limiter whose time is controlled by the returned func.
func fakeClock(rl *RateLimiter) func(time.Duration) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return func(d time.Duration) { now = now.Add(d) }
}

func TestNewRateLimiter(t *testing.T) {
	rl := NewRateLimiter(10)

	require.NotNil(t, rl)
	assert.Equal(t, 10, rl.requestsPerMinute)
	assert.NotNil(t, rl.clients)
}

func TestRateLimiter_NoLimit(t *testing.T) {
	rl := NewRateLimiter(0)

	for range 100 {
		require.NoError(t, rl.Allow("client"))
	}
	assert.Zero(t, rl.Usage("client"), "disabled limiter does not track clients")
}

func TestRateLimiter_RequestsPerMinute(t *testing.T) {
	rl := NewRateLimiter(2)
	advance := fakeClock(rl)

	require.NoError(t, rl.Allow("client"))
	advance(10 * time.Second)
	require.NoError(t, rl.Allow("client"))
	assert.Equal(t, 2, rl.Usage("client"))

	advance(5 * time.Second)
	err := rl.Allow("client")
	require.Error(t, err)

	var rateLimitErr *RateLimitError
	require.True(t, errors.As(err, &rateLimitErr))
	assert.Equal(t, 2, rateLimitErr.Limit)
	assert.Equal(t, 45*time.Second, rateLimitErr.RetryAfter)
}

func TestRateLimiter_WindowReset(t *testing.T) {
	rl := NewRateLimiter(1)
	advance := fakeClock(rl)

	require.NoError(t, rl.Allow("client"))
	require.Error(t, rl.Allow("client"))

	advance(time.Minute)
	assert.Zero(t, rl.Usage("client"))
	require.NoError(t, rl.Allow("client"))
	assert.Equal(t, 1, rl.Usage("client"))
}

func TestRateLimiter_MultipleClients(t *testing.T) {
	rl := NewRateLimiter(1)
	fakeClock(rl)

	require.NoError(t, rl.Allow("a"))
	require.NoError(t, rl.Allow("b"))
	require.Error(t, rl.Allow("a"))
	require.Error(t, rl.Allow("b"))
	assert.Zero(t, rl.Usage("c"))
}

func TestRateLimiter_PrunesExpiredWindows(t *testing.T) {
	rl := NewRateLimiter(5)
	advance := fakeClock(rl)

	for i := range 1024 {
		require.NoError(t, rl.Allow(fmt.Sprintf("client-%d", i)))
	}
	advance(2 * time.Minute)
	require.NoError(t, rl.Allow("fresh"))

	assert.Len(t, rl.clients, 1)
}

func TestRateLimiter_Concurrent(t *testing.T) {
	rl := NewRateLimiter(50)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow("shared") == nil {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}

func TestRateLimitError_Error(t *testing.T) {
	err := &RateLimitError{Limit: 60, RetryAfter: 30 * time.Second}
	assert.Equal(t, "rate limit exceeded (limit: 60 per minute, retry after: 30s)", err.Error())
}
