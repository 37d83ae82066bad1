package sheets

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Backoff(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 100, BurstSize: 10})
	assert.NoError(t, r.Wait(context.Background()))

	r.RecordRateLimitError(50 * time.Millisecond)

	start := time.Now()
	assert.NoError(t, r.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)

	// The window has passed; the next wait only pays the token bucket.
	start = time.Now()
	assert.NoError(t, r.Wait(context.Background()))
	assert.Less(t, time.Since(start), 40*time.Millisecond)
}

func TestRateLimiter_DefaultBackoff(t *testing.T) {
	r := NewRateLimiter(DefaultRateLimit)
	r.RecordRateLimitError(0)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Wait(ctx), context.DeadlineExceeded)
}
