package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripline-ai/replycache/pkg/cache"
	"github.com/tripline-ai/replycache/pkg/observability"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		GlobalRPS:       1000,
		GlobalBurst:     1000,
		ClientRPS:       1,
		ClientBurst:     2,
		CleanupInterval: time.Minute,
		MaxAge:          time.Hour,
	})
	defer rl.Close()

	assert.True(t, rl.Allow("u1"))
	assert.True(t, rl.Allow("u1"))
	assert.False(t, rl.Allow("u1"), "burst of 2 exhausted")

	// Separate clients get separate buckets.
	assert.True(t, rl.Allow("u2"))
}

func TestRateLimiter_GlobalBucket(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		GlobalRPS:       1,
		GlobalBurst:     1,
		ClientRPS:       100,
		ClientBurst:     100,
		CleanupInterval: time.Minute,
		MaxAge:          time.Hour,
	})
	defer rl.Close()

	assert.True(t, rl.Allow("u1"))
	assert.False(t, rl.Allow("u2"), "global bucket exhausted")
}

func TestRateLimiter_CloseIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(DefaultRateLimiterConfig())
	rl.Close()
	rl.Close()
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := cache.DefaultConfig()
	cfg.EnableMetrics = false
	c, err := cache.New(cfg, observability.NewNoopLogger())
	require.NoError(t, err)

	rl := NewRateLimiter(RateLimiterConfig{
		GlobalRPS:       1000,
		GlobalBurst:     1000,
		ClientRPS:       1,
		ClientBurst:     1,
		CleanupInterval: time.Minute,
		MaxAge:          time.Hour,
	})
	defer rl.Close()

	srv := NewServer(c, observability.NewNoopLogger())
	ts := httptest.NewServer(srv.Router(rl))
	defer ts.Close()

	get := func(userID string) int {
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
		require.NoError(t, err)
		req.Header.Set("X-User-ID", userID)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, get("u1"))
	assert.Equal(t, http.StatusTooManyRequests, get("u1"))
	assert.Equal(t, http.StatusOK, get("u2"))
}
