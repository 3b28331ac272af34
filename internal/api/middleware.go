package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/tripline-ai/replycache/pkg/observability"
)

const requestIDKey = "request_id"

// RequestID attaches a request ID to every request, generating one
// when the client did not send X-Request-ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// RequestLogger logs one line per completed request.
func RequestLogger(logger observability.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request completed", map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  c.GetString(requestIDKey),
		})
	}
}

// RateLimiterConfig configures the per-client token buckets.
type RateLimiterConfig struct {
	GlobalRPS       int           // requests per second across all clients
	GlobalBurst     int
	ClientRPS       int           // requests per second per client
	ClientBurst     int
	CleanupInterval time.Duration // how often stale client limiters are dropped
	MaxAge          time.Duration // idle time before a client limiter is stale
}

// DefaultRateLimiterConfig returns limits suited to chat traffic.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GlobalRPS:       1000,
		GlobalBurst:     2000,
		ClientRPS:       50,
		ClientBurst:     100,
		CleanupInterval: 5 * time.Minute,
		MaxAge:          time.Hour,
	}
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter applies a global token bucket plus one bucket per
// client (X-User-ID header, falling back to client IP). Stale client
// buckets are dropped by a background sweep.
type RateLimiter struct {
	config   RateLimiterConfig
	global   *rate.Limiter
	mu       sync.Mutex
	clients  map[string]*clientLimiter
	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a RateLimiter and starts its cleanup sweep.
// Callers must Close it on shutdown.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:  config,
		global:  rate.NewLimiter(rate.Limit(config.GlobalRPS), config.GlobalBurst),
		clients: make(map[string]*clientLimiter),
		stop:    make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Allow reports whether a request from the given client may proceed.
func (rl *RateLimiter) Allow(clientID string) bool {
	if !rl.global.Allow() {
		return false
	}

	rl.mu.Lock()
	cl, ok := rl.clients[clientID]
	if !ok {
		cl = &clientLimiter{
			limiter: rate.NewLimiter(rate.Limit(rl.config.ClientRPS), rl.config.ClientBurst),
		}
		rl.clients[clientID] = cl
	}
	cl.lastAccess = time.Now()
	rl.mu.Unlock()

	return cl.limiter.Allow()
}

// Close stops the cleanup sweep.
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-rl.config.MaxAge)
			rl.mu.Lock()
			for id, cl := range rl.clients {
				if cl.lastAccess.Before(cutoff) {
					delete(rl.clients, id)
				}
			}
			rl.mu.Unlock()
		case <-rl.stop:
			return
		}
	}
}

// RateLimit rejects requests over the limit with 429.
func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.GetHeader("X-User-ID")
		if clientID == "" {
			clientID = c.ClientIP()
		}
		if !rl.Allow(clientID) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
