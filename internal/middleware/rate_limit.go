package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/pageza/recipesnap/backend/internal/logging"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for counter keys
	KeyPrefix string
}

// windowCounter increments a counter that expires one window after now
type windowCounter interface {
	Incr(ctx context.Context, key string, now time.Time, window time.Duration) (int64, error)
}

// RateLimiter is a fixed-window limiter keyed by session id or client IP
type RateLimiter struct {
	counter windowCounter
	config  RateLimitConfig
	now     func() time.Time
}

// NewRateLimiter creates a rate limiter backed by Redis
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		counter: &redisCounter{redis: redisClient},
		config:  config,
		now:     time.Now,
	}
}

// NewMemoryRateLimiter creates a rate limiter that counts in process memory
func NewMemoryRateLimiter(config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		counter: newMemoryCounter(),
		config:  config,
		now:     time.Now,
	}
}

// NewSuggestionRateLimiter limits suggestion requests to limit per hour
func NewSuggestionRateLimiter(redisClient *redis.Client, limit int) *RateLimiter {
	config := RateLimitConfig{
		Window:    time.Hour,
		Limit:     limit,
		KeyPrefix: "recipesnap:rate_limit:suggestions",
	}
	if redisClient == nil {
		return NewMemoryRateLimiter(config)
	}
	return NewRateLimiter(redisClient, config)
}

// RateLimitMiddleware returns a Gin middleware that enforces rate limiting
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := SessionID(c)
		if subject == "" {
			subject = "ip:" + c.ClientIP()
		}

		allowed, remaining, resetTime, err := rl.IsAllowed(c.Request.Context(), subject)
		if err != nil {
			// Log error but don't fail the request
			logging.FromContext(c.Request.Context()).Warn("rate limit check failed", "error", err)
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			retryAfter := int(resetTime.Sub(rl.now()).Seconds())
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"message":     fmt.Sprintf("You have exceeded the rate limit of %d requests per %v", rl.config.Limit, rl.config.Window),
				"retry_after": retryAfter,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// IsAllowed counts a request from subject.
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, subject string) (bool, int, time.Time, error) {
	now := rl.now()
	windowStart := now.Truncate(rl.config.Window)
	key := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, subject, windowStart.Unix())

	count, err := rl.counter.Incr(ctx, key, now, rl.config.Window)
	if err != nil {
		return false, 0, time.Time{}, err
	}

	remaining := rl.config.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	resetTime := windowStart.Add(rl.config.Window)
	allowed := int(count) <= rl.config.Limit

	return allowed, remaining, resetTime, nil
}

type redisCounter struct {
	redis *redis.Client
}

func (r *redisCounter) Incr(ctx context.Context, key string, _ time.Time, window time.Duration) (int64, error) {
	// Use Redis pipeline for atomic operations
	pipe := r.redis.TxPipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incrCmd.Val(), nil
}

type memoryCounter struct {
	mu      sync.Mutex
	counts  map[string]int64
	expires map[string]time.Time
}

func newMemoryCounter() *memoryCounter {
	return &memoryCounter{
		counts:  make(map[string]int64),
		expires: make(map[string]time.Time),
	}
}

func (m *memoryCounter) Incr(ctx context.Context, key string, now time.Time, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, exp := range m.expires {
		if !exp.After(now) {
			delete(m.counts, k)
			delete(m.expires, k)
		}
	}

	m.counts[key]++
	m.expires[key] = now.Add(window)
	return m.counts[key], nil
}
