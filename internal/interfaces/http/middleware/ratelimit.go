package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/turtacn/MarketScope-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/MarketScope-Intelligence/pkg/errors"
)

// RateLimitConfig configures RateLimit.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	// KeyFunc picks the bucket of a request; the client IP when nil.
	KeyFunc   func(c *gin.Context) string
	SkipPaths []string
	// IdleTTL drops buckets unused for this long.
	IdleTTL time.Duration
}

// DefaultRateLimitConfig allows 10 rps per client with bursts of 20.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 10,
		BurstSize:         20,
		SkipPaths:         []string{"/healthz", "/readyz", "/metrics"},
		IdleTTL:           5 * time.Minute,
	}
}

type limiterEntry struct {
	limiter *rate.Limiter
	seen    time.Time
}

// KeyedLimiter holds one token bucket per key.
type KeyedLimiter struct {
	limit rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time

	mu        sync.Mutex
	entries   map[string]*limiterEntry
	lastSweep time.Time
}

// NewKeyedLimiter creates a limiter.  Idle buckets are swept lazily.
func NewKeyedLimiter(rps float64, burst int, idle time.Duration) *KeyedLimiter {
	if burst < 1 {
		burst = 1
	}
	if idle <= 0 {
		idle = 5 * time.Minute
	}
	return &KeyedLimiter{
		limit:     rate.Limit(rps),
		burst:     burst,
		idle:      idle,
		now:       time.Now,
		entries:   make(map[string]*limiterEntry),
		lastSweep: time.Now(),
	}
}

// Allow takes one token from key's bucket.
func (l *KeyedLimiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	if now.Sub(l.lastSweep) >= l.idle {
		for k, e := range l.entries {
			if now.Sub(e.seen) >= l.idle {
				delete(l.entries, k)
			}
		}
		l.lastSweep = now
	}
	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.seen = now
	l.mu.Unlock()

	return e.limiter.AllowN(now, 1)
}

// Len is the number of live buckets.
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// RateLimit rejects requests over the limit with 429 and Retry-After.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	limiter := NewKeyedLimiter(cfg.RequestsPerSecond, cfg.BurstSize, cfg.IdleTTL)
	return RateLimitWith(limiter, cfg)
}

// RateLimitWith uses an existing limiter.
func RateLimitWith(limiter *KeyedLimiter, cfg RateLimitConfig) gin.HandlerFunc {
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	retryAfter := "1"
	if cfg.RequestsPerSecond > 0 && cfg.RequestsPerSecond < 1 {
		retryAfter = strconv.Itoa(int(1/cfg.RequestsPerSecond + 0.5))
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}
		if !limiter.Allow(keyFunc(c)) {
			c.Header("Retry-After", retryAfter)
			handlers.WriteError(c, errors.RateLimit("rate limit exceeded"))
			return
		}
		c.Next()
	}
}

//Personal.AI order the ending
