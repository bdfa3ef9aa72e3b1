package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
	CleanupInterval   time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps a token bucket per client IP.
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
}

func NewIPRateLimiter(config RateLimitConfig) *IPRateLimiter {
	rpm := config.RequestsPerMinute
	if rpm <= 0 {
		rpm = 100
	}
	burst := config.Burst
	if burst <= 0 {
		burst = 1
	}
	idle := config.CleanupInterval
	if idle <= 0 {
		idle = 10 * time.Minute
	}

	return &IPRateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(time.Minute / time.Duration(rpm)),
		burst:    burst,
		idle:     idle,
		now:      time.Now,
	}
}

func (l *IPRateLimiter) Allow(ip string) bool {
	now := l.now()

	l.mu.Lock()
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	l.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

// Cleanup forgets clients idle for longer than the cleanup interval.
func (l *IPRateLimiter) Cleanup() {
	cutoff := l.now().Add(-l.idle)

	l.mu.Lock()
	for ip, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, ip)
		}
	}
	l.mu.Unlock()
}

// Run calls Cleanup every interval until ctx is done.
func (l *IPRateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(l.idle)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Cleanup()
		}
	}
}

func (l *IPRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

func RateLimit(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
