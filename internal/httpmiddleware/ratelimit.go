package httpmiddleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// TokenBucket is an in-memory per-client rate limiter.
type TokenBucket struct {
	capacity float64
	perSec   float64
	idle     time.Duration
	now      func() time.Time

	mu    sync.Mutex
	state map[string]*bucket
	swept time.Time
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewTokenBucket allows bursts of capacity and refills perMinute tokens a
// minute. Buckets idle for longer than a full refill are dropped.
func NewTokenBucket(capacity, perMinute int) *TokenBucket {
	if perMinute <= 0 {
		perMinute = 60
	}
	if capacity <= 0 {
		capacity = perMinute
	}
	perSec := float64(perMinute) / 60
	return &TokenBucket{
		capacity: float64(capacity),
		perSec:   perSec,
		idle:     time.Duration(float64(capacity)/perSec*float64(time.Second)) + time.Minute,
		now:      time.Now,
		state:    make(map[string]*bucket),
	}
}

// GinMiddleware returns gin handler enforcing per-IP limits.
func (l *TokenBucket) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		if !l.Allow(ip) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "too many requests, slow down"})
			return
		}
		c.Next()
	}
}

// Allow takes one token from key's bucket.
func (l *TokenBucket) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.sweep(now)
	b, ok := l.state[key]
	if !ok {
		l.state[key] = &bucket{tokens: l.capacity - 1, last: now}
		return true
	}
	b.tokens += now.Sub(b.last).Seconds() * l.perSec
	if b.tokens > l.capacity {
		b.tokens = l.capacity
	}
	b.last = now
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (l *TokenBucket) sweep(now time.Time) {
	if now.Sub(l.swept) < l.idle {
		return
	}
	l.swept = now
	for k, b := range l.state {
		if now.Sub(b.last) > l.idle {
			delete(l.state, k)
		}
	}
}
