package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// KeyFunc extracts the rate-limiting bucket key for a request.
type KeyFunc func(c *gin.Context) string

// KeyByUserOrIP keys the limiter by the authenticated user when present
// (X-User-ID header) and falls back to the client IP otherwise.
func KeyByUserOrIP(c *gin.Context) string {
	if uid := c.GetHeader("X-User-ID"); uid != "" {
		return "u:" + uid
	}
	return "ip:" + c.ClientIP()
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces a per-key token bucket of rps requests per second
// with the given burst. Stale buckets are evicted after ttl of inactivity.
//
// Requests that exceed the bucket receive 429 with a Retry-After hint.
func RateLimiter(rps rate.Limit, burst int, ttl time.Duration, key KeyFunc) gin.HandlerFunc {
	if key == nil {
		key = KeyByUserOrIP
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	var (
		mu       sync.Mutex
		buckets  = make(map[string]*limiterEntry)
		lastScan time.Time
	)

	get := func(k string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		now := time.Now()
		// Opportunistic eviction, at most once per ttl.
		if now.Sub(lastScan) > ttl {
			for k, e := range buckets {
				if now.Sub(e.lastSeen) > ttl {
					delete(buckets, k)
				}
			}
			lastScan = now
		}

		e, ok := buckets[k]
		if !ok {
			e = &limiterEntry{lim: rate.NewLimiter(rps, burst)}
			buckets[k] = e
		}
		e.lastSeen = now
		return e.lim
	}

	return func(c *gin.Context) {
		if !get(key(c)).Allow() {
			rid, _ := c.Get(requestIDKey)
			c.Header("Retry-After", "1")
			// Same code string as handlers.ErrCodeRateLimited; middleware
			// cannot import handlers without a cycle.
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"request_id": asString(rid),
				"code":       "too_many_requests",
				"message":    "too many requests",
			})
			return
		}
		c.Next()
	}
}
