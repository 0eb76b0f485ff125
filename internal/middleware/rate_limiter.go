package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/Adjelson/caixa-facil-Adjelson/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// limiter is a per-IP sliding-window counter. Each middleware instance owns
// its own bucket map, so the login and public price-check limits never share
// a window.
type limiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	buckets map[string]*bucket
}

type bucket struct {
	count     int
	windowEnd time.Time
}

var (
	limitersMu sync.Mutex
	limiters   []*limiter
)

func newLimiter(limit int, window time.Duration) *limiter {
	l := &limiter{limit: limit, window: window, buckets: make(map[string]*bucket)}
	limitersMu.Lock()
	limiters = append(limiters, l)
	limitersMu.Unlock()
	return l
}

// allow counts a hit for ip and reports whether it stays within the limit,
// along with the end of the current window for Retry-After.
func (l *limiter) allow(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, ok := l.buckets[ip]
	if !ok || now.After(b.windowEnd) {
		b = &bucket{windowEnd: now.Add(l.window)}
		l.buckets[ip] = b
	}
	b.count++
	return b.count <= l.limit, b.windowEnd
}

func (l *limiter) purge(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for ip, b := range l.buckets {
		if now.After(b.windowEnd) {
			delete(l.buckets, ip)
			n++
		}
	}
	return n
}

// LoginRateLimiter limits login attempts per IP to limit per minute.
func LoginRateLimiter(limit int) gin.HandlerFunc {
	l := newLimiter(limit, time.Minute)
	return func(c *gin.Context) {
		if ok, _ := l.allow(c.ClientIP()); !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				apierror.New("too many login attempts, retry in 1 minute"))
			return
		}
		c.Next()
	}
}

// RateLimiter limits a route to limit requests per window per IP.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	l := newLimiter(limit, window)
	return func(c *gin.Context) {
		ok, windowEnd := l.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", windowEnd.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				apierror.New("too many requests, retry shortly"))
			return
		}
		c.Next()
	}
}

// Expired buckets are swept periodically so IPs that never return do not
// grow the maps forever.

const purgeInterval = 5 * time.Minute

func init() { go purgeLoop() }

func purgeLoop() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()

		limitersMu.Lock()
		active := make([]*limiter, len(limiters))
		copy(active, limiters)
		limitersMu.Unlock()

		purged := 0
		for _, l := range active {
			purged += l.purge(now)
		}
		if purged > 0 {
			log.Debug().Int("buckets_purged", purged).Msg("rate limiter buckets purged")
		}
	}
}
