package middleware

import (
	"net/http"
	"sync"
	"time"

	"sysmanager/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// rateEntry tracks request counts per client IP within a fixed window.
type rateEntry struct {
	count     int
	windowEnd time.Time
}

// RateLimiter caps requests per client IP. Expired entries are purged lazily.
type RateLimiter struct {
	limit  int
	window time.Duration

	mu        sync.Mutex
	entries   map[string]*rateEntry
	lastPurge time.Time
	now       func() time.Time
}

const purgeInterval = 5 * time.Minute

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		entries: make(map[string]*rateEntry),
		now:     time.Now,
	}
}

// Allow records one request from ip and reports whether it is within the limit.
func (l *RateLimiter) Allow(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastPurge) > purgeInterval {
		l.purge(now)
	}

	e, ok := l.entries[ip]
	if !ok {
		e = &rateEntry{}
		l.entries[ip] = e
	}
	if now.After(e.windowEnd) {
		e.count = 0
		e.windowEnd = now.Add(l.window)
	}
	e.count++
	return e.count <= l.limit, e.windowEnd
}

func (l *RateLimiter) purge(now time.Time) {
	purged := 0
	for ip, e := range l.entries {
		if now.After(e.windowEnd) {
			delete(l.entries, ip)
			purged++
		}
	}
	l.lastPurge = now
	if purged > 0 {
		log.Debug().Int("purged", purged).Int("remaining", len(l.entries)).Msg("rate limiter entries purged")
	}
}

// Handler is the gin middleware; a limit of zero or less disables it.
func (l *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.limit <= 0 {
			c.Next()
			return
		}
		ok, until := l.Allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", until.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Prea multe cereri. Încercați din nou în câteva momente."))
			return
		}
		c.Next()
	}
}
