package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/FelipeGerardo/centenoloyalty/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// rateEntry tracks request counts per IP within a sliding window.
type rateEntry struct {
	count     int
	windowEnd time.Time
	mu        sync.Mutex
}

// limiter is a per-IP sliding-window counter shared by the general API
// limiter and the stricter login limiter.
type limiter struct {
	mu      sync.Mutex
	entries map[string]*rateEntry
	limit   int
	window  time.Duration
	message string
}

func newLimiter(limit int, window time.Duration, message string) *limiter {
	return &limiter{
		entries: make(map[string]*rateEntry),
		limit:   limit,
		window:  window,
		message: message,
	}
}

func (l *limiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		l.mu.Lock()
		entry, exists := l.entries[ip]
		if !exists {
			entry = &rateEntry{}
			l.entries[ip] = entry
		}
		l.mu.Unlock()

		entry.mu.Lock()
		defer entry.mu.Unlock()

		now := time.Now()
		if now.After(entry.windowEnd) {
			entry.count = 0
			entry.windowEnd = now.Add(l.window)
		}

		entry.count++
		if entry.count > l.limit {
			c.Header("Retry-After", entry.windowEnd.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.message))
			return
		}
		c.Next()
	}
}

// purge drops expired entries so IPs that never return do not accumulate.
func (l *limiter) purge(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	purged := 0
	for ip, entry := range l.entries {
		entry.mu.Lock()
		if now.After(entry.windowEnd) {
			delete(l.entries, ip)
			purged++
		}
		entry.mu.Unlock()
	}
	return purged
}

var (
	apiLimiter   *limiter
	loginLimiter = newLimiter(20, time.Minute, "Demasiados intentos de login. Intente en 1 minuto.")
	limiterOnce  sync.Once
)

// RateLimiter returns the general-purpose per-IP limiter.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	limiterOnce.Do(func() {
		apiLimiter = newLimiter(limit, window, "Demasiadas solicitudes. Intente nuevamente en un momento.")
		go purgeLoop()
	})
	return apiLimiter.middleware()
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return loginLimiter.middleware()
}

const purgeInterval = 5 * time.Minute

func purgeLoop() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		purgedAPI := apiLimiter.purge(now)
		purgedLogin := loginLimiter.purge(now)
		if purgedAPI > 0 || purgedLogin > 0 {
			log.Debug().
				Int("api_entries_purged", purgedAPI).
				Int("login_entries_purged", purgedLogin).
				Msg("rate limiter maps purged")
		}
	}
}
