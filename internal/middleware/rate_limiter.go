package middleware

import (
	"net/http"
	"sync"
	"time"

	"nelaglow/internal/apierror"

	"github.com/gin-gonic/gin"
)

// ipEntry tracks request counts per IP within a sliding window.
type ipEntry struct {
	count     int
	windowEnd time.Time
	mu        sync.Mutex
}

type ipLimiter struct {
	entries map[string]*ipEntry
	mu      sync.Mutex
	max     int
	window  time.Duration
	message string
}

func (l *ipLimiter) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		l.mu.Lock()
		entry, exists := l.entries[ip]
		if !exists {
			entry = &ipEntry{}
			l.entries[ip] = entry
		}
		l.mu.Unlock()

		entry.mu.Lock()
		now := time.Now()
		if now.After(entry.windowEnd) {
			entry.count = 0
			entry.windowEnd = now.Add(l.window)
		}
		entry.count++
		over := entry.count > l.max
		entry.mu.Unlock()

		if over {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.message))
			return
		}
		c.Next()
	}
}

// RateLimiter limits requests per IP across all routes.
func RateLimiter(max int, window time.Duration) gin.HandlerFunc {
	l := &ipLimiter{
		entries: make(map[string]*ipEntry),
		max:     max,
		window:  window,
		message: "Demasiadas solicitudes. Intente nuevamente en unos minutos.",
	}
	return l.handler()
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	l := &ipLimiter{
		entries: make(map[string]*ipEntry),
		max:     20,
		window:  time.Minute,
		message: "Demasiados intentos de login. Intente en 1 minuto.",
	}
	return l.handler()
}
