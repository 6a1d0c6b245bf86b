package middleware

import (
	"net/http"
	"sync"
	"time"

	"task_manager/internal/dto"

	"github.com/gin-gonic/gin"
)

type clientInfo struct {
	start time.Time
	count int
}

// memoryLimiter keeps one fixed window per client ip. Expired windows are
// swept at most once per window so the map only holds recently seen clients.
type memoryLimiter struct {
	mu        sync.Mutex
	max       int
	window    time.Duration
	clients   map[string]*clientInfo
	lastSweep time.Time
}

func newMemoryLimiter(maxRequests int, window time.Duration) *memoryLimiter {
	return &memoryLimiter{
		max:       maxRequests,
		window:    window,
		clients:   make(map[string]*clientInfo),
		lastSweep: time.Now(),
	}
}

func (l *memoryLimiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > l.window {
		for k, ci := range l.clients {
			if now.Sub(ci.start) > l.window {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}

	ci, ok := l.clients[ip]
	if !ok || now.Sub(ci.start) > l.window {
		ci = &clientInfo{start: now}
		l.clients[ip] = ci
	}
	ci.count++
	return ci.count <= l.max
}

func (l *memoryLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// SimpleRateLimit is the in-process fixed-window limiter used when Redis is
// not configured. State is per middleware instance.
func SimpleRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	limiter := newMemoryLimiter(maxRequests, window)

	return func(c *gin.Context) {
		if maxRequests <= 0 {
			c.Next()
			return
		}

		if !limiter.allow(c.ClientIP(), time.Now()) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.DetailResponse{Detail: "rate limit exceeded"})
			return
		}

		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
