package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type clientInfo struct {
	start time.Time
	count int
}

// windowCounter is a process-local fixed-window counter keyed by any string.
type windowCounter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	clients map[string]*clientInfo
	swept   time.Time
	now     func() time.Time
}

func newWindowCounter(max int, window time.Duration) *windowCounter {
	return &windowCounter{
		max:     max,
		window:  window,
		clients: make(map[string]*clientInfo),
		now:     time.Now,
	}
}

// allow records one hit for key and reports whether it is within the limit.
func (w *windowCounter) allow(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	if now.Sub(w.swept) > w.window {
		for k, ci := range w.clients {
			if now.Sub(ci.start) > w.window {
				delete(w.clients, k)
			}
		}
		w.swept = now
	}

	ci, ok := w.clients[key]
	if !ok || now.Sub(ci.start) > w.window {
		w.clients[key] = &clientInfo{start: now, count: 1}
		return true
	}
	ci.count++
	return ci.count <= w.max
}

// SimpleRateLimit blocks clients that send more than maxRequests per window.
func SimpleRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	counter := newWindowCounter(maxRequests, window)
	return func(c *gin.Context) {
		if !counter.allow(c.ClientIP()) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
