package middleware

import (
	"time"

	"byte_battle/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger gives every request a logger tagged with its id and route.
// Handlers read it back with logger.FromContext.
func RequestLogger() gin.HandlerFunc {
	base := logger.Component("http")
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)

		l := base.With("request_id", id, "method", c.Request.Method, "path", c.Request.URL.Path)
		c.Request = c.Request.WithContext(logger.IntoContext(c.Request.Context(), l))

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		args := []any{"status", status, "duration", time.Since(start)}
		if status >= 500 {
			l.Error("request failed", args...)
			return
		}
		l.Debug("request served", args...)
	}
}
