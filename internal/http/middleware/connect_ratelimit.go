package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// ConnectRateLimit limits websocket connection attempts per user (not per IP).
// It needs WSAuth or JWT to have stored the user id first.
func ConnectRateLimit(maxConnects int, window time.Duration) gin.HandlerFunc {
	local := newWindowCounter(maxConnects, window)
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		uid := strconv.FormatInt(userID, 10)

		allowed := true
		if redisClient != nil {
			key := "ws_rl:" + uid + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
			allowed = allowRedis(c, key, maxConnects, window, "ws_connect")
		} else {
			allowed = local.allow(uid)
			if allowed {
				RLRequests.WithLabelValues("ws_connect").Inc()
			} else {
				RLBlocked.WithLabelValues("ws_connect").Inc()
			}
		}

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "too many connection attempts",
				"retry_after": int(window.Seconds()),
			})
			return
		}
		c.Next()
	}
}
