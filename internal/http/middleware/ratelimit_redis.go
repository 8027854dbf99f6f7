package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"byte_battle/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// InitRedisRateLimiter initializes a shared Redis client used by the middleware.
// If addr is empty or the ping fails, redisClient stays nil and the limiters
// fall back to process-local counting.
func InitRedisRateLimiter(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Component("ratelimit").Warn("redis unavailable, using in-memory rate limits", "addr", addr, "error", err)
		_ = client.Close()
		return nil
	}
	redisClient = client
	return client
}

// RateLimit limits by client IP, in Redis when configured, otherwise in memory.
func RateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	redisLimit := RedisRateLimit(maxRequests, window)
	localLimit := SimpleRateLimit(maxRequests, window)
	return func(c *gin.Context) {
		if redisClient == nil {
			localLimit(c)
			return
		}
		redisLimit(c)
	}
}

// RedisRateLimit implements a fixed-window rate limiter using Redis INCR/EXPIRE.
// key format: rl:<window_seconds>:<ip>
func RedisRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}
		key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP()
		if !allowRedis(c, key, maxRequests, window, c.FullPath()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// allowRedis counts one hit on key. Redis errors fail open.
func allowRedis(c *gin.Context, key string, max int, window time.Duration, endpoint string) bool {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
	defer cancel()

	val, err := redisClient.Incr(ctx, key).Result()
	if err != nil {
		c.Header("X-RateLimit-Error", "redis-error")
		return true
	}
	if val == 1 {
		redisClient.Expire(ctx, key, window)
	}

	c.Header("X-RateLimit-Limit", strconv.Itoa(max))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining(int64(max), val), 10))

	if val > int64(max) {
		RLBlocked.WithLabelValues(endpoint).Inc()
		return false
	}
	RLRequests.WithLabelValues(endpoint).Inc()
	return true
}

func remaining(max, used int64) int64 {
	if used >= max {
		return 0
	}
	return max - used
}
