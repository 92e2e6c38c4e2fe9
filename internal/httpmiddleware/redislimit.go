package httpmiddleware

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RedisFixedWindow is a per-IP fixed-window rate limiter shared across API
// replicas. Fails open when Redis is unavailable.
type RedisFixedWindow struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRedisFixedWindow creates a limiter allowing perMinute requests per IP.
func NewRedisFixedWindow(client *redis.Client, perMinute int) *RedisFixedWindow {
	return &RedisFixedWindow{client: client, limit: perMinute, window: time.Minute}
}

// GinMiddleware returns gin handler enforcing per-IP limits.
func (l *RedisFixedWindow) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		windowStart := time.Now().Truncate(l.window).Unix()
		key := "ratelimit:" + ip + ":" + strconv.FormatInt(windowStart, 10)

		ctx := c.Request.Context()
		count, err := l.client.Incr(ctx, key).Result()
		if err != nil {
			log.Printf("rate limiter redis error, allowing request: %v", err)
			c.Next()
			return
		}
		if count == 1 {
			l.client.Expire(ctx, key, l.window)
		}
		if count > int64(l.limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "rate limit"})
			return
		}
		c.Next()
	}
}
