package middleware

import (
	"fmt"      // Key and header formatting
	"net/http" // HTTP status codes
	"strconv"  // Header values
	"time"     // Window arithmetic

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Structured logging
)

// RateLimiter allows limit requests per client IP and window, counted in Redis
// under rate_limit:<scope>:<ip>. A nil client or a Redis failure lets requests
// through.
func RateLimiter(rdb *redis.Client, scope string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next() // Rate limiting disabled
			return
		}
		ctx := c.Request.Context()
		key := fmt.Sprintf("rate_limit:%s:%s", scope, c.ClientIP())

		// Count the request and read the remaining window
		pipe := rdb.TxPipeline()
		incr := pipe.Incr(ctx, key)
		ttl := pipe.TTL(ctx, key)
		if _, err := pipe.Exec(ctx); err != nil {
			logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Rate limiter unavailable")
			c.Next()
			return
		}
		retry := ttl.Val()
		// First hit of a window, or a key left without expiry
		if retry < 0 {
			if err := rdb.Expire(ctx, key, window).Err(); err != nil {
				logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Rate limiter failed to set window")
			}
			retry = window
		}

		count := int(incr.Val())
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		if count > limit {
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(retry).Unix(), 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many requests",
				"retry_after": retry.Seconds(),
			})
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limit-count))
		c.Next()
	}
}
