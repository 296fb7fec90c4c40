package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/opsdesk/helpdesk/caching"
	"github.com/opsdesk/helpdesk/logger"
	"github.com/opsdesk/helpdesk/web/entity"
	"github.com/opsdesk/helpdesk/web/locale"

	"github.com/gin-gonic/gin"
)

// RateLimitConfig configures rate limiting
type RateLimitConfig struct {
	RequestsPerMinute int
	KeyFunc           func(c *gin.Context) string
}

// DefaultRateLimitConfig keys by client IP.
func DefaultRateLimitConfig(perMinute int) RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: perMinute,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	}
}

// RateLimitMiddleware throttles POSTs per key and path. A non-positive limit
// disables it.
func RateLimitMiddleware(store *caching.Cache, config RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.RequestsPerMinute <= 0 || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		key := config.KeyFunc(c)
		rateLimitKey := "ratelimit:" + key + ":" + c.FullPath()

		count, err := store.Hit(rateLimitKey, time.Minute)
		if err != nil {
			logger.Warning("Rate limit increment failed:", err)
			c.Next()
			return
		}

		remaining := config.RequestsPerMinute - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerMinute))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if count > config.RequestsPerMinute {
			logger.Warningf("Rate limit exceeded for %s on %s (count: %d)", key, c.FullPath(), count)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, entity.Msg{
				Success: false,
				Msg:     locale.I18n(c, "errors.rateLimited"),
			})
			return
		}
		c.Next()
	}
}
