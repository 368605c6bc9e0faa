package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wz7jpprpd8-debug/habits-bot/cache"
	"github.com/wz7jpprpd8-debug/habits-bot/utils"
	"go.uber.org/zap"
)

// RateLimitMiddleware — лимит запросов на IP через счётчик в Redis.
// Без Redis лимит не применяется.
func RateLimitMiddleware(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		key := fmt.Sprintf("rate_limit:%s", clientIP)

		count, err := cache.IncrementCounter(key, window)
		if err != nil {
			if err != cache.ErrDisabled {
				utils.Logger.Error("rate_limit_error", zap.Error(err))
			}
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", maxRequests))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", max(0, maxRequests-int(count))))

		if count > int64(maxRequests) {
			utils.Logger.Warn("rate_limit_exceeded",
				zap.String("ip", clientIP),
				zap.Int64("count", count),
			)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Слишком много запросов. Попробуйте позже.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
