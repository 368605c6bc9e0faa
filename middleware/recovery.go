package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/wz7jpprpd8-debug/habits-bot/utils"
	"go.uber.org/zap"

	"net/http"
)

func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				utils.Logger.Error("panic_recovered", zap.Any("panic", r))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
				c.Abort()
			}
		}()
		c.Next()
	}
}
