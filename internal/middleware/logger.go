package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rmatrack/backend/internal/logger"
)

// RequestLogger logs every HTTP request with latency and the acting user.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)

		userID := uint(0)
		if id, exists := c.Get("userID"); exists {
			if u, ok := id.(uint); ok {
				userID = u
			}
		}

		logger.Info("HTTP request", map[string]interface{}{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": latency.String(),
			"ip":      c.ClientIP(),
			"user_id": userID,
		})
	}
}
