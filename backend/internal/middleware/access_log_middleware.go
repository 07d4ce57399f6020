package middleware

import (
	"time"

	appLogger "employee-portal/backend/internal/infra/logger"

	"github.com/gin-gonic/gin"
)

// AccessLog 每个请求结束后输出一行结构化日志。
func AccessLog() gin.HandlerFunc {
	logger := appLogger.Component("http.access")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []any{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if userID, ok := c.Get(ContextUserID); ok {
			fields = append(fields, "user_id", userID)
		}
		if c.Writer.Status() >= 500 {
			logger.Errorw("request completed", fields...)
			return
		}
		logger.Infow("request completed", fields...)
	}
}
