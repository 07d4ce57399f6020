/*
 * @Author: NEFU AB-IN
 * @Date: 2026-03-05 11:02:40
 * @FilePath: \employee-portal\backend\internal\middleware\rate_limit_middleware.go
 * @LastEditTime: 2026-03-05 11:02:40
 */
package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	response "employee-portal/backend/internal/infra/common"
	appLogger "employee-portal/backend/internal/infra/logger"
	"employee-portal/backend/internal/infra/ratelimit"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IPRateLimitConfig 按客户端 IP 的固定窗口限流参数。
type IPRateLimitConfig struct {
	Scope       string // 计数 key 的前缀，如 auth
	MaxRequests int    // 0 表示不限
	Window      time.Duration
}

// IPRateLimitMiddleware 保护登录/注册等接口免受暴力尝试。
// 计数存放在 Redis（多实例共享）或进程内存中，由注入的 Limiter 决定。
type IPRateLimitMiddleware struct {
	limiter ratelimit.Limiter
	cfg     IPRateLimitConfig
	logger  *zap.SugaredLogger
}

// NewIPRateLimitMiddleware 构造限流中间件。
func NewIPRateLimitMiddleware(limiter ratelimit.Limiter, cfg IPRateLimitConfig) *IPRateLimitMiddleware {
	if cfg.Scope == "" {
		cfg.Scope = "ip"
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return &IPRateLimitMiddleware{
		limiter: limiter,
		cfg:     cfg,
		logger:  appLogger.Component("middleware.ratelimit"),
	}
}

// Handle 超限返回 429 与 Retry-After；限流器出错时放行。
func (m *IPRateLimitMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.limiter == nil || m.cfg.MaxRequests <= 0 {
			c.Next()
			return
		}
		ip := strings.TrimSpace(c.ClientIP())
		if ip == "" {
			c.Next()
			return
		}

		key := fmt.Sprintf("%s:%s", m.cfg.Scope, ip)
		result, err := m.limiter.Allow(c.Request.Context(), key, m.cfg.MaxRequests, m.cfg.Window)
		if err != nil {
			m.logger.Warnw("rate limit check failed", "ip", ip, "error", err)
			c.Next()
			return
		}
		if !result.Allowed {
			if result.RetryAfter > 0 {
				c.Header("Retry-After", fmt.Sprintf("%d", int(result.RetryAfter.Seconds()+0.5)))
			}
			m.logger.Infow("request rate limited", "ip", ip, "scope", m.cfg.Scope, "path", c.FullPath())
			response.Abort(c, http.StatusTooManyRequests, response.ErrTooManyRequests, "request rate limited")
			return
		}
		c.Next()
	}
}
