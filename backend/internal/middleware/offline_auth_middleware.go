package middleware

import "github.com/gin-gonic/gin"

// OfflineAuthMiddleware 本地演示模式下注入固定身份，跳过 JWT 校验。
type OfflineAuthMiddleware struct {
	userID  uint
	isAdmin bool
}

// NewOfflineAuthMiddleware 构造本地模式鉴权中间件。
func NewOfflineAuthMiddleware(userID uint, isAdmin bool) *OfflineAuthMiddleware {
	return &OfflineAuthMiddleware{
		userID:  userID,
		isAdmin: isAdmin,
	}
}

// Handle 将固定用户写入上下文。
func (m *OfflineAuthMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextUserID, m.userID)
		c.Set(ContextIsAdmin, m.isAdmin)
		c.Next()
	}
}
