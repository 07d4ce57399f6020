/*
 * @Author: NEFU AB-IN
 * @Date: 2026-03-02 17:48:15
 * @FilePath: \employee-portal\backend\internal\middleware\auth_middleware.go
 * @LastEditTime: 2026-03-05 10:21:36
 */
package middleware

import (
	"errors"
	"net/http"
	"strings"

	response "employee-portal/backend/internal/infra/common"
	"employee-portal/backend/internal/infra/token"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// 写入 gin.Context 的键，handler 通过同名键读取当前身份。
const (
	ContextUserID  = "userID"
	ContextIsAdmin = "isAdmin"
	ContextClaims  = "claims"
)

// AuthMiddleware 校验 Bearer 访问令牌，并把 userID / isAdmin 写入上下文。
type AuthMiddleware struct {
	secret []byte
}

// NewAuthMiddleware 创建鉴权中间件实例，注入 JWT 签名密钥。
func NewAuthMiddleware(secret string) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(secret)}
}

// Handle 返回 Gin 中间件。刷新令牌不能用于访问接口。
func (m *AuthMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "bearer ") {
			response.Abort(c, http.StatusUnauthorized, response.ErrUnauthorized, "missing authorization header")
			return
		}

		claims, err := token.ParseClaims(strings.TrimSpace(authHeader[7:]), m.secret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				response.Abort(c, http.StatusUnauthorized, response.ErrTokenExpired, "token expired")
				return
			}
			response.Abort(c, http.StatusUnauthorized, response.ErrTokenInvalid, "invalid token")
			return
		}
		if tType, _ := claims[token.ClaimTokenType].(string); tType != token.TokenTypeAccess {
			response.Abort(c, http.StatusUnauthorized, response.ErrTokenInvalid, "access token required")
			return
		}
		userID, err := token.SubjectID(claims)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, response.ErrTokenInvalid, "invalid token subject")
			return
		}
		admin, _ := claims[token.ClaimIsAdmin].(bool)

		c.Set(ContextClaims, claims)
		c.Set(ContextUserID, userID)
		c.Set(ContextIsAdmin, admin)
		c.Next()
	}
}

// RequireAdmin 必须挂在鉴权中间件之后。
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if admin, _ := c.Get(ContextIsAdmin); admin != true {
			response.Abort(c, http.StatusForbidden, response.ErrForbidden, "admin privilege required")
			return
		}
		c.Next()
	}
}
