/*
 * @Author: NEFU AB-IN
 * @Date: 2026-03-02 20:42:09
 * @FilePath: \employee-portal\backend\internal\handler\auth_handler.go
 * @LastEditTime: 2026-03-06 11:58:23
 */
package handler

import (
	"net/http"

	response "employee-portal/backend/internal/infra/common"
	appLogger "employee-portal/backend/internal/infra/logger"
	"employee-portal/backend/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler 负责对接 Gin，处理鉴权相关的 HTTP 请求。
type AuthHandler struct {
	service *auth.Service
	logger  *zap.SugaredLogger
}

// NewAuthHandler 构造鉴权 handler。
func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{service: service, logger: appLogger.Component("auth.handler")}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

var authErrorMappings = []response.ErrorMapping{
	{Target: auth.ErrInvalidInput, Status: http.StatusBadRequest, Code: response.ErrValidation},
	{Target: auth.ErrEmailTaken, Status: http.StatusConflict, Code: response.ErrConflict},
	{Target: auth.ErrInvalidLogin, Status: http.StatusUnauthorized, Code: response.ErrInvalidCredentials},
	{Target: auth.ErrUserNotFound, Status: http.StatusNotFound, Code: response.ErrNotFound},
	{Target: auth.ErrRefreshTokenRequired, Status: http.StatusBadRequest, Code: response.ErrBadRequest},
	{Target: auth.ErrRefreshTokenInvalid, Status: http.StatusUnauthorized, Code: response.ErrTokenInvalid},
	{Target: auth.ErrRefreshTokenRevoked, Status: http.StatusUnauthorized, Code: response.ErrTokenInvalid},
	{Target: auth.ErrRefreshTokenExpired, Status: http.StatusUnauthorized, Code: response.ErrTokenExpired},
}

// Register 注册新账号并直接返回令牌。
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, err.Error(), nil)
		return
	}

	user, tokens, err := h.service.Register(c.Request.Context(), auth.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.fail(c, "register", err)
		return
	}

	response.Created(c, gin.H{"user": user, "tokens": tokens}, nil)
}

// Login 校验凭证并返回令牌。
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, err.Error(), nil)
		return
	}

	user, tokens, err := h.service.Login(c.Request.Context(), auth.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.fail(c, "login", err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user, "tokens": tokens}, nil)
}

// Refresh 轮换刷新令牌。
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, err.Error(), nil)
		return
	}

	tokens, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.fail(c, "refresh", err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tokens": tokens}, nil)
}

// Logout 吊销刷新令牌。
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, err.Error(), nil)
		return
	}

	if err := h.service.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		h.fail(c, "logout", err)
		return
	}
	response.NoContent(c)
}

// Me 返回当前登录用户。
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "missing user id", nil)
		return
	}
	user, err := h.service.Me(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, "me", err)
		return
	}
	response.Success(c, http.StatusOK, user, nil)
}

func (h *AuthHandler) fail(c *gin.Context, operation string, err error) {
	logServiceError(h.logger.With("operation", operation), err, authErrorMappings)
	response.FailWithError(c, err, authErrorMappings...)
}
