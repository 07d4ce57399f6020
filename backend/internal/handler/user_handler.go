/*
 * @Author: NEFU AB-IN
 * @Date: 2026-03-03 10:18:26
 * @FilePath: \employee-portal\backend\internal\handler\user_handler.go
 * @LastEditTime: 2026-03-06 12:20:06
 */
package handler

import (
	"net/http"
	"strings"

	response "employee-portal/backend/internal/infra/common"
	appLogger "employee-portal/backend/internal/infra/logger"
	"employee-portal/backend/internal/middleware"
	"employee-portal/backend/internal/service/auth"
	usersvc "employee-portal/backend/internal/service/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler 负责用户资料相关的 HTTP 入口。
type UserHandler struct {
	service *usersvc.Service
	logger  *zap.SugaredLogger
}

// NewUserHandler 构造用户 handler。
func NewUserHandler(service *usersvc.Service) *UserHandler {
	return &UserHandler{service: service, logger: appLogger.Component("user.handler")}
}

var userErrorMappings = []response.ErrorMapping{
	{Target: usersvc.ErrUserNotFound, Status: http.StatusNotFound, Code: response.ErrNotFound},
	{Target: usersvc.ErrPasswordMismatch, Status: http.StatusBadRequest, Code: response.ErrInvalidCredentials},
	{Target: auth.ErrEmailTaken, Status: http.StatusConflict, Code: response.ErrConflict},
	{Target: auth.ErrInvalidInput, Status: http.StatusBadRequest, Code: response.ErrValidation},
}

// ProfileRequest 更新资料的请求体，字段缺省表示不修改。
type ProfileRequest struct {
	Name           *string `json:"name" binding:"omitempty,min=1,max=128"`
	Email          *string `json:"email" binding:"omitempty,email"`
	Role           *string `json:"role" binding:"omitempty,max=128"`
	Experience     *int    `json:"experience" binding:"omitempty,min=0"`
	Skills         *string `json:"skills"`
	AreaOfInterest *string `json:"area_of_interest"`
}

func (r ProfileRequest) toUpdate() usersvc.ProfileUpdate {
	return usersvc.ProfileUpdate{
		Name:           trimmed(r.Name),
		Email:          trimmed(r.Email),
		Role:           trimmed(r.Role),
		Experience:     r.Experience,
		Skills:         trimmed(r.Skills),
		AreaOfInterest: trimmed(r.AreaOfInterest),
	}
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

// GetProfile 返回当前登录用户资料。
func (h *UserHandler) GetProfile(c *gin.Context) {
	log := h.scope("get_profile")

	userID, ok := extractUserID(c)
	if !ok {
		log.Warnw("missing user id")
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "missing user id", nil)
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		logServiceError(log.With("user_id", userID), err, userErrorMappings)
		response.FailWithError(c, err, userErrorMappings...)
		return
	}
	response.Success(c, http.StatusOK, profile, nil)
}

// UpdateProfile 更新当前登录用户资料。
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	log := h.scope("update_profile")

	userID, ok := extractUserID(c)
	if !ok {
		log.Warnw("missing user id")
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "missing user id", nil)
		return
	}
	log = log.With("user_id", userID)

	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnw("invalid request body", "error", err)
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, err.Error(), nil)
		return
	}

	profile, err := h.service.UpdateProfile(c.Request.Context(), userID, req.toUpdate())
	if err != nil {
		logServiceError(log, err, userErrorMappings)
		response.FailWithError(c, err, userErrorMappings...)
		return
	}

	log.Infow("update success")
	response.Success(c, http.StatusOK, profile, nil)
}

// ChangePassword 校验旧密码后设置新密码，成功后全部刷新令牌失效。
func (h *UserHandler) ChangePassword(c *gin.Context) {
	log := h.scope("change_password")

	userID, ok := extractUserID(c)
	if !ok {
		log.Warnw("missing user id")
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "missing user id", nil)
		return
	}
	log = log.With("user_id", userID)

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnw("invalid request body", "error", err)
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, err.Error(), nil)
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		logServiceError(log, err, userErrorMappings)
		response.FailWithError(c, err, userErrorMappings...)
		return
	}

	log.Infow("password changed")
	response.Success(c, http.StatusOK, gin.H{"message": "Password updated"}, nil)
}

func (h *UserHandler) scope(operation string) *zap.SugaredLogger {
	if h.logger == nil {
		h.logger = appLogger.Component("user.handler")
	}
	return h.logger.With("operation", operation)
}

// logServiceError 已映射的业务错误记 Warn，其余记 Error。
func logServiceError(log *zap.SugaredLogger, err error, mappings []response.ErrorMapping) {
	if response.MatchError(err, mappings...) {
		log.Warnw("request rejected", "error", err)
		return
	}
	log.Errorw("request failed", "error", err)
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	out := strings.TrimSpace(*v)
	return &out
}

func extractUserID(c *gin.Context) (uint, bool) {
	val, ok := c.Get(middleware.ContextUserID)
	if !ok {
		return 0, false
	}
	switch id := val.(type) {
	case uint:
		return id, id > 0
	case uint64:
		return uint(id), id > 0
	case int:
		if id <= 0 {
			return 0, false
		}
		return uint(id), true
	case float64:
		if id <= 0 {
			return 0, false
		}
		return uint(id), true
	default:
		return 0, false
	}
}
