/*
 * @Author: NEFU AB-IN
 * @Date: 2026-03-04 15:06:37
 * @FilePath: \employee-portal\backend\internal\handler\wellness_handler.go
 * @LastEditTime: 2026-03-06 17:41:12
 */
package handler

import (
	"fmt"
	"net/http"
	"strings"

	domain "employee-portal/backend/internal/domain/wellness"
	response "employee-portal/backend/internal/infra/common"
	appLogger "employee-portal/backend/internal/infra/logger"
	"employee-portal/backend/internal/service/mood"
	usersvc "employee-portal/backend/internal/service/user"
	"employee-portal/backend/internal/service/wellness"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WellnessHandler 暴露健康洞察、活动打点与情绪问卷。
type WellnessHandler struct {
	wellness *wellness.Service
	mood     *mood.Service
	users    *usersvc.Service
	logger   *zap.SugaredLogger
}

// NewWellnessHandler 构造 handler。
func NewWellnessHandler(wellnessService *wellness.Service, moodService *mood.Service, users *usersvc.Service) *WellnessHandler {
	return &WellnessHandler{
		wellness: wellnessService,
		mood:     moodService,
		users:    users,
		logger:   appLogger.Component("wellness.handler"),
	}
}

var wellnessErrorMappings = []response.ErrorMapping{
	{Target: wellness.ErrInvalidActivityType, Status: http.StatusBadRequest, Code: response.ErrValidation},
	{Target: mood.ErrAnswerCount, Status: http.StatusBadRequest, Code: response.ErrValidation, Message: "All 5 questions must be answered"},
	{Target: usersvc.ErrUserNotFound, Status: http.StatusNotFound, Code: response.ErrNotFound},
}

type submitRequest struct {
	Answers map[string]string `json:"answers" binding:"required"`
}

// Insights 返回当前用户近两周的风险评估与提示语。
func (h *WellnessHandler) Insights(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "missing user id", nil)
		return
	}

	profile, err := h.users.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, "insights", err)
		return
	}

	insights, err := h.wellness.GetInsights(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, "insights", err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user_name": profile.Name, "insights": insights}, nil)
}

// LogActivity 记录一次活动，类型取自 activity_type 查询参数。
func (h *WellnessHandler) LogActivity(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "missing user id", nil)
		return
	}

	raw := strings.TrimSpace(c.Query("activity_type"))
	activityType, err := domain.ParseActivityType(raw)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrValidation, err.Error(), gin.H{"field": "activity_type"})
		return
	}

	record, err := h.wellness.LogActivity(c.Request.Context(), userID, string(activityType), nil, nil)
	if err != nil {
		h.fail(c, "log_activity", err)
		return
	}

	// 没有可闭合的 login 时 logout 不产生记录，activity_id 为 null。
	var activityID *uint
	if record != nil {
		activityID = &record.ID
	}
	response.Success(c, http.StatusOK, gin.H{
		"message":     fmt.Sprintf("Activity %q logged successfully", string(activityType)),
		"activity_id": activityID,
	}, nil)
}

// Story 返回当前启用的故事与 5 道反思题。
func (h *WellnessHandler) Story(c *gin.Context) {
	view, err := h.mood.CurrentStory(c.Request.Context())
	if err != nil {
		h.fail(c, "story", err)
		return
	}
	response.Success(c, http.StatusOK, view, nil)
}

// Submit 提交问卷答案，返回情绪分类与推荐资源。
func (h *WellnessHandler) Submit(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "missing user id", nil)
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, err.Error(), nil)
		return
	}

	profile, err := h.users.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, "submit", err)
		return
	}

	result, err := h.mood.Submit(c.Request.Context(), userID, profile.Name, req.Answers)
	if err != nil {
		h.fail(c, "submit", err)
		return
	}
	response.Success(c, http.StatusOK, result, nil)
}

func (h *WellnessHandler) fail(c *gin.Context, operation string, err error) {
	logServiceError(h.logger.With("operation", operation), err, wellnessErrorMappings)
	response.FailWithError(c, err, wellnessErrorMappings...)
}
