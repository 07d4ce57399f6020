package handler

import (
	"net/http"

	response "employee-portal/backend/internal/infra/common"
	appLogger "employee-portal/backend/internal/infra/logger"
	"employee-portal/backend/internal/service/learning"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LearningHandler 课程推荐入口。
type LearningHandler struct {
	service *learning.Service
	logger  *zap.SugaredLogger
}

// NewLearningHandler 构造 handler。
func NewLearningHandler(service *learning.Service) *LearningHandler {
	return &LearningHandler{service: service, logger: appLogger.Component("learning.handler")}
}

var learningErrorMappings = []response.ErrorMapping{
	{Target: learning.ErrUserNotFound, Status: http.StatusNotFound, Code: response.ErrNotFound},
}

// Recommendations 为当前员工推荐最多 5 门课程。
func (h *LearningHandler) Recommendations(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "missing user id", nil)
		return
	}
	result, err := h.service.Recommend(c.Request.Context(), userID)
	if err != nil {
		logServiceError(h.logger.With("operation", "recommend", "user_id", userID), err, learningErrorMappings)
		response.FailWithError(c, err, learningErrorMappings...)
		return
	}
	response.Success(c, http.StatusOK, result, nil)
}
