package handler

import (
	"net/http"

	response "employee-portal/backend/internal/infra/common"
	"employee-portal/backend/internal/service/career"

	"github.com/gin-gonic/gin"
)

// CareerHandler 职业路线摘要。
type CareerHandler struct{}

// NewCareerHandler 构造 handler。
func NewCareerHandler() *CareerHandler {
	return &CareerHandler{}
}

// RoadmapSummary 根据当前与目标岗位生成路线叙述。
func (h *CareerHandler) RoadmapSummary(c *gin.Context) {
	var req career.RoadmapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, err.Error(), nil)
		return
	}
	summary, err := career.Summarize(req)
	if err != nil {
		response.FailWithError(c, err, response.ErrorMapping{Target: career.ErrMissingRole, Status: http.StatusBadRequest, Code: response.ErrValidation})
		return
	}
	response.Success(c, http.StatusOK, summary, nil)
}
