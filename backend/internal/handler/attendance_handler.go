package handler

import (
	"net/http"

	response "employee-portal/backend/internal/infra/common"
	appLogger "employee-portal/backend/internal/infra/logger"
	"employee-portal/backend/internal/service/attendance"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AttendanceHandler 考勤的员工查询与管理员标记入口。
type AttendanceHandler struct {
	service *attendance.Service
	logger  *zap.SugaredLogger
}

// NewAttendanceHandler 构造 handler。
func NewAttendanceHandler(service *attendance.Service) *AttendanceHandler {
	return &AttendanceHandler{service: service, logger: appLogger.Component("attendance.handler")}
}

var attendanceErrorMappings = []response.ErrorMapping{
	{Target: attendance.ErrInvalidStatus, Status: http.StatusBadRequest, Code: response.ErrValidation},
	{Target: attendance.ErrInvalidDate, Status: http.StatusBadRequest, Code: response.ErrValidation},
	{Target: attendance.ErrRecordNotFound, Status: http.StatusNotFound, Code: response.ErrNotFound},
}

type bulkMarkRequest struct {
	Date      string `json:"date" binding:"required"`
	Status    string `json:"status" binding:"required"`
	LeaveType string `json:"leave_type"`
}

type updateAttendanceRequest struct {
	Status    string `json:"status" binding:"required"`
	LeaveType string `json:"leave_type"`
}

// ListMine 当前员工某月的考勤记录，month 缺省为本月。
func (h *AttendanceHandler) ListMine(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "missing user id", nil)
		return
	}
	records, err := h.service.ListMine(c.Request.Context(), userID, c.Query("month"))
	if err != nil {
		h.fail(c, "list_mine", err)
		return
	}
	response.Success(c, http.StatusOK, records, nil)
}

// SummaryMine 当前员工某月的考勤汇总。
func (h *AttendanceHandler) SummaryMine(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "missing user id", nil)
		return
	}
	summary, err := h.service.SummaryMine(c.Request.Context(), userID, c.Query("month"))
	if err != nil {
		h.fail(c, "summary_mine", err)
		return
	}
	response.Success(c, http.StatusOK, summary, nil)
}

// ListByDate 管理员查看某天全部考勤。
func (h *AttendanceHandler) ListByDate(c *gin.Context) {
	records, err := h.service.ListByDate(c.Request.Context(), c.Query("date"))
	if err != nil {
		h.fail(c, "list_by_date", err)
		return
	}
	response.Success(c, http.StatusOK, records, nil)
}

// MarkBulk 管理员为全部员工标记同一天的状态。
func (h *AttendanceHandler) MarkBulk(c *gin.Context) {
	var req bulkMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, err.Error(), nil)
		return
	}
	count, err := h.service.MarkBulk(c.Request.Context(), actorID(c), req.Date, req.Status, req.LeaveType)
	if err != nil {
		h.fail(c, "mark_bulk", err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"marked": count, "date": req.Date}, nil)
}

// Update 管理员修改单条考勤。
func (h *AttendanceHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, err.Error(), nil)
		return
	}
	record, err := h.service.Update(c.Request.Context(), actorID(c), id, req.Status, req.LeaveType)
	if err != nil {
		h.fail(c, "update", err)
		return
	}
	response.Success(c, http.StatusOK, record, nil)
}

func (h *AttendanceHandler) fail(c *gin.Context, operation string, err error) {
	logServiceError(h.logger.With("operation", operation), err, attendanceErrorMappings)
	response.FailWithError(c, err, attendanceErrorMappings...)
}
