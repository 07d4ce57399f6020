package handler

import (
	"net/http"
	"strconv"
	"strings"

	response "employee-portal/backend/internal/infra/common"
	appLogger "employee-portal/backend/internal/infra/logger"
	adminusersvc "employee-portal/backend/internal/service/adminuser"
	"employee-portal/backend/internal/service/auth"
	usersvc "employee-portal/backend/internal/service/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminUserHandler 管理员维护员工账号。
type AdminUserHandler struct {
	service *adminusersvc.Service
	logger  *zap.SugaredLogger
}

// NewAdminUserHandler 初始化管理员用户 Handler。
func NewAdminUserHandler(service *adminusersvc.Service) *AdminUserHandler {
	return &AdminUserHandler{service: service, logger: appLogger.Component("adminuser.handler")}
}

var adminUserErrorMappings = []response.ErrorMapping{
	{Target: adminusersvc.ErrSelfDelete, Status: http.StatusBadRequest, Code: response.ErrBadRequest},
	{Target: adminusersvc.ErrUserNotFound, Status: http.StatusNotFound, Code: response.ErrNotFound},
	{Target: usersvc.ErrUserNotFound, Status: http.StatusNotFound, Code: response.ErrNotFound},
	{Target: auth.ErrEmailTaken, Status: http.StatusConflict, Code: response.ErrConflict},
	{Target: auth.ErrInvalidInput, Status: http.StatusBadRequest, Code: response.ErrValidation},
}

type adminUserListRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Query    string `form:"q"`
}

type adminUserCreateRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	IsAdmin  bool   `json:"is_admin"`
}

type adminUserUpdateRequest struct {
	ProfileRequest
	IsAdmin  *bool   `json:"is_admin"`
	Password *string `json:"password" binding:"omitempty,min=6"`
}

// List 分页列出员工账号，q 按姓名或邮箱模糊匹配。
func (h *AdminUserHandler) List(c *gin.Context) {
	var req adminUserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, err.Error(), nil)
		return
	}

	result, err := h.service.List(c.Request.Context(), adminusersvc.ListParams{
		Page:     req.Page,
		PageSize: req.PageSize,
		Query:    strings.TrimSpace(req.Query),
	})
	if err != nil {
		h.fail(c, "list", err)
		return
	}

	response.Success(c, http.StatusOK, result.Items, response.NewPagination(result.Page, result.PageSize, result.Total))
}

// Create 新建账号，首次登录需修改密码。
func (h *AdminUserHandler) Create(c *gin.Context) {
	var req adminUserCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, err.Error(), nil)
		return
	}

	user, err := h.service.Create(c.Request.Context(), adminusersvc.CreateParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		h.fail(c, "create", err)
		return
	}
	h.logger.Infow("user created", "actor_id", actorID(c), "user_id", user.ID)
	response.Created(c, user, nil)
}

// Update 修改账号资料、权限或重置密码。
func (h *AdminUserHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req adminUserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, err.Error(), nil)
		return
	}

	user, err := h.service.Update(c.Request.Context(), id, adminusersvc.UpdateParams{
		ProfileUpdate: req.toUpdate(),
		IsAdmin:       req.IsAdmin,
		Password:      req.Password,
	})
	if err != nil {
		h.fail(c, "update", err)
		return
	}
	h.logger.Infow("user updated", "actor_id", actorID(c), "user_id", id)
	response.Success(c, http.StatusOK, user, nil)
}

// Delete 删除账号，管理员不能删除自己。
func (h *AdminUserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actorID(c), id); err != nil {
		h.fail(c, "delete", err)
		return
	}
	h.logger.Infow("user deleted", "actor_id", actorID(c), "user_id", id)
	response.NoContent(c)
}

func (h *AdminUserHandler) fail(c *gin.Context, operation string, err error) {
	logServiceError(h.logger.With("operation", operation), err, adminUserErrorMappings)
	response.FailWithError(c, err, adminUserErrorMappings...)
}

func actorID(c *gin.Context) uint {
	id, _ := extractUserID(c)
	return id
}

// pathID 解析 :id 路径参数，非法时直接写入 400。
func pathID(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid id", gin.H{"id": raw})
		return 0, false
	}
	return uint(id), true
}
