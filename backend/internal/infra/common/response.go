/*
 * @Author: NEFU AB-IN
 * @Date: 2026-03-02 11:02:07
 * @FilePath: \employee-portal\backend\internal\infra\common\response.go
 * @LastEditTime: 2026-03-05 09:41:12
 */
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorCode 统一错误码，前端据此区分失败原因。
type ErrorCode string

const (
	ErrBadRequest         ErrorCode = "BAD_REQUEST"
	ErrValidation         ErrorCode = "VALIDATION_FAILED"
	ErrUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrForbidden          ErrorCode = "FORBIDDEN"
	ErrNotFound           ErrorCode = "NOT_FOUND"
	ErrConflict           ErrorCode = "CONFLICT"
	ErrTooManyRequests    ErrorCode = "TOO_MANY_REQUESTS"
	ErrInternal           ErrorCode = "INTERNAL_ERROR"
	ErrInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrTokenInvalid       ErrorCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrorCode = "TOKEN_EXPIRED"
)

// Error 错误响应体。
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
}

// Response 所有接口的公共返回结构。
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   *Error `json:"error,omitempty"`
	Meta    any    `json:"meta,omitempty"`
}

// MetaPagination 分页信息，放在 Response.Meta。
type MetaPagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// NewPagination 根据总数计算总页数。
func NewPagination(page, pageSize int, total int64) MetaPagination {
	pages := 0
	if pageSize > 0 {
		pages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return MetaPagination{Page: page, PageSize: pageSize, TotalItems: total, TotalPages: pages}
}

// Success 返回成功结果，status 为 0 时默认 200。
func Success(c *gin.Context, status int, data any, meta any) {
	if status == 0 {
		status = http.StatusOK
	}
	resp := Response{Success: true, Data: data}
	if meta != nil {
		resp.Meta = meta
	}
	c.JSON(status, resp)
}

// Created 返回 201。
func Created(c *gin.Context, data any, meta any) {
	Success(c, http.StatusCreated, data, meta)
}

// NoContent 返回 204 且无 body。
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Fail 返回错误结果，status 为 0 时默认 500。
func Fail(c *gin.Context, status int, code ErrorCode, message string, details any) {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	resp := Response{
		Success: false,
		Error:   &Error{Code: code, Message: message},
	}
	if details != nil {
		resp.Error.Details = details
	}
	c.JSON(status, resp)
}

// Abort 与 Fail 相同，但会中断后续中间件，供鉴权类中间件使用。
func Abort(c *gin.Context, status int, code ErrorCode, message string) {
	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Error:   &Error{Code: code, Message: message},
	})
}

// ErrorMapping 描述某个 sentinel error 对应的 HTTP 状态与错误码。
type ErrorMapping struct {
	Target error
	Status int
	Code   ErrorCode
	// Message 非空时替代 err.Error() 作为返回给前端的文案。
	Message string
}

// FailWithError 依次用 errors.Is 匹配映射表，未命中时返回 500。
// 5xx 场景不回显内部错误信息。
func FailWithError(c *gin.Context, err error, mappings ...ErrorMapping) {
	for _, m := range mappings {
		if m.Target != nil && errors.Is(err, m.Target) {
			message := m.Message
			if message == "" {
				message = err.Error()
			}
			Fail(c, m.Status, m.Code, message, nil)
			return
		}
	}
	Fail(c, http.StatusInternalServerError, ErrInternal, http.StatusText(http.StatusInternalServerError), nil)
}

// MatchError 判断错误是否命中映射表，handler 据此区分 Warn 与 Error 日志级别。
func MatchError(err error, mappings ...ErrorMapping) bool {
	for _, m := range mappings {
		if m.Target != nil && errors.Is(err, m.Target) {
			return true
		}
	}
	return false
}
