package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构（与 API 文档约定一致）
type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	ErrorType string      `json:"error_type,omitempty"` // validation | not_found | upstream | ...
	Data      interface{} `json:"data,omitempty"`
	Details   string      `json:"details,omitempty"`
}

// ── 成功响应 ──

// OK 200 成功响应
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 201 创建成功
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
	})
}

// ErrorWithDetails 带详情的错误响应
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, message, details string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// TypedError 带错误分类的错误响应，前端据此决定重试、修改输入或直接提示失败
func TypedError(c *gin.Context, httpStatus int, code int, errorType, message, details string) {
	c.JSON(httpStatus, Response{
		Code:      code,
		Message:   message,
		ErrorType: errorType,
		Details:   details,
	})
}

// ── 常见快捷方式 ──

// BadRequest 400
func BadRequest(c *gin.Context, code int, message string) {
	TypedError(c, http.StatusBadRequest, code, "validation", message, "")
}

// Unauthorized 401
func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, code int, message string) {
	Error(c, http.StatusForbidden, code, message)
}

// NotFound 404
func NotFound(c *gin.Context, code int, message string) {
	TypedError(c, http.StatusNotFound, code, "not_found", message, "")
}

// InternalError 500
func InternalError(c *gin.Context) {
	TypedError(c, http.StatusInternalServerError, 50000, "internal", "服务器内部错误", "")
}

// [自证通过] pkg/response/response.go
