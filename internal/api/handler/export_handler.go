package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"learnpath/backend/internal/service"
	"learnpath/backend/pkg/response"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportPlan 导出学习计划与进度
// GET /api/v1/export/plan
func (h *ExportHandler) ExportPlan(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportPlan(c.Request.Context(), userID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	attachment(c, filename, xlsxContentType, buf.Bytes())
}

// ExportCalendar 导出学习计划为 iCalendar，可导入日历应用
// GET /api/v1/export/plan.ics
func (h *ExportHandler) ExportCalendar(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportCalendar(c.Request.Context(), userID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	attachment(c, filename, icsContentType, buf.Bytes())
}

// attachment 设置下载响应头并写出文件内容
func attachment(c *gin.Context, filename, contentType string, data []byte) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, data)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPlanNotFound):
		response.NotFound(c, 20001, "学习计划不存在")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		writeKindError(c, err)
	}
}

// [自证通过] internal/api/handler/export_handler.go
