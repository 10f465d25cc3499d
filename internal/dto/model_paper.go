package dto

// ── 往年试卷 DTO ──

// UploadModelPaperRequest multipart 表单字段，PDF 文件字段名为 pdf
type UploadModelPaperRequest struct {
	SubjectID string `form:"subject_id" binding:"required,uuid"`
}

// ModelPaperListRequest 试卷列表查询参数
type ModelPaperListRequest struct {
	SubjectID string `form:"subject_id" binding:"omitempty,uuid"`
}

// ModelPaperResponse 试卷信息
type ModelPaperResponse struct {
	ID        string   `json:"id"`
	SubjectID string   `json:"subject_id"`
	FileName  string   `json:"file_name"`
	Questions []string `json:"questions"`
	CreatedAt string   `json:"created_at"`
}
