package dto

// ── 科目模块 DTO ──

// CreateSubjectRequest 以文本大纲创建科目，主题按逗号分隔
type CreateSubjectRequest struct {
	Name      string `json:"name"       binding:"required,notblank,max=200"`
	Syllabus  string `json:"syllabus"   binding:"required,notblank"`
	StartDate string `json:"start_date" binding:"required,plandate"`
	EndDate   string `json:"end_date"   binding:"required,plandate"`
}

// CreateSubjectFromImageRequest 以大纲图片创建科目
type CreateSubjectFromImageRequest struct {
	Name      string `json:"name"       binding:"required,notblank,max=200"`
	ImageURL  string `json:"image_url"  binding:"required,url"`
	StartDate string `json:"start_date" binding:"required,plandate"`
	EndDate   string `json:"end_date"   binding:"required,plandate"`
}

// SubjectResponse 科目信息
type SubjectResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Topics    []string `json:"topics"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Source    string   `json:"source"`
	CreatedAt string   `json:"created_at"`
}
