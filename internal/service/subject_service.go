package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"learnpath/backend/internal/dto"
	"learnpath/backend/internal/model"
	"learnpath/backend/internal/planner"
	"learnpath/backend/internal/repository"
	pkgerrors "learnpath/backend/pkg/errors"
)

// ── 科目模块业务错误 ──

var (
	ErrSubjectNotFound  = pkgerrors.NewNotFound("科目")
	ErrSubjectNoTopics  = pkgerrors.NewValidation("syllabus", "未识别到任何主题")
	ErrDocAIUnavailable = errors.New("文档分析服务未配置")
)

// SyllabusReader 识别大纲图片中的文字行
type SyllabusReader interface {
	ReadLines(ctx context.Context, imageURL string) ([]string, error)
}

// SubjectService 科目业务接口
type SubjectService interface {
	CreateFromText(ctx context.Context, userID string, req *dto.CreateSubjectRequest) (*dto.SubjectResponse, error)
	// CreateFromImage 对大纲图片做 OCR，每个非空文本行作为一个主题
	CreateFromImage(ctx context.Context, userID string, req *dto.CreateSubjectFromImageRequest) (*dto.SubjectResponse, error)
	List(ctx context.Context, userID string) ([]dto.SubjectResponse, error)
	// Delete 连同该科目下的试卷一起删除，只能删除自己的科目
	Delete(ctx context.Context, userID, id string) error
}

type subjectService struct {
	repo   *repository.Repository
	reader SyllabusReader
	logger *zap.Logger
}

// NewSubjectService 创建 SubjectService 实例，reader 为 nil 时图片导入不可用
func NewSubjectService(repo *repository.Repository, reader SyllabusReader, logger *zap.Logger) SubjectService {
	return &subjectService{repo: repo, reader: reader, logger: logger}
}

func (s *subjectService) CreateFromText(ctx context.Context, userID string, req *dto.CreateSubjectRequest) (*dto.SubjectResponse, error) {
	if err := validateDateRange(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	topics := planner.SplitTopics(req.Syllabus)
	if len(topics) == 0 {
		return nil, ErrSubjectNoTopics
	}
	return s.create(ctx, userID, req.Name, topics, req.StartDate, req.EndDate, model.SubjectSourceText)
}

func (s *subjectService) CreateFromImage(ctx context.Context, userID string, req *dto.CreateSubjectFromImageRequest) (*dto.SubjectResponse, error) {
	if s.reader == nil {
		return nil, ErrDocAIUnavailable
	}
	if err := validateDateRange(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	lines, err := s.reader.ReadLines(ctx, req.ImageURL)
	if err != nil {
		s.logger.Error("识别大纲图片失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	topics := planner.CleanTopics(lines)
	if len(topics) == 0 {
		return nil, ErrSubjectNoTopics
	}
	return s.create(ctx, userID, req.Name, topics, req.StartDate, req.EndDate, model.SubjectSourceImage)
}

func (s *subjectService) create(ctx context.Context, userID, name string, topics []string, start, end, source string) (*dto.SubjectResponse, error) {
	subject := &model.Subject{
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		Topics:    datatypes.NewJSONType(topics),
		StartDate: start,
		EndDate:   end,
		Source:    source,
	}
	if err := s.repo.Subject.Create(ctx, subject); err != nil {
		s.logger.Error("创建科目失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("科目已创建",
		zap.String("user_id", userID),
		zap.String("subject_id", subject.SubjectID),
		zap.String("source", source),
		zap.Int("topics", len(topics)),
	)
	return toSubjectResponse(subject), nil
}

func (s *subjectService) List(ctx context.Context, userID string) ([]dto.SubjectResponse, error) {
	subjects, err := s.repo.Subject.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("列出科目失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.SubjectResponse, 0, len(subjects))
	for i := range subjects {
		result = append(result, *toSubjectResponse(&subjects[i]))
	}
	return result, nil
}

func (s *subjectService) Delete(ctx context.Context, userID, id string) error {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return err
	}
	txRepo := s.repo.WithTx(tx)
	rollback := func() {
		if tx != nil {
			tx.Rollback()
		}
	}

	if err := txRepo.ModelPaper.DeleteBySubject(ctx, userID, id); err != nil {
		rollback()
		s.logger.Error("删除科目试卷失败", zap.String("subject_id", id), zap.Error(err))
		return err
	}
	rows, err := txRepo.Subject.Delete(ctx, userID, id)
	if err != nil {
		rollback()
		s.logger.Error("删除科目失败", zap.String("subject_id", id), zap.Error(err))
		return err
	}
	if rows == 0 {
		rollback()
		return ErrSubjectNotFound
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			return err
		}
	}
	return nil
}

func validateDateRange(start, end string) error {
	from, err := planner.ParseDate(start)
	if err != nil {
		return pkgerrors.NewValidation("start_date", err.Error())
	}
	to, err := planner.ParseDate(end)
	if err != nil {
		return pkgerrors.NewValidation("end_date", err.Error())
	}
	if !from.Before(to) {
		return pkgerrors.NewValidation("start_date", "必须早于 end_date")
	}
	return nil
}

func toSubjectResponse(s *model.Subject) *dto.SubjectResponse {
	topics := s.Topics.Data()
	if topics == nil {
		topics = []string{}
	}
	return &dto.SubjectResponse{
		ID:        s.SubjectID,
		Name:      s.Name,
		Topics:    topics,
		StartDate: s.StartDate,
		EndDate:   s.EndDate,
		Source:    s.Source,
		CreatedAt: dto.FormatTime(s.CreatedAt),
	}
}
