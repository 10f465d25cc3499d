package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"learnpath/backend/internal/dto"
	"learnpath/backend/internal/model"
	"learnpath/backend/internal/planner"
	"learnpath/backend/internal/repository"
	pkgerrors "learnpath/backend/pkg/errors"
)

// ── 试卷模块业务错误 ──

var (
	ErrModelPaperNotFound = pkgerrors.NewNotFound("试卷")
	ErrModelPaperEmpty    = pkgerrors.NewValidation("pdf", "未识别到任何试题")
)

// LayoutAnalyzer PDF 版面分析，返回全文
type LayoutAnalyzer interface {
	AnalyzeLayout(ctx context.Context, pdf []byte) (string, error)
}

// QuestionClassifier 判断文本块是否为试题
type QuestionClassifier interface {
	IsQuestion(ctx context.Context, text string) (bool, error)
}

// ModelPaperService 往年试卷业务接口
type ModelPaperService interface {
	Upload(ctx context.Context, userID, subjectID, fileName string, pdf []byte) (*dto.ModelPaperResponse, error)
	List(ctx context.Context, userID string, req *dto.ModelPaperListRequest) ([]dto.ModelPaperResponse, error)
	Delete(ctx context.Context, userID, id string) error
}

type modelPaperService struct {
	repo       *repository.Repository
	analyzer   LayoutAnalyzer
	classifier QuestionClassifier
	logger     *zap.Logger
}

// NewModelPaperService 创建 ModelPaperService 实例
// analyzer 为 nil 时上传不可用；classifier 为 nil 时不过滤文本块
func NewModelPaperService(repo *repository.Repository, analyzer LayoutAnalyzer, classifier QuestionClassifier, logger *zap.Logger) ModelPaperService {
	return &modelPaperService{repo: repo, analyzer: analyzer, classifier: classifier, logger: logger}
}

func (s *modelPaperService) Upload(ctx context.Context, userID, subjectID, fileName string, pdf []byte) (*dto.ModelPaperResponse, error) {
	if s.analyzer == nil {
		return nil, ErrDocAIUnavailable
	}
	if _, err := s.repo.Subject.GetByID(ctx, userID, subjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		s.logger.Error("查询科目失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, err
	}

	content, err := s.analyzer.AnalyzeLayout(ctx, pdf)
	if err != nil {
		s.logger.Error("试卷版面分析失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	questions := s.filterQuestions(ctx, splitQuestions(content))
	if len(questions) == 0 {
		return nil, ErrModelPaperEmpty
	}

	paper := &model.ModelPaper{
		UserID:    userID,
		SubjectID: subjectID,
		FileName:  fileName,
		Questions: datatypes.NewJSONType(questions),
	}
	if err := s.repo.ModelPaper.Create(ctx, paper); err != nil {
		s.logger.Error("保存试卷失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("试卷已解析",
		zap.String("paper_id", paper.PaperID),
		zap.String("subject_id", subjectID),
		zap.Int("questions", len(questions)),
	)
	return toModelPaperResponse(paper), nil
}

// filterQuestions 分类器判为非试题的块被丢弃；分类失败时保留该块
func (s *modelPaperService) filterQuestions(ctx context.Context, blocks []string) []string {
	if s.classifier == nil {
		return blocks
	}
	kept := make([]string, 0, len(blocks))
	for _, block := range blocks {
		ok, err := s.classifier.IsQuestion(ctx, block)
		if err != nil {
			s.logger.Warn("试题分类失败，保留该文本块", zap.Error(err))
			kept = append(kept, block)
			continue
		}
		if ok {
			kept = append(kept, block)
		}
	}
	return kept
}

func (s *modelPaperService) List(ctx context.Context, userID string, req *dto.ModelPaperListRequest) ([]dto.ModelPaperResponse, error) {
	papers, err := s.repo.ModelPaper.ListByUser(ctx, userID, req.SubjectID)
	if err != nil {
		s.logger.Error("列出试卷失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ModelPaperResponse, 0, len(papers))
	for i := range papers {
		result = append(result, *toModelPaperResponse(&papers[i]))
	}
	return result, nil
}

func (s *modelPaperService) Delete(ctx context.Context, userID, id string) error {
	rows, err := s.repo.ModelPaper.Delete(ctx, userID, id)
	if err != nil {
		s.logger.Error("删除试卷失败", zap.String("paper_id", id), zap.Error(err))
		return err
	}
	if rows == 0 {
		return ErrModelPaperNotFound
	}
	return nil
}

// 题号：行首的 "1." "12)" "Q3." "(a)" "(ii)"
var questionMarker = regexp.MustCompile(`^\s*(?:(?:Q(?:uestion)?\s*)?\d{1,3}[.)]|\([a-z]\)|\((?:i|ii|iii|iv|v|vi|vii|viii|ix|x)\))(?:\s+|$)`)

// splitQuestions 按题号把全文切分为题目块
// 第一个题号之前的内容视为试卷说明并丢弃；全文没有题号时每个非空行各为一块
func splitQuestions(content string) []string {
	lines := strings.Split(content, "\n")

	var (
		blocks  []string
		current []string
		seen    bool
	)
	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, strings.Join(current, " "))
			current = nil
		}
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if questionMarker.MatchString(line) {
			flush()
			seen = true
		}
		if seen {
			current = append(current, line)
		}
	}
	flush()

	if !seen {
		blocks = lines
	}
	return planner.CleanTopics(blocks)
}

func toModelPaperResponse(p *model.ModelPaper) *dto.ModelPaperResponse {
	questions := p.Questions.Data()
	if questions == nil {
		questions = []string{}
	}
	return &dto.ModelPaperResponse{
		ID:        p.PaperID,
		SubjectID: p.SubjectID,
		FileName:  p.FileName,
		Questions: questions,
		CreatedAt: dto.FormatTime(p.CreatedAt),
	}
}
