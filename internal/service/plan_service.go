package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"learnpath/backend/config"
	"learnpath/backend/internal/dto"
	"learnpath/backend/internal/model"
	"learnpath/backend/internal/planner"
	"learnpath/backend/internal/repository"
	pkgerrors "learnpath/backend/pkg/errors"
)

// ── 计划模块业务错误 ──

var (
	ErrPlanNotFound = pkgerrors.NewNotFound("学习计划")
	ErrNoSyllabus   = pkgerrors.NewValidation("syllabus", "请先添加科目或提供大纲主题")
	ErrNoDateRange  = pkgerrors.NewValidation("start_date", "请提供日期范围或先添加科目")
)

// PlanGenerator 生成并校验学习计划
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, req planner.GenerationRequest) (planner.Schedule, []string, error)
}

// PlanService 学习计划业务接口
type PlanService interface {
	// Generate 生成计划并与已有进度对账；同一用户的生成请求串行执行
	Generate(ctx context.Context, userID string, req *dto.GeneratePlanRequest) (*dto.GeneratePlanResponse, error)
	Get(ctx context.Context, userID string) (*dto.PlanResponse, error)
	// PatchDates 修改日期范围；Regenerate 时按新范围重新生成
	PatchDates(ctx context.Context, userID string, req *dto.PatchPlanDatesRequest) (*dto.PlanResponse, error)
	PlanRefresher
}

type planService struct {
	repo      *repository.Repository
	generator PlanGenerator
	locker    Locker
	loc       *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// NewPlanService 创建 PlanService 实例
func NewPlanService(repo *repository.Repository, generator PlanGenerator, locker Locker, cfg *config.PlannerConfig, logger *zap.Logger) PlanService {
	return &planService{
		repo:      repo,
		generator: generator,
		locker:    locker,
		loc:       cfg.Location(),
		now:       time.Now,
		logger:    logger,
	}
}

// planLockKey 计划与进度写操作共用的锁名，Redis 键前缀由 redis.LockKey 统一添加
func planLockKey(userID string) string {
	return "plan:" + userID
}

// ────────────────────── Generate ──────────────────────

func (s *planService) Generate(ctx context.Context, userID string, req *dto.GeneratePlanRequest) (*dto.GeneratePlanResponse, error) {
	prior, err := s.currentPlan(ctx, userID)
	if err != nil {
		return nil, err
	}

	genReq, err := s.buildRequest(ctx, userID, req, prior)
	if err != nil {
		return nil, err
	}

	plan, stats, err := s.regenerate(ctx, genReq)
	if err != nil {
		return nil, err
	}
	return &dto.GeneratePlanResponse{
		Plan: *toPlanResponse(plan),
		Reconciliation: dto.ReconcileResponse{
			Retained: stats.Retained,
			Reset:    stats.Reset,
			Created:  stats.Created,
			Dropped:  stats.Dropped,
			Archived: stats.Archived,
		},
	}, nil
}

// regenerate 在用户锁内完成：生成 → 写计划 → 对账 → 写进度
// 生成失败时已有计划与进度保持不变；写库在同一事务内
func (s *planService) regenerate(ctx context.Context, req planner.GenerationRequest) (*model.Plan, planner.ReconcileStats, error) {
	var stats planner.ReconcileStats

	unlock, err := s.locker.Lock(ctx, planLockKey(req.UserID))
	if err != nil {
		return nil, stats, err
	}
	defer unlock()

	schedule, warnings, err := s.generator.GeneratePlan(ctx, req)
	if err != nil {
		s.logger.Warn("生成计划失败",
			zap.String("user_id", req.UserID),
			zap.String("kind", string(pkgerrors.KindOf(err))),
			zap.Error(err),
		)
		return nil, stats, err
	}
	if warnings == nil {
		warnings = []string{}
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, stats, err
	}
	txRepo := s.repo.WithTx(tx)
	rollback := func() {
		if tx != nil {
			tx.Rollback()
		}
	}

	plan := &model.Plan{
		UserID:    req.UserID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Schedule:  datatypes.NewJSONType(schedule),
		Warnings:  datatypes.NewJSONType(warnings),
	}
	if err := txRepo.Plan.Upsert(ctx, plan); err != nil {
		rollback()
		s.logger.Error("保存计划失败", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, stats, err
	}

	old, err := loadProgressDays(ctx, txRepo, req.UserID)
	if err != nil {
		rollback()
		s.logger.Error("查询进度失败", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, stats, err
	}

	today := planner.Today(s.now(), s.loc)
	stats = planner.Diff(schedule, old, today)
	next := planner.Reconcile(schedule, old, today)

	progress := &model.Progress{
		UserID: req.UserID,
		PlanID: plan.PlanID,
		Days:   datatypes.NewJSONType(next),
	}
	if err := txRepo.Progress.Upsert(ctx, progress); err != nil {
		rollback()
		s.logger.Error("保存进度失败", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, stats, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交计划事务失败", zap.String("user_id", req.UserID), zap.Error(err))
			return nil, stats, err
		}
	}

	s.logger.Info("计划已重新生成",
		zap.String("user_id", req.UserID),
		zap.String("plan_id", plan.PlanID),
		zap.Int("days", len(schedule)),
		zap.Int("warnings", len(warnings)),
		zap.Int("retained", stats.Retained),
		zap.Int("reset", stats.Reset),
		zap.Int("created", stats.Created),
		zap.Int("dropped", stats.Dropped),
		zap.Int("archived", stats.Archived),
	)
	return plan, stats, nil
}

// buildRequest 合并请求参数与用户已保存的科目、试卷、学习时间偏好
// 优先级：请求显式值 > 科目 / 偏好 > 已有计划
func (s *planService) buildRequest(ctx context.Context, userID string, req *dto.GeneratePlanRequest, prior *model.Plan) (planner.GenerationRequest, error) {
	out := planner.GenerationRequest{
		UserID:           userID,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		IncludeQuestions: req.IncludeQuestions,
	}

	subjects, err := s.selectSubjects(ctx, userID, req.SubjectIDs)
	if err != nil {
		return out, err
	}

	out.SyllabusTopics = planner.CleanTopics(req.SyllabusTopics)
	if len(out.SyllabusTopics) == 0 {
		var topics []string
		for i := range subjects {
			topics = append(topics, subjects[i].Topics.Data()...)
		}
		out.SyllabusTopics = planner.CleanTopics(topics)
	}
	if len(out.SyllabusTopics) == 0 {
		return out, ErrNoSyllabus
	}

	start, end := subjectRange(subjects)
	if out.StartDate == "" {
		out.StartDate = start
	}
	if out.EndDate == "" {
		out.EndDate = end
	}
	if prior != nil {
		if out.StartDate == "" {
			out.StartDate = prior.StartDate
		}
		if out.EndDate == "" {
			out.EndDate = prior.EndDate
		}
		out.PriorPlan = prior.Schedule.Data()
	}
	if out.StartDate == "" || out.EndDate == "" {
		return out, ErrNoDateRange
	}

	st, _, err := loadStudyTime(ctx, s.repo, userID)
	if err != nil {
		s.logger.Error("查询学习时间偏好失败", zap.String("user_id", userID), zap.Error(err))
		return out, err
	}
	out.SessionHours = st.SessionHours
	if req.SessionHours != nil {
		out.SessionHours = *req.SessionHours
	}
	out.LeisureWindows = st.Windows()
	if len(req.LeisureWindows) > 0 {
		out.LeisureWindows = fromWindowDTOs(req.LeisureWindows)
	}

	if out.IncludeQuestions {
		out.ModelQuestions = planner.CleanTopics(req.ModelQuestions)
		if len(out.ModelQuestions) == 0 {
			out.ModelQuestions, err = s.collectQuestions(ctx, userID, subjects)
			if err != nil {
				return out, err
			}
		}
	}
	return out, nil
}

// selectSubjects ids 为空时返回用户全部科目；指定的科目不存在时返回 NotFound
func (s *planService) selectSubjects(ctx context.Context, userID string, ids []string) ([]model.Subject, error) {
	subjects, err := s.repo.Subject.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("列出科目失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	if len(ids) == 0 {
		return subjects, nil
	}

	byID := make(map[string]model.Subject, len(subjects))
	for _, sub := range subjects {
		byID[sub.SubjectID] = sub
	}
	selected := make([]model.Subject, 0, len(ids))
	for _, id := range ids {
		sub, ok := byID[id]
		if !ok {
			return nil, ErrSubjectNotFound
		}
		selected = append(selected, sub)
	}
	return selected, nil
}

func (s *planService) collectQuestions(ctx context.Context, userID string, subjects []model.Subject) ([]string, error) {
	papers, err := s.repo.ModelPaper.ListByUser(ctx, userID, "")
	if err != nil {
		s.logger.Error("列出试卷失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	wanted := make(map[string]bool, len(subjects))
	for _, sub := range subjects {
		wanted[sub.SubjectID] = true
	}

	var questions []string
	for _, p := range papers {
		if wanted[p.SubjectID] {
			questions = append(questions, p.Questions.Data()...)
		}
	}
	return planner.CleanTopics(questions), nil
}

// subjectRange 所有科目日期范围的并集
func subjectRange(subjects []model.Subject) (start, end string) {
	var starts, ends []string
	for _, sub := range subjects {
		starts = append(starts, sub.StartDate)
		ends = append(ends, sub.EndDate)
	}
	if len(starts) == 0 {
		return "", ""
	}
	sort.Strings(starts)
	sort.Strings(ends)
	return starts[0], ends[len(ends)-1]
}

// ────────────────────── Get / PatchDates ──────────────────────

func (s *planService) Get(ctx context.Context, userID string) (*dto.PlanResponse, error) {
	plan, err := s.currentPlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	return toPlanResponse(plan), nil
}

func (s *planService) PatchDates(ctx context.Context, userID string, req *dto.PatchPlanDatesRequest) (*dto.PlanResponse, error) {
	plan, err := s.currentPlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}

	start, end := plan.StartDate, plan.EndDate
	if req.StartDate != nil {
		start = *req.StartDate
	}
	if req.EndDate != nil {
		end = *req.EndDate
	}
	if err := validateDateRange(start, end); err != nil {
		return nil, err
	}

	if req.Regenerate {
		resp, err := s.Generate(ctx, userID, &dto.GeneratePlanRequest{StartDate: start, EndDate: end})
		if err != nil {
			return nil, err
		}
		return &resp.Plan, nil
	}

	if err := s.repo.Plan.UpdateDates(ctx, userID, &start, &end); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		s.logger.Error("更新计划日期失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	plan.StartDate, plan.EndDate = start, end
	return toPlanResponse(plan), nil
}

// ────────────────────── Refresh ──────────────────────

// Refresh 按当前计划的日期范围重新生成；用户没有计划时不做任何事
func (s *planService) Refresh(ctx context.Context, userID string) RefreshResult {
	plan, err := s.currentPlan(ctx, userID)
	if err != nil {
		return RefreshResult{Err: err}
	}
	if plan == nil {
		return RefreshResult{}
	}

	_, err = s.Generate(ctx, userID, &dto.GeneratePlanRequest{
		StartDate: plan.StartDate,
		EndDate:   plan.EndDate,
	})
	if err != nil {
		return RefreshResult{Attempted: true, Err: err}
	}
	return RefreshResult{Attempted: true, Refreshed: true}
}

// currentPlan 用户没有计划时返回 nil, nil
func (s *planService) currentPlan(ctx context.Context, userID string) (*model.Plan, error) {
	plan, err := s.repo.Plan.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("查询计划失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return plan, nil
}

func toPlanResponse(p *model.Plan) *dto.PlanResponse {
	schedule := p.Schedule.Data()
	if schedule == nil {
		schedule = planner.Schedule{}
	}
	warnings := p.Warnings.Data()
	if warnings == nil {
		warnings = []string{}
	}
	return &dto.PlanResponse{
		ID:        p.PlanID,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Schedule:  schedule,
		Warnings:  warnings,
		UpdatedAt: dto.FormatTime(p.UpdatedAt),
	}
}
