package service

import (
	"context"
	"errors"
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

// ── 进度模块业务错误 ──

var ErrProgressNotFound = pkgerrors.NewNotFound("学习进度")

// ProgressService 学习进度业务接口
// 所有写操作与计划生成共用同一把用户锁，整份进度读出、修改、写回
type ProgressService interface {
	// Initialize 以当前计划重建进度，丢弃已有完成记录
	Initialize(ctx context.Context, userID string) (*dto.ProgressResponse, error)
	Get(ctx context.Context, userID string) (*dto.ProgressResponse, error)
	// Sync 将已保存的进度与当前计划对账
	Sync(ctx context.Context, userID string) (*dto.ProgressResponse, error)
	MarkTopics(ctx context.Context, userID string, req *dto.MarkTopicsRequest) (*dto.ProgressResponse, error)
	SetTopicCompletion(ctx context.Context, userID string, req *dto.SetTopicCompletionRequest) (*dto.ProgressResponse, error)
	Summary(ctx context.Context, userID string) (*planner.Summary, error)
}

type progressService struct {
	repo   *repository.Repository
	locker Locker
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewProgressService 创建 ProgressService 实例
func NewProgressService(repo *repository.Repository, locker Locker, cfg *config.PlannerConfig, logger *zap.Logger) ProgressService {
	return &progressService{
		repo:   repo,
		locker: locker,
		loc:    cfg.Location(),
		now:    time.Now,
		logger: logger,
	}
}

func (s *progressService) today() string {
	return planner.Today(s.now(), s.loc)
}

func (s *progressService) Initialize(ctx context.Context, userID string) (*dto.ProgressResponse, error) {
	return s.rebuild(ctx, userID, false)
}

func (s *progressService) Sync(ctx context.Context, userID string) (*dto.ProgressResponse, error) {
	return s.rebuild(ctx, userID, true)
}

// rebuild keepExisting 为 false 时等价于与空进度对账
func (s *progressService) rebuild(ctx context.Context, userID string, keepExisting bool) (*dto.ProgressResponse, error) {
	unlock, err := s.locker.Lock(ctx, planLockKey(userID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	plan, err := s.repo.Plan.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		s.logger.Error("查询计划失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	var old planner.Progress
	if keepExisting {
		old, err = loadProgressDays(ctx, s.repo, userID)
		if err != nil {
			s.logger.Error("查询进度失败", zap.String("user_id", userID), zap.Error(err))
			return nil, err
		}
	}

	schedule := plan.Schedule.Data()
	var next planner.Progress
	if keepExisting {
		today := s.today()
		stats := planner.Diff(schedule, old, today)
		next = planner.Reconcile(schedule, old, today)
		s.logger.Info("进度已同步",
			zap.String("user_id", userID),
			zap.Int("retained", stats.Retained),
			zap.Int("reset", stats.Reset),
			zap.Int("created", stats.Created),
			zap.Int("dropped", stats.Dropped),
			zap.Int("archived", stats.Archived),
		)
	} else {
		next = planner.Initialize(schedule)
	}

	progress := &model.Progress{
		UserID: userID,
		PlanID: plan.PlanID,
		Days:   datatypes.NewJSONType(next),
	}
	if err := s.repo.Progress.Upsert(ctx, progress); err != nil {
		s.logger.Error("保存进度失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return toProgressResponse(progress), nil
}

func (s *progressService) Get(ctx context.Context, userID string) (*dto.ProgressResponse, error) {
	progress, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toProgressResponse(progress), nil
}

func (s *progressService) MarkTopics(ctx context.Context, userID string, req *dto.MarkTopicsRequest) (*dto.ProgressResponse, error) {
	return s.mutate(ctx, userID, func(days planner.Progress) (planner.Progress, error) {
		return planner.MarkTopics(days, req.Date, req.Time, req.Topics)
	})
}

func (s *progressService) SetTopicCompletion(ctx context.Context, userID string, req *dto.SetTopicCompletionRequest) (*dto.ProgressResponse, error) {
	return s.mutate(ctx, userID, func(days planner.Progress) (planner.Progress, error) {
		return planner.SetCompletion(days, req.Date, req.Time, []string{req.Topic}, *req.Completed)
	})
}

// mutate 读出整份进度，应用修改后整体写回；修改失败时不写库
func (s *progressService) mutate(ctx context.Context, userID string, apply func(planner.Progress) (planner.Progress, error)) (*dto.ProgressResponse, error) {
	unlock, err := s.locker.Lock(ctx, planLockKey(userID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	progress, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	next, err := apply(progress.Days.Data())
	if err != nil {
		return nil, err
	}
	progress.Days = datatypes.NewJSONType(next)
	// 已加载的记录 UpdatedAt 非零，Create 不会自动刷新
	progress.UpdatedAt = s.now()

	if err := s.repo.Progress.Upsert(ctx, progress); err != nil {
		s.logger.Error("保存进度失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return toProgressResponse(progress), nil
}

func (s *progressService) Summary(ctx context.Context, userID string) (*planner.Summary, error) {
	progress, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary := planner.Summarize(progress.Days.Data(), s.today())
	return &summary, nil
}

func (s *progressService) load(ctx context.Context, userID string) (*model.Progress, error) {
	progress, err := s.repo.Progress.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgressNotFound
		}
		s.logger.Error("查询进度失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return progress, nil
}

// loadProgressDays 用户没有进度时返回 nil
func loadProgressDays(ctx context.Context, repo *repository.Repository, userID string) (planner.Progress, error) {
	progress, err := repo.Progress.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return progress.Days.Data(), nil
}

func toProgressResponse(p *model.Progress) *dto.ProgressResponse {
	days := p.Days.Data()
	if days == nil {
		days = planner.Progress{}
	}
	return &dto.ProgressResponse{
		PlanID:    p.PlanID,
		Days:      days,
		UpdatedAt: dto.FormatTime(p.UpdatedAt),
	}
}
