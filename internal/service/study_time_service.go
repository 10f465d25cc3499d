package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"learnpath/backend/internal/dto"
	"learnpath/backend/internal/model"
	"learnpath/backend/internal/planner"
	"learnpath/backend/internal/repository"
	pkgerrors "learnpath/backend/pkg/errors"
)

// DefaultSessionHours 用户未设置偏好时的每日学习时长
const DefaultSessionHours = 3

// DefaultLeisureWindows 用户未设置偏好时的休息时间段
func DefaultLeisureWindows() map[string]planner.TimeWindow {
	return map[string]planner.TimeWindow{
		"breakfast": {Start: "08:00 AM", End: "08:30 AM"},
		"lunch":     {Start: "01:00 PM", End: "01:30 PM"},
		"dinner":    {Start: "08:00 PM", End: "08:30 PM"},
		"other":     {Start: "05:00 PM", End: "06:00 PM"},
	}
}

// RefreshResult 尽力而为的计划刷新结果
// 调用方只记录与回显，不据此判定主操作失败
type RefreshResult struct {
	Attempted bool
	Refreshed bool
	Err       error
}

// PlanRefresher 偏好变化后按原日期范围重新生成计划
type PlanRefresher interface {
	Refresh(ctx context.Context, userID string) RefreshResult
}

// StudyTimeService 学习时间偏好业务接口
type StudyTimeService interface {
	Get(ctx context.Context, userID string) (*dto.StudyTimeResponse, error)
	Set(ctx context.Context, userID string, req *dto.SetStudyTimeRequest) (*dto.StudyTimeResponse, error)
	// Patch 部分更新，成功后触发一次尽力而为的计划刷新
	Patch(ctx context.Context, userID string, req *dto.PatchStudyTimeRequest) (*dto.PatchStudyTimeResponse, error)
}

type studyTimeService struct {
	repo      *repository.Repository
	refresher PlanRefresher
	logger    *zap.Logger
}

// NewStudyTimeService 创建 StudyTimeService 实例，refresher 可为 nil
func NewStudyTimeService(repo *repository.Repository, refresher PlanRefresher, logger *zap.Logger) StudyTimeService {
	return &studyTimeService{repo: repo, refresher: refresher, logger: logger}
}

func (s *studyTimeService) Get(ctx context.Context, userID string) (*dto.StudyTimeResponse, error) {
	st, isDefault, err := loadStudyTime(ctx, s.repo, userID)
	if err != nil {
		s.logger.Error("查询学习时间偏好失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return toStudyTimeResponse(st, isDefault), nil
}

func (s *studyTimeService) Set(ctx context.Context, userID string, req *dto.SetStudyTimeRequest) (*dto.StudyTimeResponse, error) {
	windows := fromWindowDTOs(req.LeisureWindows)
	if err := validateWindows(windows); err != nil {
		return nil, err
	}

	st := &model.StudyTime{
		UserID:         userID,
		SessionHours:   req.SessionHours,
		LeisureWindows: datatypes.NewJSONType(windows),
	}
	if err := s.repo.StudyTime.Upsert(ctx, st); err != nil {
		s.logger.Error("保存学习时间偏好失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return toStudyTimeResponse(st, false), nil
}

func (s *studyTimeService) Patch(ctx context.Context, userID string, req *dto.PatchStudyTimeRequest) (*dto.PatchStudyTimeResponse, error) {
	st, _, err := loadStudyTime(ctx, s.repo, userID)
	if err != nil {
		s.logger.Error("查询学习时间偏好失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	if req.SessionHours != nil {
		st.SessionHours = *req.SessionHours
	}
	windows := st.Windows()
	for name, w := range fromWindowDTOs(req.LeisureWindows) {
		windows[name] = w
	}
	if err := validateWindows(windows); err != nil {
		return nil, err
	}
	st.LeisureWindows = datatypes.NewJSONType(windows)
	st.UpdatedAt = time.Now()

	if err := s.repo.StudyTime.Upsert(ctx, st); err != nil {
		s.logger.Error("保存学习时间偏好失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	result := RefreshResult{}
	if s.refresher != nil {
		result = s.refresher.Refresh(ctx, userID)
	}
	if result.Err != nil {
		s.logger.Warn("偏好更新后刷新计划失败", zap.String("user_id", userID), zap.Error(result.Err))
	}

	resp := &dto.PatchStudyTimeResponse{
		StudyTime: *toStudyTimeResponse(st, false),
		PlanRefresh: dto.PlanRefreshResponse{
			Attempted: result.Attempted,
			Refreshed: result.Refreshed,
		},
	}
	if result.Err != nil {
		resp.PlanRefresh.Error = result.Err.Error()
	}
	return resp, nil
}

// loadStudyTime 读取偏好，未设置时返回默认值（不落库），isDefault 标记是否为默认值
func loadStudyTime(ctx context.Context, repo *repository.Repository, userID string) (st *model.StudyTime, isDefault bool, err error) {
	st, err = repo.StudyTime.GetByUser(ctx, userID)
	if err == nil {
		return st, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	return &model.StudyTime{
		UserID:         userID,
		SessionHours:   DefaultSessionHours,
		LeisureWindows: datatypes.NewJSONType(DefaultLeisureWindows()),
	}, true, nil
}

func validateWindows(windows map[string]planner.TimeWindow) error {
	for name, w := range windows {
		from, err := planner.ParseClock(w.Start)
		if err != nil {
			return pkgerrors.NewValidation("leisure_windows."+name, err.Error())
		}
		to, err := planner.ParseClock(w.End)
		if err != nil {
			return pkgerrors.NewValidation("leisure_windows."+name, err.Error())
		}
		if from >= to {
			return pkgerrors.NewValidation("leisure_windows."+name, "开始时间必须早于结束时间")
		}
	}
	return nil
}

func fromWindowDTOs(in map[string]dto.TimeWindow) map[string]planner.TimeWindow {
	out := make(map[string]planner.TimeWindow, len(in))
	for name, w := range in {
		out[name] = planner.TimeWindow{Start: w.Start, End: w.End}
	}
	return out
}

func toStudyTimeResponse(st *model.StudyTime, isDefault bool) *dto.StudyTimeResponse {
	windows := make(map[string]dto.TimeWindow)
	for name, w := range st.Windows() {
		windows[name] = dto.TimeWindow{Start: w.Start, End: w.End}
	}
	return &dto.StudyTimeResponse{
		SessionHours:   st.SessionHours,
		LeisureWindows: windows,
		IsDefault:      isDefault,
		UpdatedAt:      dto.FormatTime(st.UpdatedAt),
	}
}
