package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"learnpath/backend/internal/dto"
	"learnpath/backend/internal/model"
	"learnpath/backend/internal/repository"
	pkgerrors "learnpath/backend/pkg/errors"
)

// ── 用户模块业务错误 ──

var (
	ErrUserExists   = errors.New("用户档案已存在")
	ErrUserNotFound = pkgerrors.NewNotFound("用户")
)

// UserService 用户档案业务接口
// 身份由外部认证服务提供，这里只维护展示用的档案
type UserService interface {
	Register(ctx context.Context, userID string, req *dto.RegisterUserRequest) (*dto.UserResponse, error)
	GetCurrent(ctx context.Context, userID string) (*dto.UserResponse, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) Register(ctx context.Context, userID string, req *dto.RegisterUserRequest) (*dto.UserResponse, error) {
	existing, err := s.repo.User.GetByID(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询用户失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	user := &model.User{
		UserID: userID,
		Name:   strings.TrimSpace(req.Name),
		Email:  strings.ToLower(strings.TrimSpace(req.Email)),
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("创建用户失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("用户注册成功", zap.String("user_id", userID))
	return toUserResponse(user), nil
}

func (s *userService) GetCurrent(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

func toUserResponse(u *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        u.UserID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: dto.FormatTime(u.CreatedAt),
	}
}
