package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"learnpath/backend/internal/model"
)

// ProgressRepository 学习进度数据访问接口（每用户一份，整体写入）
type ProgressRepository interface {
	GetByUser(ctx context.Context, userID string) (*model.Progress, error)
	Upsert(ctx context.Context, progress *model.Progress) error
}

type progressRepo struct {
	db *gorm.DB
}

func NewProgressRepo(db *gorm.DB) ProgressRepository {
	return &progressRepo{db: db}
}

func (r *progressRepo) GetByUser(ctx context.Context, userID string) (*model.Progress, error) {
	var progress model.Progress
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *progressRepo) Upsert(ctx context.Context, progress *model.Progress) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"plan_id", "days", "updated_at"}),
		}).
		Create(progress).Error
}
