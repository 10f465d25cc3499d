package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"learnpath/backend/internal/model"
)

// StudyTimeRepository 学习时间偏好数据访问接口
type StudyTimeRepository interface {
	GetByUser(ctx context.Context, userID string) (*model.StudyTime, error)
	Upsert(ctx context.Context, st *model.StudyTime) error
}

type studyTimeRepo struct {
	db *gorm.DB
}

func NewStudyTimeRepo(db *gorm.DB) StudyTimeRepository {
	return &studyTimeRepo{db: db}
}

func (r *studyTimeRepo) GetByUser(ctx context.Context, userID string) (*model.StudyTime, error) {
	var st model.StudyTime
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&st).Error; err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *studyTimeRepo) Upsert(ctx context.Context, st *model.StudyTime) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"session_hours", "leisure_windows", "updated_at"}),
		}).
		Create(st).Error
}
