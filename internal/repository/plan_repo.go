package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"learnpath/backend/internal/model"
)

// PlanRepository 学习计划数据访问接口（每用户至多一个当前计划）
type PlanRepository interface {
	GetByUser(ctx context.Context, userID string) (*model.Plan, error)
	// Upsert 按 user_id 整体替换，不存在时创建
	Upsert(ctx context.Context, plan *model.Plan) error
	// UpdateDates 只更新非 nil 的日期字段，计划不存在时返回 gorm.ErrRecordNotFound
	UpdateDates(ctx context.Context, userID string, startDate, endDate *string) error
}

type planRepo struct {
	db *gorm.DB
}

func NewPlanRepo(db *gorm.DB) PlanRepository {
	return &planRepo{db: db}
}

func (r *planRepo) GetByUser(ctx context.Context, userID string) (*model.Plan, error) {
	var plan model.Plan
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *planRepo) Upsert(ctx context.Context, plan *model.Plan) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"plan_id", "start_date", "end_date", "schedule", "warnings", "updated_at",
			}),
		}).
		Create(plan).Error
}

func (r *planRepo) UpdateDates(ctx context.Context, userID string, startDate, endDate *string) error {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if startDate != nil {
		updates["start_date"] = *startDate
	}
	if endDate != nil {
		updates["end_date"] = *endDate
	}

	result := r.db.WithContext(ctx).
		Model(&model.Plan{}).
		Where("user_id = ?", userID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
