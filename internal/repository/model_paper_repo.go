package repository

import (
	"context"

	"gorm.io/gorm"

	"learnpath/backend/internal/model"
)

// ModelPaperRepository 往年试卷数据访问接口
type ModelPaperRepository interface {
	Create(ctx context.Context, paper *model.ModelPaper) error
	ListByUser(ctx context.Context, userID, subjectID string) ([]model.ModelPaper, error)
	Delete(ctx context.Context, userID, id string) (int64, error)
	DeleteBySubject(ctx context.Context, userID, subjectID string) error
}

type modelPaperRepo struct {
	db *gorm.DB
}

func NewModelPaperRepo(db *gorm.DB) ModelPaperRepository {
	return &modelPaperRepo{db: db}
}

func (r *modelPaperRepo) Create(ctx context.Context, paper *model.ModelPaper) error {
	return r.db.WithContext(ctx).Create(paper).Error
}

// ListByUser subjectID 为空时返回该用户全部试卷
func (r *modelPaperRepo) ListByUser(ctx context.Context, userID, subjectID string) ([]model.ModelPaper, error) {
	var papers []model.ModelPaper
	db := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if subjectID != "" {
		db = db.Where("subject_id = ?", subjectID)
	}
	err := db.Order("created_at ASC").Find(&papers).Error
	return papers, err
}

func (r *modelPaperRepo) Delete(ctx context.Context, userID, id string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("paper_id = ? AND user_id = ?", id, userID).
		Delete(&model.ModelPaper{})
	return result.RowsAffected, result.Error
}

func (r *modelPaperRepo) DeleteBySubject(ctx context.Context, userID, subjectID string) error {
	return r.db.WithContext(ctx).
		Where("subject_id = ? AND user_id = ?", subjectID, userID).
		Delete(&model.ModelPaper{}).Error
}
