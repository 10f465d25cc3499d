package repository

import (
	"context"

	"gorm.io/gorm"

	"learnpath/backend/internal/model"
)

// SubjectRepository 科目数据访问接口
type SubjectRepository interface {
	Create(ctx context.Context, subject *model.Subject) error
	GetByID(ctx context.Context, userID, id string) (*model.Subject, error)
	ListByUser(ctx context.Context, userID string) ([]model.Subject, error)
	Delete(ctx context.Context, userID, id string) (int64, error)
}

type subjectRepo struct {
	db *gorm.DB
}

func NewSubjectRepo(db *gorm.DB) SubjectRepository {
	return &subjectRepo{db: db}
}

func (r *subjectRepo) Create(ctx context.Context, subject *model.Subject) error {
	return r.db.WithContext(ctx).Create(subject).Error
}

func (r *subjectRepo) GetByID(ctx context.Context, userID, id string) (*model.Subject, error) {
	var subject model.Subject
	err := r.db.WithContext(ctx).
		Where("subject_id = ? AND user_id = ?", id, userID).
		First(&subject).Error
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *subjectRepo) ListByUser(ctx context.Context, userID string) ([]model.Subject, error) {
	var subjects []model.Subject
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&subjects).Error
	return subjects, err
}

// Delete 只删除属于 userID 的科目，返回受影响行数
func (r *subjectRepo) Delete(ctx context.Context, userID, id string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("subject_id = ? AND user_id = ?", id, userID).
		Delete(&model.Subject{})
	return result.RowsAffected, result.Error
}
