package model

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"learnpath/backend/internal/planner"
)

// Plan 学习计划表 — 对应 plans
// 每个用户至多一个当前计划（user_id 唯一），重新生成时整体替换
type Plan struct {
	PlanID    string                               `gorm:"type:uuid;primaryKey"                    json:"plan_id"`
	UserID    string                               `gorm:"type:varchar(128);not null;uniqueIndex" json:"user_id"`
	StartDate string                               `gorm:"type:varchar(10);not null"              json:"start_date"`
	EndDate   string                               `gorm:"type:varchar(10);not null"              json:"end_date"`
	Schedule  datatypes.JSONType[planner.Schedule] `gorm:"not null"                               json:"schedule"`
	Warnings  datatypes.JSONType[[]string]         `gorm:"not null"                               json:"warnings"`
	BaseModel
}

// TableName 指定表名
func (Plan) TableName() string { return "plans" }

// BeforeCreate 生成主键
func (p *Plan) BeforeCreate(*gorm.DB) error {
	if p.PlanID == "" {
		p.PlanID = uuid.NewString()
	}
	return nil
}
