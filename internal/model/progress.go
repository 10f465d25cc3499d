package model

import (
	"gorm.io/datatypes"

	"learnpath/backend/internal/planner"
)

// Progress 学习进度表 — 对应 progresses
// 按 user_id 唯一，PlanID 记录进度来源的计划
type Progress struct {
	UserID string                               `gorm:"type:varchar(128);primaryKey" json:"user_id"`
	PlanID string                               `gorm:"type:uuid"                    json:"plan_id"`
	Days   datatypes.JSONType[planner.Progress] `gorm:"not null"                     json:"days"`
	BaseModel
}

// TableName 指定表名
func (Progress) TableName() string { return "progresses" }
