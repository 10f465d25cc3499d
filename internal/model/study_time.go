package model

import (
	"gorm.io/datatypes"

	"learnpath/backend/internal/planner"
)

// StudyTime 学习时间偏好表 — 对应 study_times（每用户一条）
type StudyTime struct {
	UserID         string                                            `gorm:"type:varchar(128);primaryKey" json:"user_id"`
	SessionHours   float64                                           `gorm:"not null"                     json:"session_hours"`
	LeisureWindows datatypes.JSONType[map[string]planner.TimeWindow] `gorm:"not null"                     json:"leisure_windows"`
	BaseModel
}

// TableName 指定表名
func (StudyTime) TableName() string { return "study_times" }

// Windows 休息时间段，未设置时返回空 map
func (s *StudyTime) Windows() map[string]planner.TimeWindow {
	w := s.LeisureWindows.Data()
	if w == nil {
		return map[string]planner.TimeWindow{}
	}
	return w
}
