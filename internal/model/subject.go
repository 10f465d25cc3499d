package model

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 科目大纲来源
const (
	SubjectSourceText  = "text"
	SubjectSourceImage = "image"
)

// Subject 科目表 — 对应 subjects
type Subject struct {
	SubjectID string                       `gorm:"type:uuid;primaryKey"                     json:"subject_id"`
	UserID    string                       `gorm:"type:varchar(128);not null;index"         json:"user_id"`
	Name      string                       `gorm:"type:varchar(200);not null"               json:"name"`
	Topics    datatypes.JSONType[[]string] `gorm:"not null"                                 json:"topics"`
	StartDate string                       `gorm:"type:varchar(10);not null"                json:"start_date"`
	EndDate   string                       `gorm:"type:varchar(10);not null"                json:"end_date"`
	Source    string                       `gorm:"type:varchar(10);not null;default:'text'" json:"source"` // text | image
	BaseModel
}

// TableName 指定表名
func (Subject) TableName() string { return "subjects" }

// BeforeCreate 生成主键
func (s *Subject) BeforeCreate(*gorm.DB) error {
	if s.SubjectID == "" {
		s.SubjectID = uuid.NewString()
	}
	return nil
}
