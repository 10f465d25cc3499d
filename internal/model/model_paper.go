package model

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ModelPaper 往年试卷表 — 对应 model_papers
type ModelPaper struct {
	PaperID   string                       `gorm:"type:uuid;primaryKey"             json:"paper_id"`
	UserID    string                       `gorm:"type:varchar(128);not null;index" json:"user_id"`
	SubjectID string                       `gorm:"type:uuid;not null;index"         json:"subject_id"`
	FileName  string                       `gorm:"type:varchar(255);not null"       json:"file_name"`
	Questions datatypes.JSONType[[]string] `gorm:"not null"                         json:"questions"`
	BaseModel
}

// TableName 指定表名
func (ModelPaper) TableName() string { return "model_papers" }

// BeforeCreate 生成主键
func (p *ModelPaper) BeforeCreate(*gorm.DB) error {
	if p.PaperID == "" {
		p.PaperID = uuid.NewString()
	}
	return nil
}
