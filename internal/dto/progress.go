package dto

import "learnpath/backend/internal/planner"

// ── 学习进度 DTO ──

// MarkTopicsRequest 批量标记某时段的主题为已完成
type MarkTopicsRequest struct {
	Date   string   `json:"date"   binding:"required,plandate"`
	Time   string   `json:"time"   binding:"required,notblank"`
	Topics []string `json:"topics" binding:"required,min=1,dive,notblank"`
}

// SetTopicCompletionRequest 勾选或取消勾选单个主题
type SetTopicCompletionRequest struct {
	Date      string `json:"date"      binding:"required,plandate"`
	Time      string `json:"time"      binding:"required,notblank"`
	Topic     string `json:"topic"     binding:"required,notblank"`
	Completed *bool  `json:"completed" binding:"required"`
}

// ProgressResponse 当前进度
type ProgressResponse struct {
	PlanID    string           `json:"plan_id"`
	Days      planner.Progress `json:"days"`
	UpdatedAt string           `json:"updated_at"`
}
