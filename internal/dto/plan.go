package dto

import "learnpath/backend/internal/planner"

// ── 学习计划 DTO ──

// GeneratePlanRequest 生成计划请求
// 未提供的字段从用户的科目、试卷与学习时间偏好中补全
type GeneratePlanRequest struct {
	StartDate        string                `json:"start_date"        binding:"omitempty,plandate"`
	EndDate          string                `json:"end_date"          binding:"omitempty,plandate"`
	SessionHours     *float64              `json:"session_hours"     binding:"omitempty,gt=0,lte=24"`
	LeisureWindows   map[string]TimeWindow `json:"leisure_windows"   binding:"omitempty,dive,keys,notblank,endkeys"`
	SyllabusTopics   []string              `json:"syllabus_topics"   binding:"omitempty,dive,notblank"`
	ModelQuestions   []string              `json:"model_questions"   binding:"omitempty,dive,notblank"`
	SubjectIDs       []string              `json:"subject_ids"       binding:"omitempty,dive,uuid"`
	IncludeQuestions bool                  `json:"include_questions"`
}

// PatchPlanDatesRequest 修改计划日期范围
// Regenerate 为 true 时按新范围重新生成计划，否则只更新存储的范围
type PatchPlanDatesRequest struct {
	StartDate  *string `json:"start_date" binding:"omitempty,plandate"`
	EndDate    *string `json:"end_date"   binding:"omitempty,plandate"`
	Regenerate bool    `json:"regenerate"`
}

// PlanResponse 当前学习计划
type PlanResponse struct {
	ID        string           `json:"id"`
	StartDate string           `json:"start_date"`
	EndDate   string           `json:"end_date"`
	Schedule  planner.Schedule `json:"schedule"`
	Warnings  []string         `json:"warnings"`
	UpdatedAt string           `json:"updated_at"`
}

// ReconcileResponse 重新生成后进度对账的统计
type ReconcileResponse struct {
	Retained int `json:"retained"`
	Reset    int `json:"reset"`
	Created  int `json:"created"`
	Dropped  int `json:"dropped"`
	Archived int `json:"archived"`
}

// GeneratePlanResponse 生成结果
type GeneratePlanResponse struct {
	Plan           PlanResponse      `json:"plan"`
	Reconciliation ReconcileResponse `json:"reconciliation"`
}
