package dto

// ── 学习时间偏好 DTO ──

// TimeWindow 休息时间段，时间兼容 "13:00" 与 "01:00 PM"
type TimeWindow struct {
	Start string `json:"start_time" binding:"required,clock"`
	End   string `json:"end_time"   binding:"required,clock"`
}

// SetStudyTimeRequest 整体设置学习时间偏好
type SetStudyTimeRequest struct {
	SessionHours   float64               `json:"session_hours"   binding:"required,gt=0,lte=24"`
	LeisureWindows map[string]TimeWindow `json:"leisure_windows" binding:"required,dive,keys,notblank,endkeys"`
}

// PatchStudyTimeRequest 部分更新，nil 字段保持不变
// LeisureWindows 中出现的时间段逐个覆盖，未出现的保留
type PatchStudyTimeRequest struct {
	SessionHours   *float64              `json:"session_hours"   binding:"omitempty,gt=0,lte=24"`
	LeisureWindows map[string]TimeWindow `json:"leisure_windows" binding:"omitempty,dive,keys,notblank,endkeys"`
}

// StudyTimeResponse 学习时间偏好
type StudyTimeResponse struct {
	SessionHours   float64               `json:"session_hours"`
	LeisureWindows map[string]TimeWindow `json:"leisure_windows"`
	IsDefault      bool                  `json:"is_default"`
	UpdatedAt      string                `json:"updated_at,omitempty"`
}

// PlanRefreshResponse 修改偏好后自动刷新计划的结果
type PlanRefreshResponse struct {
	Attempted bool   `json:"attempted"`
	Refreshed bool   `json:"refreshed"`
	Error     string `json:"error,omitempty"`
}

// PatchStudyTimeResponse 部分更新响应
type PatchStudyTimeResponse struct {
	StudyTime   StudyTimeResponse   `json:"study_time"`
	PlanRefresh PlanRefreshResponse `json:"plan_refresh"`
}
