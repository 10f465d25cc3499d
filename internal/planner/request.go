package planner

import (
	"fmt"
	"sort"
	"strings"
	"time"

	pkgerrors "learnpath/backend/pkg/errors"
)

// TimeWindow 一段需要避开的休息时间
// 时间格式兼容 "13:00" 与 "01:00 PM"
type TimeWindow struct {
	Start string `json:"start_time"`
	End   string `json:"end_time"`
}

// GenerationRequest 计划生成入参
type GenerationRequest struct {
	UserID           string
	SyllabusTopics   []string
	ModelQuestions   []string
	StartDate        string
	EndDate          string
	SessionHours     float64
	LeisureWindows   map[string]TimeWindow
	PriorPlan        Schedule
	IncludeQuestions bool
}

var clockLayouts = []string{"15:04", "03:04 PM", "3:04 PM", "03:04PM", "3:04PM"}

// ParseClock 解析一天中的时刻，返回自 00:00 起的分钟数
func ParseClock(s string) (int, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour()*60 + t.Minute(), nil
		}
	}
	return 0, fmt.Errorf("时间 %q 格式无效", s)
}

// Validate 校验调用方输入，违反约束时返回 ValidationError
func (r *GenerationRequest) Validate() error {
	start, err := ParseDate(r.StartDate)
	if err != nil {
		return pkgerrors.NewValidation("start_date", err.Error())
	}
	end, err := ParseDate(r.EndDate)
	if err != nil {
		return pkgerrors.NewValidation("end_date", err.Error())
	}
	if !start.Before(end) {
		return pkgerrors.NewValidation("start_date", "必须早于 end_date")
	}
	if r.SessionHours <= 0 {
		return pkgerrors.NewValidation("session_hours", "必须大于 0")
	}
	if len(CleanTopics(r.SyllabusTopics)) == 0 {
		return pkgerrors.NewValidation("syllabus", "至少需要一个大纲主题")
	}
	for _, name := range r.windowNames() {
		w := r.LeisureWindows[name]
		from, err := ParseClock(w.Start)
		if err != nil {
			return pkgerrors.NewValidation("leisure."+name, err.Error())
		}
		to, err := ParseClock(w.End)
		if err != nil {
			return pkgerrors.NewValidation("leisure."+name, err.Error())
		}
		if from >= to {
			return pkgerrors.NewValidation("leisure."+name, "开始时间必须早于结束时间")
		}
	}
	return nil
}

func (r *GenerationRequest) windowNames() []string {
	names := make([]string, 0, len(r.LeisureWindows))
	for name := range r.LeisureWindows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
