package planner

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	pkgerrors "learnpath/backend/pkg/errors"
)

var fencePattern = regexp.MustCompile("```[a-zA-Z]*")

// StripCodeFences 去掉上游可能包裹的 ``` / ```json 标记
func StripCodeFences(raw string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(raw, ""))
}

// ParseSchedule 严格解析生成服务返回的计划 JSON
// 失败时返回携带原始文本的 ResponseFormatError，从不回退为空计划
func ParseSchedule(raw string) (Schedule, error) {
	body := StripCodeFences(raw)
	if body == "" {
		return nil, &pkgerrors.ResponseFormatError{Raw: raw, Err: errors.New("响应为空")}
	}

	var schedule Schedule
	if err := json.Unmarshal([]byte(body), &schedule); err != nil {
		return nil, &pkgerrors.ResponseFormatError{Raw: raw, Err: err}
	}
	if schedule == nil {
		return nil, &pkgerrors.ResponseFormatError{Raw: raw, Err: errors.New("响应不是计划数组")}
	}

	return normalize(schedule), nil
}

// normalize 清理主题与问题中的空白项，按日期排序
func normalize(s Schedule) Schedule {
	out := make(Schedule, 0, len(s))
	for _, day := range s {
		nd := DayPlan{Day: strings.TrimSpace(day.Day), Slots: make([]Slot, 0, len(day.Slots))}
		for _, slot := range day.Slots {
			questions := CleanTopics(slot.MostAskedQuestions)
			nd.Slots = append(nd.Slots, Slot{
				Time:               strings.TrimSpace(slot.Time),
				Topics:             CleanTopics(slot.Topics),
				MostAskedQuestions: questions,
			})
		}
		out = append(out, nd)
	}
	return out.Sorted()
}
