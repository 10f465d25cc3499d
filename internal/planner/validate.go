package planner

import (
	"fmt"
	"strings"
)

// SchemaPolicy 计划软约束违规时的处理策略
type SchemaPolicy string

const (
	PolicyReject SchemaPolicy = "reject"
	PolicyWarn   SchemaPolicy = "warn"
)

// Rules 生成计划的校验规则
type Rules struct {
	StartDate           string
	EndDate             string
	MinTopicsPerSlot    int
	MinQuestionsPerSlot int
	RequireQuestions    bool
}

// Violations 校验结果
//   - Structural：对账依赖的结构性问题，任何策略下都拒绝
//   - Soft：数量/覆盖范围问题，按 SchemaPolicy 决定拒绝或告警
type Violations struct {
	Structural []string
	Soft       []string
}

// Empty 是否无任何违规
func (v Violations) Empty() bool {
	return len(v.Structural) == 0 && len(v.Soft) == 0
}

// All 合并全部违规信息
func (v Violations) All() []string {
	out := make([]string, 0, len(v.Structural)+len(v.Soft))
	out = append(out, v.Structural...)
	return append(out, v.Soft...)
}

// ValidateSchedule 检查计划是否满足结构与数量约束
func ValidateSchedule(s Schedule, rules Rules) Violations {
	var v Violations
	seenDays := make(map[string]bool, len(s))

	for _, day := range s {
		if _, err := ParseDate(day.Day); err != nil {
			v.Structural = append(v.Structural, err.Error())
			continue
		}
		if seenDays[day.Day] {
			v.Structural = append(v.Structural, fmt.Sprintf("%s: 日期重复", day.Day))
			continue
		}
		seenDays[day.Day] = true

		if len(day.Slots) == 0 {
			v.Structural = append(v.Structural, fmt.Sprintf("%s: 没有任何时段", day.Day))
			continue
		}
		if rules.StartDate != "" && day.Day < rules.StartDate || rules.EndDate != "" && day.Day >= rules.EndDate {
			v.Soft = append(v.Soft, fmt.Sprintf("%s: 超出计划日期范围", day.Day))
		}

		// 数量约束按天计算：当天至少有一个时段满足即可
		seenTimes := make(map[string]bool, len(day.Slots))
		maxTopics, maxQuestions := 0, 0
		for _, slot := range day.Slots {
			if slot.Time == "" {
				v.Structural = append(v.Structural, fmt.Sprintf("%s: 存在空的时段标签", day.Day))
				continue
			}
			if seenTimes[slot.Time] {
				v.Structural = append(v.Structural, fmt.Sprintf("%s %s: 时段标签重复", day.Day, slot.Time))
				continue
			}
			seenTimes[slot.Time] = true

			if len(slot.Topics) == 0 {
				v.Structural = append(v.Structural, fmt.Sprintf("%s %s: 主题为空", day.Day, slot.Time))
				continue
			}
			maxTopics = max(maxTopics, len(slot.Topics))
			maxQuestions = max(maxQuestions, len(slot.MostAskedQuestions))
		}
		if maxTopics == 0 {
			continue
		}
		if maxTopics < rules.MinTopicsPerSlot {
			v.Soft = append(v.Soft, fmt.Sprintf("%s: 没有主题数达到 %d 的时段（最多 %d）", day.Day, rules.MinTopicsPerSlot, maxTopics))
		}
		if rules.RequireQuestions && maxQuestions < rules.MinQuestionsPerSlot {
			v.Soft = append(v.Soft, fmt.Sprintf("%s: 没有高频问题数达到 %d 的时段（最多 %d）", day.Day, rules.MinQuestionsPerSlot, maxQuestions))
		}
	}

	if rules.StartDate != "" && rules.EndDate != "" {
		if dates, err := DateRange(rules.StartDate, rules.EndDate); err == nil {
			var missing []string
			for _, d := range dates {
				if !seenDays[d] {
					missing = append(missing, d)
				}
			}
			if len(missing) > 0 {
				v.Soft = append(v.Soft, "缺少日期: "+strings.Join(missing, ","))
			}
		}
	}
	return v
}
