package planner

import "time"

// Summary 进度的只读聚合视图（仪表盘使用）
type Summary struct {
	TotalTopics     int        `json:"total_topics"`
	CompletedTopics int        `json:"completed_topics"`
	CompletionRate  int        `json:"completion_rate"`
	TotalSlots      int        `json:"total_slots"`
	UtilizedSlots   int        `json:"utilized_slots"`
	UtilizationRate int        `json:"utilization_rate"`
	Streak          int        `json:"streak"`
	Trend           []DayTrend `json:"trend"`
}

// DayTrend 每日完成/待完成主题数
type DayTrend struct {
	Date      string `json:"date"`
	Completed int    `json:"completed"`
	Pending   int    `json:"pending"`
}

// Summarize 计算完成率、利用率、连续学习天数与每日趋势
// 连续天数：从 today 向前数有学习记录（存在非 pending 时段）的连续日期；
// today 尚无记录时从昨天开始计算，避免当天未学习就清零
func Summarize(p Progress, today string) Summary {
	var s Summary
	active := make(map[string]bool, len(p))
	s.Trend = make([]DayTrend, 0, len(p))

	for _, day := range p {
		trend := DayTrend{Date: day.Date}
		for _, slot := range day.Slots {
			trend.Completed += len(slot.CompletedTopics)
			trend.Pending += len(slot.PendingTopics)

			s.TotalSlots++
			if slot.Status == StatusCompleted || slot.Status == StatusInProgress {
				s.UtilizedSlots++
				active[day.Date] = true
			}
		}
		s.CompletedTopics += trend.Completed
		s.TotalTopics += trend.Completed + trend.Pending
		s.Trend = append(s.Trend, trend)
	}

	s.CompletionRate = percent(s.CompletedTopics, s.TotalTopics)
	s.UtilizationRate = percent(s.UtilizedSlots, s.TotalSlots)
	s.Streak = streak(active, today)
	return s
}

func streak(active map[string]bool, today string) int {
	day, err := time.Parse(DateLayout, today)
	if err != nil {
		return 0
	}
	if !active[today] {
		day = day.AddDate(0, 0, -1)
	}

	n := 0
	for active[day.Format(DateLayout)] {
		n++
		day = day.AddDate(0, 0, -1)
	}
	return n
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return (part*100 + total/2) / total
}
