package planner

import (
	"fmt"
	"sort"
	"time"
)

// DateLayout 计划与进度中日期键的统一格式
const DateLayout = "2006-01-02"

// Slot 一天中的一个学习时段
type Slot struct {
	Time               string   `json:"time"`
	Topics             []string `json:"topics"`
	MostAskedQuestions []string `json:"mostAskedQuestions"`
}

// DayPlan 某一天的学习安排
type DayPlan struct {
	Day   string `json:"day"`
	Slots []Slot `json:"slots"`
}

// Schedule 按日期排列的完整学习计划（与生成服务的 JSON 契约一致）
type Schedule []DayPlan

// Sorted 返回按日期升序排列的副本，同日期保持原有相对顺序
func (s Schedule) Sorted() Schedule {
	out := make(Schedule, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// Day 按日期查找
func (s Schedule) Day(date string) (*DayPlan, bool) {
	for i := range s {
		if s[i].Day == date {
			return &s[i], true
		}
	}
	return nil, false
}

// SlotStatus 时段完成状态
type SlotStatus string

const (
	StatusPending    SlotStatus = "pending"
	StatusInProgress SlotStatus = "in-progress"
	StatusCompleted  SlotStatus = "completed"
)

// ProgressSlot 单个时段的完成情况
// 不变量：CompletedTopics ∩ PendingTopics = ∅，Status 由两个集合唯一决定
type ProgressSlot struct {
	Time            string     `json:"time"`
	CompletedTopics []string   `json:"completedTopics"`
	PendingTopics   []string   `json:"pendingTopics"`
	Status          SlotStatus `json:"status"`
}

// ProgressDay 某一天的进度记录
type ProgressDay struct {
	Date  string         `json:"date"`
	Slots []ProgressSlot `json:"slots"`
}

// Progress 按日期排列的进度记录
type Progress []ProgressDay

// DeriveStatus 根据已完成/待完成集合推导状态
//   - 无已完成主题 → pending（包括两个集合都为空的情况）
//   - 有已完成且无待完成 → completed
//   - 其余 → in-progress
func DeriveStatus(completed, pending []string) SlotStatus {
	switch {
	case len(completed) == 0:
		return StatusPending
	case len(pending) == 0:
		return StatusCompleted
	default:
		return StatusInProgress
	}
}

// FreshSlot 首次观察到的时段：全部主题待完成
func FreshSlot(slot Slot) ProgressSlot {
	return ProgressSlot{
		Time:            slot.Time,
		CompletedTopics: []string{},
		PendingTopics:   UniqueTopics(slot.Topics),
		Status:          StatusPending,
	}
}

func (s ProgressSlot) clone() ProgressSlot {
	return ProgressSlot{
		Time:            s.Time,
		CompletedTopics: cloneStrings(s.CompletedTopics),
		PendingTopics:   cloneStrings(s.PendingTopics),
		Status:          s.Status,
	}
}

func (d ProgressDay) clone() ProgressDay {
	slots := make([]ProgressSlot, len(d.Slots))
	for i := range d.Slots {
		slots[i] = d.Slots[i].clone()
	}
	return ProgressDay{Date: d.Date, Slots: slots}
}

// Clone 深拷贝，修改副本不会影响原进度
func (p Progress) Clone() Progress {
	if p == nil {
		return nil
	}
	out := make(Progress, len(p))
	for i := range p {
		out[i] = p[i].clone()
	}
	return out
}

// Day 按日期查找进度日
func (p Progress) Day(date string) (*ProgressDay, bool) {
	for i := range p {
		if p[i].Date == date {
			return &p[i], true
		}
	}
	return nil, false
}

// Slot 按时段标签查找
func (d *ProgressDay) Slot(label string) (*ProgressSlot, bool) {
	for i := range d.Slots {
		if d.Slots[i].Time == label {
			return &d.Slots[i], true
		}
	}
	return nil, false
}

// ParseDate 校验并解析 YYYY-MM-DD
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("日期 %q 格式无效，应为 YYYY-MM-DD", s)
	}
	return t, nil
}

// DateRange 枚举 [start, end) 内的所有日期
func DateRange(start, end string) ([]string, error) {
	from, err := ParseDate(start)
	if err != nil {
		return nil, err
	}
	to, err := ParseDate(end)
	if err != nil {
		return nil, err
	}
	var dates []string
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateLayout))
	}
	return dates, nil
}

// Today 给定时区下的当天日期
func Today(now time.Time, loc *time.Location) string {
	if loc != nil {
		now = now.In(loc)
	}
	return now.Format(DateLayout)
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
