package planner

import "sort"

// ════════════════════════════════════════════════════════════
// Reconcile — 新计划与旧进度对账
// ════════════════════════════════════════════════════════════
//
// 时段身份由 (date, time) 决定：
//   1. 旧进度中无对应时段 → 新建（全部待完成）
//   2. 有对应时段且主题集合相同（忽略顺序/重复）→ 原样保留
//   3. 有对应时段但主题集合变化 → 重置为待完成
//   4. 旧进度中存在、新计划中已不存在的时段/日期 → 丢弃；
//      但日期严格早于 today 的保留为历史记录
//
// 输出按日期升序。old 为 nil 时等价于初始化进度。
// 函数不修改入参，相同输入与 today 总得到相同输出。

func Reconcile(schedule Schedule, old Progress, today string) Progress {
	oldDays := make(map[string]*ProgressDay, len(old))
	for i := range old {
		if _, dup := oldDays[old[i].Date]; !dup {
			oldDays[old[i].Date] = &old[i]
		}
	}

	days := schedule.Sorted()
	out := make(Progress, 0, len(days)+len(old))
	covered := make(map[string]bool, len(days))

	for _, day := range days {
		if covered[day.Day] {
			continue
		}
		covered[day.Day] = true

		prior := oldDays[day.Day]
		pd := ProgressDay{Date: day.Day, Slots: make([]ProgressSlot, 0, len(day.Slots))}
		planned := make(map[string]bool, len(day.Slots))

		for _, slot := range day.Slots {
			if planned[slot.Time] {
				continue
			}
			planned[slot.Time] = true

			var priorSlot *ProgressSlot
			if prior != nil {
				priorSlot, _ = prior.Slot(slot.Time)
			}
			pd.Slots = append(pd.Slots, reconcileSlot(slot, priorSlot))
		}

		// 过去日期中已从计划移除的时段作为历史保留
		if prior != nil && day.Day < today {
			for _, s := range prior.Slots {
				if !planned[s.Time] {
					planned[s.Time] = true
					pd.Slots = append(pd.Slots, s.clone())
				}
			}
		}

		out = append(out, pd)
	}

	for _, d := range old {
		if covered[d.Date] || d.Date >= today {
			continue
		}
		covered[d.Date] = true
		out = append(out, d.clone())
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Initialize 基于计划生成初始进度
func Initialize(schedule Schedule) Progress {
	return Reconcile(schedule, nil, "")
}

func reconcileSlot(slot Slot, prior *ProgressSlot) ProgressSlot {
	if prior == nil {
		return FreshSlot(slot)
	}

	oldTopics := make([]string, 0, len(prior.CompletedTopics)+len(prior.PendingTopics))
	oldTopics = append(oldTopics, prior.CompletedTopics...)
	oldTopics = append(oldTopics, prior.PendingTopics...)

	if SameTopicSet(oldTopics, slot.Topics) {
		return prior.clone()
	}
	return FreshSlot(slot)
}

// ReconcileStats 对账结果统计，用于日志
type ReconcileStats struct {
	Retained int
	Reset    int
	Created  int
	Dropped  int
	Archived int
}

// Diff 统计 old → next 中各时段的去向
func Diff(schedule Schedule, old Progress, today string) ReconcileStats {
	var stats ReconcileStats

	oldDays := make(map[string]*ProgressDay, len(old))
	for i := range old {
		if _, dup := oldDays[old[i].Date]; !dup {
			oldDays[old[i].Date] = &old[i]
		}
	}

	planned := make(map[string]map[string]bool)
	for _, day := range schedule {
		if planned[day.Day] == nil {
			planned[day.Day] = make(map[string]bool)
		}
		prior := oldDays[day.Day]
		for _, slot := range day.Slots {
			if planned[day.Day][slot.Time] {
				continue
			}
			planned[day.Day][slot.Time] = true

			var priorSlot *ProgressSlot
			if prior != nil {
				priorSlot, _ = prior.Slot(slot.Time)
			}
			switch {
			case priorSlot == nil:
				stats.Created++
			case SameTopicSet(append(cloneStrings(priorSlot.CompletedTopics), priorSlot.PendingTopics...), slot.Topics):
				stats.Retained++
			default:
				stats.Reset++
			}
		}
	}

	for date, day := range oldDays {
		for _, s := range day.Slots {
			if planned[date][s.Time] {
				continue
			}
			if date < today {
				stats.Archived++
			} else {
				stats.Dropped++
			}
		}
	}
	return stats
}
