package planner

import (
	pkgerrors "learnpath/backend/pkg/errors"
)

var (
	ErrProgressDayNotFound  = pkgerrors.NewNotFound("进度日期")
	ErrProgressSlotNotFound = pkgerrors.NewNotFound("进度时段")
)

// SetCompletion 在指定 (date, time) 时段上移动主题
//   - completed=true：待完成 → 已完成
//   - completed=false：已完成 → 待完成
//
// 不在源集合中的主题被忽略（幂等），状态随后重新推导。
// 返回修改后的副本，入参保持不变；日期或时段不存在时返回 NotFound。
func SetCompletion(p Progress, date, slotTime string, topics []string, completed bool) (Progress, error) {
	next := p.Clone()

	day, ok := next.Day(date)
	if !ok {
		return nil, ErrProgressDayNotFound
	}
	slot, ok := day.Slot(slotTime)
	if !ok {
		return nil, ErrProgressSlotNotFound
	}

	for _, topic := range topics {
		if completed {
			if contains(slot.PendingTopics, topic) {
				slot.PendingTopics = remove(slot.PendingTopics, topic)
				slot.CompletedTopics = append(slot.CompletedTopics, topic)
			}
			continue
		}
		if contains(slot.CompletedTopics, topic) {
			slot.CompletedTopics = remove(slot.CompletedTopics, topic)
			slot.PendingTopics = append(slot.PendingTopics, topic)
		}
	}

	if slot.CompletedTopics == nil {
		slot.CompletedTopics = []string{}
	}
	if slot.PendingTopics == nil {
		slot.PendingTopics = []string{}
	}
	slot.Status = DeriveStatus(slot.CompletedTopics, slot.PendingTopics)
	return next, nil
}

// MarkTopics 批量标记完成
func MarkTopics(p Progress, date, slotTime string, topics []string) (Progress, error) {
	return SetCompletion(p, date, slotTime, topics, true)
}
