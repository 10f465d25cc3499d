package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"learnpath/backend/config"
	"learnpath/backend/internal/model"
	"learnpath/backend/internal/planner"
	"learnpath/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成导出文件失败")

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
// 每个月一个 Sheet，每行一个时段。
type ExportService interface {
	// ExportPlan 导出当前计划及进度为 Excel
	ExportPlan(ctx context.Context, userID string) (*bytes.Buffer, string, error)
	// ExportCalendar 导出当前计划为 iCalendar，每个（日期, 时段）一个 VEVENT
	ExportCalendar(ctx context.Context, userID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
// 日历事件的时段按 cfg.Timezone 解释
func NewExportService(repo *repository.Repository, cfg *config.PlannerConfig, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, loc: cfg.Location(), now: time.Now, logger: logger}
}

var exportHeaders = []string{"日期", "时段", "主题", "高频考题", "状态", "已完成", "待完成"}

var exportColWidths = []float64{12, 14, 40, 50, 12, 30, 30}

// ═══════════════════════════════════════════════════════════
// ExportPlan — 导出学习计划为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "2024-01" / "2024-02"（按月份分）
//   - 列：日期 | 时段 | 主题 | 高频考题 | 状态 | 已完成 | 待完成
//   - 没有进度记录的时段状态列为 "-"
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportPlan(ctx context.Context, userID string) (*bytes.Buffer, string, error) {
	// 1. 查询计划与进度（进度可选）
	plan, progress, err := s.loadPlan(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	// 2. 按月份分组
	schedule := plan.Schedule.Data().Sorted()
	var months []string
	byMonth := make(map[string][]planner.DayPlan)
	for _, day := range schedule {
		month := day.Day
		if len(month) >= 7 {
			month = month[:7]
		}
		if _, ok := byMonth[month]; !ok {
			months = append(months, month)
		}
		byMonth[month] = append(byMonth[month], day)
	}
	if len(months) == 0 {
		months = []string{"计划"}
	}

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	wrapStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})

	for i, month := range months {
		if i == 0 {
			f.SetSheetName("Sheet1", month)
		} else if _, err := f.NewSheet(month); err != nil {
			s.logger.Error("创建 Sheet 失败", zap.String("sheet", month), zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}

		for col, width := range exportColWidths {
			name := colName(col)
			f.SetColWidth(month, name, name, width)
		}
		for col, title := range exportHeaders {
			f.SetCellValue(month, cell(colName(col), 1), title)
		}
		f.SetCellStyle(month, "A1", cell(colName(len(exportHeaders)-1), 1), headerStyle)

		row := 2
		for _, day := range byMonth[month] {
			progressDay, _ := progress.Day(day.Day)
			for _, slot := range day.Slots {
				status, completed, pending := "-", "", ""
				if progressDay != nil {
					if ps, ok := progressDay.Slot(slot.Time); ok {
						status = string(ps.Status)
						completed = strings.Join(ps.CompletedTopics, "\n")
						pending = strings.Join(ps.PendingTopics, "\n")
					}
				}

				values := []interface{}{
					day.Day,
					slot.Time,
					strings.Join(slot.Topics, "\n"),
					strings.Join(slot.MostAskedQuestions, "\n"),
					status,
					completed,
					pending,
				}
				for col, v := range values {
					f.SetCellValue(month, cell(colName(col), row), v)
				}
				row++
			}
		}
		if row > 2 {
			f.SetCellStyle(month, "A2", cell(colName(len(exportHeaders)-1), row-1), wrapStyle)
		}
	}
	f.SetActiveSheet(0)

	// 4. 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("学习计划_%s_%s.xlsx", plan.StartDate, plan.EndDate)
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportCalendar — 导出学习计划为 iCalendar
// ═══════════════════════════════════════════════════════════
//
// 每个（日期, 时段）一个 VEVENT：
//   - SUMMARY 为主题列表，DESCRIPTION 附带高频考题与进度状态
//   - 时段标签形如 "09:00-10:30" 或 "09:00 AM - 10:30 AM"，无法解析时生成全天事件
//   - UID 由用户、日期与时段序号组成，重复导入时日历软件按 UID 覆盖

func (s *exportService) ExportCalendar(ctx context.Context, userID string) (*bytes.Buffer, string, error) {
	plan, progress, err := s.loadPlan(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//learnpath//study plan//ZH")
	cal.SetXWRCalName(fmt.Sprintf("学习计划 %s ~ %s", plan.StartDate, plan.EndDate))
	cal.SetXWRTimezone(s.loc.String())

	stamp := s.now()
	for _, day := range plan.Schedule.Data().Sorted() {
		date, err := planner.ParseDate(day.Day)
		if err != nil {
			s.logger.Warn("跳过无效日期", zap.String("day", day.Day))
			continue
		}
		progressDay, _ := progress.Day(day.Day)

		for i, slot := range day.Slots {
			event := cal.AddEvent(fmt.Sprintf("%s-%s-%d@learnpath", userID, day.Day, i))
			event.SetDtStampTime(stamp)
			event.SetSummary(strings.Join(slot.Topics, " / "))

			if start, end, ok := slotBounds(date, slot.Time, s.loc); ok {
				event.SetStartAt(start)
				event.SetEndAt(end)
			} else {
				event.SetAllDayStartAt(date)
				event.SetAllDayEndAt(date.AddDate(0, 0, 1))
			}

			status := "-"
			if progressDay != nil {
				if ps, ok := progressDay.Slot(slot.Time); ok {
					status = string(ps.Status)
				}
			}
			event.SetDescription(calendarDescription(slot, status))
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("学习计划_%s_%s.ics", plan.StartDate, plan.EndDate)
	return buf, filename, nil
}

func (s *exportService) loadPlan(ctx context.Context, userID string) (*model.Plan, planner.Progress, error) {
	plan, err := s.repo.Plan.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrPlanNotFound
		}
		s.logger.Error("查询计划失败", zap.Error(err))
		return nil, nil, err
	}

	progress, err := loadProgressDays(ctx, s.repo, userID)
	if err != nil {
		s.logger.Error("查询进度失败", zap.Error(err))
		return nil, nil, err
	}
	return plan, progress, nil
}

// ── 辅助函数 ──

// slotBounds 把时段标签解析为当天的起止时间
func slotBounds(date time.Time, label string, loc *time.Location) (time.Time, time.Time, bool) {
	parts := strings.Split(label, "-")
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, false
	}
	from, err := planner.ParseClock(parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	to, err := planner.ParseClock(parts[1])
	if err != nil || to <= from {
		return time.Time{}, time.Time{}, false
	}
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	return midnight.Add(time.Duration(from) * time.Minute), midnight.Add(time.Duration(to) * time.Minute), true
}

func calendarDescription(slot planner.Slot, status string) string {
	var b strings.Builder
	b.WriteString("主题: " + strings.Join(slot.Topics, ", "))
	if len(slot.MostAskedQuestions) > 0 {
		b.WriteString("\n高频考题:")
		for _, q := range slot.MostAskedQuestions {
			b.WriteString("\n- " + q)
		}
	}
	b.WriteString("\n状态: " + status)
	return b.String()
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
