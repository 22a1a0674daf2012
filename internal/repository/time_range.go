package repository

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// DayRange 将 YYYY-MM-DD 解析为 loc 时区下当日的毫秒时间戳 [start, end]（闭区间）。
func DayRange(date string, loc *time.Location) (startMs int64, endMs int64, err error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return 0, 0, fmt.Errorf("解析日期失败: %w", err)
	}
	start := t.UnixMilli()
	end := t.AddDate(0, 0, 1).UnixMilli() - 1
	return start, end, nil
}

// DateBounds 把闭区间日期 [startDate, endDate] 转成毫秒边界。
// 任一侧为空串表示该侧不设限，对应返回 0。
func DateBounds(startDate, endDate string, loc *time.Location) (startMs int64, endMs int64, err error) {
	if startDate != "" {
		if startMs, _, err = DayRange(startDate, loc); err != nil {
			return 0, 0, err
		}
	}
	if endDate != "" {
		if _, endMs, err = DayRange(endDate, loc); err != nil {
			return 0, 0, err
		}
	}
	if startMs > 0 && endMs > 0 && startMs > endMs {
		return 0, 0, fmt.Errorf("开始日期 %s 晚于结束日期 %s", startDate, endDate)
	}
	return startMs, endMs, nil
}

// RecordFilter 会话查询条件；零值字段表示不限制。
type RecordFilter struct {
	StartMs       int64
	EndMs         int64
	SubjectAreaID *int64
	Limit         int
	Offset        int // 仅在 Limit>0 时生效
}
