package service

import (
	"context"
	"time"
)

// TimeBucket 一天中的时段
type TimeBucket string

const (
	BucketMorning   TimeBucket = "morning"   // [5, 12)
	BucketAfternoon TimeBucket = "afternoon" // [12, 17)
	BucketEvening   TimeBucket = "evening"   // [17, 22)
	BucketNight     TimeBucket = "night"     // [22, 5)
)

// BucketOf 返回小时所属时段
func BucketOf(hour int) TimeBucket {
	switch {
	case hour >= 5 && hour < 12:
		return BucketMorning
	case hour >= 12 && hour < 17:
		return BucketAfternoon
	case hour >= 17 && hour < 22:
		return BucketEvening
	default:
		return BucketNight
	}
}

var bucketOrder = []TimeBucket{BucketMorning, BucketAfternoon, BucketEvening, BucketNight}

// TrendDirection 学习量趋势
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// StudyTimeSlot 单个时段的累计学习
type StudyTimeSlot struct {
	Period       TimeBucket `json:"period"`
	TotalMinutes int        `json:"total_minutes"`
	SessionCount int        `json:"session_count"`
}

// BestStudyTimes 各时段学习分布
type BestStudyTimes struct {
	Slots      []StudyTimeSlot `json:"slots"`
	BestPeriod *TimeBucket     `json:"best_period"`
}

// ProductivityTrend 最近窗口与前一等长窗口的对比
type ProductivityTrend struct {
	Direction       TrendDirection `json:"direction"`
	WindowDays      int            `json:"window_days"`
	RecentMinutes   int            `json:"recent_minutes"`
	PreviousMinutes int            `json:"previous_minutes"`
	ChangePercent   *float64       `json:"change_percent"` // 基线为 0 时为空
}

// StudyInsights 学习洞察
type StudyInsights struct {
	PreferredMethod    *ActivityType     `json:"preferred_method"`
	BestStudyTimes     BestStudyTimes    `json:"best_study_times"`
	ProductivityTrends ProductivityTrend `json:"productivity_trends"`
	Recommendations    []Insight         `json:"recommendations"`
}

// InsightService 学习洞察服务
type InsightService struct {
	history RecordSource
	tuning  *TuningStore
	clock   Clock
}

// NewInsightService 创建洞察服务
func NewInsightService(history RecordSource, tuning *TuningStore, clock Clock) *InsightService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &InsightService{history: history, tuning: tuning, clock: clock}
}

// GetStudyInsights 计算偏好方法、时段分布、趋势与建议
func (s *InsightService) GetStudyInsights(ctx context.Context, userID int64) (*StudyInsights, error) {
	if userID <= 0 {
		return nil, invalidArgument("user_id=%d", userID)
	}
	t := s.tuning.Load()
	loc := s.history.Location()
	now := s.clock.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	endMs := today.AddDate(0, 0, 1).UnixMilli() - 1

	span := max(t.PreferredWindowDays, 2*t.TrendWindowDays, t.RecommendationWindowDays)
	records, err := s.history.Collect(ctx, userID, RecordQuery{
		StartMs: windowStart(today, span).UnixMilli(),
		EndMs:   endMs,
	})
	if err != nil {
		return nil, err
	}

	preferred := since(records, windowStart(today, t.PreferredWindowDays))
	recommendStats := Aggregate(since(records, windowStart(today, t.RecommendationWindowDays)), loc)

	return &StudyInsights{
		PreferredMethod:    PreferredMethod(preferred),
		BestStudyTimes:     BestTimes(preferred, loc),
		ProductivityTrends: Trend(records, today, t),
		Recommendations:    EvaluateInsights(recommendStats.Snapshot(), t),
	}, nil
}

// PreferredMethod 学习总时长更多的方式（不含休息）；无数据或完全持平时为 nil
func PreferredMethod(records []ActivityRecord) *ActivityType {
	var tt, pomo int
	for _, rec := range records {
		switch {
		case rec.Type == ActivityTimeTracking:
			tt += rec.DurationMinutes
		case rec.IsFocus():
			pomo += rec.DurationMinutes
		}
	}
	var m ActivityType
	switch {
	case tt > pomo:
		m = ActivityTimeTracking
	case pomo > tt:
		m = ActivityPomodoro
	default:
		return nil
	}
	return &m
}

// BestTimes 按开始小时归入四个时段；BestPeriod 为分钟数最多的时段
func BestTimes(records []ActivityRecord, loc *time.Location) BestStudyTimes {
	slots := make(map[TimeBucket]*StudyTimeSlot, len(bucketOrder))
	for _, b := range bucketOrder {
		slots[b] = &StudyTimeSlot{Period: b}
	}
	for _, rec := range records {
		if rec.IsBreak() {
			continue
		}
		slot := slots[BucketOf(rec.StartedAt.In(loc).Hour())]
		slot.TotalMinutes += rec.DurationMinutes
		slot.SessionCount++
	}

	out := BestStudyTimes{Slots: make([]StudyTimeSlot, 0, len(bucketOrder))}
	best := 0
	for _, b := range bucketOrder {
		slot := *slots[b]
		out.Slots = append(out.Slots, slot)
		if slot.TotalMinutes > best {
			best = slot.TotalMinutes
			period := b
			out.BestPeriod = &period
		}
	}
	return out
}

// Trend 比较以 today 结尾的最近窗口与其之前的等长窗口
func Trend(records []ActivityRecord, today time.Time, t Tuning) ProductivityTrend {
	days := t.TrendWindowDays
	if days <= 0 {
		days = DefaultTuning().TrendWindowDays
	}
	recentFrom := windowStart(today, days)
	previousFrom := recentFrom.AddDate(0, 0, -days)

	out := ProductivityTrend{Direction: TrendStable, WindowDays: days}
	for _, rec := range records {
		if rec.IsBreak() || rec.StartedAt.Before(previousFrom) {
			continue
		}
		if rec.StartedAt.Before(recentFrom) {
			out.PreviousMinutes += rec.DurationMinutes
		} else {
			out.RecentMinutes += rec.DurationMinutes
		}
	}

	if out.PreviousMinutes == 0 {
		if out.RecentMinutes > 0 {
			out.Direction = TrendImproving
		}
		return out
	}
	change := round1(float64(out.RecentMinutes-out.PreviousMinutes) / float64(out.PreviousMinutes) * 100)
	out.ChangePercent = &change
	switch {
	case change > t.TrendChangePercent:
		out.Direction = TrendImproving
	case change < -t.TrendChangePercent:
		out.Direction = TrendDeclining
	}
	return out
}

// windowStart 返回包含 today 在内、共 days 天窗口的起始时刻
func windowStart(today time.Time, days int) time.Time {
	if days < 1 {
		days = 1
	}
	return today.AddDate(0, 0, -(days - 1))
}

// since 保留 from 及之后开始的记录
func since(records []ActivityRecord, from time.Time) []ActivityRecord {
	out := make([]ActivityRecord, 0, len(records))
	for _, rec := range records {
		if !rec.StartedAt.Before(from) {
			out = append(out, rec)
		}
	}
	return out
}
