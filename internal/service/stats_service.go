package service

import (
	"context"
	"math"
	"sort"
	"time"
)

// Period 统计周期（闭区间日期，空串表示不限）
type Period struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// StatsOverview 总览
type StatsOverview struct {
	TotalStudyTime       int     `json:"total_study_time"` // 分钟，包含番茄钟休息
	TotalSessions        int     `json:"total_sessions"`
	AverageSessionLength float64 `json:"average_session_length"`
	StudyDays            int     `json:"study_days"`
}

// TimeTrackingBreakdown 计时学习统计
type TimeTrackingBreakdown struct {
	TotalSessions   int     `json:"total_sessions"`
	TotalDuration   int     `json:"total_duration"`
	AverageDuration float64 `json:"average_duration"`
	LongestSession  int     `json:"longest_session"`
}

// PomodoroBreakdown 番茄钟统计；专注类字段只统计 focus 会话
type PomodoroBreakdown struct {
	FocusSessions            int     `json:"focus_sessions"`
	CompletedFocusSessions   int     `json:"completed_focus_sessions"`
	InterruptedFocusSessions int     `json:"interrupted_focus_sessions"`
	TotalFocusTime           int     `json:"total_focus_time"`
	CompletionRate           float64 `json:"completion_rate"`
	AverageFocusDuration     float64 `json:"average_focus_duration"`
	BreakSessions            int     `json:"break_sessions"`
	TotalBreakTime           int     `json:"total_break_time"`
}

// MethodBreakdown 按学习方式拆分
type MethodBreakdown struct {
	TimeTracking TimeTrackingBreakdown `json:"time_tracking"`
	Pomodoro     PomodoroBreakdown     `json:"pomodoro"`
}

// SubjectBreakdown 单个科目的统计
type SubjectBreakdown struct {
	SubjectAreaName      string  `json:"subject_area_name"`
	ExamTypeName         *string `json:"exam_type_name"`
	TotalDuration        int     `json:"total_duration"`
	SessionCount         int     `json:"session_count"`
	TimeTrackingDuration int     `json:"time_tracking_duration"`
	PomodoroDuration     int     `json:"pomodoro_duration"`
}

// DailyBreakdown 单日学习分钟数（稀疏，仅含有记录的日期）
type DailyBreakdown struct {
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
}

// StatsSnapshot 聚合结果中供规则评估的部分
type StatsSnapshot struct {
	Overview StatsOverview   `json:"overview"`
	ByMethod MethodBreakdown `json:"by_method"`
}

// UnifiedStats 统一统计结果
type UnifiedStats struct {
	Period           Period             `json:"period"`
	Overview         StatsOverview      `json:"overview"`
	ByMethod         MethodBreakdown    `json:"by_method"`
	SubjectBreakdown []SubjectBreakdown `json:"subject_breakdown"`
	DailyBreakdown   []DailyBreakdown   `json:"daily_breakdown"`
	Insights         []Insight          `json:"insights"`
}

// Snapshot 返回用于规则评估的快照
func (s *UnifiedStats) Snapshot() StatsSnapshot {
	return StatsSnapshot{Overview: s.Overview, ByMethod: s.ByMethod}
}

// StatsService 统计聚合服务
type StatsService struct {
	history RecordSource
	tuning  *TuningStore
}

// NewStatsService 创建统计服务
func NewStatsService(history RecordSource, tuning *TuningStore) *StatsService {
	return &StatsService{history: history, tuning: tuning}
}

// GetUnifiedStats 获取指定周期的统一统计
func (s *StatsService) GetUnifiedStats(ctx context.Context, userID int64, period Period) (*UnifiedStats, error) {
	if userID <= 0 {
		return nil, invalidArgument("user_id=%d", userID)
	}
	startMs, endMs, err := s.history.Bounds(period.StartDate, period.EndDate)
	if err != nil {
		return nil, err
	}
	records, err := s.history.Collect(ctx, userID, RecordQuery{StartMs: startMs, EndMs: endMs})
	if err != nil {
		return nil, err
	}

	stats := Aggregate(records, s.history.Location())
	stats.Period = period
	stats.Insights = EvaluateInsights(stats.Snapshot(), s.tuning.Load())
	return stats, nil
}

// Aggregate 对已合并的记录做纯计算聚合（不含 period 与 insights）
func Aggregate(records []ActivityRecord, loc *time.Location) *UnifiedStats {
	if loc == nil {
		loc = time.Local
	}
	out := &UnifiedStats{
		SubjectBreakdown: []SubjectBreakdown{},
		DailyBreakdown:   []DailyBreakdown{},
		Insights:         []Insight{},
	}

	days := make(map[string]int)
	subjects := make(map[string]*SubjectBreakdown)
	tt := &out.ByMethod.TimeTracking
	pomo := &out.ByMethod.Pomodoro

	for _, rec := range records {
		out.Overview.TotalSessions++
		out.Overview.TotalStudyTime += rec.DurationMinutes
		days[rec.StartedAt.In(loc).Format("2006-01-02")] += rec.DurationMinutes

		switch {
		case rec.Type == ActivityTimeTracking:
			tt.TotalSessions++
			tt.TotalDuration += rec.DurationMinutes
			if rec.DurationMinutes > tt.LongestSession {
				tt.LongestSession = rec.DurationMinutes
			}
		case rec.IsFocus():
			pomo.FocusSessions++
			pomo.TotalFocusTime += rec.DurationMinutes
			if rec.WasInterrupted {
				pomo.InterruptedFocusSessions++
			} else {
				pomo.CompletedFocusSessions++
			}
		case rec.IsBreak():
			pomo.BreakSessions++
			pomo.TotalBreakTime += rec.DurationMinutes
		}

		if rec.SubjectAreaName == nil {
			continue
		}
		name := *rec.SubjectAreaName
		row, ok := subjects[name]
		if !ok {
			row = &SubjectBreakdown{SubjectAreaName: name, ExamTypeName: rec.ExamTypeName}
			subjects[name] = row
		}
		row.SessionCount++
		row.TotalDuration += rec.DurationMinutes
		if rec.Type == ActivityTimeTracking {
			row.TimeTrackingDuration += rec.DurationMinutes
		} else {
			row.PomodoroDuration += rec.DurationMinutes
		}
	}

	out.Overview.StudyDays = len(days)
	out.Overview.AverageSessionLength = average(out.Overview.TotalStudyTime, out.Overview.TotalSessions)
	tt.AverageDuration = average(tt.TotalDuration, tt.TotalSessions)
	pomo.AverageFocusDuration = average(pomo.TotalFocusTime, pomo.FocusSessions)
	pomo.CompletionRate = CompletionRate(pomo.CompletedFocusSessions, pomo.FocusSessions)

	for _, row := range subjects {
		out.SubjectBreakdown = append(out.SubjectBreakdown, *row)
	}
	sort.Slice(out.SubjectBreakdown, func(i, j int) bool {
		a, b := out.SubjectBreakdown[i], out.SubjectBreakdown[j]
		if a.TotalDuration != b.TotalDuration {
			return a.TotalDuration > b.TotalDuration
		}
		return a.SubjectAreaName < b.SubjectAreaName
	})

	for date, minutes := range days {
		out.DailyBreakdown = append(out.DailyBreakdown, DailyBreakdown{Date: date, Minutes: minutes})
	}
	sort.Slice(out.DailyBreakdown, func(i, j int) bool {
		return out.DailyBreakdown[i].Date < out.DailyBreakdown[j].Date
	})

	return out
}

// CompletionRate 未被打断的专注次数占比（百分比，保留 1 位小数）；无专注会话时为 0
func CompletionRate(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return round1(float64(completed) / float64(total) * 100)
}

func average(sum, count int) float64 {
	if count == 0 {
		return 0
	}
	return float64(sum) / float64(count)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
