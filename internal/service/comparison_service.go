package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Severity 变化的严重程度
type Severity string

const (
	SeverityPositive Severity = "positive"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
)

// StatsChanges 两期差值，统一为 period1 - period2
type StatsChanges struct {
	TotalStudyTimeChange       int     `json:"total_study_time_change"`
	TotalSessionsChange        int     `json:"total_sessions_change"`
	AverageSessionLengthChange float64 `json:"average_session_length_change"`
	StudyDaysChange            int     `json:"study_days_change"`
	CompletionRateChange       float64 `json:"completion_rate_change"`
}

// ImprovementArea 一条对比结论
type ImprovementArea struct {
	Area     string   `json:"area"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Comparison 两期对比结果
type Comparison struct {
	Period1          *UnifiedStats     `json:"period1"`
	Period2          *UnifiedStats     `json:"period2"`
	Changes          StatsChanges      `json:"changes"`
	ImprovementAreas []ImprovementArea `json:"improvement_areas"`
}

// ComparisonRule 对比规则；第二个返回值为 false 表示未命中
type ComparisonRule func(c StatsChanges, t Tuning) (ImprovementArea, bool)

// ComparisonRules 默认对比规则
var ComparisonRules = []ComparisonRule{
	func(c StatsChanges, t Tuning) (ImprovementArea, bool) {
		delta := c.TotalStudyTimeChange
		switch {
		case delta >= t.StudyTimeDeltaMinutes:
			return ImprovementArea{Area: "study_time", Severity: SeverityPositive,
				Message: fmt.Sprintf("学习时长增加了 %d 分钟", delta)}, true
		case delta <= -t.StudyTimeDeltaMinutes:
			return ImprovementArea{Area: "study_time", Severity: SeverityHigh,
				Message: fmt.Sprintf("学习时长减少了 %d 分钟", -delta)}, true
		}
		return ImprovementArea{}, false
	},
	func(c StatsChanges, t Tuning) (ImprovementArea, bool) {
		delta := c.CompletionRateChange
		switch {
		case delta >= t.CompletionRateDelta:
			return ImprovementArea{Area: "completion_rate", Severity: SeverityPositive,
				Message: fmt.Sprintf("番茄钟完成率提升了 %.1f 个百分点", delta)}, true
		case delta <= -t.CompletionRateDelta:
			return ImprovementArea{Area: "completion_rate", Severity: SeverityMedium,
				Message: fmt.Sprintf("番茄钟完成率下降了 %.1f 个百分点", -delta)}, true
		}
		return ImprovementArea{}, false
	},
	func(c StatsChanges, t Tuning) (ImprovementArea, bool) {
		delta := c.StudyDaysChange
		switch {
		case delta >= t.StudyDaysDelta:
			return ImprovementArea{Area: "consistency", Severity: SeverityPositive,
				Message: fmt.Sprintf("学习天数多了 %d 天", delta)}, true
		case delta <= -t.StudyDaysDelta:
			return ImprovementArea{Area: "consistency", Severity: SeverityMedium,
				Message: fmt.Sprintf("学习天数少了 %d 天，保持每天学习的习惯", -delta)}, true
		}
		return ImprovementArea{}, false
	},
}

// ComparisonService 周期对比服务
type ComparisonService struct {
	stats  *StatsService
	tuning *TuningStore
}

// NewComparisonService 创建对比服务
func NewComparisonService(stats *StatsService, tuning *TuningStore) *ComparisonService {
	return &ComparisonService{stats: stats, tuning: tuning}
}

// Compare 分别统计两个周期并计算差值
func (s *ComparisonService) Compare(ctx context.Context, userID int64, p1, p2 Period) (*Comparison, error) {
	var s1, s2 *UnifiedStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		s1, err = s.stats.GetUnifiedStats(gctx, userID, p1)
		return err
	})
	g.Go(func() (err error) {
		s2, err = s.stats.GetUnifiedStats(gctx, userID, p2)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	changes := Diff(s1, s2)
	return &Comparison{
		Period1:          s1,
		Period2:          s2,
		Changes:          changes,
		ImprovementAreas: EvaluateComparison(changes, s.tuning.Load()),
	}, nil
}

// Diff 计算 a - b
func Diff(a, b *UnifiedStats) StatsChanges {
	return StatsChanges{
		TotalStudyTimeChange:       a.Overview.TotalStudyTime - b.Overview.TotalStudyTime,
		TotalSessionsChange:        a.Overview.TotalSessions - b.Overview.TotalSessions,
		AverageSessionLengthChange: a.Overview.AverageSessionLength - b.Overview.AverageSessionLength,
		StudyDaysChange:            a.Overview.StudyDays - b.Overview.StudyDays,
		CompletionRateChange:       round1(a.ByMethod.Pomodoro.CompletionRate - b.ByMethod.Pomodoro.CompletionRate),
	}
}

// EvaluateComparison 按顺序评估对比规则
func EvaluateComparison(c StatsChanges, t Tuning) []ImprovementArea {
	out := []ImprovementArea{}
	for _, rule := range ComparisonRules {
		if area, ok := rule(c, t); ok {
			out = append(out, area)
		}
	}
	return out
}
