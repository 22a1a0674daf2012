package service

import (
	"context"
	"testing"

	"github.com/yuqie6/StudyMirror/internal/schema"
)

func newTestComparison(timed []schema.TimedSession, pomodoro []schema.PomodoroSession) *ComparisonService {
	tuning := NewTuningStore(DefaultTuning())
	return NewComparisonService(NewStatsService(newTestHistory(timed, pomodoro), tuning), tuning)
}

func comparisonFixture() *ComparisonService {
	timed := []schema.TimedSession{
		// 第一周
		{ID: 1, UserID: 1, StartedAt: at(1, 9), DurationMinutes: 90},
		{ID: 2, UserID: 1, StartedAt: at(2, 9), DurationMinutes: 60},
		{ID: 3, UserID: 1, StartedAt: at(3, 9), DurationMinutes: 30},
		{ID: 4, UserID: 1, StartedAt: at(4, 9), DurationMinutes: 30},
		// 第二周
		{ID: 5, UserID: 1, StartedAt: at(9, 9), DurationMinutes: 40},
	}
	pomodoro := []schema.PomodoroSession{
		focusSession(1, at(1, 14), 25, false),
		focusSession(2, at(9, 14), 25, true),
	}
	return newTestComparison(timed, pomodoro)
}

func TestCompare(t *testing.T) {
	svc := comparisonFixture()
	week1 := Period{StartDate: "2026-05-01", EndDate: "2026-05-07"}
	week2 := Period{StartDate: "2026-05-08", EndDate: "2026-05-14"}

	got, err := svc.Compare(context.Background(), 1, week1, week2)
	if err != nil {
		t.Fatalf("Compare error: %v", err)
	}
	if got.Period1.Overview.TotalStudyTime != 235 || got.Period2.Overview.TotalStudyTime != 65 {
		t.Fatalf("period totals=%d/%d", got.Period1.Overview.TotalStudyTime, got.Period2.Overview.TotalStudyTime)
	}
	c := got.Changes
	if c.TotalStudyTimeChange != 170 || c.TotalSessionsChange != 3 || c.StudyDaysChange != 3 {
		t.Fatalf("changes=%+v", c)
	}
	if c.AverageSessionLengthChange != 47-32.5 {
		t.Fatalf("average change=%v", c.AverageSessionLengthChange)
	}
	if c.CompletionRateChange != 100 {
		t.Fatalf("completion change=%v", c.CompletionRateChange)
	}

	wantAreas := []struct {
		area     string
		severity Severity
	}{
		{"study_time", SeverityPositive},
		{"completion_rate", SeverityPositive},
		{"consistency", SeverityPositive},
	}
	if len(got.ImprovementAreas) != len(wantAreas) {
		t.Fatalf("improvement_areas=%+v", got.ImprovementAreas)
	}
	for i, w := range wantAreas {
		if got.ImprovementAreas[i].Area != w.area || got.ImprovementAreas[i].Severity != w.severity {
			t.Fatalf("area[%d]=%+v, want %s/%s", i, got.ImprovementAreas[i], w.area, w.severity)
		}
	}
}

func TestCompareSymmetry(t *testing.T) {
	svc := comparisonFixture()
	ctx := context.Background()
	a := Period{StartDate: "2026-05-01", EndDate: "2026-05-07"}
	b := Period{StartDate: "2026-05-08", EndDate: "2026-05-14"}

	ab, err := svc.Compare(ctx, 1, a, b)
	if err != nil {
		t.Fatalf("Compare error: %v", err)
	}
	ba, err := svc.Compare(ctx, 1, b, a)
	if err != nil {
		t.Fatalf("Compare error: %v", err)
	}
	if ab.Changes.TotalStudyTimeChange != -ba.Changes.TotalStudyTimeChange {
		t.Fatalf("not antisymmetric: %d vs %d", ab.Changes.TotalStudyTimeChange, ba.Changes.TotalStudyTimeChange)
	}
	if ab.Changes.StudyDaysChange != -ba.Changes.StudyDaysChange || ab.Changes.TotalSessionsChange != -ba.Changes.TotalSessionsChange {
		t.Fatalf("changes not antisymmetric: %+v vs %+v", ab.Changes, ba.Changes)
	}

	for _, area := range ba.ImprovementAreas {
		if area.Severity == SeverityPositive {
			t.Fatalf("reverse comparison should not report positive areas: %+v", area)
		}
	}
	if len(ba.ImprovementAreas) != 3 || ba.ImprovementAreas[0].Severity != SeverityHigh {
		t.Fatalf("reverse improvement_areas=%+v", ba.ImprovementAreas)
	}
}

func TestCompareInvalidPeriod(t *testing.T) {
	svc := comparisonFixture()
	_, err := svc.Compare(context.Background(), 1, Period{StartDate: "2026-05-10", EndDate: "2026-05-01"}, Period{})
	if err == nil {
		t.Fatalf("inverted period should fail")
	}
}

func TestEvaluateComparisonBelowThreshold(t *testing.T) {
	got := EvaluateComparison(StatsChanges{TotalStudyTimeChange: 59, CompletionRateChange: -9.9, StudyDaysChange: 2}, DefaultTuning())
	if len(got) != 0 {
		t.Fatalf("improvement_areas=%+v, want none", got)
	}
}
