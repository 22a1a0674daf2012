package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/yuqie6/StudyMirror/internal/schema"
	"github.com/yuqie6/StudyMirror/internal/testutil"
)

func newTestSuggestion(hour int, timed []schema.TimedSession, pomodoro []schema.PomodoroSession) *SuggestionService {
	clock := FixedClock(time.Date(2026, 5, 20, hour, 30, 0, 0, time.UTC))
	return NewSuggestionService(newTestHistory(timed, pomodoro), NewTuningStore(DefaultTuning()), clock)
}

func assertValidSuggestion(t *testing.T, s *Suggestion) {
	t.Helper()
	all := append([]MethodCandidate{s.Recommended}, s.Alternatives...)
	seen := map[ActivityType]bool{}
	for _, c := range all {
		if c.Method != ActivityTimeTracking && c.Method != ActivityPomodoro {
			t.Fatalf("unknown method %q", c.Method)
		}
		if c.Confidence < 0 || c.Confidence > 1 {
			t.Fatalf("confidence %v out of range", c.Confidence)
		}
		if c.Confidence > s.Recommended.Confidence {
			t.Fatalf("alternative %+v beats recommended %+v", c, s.Recommended)
		}
		if seen[c.Method] {
			t.Fatalf("method %q duplicated", c.Method)
		}
		seen[c.Method] = true
	}
}

func TestSuggestStudyMethodFirstTimeUser(t *testing.T) {
	svc := newTestSuggestion(9, nil, nil)
	got, err := svc.SuggestStudyMethod(context.Background(), 1, nil)
	if err != nil {
		t.Fatalf("SuggestStudyMethod error: %v", err)
	}
	assertValidSuggestion(t, got)
	if got.Recommended.Rule != RuleFirstTimeUser || !strings.Contains(got.Recommended.Reason, "初次使用") {
		t.Fatalf("recommended=%+v, want first-time reason", got.Recommended)
	}
	if len(got.Alternatives) != 1 || got.Alternatives[0].Rule != RuleFirstTimeUser {
		t.Fatalf("alternatives=%+v", got.Alternatives)
	}
	if got.Context.RecentMethod != nil || got.Context.RecentAvgDuration != 0 || got.Context.TimeOfDay != 9 {
		t.Fatalf("context=%+v", got.Context)
	}
}

func TestSuggestStudyMethodLongSessions(t *testing.T) {
	timed := []schema.TimedSession{
		{ID: 1, UserID: 1, StartedAt: at(17, 9), DurationMinutes: 120},
		{ID: 2, UserID: 1, StartedAt: at(18, 9), DurationMinutes: 120},
		{ID: 3, UserID: 1, StartedAt: at(19, 9), DurationMinutes: 120},
	}
	// 下午 14 点也命中午后规则，但长时段规则置信度更高
	svc := newTestSuggestion(14, timed, nil)
	got, err := svc.SuggestStudyMethod(context.Background(), 1, nil)
	if err != nil {
		t.Fatalf("SuggestStudyMethod error: %v", err)
	}
	assertValidSuggestion(t, got)
	if got.Recommended.Method != ActivityTimeTracking || got.Recommended.Rule != RuleLongSessions {
		t.Fatalf("recommended=%+v, want time_tracking/long_sessions", got.Recommended)
	}
	if got.Context.RecentAvgDuration != 120 || got.Context.TimeOfDay != 14 {
		t.Fatalf("context=%+v", got.Context)
	}
	if got.Context.RecentMethod == nil || *got.Context.RecentMethod != ActivityTimeTracking {
		t.Fatalf("recent_method=%v", got.Context.RecentMethod)
	}
	if len(got.Alternatives) != 1 || got.Alternatives[0].Rule != RuleAfternoonSlump {
		t.Fatalf("alternatives=%+v, want afternoon pomodoro", got.Alternatives)
	}
}

func TestSuggestStudyMethodAfternoon(t *testing.T) {
	timed := []schema.TimedSession{{ID: 1, UserID: 1, StartedAt: at(19, 9), DurationMinutes: 50}}
	svc := newTestSuggestion(15, timed, nil)
	got, err := svc.SuggestStudyMethod(context.Background(), 1, nil)
	if err != nil {
		t.Fatalf("SuggestStudyMethod error: %v", err)
	}
	assertValidSuggestion(t, got)
	if got.Recommended.Method != ActivityPomodoro || got.Recommended.Rule != RuleAfternoonSlump {
		t.Fatalf("recommended=%+v", got.Recommended)
	}
	if len(got.Alternatives) != 1 || got.Alternatives[0].Rule != RuleRecentHabit {
		t.Fatalf("alternatives=%+v", got.Alternatives)
	}

	// 17 点已不在午后窗口
	svc = newTestSuggestion(17, timed, nil)
	got, err = svc.SuggestStudyMethod(context.Background(), 1, nil)
	if err != nil {
		t.Fatalf("SuggestStudyMethod error: %v", err)
	}
	if got.Recommended.Rule != RuleRecentHabit || got.Recommended.Method != ActivityTimeTracking {
		t.Fatalf("recommended=%+v, want recent habit", got.Recommended)
	}
}

func TestSuggestStudyMethodSubjectFilter(t *testing.T) {
	timed := []schema.TimedSession{
		{ID: 1, UserID: 1, SubjectAreaID: testutil.Int64Ptr(1), StartedAt: at(18, 9), DurationMinutes: 120},
		{ID: 2, UserID: 1, SubjectAreaID: testutil.Int64Ptr(2), StartedAt: at(19, 9), DurationMinutes: 10},
	}
	svc := newTestSuggestion(9, timed, nil)
	got, err := svc.SuggestStudyMethod(context.Background(), 1, testutil.Int64Ptr(1))
	if err != nil {
		t.Fatalf("SuggestStudyMethod error: %v", err)
	}
	if got.Context.RecentSessions != 1 || got.Recommended.Rule != RuleLongSessions {
		t.Fatalf("subject filter not applied: %+v", got)
	}
}

func TestSuggestUnstudiedSubjectIsNotFirstTime(t *testing.T) {
	timed := []schema.TimedSession{
		{ID: 1, UserID: 1, SubjectAreaID: testutil.Int64Ptr(1), StartedAt: at(18, 9), DurationMinutes: 120},
		{ID: 2, UserID: 1, SubjectAreaID: testutil.Int64Ptr(1), StartedAt: at(19, 9), DurationMinutes: 100},
	}
	svc := newTestSuggestion(9, timed, nil)

	got, err := svc.SuggestStudyMethod(context.Background(), 1, testutil.Int64Ptr(3))
	if err != nil {
		t.Fatalf("SuggestStudyMethod error: %v", err)
	}
	assertValidSuggestion(t, got)
	if got.Recommended.Rule == RuleFirstTimeUser || strings.Contains(got.Recommended.Reason, "初次使用") {
		t.Fatalf("user with history in other subjects must not be treated as first-time: %+v", got.Recommended)
	}
	if got.Context.RecentSessions != 2 || got.Recommended.Rule != RuleLongSessions {
		t.Fatalf("expected fallback to all subjects, got %+v", got)
	}

	// 完全没有记录的用户指定科目时仍是初次使用
	empty := newTestSuggestion(9, nil, nil)
	got, err = empty.SuggestStudyMethod(context.Background(), 1, testutil.Int64Ptr(3))
	if err != nil || got.Recommended.Rule != RuleFirstTimeUser {
		t.Fatalf("new user err=%v recommended=%+v", err, got)
	}
}

func TestSuggestRecentSampleSize(t *testing.T) {
	var timed []schema.TimedSession
	for i := 0; i < 15; i++ {
		minutes := 10
		if i >= 5 {
			minutes = 120 // 最近 10 条都是长时段
		}
		timed = append(timed, schema.TimedSession{ID: int64(i + 1), UserID: 1, StartedAt: at(1+i, 9), DurationMinutes: minutes})
	}
	svc := newTestSuggestion(9, timed, nil)
	got, err := svc.SuggestStudyMethod(context.Background(), 1, nil)
	if err != nil {
		t.Fatalf("SuggestStudyMethod error: %v", err)
	}
	if got.Context.RecentSessions != DefaultTuning().RecentSampleSize || got.Context.RecentAvgDuration != 120 {
		t.Fatalf("context=%+v", got.Context)
	}
}

func TestSuggestFrequentInterruptions(t *testing.T) {
	pomodoro := []schema.PomodoroSession{
		focusSession(1, at(19, 9), 10, true),
		focusSession(2, at(19, 10), 12, true),
		focusSession(3, at(19, 11), 25, false),
	}
	svc := newTestSuggestion(20, nil, pomodoro)
	got, err := svc.SuggestStudyMethod(context.Background(), 1, nil)
	if err != nil {
		t.Fatalf("SuggestStudyMethod error: %v", err)
	}
	assertValidSuggestion(t, got)
	// 平均 15.7 分钟命中短时段（0.7），打断规则（0.6）成为备选
	if got.Recommended.Rule != RuleShortSessions {
		t.Fatalf("recommended=%+v", got.Recommended)
	}
	if len(got.Alternatives) != 1 || got.Alternatives[0].Rule != RuleFrequentInterruptions {
		t.Fatalf("alternatives=%+v", got.Alternatives)
	}
}

func TestSuggestFallsBackToDefault(t *testing.T) {
	saved := SuggestionRules
	SuggestionRules = nil
	defer func() { SuggestionRules = saved }()

	got := Suggest(SuggestionInput{}, DefaultTuning())
	if got.Recommended.Rule != RuleDefault || len(got.Alternatives) != 0 {
		t.Fatalf("suggestion=%+v", got)
	}
}

func TestSuggestClampsConfidence(t *testing.T) {
	saved := SuggestionRules
	SuggestionRules = []SuggestionRule{{
		Key:   "test",
		Match: func(SuggestionInput, Tuning) bool { return true },
		Build: func(SuggestionInput, Tuning) []MethodCandidate {
			return []MethodCandidate{{Method: ActivityPomodoro, Confidence: 1.7}, {Method: ActivityTimeTracking, Confidence: -0.2}}
		},
	}}
	defer func() { SuggestionRules = saved }()

	got := Suggest(SuggestionInput{}, DefaultTuning())
	if got.Recommended.Confidence != 1 || got.Alternatives[0].Confidence != 0 {
		t.Fatalf("suggestion=%+v", got)
	}
}

func TestSuggestFirstTimeUserInAfternoon(t *testing.T) {
	svc := newTestSuggestion(14, nil, nil)
	got, err := svc.SuggestStudyMethod(context.Background(), 1, nil)
	if err != nil {
		t.Fatalf("SuggestStudyMethod error: %v", err)
	}
	if got.Recommended.Rule != RuleFirstTimeUser {
		t.Fatalf("first-time rule must take precedence, got %+v", got.Recommended)
	}
	for _, alt := range got.Alternatives {
		if alt.Rule != RuleFirstTimeUser {
			t.Fatalf("unexpected alternative %+v", alt)
		}
	}
}
