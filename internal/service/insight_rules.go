package service

import "fmt"

// InsightKey 建议的稳定标识，前端按 key 做本地化
type InsightKey string

const (
	InsightNoActivity         InsightKey = "NO_ACTIVITY"
	InsightLowCompletionRate  InsightKey = "LOW_COMPLETION_RATE"
	InsightHighCompletionRate InsightKey = "HIGH_COMPLETION_RATE"
	InsightLongSessions       InsightKey = "LONG_SESSIONS"
	InsightShortSessions      InsightKey = "SHORT_SESSIONS"
	InsightPomodoroUnused     InsightKey = "POMODORO_UNUSED"
)

// Insight 一条启发式建议
type Insight struct {
	Key     InsightKey `json:"key"`
	Message string     `json:"message"`
}

// InsightRule 独立可评估的规则；按声明顺序输出
type InsightRule struct {
	Key     InsightKey
	Applies func(s StatsSnapshot, t Tuning) bool
	Message func(s StatsSnapshot, t Tuning) string
}

// InsightRules 默认规则列表
var InsightRules = []InsightRule{
	{
		Key: InsightNoActivity,
		Applies: func(s StatsSnapshot, _ Tuning) bool {
			return s.Overview.TotalSessions == 0
		},
		Message: func(StatsSnapshot, Tuning) string {
			return "这段时间还没有学习记录，从一个番茄钟开始吧"
		},
	},
	{
		Key: InsightLowCompletionRate,
		Applies: func(s StatsSnapshot, t Tuning) bool {
			p := s.ByMethod.Pomodoro
			return p.FocusSessions >= t.MinFocusForRate && p.CompletionRate < t.LowCompletionRate
		},
		Message: func(s StatsSnapshot, _ Tuning) string {
			return fmt.Sprintf("番茄钟完成率 %.1f%% 偏低，试着减少干扰或缩短专注时长", s.ByMethod.Pomodoro.CompletionRate)
		},
	},
	{
		Key: InsightHighCompletionRate,
		Applies: func(s StatsSnapshot, t Tuning) bool {
			p := s.ByMethod.Pomodoro
			return p.FocusSessions >= t.MinFocusForRate && p.CompletionRate >= t.HighCompletionRate
		},
		Message: func(s StatsSnapshot, _ Tuning) string {
			return fmt.Sprintf("番茄钟完成率 %.1f%%，专注状态很稳定", s.ByMethod.Pomodoro.CompletionRate)
		},
	},
	{
		Key: InsightLongSessions,
		Applies: func(s StatsSnapshot, t Tuning) bool {
			tt := s.ByMethod.TimeTracking
			return tt.TotalSessions > 0 && tt.AverageDuration >= float64(t.LongSessionMinutes)
		},
		Message: func(s StatsSnapshot, _ Tuning) string {
			return fmt.Sprintf("计时学习平均 %.0f 分钟，记得中途安排休息", s.ByMethod.TimeTracking.AverageDuration)
		},
	},
	{
		Key: InsightShortSessions,
		Applies: func(s StatsSnapshot, t Tuning) bool {
			tt := s.ByMethod.TimeTracking
			return tt.TotalSessions >= 3 && tt.AverageDuration < float64(t.ShortSessionMinutes)
		},
		Message: func(s StatsSnapshot, _ Tuning) string {
			return fmt.Sprintf("计时学习平均只有 %.0f 分钟，可以用番茄钟固定节奏", s.ByMethod.TimeTracking.AverageDuration)
		},
	},
	{
		Key: InsightPomodoroUnused,
		Applies: func(s StatsSnapshot, _ Tuning) bool {
			return s.ByMethod.TimeTracking.TotalSessions >= 3 && s.ByMethod.Pomodoro.FocusSessions == 0
		},
		Message: func(StatsSnapshot, Tuning) string {
			return "还没有使用过番茄钟，短时专注适合记忆类科目"
		},
	},
}

// EvaluateInsights 依次评估规则，返回命中的建议（非 nil）
func EvaluateInsights(s StatsSnapshot, t Tuning) []Insight {
	out := []Insight{}
	for _, rule := range InsightRules {
		if rule.Applies(s, t) {
			out = append(out, Insight{Key: rule.Key, Message: rule.Message(s, t)})
		}
	}
	return out
}
