package service

import (
	"context"
	"fmt"
	"sort"
)

// SuggestionRuleKey 推荐规则标识
type SuggestionRuleKey string

const (
	RuleFirstTimeUser         SuggestionRuleKey = "first_time_user"
	RuleLongSessions          SuggestionRuleKey = "long_sessions"
	RuleFrequentInterruptions SuggestionRuleKey = "frequent_interruptions"
	RuleShortSessions         SuggestionRuleKey = "short_sessions"
	RuleAfternoonSlump        SuggestionRuleKey = "afternoon_slump"
	RuleRecentHabit           SuggestionRuleKey = "recent_habit"
	RuleDefault               SuggestionRuleKey = "default"
)

// MethodCandidate 一个候选学习方式
type MethodCandidate struct {
	Method     ActivityType      `json:"method"`
	Confidence float64           `json:"confidence"`
	Reason     string            `json:"reason"`
	Rule       SuggestionRuleKey `json:"rule"`
}

// SuggestionContext 推荐时的上下文
type SuggestionContext struct {
	TimeOfDay         int           `json:"time_of_day"`
	RecentAvgDuration float64       `json:"recent_avg_duration"`
	RecentMethod      *ActivityType `json:"recent_method"`
	RecentSessions    int           `json:"recent_sessions"`
}

// Suggestion 推荐结果
type Suggestion struct {
	Recommended  MethodCandidate   `json:"recommended"`
	Alternatives []MethodCandidate `json:"alternatives"`
	Context      SuggestionContext `json:"context"`
}

// SuggestionInput 规则评估输入
type SuggestionInput struct {
	Context          SuggestionContext
	FocusSessions    int
	InterruptedFocus int
}

// SuggestionRule 单条推荐规则；Exclusive 规则命中后不再评估后续规则
type SuggestionRule struct {
	Key       SuggestionRuleKey
	Exclusive bool
	Match     func(in SuggestionInput, t Tuning) bool
	Build     func(in SuggestionInput, t Tuning) []MethodCandidate
}

// SuggestionRules 默认规则，声明顺序即同置信度时的优先级
var SuggestionRules = []SuggestionRule{
	{
		Key:       RuleFirstTimeUser,
		Exclusive: true,
		Match: func(in SuggestionInput, _ Tuning) bool {
			return in.Context.RecentSessions == 0
		},
		Build: func(SuggestionInput, Tuning) []MethodCandidate {
			return []MethodCandidate{
				{Method: ActivityPomodoro, Confidence: 0.5, Reason: "初次使用：先用 25 分钟番茄钟熟悉学习节奏", Rule: RuleFirstTimeUser},
				{Method: ActivityTimeTracking, Confidence: 0.4, Reason: "初次使用：也可以用自由计时记录完整的学习时段", Rule: RuleFirstTimeUser},
			}
		},
	},
	{
		Key: RuleLongSessions,
		Match: func(in SuggestionInput, t Tuning) bool {
			return in.Context.RecentSessions > 0 && in.Context.RecentAvgDuration >= float64(t.LongSessionMinutes)
		},
		Build: func(in SuggestionInput, _ Tuning) []MethodCandidate {
			return []MethodCandidate{{
				Method:     ActivityTimeTracking,
				Confidence: 0.8,
				Reason:     fmt.Sprintf("最近平均学习 %.0f 分钟，长时段学习更适合自由计时", in.Context.RecentAvgDuration),
				Rule:       RuleLongSessions,
			}}
		},
	},
	{
		Key: RuleFrequentInterruptions,
		Match: func(in SuggestionInput, t Tuning) bool {
			if in.FocusSessions < 2 {
				return false
			}
			return float64(in.InterruptedFocus)/float64(in.FocusSessions) >= t.InterruptionRatio
		},
		Build: func(in SuggestionInput, _ Tuning) []MethodCandidate {
			return []MethodCandidate{{
				Method:     ActivityTimeTracking,
				Confidence: 0.6,
				Reason:     fmt.Sprintf("最近 %d 次专注中有 %d 次被打断，试试不受固定时长限制的计时学习", in.FocusSessions, in.InterruptedFocus),
				Rule:       RuleFrequentInterruptions,
			}}
		},
	},
	{
		Key: RuleShortSessions,
		Match: func(in SuggestionInput, t Tuning) bool {
			return in.Context.RecentSessions > 0 && in.Context.RecentAvgDuration < float64(t.ShortSessionMinutes)
		},
		Build: func(in SuggestionInput, _ Tuning) []MethodCandidate {
			return []MethodCandidate{{
				Method:     ActivityPomodoro,
				Confidence: 0.7,
				Reason:     fmt.Sprintf("最近平均学习 %.0f 分钟，番茄钟可以帮助保持专注节奏", in.Context.RecentAvgDuration),
				Rule:       RuleShortSessions,
			}}
		},
	},
	{
		Key: RuleAfternoonSlump,
		Match: func(in SuggestionInput, t Tuning) bool {
			h := in.Context.TimeOfDay
			return h >= t.AfternoonStartHour && h < t.AfternoonEndHour
		},
		Build: func(SuggestionInput, Tuning) []MethodCandidate {
			return []MethodCandidate{{
				Method:     ActivityPomodoro,
				Confidence: 0.65,
				Reason:     "午后注意力容易下降，番茄钟的短周期更容易坚持",
				Rule:       RuleAfternoonSlump,
			}}
		},
	},
	{
		Key: RuleRecentHabit,
		Match: func(in SuggestionInput, _ Tuning) bool {
			return in.Context.RecentMethod != nil
		},
		Build: func(in SuggestionInput, _ Tuning) []MethodCandidate {
			return []MethodCandidate{{
				Method:     *in.Context.RecentMethod,
				Confidence: 0.5,
				Reason:     "延续最近一次使用的学习方式",
				Rule:       RuleRecentHabit,
			}}
		},
	},
}

var defaultCandidate = MethodCandidate{
	Method:     ActivityPomodoro,
	Confidence: 0.3,
	Reason:     "默认推荐番茄钟",
	Rule:       RuleDefault,
}

// SuggestionService 学习方式推荐服务
type SuggestionService struct {
	history RecordSource
	tuning  *TuningStore
	clock   Clock
}

// NewSuggestionService 创建推荐服务
func NewSuggestionService(history RecordSource, tuning *TuningStore, clock Clock) *SuggestionService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &SuggestionService{history: history, tuning: tuning, clock: clock}
}

// SuggestStudyMethod 根据最近记录与当前时段推荐学习方式
// subjectAreaID 需由调用方确认属于该用户；该科目无记录时使用全部科目的最近记录。
func (s *SuggestionService) SuggestStudyMethod(ctx context.Context, userID int64, subjectAreaID *int64) (*Suggestion, error) {
	if userID <= 0 {
		return nil, invalidArgument("user_id=%d", userID)
	}
	t := s.tuning.Load()
	size := t.RecentSampleSize
	if size <= 0 {
		size = DefaultTuning().RecentSampleSize
	}

	recent, err := s.history.Collect(ctx, userID, RecordQuery{SubjectAreaID: subjectAreaID, Limit: size})
	if err != nil {
		return nil, err
	}
	// 该科目还没有记录时退回到全部科目，只有真正没有任何记录的用户才算初次使用
	if len(recent) == 0 && subjectAreaID != nil {
		recent, err = s.history.Collect(ctx, userID, RecordQuery{Limit: size})
		if err != nil {
			return nil, err
		}
	}

	in := buildSuggestionInput(recent, s.clock.Now().In(s.history.Location()).Hour())
	return Suggest(in, t), nil
}

func buildSuggestionInput(recent []ActivityRecord, hour int) SuggestionInput {
	in := SuggestionInput{Context: SuggestionContext{TimeOfDay: hour, RecentSessions: len(recent)}}
	if len(recent) == 0 {
		return in
	}
	total := 0
	for _, rec := range recent {
		total += rec.DurationMinutes
		if rec.IsFocus() {
			in.FocusSessions++
			if rec.WasInterrupted {
				in.InterruptedFocus++
			}
		}
	}
	in.Context.RecentAvgDuration = average(total, len(recent))
	m := recent[0].Type
	in.Context.RecentMethod = &m
	return in
}

// Suggest 单次遍历规则，取置信度最高者为推荐，其余按方式去重作为备选
func Suggest(in SuggestionInput, t Tuning) *Suggestion {
	var candidates []MethodCandidate
	for _, rule := range SuggestionRules {
		if !rule.Match(in, t) {
			continue
		}
		candidates = append(candidates, rule.Build(in, t)...)
		if rule.Exclusive {
			break
		}
	}
	if len(candidates) == 0 {
		candidates = append(candidates, defaultCandidate)
	}
	for i := range candidates {
		candidates[i].Confidence = clamp01(candidates[i].Confidence)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	out := &Suggestion{Recommended: candidates[0], Alternatives: []MethodCandidate{}, Context: in.Context}
	seen := map[ActivityType]bool{candidates[0].Method: true}
	for _, c := range candidates[1:] {
		if seen[c.Method] {
			continue
		}
		seen[c.Method] = true
		out.Alternatives = append(out.Alternatives, c)
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
