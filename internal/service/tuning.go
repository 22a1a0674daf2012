package service

import "sync/atomic"

// Tuning 分析引擎的阈值集合，全部可通过配置覆盖
type Tuning struct {
	PreferredWindowDays      int     // 偏好方法统计窗口（天）
	TrendWindowDays          int     // 趋势对比的子窗口长度（天）
	TrendChangePercent       float64 // 超过该相对变化即判定为上升/下降
	RecommendationWindowDays int     // 建议规则的评估窗口（天）
	RecentSampleSize         int     // 推荐时参考的最近记录数
	LongSessionMinutes       int     // 长时段阈值
	ShortSessionMinutes      int     // 短时段阈值
	AfternoonStartHour       int     // 午后窗口 [start, end)
	AfternoonEndHour         int
	InterruptionRatio        float64 // 最近专注被打断比例阈值
	LowCompletionRate        float64
	HighCompletionRate       float64
	MinFocusForRate          int // 完成率类规则至少需要的专注次数
	StudyTimeDeltaMinutes    int
	CompletionRateDelta      float64
	StudyDaysDelta           int
}

// DefaultTuning 默认阈值
func DefaultTuning() Tuning {
	return Tuning{
		PreferredWindowDays:      30,
		TrendWindowDays:          7,
		TrendChangePercent:       10,
		RecommendationWindowDays: 90,
		RecentSampleSize:         10,
		LongSessionMinutes:       90,
		ShortSessionMinutes:      25,
		AfternoonStartHour:       13,
		AfternoonEndHour:         17,
		InterruptionRatio:        0.5,
		LowCompletionRate:        70,
		HighCompletionRate:       90,
		MinFocusForRate:          3,
		StudyTimeDeltaMinutes:    60,
		CompletionRateDelta:      10,
		StudyDaysDelta:           3,
	}
}

// TuningStore 持有当前生效的阈值，配置热更新时整体替换
type TuningStore struct {
	v atomic.Pointer[Tuning]
}

// NewTuningStore 创建阈值存储
func NewTuningStore(t Tuning) *TuningStore {
	s := &TuningStore{}
	s.Store(t)
	return s
}

// Load 读取当前阈值；nil 存储返回默认值
func (s *TuningStore) Load() Tuning {
	if s == nil {
		return DefaultTuning()
	}
	if p := s.v.Load(); p != nil {
		return *p
	}
	return DefaultTuning()
}

// Store 替换阈值
func (s *TuningStore) Store(t Tuning) {
	s.v.Store(&t)
}
