package schema

import "time"

// PomodoroSessionType 番茄钟会话类型
type PomodoroSessionType string

const (
	PomodoroFocus      PomodoroSessionType = "focus"
	PomodoroShortBreak PomodoroSessionType = "short_break"
	PomodoroLongBreak  PomodoroSessionType = "long_break"
)

// IsBreak 是否为休息类会话
func (t PomodoroSessionType) IsBreak() bool {
	return t == PomodoroShortBreak || t == PomodoroLongBreak
}

// PomodoroSession 番茄钟会话
// PlannedDuration / ActualDuration 单位为分钟；ActualDuration 为 nil 表示尚未结束或未上报。
type PomodoroSession struct {
	ID              int64               `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          int64               `gorm:"index:idx_pomodoro_user_start;not null" json:"user_id"`
	SubjectAreaID   *int64              `gorm:"index" json:"subject_area_id"`
	SubjectArea     *SubjectArea        `gorm:"foreignKey:SubjectAreaID" json:"subject_area,omitempty"`
	SessionType     PomodoroSessionType `gorm:"size:20;not null;default:focus" json:"session_type"`
	PlannedDuration int                 `json:"planned_duration"`
	ActualDuration  *int                `json:"actual_duration"`
	StartedAt       int64               `gorm:"index:idx_pomodoro_user_start" json:"started_at"`
	EndedAt         int64               `json:"ended_at"`
	IsCompleted     bool                `gorm:"default:false" json:"is_completed"`
	WasInterrupted  bool                `gorm:"default:false" json:"was_interrupted"`
	CreatedAt       time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PomodoroSession) TableName() string {
	return "pomodoro_sessions"
}
