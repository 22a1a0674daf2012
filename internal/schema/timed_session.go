package schema

import "time"

// TimedSession 计时学习会话（自由计时，开始/结束由用户控制）
// 时间字段统一为 Unix 毫秒；EndedAt=0 表示仍在进行中。
type TimedSession struct {
	ID              int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          int64        `gorm:"index:idx_timed_user_start;not null" json:"user_id"`
	SubjectAreaID   *int64       `gorm:"index" json:"subject_area_id"`
	SubjectArea     *SubjectArea `gorm:"foreignKey:SubjectAreaID" json:"subject_area,omitempty"`
	StartedAt       int64        `gorm:"index:idx_timed_user_start" json:"started_at"`
	EndedAt         int64        `json:"ended_at"`
	DurationMinutes int          `json:"duration_minutes"`
	Comment         string       `gorm:"type:text" json:"comment"`
	CreatedAt       time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (TimedSession) TableName() string {
	return "time_tracking_sessions"
}

// IsActive 是否仍在计时
func (s *TimedSession) IsActive() bool {
	return s.EndedAt <= 0
}
