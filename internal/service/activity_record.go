package service

import (
	"time"

	"github.com/yuqie6/StudyMirror/internal/schema"
)

// ActivityType 活动记录来源
type ActivityType string

const (
	ActivityTimeTracking ActivityType = "time_tracking"
	ActivityPomodoro     ActivityType = "pomodoro"
)

// ActivityStatus 活动状态
type ActivityStatus string

const (
	StatusCompleted ActivityStatus = "completed"
	StatusActive    ActivityStatus = "active"
)

// SessionDetails 按来源区分的附加信息
type SessionDetails struct {
	SessionType     schema.PomodoroSessionType `json:"session_type,omitempty"`     // pomodoro
	PlannedDuration int                        `json:"planned_duration,omitempty"` // pomodoro
	Comment         string                     `json:"comment,omitempty"`          // time_tracking
	EndedAt         *time.Time                 `json:"ended_at,omitempty"`
}

// ActivityRecord 计时会话与番茄钟会话的统一视图，读取时构造，不落库
type ActivityRecord struct {
	ID              int64          `json:"id"`
	Type            ActivityType   `json:"type"`
	SubjectAreaID   *int64         `json:"subject_area_id"`
	SubjectAreaName *string        `json:"subject_area_name"`
	ExamTypeName    *string        `json:"exam_type_name"`
	DurationMinutes int            `json:"duration_minutes"`
	StartedAt       time.Time      `json:"started_at"`
	Status          ActivityStatus `json:"status"`
	WasInterrupted  bool           `json:"was_interrupted"`
	SessionDetails  SessionDetails `json:"session_details"`
}

// IsFocus 是否为番茄钟专注会话
func (r ActivityRecord) IsFocus() bool {
	return r.Type == ActivityPomodoro && r.SessionDetails.SessionType == schema.PomodoroFocus
}

// IsBreak 是否为番茄钟休息会话
func (r ActivityRecord) IsBreak() bool {
	return r.Type == ActivityPomodoro && r.SessionDetails.SessionType.IsBreak()
}

// NormalizeTimedSession 将计时会话转换为 ActivityRecord
func NormalizeTimedSession(s schema.TimedSession, loc *time.Location) (ActivityRecord, error) {
	if s.StartedAt <= 0 {
		return ActivityRecord{}, &MalformedRecordError{Type: ActivityTimeTracking, ID: s.ID, Reason: "缺少 started_at"}
	}
	if s.DurationMinutes < 0 {
		return ActivityRecord{}, &MalformedRecordError{Type: ActivityTimeTracking, ID: s.ID, Reason: "duration_minutes 为负数"}
	}

	rec := ActivityRecord{
		ID:              s.ID,
		Type:            ActivityTimeTracking,
		DurationMinutes: s.DurationMinutes,
		StartedAt:       msToTime(s.StartedAt, loc),
		Status:          StatusCompleted,
		SessionDetails:  SessionDetails{Comment: s.Comment},
	}
	if s.IsActive() {
		rec.Status = StatusActive
	} else {
		ended := msToTime(s.EndedAt, loc)
		rec.SessionDetails.EndedAt = &ended
	}
	attachSubject(&rec, s.SubjectAreaID, s.SubjectArea)
	return rec, nil
}

// NormalizePomodoroSession 将番茄钟会话转换为 ActivityRecord
// 休息会话一律不归属科目；actual_duration 缺失时时长记 0。
func NormalizePomodoroSession(s schema.PomodoroSession, loc *time.Location) (ActivityRecord, error) {
	if s.StartedAt <= 0 {
		return ActivityRecord{}, &MalformedRecordError{Type: ActivityPomodoro, ID: s.ID, Reason: "缺少 started_at"}
	}
	duration := 0
	if s.ActualDuration != nil {
		duration = *s.ActualDuration
	}
	if duration < 0 {
		return ActivityRecord{}, &MalformedRecordError{Type: ActivityPomodoro, ID: s.ID, Reason: "actual_duration 为负数"}
	}
	sessionType := s.SessionType
	if sessionType == "" {
		sessionType = schema.PomodoroFocus
	}

	rec := ActivityRecord{
		ID:              s.ID,
		Type:            ActivityPomodoro,
		DurationMinutes: duration,
		StartedAt:       msToTime(s.StartedAt, loc),
		Status:          StatusActive,
		WasInterrupted:  s.WasInterrupted,
		SessionDetails: SessionDetails{
			SessionType:     sessionType,
			PlannedDuration: s.PlannedDuration,
		},
	}
	if s.IsCompleted {
		rec.Status = StatusCompleted
	}
	if s.EndedAt > 0 {
		ended := msToTime(s.EndedAt, loc)
		rec.SessionDetails.EndedAt = &ended
	}
	if !sessionType.IsBreak() {
		attachSubject(&rec, s.SubjectAreaID, s.SubjectArea)
	}
	return rec, nil
}

func attachSubject(rec *ActivityRecord, subjectID *int64, subject *schema.SubjectArea) {
	if subjectID == nil {
		return
	}
	id := *subjectID
	rec.SubjectAreaID = &id
	if name := subject.SubjectName(); name != "" {
		rec.SubjectAreaName = &name
	}
	if exam := subject.ExamTypeName(); exam != "" {
		rec.ExamTypeName = &exam
	}
}

func msToTime(ms int64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(ms).In(loc)
}
