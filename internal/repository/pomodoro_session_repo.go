package repository

import (
	"context"
	"fmt"

	"github.com/yuqie6/StudyMirror/internal/schema"
	"gorm.io/gorm"
)

// PomodoroSessionRepository 番茄钟会话仓储
type PomodoroSessionRepository struct {
	db *gorm.DB
}

// NewPomodoroSessionRepository 创建番茄钟会话仓储
func NewPomodoroSessionRepository(db *gorm.DB) *PomodoroSessionRepository {
	return &PomodoroSessionRepository{db: db}
}

// Create 写入番茄钟会话
func (r *PomodoroSessionRepository) Create(ctx context.Context, session *schema.PomodoroSession) error {
	if session == nil {
		return fmt.Errorf("session is nil")
	}
	if session.UserID <= 0 {
		return fmt.Errorf("user_id 不能为空")
	}
	if session.SessionType == "" {
		session.SessionType = schema.PomodoroFocus
	}
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("创建番茄钟会话失败: %w", err)
	}
	return nil
}

// ListByUser 按用户查询番茄钟会话（started_at 倒序、同刻 id 正序，预加载科目与考试类型）
func (r *PomodoroSessionRepository) ListByUser(ctx context.Context, userID int64, filter RecordFilter) ([]schema.PomodoroSession, error) {
	var sessions []schema.PomodoroSession
	q := applyRecordFilter(r.db.WithContext(ctx).Where("user_id = ?", userID), filter)
	if err := q.
		Preload("SubjectArea.ExamType").
		Order("started_at DESC").
		Order("id ASC").
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("查询番茄钟会话失败: %w", err)
	}
	return sessions, nil
}
