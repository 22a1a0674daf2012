package repository

import (
	"context"
	"fmt"

	"github.com/yuqie6/StudyMirror/internal/schema"
	"gorm.io/gorm"
)

// TimedSessionRepository 计时会话仓储
type TimedSessionRepository struct {
	db *gorm.DB
}

// NewTimedSessionRepository 创建计时会话仓储
func NewTimedSessionRepository(db *gorm.DB) *TimedSessionRepository {
	return &TimedSessionRepository{db: db}
}

// Create 写入计时会话
func (r *TimedSessionRepository) Create(ctx context.Context, session *schema.TimedSession) error {
	if session == nil {
		return fmt.Errorf("session is nil")
	}
	if session.UserID <= 0 {
		return fmt.Errorf("user_id 不能为空")
	}
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("创建计时会话失败: %w", err)
	}
	return nil
}

// ListByUser 按用户查询计时会话（started_at 倒序、同刻 id 正序，预加载科目与考试类型）
func (r *TimedSessionRepository) ListByUser(ctx context.Context, userID int64, filter RecordFilter) ([]schema.TimedSession, error) {
	var sessions []schema.TimedSession
	q := applyRecordFilter(r.db.WithContext(ctx).Where("user_id = ?", userID), filter)
	if err := q.
		Preload("SubjectArea.ExamType").
		Order("started_at DESC").
		Order("id ASC").
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("查询计时会话失败: %w", err)
	}
	return sessions, nil
}

// applyRecordFilter 在查询上追加时间窗、科目与分页限制
func applyRecordFilter(q *gorm.DB, filter RecordFilter) *gorm.DB {
	if filter.StartMs > 0 {
		q = q.Where("started_at >= ?", filter.StartMs)
	}
	if filter.EndMs > 0 {
		q = q.Where("started_at <= ?", filter.EndMs)
	}
	if filter.SubjectAreaID != nil {
		q = q.Where("subject_area_id = ?", *filter.SubjectAreaID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	return q
}
