package service

import (
	"context"
	"time"

	"github.com/yuqie6/StudyMirror/internal/repository"
	"github.com/yuqie6/StudyMirror/internal/schema"
)

// 仓储依赖的最小接口集合（ISP）

type TimedSessionRepository interface {
	ListByUser(ctx context.Context, userID int64, filter repository.RecordFilter) ([]schema.TimedSession, error)
}

type PomodoroSessionRepository interface {
	ListByUser(ctx context.Context, userID int64, filter repository.RecordFilter) ([]schema.PomodoroSession, error)
}

// RecordSource 统一记录来源，Stats/Insight/Suggestion 都通过它取数；HistoryService 为默认实现
type RecordSource interface {
	Collect(ctx context.Context, userID int64, q RecordQuery) ([]ActivityRecord, error)
	Bounds(startDate, endDate string) (int64, int64, error)
	Location() *time.Location
}
