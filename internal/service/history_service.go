package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/yuqie6/StudyMirror/internal/repository"
	"github.com/yuqie6/StudyMirror/internal/schema"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 100
)

// HistoryQuery 统一历史查询参数；日期为 YYYY-MM-DD，空串表示不限
type HistoryQuery struct {
	UserID    int64
	StartDate string
	EndDate   string
	Limit     int
}

// RecordQuery 内部取数条件（已解析为毫秒边界）；Limit=0 表示不截断
type RecordQuery struct {
	StartMs       int64
	EndMs         int64
	SubjectAreaID *int64
	Limit         int
}

// HistoryService 合并两类会话为统一历史
type HistoryService struct {
	timedRepo    TimedSessionRepository
	pomodoroRepo PomodoroSessionRepository
	loc          *time.Location
}

// NewHistoryService 创建历史服务；loc 为 nil 时使用本地时区
func NewHistoryService(timedRepo TimedSessionRepository, pomodoroRepo PomodoroSessionRepository, loc *time.Location) *HistoryService {
	if loc == nil {
		loc = time.Local
	}
	return &HistoryService{
		timedRepo:    timedRepo,
		pomodoroRepo: pomodoroRepo,
		loc:          loc,
	}
}

// Location 统计与日期边界使用的时区
func (s *HistoryService) Location() *time.Location {
	return s.loc
}

// GetUnifiedHistory 获取统一历史（started_at 倒序）
func (s *HistoryService) GetUnifiedHistory(ctx context.Context, q HistoryQuery) ([]ActivityRecord, error) {
	if q.UserID <= 0 {
		return nil, invalidArgument("user_id=%d", q.UserID)
	}
	if q.Limit < 1 || q.Limit > MaxHistoryLimit {
		return nil, invalidArgument("limit=%d 超出 [1,%d]", q.Limit, MaxHistoryLimit)
	}
	startMs, endMs, err := s.Bounds(q.StartDate, q.EndDate)
	if err != nil {
		return nil, err
	}
	return s.Collect(ctx, q.UserID, RecordQuery{StartMs: startMs, EndMs: endMs, Limit: q.Limit})
}

// Bounds 将闭区间日期解析为毫秒边界
func (s *HistoryService) Bounds(startDate, endDate string) (int64, int64, error) {
	startMs, endMs, err := repository.DateBounds(startDate, endDate, s.loc)
	if err != nil {
		return 0, 0, invalidArgument("%v", err)
	}
	return startMs, endMs, nil
}

// Collect 拉取两类会话、归一化、合并排序并截断
func (s *HistoryService) Collect(ctx context.Context, userID int64, q RecordQuery) ([]ActivityRecord, error) {
	filter := repository.RecordFilter{
		StartMs:       q.StartMs,
		EndMs:         q.EndMs,
		SubjectAreaID: q.SubjectAreaID,
		Limit:         q.Limit,
	}

	var timed, pomodoro []ActivityRecord
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		timed, err = collectKind(gctx, filter,
			func(ctx context.Context, f repository.RecordFilter) ([]schema.TimedSession, error) {
				return s.timedRepo.ListByUser(ctx, userID, f)
			},
			func(row schema.TimedSession) (ActivityRecord, error) { return NormalizeTimedSession(row, s.loc) },
		)
		return err
	})
	g.Go(func() (err error) {
		pomodoro, err = collectKind(gctx, filter,
			func(ctx context.Context, f repository.RecordFilter) ([]schema.PomodoroSession, error) {
				return s.pomodoroRepo.ListByUser(ctx, userID, f)
			},
			func(row schema.PomodoroSession) (ActivityRecord, error) { return NormalizePomodoroSession(row, s.loc) },
		)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]ActivityRecord, 0, len(timed)+len(pomodoro))
	records = append(records, timed...)
	records = append(records, pomodoro...)
	SortRecords(records)

	if q.Limit > 0 && len(records) > q.Limit {
		records = records[:q.Limit]
	}
	return records, nil
}

// collectKind 拉取一类会话并归一化。有 Limit 时按页向后补齐，
// 直到凑够 Limit 条合法记录或数据取尽，坏记录不会挤占名额。
func collectKind[T any](
	ctx context.Context,
	filter repository.RecordFilter,
	list func(context.Context, repository.RecordFilter) ([]T, error),
	normalize func(T) (ActivityRecord, error),
) ([]ActivityRecord, error) {
	out := make([]ActivityRecord, 0, filter.Limit)
	for {
		rows, err := list(ctx, filter)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			rec, err := normalize(row)
			if err != nil {
				skipMalformed(err)
				continue
			}
			out = append(out, rec)
		}
		switch {
		case filter.Limit <= 0:
			return out, nil
		case len(out) >= filter.Limit:
			return out[:filter.Limit], nil
		case len(rows) < filter.Limit:
			return out, nil
		}
		filter.Offset += len(rows)
	}
}

// SortRecords 按 started_at 倒序；同一时刻按 type、id 正序，与仓储的排序一致
func SortRecords(records []ActivityRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.StartedAt.Equal(b.StartedAt) {
			return a.StartedAt.After(b.StartedAt)
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.ID < b.ID
	})
}

func skipMalformed(err error) {
	var malformed *MalformedRecordError
	if errors.As(err, &malformed) {
		slog.Warn("跳过格式错误的会话记录", "type", malformed.Type, "id", malformed.ID, "reason", malformed.Reason)
		return
	}
	slog.Warn("跳过无法归一化的会话记录", "error", err)
}
