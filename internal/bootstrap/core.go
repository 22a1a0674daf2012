package bootstrap

import (
	"io"
	"os"
	"path/filepath"

	"github.com/yuqie6/StudyMirror/internal/eventbus"
	"github.com/yuqie6/StudyMirror/internal/pkg/config"
	"github.com/yuqie6/StudyMirror/internal/repository"
	"github.com/yuqie6/StudyMirror/internal/service"
)

// Core 持有跨二进制共享的核心依赖
type Core struct {
	Cfg       *config.Config
	DB        *repository.Database
	LogCloser io.Closer
	Tuning    *service.TuningStore
	Hub       *eventbus.Hub

	Repos struct {
		Timed    *repository.TimedSessionRepository
		Pomodoro *repository.PomodoroSessionRepository
		Subjects *repository.SubjectRepository
	}

	Services struct {
		History     *service.HistoryService
		Stats       *service.StatsService
		Insights    *service.InsightService
		Suggestions *service.SuggestionService
		Comparison  *service.ComparisonService
	}
}

// Options 构建 Core 时的可选覆盖项
type Options struct {
	Clock service.Clock // 为空时使用系统时间
}

// NewCore 加载配置并构建核心依赖
func NewCore(cfgPath string, opts Options) (*Core, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	logCloser, _ := config.SetupLogger(config.LoggerOptions{
		Level:     cfg.App.LogLevel,
		Path:      cfg.App.LogPath,
		Component: filepath.Base(os.Args[0]),
	})

	db, err := repository.NewDatabase(cfg.Storage.DBPath)
	if err != nil {
		if logCloser != nil {
			_ = logCloser.Close()
		}
		return nil, err
	}

	c, err := NewCoreWithDB(cfg, db, opts)
	if err != nil {
		_ = db.Close()
		if logCloser != nil {
			_ = logCloser.Close()
		}
		return nil, err
	}
	c.LogCloser = logCloser
	return c, nil
}

// NewCoreWithDB 基于已打开的数据库装配仓储与服务
func NewCoreWithDB(cfg *config.Config, db *repository.Database, opts Options) (*Core, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	clock := opts.Clock
	if clock == nil {
		clock = service.SystemClock{}
	}

	c := &Core{Cfg: cfg, DB: db, Tuning: service.NewTuningStore(TuningFromConfig(cfg.Analytics)), Hub: eventbus.NewHub()}

	// Repos
	c.Repos.Timed = repository.NewTimedSessionRepository(db.DB)
	c.Repos.Pomodoro = repository.NewPomodoroSessionRepository(db.DB)
	c.Repos.Subjects = repository.NewSubjectRepository(db.DB)

	// Services
	c.Services.History = service.NewHistoryService(c.Repos.Timed, c.Repos.Pomodoro, loc)
	c.Services.Stats = service.NewStatsService(c.Services.History, c.Tuning)
	c.Services.Insights = service.NewInsightService(c.Services.History, c.Tuning, clock)
	c.Services.Suggestions = service.NewSuggestionService(c.Services.History, c.Tuning, clock)
	c.Services.Comparison = service.NewComparisonService(c.Services.Stats, c.Tuning)

	return c, nil
}

// ApplyConfig 热更新阈值；存储路径、时区等需重启生效
func (c *Core) ApplyConfig(cfg *config.Config) {
	if c == nil || cfg == nil {
		return
	}
	t := TuningFromConfig(cfg.Analytics)
	c.Tuning.Store(t)
	c.Hub.Publish(eventbus.Event{
		Type: eventbus.TypeTuningUpdated,
		Data: map[string]any{
			"long_session_minutes":  t.LongSessionMinutes,
			"short_session_minutes": t.ShortSessionMinutes,
			"trend_window_days":     t.TrendWindowDays,
			"recent_sample_size":    t.RecentSampleSize,
		},
	})
}

// TuningFromConfig 将配置映射为引擎阈值
func TuningFromConfig(a config.AnalyticsConfig) service.Tuning {
	return service.Tuning{
		PreferredWindowDays:      a.PreferredWindowDays,
		TrendWindowDays:          a.TrendWindowDays,
		TrendChangePercent:       a.TrendChangePercent,
		RecommendationWindowDays: a.RecommendationWindowDays,
		RecentSampleSize:         a.RecentSampleSize,
		LongSessionMinutes:       a.LongSessionMinutes,
		ShortSessionMinutes:      a.ShortSessionMinutes,
		AfternoonStartHour:       a.AfternoonStartHour,
		AfternoonEndHour:         a.AfternoonEndHour,
		InterruptionRatio:        a.InterruptionRatio,
		LowCompletionRate:        a.LowCompletionRate,
		HighCompletionRate:       a.HighCompletionRate,
		MinFocusForRate:          a.MinFocusForRate,
		StudyTimeDeltaMinutes:    a.StudyTimeDeltaMinutes,
		CompletionRateDelta:      a.CompletionRateDelta,
		StudyDaysDelta:           a.StudyDaysDelta,
	}
}

// Close 关闭核心依赖资源
func (c *Core) Close() error {
	if c == nil {
		return nil
	}
	var dbErr error
	if c.DB != nil {
		dbErr = c.DB.Close()
	}
	if c.LogCloser != nil {
		_ = c.LogCloser.Close()
	}
	return dbErr
}
