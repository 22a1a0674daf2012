package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yuqie6/StudyMirror/internal/eventbus"
	"github.com/yuqie6/StudyMirror/internal/pkg/config"
	"github.com/yuqie6/StudyMirror/internal/schema"
	"github.com/yuqie6/StudyMirror/internal/service"
)

func TestTuningFromConfigMatchesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("app:\n  timezone: UTC\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got := TuningFromConfig(cfg.Analytics); got != service.DefaultTuning() {
		t.Fatalf("config defaults drifted from engine defaults:\n%+v\n%+v", got, service.DefaultTuning())
	}
}

func TestNewCoreEndToEnd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "app:\n  timezone: UTC\n  log_level: error\nstorage:\n  db_path: " + filepath.Join(dir, "study.db") + "\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	now := time.Date(2026, 5, 20, 14, 0, 0, 0, time.UTC)
	core, err := NewCore(path, Options{Clock: service.FixedClock(now)})
	if err != nil {
		t.Fatalf("NewCore error: %v", err)
	}
	defer core.Close()

	if core.DB.SafeMode {
		t.Fatalf("migration failed: %s", core.DB.MigrationError)
	}

	ctx := context.Background()
	start := now.Add(-24 * time.Hour)
	if err := core.Repos.Timed.Create(ctx, &schema.TimedSession{UserID: 1, StartedAt: start.UnixMilli(), EndedAt: start.Add(2 * time.Hour).UnixMilli(), DurationMinutes: 120}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	stats, err := core.Services.Stats.GetUnifiedStats(ctx, 1, service.Period{})
	if err != nil || stats.Overview.TotalStudyTime != 120 {
		t.Fatalf("stats err=%v overview=%+v", err, stats)
	}

	s, err := core.Services.Suggestions.SuggestStudyMethod(ctx, 1, nil)
	if err != nil || s.Recommended.Method != service.ActivityTimeTracking || s.Context.TimeOfDay != 14 {
		t.Fatalf("suggestion err=%v got=%+v", err, s)
	}

	sub := core.Hub.Subscribe(ctx, 1)
	cfg := *core.Cfg
	cfg.Analytics.LongSessionMinutes = 200
	core.ApplyConfig(&cfg)
	if evt := <-sub; evt.Type != eventbus.TypeTuningUpdated || evt.Data["long_session_minutes"] != 200 {
		t.Fatalf("unexpected event %+v", evt)
	}
	s, err = core.Services.Suggestions.SuggestStudyMethod(ctx, 1, nil)
	if err != nil || s.Recommended.Rule == service.RuleLongSessions {
		t.Fatalf("reloaded threshold not applied: err=%v got=%+v", err, s.Recommended)
	}
}
