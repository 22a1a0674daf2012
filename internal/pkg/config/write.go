package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

func DefaultConfigPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("获取可执行文件路径失败: %w", err)
	}
	exeDir := filepath.Dir(exe)
	return filepath.Join(exeDir, "config", "config.yaml"), nil
}

// Marshal 将配置序列化为 yaml（键名与 mapstructure 标签一致）
func Marshal(cfg *Config) ([]byte, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cfg 不能为空")
	}
	a := cfg.Analytics
	payload := map[string]any{
		"app": map[string]any{
			"name":      cfg.App.Name,
			"version":   cfg.App.Version,
			"log_level": cfg.App.LogLevel,
			"log_path":  cfg.App.LogPath,
			"timezone":  cfg.App.Timezone,
		},
		"storage": map[string]any{
			"db_path": cfg.Storage.DBPath,
		},
		"server": map[string]any{
			"listen_addr": cfg.Server.ListenAddr,
		},
		"analytics": map[string]any{
			"preferred_window_days":      a.PreferredWindowDays,
			"trend_window_days":          a.TrendWindowDays,
			"trend_change_percent":       a.TrendChangePercent,
			"recommendation_window_days": a.RecommendationWindowDays,
			"recent_sample_size":         a.RecentSampleSize,
			"long_session_minutes":       a.LongSessionMinutes,
			"short_session_minutes":      a.ShortSessionMinutes,
			"afternoon_start_hour":       a.AfternoonStartHour,
			"afternoon_end_hour":         a.AfternoonEndHour,
			"interruption_ratio":         a.InterruptionRatio,
			"low_completion_rate":        a.LowCompletionRate,
			"high_completion_rate":       a.HighCompletionRate,
			"min_focus_for_rate":         a.MinFocusForRate,
			"study_time_delta_minutes":   a.StudyTimeDeltaMinutes,
			"completion_rate_delta":      a.CompletionRateDelta,
			"study_days_delta":           a.StudyDaysDelta,
		},
	}

	b, err := yaml.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("序列化配置失败: %w", err)
	}
	return b, nil
}

func WriteFile(path string, cfg *Config) error {
	if path == "" {
		return fmt.Errorf("path 不能为空")
	}
	b, err := Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}
	return nil
}
