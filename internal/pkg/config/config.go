package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Server    ServerConfig    `mapstructure:"server"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Version  string `mapstructure:"version"`
	LogLevel string `mapstructure:"log_level"`
	LogPath  string `mapstructure:"log_path"`
	Timezone string `mapstructure:"timezone"` // IANA 名称，Local 表示系统时区
}

// StorageConfig 存储配置
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// ServerConfig HTTP 配置
type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// AnalyticsConfig 统计/推荐阈值
type AnalyticsConfig struct {
	PreferredWindowDays      int     `mapstructure:"preferred_window_days"`
	TrendWindowDays          int     `mapstructure:"trend_window_days"`
	TrendChangePercent       float64 `mapstructure:"trend_change_percent"`
	RecommendationWindowDays int     `mapstructure:"recommendation_window_days"`
	RecentSampleSize         int     `mapstructure:"recent_sample_size"`
	LongSessionMinutes       int     `mapstructure:"long_session_minutes"`
	ShortSessionMinutes      int     `mapstructure:"short_session_minutes"`
	AfternoonStartHour       int     `mapstructure:"afternoon_start_hour"`
	AfternoonEndHour         int     `mapstructure:"afternoon_end_hour"`
	InterruptionRatio        float64 `mapstructure:"interruption_ratio"`
	LowCompletionRate        float64 `mapstructure:"low_completion_rate"`
	HighCompletionRate       float64 `mapstructure:"high_completion_rate"`
	MinFocusForRate          int     `mapstructure:"min_focus_for_rate"`
	StudyTimeDeltaMinutes    int     `mapstructure:"study_time_delta_minutes"`
	CompletionRateDelta      float64 `mapstructure:"completion_rate_delta"`
	StudyDaysDelta           int     `mapstructure:"study_days_delta"`
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// 设置默认值
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// 支持环境变量，如 STUDY_STORAGE_DB_PATH
	v.SetEnvPrefix("STUDY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Warn("配置文件未找到，使用默认配置")
		} else {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	} else {
		slog.Info("加载配置文件", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.Storage.DBPath = resolvePath(cfg.Storage.DBPath)
	cfg.App.LogPath = resolvePath(cfg.App.LogPath)

	return &cfg, nil
}

// Default 返回未读取任何文件时的默认配置（路径保持相对）
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "study-mirror")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_path", "")
	v.SetDefault("app.timezone", "Local")

	// Storage
	v.SetDefault("storage.db_path", "./data/study.db")

	// Server
	v.SetDefault("server.listen_addr", "127.0.0.1:8420")

	// Analytics
	v.SetDefault("analytics.preferred_window_days", 30)
	v.SetDefault("analytics.trend_window_days", 7)
	v.SetDefault("analytics.trend_change_percent", 10.0)
	v.SetDefault("analytics.recommendation_window_days", 90)
	v.SetDefault("analytics.recent_sample_size", 10)
	v.SetDefault("analytics.long_session_minutes", 90)
	v.SetDefault("analytics.short_session_minutes", 25)
	v.SetDefault("analytics.afternoon_start_hour", 13)
	v.SetDefault("analytics.afternoon_end_hour", 17)
	v.SetDefault("analytics.interruption_ratio", 0.5)
	v.SetDefault("analytics.low_completion_rate", 70.0)
	v.SetDefault("analytics.high_completion_rate", 90.0)
	v.SetDefault("analytics.min_focus_for_rate", 3)
	v.SetDefault("analytics.study_time_delta_minutes", 60)
	v.SetDefault("analytics.completion_rate_delta", 10.0)
	v.SetDefault("analytics.study_days_delta", 3)
}

// Validate 校验取值范围
func (c *Config) Validate() error {
	a := c.Analytics
	if a.AfternoonStartHour < 0 || a.AfternoonEndHour > 24 || a.AfternoonStartHour >= a.AfternoonEndHour {
		return fmt.Errorf("analytics 午后窗口非法: [%d,%d)", a.AfternoonStartHour, a.AfternoonEndHour)
	}
	if a.TrendWindowDays < 1 || a.PreferredWindowDays < 1 || a.RecommendationWindowDays < 1 {
		return fmt.Errorf("analytics 窗口天数必须为正数")
	}
	if a.RecentSampleSize < 1 || a.RecentSampleSize > 100 {
		return fmt.Errorf("analytics.recent_sample_size=%d 超出 [1,100]", a.RecentSampleSize)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location 返回配置的时区
func (c *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.App.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("加载时区 %q 失败: %w", tz, err)
	}
	return loc, nil
}

// resolvePath 解析相对路径为可执行文件目录下的绝对路径
func resolvePath(path string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}

	exe, err := os.Executable()
	if err != nil {
		return path
	}

	exeDir := filepath.Dir(exe)
	return filepath.Join(exeDir, path)
}

// LoggerOptions 日志配置
type LoggerOptions struct {
	Level     string
	Path      string // 为空时只输出到 stdout
	Component string
}

// SetupLogger 根据配置设置日志级别与输出；返回的 Closer 用于关闭日志文件
func SetupLogger(opts LoggerOptions) (io.Closer, error) {
	var logLevel slog.Level
	switch strings.ToLower(opts.Level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var out io.Writer = os.Stdout
	var closer io.Closer
	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, fmt.Errorf("创建日志目录失败: %w", err)
		}
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("打开日志文件失败: %w", err)
		}
		out = io.MultiWriter(os.Stdout, f)
		closer = f
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: logLevel,
	})
	logger := slog.New(handler)
	if opts.Component != "" {
		logger = logger.With("component", opts.Component)
	}
	slog.SetDefault(logger)
	return closer, nil
}
