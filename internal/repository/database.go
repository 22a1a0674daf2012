package repository

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite" // 纯 Go SQLite 驱动
	"github.com/yuqie6/StudyMirror/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database 数据库管理器
type Database struct {
	DB             *gorm.DB
	SafeMode       bool
	SchemaVersion  int
	MigrationError string
}

// NewDatabase 创建数据库连接
func NewDatabase(dbPath string) (*Database, error) {
	// 确保目录存在
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("创建数据目录失败: %w", err)
	}

	// 连接数据库
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 内存库不支持 WAL，跳过 pragma
	if dbPath != ":memory:" {
		if err := configureDB(db); err != nil {
			return nil, fmt.Errorf("配置数据库失败: %w", err)
		}
	}

	d := &Database{DB: db}
	if err := migrateWithVersion(db, d); err != nil {
		// 迁移失败进入安全模式：只读接口仍可启动，方便导出诊断信息。
		d.SafeMode = true
		d.MigrationError = err.Error()
		slog.Error("数据库迁移失败，进入安全模式", "error", err)
	}

	slog.Info("数据库初始化成功", "path", dbPath)

	return d, nil
}

// configureDB 配置 SQLite 性能参数
func configureDB(db *gorm.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",    // 启用 WAL 模式，支持并发读写
		"PRAGMA synchronous=NORMAL",  // 平衡性能与安全
		"PRAGMA cache_size=10000",    // 增加缓存 (~40MB)
		"PRAGMA temp_store=MEMORY",   // 临时表使用内存
		"PRAGMA mmap_size=268435456", // 启用内存映射 (256MB)
	}

	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return fmt.Errorf("执行 %s 失败: %w", pragma, err)
		}
	}

	return nil
}

// models 返回需要迁移的全部表模型
func models() []interface{} {
	return []interface{}{
		&schema.SchemaMeta{},
		&schema.ExamType{},
		&schema.SubjectArea{},
		&schema.TimedSession{},
		&schema.PomodoroSession{},
	}
}

// migration 单步结构升级，按 version 递增顺序执行
type migration struct {
	version int
	name    string
	apply   func(tx *gorm.DB) error
}

var migrations = []migration{
	{
		version: 1,
		name:    "创建学习记录表",
		apply:   func(tx *gorm.DB) error { return tx.AutoMigrate(models()...) },
	},
	{
		// 推荐按科目取最近记录：user_id + subject_area_id + started_at
		version: 2,
		name:    "科目维度索引",
		apply: func(tx *gorm.DB) error {
			for _, stmt := range []string{
				"CREATE INDEX IF NOT EXISTS idx_timed_user_subject_start ON time_tracking_sessions(user_id, subject_area_id, started_at)",
				"CREATE INDEX IF NOT EXISTS idx_pomodoro_user_subject_start ON pomodoro_sessions(user_id, subject_area_id, started_at)",
			} {
				if err := tx.Exec(stmt).Error; err != nil {
					return err
				}
			}
			return nil
		},
	},
}

func latestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// migrateWithVersion 依次执行高于当前 schema_version 的迁移，每步单独提交
func migrateWithVersion(db *gorm.DB, out *Database) error {
	if db == nil {
		return fmt.Errorf("db 不能为空")
	}
	if out == nil {
		return fmt.Errorf("out 不能为空")
	}

	if err := db.AutoMigrate(&schema.SchemaMeta{}); err != nil {
		return fmt.Errorf("创建 schema_meta 失败: %w", err)
	}

	var meta schema.SchemaMeta
	if err := db.First(&meta, 1).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("读取 schema_meta 失败: %w", err)
		}
		meta = schema.SchemaMeta{ID: 1, SchemaVersion: 0}
		if err := db.Create(&meta).Error; err != nil {
			return fmt.Errorf("初始化 schema_meta 失败: %w", err)
		}
	}
	out.SchemaVersion = meta.SchemaVersion

	latest := latestSchemaVersion()
	if meta.SchemaVersion > latest {
		return fmt.Errorf("数据库 schema_version=%d 高于当前程序支持的版本=%d", meta.SchemaVersion, latest)
	}

	for _, m := range migrations {
		if m.version <= meta.SchemaVersion {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.apply(tx); err != nil {
				return err
			}
			return tx.Model(&schema.SchemaMeta{}).Where("id = ?", 1).Update("schema_version", m.version).Error
		})
		if err != nil {
			return fmt.Errorf("迁移 v%d（%s）失败: %w", m.version, m.name, err)
		}
		slog.Info("数据库迁移完成", "version", m.version, "name", m.name)
		meta.SchemaVersion = m.version
		out.SchemaVersion = m.version
	}
	return nil
}

// Close 关闭数据库连接
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
