package testutil

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/yuqie6/StudyMirror/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenTestDB 打开内存 SQLite 并自动迁移所有表
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	// 每个连接都会得到独立的内存库，这里固定为单连接
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&schema.ExamType{},
		&schema.SubjectArea{},
		&schema.TimedSession{},
		&schema.PomodoroSession{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return db
}

// IntPtr 返回 int 指针，便于构造可空字段
func IntPtr(v int) *int { return &v }

// Int64Ptr 返回 int64 指针
func Int64Ptr(v int64) *int64 { return &v }
