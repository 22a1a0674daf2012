package repository

import (
	"path/filepath"
	"testing"

	"github.com/yuqie6/StudyMirror/internal/schema"
)

func indexExists(t *testing.T, d *Database, name string) bool {
	t.Helper()
	var n int64
	if err := d.DB.Raw("SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = ?", name).Scan(&n).Error; err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	return n == 1
}

func TestNewDatabaseAppliesAllMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study.db")
	d, err := NewDatabase(path)
	if err != nil {
		t.Fatalf("NewDatabase error: %v", err)
	}
	defer d.Close()

	if d.SafeMode || d.SchemaVersion != latestSchemaVersion() {
		t.Fatalf("safe=%v version=%d, want %d", d.SafeMode, d.SchemaVersion, latestSchemaVersion())
	}
	for _, idx := range []string{"idx_timed_user_subject_start", "idx_pomodoro_user_subject_start"} {
		if !indexExists(t, d, idx) {
			t.Fatalf("index %s missing", idx)
		}
	}
}

func TestNewDatabaseUpgradesFromV1(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study.db")
	d, err := NewDatabase(path)
	if err != nil {
		t.Fatalf("NewDatabase error: %v", err)
	}
	if err := d.DB.Exec("DROP INDEX idx_timed_user_subject_start").Error; err != nil {
		t.Fatalf("drop index: %v", err)
	}
	if err := d.DB.Model(&schema.SchemaMeta{}).Where("id = ?", 1).Update("schema_version", 1).Error; err != nil {
		t.Fatalf("downgrade version: %v", err)
	}
	_ = d.Close()

	d, err = NewDatabase(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer d.Close()
	if d.SchemaVersion != 2 || !indexExists(t, d, "idx_timed_user_subject_start") {
		t.Fatalf("v1 database not upgraded: version=%d", d.SchemaVersion)
	}
}

func TestNewDatabaseNewerSchemaEntersSafeMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study.db")
	d, err := NewDatabase(path)
	if err != nil {
		t.Fatalf("NewDatabase error: %v", err)
	}
	if err := d.DB.Model(&schema.SchemaMeta{}).Where("id = ?", 1).Update("schema_version", 99).Error; err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = d.Close()

	d, err = NewDatabase(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer d.Close()
	if !d.SafeMode || d.SchemaVersion != 99 || d.MigrationError == "" {
		t.Fatalf("safe=%v version=%d err=%q", d.SafeMode, d.SchemaVersion, d.MigrationError)
	}
}
