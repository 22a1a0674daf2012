package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "app:\n  timezone: UTC\n  log_level: error\nstorage:\n  db_path: " + filepath.Join(dir, "study.db") + "\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(args ...string) error {
	root := newRootCmd()
	root.SilenceUsage = true
	root.SilenceErrors = true
	root.SetArgs(args)
	return root.Execute()
}

func TestSeedThenListSubjects(t *testing.T) {
	cfg := writeTestConfig(t)

	captureStdout(t, func() error { return runCLI("--config", cfg, "--user", "7", "seed", "--days", "2") })

	out := captureStdout(t, func() error { return runCLI("--config", cfg, "--user", "7", "subjects") })
	if !strings.Contains(out, `"count": 2`) || !strings.Contains(out, "Listening") || !strings.Contains(out, "TOEIC") {
		t.Fatalf("subjects output=%s", out)
	}

	out = captureStdout(t, func() error { return runCLI("--config", cfg, "--user", "8", "subjects") })
	if !strings.Contains(out, `"count": 0`) {
		t.Fatalf("other user output=%s", out)
	}
	if core != nil {
		t.Fatalf("core should be released after each command")
	}
}

func TestCoreReleasedWhenCommandFails(t *testing.T) {
	cfg := writeTestConfig(t)

	if err := runCLI("--config", cfg, "history", "--limit", "0"); err == nil {
		t.Fatalf("expected invalid limit error")
	}
	if core != nil {
		t.Fatalf("core must be closed on error paths")
	}

	// 出错后同一数据库仍可再次打开使用
	out := captureStdout(t, func() error { return runCLI("--config", cfg, "history") })
	if !strings.Contains(out, `"count": 0`) {
		t.Fatalf("history output=%s", out)
	}
}
