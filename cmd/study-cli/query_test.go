package main

import (
	"io"
	"os"
	"strings"
	"testing"
)

func TestParsePeriodFlag(t *testing.T) {
	p, err := parsePeriodFlag("2026-05-11:2026-05-17")
	if err != nil || p.StartDate != "2026-05-11" || p.EndDate != "2026-05-17" {
		t.Fatalf("p=%+v err=%v", p, err)
	}
	for _, bad := range []string{"", "2026-05-11", ":2026-05-17", "2026-05-11:"} {
		if _, err := parsePeriodFlag(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w
	runErr := fn()
	os.Stdout = orig
	_ = w.Close()
	b, _ := io.ReadAll(r)
	if runErr != nil {
		t.Fatalf("run error: %v", runErr)
	}
	return string(b)
}

func TestPrintOutputFormats(t *testing.T) {
	payload := map[string]any{"total_study_time": 85}

	outputFormat = "json"
	if got := captureStdout(t, func() error { return printOutput(payload) }); !strings.Contains(got, `"total_study_time": 85`) {
		t.Fatalf("json output=%q", got)
	}

	outputFormat = "yaml"
	if got := captureStdout(t, func() error { return printOutput(payload) }); !strings.Contains(got, "total_study_time: 85") {
		t.Fatalf("yaml output=%q", got)
	}

	outputFormat = "xml"
	if err := printOutput(payload); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	outputFormat = "json"
}
