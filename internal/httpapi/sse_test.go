package httpapi

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSSEStreamsTuningUpdates(t *testing.T) {
	core := newTestCore(t)
	ts := httptest.NewServer(NewHandler(core))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	readEvent := func() string {
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if strings.HasPrefix(line, "event: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "event: "))
			}
		}
	}

	if name := readEvent(); name != "ready" {
		t.Fatalf("first event=%q", name)
	}

	cfg := *core.Cfg
	cfg.Analytics.ShortSessionMinutes = 20
	core.ApplyConfig(&cfg)

	if name := readEvent(); name != "tuning_updated" {
		t.Fatalf("event=%q", name)
	}
}

func TestSanitizeSSEName(t *testing.T) {
	if got := sanitizeSSEName(" a\nb\r "); got != "ab" {
		t.Fatalf("got %q", got)
	}
	if got := sanitizeSSEName(""); got != "message" {
		t.Fatalf("got %q", got)
	}
}
