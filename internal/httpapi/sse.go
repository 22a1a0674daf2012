package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

const ssePingInterval = 15 * time.Second

// handleSSE 推送配置热更新等事件
func (a *apiServer) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "stream not supported")
		return
	}
	if a.core.Hub == nil {
		writeError(w, http.StatusServiceUnavailable, "hub 未初始化")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx := r.Context()
	sub := a.core.Hub.Subscribe(ctx, 32)

	writeSSE(w, "ready", []byte("{}"))
	flusher.Flush()

	ticker := time.NewTicker(ssePingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			writeSSE(w, "ping", []byte("{}"))
			flusher.Flush()
		case evt, ok := <-sub:
			if !ok {
				return
			}
			b, _ := json.Marshal(evt)
			writeSSE(w, evt.Type, b)
			flusher.Flush()
		}
	}
}

func writeSSE(w io.Writer, name string, data []byte) {
	_, _ = io.WriteString(w, "event: "+sanitizeSSEName(name)+"\n")
	_, _ = io.WriteString(w, "data: ")
	_, _ = w.Write(data)
	_, _ = io.WriteString(w, "\n\n")
}

func sanitizeSSEName(name string) string {
	n := strings.TrimSpace(name)
	if n == "" {
		return "message"
	}
	n = strings.ReplaceAll(n, "\n", "")
	return strings.ReplaceAll(n, "\r", "")
}
