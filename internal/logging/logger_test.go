package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

// captureJSON swaps the default logger for a JSON handler writing into the
// returned buffer, restoring the original when the test ends.
func captureJSON(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(old) })
	return &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFromContext_RequestID(t *testing.T) {
	buf := captureJSON(t)

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	FromContext(ctx).Info("hello")

	if out := buf.String(); !strings.Contains(out, `"request_id":"req-42"`) {
		t.Errorf("log entry = %s, want request_id field", out)
	}
}

func TestFromContext_NoRequestID(t *testing.T) {
	buf := captureJSON(t)

	FromContext(context.Background()).Info("hello")

	if out := buf.String(); strings.Contains(out, "request_id") {
		t.Errorf("log entry = %s, want no request_id field", out)
	}
}

func TestWithFields(t *testing.T) {
	buf := captureJSON(t)

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	WithFields(ctx, "batch_id", "20250101_120000_000001").Info("analysis saved")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-42"`) {
		t.Errorf("log entry = %s, want request_id field", out)
	}
	if !strings.Contains(out, `"batch_id":"20250101_120000_000001"`) {
		t.Errorf("log entry = %s, want batch_id field", out)
	}
}
