package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var record map[string]any
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		records = append(records, record)
	}
	return records
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("warn", &buf)
	ctx := context.Background()

	logger.Debug(ctx, "debug msg")
	logger.Info(ctx, "info msg")
	logger.Warn(ctx, "warn msg")
	logger.Error(ctx, "error msg")

	records := decodeLines(t, &buf)
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0]["level"] != "warn" || records[1]["level"] != "error" {
		t.Errorf("levels = %v, %v", records[0]["level"], records[1]["level"])
	}
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Info(context.Background(), "request done", F("status", 200), F("path", "/Accounts"))

	records := decodeLines(t, &buf)
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if records[0]["status"] != float64(200) {
		t.Errorf("status = %v", records[0]["status"])
	}
	if records[0]["path"] != "/Accounts" {
		t.Errorf("path = %v", records[0]["path"])
	}
	if records[0]["msg"] != "request done" {
		t.Errorf("msg = %v", records[0]["msg"])
	}
}

func TestLogger_WithAttachesBaseFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	scoped := logger.With(F("tool", "list_accounts"), F("invocation_id", "abc-123"))
	scoped.Info(context.Background(), "started")

	// The parent logger must not inherit the scoped fields.
	logger.Info(context.Background(), "unscoped")

	records := decodeLines(t, &buf)
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0]["tool"] != "list_accounts" || records[0]["invocation_id"] != "abc-123" {
		t.Errorf("scoped record = %v", records[0])
	}
	if _, ok := records[1]["tool"]; ok {
		t.Error("unscoped record should not carry tool field")
	}
}

func TestLogger_RedactsSensitiveFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Info(context.Background(), "exchange done",
		F("client_secret", "hunter2"),
		F("token", "platform-token"),
		F("status", 200),
	)
	logger.With(F("password", "hunter2")).Info(context.Background(), "scoped")

	records := decodeLines(t, &buf)
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0]["client_secret"] != "[REDACTED]" || records[0]["token"] != "[REDACTED]" {
		t.Errorf("sensitive fields not redacted: %v", records[0])
	}
	if records[0]["status"] != float64(200) {
		t.Errorf("non-sensitive field altered: %v", records[0]["status"])
	}
	if records[1]["password"] != "[REDACTED]" {
		t.Errorf("With() field not redacted: %v", records[1])
	}
	if strings.Contains(buf.String(), "hunter2") || strings.Contains(buf.String(), "platform-token") {
		t.Error("secret value present in log output")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
