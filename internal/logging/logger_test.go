package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.in); got != tc.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleHandlerLiftsComponent(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	NewComponentLogger(logger, "coordinator").Info("route switched", String(FieldDevice, "AA:BB:CC:DD:EE:FF"))

	line := buf.String()
	if !strings.Contains(line, "[coordinator]") {
		t.Fatalf("component not lifted into header: %q", line)
	}
	if !strings.Contains(line, "device=AA:BB:CC:DD:EE:FF") {
		t.Fatalf("missing device attr: %q", line)
	}
	if !strings.Contains(line, "route switched") {
		t.Fatalf("missing message: %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Info("device seen", String("name", "Living Room Speaker"))

	if !strings.Contains(buf.String(), `name="Living Room Speaker"`) {
		t.Fatalf("value not quoted: %q", buf.String())
	}
}

func TestJSONHandlerFieldNames(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newJSONHandler(&buf, lvl))

	logger.Info("persisted", Int("volume", 9))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if payload["msg"] != "persisted" {
		t.Fatalf("msg field = %v", payload["msg"])
	}
	if payload["level"] != "info" {
		t.Fatalf("level field = %v", payload["level"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatal("missing ts field")
	}
	if payload["volume"] != float64(9) {
		t.Fatalf("volume field = %v", payload["volume"])
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(t.Context(), slog.LevelError) {
		t.Fatal("nop logger should report disabled at every level")
	}
}
