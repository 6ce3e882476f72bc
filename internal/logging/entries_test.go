package logging

import (
	"testing"
	"time"
)

func TestLogEntry_String(t *testing.T) {
	entry := LogEntry{
		Timestamp: time.Date(2025, 1, 27, 10, 30, 0, 0, time.UTC),
		Level:     "ERROR",
		Scope:     "launch",
		Message:   "launch failed",
		Fields:    map[string]any{"path": "/src/app", "error": "not found"},
	}

	got := entry.String()
	want := "10:30:00 ERROR [launch] launch failed error=not found path=/src/app"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestLogEntry_Summary(t *testing.T) {
	tests := []struct {
		level string
		want  string
	}{
		{"INFO", "loaded"},
		{"DEBUG", "loaded"},
		{"WARN", "WARN: loaded"},
		{"ERROR", "ERROR: loaded"},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			e := LogEntry{Level: tt.level, Message: "loaded"}
			if got := e.Summary(); got != tt.want {
				t.Errorf("Summary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"debug", "DEBUG"},
		{"INFO", "INFO"},
		{"warning", "WARN"},
		{"warn", "WARN"},
		{"error", "ERROR"},
		{"dpanic", "ERROR"},
		{"unknown", "INFO"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
