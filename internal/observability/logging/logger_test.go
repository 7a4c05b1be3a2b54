package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.in); got != tc.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewJSONLoggerDefaultsServiceName(t *testing.T) {
	if logger := NewJSONLogger("", "info"); logger == nil {
		t.Fatal("expected a logger")
	}
	if logger := NewJSONLogger("api", "debug"); !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug level must be enabled")
	}
}
