package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"loud", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHandlerRoutesByLevel(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := slog.New(NewHandler(&stdout, &stderr, slog.LevelInfo))

	logger.Debug("hidden")
	logger.Info("item added", "model", "aguila")
	logger.Warn("stored inventory unreadable")
	logger.Error("persist failed")

	out, errOut := stdout.String(), stderr.String()
	if strings.Contains(out, "hidden") || strings.Contains(errOut, "hidden") {
		t.Error("debug record written at info level")
	}
	if !strings.Contains(out, "item added") || !strings.Contains(out, "model=aguila") {
		t.Errorf("info missing from stdout: %q", out)
	}
	if !strings.Contains(out, "stored inventory unreadable") {
		t.Errorf("warn missing from stdout: %q", out)
	}
	if strings.Contains(out, "persist failed") || !strings.Contains(errOut, "persist failed") {
		t.Errorf("error not routed to stderr only: stdout=%q stderr=%q", out, errOut)
	}
}

func TestHandlerWithAttrsKeepsLevel(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := slog.New(NewHandler(&stdout, &stderr, slog.LevelWarn)).With("component", "scan")

	logger.Info("hidden")
	logger.Warn("slow engine")

	if strings.Contains(stdout.String(), "hidden") {
		t.Error("info record written at warn level")
	}
	if !strings.Contains(stdout.String(), "component=scan") {
		t.Errorf("expected attrs carried over: %q", stdout.String())
	}
}
