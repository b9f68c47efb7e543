package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestHandlerMasksSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, nil))

	logger.Info("deploying", "server", "github", "api_token", "ghp_supersecret")

	out := buf.String()
	if strings.Contains(out, "ghp_supersecret") {
		t.Errorf("secret leaked into log output: %s", out)
	}
	if !strings.Contains(out, "ghp_") {
		t.Errorf("expected masked prefix in output: %s", out)
	}
	if !strings.Contains(out, "server=github") {
		t.Errorf("non-secret attribute mangled: %s", out)
	}
}

func TestHandlerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	logger.Info("hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record emitted below min level: %s", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("warn record missing: %s", out)
	}
}

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		v    int
		want slog.Level
	}{
		{0, slog.LevelWarn},
		{1, slog.LevelInfo},
		{2, slog.LevelDebug},
		{5, slog.LevelDebug},
	}
	for _, tt := range tests {
		if got := LevelFromVerbosity(tt.v); got != tt.want {
			t.Errorf("LevelFromVerbosity(%d) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestMaskValue(t *testing.T) {
	if got := maskValue("abc"); got != "****" {
		t.Errorf("short value mask = %q", got)
	}
	if got := maskValue("abcdefgh"); got != "abcd****" {
		t.Errorf("mask = %q", got)
	}
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	logger := slog.New(NewMultiHandler(
		NewHandler(&a, nil),
		NewHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	))

	logger.Info("hello")
	if !strings.Contains(a.String(), "hello") {
		t.Error("first handler missed the record")
	}
	if b.Len() != 0 {
		t.Error("second handler should have filtered the record")
	}
}

func TestSupportsColor(t *testing.T) {
	var buf bytes.Buffer
	if SupportsColor(&buf) {
		t.Error("a plain buffer is not a terminal")
	}
	if IsTTY(&buf) {
		t.Error("a plain buffer must not report as a TTY")
	}

	t.Setenv("NO_COLOR", "1")
	if SupportsColor(&buf) {
		t.Error("NO_COLOR must disable color")
	}
}
