package app

import (
	"log/slog"
	"testing"
)

func TestLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := logLevel(&Config{LogLevel: in}); got != want {
			t.Errorf("logLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if got := logLevel(nil); got != slog.LevelInfo {
		t.Errorf("logLevel(nil) = %v, want info", got)
	}
}

func TestInTestModeFlagValues(t *testing.T) {
	for _, on := range []string{"1", "true"} {
		t.Setenv("TASKWARD_TEST_MODE", on)
		RefreshTestMode()
		if !InTestMode() {
			t.Errorf("InTestMode() = false for %q", on)
		}
	}
	t.Setenv("TASKWARD_TEST_MODE", "0")
	RefreshTestMode()
	if InTestMode() {
		t.Error("InTestMode() = true for \"0\"")
	}
}
