package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLevelFromString(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"error":   slog.LevelError,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"info":    slog.LevelInfo,
		"":        slog.LevelDebug,
		"trace":   slog.LevelDebug,
	}
	for input, want := range cases {
		if got := levelFromString(input); got != want {
			t.Fatalf("levelFromString(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewWithWriterJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "info", "json")
	logger.Debug("hidden")
	logger.Info("Publish item now: /sitecore/content/Home", "audit", true)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug record leaked at info level: %s", out)
	}
	if !strings.Contains(out, `"audit":true`) {
		t.Fatalf("expected json audit attribute, got %s", out)
	}
}
