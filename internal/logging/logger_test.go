package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_RenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, slog.LevelDebug)
	l.Debug("field failed", "error", errors.New("is invalid"))
	out := buf.String()
	if !strings.Contains(out, `err="is invalid"`) {
		t.Fatalf("expected err key, got %q", out)
	}
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, slog.LevelInfo)
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug record should be filtered, got %q", buf.String())
	}
}

func TestNewNop(t *testing.T) {
	NewNop().Error("dropped")
}
