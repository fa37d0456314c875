package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"ERROR", LevelError},
		{"bogus", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLevelString(t *testing.T) {
	if LevelDebug.String() != "DEBUG" || LevelError.String() != "ERROR" {
		t.Error("level names mismatch")
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, Output: &buf})

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	l.Error("shown too")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("messages below the level should be dropped: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "shown too") {
		t.Errorf("messages at or above the level should be emitted: %q", out)
	}
}

func TestLoggerFormatting(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Output: &buf, Prefix: "test"})

	l.Info("value is %d", 42)

	out := buf.String()
	if !strings.Contains(out, "[INFO] test: value is 42") {
		t.Errorf("unexpected format: %q", out)
	}
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Output: &buf})

	l.WithComponent("bridge").WithField("pid", 7).Info("msg")

	out := buf.String()
	if !strings.Contains(out, "{component=bridge, pid=7}") {
		t.Errorf("fields should be sorted and braced: %q", out)
	}
}

func TestLoggerWithFieldDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Output: &buf})

	child := l.WithField("k", "v")
	l.Info("parent")
	child.Info("child")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if strings.Contains(lines[0], "k=v") {
		t.Error("parent logger should not carry the child's field")
	}
	if !strings.Contains(lines[1], "k=v") {
		t.Error("child logger should carry its field")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	var buf bytes.Buffer
	Nop.SetOutput(&buf)
	defer Nop.SetOutput(nil)

	Nop.Error("never")
	Nop.WithComponent("x").Error("never either")

	if buf.Len() != 0 {
		t.Errorf("nop logger should write nothing, got %q", buf.String())
	}
}

func TestLoggerSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelError, Output: &buf})

	l.Info("hidden")
	l.SetLevel(LevelDebug)
	l.Info("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("message before SetLevel should be dropped")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("message after SetLevel should be emitted")
	}
}
