package render

import (
	"strings"
	"testing"

	"github.com/kagan-sh/textual-terminal/internal/vtgrid"
)

func newTestRenderer() *Renderer {
	return NewRenderer(NewStyleResolver(nil, nil))
}

func TestInitialSnapshot(t *testing.T) {
	s := InitialSnapshot()

	if len(s.Lines) != 1 {
		t.Fatalf("expected one line, got %d", len(s.Lines))
	}
	if s.Text() != "" {
		t.Errorf("expected empty text, got %q", s.Text())
	}
}

func TestSnapshotPlainText(t *testing.T) {
	engine := vtgrid.NewEngine(3, 10)
	engine.Feed([]byte("hi"))

	s := newTestRenderer().Snapshot(engine)

	if len(s.Lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(s.Lines))
	}
	if got := strings.TrimRight(s.Lines[0].Text(), " "); got != "hi" {
		t.Errorf("expected 'hi', got %q", got)
	}
}

func TestSnapshotRunsAreMaximal(t *testing.T) {
	engine := vtgrid.NewEngine(1, 10)
	engine.Feed([]byte("ab\x1b[31mcd\x1b[0mef"))
	// Park the cursor on another row so it does not split a run.
	engine.Resize(2, 10)
	engine.Feed([]byte("\x1b[2;1H"))

	s := newTestRenderer().Snapshot(engine)

	line := s.Lines[0]
	if len(line) != 3 {
		t.Fatalf("expected 3 runs, got %d: %+v", len(line), line)
	}
	if line[0].Text != "ab" {
		t.Errorf("run 0: expected 'ab', got %q", line[0].Text)
	}
	if line[1].Text != "cd" {
		t.Errorf("run 1: expected 'cd', got %q", line[1].Text)
	}
	if !strings.HasPrefix(line[2].Text, "ef") {
		t.Errorf("run 2: expected 'ef' then padding, got %q", line[2].Text)
	}

	// Adjacent runs never share a style.
	for i := 1; i < len(line); i++ {
		if line[i].Style == line[i-1].Style {
			t.Errorf("runs %d and %d share a style", i-1, i)
		}
	}
}

func TestSnapshotRunsTileTheRow(t *testing.T) {
	engine := vtgrid.NewEngine(2, 8)
	engine.Feed([]byte("a\x1b[1mb\x1b[0m\x1b[2;1H"))

	s := newTestRenderer().Snapshot(engine)

	for i, line := range s.Lines {
		if line.Width() != 8 {
			t.Errorf("line %d: expected width 8, got %d", i, line.Width())
		}
	}
}

func TestSnapshotCursorIsItsOwnRun(t *testing.T) {
	engine := vtgrid.NewEngine(1, 5)
	engine.Feed([]byte("abc\x1b[1;2H")) // cursor on 'b'

	s := newTestRenderer().Snapshot(engine)

	line := s.Lines[0]
	if len(line) != 3 {
		t.Fatalf("expected 3 runs around the cursor, got %d: %+v", len(line), line)
	}
	if line[1].Text != "b" || line[1].Width != 1 {
		t.Errorf("cursor run should cover exactly 'b', got %+v", line[1])
	}

	// The cursor overlay is reverse video on top of the base style.
	base := line[0].Style
	if line[1].Style != base.Reverse(true) {
		t.Error("cursor run should be the base style reversed")
	}
}

func TestSnapshotWideRuneWidth(t *testing.T) {
	engine := vtgrid.NewEngine(1, 6)
	engine.Feed([]byte("世x\x1b[1;6H"))

	s := newTestRenderer().Snapshot(engine)

	line := s.Lines[0]
	if line.Width() != 6 {
		t.Errorf("expected line width 6, got %d", line.Width())
	}
	text := line.Text()
	if !strings.HasPrefix(text, "世x") {
		t.Errorf("expected text to start with wide rune, got %q", text)
	}
	// The spacer column adds width but no character.
	if len([]rune(text)) != 5 {
		t.Errorf("expected 5 runes over 6 columns, got %d", len([]rune(text)))
	}
}

func TestSnapshotText(t *testing.T) {
	engine := vtgrid.NewEngine(2, 4)
	engine.Feed([]byte("hi\r\nyo"))

	s := newTestRenderer().Snapshot(engine)

	want := "hi  \nyo  "
	if got := s.Text(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
