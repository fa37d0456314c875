package terminal

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kagan-sh/textual-terminal/internal/render"
)

// startTestTerminal starts a terminal or skips when no PTY is available.
func startTestTerminal(t *testing.T, opts Options) *Terminal {
	t.Helper()
	term := New(opts)
	if err := term.Start(); err != nil {
		if strings.Contains(err.Error(), "start pty") {
			t.Skipf("pty unavailable: %v", err)
		}
		t.Fatalf("start terminal: %v", err)
	}
	t.Cleanup(term.Stop)
	return term
}

// waitFor polls cond until it holds or the timeout elapses.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestTerminalDefaults(t *testing.T) {
	term := New(Options{Command: "cat"})

	if term.ID() == "" {
		t.Error("terminal should have an ID before starting")
	}
	if term.Name() != "terminal" {
		t.Errorf("expected default name, got %q", term.Name())
	}
	if term.IsRunning() {
		t.Error("terminal should not run before Start")
	}
	if term.Snapshot().Text() != "" {
		t.Error("initial snapshot should be blank")
	}
}

func TestTerminalStartTwice(t *testing.T) {
	term := startTestTerminal(t, Options{Command: "cat"})

	if err := term.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}
}

func TestTerminalEchoLifecycle(t *testing.T) {
	var (
		mu   sync.Mutex
		last string
	)
	closed := make(chan struct{})

	term := startTestTerminal(t, Options{
		Command: "echo hi",
		OnRender: func(s render.Snapshot) {
			mu.Lock()
			last = s.Text()
			mu.Unlock()
		},
		OnClose: func() { close(closed) },
	})

	select {
	case <-term.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("terminal did not finish")
	}

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("OnClose was not called")
	}

	// The final render is the post-disconnect blank; the child's output
	// was visible in an earlier one. Done closing after OnClose means
	// last is stable here.
	mu.Lock()
	defer mu.Unlock()
	if last != "" {
		t.Errorf("display should collapse to blank on disconnect, got %q", last)
	}
	if term.Snapshot().Text() != "" {
		t.Error("snapshot should be blank after disconnect")
	}
}

func TestTerminalRendersOutput(t *testing.T) {
	term := startTestTerminal(t, Options{Command: "cat"})

	term.SendText("hello\r")

	waitFor(t, 10*time.Second, func() bool {
		return strings.Contains(term.Snapshot().Text(), "hello")
	}, "echoed text never appeared in the snapshot")
}

func TestTerminalResize(t *testing.T) {
	term := startTestTerminal(t, Options{Command: "cat"})

	term.Resize(10, 40)
	term.SendText("x\r")

	waitFor(t, 10*time.Second, func() bool {
		s := term.Snapshot()
		return len(s.Lines) == 10 && s.Lines[0].Width() == 40
	}, "snapshot never reflected the new size")
}

func TestTerminalResizeBeforeStart(t *testing.T) {
	term := New(Options{Command: "cat"})
	term.Resize(5, 30)

	if err := term.Start(); err != nil {
		if strings.Contains(err.Error(), "start pty") {
			t.Skipf("pty unavailable: %v", err)
		}
		t.Fatalf("start terminal: %v", err)
	}
	t.Cleanup(term.Stop)

	term.SendText("x\r")
	waitFor(t, 10*time.Second, func() bool {
		s := term.Snapshot()
		return len(s.Lines) == 5 && s.Lines[0].Width() == 30
	}, "pre-start resize never took effect")
}

func TestTerminalSendKey(t *testing.T) {
	term := startTestTerminal(t, Options{Command: "cat"})

	if !term.SendKey("up") {
		t.Error("named keys should be consumed")
	}
	if term.SendKey("ctrl+f1") {
		t.Error("ctrl+f1 is reserved for the host")
	}
	if term.SendKey("escape") {
		t.Error("escape without a hook should be unhandled")
	}
	if term.SendKey("no-such-key") {
		t.Error("unknown keys should be unhandled")
	}
}

func TestTerminalEscapeHook(t *testing.T) {
	escaped := false
	term := startTestTerminal(t, Options{
		Command:  "cat",
		OnEscape: func() { escaped = true },
	})

	if !term.SendKey("escape") {
		t.Error("escape with a hook should be consumed")
	}
	if !escaped {
		t.Error("escape hook was not called")
	}
}

func TestTerminalMouseGating(t *testing.T) {
	term := startTestTerminal(t, Options{Command: "cat"})

	if term.MouseTracking() {
		t.Error("mouse tracking should start disabled")
	}

	// Clicks and scrolls are dropped silently until the child enables
	// tracking; this only checks nothing blocks or panics.
	term.Click(5, 3, ButtonPrimary)
	term.ScrollUp(0, 0)
	term.ScrollDown(0, 0)
}

func TestTerminalMouseReporting(t *testing.T) {
	term := startTestTerminal(t, Options{Command: "cat"})

	// cat echoes its input, so the enable sequence comes back as child
	// output and trips the scanner.
	term.SendText("\x1b[?1000h\r")
	waitFor(t, 10*time.Second, func() bool {
		return term.MouseTracking()
	}, "mouse tracking never enabled")

	term.Click(5, 3, ButtonPrimary)

	// The tty echoes the control bytes back in caret notation, so the
	// press and release land in the grid as visible text.
	waitFor(t, 10*time.Second, func() bool {
		text := term.Snapshot().Text()
		return strings.Contains(text, "[<0;6;4M") && strings.Contains(text, "[<0;6;4m")
	}, "mouse press/release never reached the child")
}

func TestTerminalIgnoresSecondaryButtons(t *testing.T) {
	term := startTestTerminal(t, Options{Command: "cat"})

	term.SendText("\x1b[?1000h\r")
	waitFor(t, 10*time.Second, func() bool {
		return term.MouseTracking()
	}, "mouse tracking never enabled")

	term.Click(1, 1, MouseButton(3))
	term.SendText("marker\r")

	waitFor(t, 10*time.Second, func() bool {
		return strings.Contains(term.Snapshot().Text(), "marker")
	}, "marker never appeared")

	if strings.Contains(term.Snapshot().Text(), "[<") {
		t.Error("secondary buttons should not reach the child")
	}
}

func TestTerminalTitleCallback(t *testing.T) {
	var (
		mu    sync.Mutex
		title string
	)
	term := startTestTerminal(t, Options{
		Command: "cat",
		OnTitle: func(s string) {
			mu.Lock()
			title = s
			mu.Unlock()
		},
	})

	term.SendText("\x1b]0;my title\a\r")

	waitFor(t, 10*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return title == "my title"
	}, "title callback never fired")
}
