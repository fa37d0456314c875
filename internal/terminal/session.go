package terminal

import (
	"fmt"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/anmitsu/go-shlex"
	"github.com/creack/pty"

	"github.com/kagan-sh/textual-terminal/internal/logging"
)

// SessionState is the lifecycle state of a Session.
type SessionState int32

const (
	// StateIdle is a session that has not started.
	StateIdle SessionState = iota
	// StateRunning is a session with a live child process.
	StateRunning
	// StateStopped is a terminated session.
	StateStopped
)

// stopGrace is how long Stop waits for the child to exit after SIGTERM
// before escalating to SIGKILL. Reaping is bounded so a shutdown never
// stalls the caller indefinitely.
const stopGrace = 5 * time.Second

// Session owns one child process attached to a pseudo-terminal and
// mediates all raw I/O with it. A session runs exactly one child; once
// stopped it cannot be restarted.
type Session struct {
	cmd  *exec.Cmd
	ptmx *os.File

	mu   sync.Mutex
	rows int
	cols int

	state    atomic.Int32
	stopOnce sync.Once

	logger *logging.Logger
}

// StartSession spawns command under a new pseudo-terminal of the given
// size. The command line is split shell-style; the child receives only
// the fixed minimal environment. An exec failure surfaces here as an
// error and leaves the parent untouched.
func StartSession(command string, env ChildEnv, rows, cols int, logger *logging.Logger) (*Session, error) {
	if logger == nil {
		logger = logging.Nop
	}

	argv, err := shlex.Split(command, true)
	if err != nil {
		return nil, fmt.Errorf("split command: %w", err)
	}
	if len(argv) == 0 {
		return nil, ErrEmptyCommand
	}

	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	if env.isZero() {
		env = DefaultChildEnv()
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = env.List()

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		return nil, fmt.Errorf("start pty: %w", err)
	}

	s := &Session{
		cmd:    cmd,
		ptmx:   ptmx,
		rows:   rows,
		cols:   cols,
		logger: logger.WithComponent("session"),
	}
	s.state.Store(int32(StateRunning))
	s.logger.Debug("spawned %q pid=%d size=%dx%d", argv[0], cmd.Process.Pid, rows, cols)
	return s, nil
}

// State returns the session lifecycle state.
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// PID returns the child process ID, or -1 when there is no child.
func (s *Session) PID() int {
	if s.cmd.Process == nil {
		return -1
	}
	return s.cmd.Process.Pid
}

// Size returns the last acknowledged dimensions.
func (s *Session) Size() (rows, cols int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows, s.cols
}

// Resize issues the window-size ioctl. Non-positive dimensions are
// clamped to 1. The caller is responsible for resizing its grid mirror.
func (s *Session) Resize(rows, cols int) error {
	if s.State() != StateRunning {
		return ErrSessionStopped
	}
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}

	if err := pty.Setsize(s.ptmx, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	}); err != nil {
		return fmt.Errorf("resize pty: %w", err)
	}

	s.mu.Lock()
	s.rows, s.cols = rows, cols
	s.mu.Unlock()
	return nil
}

// Write sends data to the child, retrying short writes until everything
// is written or the descriptor fails.
func (s *Session) Write(data []byte) error {
	if s.State() != StateRunning {
		return ErrSessionStopped
	}
	for len(data) > 0 {
		n, err := s.ptmx.Write(data)
		if err != nil {
			return fmt.Errorf("write pty: %w", err)
		}
		data = data[n:]
	}
	return nil
}

// Read reads the next chunk of child output into buf. It blocks until
// data is available or the descriptor fails.
func (s *Session) Read(buf []byte) (int, error) {
	return s.ptmx.Read(buf)
}

// Stop terminates the session: the PTY is closed first, so any blocked
// reader unblocks before teardown proceeds, then the child receives
// SIGTERM and is reaped with a bounded wait (SIGKILL on overrun). A
// child that already exited is not an error. Stop is idempotent.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.state.Store(int32(StateStopped))

		if err := s.ptmx.Close(); err != nil {
			s.logger.Debug("close pty: %v", err)
		}

		if s.cmd.Process != nil {
			// Signal failure means the process is already gone.
			_ = s.cmd.Process.Signal(syscall.SIGTERM)
		}
		s.reap()
	})
}

// reap waits for the child to exit, escalating to SIGKILL after the
// grace period so Stop never blocks unbounded.
func (s *Session) reap() {
	done := make(chan struct{})
	go func() {
		_ = s.cmd.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(stopGrace):
		s.logger.Warn("child pid=%d did not exit after SIGTERM, killing", s.PID())
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		<-done
	}
}
