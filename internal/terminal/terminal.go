package terminal

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/kagan-sh/textual-terminal/internal/logging"
	"github.com/kagan-sh/textual-terminal/internal/render"
	"github.com/kagan-sh/textual-terminal/internal/vtgrid"
)

// GridEngine is the terminal-emulation engine contract. The bundled
// vtgrid engine satisfies it; any emulator exposing cells and a cursor
// can be substituted.
type GridEngine interface {
	Feed(data []byte)
	Resize(rows, cols int)
	Cell(x, y int) vtgrid.Cell
	Cursor() (x, y int)
	Rows() int
	Cols() int
	Reset()
}

// Options configures a Terminal.
type Options struct {
	// Command is the shell-style command line to run.
	Command string

	// Name is a human-readable name for the terminal.
	Name string

	// Rows and Cols are the initial dimensions (default 24x80).
	Rows int
	Cols int

	// Env is the child environment. Zero value means DefaultChildEnv.
	Env ChildEnv

	// ThemeSource, when set, substitutes host-theme colors for the
	// terminal default foreground/background.
	ThemeSource render.ThemeSource

	// Engine overrides the bundled grid engine.
	Engine GridEngine

	// OnRender is called with each new snapshot.
	OnRender func(render.Snapshot)

	// OnEscape intercepts the escape key instead of forwarding it.
	OnEscape func()

	// OnTitle is called when the child sets the window title.
	OnTitle func(string)

	// OnClose is called after the session disconnects.
	OnClose func()

	// Logger receives diagnostics. Nil disables logging.
	Logger *logging.Logger
}

// Terminal connects one PTY-backed session to a display consumer: it
// runs the receive loop, keeps the grid mirror current, and republishes
// the grid as render snapshots.
type Terminal struct {
	id   string
	name string
	opts Options

	engine   GridEngine
	scanner  *ModeScanner
	renderer *render.Renderer

	bridge  *Bridge
	started atomic.Bool
	done    chan struct{}

	mu       sync.RWMutex
	rows     int
	cols     int
	snapshot render.Snapshot

	logger *logging.Logger
}

// New creates a terminal. Nothing runs until Start.
func New(opts Options) *Terminal {
	if opts.Rows <= 0 {
		opts.Rows = 24
	}
	if opts.Cols <= 0 {
		opts.Cols = 80
	}
	if opts.Name == "" {
		opts.Name = "terminal"
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop
	}

	engine := opts.Engine
	if engine == nil {
		vt := vtgrid.NewEngine(opts.Rows, opts.Cols)
		if opts.OnTitle != nil {
			vt.SetTitleCallback(opts.OnTitle)
		}
		engine = vt
	}

	var theme *render.ThemeCache
	if opts.ThemeSource != nil {
		theme = render.NewThemeCache(opts.ThemeSource)
	}
	resolver := render.NewStyleResolver(theme, opts.Logger)

	return &Terminal{
		id:       uuid.New().String(),
		name:     opts.Name,
		opts:     opts,
		engine:   engine,
		scanner:  NewModeScanner(),
		renderer: render.NewRenderer(resolver),
		done:     make(chan struct{}),
		rows:     opts.Rows,
		cols:     opts.Cols,
		snapshot: render.InitialSnapshot(),
		logger:   opts.Logger.WithComponent("terminal"),
	}
}

// ID returns the terminal's unique identifier.
func (t *Terminal) ID() string {
	return t.id
}

// Name returns the terminal's display name.
func (t *Terminal) Name() string {
	return t.name
}

// Start spawns the child and begins relaying. A terminal starts at most
// once.
func (t *Terminal) Start() error {
	if !t.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	bridge, err := StartBridge(BridgeOptions{
		Command: t.opts.Command,
		Env:     t.opts.Env,
		Rows:    t.rows,
		Cols:    t.cols,
		Logger:  t.opts.Logger,
	})
	if err != nil {
		close(t.done)
		return err
	}
	t.bridge = bridge

	go t.recvLoop()
	return nil
}

// Stop tears the session down. The display collapses back to its
// initial blank state.
func (t *Terminal) Stop() {
	if t.bridge != nil {
		t.bridge.Stop()
	}
}

// Done returns a channel closed once the terminal has fully shut down.
func (t *Terminal) Done() <-chan struct{} {
	return t.done
}

// IsRunning reports whether the session is still live.
func (t *Terminal) IsRunning() bool {
	if t.bridge == nil {
		return false
	}
	return t.bridge.Session().State() == StateRunning
}

// Snapshot returns the most recent display snapshot.
func (t *Terminal) Snapshot() render.Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshot
}

// MouseTracking reports whether the child has enabled mouse reporting.
func (t *Terminal) MouseTracking() bool {
	return t.scanner.MouseTracking()
}

// SendText forwards raw text (typed characters, paste data) to the child.
func (t *Terminal) SendText(text string) {
	if t.bridge == nil || text == "" {
		return
	}
	t.bridge.Send(Stdin{Text: text})
}

// SendKey forwards a named key. The escape key goes to the OnEscape hook
// when one is set; "ctrl+f1" is reserved for the host (focus release)
// and reported unhandled. Unnamed single-character keys should be sent
// with SendText. Returns whether the key was consumed.
func (t *Terminal) SendKey(name string) bool {
	if t.bridge == nil {
		return false
	}
	if name == "ctrl+f1" {
		return false
	}
	if name == "escape" && t.opts.OnEscape != nil {
		t.opts.OnEscape()
		return true
	}
	if seq, ok := KeySequence(name); ok {
		t.bridge.Send(Stdin{Text: seq})
		return true
	}
	return false
}

// Resize updates the PTY size and the local grid mirror.
func (t *Terminal) Resize(rows, cols int) {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}

	t.mu.Lock()
	t.rows, t.cols = rows, cols
	t.mu.Unlock()

	if t.bridge == nil {
		return
	}
	t.bridge.Send(SetSize{Rows: rows, Cols: cols})
	t.engine.Resize(rows, cols)
}

// Click forwards a pointer press. Ignored unless the child has enabled
// mouse tracking.
func (t *Terminal) Click(x, y int, button MouseButton) {
	if t.bridge == nil || !t.scanner.MouseTracking() {
		return
	}
	t.bridge.Send(Click{X: x, Y: y, Button: button})
}

// ScrollUp forwards an upward wheel event at (x, y), gated on mouse
// tracking like Click.
func (t *Terminal) ScrollUp(x, y int) {
	t.scroll(ScrollUp, x, y)
}

// ScrollDown forwards a downward wheel event at (x, y).
func (t *Terminal) ScrollDown(x, y int) {
	t.scroll(ScrollDown, x, y)
}

func (t *Terminal) scroll(dir ScrollDirection, x, y int) {
	if t.bridge == nil || !t.scanner.MouseTracking() {
		return
	}
	t.bridge.Send(Scroll{Direction: dir, X: x, Y: y})
}

// recvLoop consumes outbound bridge messages until Disconnect.
func (t *Terminal) recvLoop() {
	defer close(t.done)

	for msg := range t.bridge.Output() {
		switch m := msg.(type) {
		case Setup:
			t.mu.RLock()
			rows, cols := t.rows, t.cols
			t.mu.RUnlock()
			// Resizes issued before Start only touched the mirror
			// dimensions; bring the engine and PTY in line with them.
			t.engine.Resize(rows, cols)
			t.bridge.Send(SetSize{Rows: rows, Cols: cols})

		case Stdout:
			t.scanner.Scan(m.Text)
			t.engine.Feed([]byte(m.Text))
			snapshot := t.renderer.Snapshot(t.engine)
			t.publish(snapshot)

		case Disconnect:
			t.finish()
			return
		}
	}

	// The outbound channel closed without a Disconnect; run the same
	// teardown so the session never leaks.
	t.finish()
}

// finish collapses the display and releases the session.
func (t *Terminal) finish() {
	t.logger.Debug("session disconnected")
	t.engine.Reset()
	t.publish(render.InitialSnapshot())
	t.bridge.Stop()
	if t.opts.OnClose != nil {
		t.opts.OnClose()
	}
}

func (t *Terminal) publish(snapshot render.Snapshot) {
	t.mu.Lock()
	t.snapshot = snapshot
	t.mu.Unlock()

	if t.opts.OnRender != nil {
		t.opts.OnRender(snapshot)
	}
}
