package terminal

import (
	"bytes"
	"fmt"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/kagan-sh/textual-terminal/internal/logging"
)

// readChunkSize is the per-read budget of the output loop.
const readChunkSize = 4096

// Default channel capacities. The outbound channel is an ordered queue:
// when it fills, the reader blocks instead of dropping batches, so no
// output is ever lost between reader and consumer.
const (
	defaultInboundBuffer  = 16
	defaultOutboundBuffer = 64
)

// BridgeOptions configures a Bridge.
type BridgeOptions struct {
	// Command is the shell-style command line to run.
	Command string

	// Env is the child environment. Zero value means DefaultChildEnv.
	Env ChildEnv

	// Rows and Cols are the initial PTY dimensions (default 24x80).
	Rows int
	Cols int

	// InboundBuffer and OutboundBuffer size the message channels.
	InboundBuffer  int
	OutboundBuffer int

	// Logger receives diagnostics. Nil disables logging.
	Logger *logging.Logger
}

// Bridge is the bidirectional, ordered transport between one PTY session
// and its consumer. Inbound messages (Stdin, SetSize, Click, Scroll) are
// applied to the session in order; outbound messages (Setup, Stdout,
// Disconnect) are delivered in order on Output. Disconnect is terminal:
// it is sent exactly once and the outbound channel closes after it.
type Bridge struct {
	session *Session

	in   chan Inbound
	out  chan Outbound
	quit chan struct{}

	stopped        atomic.Bool
	disconnectOnce sync.Once

	logger *logging.Logger
}

// StartBridge spawns the command and begins relaying. The first outbound
// message is always Setup; a spawn failure is returned directly and
// produces no bridge at all.
func StartBridge(opts BridgeOptions) (*Bridge, error) {
	if opts.Rows <= 0 {
		opts.Rows = 24
	}
	if opts.Cols <= 0 {
		opts.Cols = 80
	}
	if opts.InboundBuffer <= 0 {
		opts.InboundBuffer = defaultInboundBuffer
	}
	if opts.OutboundBuffer <= 0 {
		opts.OutboundBuffer = defaultOutboundBuffer
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop
	}

	session, err := StartSession(opts.Command, opts.Env, opts.Rows, opts.Cols, opts.Logger)
	if err != nil {
		return nil, err
	}

	b := &Bridge{
		session: session,
		in:      make(chan Inbound, opts.InboundBuffer),
		out:     make(chan Outbound, opts.OutboundBuffer),
		quit:    make(chan struct{}),
		logger:  opts.Logger.WithComponent("bridge"),
	}

	// Setup goes out before the read loop starts, so it always precedes
	// the first Stdout.
	b.out <- Setup{}

	go b.readLoop()
	go b.dispatchLoop()

	return b, nil
}

// Session returns the bridge's PTY session.
func (b *Bridge) Session() *Session {
	return b.session
}

// Output returns the ordered outbound message channel. It closes after
// Disconnect is delivered.
func (b *Bridge) Output() <-chan Outbound {
	return b.out
}

// Send enqueues an inbound message. It returns false once the bridge
// has stopped.
func (b *Bridge) Send(msg Inbound) bool {
	select {
	case b.in <- msg:
		return true
	case <-b.quit:
		return false
	}
}

// Stop tears the bridge down: the PTY closes first so the reader
// unblocks into its Disconnect path, then the dispatch loop halts and
// the child is reaped. Safe to call more than once.
func (b *Bridge) Stop() {
	if !b.stopped.CompareAndSwap(false, true) {
		return
	}
	b.session.Stop()
	close(b.quit)
}

// readLoop pulls chunks off the PTY, decodes them as UTF-8, and relays
// them outbound. Runes split across chunk boundaries are carried to the
// next read; truly invalid bytes are logged and replaced, never fatal.
// Any read error means the child is gone: exactly one Disconnect goes
// out and the loop ends.
func (b *Bridge) readLoop() {
	buf := make([]byte, readChunkSize)
	var carry []byte

	for {
		n, err := b.session.Read(buf)
		if n > 0 {
			data := append(carry, buf[:n]...)
			text, rest := b.decodeChunk(data)
			carry = rest
			if text != "" {
				select {
				case b.out <- Stdout{Text: text}:
				case <-b.quit:
					b.disconnect()
					return
				}
			}
		}
		if err != nil {
			b.logger.Debug("read loop ending: %v", err)
			b.disconnect()
			return
		}
	}
}

// decodeChunk splits data into a valid UTF-8 prefix and a remainder
// holding the trailing bytes of an unfinished rune. Invalid bytes inside
// the prefix are replaced with U+FFFD.
func (b *Bridge) decodeChunk(data []byte) (string, []byte) {
	cut := len(data)
	for i := len(data) - 1; i >= 0 && i >= len(data)-utf8.UTFMax; i-- {
		if utf8.RuneStart(data[i]) {
			if !utf8.FullRune(data[i:]) {
				cut = i
			}
			break
		}
	}

	chunk := data[:cut]
	var rest []byte
	if cut < len(data) {
		rest = append(rest, data[cut:]...)
	}

	if !utf8.Valid(chunk) {
		b.logger.Warn("decode error: invalid UTF-8 in output chunk")
		chunk = bytes.ToValidUTF8(chunk, []byte("�"))
	}
	return string(chunk), rest
}

// disconnect emits the single terminal Disconnect and closes the
// outbound channel. The send blocks under buffer pressure: consumers
// drain Output until it closes, so a full queue only delays delivery,
// it never forfeits it.
func (b *Bridge) disconnect() {
	b.disconnectOnce.Do(func() {
		b.out <- Disconnect{}
		close(b.out)
	})
}

// dispatchLoop applies inbound messages to the session in order.
func (b *Bridge) dispatchLoop() {
	for {
		select {
		case <-b.quit:
			return
		case msg := <-b.in:
			b.dispatch(msg)
		}
	}
}

func (b *Bridge) dispatch(msg Inbound) {
	switch m := msg.(type) {
	case Stdin:
		if err := b.session.Write([]byte(m.Text)); err != nil {
			b.logger.Warn("stdin write failed: %v", err)
		}
	case SetSize:
		if err := b.session.Resize(m.Rows, m.Cols); err != nil {
			b.logger.Warn("resize failed: %v", err)
		}
	case Click:
		if m.Button != ButtonPrimary {
			return
		}
		// SGR reporting is 1-indexed; press then release.
		col, row := m.X+1, m.Y+1
		b.writeMouse(mouseSequence(mouseCodeLeftClick, col, row, true))
		b.writeMouse(mouseSequence(mouseCodeLeftClick, col, row, false))
	case Scroll:
		code := mouseCodeWheelUp
		if m.Direction == ScrollDown {
			code = mouseCodeWheelDown
		}
		// Wheel events are press-only.
		b.writeMouse(mouseSequence(code, m.X+1, m.Y+1, true))
	}
}

func (b *Bridge) writeMouse(seq string) {
	if err := b.session.Write([]byte(seq)); err != nil {
		b.logger.Warn("mouse write failed: %v", err)
	}
}

// mouseSequence encodes an SGR mouse event: ESC [ < code ; col ; row,
// final 'M' for press and 'm' for release.
func mouseSequence(code, col, row int, press bool) string {
	final := byte('m')
	if press {
		final = 'M'
	}
	return fmt.Sprintf("\x1b[<%d;%d;%d%c", code, col, row, final)
}
