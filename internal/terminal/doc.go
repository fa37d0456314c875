// Package terminal bridges a PTY-backed child process to a display
// consumer.
//
// The package is organized around these core types:
//
//   - Session: owns the child process and its pseudo-terminal, and
//     performs all raw I/O (spawn, resize ioctl, write, read, stop)
//   - Bridge: the ordered, bidirectional message transport between a
//     Session and its consumer
//   - ModeScanner: tracks mouse-reporting state from raw output,
//     independent of the grid engine
//   - Terminal: the consumer side, holding the grid mirror and turning
//     output batches into render snapshots
//   - Manager: tracks terminals by ID
//
// # Message protocol
//
// Consumers drive the child with inbound messages (Stdin, SetSize,
// Click, Scroll) and react to outbound ones (Setup, Stdout,
// Disconnect). Each direction is strictly FIFO with a single consumer;
// the directions are independent. Setup always arrives first and asks
// the consumer for an initial SetSize. Disconnect arrives exactly once,
// after which the outbound channel closes and the display falls back to
// a single blank line.
//
// # Usage
//
//	term := terminal.New(terminal.Options{
//	    Command: "htop",
//	    OnRender: func(s render.Snapshot) {
//	        // push styled lines to the UI
//	    },
//	})
//	if err := term.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	term.SendKey("down")
//	term.Resize(40, 120)
//	term.Stop()
//
// # Mouse reporting
//
// Click and scroll events are forwarded only while the child has mouse
// tracking enabled (DEC private mode 1000), and are written as SGR
// sequences: press ESC [ < code ; col ; row M, release the lowercase
// variant, with 1-indexed coordinates.
package terminal
