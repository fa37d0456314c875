package terminal

import "errors"

// Sentinel errors for the terminal package.
var (
	// ErrEmptyCommand is returned when a session is started without a command.
	ErrEmptyCommand = errors.New("empty command")

	// ErrAlreadyStarted is returned when a terminal or session is started twice.
	ErrAlreadyStarted = errors.New("already started")

	// ErrSessionStopped is returned when I/O is attempted on a stopped session.
	ErrSessionStopped = errors.New("session is stopped")

	// ErrTerminalNotFound is returned when a terminal ID is not found.
	ErrTerminalNotFound = errors.New("terminal not found")

	// ErrManagerClosed is returned when operations are attempted on a closed manager.
	ErrManagerClosed = errors.New("terminal manager is closed")
)
