package terminal

import (
	"strings"
	"sync/atomic"
)

// Tokens that toggle X11 mouse reporting inside a DEC private-mode
// sequence. The final letter stays attached to the last parameter, so
// "1000h" only matches when 1000 is the final parameter of a set.
const (
	mouseTrackingOn  = "1000h"
	mouseTrackingOff = "1000l"
)

// ModeScanner watches raw child output for DEC private-mode sequences
// (ESC [ ? params letter) and tracks the mouse-reporting flag. It is
// pure bookkeeping on the side: the byte stream it scans is fed to the
// grid engine untouched, and the flag reflects only the most recently
// seen enable/disable. The flag deliberately survives resizes and is
// reset only when a new scanner is created.
type ModeScanner struct {
	mouseTracking atomic.Bool
}

// NewModeScanner creates a scanner with mouse tracking off.
func NewModeScanner() *ModeScanner {
	return &ModeScanner{}
}

// MouseTracking reports whether the child has enabled mouse reporting.
func (s *ModeScanner) MouseTracking() bool {
	return s.mouseTracking.Load()
}

// Scan inspects one output chunk. Sequences without the '?' prefix are
// ignored, as is anything that is not a well-formed CSI sequence.
func (s *ModeScanner) Scan(text string) {
	for i := 0; i < len(text); {
		start := strings.IndexByte(text[i:], 0x1B)
		if start < 0 {
			return
		}
		i += start

		params, length, ok := privateModeParams(text[i:])
		i++
		if !ok {
			continue
		}

		for _, param := range strings.Split(params, ";") {
			switch param {
			case mouseTrackingOn:
				s.mouseTracking.Store(true)
			case mouseTrackingOff:
				s.mouseTracking.Store(false)
			}
		}
		i += length - 1
	}
}

// privateModeParams matches a DEC private-mode sequence at the start of
// text: ESC '[' '?' then digits and semicolons up to a final letter. It
// returns the parameter text with the final letter attached, and the
// total sequence length.
func privateModeParams(text string) (string, int, bool) {
	if len(text) < 4 || text[0] != 0x1B || text[1] != '[' || text[2] != '?' {
		return "", 0, false
	}
	for i := 3; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= '0' && c <= '9', c == ';':
		case (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
			return text[3 : i+1], i + 1, true
		default:
			return "", 0, false
		}
	}
	return "", 0, false
}
