package vtgrid

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Parser decodes a terminal byte stream and applies it to a Grid. It is
// the grid-engine half of the bridge: raw child output goes in, cells and
// cursor state come out. Feed never fails; malformed sequences are
// skipped.
type Parser struct {
	grid *Grid

	state parserState

	params []int
	// private marks a CSI sequence opened with '?'.
	private bool
	// skipped marks a CSI sequence opened with another private marker
	// ('<', '=', '>'); those are dropped whole.
	skipped bool
	osc     []byte

	// Trailing bytes of an incomplete UTF-8 rune from the previous chunk.
	pending []byte

	onTitle   func(string)
	onUnknown func(seq string)
}

type parserState int

const (
	stateGround parserState = iota
	stateEscape
	stateCSI
	stateOSC
	stateOSCEscape
	stateDCS
	stateDCSEscape
	// stateEscapeDrop swallows the byte following a charset designator.
	stateEscapeDrop
)

// NewParser creates a parser that drives grid.
func NewParser(grid *Grid) *Parser {
	return &Parser{
		grid:   grid,
		params: make([]int, 0, 16),
		osc:    make([]byte, 0, 64),
	}
}

// SetTitleCallback registers a callback for OSC window-title changes.
func (p *Parser) SetTitleCallback(fn func(string)) {
	p.onTitle = fn
}

// SetUnknownCallback registers a callback for unrecognized sequences.
func (p *Parser) SetUnknownCallback(fn func(seq string)) {
	p.onUnknown = fn
}

// Feed applies a chunk of terminal output to the grid. A multi-byte rune
// split across chunks is carried over to the next call.
func (p *Parser) Feed(data []byte) {
	if len(p.pending) > 0 {
		data = append(p.pending, data...)
		p.pending = nil
	}

	for i := 0; i < len(data); {
		b := data[i]

		if p.state == stateGround && b >= utf8.RuneSelf {
			if !utf8.FullRune(data[i:]) && len(data)-i < utf8.UTFMax {
				// Chunk ends mid-rune; finish it next Feed.
				p.pending = append(p.pending, data[i:]...)
				return
			}
			r, size := utf8.DecodeRune(data[i:])
			p.grid.writeRune(r)
			i += size
			continue
		}

		p.processByte(b)
		i++
	}
}

// FeedString applies a string of terminal output to the grid.
func (p *Parser) FeedString(s string) {
	p.Feed([]byte(s))
}

func (p *Parser) processByte(b byte) {
	switch p.state {
	case stateGround:
		p.ground(b)
	case stateEscape:
		p.escape(b)
	case stateCSI:
		p.csi(b)
	case stateOSC:
		p.oscByte(b)
	case stateOSCEscape:
		p.oscEscape(b)
	case stateDCS:
		if b == 0x1B {
			p.state = stateDCSEscape
		}
	case stateDCSEscape:
		// DCS payloads are skipped up to their ST terminator.
		if b == '\\' {
			p.state = stateGround
		} else if b != 0x1B {
			p.state = stateDCS
		}
	case stateEscapeDrop:
		p.state = stateGround
	}
}

func (p *Parser) ground(b byte) {
	switch b {
	case 0x1B:
		p.state = stateEscape
	case 0x07: // BEL
	case 0x08: // BS
		p.grid.moveCursorBy(-1, 0)
	case 0x09: // HT
		p.tab()
	case 0x0A, 0x0B, 0x0C: // LF, VT, FF
		p.grid.lineFeed()
	case 0x0D: // CR
		p.grid.carriageReturn()
	default:
		if b >= 0x20 && b < 0x7F {
			p.grid.writeRune(rune(b))
		}
	}
}

// tab advances to the next 8-column tab stop.
func (p *Parser) tab() {
	x, _ := p.grid.Cursor()
	next := ((x / 8) + 1) * 8
	if next >= p.grid.Cols() {
		next = p.grid.Cols() - 1
	}
	p.grid.moveCursorBy(next-x, 0)
}

func (p *Parser) escape(b byte) {
	switch b {
	case '[':
		p.state = stateCSI
		p.params = p.params[:0]
		p.private = false
		p.skipped = false
	case ']':
		p.state = stateOSC
		p.osc = p.osc[:0]
	case 'P':
		p.state = stateDCS
	case '7':
		p.grid.saveCursor()
		p.state = stateGround
	case '8':
		p.grid.restoreCursor()
		p.state = stateGround
	case 'D': // IND
		p.grid.lineFeed()
		p.state = stateGround
	case 'E': // NEL
		p.grid.carriageReturn()
		p.grid.lineFeed()
		p.state = stateGround
	case 'M': // RI
		p.grid.reverseLineFeed()
		p.state = stateGround
	case 'c': // RIS
		p.grid.Reset()
		p.state = stateGround
	case '(', ')', '#', '%':
		// Charset designators carry one more byte; drop it.
		p.state = stateEscapeDrop
	case '=', '>':
		// Keypad modes; nothing to track.
		p.state = stateGround
	default:
		p.unknown("ESC " + string(rune(b)))
		p.state = stateGround
	}
}

func (p *Parser) csi(b byte) {
	switch {
	case b >= '0' && b <= '9':
		if len(p.params) == 0 {
			p.params = append(p.params, 0)
		}
		p.params[len(p.params)-1] = p.params[len(p.params)-1]*10 + int(b-'0')
	case b == ';':
		if len(p.params) == 0 {
			p.params = append(p.params, 0)
		}
		p.params = append(p.params, 0)
	case b == '?':
		p.private = true
	case b == '<' || b == '=' || b == '>':
		p.skipped = true
	case b >= 0x20 && b <= 0x2F:
		// Intermediate bytes; tolerated and ignored.
	case b >= 0x40 && b <= 0x7E:
		p.dispatchCSI(b)
		p.state = stateGround
	default:
		p.state = stateGround
	}
}

// param returns parameter i, or def when absent or zero.
func (p *Parser) param(i, def int) int {
	if i >= len(p.params) || p.params[i] == 0 {
		return def
	}
	return p.params[i]
}

func (p *Parser) dispatchCSI(final byte) {
	if p.skipped {
		p.unknown("CSI " + string(rune(final)))
		return
	}
	if p.private {
		p.dispatchPrivateMode(final)
		return
	}

	switch final {
	case 'A':
		p.grid.moveCursorBy(0, -p.param(0, 1))
	case 'B', 'e':
		p.grid.moveCursorBy(0, p.param(0, 1))
	case 'C', 'a':
		p.grid.moveCursorBy(p.param(0, 1), 0)
	case 'D':
		p.grid.moveCursorBy(-p.param(0, 1), 0)
	case 'E':
		p.grid.carriageReturn()
		p.grid.moveCursorBy(0, p.param(0, 1))
	case 'F':
		p.grid.carriageReturn()
		p.grid.moveCursorBy(0, -p.param(0, 1))
	case 'G', '`':
		_, y := p.grid.Cursor()
		p.grid.moveCursor(p.param(0, 1)-1, y)
	case 'H', 'f':
		p.grid.moveCursor(p.param(1, 1)-1, p.param(0, 1)-1)
	case 'd':
		x, _ := p.grid.Cursor()
		p.grid.moveCursor(x, p.param(0, 1)-1)
	case 'J':
		p.grid.eraseDisplay(p.param(0, 0))
	case 'K':
		p.grid.eraseLine(p.param(0, 0))
	case 'L':
		p.grid.insertLines(p.param(0, 1))
	case 'M':
		p.grid.deleteLines(p.param(0, 1))
	case 'P':
		p.grid.deleteChars(p.param(0, 1))
	case 'X':
		p.grid.eraseChars(p.param(0, 1))
	case '@':
		p.grid.insertChars(p.param(0, 1))
	case 'S':
		p.grid.mu.Lock()
		p.grid.scrollUpLocked(p.param(0, 1))
		p.grid.mu.Unlock()
	case 'T':
		p.grid.mu.Lock()
		p.grid.scrollDownLocked(p.param(0, 1))
		p.grid.mu.Unlock()
	case 'm':
		p.dispatchSGR()
	case 'r':
		p.grid.setScrollRegion(p.param(0, 1)-1, p.param(1, p.grid.Rows())-1)
	case 's':
		p.grid.saveCursor()
	case 'u':
		p.grid.restoreCursor()
	default:
		p.unknown("CSI " + string(rune(final)))
	}
}

// dispatchPrivateMode handles DEC private set/reset (CSI ? Pm h/l).
func (p *Parser) dispatchPrivateMode(final byte) {
	var set bool
	switch final {
	case 'h':
		set = true
	case 'l':
		set = false
	default:
		return
	}

	for i := range p.params {
		switch p.params[i] {
		case 6: // DECOM
			p.grid.setOriginMode(set)
			p.grid.moveCursor(0, 0)
		case 7: // DECAWM
			p.grid.setAutoWrap(set)
		case 25: // DECTCEM
			p.grid.setCursorVisible(set)
		case 1049, 1047, 47:
			// Alternate screen; without a second buffer the grid is
			// cleared on both entry and exit.
			p.grid.eraseDisplay(2)
			p.grid.moveCursor(0, 0)
		}
	}
}

func (p *Parser) dispatchSGR() {
	fg, bg, attrs := p.grid.pen()

	params := p.params
	if len(params) == 0 {
		params = []int{0}
	}

	for i := 0; i < len(params); i++ {
		switch n := params[i]; {
		case n == 0:
			fg, bg, attrs = DefaultColor, DefaultColor, 0
		case n == 1:
			attrs |= AttrBold
		case n == 2:
			attrs |= AttrDim
		case n == 3:
			attrs |= AttrItalic
		case n == 4:
			attrs |= AttrUnderline
		case n == 5 || n == 6:
			attrs |= AttrBlink
		case n == 7:
			attrs |= AttrReverse
		case n == 8:
			attrs |= AttrHidden
		case n == 9:
			attrs |= AttrStrike
		case n == 21 || n == 22:
			attrs &^= AttrBold | AttrDim
		case n == 23:
			attrs &^= AttrItalic
		case n == 24:
			attrs &^= AttrUnderline
		case n == 25:
			attrs &^= AttrBlink
		case n == 27:
			attrs &^= AttrReverse
		case n == 28:
			attrs &^= AttrHidden
		case n == 29:
			attrs &^= AttrStrike
		case n >= 30 && n <= 37:
			fg = PaletteColor(n - 30)
		case n == 38:
			if c, skip, ok := extendedColor(params[i+1:]); ok {
				fg = c
				i += skip
			} else {
				i = len(params)
			}
		case n == 39:
			fg = DefaultColor
		case n >= 40 && n <= 47:
			bg = PaletteColor(n - 40)
		case n == 48:
			if c, skip, ok := extendedColor(params[i+1:]); ok {
				bg = c
				i += skip
			} else {
				i = len(params)
			}
		case n == 49:
			bg = DefaultColor
		case n >= 90 && n <= 97:
			fg = PaletteColor(n - 90 + 8)
		case n >= 100 && n <= 107:
			bg = PaletteColor(n - 100 + 8)
		}
	}

	p.grid.setPen(fg, bg, attrs)
}

// extendedColor parses the tail of a 38/48 SGR parameter list: "5;n" for
// a palette index or "2;r;g;b" for direct RGB. Returns the color, the
// number of parameters consumed, and whether parsing succeeded.
func extendedColor(rest []int) (Color, int, bool) {
	if len(rest) >= 2 && rest[0] == 5 {
		return PaletteColor(rest[1]), 2, true
	}
	if len(rest) >= 4 && rest[0] == 2 {
		return RGBColor(clampByte(rest[1]), clampByte(rest[2]), clampByte(rest[3])), 4, true
	}
	return Color{}, 0, false
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func (p *Parser) oscByte(b byte) {
	switch b {
	case 0x07: // BEL terminator
		p.dispatchOSC()
		p.state = stateGround
	case 0x1B:
		p.state = stateOSCEscape
	default:
		if len(p.osc) < 4096 {
			p.osc = append(p.osc, b)
		}
	}
}

func (p *Parser) oscEscape(b byte) {
	if b == '\\' { // ST terminator
		p.dispatchOSC()
		p.state = stateGround
		return
	}
	p.osc = append(p.osc, 0x1B)
	p.state = stateOSC
	p.oscByte(b)
}

func (p *Parser) dispatchOSC() {
	data := string(p.osc)
	p.osc = p.osc[:0]

	cmd, rest, found := strings.Cut(data, ";")
	if !found {
		return
	}
	n, err := strconv.Atoi(cmd)
	if err != nil {
		return
	}
	switch n {
	case 0, 2: // icon name and/or window title
		if p.onTitle != nil {
			p.onTitle(rest)
		}
	}
}

func (p *Parser) unknown(seq string) {
	if p.onUnknown != nil {
		p.onUnknown(seq)
	}
}
