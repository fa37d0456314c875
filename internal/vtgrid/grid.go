// Package vtgrid maintains the in-memory character grid for a terminal
// session. The grid is fed through Parser and read back cell by cell; it
// knows nothing about how cells are displayed.
package vtgrid

import (
	"fmt"
	"sync"

	"github.com/mattn/go-runewidth"
)

// Color identifies a cell color: the terminal default, a palette index, or
// a direct RGB value.
type Color struct {
	R, G, B uint8
	// Index is the palette index (0-255), or -1 for direct RGB.
	Index int
	// Default marks the terminal's default foreground/background.
	Default bool
}

// DefaultColor is the terminal default foreground/background.
var DefaultColor = Color{Default: true}

// PaletteColor returns the color for a 256-color palette index.
func PaletteColor(index int) Color {
	if index < 0 || index > 255 {
		return DefaultColor
	}
	return Color{Index: index}
}

// RGBColor returns a direct RGB color.
func RGBColor(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, Index: -1}
}

// Names for the base palette, in ANSI order. Index 3 is "brown" rather
// than "yellow": the dim yellow of the original hardware palette.
var baseColorNames = [8]string{
	"black", "red", "green", "brown", "blue", "magenta", "cyan", "white",
}

// Token renders the color as a name token: "default", a base color name
// ("brown", "brightblack", ...), or six bare hex digits for palette
// indices above 15 and direct RGB values.
func (c Color) Token() string {
	if c.Default {
		return "default"
	}
	if c.Index < 0 {
		return fmt.Sprintf("%02x%02x%02x", c.R, c.G, c.B)
	}
	if c.Index < 8 {
		return baseColorNames[c.Index]
	}
	if c.Index < 16 {
		return "bright" + baseColorNames[c.Index-8]
	}
	r, g, b := paletteRGB(c.Index)
	return fmt.Sprintf("%02x%02x%02x", r, g, b)
}

// paletteRGB expands a 256-color palette index above 15 into RGB: the
// 6x6x6 color cube (16-231) then the grayscale ramp (232-255).
func paletteRGB(index int) (uint8, uint8, uint8) {
	if index < 232 {
		cube := [6]uint8{0, 95, 135, 175, 215, 255}
		i := index - 16
		return cube[i/36], cube[(i/6)%6], cube[i%6]
	}
	gray := uint8((index-232)*10 + 8)
	return gray, gray, gray
}

// Attr is a bitmask of cell text attributes.
type Attr uint16

const (
	AttrBold Attr = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrBlink
	AttrReverse
	AttrHidden
	AttrStrike
)

// Has reports whether attr is set.
func (a Attr) Has(attr Attr) bool {
	return a&attr != 0
}

// Cell is one character position in the grid.
type Cell struct {
	Rune  rune
	Width int
	FG    Color
	BG    Color
	Attrs Attr
}

// blankCell returns an empty cell carrying default colors.
func blankCell() Cell {
	return Cell{Rune: ' ', Width: 1, FG: DefaultColor, BG: DefaultColor}
}

// SameStyle reports whether two cells share the full style tuple:
// foreground, background, and every attribute bit.
func (c Cell) SameStyle(other Cell) bool {
	return c.FG == other.FG && c.BG == other.BG && c.Attrs == other.Attrs
}

// Grid is a rows-by-cols cell matrix with a cursor. All methods are safe
// for concurrent use.
type Grid struct {
	mu sync.RWMutex

	rows  int
	cols  int
	cells [][]Cell

	cursorX int
	cursorY int

	cursorVisible bool

	// Scroll region, inclusive row bounds.
	scrollTop    int
	scrollBottom int

	// Pen state for newly written cells.
	penFG    Color
	penBG    Color
	penAttrs Attr

	savedX, savedY   int
	savedFG, savedBG Color
	savedAttrs       Attr

	originMode bool
	autoWrap   bool
}

// NewGrid creates a grid. Dimensions below 1 are clamped to 1.
func NewGrid(rows, cols int) *Grid {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	g := &Grid{
		rows:          rows,
		cols:          cols,
		cursorVisible: true,
		scrollBottom:  rows - 1,
		penFG:         DefaultColor,
		penBG:         DefaultColor,
		autoWrap:      true,
	}
	g.cells = make([][]Cell, rows)
	for y := range g.cells {
		g.cells[y] = newRow(cols)
	}
	return g
}

func newRow(cols int) []Cell {
	row := make([]Cell, cols)
	for x := range row {
		row[x] = blankCell()
	}
	return row
}

// Rows returns the grid height.
func (g *Grid) Rows() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.rows
}

// Cols returns the grid width.
func (g *Grid) Cols() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cols
}

// Cursor returns the cursor position.
func (g *Grid) Cursor() (x, y int) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cursorX, g.cursorY
}

// CursorVisible reports whether the cursor is shown.
func (g *Grid) CursorVisible() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cursorVisible
}

// Cell returns the cell at (x, y), or a blank cell when out of bounds.
func (g *Grid) Cell(x, y int) Cell {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if x < 0 || x >= g.cols || y < 0 || y >= g.rows {
		return blankCell()
	}
	return g.cells[y][x]
}

// Row returns a copy of row y, or nil when out of bounds.
func (g *Grid) Row(y int) []Cell {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if y < 0 || y >= g.rows {
		return nil
	}
	row := make([]Cell, g.cols)
	copy(row, g.cells[y])
	return row
}

// writeRune places r at the cursor with the current pen and advances.
func (g *Grid) writeRune(r rune) {
	g.mu.Lock()
	defer g.mu.Unlock()

	w := runewidth.RuneWidth(r)
	if w == 0 {
		// Combining marks attach to the previous cell; the grid keeps
		// the base rune only.
		return
	}

	if g.cursorX >= g.cols {
		if g.autoWrap {
			g.cursorX = 0
			g.lineFeedLocked()
		} else {
			g.cursorX = g.cols - 1
		}
	}

	g.cells[g.cursorY][g.cursorX] = Cell{
		Rune:  r,
		Width: w,
		FG:    g.penFG,
		BG:    g.penBG,
		Attrs: g.penAttrs,
	}
	g.cursorX++

	// A wide rune occupies a second, blank-styled cell.
	if w == 2 && g.cursorX < g.cols {
		spacer := blankCell()
		spacer.Rune = 0
		spacer.Width = 0
		spacer.FG = g.penFG
		spacer.BG = g.penBG
		spacer.Attrs = g.penAttrs
		g.cells[g.cursorY][g.cursorX] = spacer
		g.cursorX++
	}
}

// moveCursor places the cursor, clamped to the grid (or the scroll region
// in origin mode).
func (g *Grid) moveCursor(x, y int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.moveCursorLocked(x, y)
}

func (g *Grid) moveCursorLocked(x, y int) {
	if x < 0 {
		x = 0
	}
	if x >= g.cols {
		x = g.cols - 1
	}

	top, bottom := 0, g.rows-1
	if g.originMode {
		top, bottom = g.scrollTop, g.scrollBottom
		y += top
	}
	if y < top {
		y = top
	}
	if y > bottom {
		y = bottom
	}

	g.cursorX = x
	g.cursorY = y
}

// moveCursorBy moves the cursor relative to its current position.
func (g *Grid) moveCursorBy(dx, dy int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.moveCursorLocked(g.cursorX+dx, g.cursorY+dy)
}

// carriageReturn moves the cursor to column 0.
func (g *Grid) carriageReturn() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursorX = 0
}

// lineFeed moves the cursor down, scrolling inside the region at the edge.
func (g *Grid) lineFeed() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lineFeedLocked()
}

func (g *Grid) lineFeedLocked() {
	if g.cursorY >= g.scrollBottom {
		g.scrollUpLocked(1)
	} else {
		g.cursorY++
	}
}

// reverseLineFeed moves the cursor up, scrolling at the top edge.
func (g *Grid) reverseLineFeed() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cursorY <= g.scrollTop {
		g.scrollDownLocked(1)
	} else {
		g.cursorY--
	}
}

func (g *Grid) scrollUpLocked(n int) {
	top, bottom := g.clampRegion()
	if n <= 0 || top > bottom {
		return
	}
	if n > bottom-top+1 {
		n = bottom - top + 1
	}
	for y := top; y <= bottom-n; y++ {
		g.cells[y] = g.cells[y+n]
	}
	for y := bottom - n + 1; y <= bottom; y++ {
		g.cells[y] = newRow(g.cols)
	}
}

func (g *Grid) scrollDownLocked(n int) {
	top, bottom := g.clampRegion()
	if n <= 0 || top > bottom {
		return
	}
	if n > bottom-top+1 {
		n = bottom - top + 1
	}
	for y := bottom; y >= top+n; y-- {
		g.cells[y] = g.cells[y-n]
	}
	for y := top; y < top+n; y++ {
		g.cells[y] = newRow(g.cols)
	}
}

func (g *Grid) clampRegion() (int, int) {
	top, bottom := g.scrollTop, g.scrollBottom
	if top < 0 {
		top = 0
	}
	if bottom >= g.rows {
		bottom = g.rows - 1
	}
	return top, bottom
}

// setScrollRegion sets the scroll region from inclusive row bounds and
// homes the cursor.
func (g *Grid) setScrollRegion(top, bottom int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if top < 0 {
		top = 0
	}
	if bottom >= g.rows {
		bottom = g.rows - 1
	}
	if top >= bottom {
		return
	}
	g.scrollTop = top
	g.scrollBottom = bottom

	g.cursorX = 0
	if g.originMode {
		g.cursorY = top
	} else {
		g.cursorY = 0
	}
}

// clearRow blanks columns [start, end) of row y.
func (g *Grid) clearRow(y, start, end int) {
	if y < 0 || y >= g.rows {
		return
	}
	if start < 0 {
		start = 0
	}
	if end > g.cols {
		end = g.cols
	}
	for x := start; x < end; x++ {
		g.cells[y][x] = blankCell()
	}
}

// eraseDisplay clears part of the grid: 0 cursor-to-end, 1
// start-to-cursor, 2 everything.
func (g *Grid) eraseDisplay(mode int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch mode {
	case 0:
		g.clearRow(g.cursorY, g.cursorX, g.cols)
		for y := g.cursorY + 1; y < g.rows; y++ {
			g.clearRow(y, 0, g.cols)
		}
	case 1:
		for y := 0; y < g.cursorY; y++ {
			g.clearRow(y, 0, g.cols)
		}
		g.clearRow(g.cursorY, 0, g.cursorX+1)
	case 2:
		for y := 0; y < g.rows; y++ {
			g.clearRow(y, 0, g.cols)
		}
	}
}

// eraseLine clears part of the cursor row: 0 cursor-to-end, 1
// start-to-cursor, 2 the whole row.
func (g *Grid) eraseLine(mode int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch mode {
	case 0:
		g.clearRow(g.cursorY, g.cursorX, g.cols)
	case 1:
		g.clearRow(g.cursorY, 0, g.cursorX+1)
	case 2:
		g.clearRow(g.cursorY, 0, g.cols)
	}
}

// insertLines inserts n blank rows at the cursor, inside the scroll region.
func (g *Grid) insertLines(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cursorY < g.scrollTop || g.cursorY > g.scrollBottom {
		return
	}
	top := g.scrollTop
	g.scrollTop = g.cursorY
	g.scrollDownLocked(n)
	g.scrollTop = top
}

// deleteLines removes n rows at the cursor, inside the scroll region.
func (g *Grid) deleteLines(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cursorY < g.scrollTop || g.cursorY > g.scrollBottom {
		return
	}
	top := g.scrollTop
	g.scrollTop = g.cursorY
	g.scrollUpLocked(n)
	g.scrollTop = top
}

// insertChars shifts the cursor row right by n, filling with blanks.
func (g *Grid) insertChars(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if n <= 0 || g.cursorX >= g.cols {
		return
	}
	if n > g.cols-g.cursorX {
		n = g.cols - g.cursorX
	}
	row := g.cells[g.cursorY]
	for x := g.cols - 1; x >= g.cursorX+n; x-- {
		row[x] = row[x-n]
	}
	for x := g.cursorX; x < g.cursorX+n; x++ {
		row[x] = blankCell()
	}
}

// deleteChars shifts the cursor row left by n from the cursor.
func (g *Grid) deleteChars(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if n <= 0 || g.cursorX >= g.cols {
		return
	}
	if n > g.cols-g.cursorX {
		n = g.cols - g.cursorX
	}
	row := g.cells[g.cursorY]
	for x := g.cursorX; x < g.cols-n; x++ {
		row[x] = row[x+n]
	}
	for x := g.cols - n; x < g.cols; x++ {
		row[x] = blankCell()
	}
}

// eraseChars blanks n cells starting at the cursor, without shifting.
func (g *Grid) eraseChars(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clearRow(g.cursorY, g.cursorX, g.cursorX+n)
}

// setPen updates the colors and attributes applied to new cells.
func (g *Grid) setPen(fg, bg Color, attrs Attr) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.penFG = fg
	g.penBG = bg
	g.penAttrs = attrs
}

// pen returns the current pen state.
func (g *Grid) pen() (Color, Color, Attr) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.penFG, g.penBG, g.penAttrs
}

// saveCursor records the cursor position and pen.
func (g *Grid) saveCursor() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.savedX, g.savedY = g.cursorX, g.cursorY
	g.savedFG, g.savedBG = g.penFG, g.penBG
	g.savedAttrs = g.penAttrs
}

// restoreCursor returns to the saved cursor position and pen.
func (g *Grid) restoreCursor() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursorX, g.cursorY = g.savedX, g.savedY
	g.penFG, g.penBG = g.savedFG, g.savedBG
	g.penAttrs = g.savedAttrs
}

// setCursorVisible toggles cursor visibility.
func (g *Grid) setCursorVisible(visible bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursorVisible = visible
}

// setOriginMode toggles origin mode (cursor addressing relative to the
// scroll region).
func (g *Grid) setOriginMode(enabled bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.originMode = enabled
}

// setAutoWrap toggles wrapping at the right margin.
func (g *Grid) setAutoWrap(enabled bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.autoWrap = enabled
}

// Resize changes the grid dimensions in place, preserving the top-left
// content. Dimensions below 1 are clamped to 1.
func (g *Grid) Resize(rows, cols int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}

	cells := make([][]Cell, rows)
	for y := 0; y < rows; y++ {
		cells[y] = newRow(cols)
		if y < g.rows {
			n := cols
			if g.cols < n {
				n = g.cols
			}
			copy(cells[y][:n], g.cells[y][:n])
		}
	}
	g.cells = cells
	g.rows = rows
	g.cols = cols

	// The scroll region resets to the full screen; the cursor stays inside
	// the new bounds.
	g.scrollTop = 0
	g.scrollBottom = rows - 1
	g.cursorX = clamp(g.cursorX, 0, cols-1)
	g.cursorY = clamp(g.cursorY, 0, rows-1)
	g.savedX = clamp(g.savedX, 0, cols-1)
	g.savedY = clamp(g.savedY, 0, rows-1)
}

// Reset blanks the grid and restores initial cursor, pen and mode state.
func (g *Grid) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for y := 0; y < g.rows; y++ {
		g.clearRow(y, 0, g.cols)
	}
	g.cursorX, g.cursorY = 0, 0
	g.cursorVisible = true
	g.scrollTop = 0
	g.scrollBottom = g.rows - 1
	g.penFG = DefaultColor
	g.penBG = DefaultColor
	g.penAttrs = 0
	g.originMode = false
	g.autoWrap = true
}

// Text returns the grid content as plain text, one line per row.
func (g *Grid) Text() string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]rune, 0, g.rows*(g.cols+1))
	for y := 0; y < g.rows; y++ {
		for x := 0; x < g.cols; x++ {
			r := g.cells[y][x].Rune
			if r == 0 {
				continue
			}
			out = append(out, r)
		}
		if y < g.rows-1 {
			out = append(out, '\n')
		}
	}
	return string(out)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
