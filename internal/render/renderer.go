package render

import (
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/kagan-sh/textual-terminal/internal/vtgrid"
)

// CellSource is the read-only view of a grid the renderer consumes.
type CellSource interface {
	Rows() int
	Cols() int
	Cell(x, y int) vtgrid.Cell
	Cursor() (x, y int)
}

// StyledRun is a maximal span of characters sharing one style.
type StyledRun struct {
	Text  string
	Style tcell.Style
	// Width is the number of grid columns the run covers. It differs
	// from len(Text) only when the run contains wide runes.
	Width int
}

// Line is one display row as an ordered sequence of styled runs.
type Line []StyledRun

// Text returns the line's characters without styling.
func (l Line) Text() string {
	var b strings.Builder
	for _, run := range l {
		b.WriteString(run.Text)
	}
	return b.String()
}

// Width returns the number of grid columns the line covers.
func (l Line) Width() int {
	w := 0
	for _, run := range l {
		w += run.Width
	}
	return w
}

// Snapshot is a full-screen render, one line per grid row. Each snapshot
// replaces the previous one wholesale.
type Snapshot struct {
	Lines []Line
}

// Text returns the snapshot as plain text, one line per row.
func (s Snapshot) Text() string {
	lines := make([]string, len(s.Lines))
	for i, line := range s.Lines {
		lines[i] = line.Text()
	}
	return strings.Join(lines, "\n")
}

// InitialSnapshot is the display before a session starts and after it
// disconnects: a single blank line.
func InitialSnapshot() Snapshot {
	return Snapshot{Lines: []Line{{}}}
}

// Renderer converts grid state into snapshots. Every render is a full
// recomputation; it runs once per output batch, not per byte, so the
// simplicity wins over incremental diffing.
type Renderer struct {
	resolver *StyleResolver
}

// NewRenderer creates a renderer using the given style resolver.
func NewRenderer(resolver *StyleResolver) *Renderer {
	return &Renderer{resolver: resolver}
}

// Snapshot renders the current grid contents. Runs are maximal: adjacent
// runs in a line never share an identical style, and together they tile
// the row exactly. The cell under the cursor is overlaid with reverse
// video, splitting whatever run contains it.
func (r *Renderer) Snapshot(grid CellSource) Snapshot {
	rows, cols := grid.Rows(), grid.Cols()
	cursorX, cursorY := grid.Cursor()

	lines := make([]Line, rows)
	for y := 0; y < rows; y++ {
		lines[y] = r.renderRow(grid, y, cols, cursorX, cursorY)
	}
	return Snapshot{Lines: lines}
}

func (r *Renderer) renderRow(grid CellSource, y, cols, cursorX, cursorY int) Line {
	line := Line{}

	var (
		runText        strings.Builder
		runWidth       int
		runCell        vtgrid.Cell
		runUnderCursor bool
		open           bool
	)

	flush := func() {
		if !open {
			return
		}
		style := r.resolver.CellStyle(runCell)
		if runUnderCursor {
			// Overlaid after the base style so it wins for this cell.
			style = style.Reverse(true)
		}
		line = append(line, StyledRun{
			Text:  runText.String(),
			Style: style,
			Width: runWidth,
		})
		runText.Reset()
		runWidth = 0
		open = false
	}

	for x := 0; x < cols; x++ {
		cell := grid.Cell(x, y)
		underCursor := y == cursorY && x == cursorX

		// The cursor cell is always its own run; the overlay must cover
		// exactly one cell.
		if open && (!cell.SameStyle(runCell) || underCursor || runUnderCursor) {
			flush()
		}
		if !open {
			runCell = cell
			runUnderCursor = underCursor
			open = true
		}
		if cell.Rune != 0 {
			runText.WriteRune(cell.Rune)
		}
		runWidth++
	}
	flush()

	return line
}
