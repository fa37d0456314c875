package vtgrid

// Engine bundles a Grid with the Parser that drives it, exposing the
// narrow surface the rest of the module consumes: feed bytes in, read
// cells and cursor out.
type Engine struct {
	grid   *Grid
	parser *Parser
}

// NewEngine creates an engine with the given initial dimensions.
func NewEngine(rows, cols int) *Engine {
	grid := NewGrid(rows, cols)
	return &Engine{
		grid:   grid,
		parser: NewParser(grid),
	}
}

// Feed applies a chunk of terminal output. It never fails; malformed
// input is skipped.
func (e *Engine) Feed(data []byte) {
	e.parser.Feed(data)
}

// Resize changes the grid dimensions in place.
func (e *Engine) Resize(rows, cols int) {
	e.grid.Resize(rows, cols)
}

// Cell returns the cell at (x, y).
func (e *Engine) Cell(x, y int) Cell {
	return e.grid.Cell(x, y)
}

// Cursor returns the cursor position.
func (e *Engine) Cursor() (x, y int) {
	return e.grid.Cursor()
}

// Rows returns the grid height.
func (e *Engine) Rows() int {
	return e.grid.Rows()
}

// Cols returns the grid width.
func (e *Engine) Cols() int {
	return e.grid.Cols()
}

// Reset blanks the grid back to its initial state.
func (e *Engine) Reset() {
	e.grid.Reset()
}

// SetTitleCallback registers a callback for window-title changes.
func (e *Engine) SetTitleCallback(fn func(string)) {
	e.parser.SetTitleCallback(fn)
}

// Grid returns the underlying grid.
func (e *Engine) Grid() *Grid {
	return e.grid
}
