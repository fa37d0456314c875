// Package render turns a terminal grid into style-compressed display
// lines. Colors resolve to tcell tokens so any tcell-based front end can
// draw the result directly.
package render

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/kagan-sh/textual-terminal/internal/logging"
	"github.com/kagan-sh/textual-terminal/internal/vtgrid"
)

// midGray stands in for "brightblack", which most palettes render
// illegibly against both dark and light backgrounds.
const midGray = "#808080"

// ResolveColor maps a grid color token to a renderable one:
//
//   - "brown" becomes "yellow" (the hardware palette's dim yellow)
//   - "brightblack" becomes a fixed mid-gray
//   - six bare hex digits gain a "#" prefix
//   - everything else, including "default", passes through unchanged
func ResolveColor(token string) string {
	if token == "brown" {
		return "yellow"
	}
	if token == "brightblack" {
		return midGray
	}
	if isHexToken(token) {
		return "#" + token
	}
	return token
}

// isHexToken reports whether token is exactly six hex digits.
func isHexToken(token string) bool {
	if len(token) != 6 {
		return false
	}
	for i := 0; i < 6; i++ {
		c := token[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// brightPalette maps the remaining bright-color names to their palette
// indices. tcell's name table only knows the W3C set.
var brightPalette = map[string]int{
	"brightred":     9,
	"brightgreen":   10,
	"brightyellow":  11,
	"brightblue":    12,
	"brightmagenta": 13,
	"brightcyan":    14,
	"brightwhite":   15,
}

// displayColor converts a resolved token to a tcell color.
func displayColor(token string) (tcell.Color, error) {
	if token == "default" {
		return tcell.ColorDefault, nil
	}
	if strings.HasPrefix(token, "#") {
		if _, err := colorful.Hex(token); err != nil {
			return tcell.ColorDefault, fmt.Errorf("invalid hex color %q: %w", token, err)
		}
		return tcell.GetColor(token), nil
	}
	if index, ok := brightPalette[token]; ok {
		return tcell.PaletteColor(index), nil
	}
	if c, ok := tcell.ColorNames[token]; ok {
		return c, nil
	}
	return tcell.ColorDefault, fmt.Errorf("unknown color %q", token)
}

// StyleResolver builds tcell styles for grid cells, optionally
// substituting host-theme colors for the terminal defaults.
type StyleResolver struct {
	theme  *ThemeCache
	logger *logging.Logger
}

// NewStyleResolver creates a resolver. theme may be nil, in which case
// "default" colors pass through unresolved. logger may be nil.
func NewStyleResolver(theme *ThemeCache, logger *logging.Logger) *StyleResolver {
	if logger == nil {
		logger = logging.Nop
	}
	return &StyleResolver{
		theme:  theme,
		logger: logger.WithComponent("style"),
	}
}

// CellStyle resolves the full style for a cell. An unparseable color
// never fails the render: the cell falls back to the unstyled default and
// the problem is logged.
func (r *StyleResolver) CellStyle(cell vtgrid.Cell) tcell.Style {
	fg := ResolveColor(cell.FG.Token())
	bg := ResolveColor(cell.BG.Token())

	if r.theme != nil {
		colors := r.theme.Colors()
		if fg == "default" {
			fg = colors.Foreground
		}
		if bg == "default" {
			bg = colors.Background
		}
	}

	style := tcell.StyleDefault

	fgColor, err := displayColor(fg)
	if err != nil {
		r.logger.Warn("color parse error: %v", err)
		return tcell.StyleDefault
	}
	bgColor, err := displayColor(bg)
	if err != nil {
		r.logger.Warn("color parse error: %v", err)
		return tcell.StyleDefault
	}
	style = style.Foreground(fgColor).Background(bgColor)

	if cell.Attrs.Has(vtgrid.AttrBold) {
		style = style.Bold(true)
	}
	if cell.Attrs.Has(vtgrid.AttrDim) {
		style = style.Dim(true)
	}
	if cell.Attrs.Has(vtgrid.AttrItalic) {
		style = style.Italic(true)
	}
	if cell.Attrs.Has(vtgrid.AttrUnderline) {
		style = style.Underline(true)
	}
	if cell.Attrs.Has(vtgrid.AttrBlink) {
		style = style.Blink(true)
	}
	if cell.Attrs.Has(vtgrid.AttrReverse) {
		style = style.Reverse(true)
	}
	if cell.Attrs.Has(vtgrid.AttrStrike) {
		style = style.StrikeThrough(true)
	}

	return style
}
