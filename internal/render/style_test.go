package render

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/kagan-sh/textual-terminal/internal/vtgrid"
)

func TestResolveColor(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"default", "default"},
		{"red", "red"},
		{"brown", "yellow"},
		{"brightblack", "#808080"},
		{"brightred", "brightred"},
		{"aabbcc", "#aabbcc"},
		{"AABBCC", "#AABBCC"},
		{"080808", "#080808"},
		{"not-hex", "not-hex"},
		{"abcde", "abcde"},     // too short for hex
		{"abcdefg", "abcdefg"}, // too long for hex
	}

	for _, tt := range tests {
		if got := ResolveColor(tt.token); got != tt.want {
			t.Errorf("ResolveColor(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}

func TestDisplayColorNamed(t *testing.T) {
	c, err := displayColor("red")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != tcell.ColorNames["red"] {
		t.Error("named color should come from the tcell name table")
	}
}

func TestDisplayColorHex(t *testing.T) {
	c, err := displayColor("#aabbcc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != tcell.GetColor("#aabbcc") {
		t.Error("hex color mismatch")
	}
}

func TestDisplayColorBright(t *testing.T) {
	c, err := displayColor("brightred")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != tcell.PaletteColor(9) {
		t.Error("bright names should map to palette indices")
	}
}

func TestDisplayColorDefault(t *testing.T) {
	c, err := displayColor("default")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != tcell.ColorDefault {
		t.Error("default should resolve to tcell.ColorDefault")
	}
}

func TestDisplayColorInvalid(t *testing.T) {
	if _, err := displayColor("#zz0000"); err == nil {
		t.Error("expected error for malformed hex")
	}
	if _, err := displayColor("nosuchcolor"); err == nil {
		t.Error("expected error for unknown name")
	}
}

func TestCellStyleWithoutTheme(t *testing.T) {
	r := NewStyleResolver(nil, nil)

	cell := vtgrid.Cell{
		Rune:  'A',
		FG:    vtgrid.PaletteColor(1),
		BG:    vtgrid.DefaultColor,
		Attrs: vtgrid.AttrBold | vtgrid.AttrUnderline,
	}
	style := r.CellStyle(cell)

	fg, bg, attrs := style.Decompose()
	if fg != tcell.ColorNames["red"] {
		t.Errorf("expected red foreground, got %v", fg)
	}
	if bg != tcell.ColorDefault {
		t.Errorf("expected default background without a theme, got %v", bg)
	}
	if attrs&tcell.AttrBold == 0 || attrs&tcell.AttrUnderline == 0 {
		t.Error("bold and underline should carry through")
	}
}

func TestCellStyleThemeSubstitutesDefaults(t *testing.T) {
	cache := NewThemeCache(nameOnlySource{name: "my-dark-theme"})
	r := NewStyleResolver(cache, nil)

	cell := vtgrid.Cell{Rune: 'A', FG: vtgrid.DefaultColor, BG: vtgrid.DefaultColor}
	style := r.CellStyle(cell)

	fg, bg, _ := style.Decompose()
	if fg != tcell.GetColor("#ffffff") {
		t.Errorf("expected dark theme foreground, got %v", fg)
	}
	if bg != tcell.GetColor("#000000") {
		t.Errorf("expected dark theme background, got %v", bg)
	}
}

func TestCellStyleThemeLeavesExplicitColors(t *testing.T) {
	cache := NewThemeCache(nameOnlySource{name: "dark"})
	r := NewStyleResolver(cache, nil)

	cell := vtgrid.Cell{Rune: 'A', FG: vtgrid.PaletteColor(2), BG: vtgrid.DefaultColor}
	style := r.CellStyle(cell)

	fg, _, _ := style.Decompose()
	if fg != tcell.ColorNames["green"] {
		t.Errorf("explicit colors should not be themed, got %v", fg)
	}
}

func TestCellStyleInvalidThemeColorFallsBack(t *testing.T) {
	cache := NewThemeCache(themeSource{theme: fixedTheme{
		background: "#zzzzzz",
		foreground: "#ffffff",
	}})
	r := NewStyleResolver(cache, nil)

	cell := vtgrid.Cell{Rune: 'A', FG: vtgrid.DefaultColor, BG: vtgrid.DefaultColor}
	style := r.CellStyle(cell)

	if style != tcell.StyleDefault {
		t.Error("unparseable theme color should fall back to the default style")
	}
}
