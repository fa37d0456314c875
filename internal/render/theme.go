package render

import (
	"strings"
	"sync"
)

// Theme exposes the colors of a host UI theme.
type Theme interface {
	Background() string
	Foreground() string
	Surface() string
	Accent() string
}

// ThemeSource yields the active host theme. ActiveTheme may return nil
// when the host has not materialized a theme object yet; Name is always
// available and feeds the dark/light fallback.
type ThemeSource interface {
	ActiveTheme() Theme
	Name() string
}

// ThemeColors is a resolved set of host colors.
type ThemeColors struct {
	Background string
	Foreground string
	Surface    string
	Accent     string
}

// Fallback palettes for hosts without a theme object. Chosen by whether
// the theme name contains "dark".
var (
	darkFallback = ThemeColors{
		Background: "#000000",
		Foreground: "#ffffff",
		Surface:    "#1e1e1e",
		Accent:     "#0178d4",
	}
	lightFallback = ThemeColors{
		Background: "#ffffff",
		Foreground: "#000000",
		Surface:    "#f0f0f0",
		Accent:     "#0178d4",
	}
)

// ThemeCache resolves host-theme colors once and serves the cached value
// until explicitly invalidated. The host theme may not exist when the
// session is constructed, so resolution is deferred to first use.
type ThemeCache struct {
	mu       sync.Mutex
	source   ThemeSource
	colors   ThemeColors
	resolved bool
}

// NewThemeCache creates a cache over the given source.
func NewThemeCache(source ThemeSource) *ThemeCache {
	return &ThemeCache{source: source}
}

// Colors returns the resolved theme colors, resolving on first call.
func (c *ThemeCache) Colors() ThemeColors {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.resolved {
		c.colors = c.detect()
		c.resolved = true
	}
	return c.colors
}

// Invalidate drops the cached colors; the next Colors call re-resolves.
func (c *ThemeCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolved = false
}

func (c *ThemeCache) detect() ThemeColors {
	if c.source == nil {
		return darkFallback
	}
	if theme := c.source.ActiveTheme(); theme != nil {
		return ThemeColors{
			Background: theme.Background(),
			Foreground: theme.Foreground(),
			Surface:    theme.Surface(),
			Accent:     theme.Accent(),
		}
	}
	if strings.Contains(strings.ToLower(c.source.Name()), "dark") {
		return darkFallback
	}
	return lightFallback
}
