// Package theme holds the light and dark palettes and the design tokens used
// by every screen.
package theme

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bekirdag/propbook/internal/inventory"
	"github.com/bekirdag/propbook/internal/prefs"
)

// Mode is the active color scheme.
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// ParseMode accepts "light" or "dark" in any case; anything else reports false.
func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, true
	case Dark:
		return Dark, true
	}
	return Light, false
}

func (m Mode) Toggle() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

func (m Mode) IsDark() bool { return m == Dark }

// Palette is the set of colors for one mode.
type Palette struct {
	Mode       Mode
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Selection  lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Danger     lipgloss.Color
	Info       lipgloss.Color
	Chart      [4]lipgloss.Color
}

var (
	lightPalette = Palette{
		Mode:       Light,
		Background: lipgloss.Color("#f4f5f6"),
		Foreground: lipgloss.Color("#1b2a1f"),
		Primary:    lipgloss.Color("#3d5a2a"),
		Accent:     lipgloss.Color("#a67c1b"),
		Muted:      lipgloss.Color("#6b7280"),
		Border:     lipgloss.Color("#c8ccd2"),
		Selection:  lipgloss.Color("#dfe8d2"),
		Success:    lipgloss.Color("#2e7d32"),
		Warning:    lipgloss.Color("#b7791f"),
		Danger:     lipgloss.Color("#c62828"),
		Info:       lipgloss.Color("#1565c0"),
		Chart:      [4]lipgloss.Color{"#3d5a2a", "#a67c1b", "#c62828", "#1565c0"},
	}
	darkPalette = Palette{
		Mode:       Dark,
		Background: lipgloss.Color("#141a14"),
		Foreground: lipgloss.Color("#e8ece4"),
		Primary:    lipgloss.Color("#9cba7f"),
		Accent:     lipgloss.Color("#e0b84a"),
		Muted:      lipgloss.Color("#8a9386"),
		Border:     lipgloss.Color("#34402f"),
		Selection:  lipgloss.Color("#2b3a26"),
		Success:    lipgloss.Color("#81c784"),
		Warning:    lipgloss.Color("#ffca28"),
		Danger:     lipgloss.Color("#ef5350"),
		Info:       lipgloss.Color("#64b5f6"),
		Chart:      [4]lipgloss.Color{"#9cba7f", "#e0b84a", "#ef5350", "#64b5f6"},
	}
)

// For returns the palette of mode.
func For(mode Mode) Palette {
	if mode == Dark {
		return darkPalette
	}
	return lightPalette
}

// StatusColor maps a readiness code to its semantic color.
func (p Palette) StatusColor(status string) lipgloss.Color {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case inventory.FMC:
		return p.Success
	case inventory.PMC:
		return p.Warning
	case inventory.NMC:
		return p.Danger
	}
	return p.Muted
}

// Tokens is the spacing scale in terminal cells.
type Tokens struct {
	None, XS, SM, MD int
}

// DefaultTokens is the scale the dashboard styles are built from.
var DefaultTokens = Tokens{None: 0, XS: 1, SM: 2, MD: 4}

// Detect picks a mode from PROPBOOK_THEME, then COLORFGBG, then light.
func Detect() Mode {
	if m, ok := ParseMode(os.Getenv("PROPBOOK_THEME")); ok {
		return m
	}
	// COLORFGBG is "fg;bg"; background indexes 0-6 and 8 are dark.
	if parts := strings.Split(os.Getenv("COLORFGBG"), ";"); len(parts) >= 2 {
		if bg, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			if (bg >= 0 && bg <= 6) || bg == 8 {
				return Dark
			}
		}
	}
	return Light
}

// Load returns the stored mode, falling back to fallback.
func Load(s prefs.Store, fallback Mode) Mode {
	if v, ok := s.Get(prefs.KeyThemeMode); ok {
		if m, ok := ParseMode(v); ok {
			return m
		}
	}
	return fallback
}

func Save(s prefs.Store, m Mode) error {
	return s.Set(prefs.KeyThemeMode, string(m))
}
