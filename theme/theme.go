package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	Fret     string // between two fret rows
	Nut      string // under the open strings
	String   string // empty cell
	Dot      string // octave and inlay dots
	Selected string // cursor marker on the help line
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Fret:     "─",
			Nut:      "═",
			String:   "│",
			Dot:      "·",
			Selected: "▸",
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG       = 0.0
	RoleSurface  = 0.1
	RoleMuted    = 0.3
	RoleFG       = 1.0
	RoleLabel    = 0.9
	RoleMarker   = 0.5
	RoleTap      = 0.6
	RoleEmphasis = 0.8
	RoleAccent   = 0.7
)

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) Surface() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSurface))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Label() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleLabel))
}

func (t *Theme) Marker() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMarker))
}

func (t *Theme) Tap() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleTap))
}

func (t *Theme) Emphasis() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleEmphasis))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

// RGB returns raw RGB for any normalized value (for Launchpad)
func (t *Theme) RGB(norm float64) RGB {
	return t.Palette.Lookup(norm)
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
