package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-fretboard/midi"
)

const padRows = 9 // 8x8 grid plus the top button row

// RenderPad renders a single colored pad; unlit pads are dim dots.
func RenderPad(color [3]uint8) string {
	if color == ([3]uint8{}) {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#303030")).Render("·")
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color))).Render("■")
}

// RenderPadGrid mirrors what a Launchpad shows: the top button row first,
// then pad rows from 7 down to 0.
func RenderPadGrid(leds []midi.LEDState) string {
	var grid [padRows][8][3]uint8
	for _, led := range leds {
		if led.Row < 0 || led.Row >= padRows || led.Col < 0 || led.Col >= 8 {
			continue
		}
		grid[led.Row][led.Col] = led.Color
	}

	lines := make([]string, 0, padRows)
	for row := padRows - 1; row >= 0; row-- {
		pads := make([]string, 8)
		for col := range pads {
			pads[col] = RenderPad(grid[row][col])
		}
		lines = append(lines, strings.Join(pads, " "))
	}
	return strings.Join(lines, "\n")
}

// RenderLegendItem renders a single legend item: "■ Name - description"
func RenderLegendItem(color [3]uint8, name, desc string) string {
	return fmt.Sprintf("  %s %s - %s", RenderPad(color), name, desc)
}

// RenderLegend explains the pad colours.
func RenderLegend(colors midi.LEDColors) string {
	return strings.Join([]string{
		RenderLegendItem(colors.Emphasis, "held", "under a finger"),
		RenderLegendItem(colors.Tap, "tapped", "last settled chord"),
		RenderLegendItem(colors.Label, "scale", "in the current scale"),
	}, "\n")
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
