package midi

import (
	"go-fretboard/fretboard"
)

// LEDColors are the pad colours for each cell state.
type LEDColors struct {
	Emphasis [3]uint8
	Tap      [3]uint8
	Label    [3]uint8 // in scope, idle
	Nav      [3]uint8
}

// DefaultLEDColors is used when the host does not pass a palette.
var DefaultLEDColors = LEDColors{
	Emphasis: [3]uint8{255, 255, 255},
	Tap:      [3]uint8{255, 100, 0},
	Label:    [3]uint8{40, 60, 120},
	Nav:      [3]uint8{30, 30, 30},
}

// LEDState is what one pad should show.
type LEDState struct {
	Row, Col int
	Color    [3]uint8
	Channel  uint8
}

// RenderLEDs draws the pad window of a board snapshot. Pads without a lit
// state are left out; the diff clears them.
func RenderLEDs(s fretboard.State, pads PadMap, colors LEDColors) []LEDState {
	if s.View.Empty() {
		return nil
	}
	var leds []LEDState
	for row := 0; row < gridSize; row++ {
		for col := 0; col < gridSize; col++ {
			p, ok := s.View.Keyboard.At(row, pads.Start+col)
			if !ok {
				continue
			}
			cell := fretboard.CellFor(p, s.Render)
			led := LEDState{Row: row, Col: col}
			switch {
			case cell.Emphasised:
				led.Color = colors.Emphasis
			case cell.Tapped:
				led.Color = colors.Tap
				led.Channel = ChannelPulse
			case !cell.Empty:
				led.Color = colors.Label
			default:
				continue
			}
			leds = append(leds, led)
		}
	}
	if pads.Start > 0 {
		leds = append(leds, LEDState{Row: 8, Col: navLeft, Color: colors.Nav})
	}
	if pads.Start+gridSize < s.View.Keyboard.Frets() {
		leds = append(leds, LEDState{Row: 8, Col: navRight, Color: colors.Nav})
	}
	return leds
}

// ledDiff remembers what is lit so only changes go over the wire.
type ledDiff struct {
	prev map[[2]int]LEDState
}

// Reset forgets what is lit; the next diff redraws everything it lights.
func (d *ledDiff) Reset() {
	d.prev = nil
}

// Diff returns the updates that turn the previous frame into next.
func (d *ledDiff) Diff(next []LEDState) []LEDUpdate {
	newMap := make(map[[2]int]LEDState, len(next))
	var updates []LEDUpdate

	for _, led := range next {
		key := [2]int{led.Row, led.Col}
		newMap[key] = led
		if prev, ok := d.prev[key]; !ok || prev != led {
			updates = append(updates, LEDUpdate{Row: led.Row, Col: led.Col, Color: led.Color, Channel: led.Channel})
		}
	}

	// Clear LEDs that are no longer present
	for key := range d.prev {
		if _, ok := newMap[key]; !ok {
			updates = append(updates, LEDUpdate{Row: key[0], Col: key[1]})
		}
	}

	d.prev = newMap
	return updates
}
