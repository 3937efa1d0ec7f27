package midi

import (
	"go-fretboard/tone"
)

const gridSize = 8

// Top-row buttons used for navigation on a Launchpad X.
const (
	navLeft  = 2
	navRight = 3
)

// PadMap places a window of the fretboard on the 8x8 grid: pad row r is
// string r (lowest string at the bottom), pad column c is fret Start+c.
type PadMap struct {
	Start int
}

// Index returns the position index under a pad.
func (m PadMap) Index(kb tone.Keyboard, row, col int) (int, bool) {
	if row < 0 || row >= gridSize || col < 0 || col >= gridSize {
		return 0, false
	}
	p, ok := kb.At(row, m.Start+col)
	if !ok {
		return 0, false
	}
	return p.Index, true
}

// Pad returns the pad showing p, if it is inside the window.
func (m PadMap) Pad(p tone.Point) (row, col int, ok bool) {
	col = p.Fret - m.Start
	if p.String < 0 || p.String >= gridSize || col < 0 || col >= gridSize {
		return 0, 0, false
	}
	return p.String, col, true
}

// Shift moves the window by delta frets, keeping it on a board of frets
// positions.
func (m PadMap) Shift(delta, frets int) PadMap {
	start := m.Start + delta
	if start > frets-gridSize {
		start = frets - gridSize
	}
	if start < 0 {
		start = 0
	}
	return PadMap{Start: start}
}

// NoteMap finds where a MIDI note sits on the board. A pitch that appears on
// several strings resolves to its lowest fret, then its lowest string.
type NoteMap map[uint8]tone.Point

// NewNoteMap indexes every point of kb by pitch.
func NewNoteMap(kb tone.Keyboard) NoteMap {
	m := make(NoteMap)
	for _, str := range kb {
		for _, p := range str {
			if p.Tone.Pitch < 0 || p.Tone.Pitch > 127 {
				continue
			}
			pitch := uint8(p.Tone.Pitch)
			prev, ok := m[pitch]
			if !ok || p.Fret < prev.Fret || p.Fret == prev.Fret && p.String < prev.String {
				m[pitch] = p
			}
		}
	}
	return m
}

// Index returns the position index for note.
func (m NoteMap) Index(note uint8) (int, bool) {
	p, ok := m[note]
	return p.Index, ok
}
