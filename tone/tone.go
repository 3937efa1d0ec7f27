// Package tone is the tone-theory side of the fretboard: what sits at each
// string/fret position and how it is named.
package tone

import (
	"fmt"
	"strconv"
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Schema describes the tone at one fretboard position.
type Schema struct {
	Pitch int    `json:"pitch"` // MIDI pitch
	Note  string `json:"note"`  // note name without octave, e.g. "F#"
	Level int    `json:"level"` // scientific octave; 0 = no level
}

// Point is one addressable fretboard position. Points are values and are
// never mutated after a layout is generated.
type Point struct {
	Index  int    `json:"index"`
	String int    `json:"string"`
	Fret   int    `json:"fret"`
	Tone   Schema `json:"tone"`
}

// Key is the position key used by input sources and the emphasis set.
func (p Point) Key() string {
	return strconv.Itoa(p.Index)
}

// NewSchema builds the schema for a MIDI pitch. Level 0 is the "no level"
// sentinel, so tones below C1 (octaves 0 and -1) carry no level.
func NewSchema(pitch int) Schema {
	if pitch < 0 {
		return Schema{Pitch: pitch}
	}
	level := octaveOf(pitch)
	if level < 1 {
		level = 0
	}
	return Schema{
		Pitch: pitch,
		Note:  noteNames[pitch%12],
		Level: level,
	}
}

func octaveOf(pitch int) int {
	return pitch/12 - 1
}

// PitchClass returns the pitch modulo 12.
func (s Schema) PitchClass() int {
	return ((s.Pitch % 12) + 12) % 12
}

// String returns the note with its octave, e.g. "E2", or the bare note for
// a tone without a level.
func (s Schema) String() string {
	if s.Note == "" {
		return fmt.Sprintf("?%d", s.Pitch)
	}
	if s.Level == 0 {
		return s.Note
	}
	return fmt.Sprintf("%s%d", s.Note, s.Level)
}

// PitchName formats a MIDI pitch as note+octave, including octaves 0 and -1.
func PitchName(pitch int) string {
	if pitch < 0 {
		return fmt.Sprintf("?%d", pitch)
	}
	return fmt.Sprintf("%s%d", noteNames[pitch%12], octaveOf(pitch))
}

// NoteIndex returns the pitch class for a note name ("C#" -> 1).
func NoteIndex(name string) (int, bool) {
	for i, n := range noteNames {
		if n == name {
			return i, true
		}
	}
	return 0, false
}
