package fretboard

import (
	"strconv"

	"go-fretboard/tone"
)

// Options is the read-only display configuration.
type Options struct {
	// Range is the [start, end) window of fret rows drawn below the nut.
	Range    [2]int `json:"range"`
	HasTag   bool   `json:"hasTag"`   // fret marker visibility
	HasLevel bool   `json:"hasLevel"` // octave annotation
	IsNote   bool   `json:"isNote"`   // note names instead of interval numbers

	IsAllKey       bool `json:"isAllKey"`
	IsPianoKeyDown bool `json:"isPianoKeyDown"`
}

// DefaultOptions returns the options a fresh board starts with.
func DefaultOptions() Options {
	return Options{
		Range:    [2]int{1, 16},
		HasTag:   true,
		HasLevel: true,
		IsNote:   true,
	}
}

// referenceLevel is the octave drawn without dots in number mode.
const referenceLevel = 3

// PianoLevels returns the octaves a piano-style view of the taps spans.
func (o Options) PianoLevels() []int {
	if o.IsAllKey {
		return []int{2, 3, 4, 5}
	}
	return []int{referenceLevel}
}

// PianoNotes names the taps for a piano-style view. Outside all-key mode
// every note is folded onto the reference octave. Unnamed tones are skipped.
func (o Options) PianoNotes(taps []tone.Point) []string {
	names := make([]string, 0, len(taps))
	for _, p := range taps {
		if p.Tone.Note == "" {
			continue
		}
		if o.IsAllKey {
			names = append(names, p.Tone.String())
			continue
		}
		names = append(names, p.Tone.Note+strconv.Itoa(referenceLevel))
	}
	return names
}
