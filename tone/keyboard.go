package tone

import (
	"fmt"
	"strings"
)

// Tuning lists the open-string pitches, lowest string first.
type Tuning []int

// Standard is E2 A2 D3 G3 B3 E4.
var Standard = Tuning{40, 45, 50, 55, 59, 64}

// Named tunings selectable from the command line.
var Tunings = map[string]Tuning{
	"standard": Standard,
	"dropd":    {38, 45, 50, 55, 59, 64},
	"dadgad":   {38, 45, 50, 55, 57, 62},
	"openg":    {38, 43, 50, 55, 59, 62},
	"bass":     {28, 33, 38, 43},
	"ukulele":  {67, 60, 64, 69},
}

// ParseTuning accepts a tuning name or a comma separated list of note names
// with octaves ("E2,A2,D3,G3,B3,E4").
func ParseTuning(s string) (Tuning, error) {
	if t, ok := Tunings[strings.ToLower(s)]; ok {
		return t, nil
	}
	var out Tuning
	for _, part := range strings.Split(s, ",") {
		p, err := ParsePitch(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("tuning %q: %w", s, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// ParsePitch parses "C#3" style names into MIDI pitches.
func ParsePitch(s string) (int, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("bad pitch %q", s)
	}
	name := strings.ToUpper(s[:1])
	rest := s[1:]
	if strings.HasPrefix(rest, "#") {
		name += "#"
		rest = rest[1:]
	}
	pc, ok := NoteIndex(name)
	if !ok {
		return 0, fmt.Errorf("bad note %q", s)
	}
	var octave int
	if _, err := fmt.Sscanf(rest, "%d", &octave); err != nil {
		return 0, fmt.Errorf("bad octave in %q", s)
	}
	return (octave+1)*12 + pc, nil
}

// Keyboard is a string-major layout: Keyboard[s][f] is the point on string s
// at fret f.
type Keyboard [][]Point

// NewKeyboard lays out frets 0..frets-1 on every string of the tuning.
// Indices are assigned string by string, so index = s*frets + f.
func NewKeyboard(t Tuning, frets int) Keyboard {
	if frets <= 0 || len(t) == 0 {
		return nil
	}
	kb := make(Keyboard, len(t))
	for s, open := range t {
		kb[s] = make([]Point, frets)
		for f := 0; f < frets; f++ {
			kb[s][f] = Point{
				Index:  s*frets + f,
				String: s,
				Fret:   f,
				Tone:   NewSchema(open + f),
			}
		}
	}
	return kb
}

// Strings returns the number of strings.
func (kb Keyboard) Strings() int {
	return len(kb)
}

// Frets returns the length of the longest string.
func (kb Keyboard) Frets() int {
	n := 0
	for _, s := range kb {
		if len(s) > n {
			n = len(s)
		}
	}
	return n
}

// At returns the point at (string, fret).
func (kb Keyboard) At(s, f int) (Point, bool) {
	if s < 0 || s >= len(kb) || f < 0 || f >= len(kb[s]) {
		return Point{}, false
	}
	return kb[s][f], true
}
