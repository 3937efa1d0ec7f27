package tone

import (
	"fmt"
	"sort"
	"strings"
)

var intervalNames = [12]string{"1", "b2", "2", "b3", "3", "4", "b5", "5", "b6", "6", "b7", "7"}

// Scale filters tones down to a root and a set of intervals. It is the
// default label source for the board.
type Scale struct {
	Name      string
	Root      int   // pitch class 0-11
	Intervals []int // semitones above root
}

// Scale interval sets by name.
var Scales = map[string][]int{
	"chromatic":  {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
	"major":      {0, 2, 4, 5, 7, 9, 11},
	"minor":      {0, 2, 3, 5, 7, 8, 10},
	"pentatonic": {0, 2, 4, 7, 9},
	"blues":      {0, 3, 5, 6, 7, 10},
}

// NewScale returns the named scale on a root note ("A", "C#").
func NewScale(root, name string) (*Scale, error) {
	pc, ok := NoteIndex(strings.ToUpper(root))
	if !ok {
		return nil, fmt.Errorf("unknown root %q", root)
	}
	iv, ok := Scales[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown scale %q", name)
	}
	return &Scale{Name: strings.ToLower(name), Root: pc, Intervals: iv}, nil
}

// Chromatic lets every tone through, labelled relative to C.
func Chromatic() *Scale {
	return &Scale{Name: "chromatic", Root: 0, Intervals: Scales["chromatic"]}
}

// ScaleNames lists the known scales in sorted order.
func ScaleNames() []string {
	names := make([]string, 0, len(Scales))
	for n := range Scales {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Interval returns semitones above the root (0-11).
func (s *Scale) Interval(t Schema) int {
	return ((t.PitchClass() - s.Root) + 12) % 12
}

// InScope reports whether the tone belongs to the scale.
func (s *Scale) InScope(t Schema) bool {
	if t.Note == "" {
		return false
	}
	iv := s.Interval(t)
	for _, i := range s.Intervals {
		if i == iv {
			return true
		}
	}
	return false
}

// Label names the tone: note name in note mode, interval number otherwise.
func (s *Scale) Label(t Schema, isNote bool) (string, error) {
	if t.Note == "" {
		return "", fmt.Errorf("pitch %d has no name", t.Pitch)
	}
	if isNote {
		return t.Note, nil
	}
	return intervalNames[s.Interval(t)], nil
}

func (s *Scale) String() string {
	return noteNames[s.Root] + " " + s.Name
}
