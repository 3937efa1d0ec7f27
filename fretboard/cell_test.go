package fretboard

import (
	"errors"
	"testing"

	"go-fretboard/tone"
)

func TestMarker(t *testing.T) {
	opts := DefaultOptions()

	tests := []struct {
		row  int
		want string
	}{
		{0, ""},
		{2, "·"},
		// Row 4 (the fifth fret) is a single dot and only row 11 (the
		// twelfth) carries the double dot; the marker table is kept as is.
		{4, "·"},
		{11, "··"},
		{15, "·"},
		{16, ""},
		{-1, ""},
	}
	for _, tt := range tests {
		if got := Marker(tt.row, opts); got != tt.want {
			t.Errorf("Marker(%d) = %q, want %q", tt.row, got, tt.want)
		}
	}

	opts.HasTag = false
	if got := Marker(11, opts); got != "" {
		t.Errorf("Marker with tags hidden = %q", got)
	}
	if got := RowLabel(4); got != "5" {
		t.Errorf("RowLabel(4) = %q, want 5", got)
	}
}

func TestLevelDots(t *testing.T) {
	tests := []struct {
		level int
		want  string
	}{
		{5, "··"},
		{1, "··"},
		{3, ""},
		{4, "·"},
	}
	for _, tt := range tests {
		if got := LevelDots(tt.level); got != tt.want {
			t.Errorf("LevelDots(%d) = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func cMajor(t *testing.T) *tone.Scale {
	t.Helper()
	s, err := tone.NewScale("C", "major")
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestCellFor(t *testing.T) {
	e2 := tone.Point{Index: 0, Tone: tone.NewSchema(40)}  // E2, in C major
	f2s := tone.Point{Index: 2, Tone: tone.NewSchema(42)} // F#2, out of C major
	c5 := tone.Point{Index: 7, Tone: tone.NewSchema(72)}  // C5

	ctx := &RenderContext{Options: DefaultOptions(), Theory: cMajor(t)}

	c := CellFor(e2, ctx)
	if c.Label != "E" || c.Octave != "2" || c.Empty {
		t.Errorf("E2 note mode = %+v", c)
	}

	c = CellFor(f2s, ctx)
	if c.Label != "" || !c.Empty || c.Octave != "" {
		t.Errorf("out-of-scope untapped = %+v, want empty", c)
	}

	ctx = &RenderContext{Options: DefaultOptions(), Theory: cMajor(t), Taps: []tone.Point{f2s}}
	c = CellFor(f2s, ctx)
	if c.Label != "F#" || !c.Tapped {
		t.Errorf("out-of-scope tapped = %+v, want label kept", c)
	}

	opts := DefaultOptions()
	opts.IsNote = false
	ctx = &RenderContext{Options: opts, Theory: cMajor(t)}
	c = CellFor(c5, ctx)
	if c.Label != "1" || c.Octave != "··" || !c.OctaveAbove {
		t.Errorf("C5 number mode = %+v", c)
	}
	c = CellFor(e2, ctx)
	if c.Label != "3" || c.Octave != "·" || c.OctaveAbove {
		t.Errorf("E2 number mode = %+v", c)
	}

	opts.HasLevel = false
	ctx = &RenderContext{Options: opts, Theory: cMajor(t)}
	if c := CellFor(c5, ctx); c.Octave != "" || c.OctaveAbove {
		t.Errorf("octave shown with HasLevel off: %+v", c)
	}
}

func TestCellFlagsAreAdditive(t *testing.T) {
	p := tone.Point{Index: 3, Tone: tone.NewSchema(48)}
	other := tone.Point{Index: 9, Tone: tone.NewSchema(50)}
	ctx := &RenderContext{
		Options:  DefaultOptions(),
		Theory:   cMajor(t),
		Emphasis: []string{"3"},
		Touched:  []string{"9"},
		Taps:     []tone.Point{p},
	}

	c := CellFor(p, ctx)
	if !c.Emphasised || !c.Tapped {
		t.Errorf("cell = %+v, want emphasised and tapped", c)
	}
	if c := CellFor(other, ctx); !c.Emphasised || c.Tapped {
		t.Errorf("touched cell = %+v, want emphasised only", c)
	}
}

func TestRenderContextTouch(t *testing.T) {
	p := tone.Point{Index: 4, Tone: tone.NewSchema(48)}
	ctx := &RenderContext{Options: DefaultOptions(), Theory: cMajor(t), Emphasis: []string{"1"}}
	ctx.index()

	touched := ctx.Touch([]string{"4"})
	if c := CellFor(p, touched); !c.Emphasised {
		t.Errorf("touched cell = %+v, want emphasised", c)
	}
	if c := CellFor(p, ctx); c.Emphasised {
		t.Error("Touch modified the original context")
	}
	if len(touched.Emphasis) != 1 {
		t.Errorf("emphasis = %v, want it kept apart from touched", touched.Emphasis)
	}
}

type brokenTheory struct{ panics bool }

func (b brokenTheory) InScope(tone.Schema) bool { return true }

func (b brokenTheory) Label(tone.Schema, bool) (string, error) {
	if b.panics {
		panic("no such chord")
	}
	return "", errors.New("unknown tone")
}

func TestCellForTheoryFailure(t *testing.T) {
	p := tone.Point{Index: 1, Tone: tone.NewSchema(40)}

	for _, theory := range []Theory{brokenTheory{}, brokenTheory{panics: true}} {
		ctx := &RenderContext{Options: DefaultOptions(), Theory: theory, Emphasis: []string{"1"}}
		c := CellFor(p, ctx)
		if c.Label != "" || !c.Empty {
			t.Errorf("theory %+v: cell = %+v, want empty", theory, c)
		}
		if !c.Emphasised {
			t.Error("failure should not drop state flags")
		}
	}
}

func TestPianoNotes(t *testing.T) {
	taps := []tone.Point{
		{Tone: tone.NewSchema(40)},
		{Tone: tone.NewSchema(64)},
		{Tone: tone.Schema{Pitch: -1}},
	}

	opts := DefaultOptions()
	if got := opts.PianoNotes(taps); len(got) != 2 || got[0] != "E3" || got[1] != "E3" {
		t.Errorf("PianoNotes folded = %v", got)
	}
	if got := opts.PianoLevels(); len(got) != 1 || got[0] != 3 {
		t.Errorf("PianoLevels = %v", got)
	}

	opts.IsAllKey = true
	if got := opts.PianoNotes(taps); len(got) != 2 || got[0] != "E2" || got[1] != "E4" {
		t.Errorf("PianoNotes all keys = %v", got)
	}
	if got := opts.PianoLevels(); len(got) != 4 {
		t.Errorf("PianoLevels = %v", got)
	}
}

func TestPianoPoints(t *testing.T) {
	kb := tone.NewKeyboard(tone.Tuning{40, 45}, 3)
	state := State{
		View: NewView(kb),
		Render: &RenderContext{
			Options:  DefaultOptions(),
			Emphasis: []string{"4", "0"},
			Taps:     []tone.Point{kb[0][2]},
		},
	}

	if got := state.PianoPoints(); len(got) != 1 || got[0].Index != 2 {
		t.Errorf("chord view = %v, want the taps", got)
	}
	state.Render.Options.IsPianoKeyDown = true
	got := state.PianoPoints()
	if len(got) != 2 || got[0].Index != 4 || got[1].Index != 0 {
		t.Errorf("key-down view = %v, want held cells 4 and 0", got)
	}
}
