package fretboard

import (
	"slices"
	"strconv"
	"strings"

	"go-fretboard/tone"
)

// Theory is the tone-theory collaborator the label policy consults.
type Theory interface {
	InScope(t tone.Schema) bool
	Label(t tone.Schema, isNote bool) (string, error)
}

// RenderContext is everything a cell needs to decide what it shows. It is
// passed to every CellFor call; cells never look anything up on their own.
type RenderContext struct {
	Options  Options
	Theory   Theory
	Emphasis []string
	Touched  []string // highlighted by another widget, not by input
	Taps     []tone.Point

	emphasis map[string]bool
	taps     map[int]bool
}

// index builds the lookup sets. Contexts built by Board.Snapshot are already
// indexed; hand-built ones are indexed lazily.
func (ctx *RenderContext) index() {
	if ctx.emphasis != nil {
		return
	}
	ctx.emphasis = make(map[string]bool, len(ctx.Emphasis)+len(ctx.Touched))
	for _, k := range ctx.Emphasis {
		ctx.emphasis[k] = true
	}
	for _, k := range ctx.Touched {
		ctx.emphasis[k] = true
	}
	ctx.taps = make(map[int]bool, len(ctx.Taps))
	for _, p := range ctx.Taps {
		ctx.taps[p.Index] = true
	}
}

// Touch returns a copy of ctx that also highlights keys, for cells another
// widget points at without any input being down.
func (ctx *RenderContext) Touch(keys []string) *RenderContext {
	out := &RenderContext{
		Options:  ctx.Options,
		Theory:   ctx.Theory,
		Emphasis: ctx.Emphasis,
		Touched:  append(slices.Clone(ctx.Touched), keys...),
		Taps:     ctx.Taps,
	}
	out.index()
	return out
}

// Cell is the logical content of one fretboard position.
type Cell struct {
	Key         string
	Label       string
	Octave      string
	OctaveAbove bool // number mode, above the reference octave

	Emphasised bool
	Tapped     bool
	Empty      bool
}

// CellFor applies the label policy to one point. A tone outside the theory's
// scope is hidden unless the point was tapped. Tapped and Emphasised are
// independent and may both be set.
func CellFor(p tone.Point, ctx *RenderContext) Cell {
	ctx.index()
	key := p.Key()
	c := Cell{
		Key:        key,
		Emphasised: ctx.emphasis[key],
		Tapped:     ctx.taps[p.Index],
	}

	c.Label = label(p.Tone, ctx, c.Tapped)
	if c.Label == "" {
		c.Empty = true
		return c
	}
	c.Octave = octave(p.Tone, ctx.Options)
	if !ctx.Options.IsNote && ctx.Options.HasLevel && p.Tone.Level != 0 {
		c.OctaveAbove = p.Tone.Level > referenceLevel
	}
	return c
}

// label asks the theory for the text. Errors and panics both come back as
// "no label" so one bad tone never takes the rest of the board down.
func label(t tone.Schema, ctx *RenderContext, tapped bool) (s string) {
	if ctx.Theory == nil {
		if t.Note == "" {
			return ""
		}
		return t.Note
	}
	defer func() {
		if r := recover(); r != nil {
			s = ""
		}
	}()
	if !tapped && !ctx.Theory.InScope(t) {
		return ""
	}
	s, err := ctx.Theory.Label(t, ctx.Options.IsNote)
	if err != nil {
		return ""
	}
	return s
}

func octave(t tone.Schema, opts Options) string {
	if !opts.HasLevel || t.Level == 0 {
		return ""
	}
	if opts.IsNote {
		return strconv.Itoa(t.Level)
	}
	return LevelDots(t.Level)
}

// LevelDots draws an octave as its distance from the reference octave.
func LevelDots(level int) string {
	n := level - referenceLevel
	if n < 0 {
		n = -n
	}
	return strings.Repeat("·", n)
}
