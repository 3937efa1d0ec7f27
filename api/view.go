package api

import (
	"go-fretboard/fretboard"
	"go-fretboard/tone"
)

// CellResponse is one drawn position.
type CellResponse struct {
	Index      int    `json:"index"`
	String     int    `json:"string"`
	Fret       int    `json:"fret"`
	Label      string `json:"label"`
	Octave     string `json:"octave,omitempty"`
	Above      bool   `json:"above,omitempty"`
	Emphasised bool   `json:"emphasised,omitempty"`
	Tapped     bool   `json:"tapped,omitempty"`
	Empty      bool   `json:"empty,omitempty"`
}

// RowResponse is one drawn fret row, highest string first.
type RowResponse struct {
	Fret   int            `json:"fret"`
	Label  string         `json:"label,omitempty"` // empty for the nut
	Marker string         `json:"marker,omitempty"`
	Cells  []CellResponse `json:"cells"`
}

// BoardResponse is what a client needs to draw the board.
type BoardResponse struct {
	Strings  int               `json:"strings"`
	Frets    int               `json:"frets"`
	Options  fretboard.Options `json:"options"`
	Emphasis []string          `json:"emphasis"`
	Taps     []tone.Point      `json:"taps"`
	Part     bool              `json:"part"`
	Nut      *RowResponse      `json:"nut,omitempty"`
	Rows     []RowResponse     `json:"rows"`
}

// NewBoardResponse draws the nut and the option window of s.
func NewBoardResponse(s fretboard.State) BoardResponse {
	resp := BoardResponse{
		Options:  s.Render.Options,
		Emphasis: s.Render.Emphasis,
		Taps:     s.Render.Taps,
		Part:     s.Part,
		Rows:     []RowResponse{},
	}
	if resp.Emphasis == nil {
		resp.Emphasis = []string{}
	}
	if resp.Taps == nil {
		resp.Taps = []tone.Point{}
	}
	if s.View.Empty() {
		return resp
	}
	resp.Strings = s.View.Keyboard.Strings()
	resp.Frets = s.View.Keyboard.Frets()

	nut := RowResponse{Cells: cells(s.View.Nut(), s.Render)}
	resp.Nut = &nut

	opts := s.Render.Options
	rows, first := s.View.Window(opts.Range[0], opts.Range[1])
	for i, row := range rows {
		resp.Rows = append(resp.Rows, RowResponse{
			Fret:   first + i,
			Label:  fretboard.RowLabel(i),
			Marker: fretboard.Marker(i, opts),
			Cells:  cells(row, s.Render),
		})
	}
	return resp
}

func cells(row []tone.Point, ctx *fretboard.RenderContext) []CellResponse {
	out := make([]CellResponse, 0, len(row))
	for _, p := range fretboard.Reversed(row) {
		c := fretboard.CellFor(p, ctx)
		out = append(out, CellResponse{
			Index:      p.Index,
			String:     p.String,
			Fret:       p.Fret,
			Label:      c.Label,
			Octave:     c.Octave,
			Above:      c.OctaveAbove,
			Emphasised: c.Emphasised,
			Tapped:     c.Tapped,
			Empty:      c.Empty,
		})
	}
	return out
}
