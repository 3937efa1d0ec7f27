// Package fretboard holds the board model: coordinate transposition, the
// trigger reducer, per-cell label policy, and the Board that ties input
// aggregation to sound triggers.
package fretboard

import "go-fretboard/tone"

// ToFretMajor turns a string-major keyboard into fret-major rows:
// out[f][s] == kb[s][f]. The row count is the longest string's fret count.
// Rows are not padded; strings too short for a fret are simply absent from
// that row.
func ToFretMajor(kb tone.Keyboard) [][]tone.Point {
	var board [][]tone.Point
	for _, str := range kb {
		for f, p := range str {
			for len(board) <= f {
				board = append(board, nil)
			}
			board[f] = append(board[f], p)
		}
	}
	return board
}

// ToFlatList concatenates the strings in order, so position indices of a
// generated layout resolve straight to their point.
func ToFlatList(kb tone.Keyboard) []tone.Point {
	var list []tone.Point
	for _, str := range kb {
		list = append(list, str...)
	}
	return list
}

// View is the derived form of one keyboard snapshot. Build it once per
// layout and replace it when the layout changes.
type View struct {
	Keyboard tone.Keyboard
	Rows     [][]tone.Point // fret-major
	Flat     []tone.Point
}

// NewView derives the render matrix and flat list for kb.
func NewView(kb tone.Keyboard) *View {
	return &View{
		Keyboard: kb,
		Rows:     ToFretMajor(kb),
		Flat:     ToFlatList(kb),
	}
}

// Empty reports whether there is nothing to render.
func (v *View) Empty() bool {
	return v == nil || len(v.Flat) == 0
}

// Window returns the rows in [start, end), clipped to the matrix. The second
// result is the fret index of the first returned row.
func (v *View) Window(start, end int) ([][]tone.Point, int) {
	if v == nil {
		return nil, 0
	}
	if start < 0 {
		start = 0
	}
	if end > len(v.Rows) {
		end = len(v.Rows)
	}
	if start >= end {
		return nil, start
	}
	return v.Rows[start:end], start
}

// Nut returns the open-string row (fret 0), if any.
func (v *View) Nut() []tone.Point {
	if v == nil || len(v.Rows) == 0 {
		return nil
	}
	return v.Rows[0]
}

// Reversed returns a copy of a row with the highest string first, the order
// the board is drawn in.
func Reversed(row []tone.Point) []tone.Point {
	out := make([]tone.Point, len(row))
	for i, p := range row {
		out[len(row)-1-i] = p
	}
	return out
}
