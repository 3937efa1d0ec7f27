package fretboard

import "strconv"

// fretDots follows conventional inlay positions, indexed by drawn row.
var fretDots = [...]string{"", "", "·", "", "·", "", "·", "", "·", "", "", "··", "", "", "", "·"}

// Marker returns the inlay glyph for a drawn fret row, or "" when the row has
// none or tags are hidden.
func Marker(row int, opts Options) string {
	if !opts.HasTag || row < 0 || row >= len(fretDots) {
		return ""
	}
	return fretDots[row]
}

// RowLabel is the number printed under a drawn fret row.
func RowLabel(row int) string {
	return strconv.Itoa(row + 1)
}
