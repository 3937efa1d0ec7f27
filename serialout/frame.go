// Package serialout drives a serial-attached robot guitar: every settled
// selection becomes one fret frame on the wire.
package serialout

import (
	"log/slog"

	"go-fretboard/tone"
)

const (
	OpenFret      = 255
	NumStrings    = 6
	MaxFret       = 11
	CmdApplyFrame = 0x10
	SOF0          = 0xAA
	SOF1          = 0x55

	defaultDuration = 20
)

// Frame is a full-state snapshot of all 6 strings sent in one transfer.
type Frame struct {
	Fret      [NumStrings]byte // 0-11 = fret number, 255 = open/muted
	StrumMask byte             // bit N set = strum string N
	ProfileID byte
	Duration  byte
	Seq       byte
}

// Encode builds the on-wire representation:
//
//	[SOF0][SOF1][LEN][CMD][fret0..5][StrumMask][ProfileID][Duration][Seq][CKS]
//
// LEN counts CMD plus payload; CKS is the XOR of LEN, CMD and the payload.
func (f *Frame) Encode() []byte {
	payload := make([]byte, 0, NumStrings+4)
	payload = append(payload, f.Fret[:]...)
	payload = append(payload, f.StrumMask, f.ProfileID, f.Duration, f.Seq)

	length := byte(len(payload) + 1)
	cks := length ^ CmdApplyFrame
	for _, b := range payload {
		cks ^= b
	}

	out := []byte{SOF0, SOF1, length, CmdApplyFrame}
	out = append(out, payload...)
	return append(out, cks)
}

// EmptyFrame returns an all-open, no-strum frame.
func EmptyFrame(seq byte) Frame {
	f := Frame{Seq: seq}
	for i := range f.Fret {
		f.Fret[i] = OpenFret
	}
	return f
}

// BuildFrame places points on their own strings. The board already knows
// where each point is fretted, so unlike a pitch-only source nothing has to
// be searched; a string claimed twice keeps its first point.
func BuildFrame(points []tone.Point, seq byte, log *slog.Logger) Frame {
	f := EmptyFrame(seq)
	f.Duration = defaultDuration

	for _, p := range points {
		switch {
		case p.String < 0 || p.String >= NumStrings:
			log.Warn("frame: string out of range", "string", p.String, "tone", p.Tone.String())
			continue
		case p.Fret < 0 || p.Fret > MaxFret:
			log.Warn("frame: fret out of reach", "string", p.String, "fret", p.Fret)
			continue
		case f.Fret[p.String] != OpenFret:
			log.Debug("frame: string already claimed", "string", p.String, "fret", p.Fret)
			continue
		}
		f.Fret[p.String] = byte(p.Fret)
		f.StrumMask |= 1 << p.String
	}

	log.Debug("frame: built", "seq", seq, "points", len(points), "strum_mask", f.StrumMask)
	return f
}
