package midi

import (
	"fmt"
	"strings"
	"sync"

	"go-fretboard/debug"
	"go-fretboard/tone"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Output plays settled board selections on a MIDI port. Each trigger
// releases whatever was sounding and strikes the new set, so it behaves like
// fretting a new chord.
type Output struct {
	mu       sync.Mutex
	send     func(msg gomidi.Message) error
	channel  uint8
	velocity uint8
	sounding []uint8
}

// OpenOutput opens the first output port whose name contains name
// (case-insensitive).
func OpenOutput(name string, channel, velocity uint8) (*Output, error) {
	_, outs, err := Ports()
	if err != nil {
		return nil, err
	}
	want := strings.ToLower(name)
	for _, port := range outs {
		if !strings.Contains(strings.ToLower(port.String()), want) {
			continue
		}
		send, err := gomidi.SendTo(port)
		if err != nil {
			return nil, fmt.Errorf("open output %q: %w", port.String(), err)
		}
		debug.Log("output", "opened %s ch=%d", port.String(), channel)
		return NewOutput(send, channel, velocity), nil
	}
	return nil, fmt.Errorf("no output port matching %q", name)
}

// NewOutput wraps a send function.
func NewOutput(send func(gomidi.Message) error, channel, velocity uint8) *Output {
	if velocity == 0 {
		velocity = 100
	}
	return &Output{send: send, channel: channel & 0x0F, velocity: velocity}
}

// TriggerPointRelease sends note-off for the previous set and note-on for
// points, in point order. Send errors are logged, not returned.
func (o *Output) TriggerPointRelease(points []tone.Point) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.release()
	for _, p := range points {
		if p.Tone.Pitch < 0 || p.Tone.Pitch > 127 {
			continue
		}
		note := uint8(p.Tone.Pitch)
		if err := o.send(gomidi.NoteOn(o.channel, note, o.velocity)); err != nil {
			debug.Log("output", "note on %d: %v", note, err)
			continue
		}
		o.sounding = append(o.sounding, note)
	}
}

// Silence releases every sounding note.
func (o *Output) Silence() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.release()
}

func (o *Output) release() {
	for _, note := range o.sounding {
		if err := o.send(gomidi.NoteOff(o.channel, note)); err != nil {
			debug.Log("output", "note off %d: %v", note, err)
		}
	}
	o.sounding = o.sounding[:0]
}

// Close silences the output.
func (o *Output) Close() error {
	o.Silence()
	return nil
}
