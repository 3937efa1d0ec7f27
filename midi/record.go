package midi

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go-fretboard/tone"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const ticksPerQuarter = 960

// Recorder captures every trigger as a chord in a Standard MIDI File. Each
// chord sounds until the next one starts.
type Recorder struct {
	mu      sync.Mutex
	now     func() time.Time
	bpm     float64
	channel uint8

	start    time.Time
	last     time.Time
	track    smf.Track
	sounding []uint8
	chords   int
}

// NewRecorder creates a recorder. now defaults to time.Now.
func NewRecorder(bpm float64, channel uint8, now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	if bpm <= 0 {
		bpm = 120
	}
	return &Recorder{now: now, bpm: bpm, channel: channel & 0x0F}
}

// TriggerPointRelease appends a chord.
func (r *Recorder) TriggerPointRelease(points []tone.Point) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.now()
	if r.start.IsZero() {
		r.start = t
		r.last = t
		r.track.Add(0, smf.MetaMeter(4, 4))
		r.track.Add(0, smf.MetaTempo(r.bpm))
	}
	delta := r.ticks(t.Sub(r.last))
	r.last = t

	delta = r.releaseAt(delta)
	r.sounding = r.sounding[:0]
	for _, p := range points {
		if p.Tone.Pitch < 0 || p.Tone.Pitch > 127 {
			continue
		}
		note := uint8(p.Tone.Pitch)
		r.track.Add(delta, gomidi.NoteOn(r.channel, note, 100))
		delta = 0
		r.sounding = append(r.sounding, note)
	}
	r.chords++
}

// releaseAt adds note-offs for the sounding chord, the first one delta ticks
// after the previous event. It returns the delta left for the next event.
func (r *Recorder) releaseAt(delta uint32) uint32 {
	for _, note := range r.sounding {
		r.track.Add(delta, gomidi.NoteOff(r.channel, note))
		delta = 0
	}
	return delta
}

func (r *Recorder) ticks(d time.Duration) uint32 {
	beats := d.Seconds() * r.bpm / 60
	return uint32(beats * ticksPerQuarter)
}

// Chords returns the number of recorded chords.
func (r *Recorder) Chords() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.chords
}

// build turns the recording into a single-track SMF. The last chord is held
// for one beat.
func (r *Recorder) build() (*smf.SMF, error) {
	r.mu.Lock()
	track := make(smf.Track, len(r.track))
	copy(track, r.track)
	delta := uint32(0)
	if len(r.sounding) > 0 {
		delta = ticksPerQuarter
	}
	for _, note := range r.sounding {
		track.Add(delta, gomidi.NoteOff(r.channel, note))
		delta = 0
	}
	r.mu.Unlock()

	track.Close(0)
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerQuarter)
	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("add track: %w", err)
	}
	return s, nil
}

// WriteTo writes the recording as SMF data.
func (r *Recorder) WriteTo(w io.Writer) (int64, error) {
	s, err := r.build()
	if err != nil {
		return 0, err
	}
	n, err := s.WriteTo(w)
	if err != nil {
		return n, fmt.Errorf("write smf: %w", err)
	}
	return n, nil
}

// WriteFile saves the recording to path.
func (r *Recorder) WriteFile(path string) error {
	if r.Chords() == 0 {
		return errors.New("nothing recorded")
	}
	s, err := r.build()
	if err != nil {
		return err
	}
	if err := s.WriteFile(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
