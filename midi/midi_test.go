package midi

import (
	"bytes"
	"slices"
	"testing"
	"time"

	"go-fretboard/fretboard"
	"go-fretboard/input"
	"go-fretboard/tone"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

type sent struct {
	msgs []gomidi.Message
}

func (s *sent) send(msg gomidi.Message) error {
	s.msgs = append(s.msgs, msg)
	return nil
}

func TestLaunchpadPadEvents(t *testing.T) {
	var out sent
	lp := newLaunchpad("lp", out.send)
	if len(out.msgs) != 3 {
		t.Errorf("setup sysex = %d messages, want 3", len(out.msgs))
	}

	lp.handle(gomidi.NoteOn(0, 12, 90)) // row 0, col 1
	lp.handle(gomidi.NoteOn(0, 12, 0))
	lp.handle(gomidi.NoteOff(0, 45)) // row 3, col 4
	lp.handle(gomidi.ControlChange(0, 94, 127))
	lp.handle(gomidi.NoteOn(0, 10, 90)) // not a pad

	want := []PadEvent{
		{Row: 0, Col: 1, Velocity: 90, Pressed: true},
		{Row: 0, Col: 1},
		{Row: 3, Col: 4},
		{Row: 8, Col: 3, Velocity: 127, Pressed: true},
	}
	for i, w := range want {
		select {
		case got := <-lp.PadEvents():
			if got != w {
				t.Errorf("event %d = %+v, want %+v", i, got, w)
			}
		default:
			t.Fatalf("missing event %d", i)
		}
	}
	select {
	case ev := <-lp.PadEvents():
		t.Errorf("unexpected event %+v", ev)
	default:
	}
}

func TestLaunchpadSetLEDBatch(t *testing.T) {
	var out sent
	lp := newLaunchpad("lp", out.send)
	out.msgs = nil

	err := lp.SetLEDBatch([]LEDUpdate{
		{Row: 0, Col: 0, Color: [3]uint8{255, 0, 0}},
		{Row: 8, Col: 2, Color: [3]uint8{255, 255, 255}, Channel: ChannelPulse},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.msgs) != 2 {
		t.Fatalf("sent %d messages, want 2", len(out.msgs))
	}
	var ch, key, vel uint8
	if !out.msgs[0].GetNoteOn(&ch, &key, &vel) || key != 11 || vel != 5 {
		t.Errorf("first = %v, want note 11 colour 5", out.msgs[0])
	}
	if !out.msgs[1].GetNoteOn(&ch, &key, &vel) || ch != ChannelPulse || key != 93 || vel != 119 {
		t.Errorf("second = %v, want ch 2 note 93 colour 119", out.msgs[1])
	}
}

func TestNoteToRowCol(t *testing.T) {
	tests := []struct {
		note     uint8
		row, col int
	}{
		{11, 0, 0},
		{88, 7, 7},
		{19, 0, 8},
		{91, 8, 0},
		{10, -1, -1},
		{99, -1, -1},
	}
	for _, tt := range tests {
		row, col := noteToRowCol(tt.note)
		if row != tt.row || col != tt.col {
			t.Errorf("noteToRowCol(%d) = %d,%d, want %d,%d", tt.note, row, col, tt.row, tt.col)
		}
		if row >= 0 && rowColToNote(row, col) != tt.note {
			t.Errorf("rowColToNote(%d,%d) != %d", row, col, tt.note)
		}
	}
}

func TestKeyboardNoteEvents(t *testing.T) {
	kb := newKeyboard("kbd")
	kb.handle(gomidi.NoteOn(1, 60, 80))
	kb.handle(gomidi.NoteOn(1, 60, 0))
	kb.handle(gomidi.NoteOff(1, 62))
	kb.handle(gomidi.ControlChange(1, 64, 127))

	want := []NoteEvent{
		{Note: 60, Velocity: 80, Channel: 1, On: true},
		{Note: 60, Channel: 1},
		{Note: 62, Channel: 1},
	}
	for i, w := range want {
		if got := <-kb.NoteEvents(); got != w {
			t.Errorf("event %d = %+v, want %+v", i, got, w)
		}
	}
	if n := len(kb.NoteEvents()); n != 0 {
		t.Errorf("%d extra events", n)
	}
}

func TestClassify(t *testing.T) {
	dm := NewDeviceManager(true, "FluidSynth")
	tests := []struct {
		name string
		want ControllerType
	}{
		{"Launchpad X LPX MIDI", ControllerLaunchpad},
		{"Launchpad X LPX DAW", ControllerUnknown},
		{"Midi Through Port-0", ControllerUnknown},
		{"FLUIDSYNTH virtual port", ControllerUnknown},
		{"Keystation 49 MK3", ControllerKeyboard},
	}
	for _, tt := range tests {
		if got := dm.classify(tt.name); got != tt.want {
			t.Errorf("classify(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}

	pads := NewDeviceManager(false)
	if got := pads.classify("Keystation 49 MK3"); got != ControllerUnknown {
		t.Errorf("keyboards disabled: classify = %v", got)
	}
}

func TestPadMap(t *testing.T) {
	kb := tone.NewKeyboard(tone.Standard, 16)
	m := PadMap{Start: 3}

	idx, ok := m.Index(kb, 2, 4)
	if !ok || idx != kb[2][7].Index {
		t.Errorf("Index(2,4) = %d %v, want %d", idx, ok, kb[2][7].Index)
	}
	if _, ok := m.Index(kb, 6, 0); ok {
		t.Error("row 6 is past the last string")
	}
	if row, col, ok := m.Pad(kb[5][10]); !ok || row != 5 || col != 7 {
		t.Errorf("Pad = %d,%d %v", row, col, ok)
	}
	if _, _, ok := m.Pad(kb[0][2]); ok {
		t.Error("fret 2 is left of the window")
	}

	if got := m.Shift(-5, 16).Start; got != 0 {
		t.Errorf("Shift left clamp = %d", got)
	}
	if got := m.Shift(20, 16).Start; got != 8 {
		t.Errorf("Shift right clamp = %d", got)
	}
}

func TestNoteMapPrefersLowFrets(t *testing.T) {
	kb := tone.NewKeyboard(tone.Standard, 12)
	m := NewNoteMap(kb)

	// A2 (45) is string 0 fret 5 and string 1 fret 0.
	idx, ok := m.Index(45)
	if !ok || idx != kb[1][0].Index {
		t.Errorf("Index(45) = %d, want open A (%d)", idx, kb[1][0].Index)
	}
	if _, ok := m.Index(20); ok {
		t.Error("note 20 is below the board")
	}
}

func TestLEDDiff(t *testing.T) {
	var d ledDiff
	red := [3]uint8{255, 0, 0}
	blue := [3]uint8{0, 0, 255}

	ups := d.Diff([]LEDState{{Row: 0, Col: 0, Color: red}, {Row: 1, Col: 1, Color: blue}})
	if len(ups) != 2 {
		t.Fatalf("first frame = %d updates, want 2", len(ups))
	}

	ups = d.Diff([]LEDState{{Row: 0, Col: 0, Color: red}, {Row: 1, Col: 1, Color: red}})
	if len(ups) != 1 || ups[0].Row != 1 || ups[0].Color != red {
		t.Errorf("changed frame = %+v", ups)
	}

	ups = d.Diff([]LEDState{{Row: 1, Col: 1, Color: red}})
	if len(ups) != 1 || ups[0].Row != 0 || ups[0].Color != [3]uint8{} {
		t.Errorf("cleared frame = %+v, want 0,0 off", ups)
	}

	d.Reset()
	if ups := d.Diff([]LEDState{{Row: 1, Col: 1, Color: red}}); len(ups) != 1 {
		t.Errorf("after Reset = %d updates, want 1", len(ups))
	}
}

func newTestBoard(t *testing.T, kb tone.Keyboard) (*fretboard.Board, *input.ManualClock, *[][]tone.Point) {
	t.Helper()
	clock := input.NewManualClock()
	var got [][]tone.Point
	b := fretboard.New(
		fretboard.WithClock(clock),
		fretboard.WithTheory(tone.Chromatic()),
		fretboard.WithCheckedPoints(func(p []tone.Point) { got = append(got, p) }),
	)
	b.SetKeyboard(kb)
	t.Cleanup(b.Close)
	return b, clock, &got
}

func TestRenderLEDs(t *testing.T) {
	kb := tone.NewKeyboard(tone.Standard, 12)
	b, clock, _ := newTestBoard(t, kb)

	b.PointerDown("m", kb[1][2].Index)
	clock.Advance(time.Second)
	b.PointerUp("m")
	b.PointerDown("n", kb[0][0].Index)

	leds := RenderLEDs(b.Snapshot(), PadMap{}, DefaultLEDColors)
	byPad := make(map[[2]int]LEDState)
	for _, l := range leds {
		byPad[[2]int{l.Row, l.Col}] = l
	}

	if l := byPad[[2]int{0, 0}]; l.Color != DefaultLEDColors.Emphasis {
		t.Errorf("held pad = %+v", l)
	}
	if l := byPad[[2]int{1, 2}]; l.Color != DefaultLEDColors.Tap || l.Channel != ChannelPulse {
		t.Errorf("tapped pad = %+v", l)
	}
	if l := byPad[[2]int{5, 7}]; l.Color != DefaultLEDColors.Label {
		t.Errorf("idle pad = %+v", l)
	}
	if _, ok := byPad[[2]int{8, navRight}]; !ok {
		t.Error("right arrow should be lit: board extends past the window")
	}
	if _, ok := byPad[[2]int{8, navLeft}]; ok {
		t.Error("left arrow lit at window start 0")
	}
}

func TestRouterPadsAndNotes(t *testing.T) {
	kb := tone.NewKeyboard(tone.Standard, 12)
	b, clock, got := newTestBoard(t, kb)
	r := NewRouter(b, 1, DefaultLEDColors)

	r.Pad("lp", PadEvent{Row: 0, Col: 2, Pressed: true}) // string 0 fret 3
	r.Note("kbd", NoteEvent{Note: 64, Channel: 0, On: true})
	clock.Advance(input.DefaultSettle)

	if len(*got) != 1 {
		t.Fatalf("settlements = %d, want 1", len(*got))
	}
	idx := []int{(*got)[0][0].Index, (*got)[0][1].Index}
	if want := []int{kb[0][3].Index, kb[5][0].Index}; !slices.Equal(idx, want) {
		t.Errorf("settled = %v, want %v", idx, want)
	}

	r.Pad("lp", PadEvent{Row: 0, Col: 2})
	if e := b.Emphasis(); len(e) != 1 {
		t.Errorf("emphasis = %v after pad release, want the held note", e)
	}

	// Unplugging the keyboard releases its held note.
	r.Detach("kbd")
	if e := b.Emphasis(); len(e) != 0 {
		t.Errorf("emphasis = %v after detach", e)
	}

	r.Pad("lp", PadEvent{Row: 8, Col: navRight, Pressed: true})
	if r.Window().Start != 2 {
		t.Errorf("window start = %d, want 2", r.Window().Start)
	}
}

func TestOutput(t *testing.T) {
	var out sent
	o := NewOutput(out.send, 2, 0)

	o.TriggerPointRelease([]tone.Point{{Tone: tone.NewSchema(40)}, {Tone: tone.NewSchema(47)}})
	o.TriggerPointRelease([]tone.Point{{Tone: tone.NewSchema(45)}})
	o.Close()

	var ons, offs []uint8
	for _, m := range out.msgs {
		var ch, key, vel uint8
		switch {
		case m.GetNoteOn(&ch, &key, &vel):
			if ch != 2 || vel != 100 {
				t.Errorf("note on ch=%d vel=%d", ch, vel)
			}
			ons = append(ons, key)
		case m.GetNoteOff(&ch, &key, &vel):
			offs = append(offs, key)
		}
	}
	if want := []uint8{40, 47, 45}; !slices.Equal(ons, want) {
		t.Errorf("note ons = %v, want %v", ons, want)
	}
	if want := []uint8{40, 47, 45}; !slices.Equal(offs, want) {
		t.Errorf("note offs = %v, want %v", offs, want)
	}
	// Second release starts only after both notes of the first chord are off.
	var ch, key, vel uint8
	if !out.msgs[2].GetNoteOff(&ch, &key, &vel) || key != 40 {
		t.Errorf("third message = %v, want note off 40", out.msgs[2])
	}
}

func TestRecorder(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(500 * time.Millisecond)}
	i := 0
	r := NewRecorder(120, 0, func() time.Time {
		now := times[i]
		i++
		return now
	})

	if err := r.WriteFile(t.TempDir() + "/empty.mid"); err == nil {
		t.Error("empty recording should not be written")
	}

	r.TriggerPointRelease([]tone.Point{{Tone: tone.NewSchema(40)}, {Tone: tone.NewSchema(44)}})
	r.TriggerPointRelease([]tone.Point{{Tone: tone.NewSchema(45)}})
	if r.Chords() != 2 {
		t.Errorf("Chords() = %d", r.Chords())
	}

	var buf bytes.Buffer
	if _, err := r.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	s, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if len(s.Tracks) != 1 {
		t.Fatalf("tracks = %d", len(s.Tracks))
	}

	var ons []uint8
	var abs uint32
	var secondChordAt uint32
	for _, ev := range s.Tracks[0] {
		abs += ev.Delta
		var ch, key, vel uint8
		if gomidi.Message(ev.Message).GetNoteOn(&ch, &key, &vel) {
			ons = append(ons, key)
			if key == 45 {
				secondChordAt = abs
			}
		}
	}
	if want := []uint8{40, 44, 45}; !slices.Equal(ons, want) {
		t.Errorf("note ons = %v, want %v", ons, want)
	}
	// Half a second at 120 bpm is one beat.
	if secondChordAt != ticksPerQuarter {
		t.Errorf("second chord at tick %d, want %d", secondChordAt, ticksPerQuarter)
	}
}
