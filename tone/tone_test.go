package tone

import "testing"

func TestNewSchema(t *testing.T) {
	tests := []struct {
		pitch int
		note  string
		level int
		name  string
	}{
		{40, "E", 2, "E2"},
		{60, "C", 4, "C4"},
		{61, "C#", 4, "C#4"},
		{64, "E", 4, "E4"},
		{24, "C", 1, "C1"},
		// Below C1 there is no level, not octave 0 or -1.
		{23, "B", 0, "B"},
		{12, "C", 0, "C"},
		{0, "C", 0, "C"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSchema(tt.pitch)
			if s.Note != tt.note || s.Level != tt.level {
				t.Errorf("NewSchema(%d) = %+v, want note %s level %d", tt.pitch, s, tt.note, tt.level)
			}
			if s.String() != tt.name {
				t.Errorf("String() = %q, want %q", s.String(), tt.name)
			}
		})
	}
}

func TestPitchName(t *testing.T) {
	tests := []struct {
		pitch int
		want  string
	}{
		{40, "E2"},
		{12, "C0"},
		{0, "C-1"},
		{-3, "?-3"},
	}
	for _, tt := range tests {
		if got := PitchName(tt.pitch); got != tt.want {
			t.Errorf("PitchName(%d) = %q, want %q", tt.pitch, got, tt.want)
		}
	}
}

func TestParseTuning(t *testing.T) {
	got, err := ParseTuning("standard")
	if err != nil {
		t.Fatalf("ParseTuning(standard) error = %v", err)
	}
	if len(got) != 6 || got[0] != 40 || got[5] != 64 {
		t.Errorf("standard tuning = %v", got)
	}

	got, err = ParseTuning("D2, A2, D3")
	if err != nil {
		t.Fatalf("ParseTuning(list) error = %v", err)
	}
	want := Tuning{38, 45, 50}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tuning[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	if _, err := ParseTuning("H9"); err == nil {
		t.Error("ParseTuning(H9) should fail")
	}
}

func TestNewKeyboard(t *testing.T) {
	kb := NewKeyboard(Standard, 13)

	if kb.Strings() != 6 || kb.Frets() != 13 {
		t.Fatalf("keyboard is %dx%d, want 6x13", kb.Strings(), kb.Frets())
	}

	for s := range kb {
		for f, p := range kb[s] {
			if p.Index != s*13+f {
				t.Errorf("point (%d,%d) index = %d, want %d", s, f, p.Index, s*13+f)
			}
			if p.String != s || p.Fret != f {
				t.Errorf("point (%d,%d) has coordinates (%d,%d)", s, f, p.String, p.Fret)
			}
		}
	}

	p, ok := kb.At(1, 2)
	if !ok || p.Tone.String() != "B2" {
		t.Errorf("At(1,2) = %v %v, want B2", p.Tone, ok)
	}
	if _, ok := kb.At(6, 0); ok {
		t.Error("At(6,0) should be out of range")
	}

	if NewKeyboard(Standard, 0) != nil {
		t.Error("zero frets should yield an empty keyboard")
	}
}

func TestScale(t *testing.T) {
	s, err := NewScale("A", "minor")
	if err != nil {
		t.Fatalf("NewScale() error = %v", err)
	}

	a := NewSchema(57)  // A3
	c := NewSchema(60)  // C4
	cs := NewSchema(61) // C#4

	if !s.InScope(a) || !s.InScope(c) {
		t.Error("A and C should be in A minor")
	}
	if s.InScope(cs) {
		t.Error("C# should not be in A minor")
	}

	if l, _ := s.Label(c, true); l != "C" {
		t.Errorf("note label = %q, want C", l)
	}
	if l, _ := s.Label(c, false); l != "b3" {
		t.Errorf("interval label = %q, want b3", l)
	}
	if _, err := s.Label(Schema{Pitch: -1}, true); err == nil {
		t.Error("unnamed pitch should return an error")
	}

	if _, err := NewScale("A", "lydian-augmented"); err == nil {
		t.Error("unknown scale should fail")
	}
}
