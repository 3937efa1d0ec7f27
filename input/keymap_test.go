package input

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		code   string
		str    int
		fret   int
		part   bool
		column int
	}{
		{"1", 5, 0, false, 0},
		{"5", 5, 4, false, 4},
		{"6", 5, 5, true, 5},
		{"q", 4, 0, false, 0},
		{"p", 4, 9, true, 9},
		{";", 3, 9, true, 9},
		{"Q", 0, 0, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			b, ok := km.Lookup(tt.code)
			if !ok {
				t.Fatalf("Lookup(%q) not found", tt.code)
			}
			if b.String != tt.str || b.Fret != tt.fret || b.Part != tt.part || b.Column != tt.column {
				t.Errorf("Lookup(%q) = %+v", tt.code, b)
			}
		})
	}

	if _, ok := km.Lookup("space"); ok {
		t.Error("space should not be bound")
	}
	if code, ok := km.CodeFor(4, 1); !ok || code != "w" {
		t.Errorf("CodeFor(4,1) = %q %v, want w", code, ok)
	}
	if n := len(km.Codes()); n != 60 {
		t.Errorf("Codes() has %d keys, want 60", n)
	}
}

func TestParseKeyMapErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown field", "split: 2\nrows:\n  - string: 0\n    keys: ab\n    colour: red\n"},
		{"duplicate key", "rows:\n  - string: 0\n    keys: ab\n  - string: 1\n    keys: b\n"},
		{"negative string", "rows:\n  - string: -1\n    keys: ab\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseKeyMap([]byte(tt.yaml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadKeyMap(t *testing.T) {
	dir := t.TempDir()

	km, err := LoadKeyMap(filepath.Join(dir, "missing.yml"))
	if err != nil || km == nil {
		t.Fatalf("missing file should fall back to default, got %v", err)
	}

	path := filepath.Join(dir, "keymap.yml")
	data := "split: 1\nrows:\n  - string: 2\n    fret: 3\n    keys: jk\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	km, err = LoadKeyMap(path)
	if err != nil {
		t.Fatalf("LoadKeyMap() error = %v", err)
	}
	b, ok := km.Lookup("k")
	if !ok || b.String != 2 || b.Fret != 4 || !b.Part {
		t.Errorf("Lookup(k) = %+v %v", b, ok)
	}
}
