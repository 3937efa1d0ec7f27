package theme

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultPalette(t *testing.T) {
	p := DefaultPalette()
	if p.Name != "ember" || len(p.Colors) != 11 {
		t.Errorf("palette = %q with %d colors", p.Name, len(p.Colors))
	}
	if got := p.Lookup(0); got != (RGB{18, 10, 38}) {
		t.Errorf("Lookup(0) = %v", got)
	}
	if got := p.Lookup(2); got != (RGB{252, 240, 150}) {
		t.Errorf("Lookup(2) = %v, want the last color", got)
	}
}

func TestParseGPL(t *testing.T) {
	data := "GIMP Palette\nName: two\nColumns: 2\n# comment\n0 0 0 black\n200 100 50\nnot a color\n"
	p, err := ParseGPL(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "two" || len(p.Colors) != 2 {
		t.Fatalf("palette = %+v", p)
	}
	if got := p.Lookup(0.5); got != (RGB{100, 50, 25}) {
		t.Errorf("Lookup(0.5) = %v", got)
	}

	if _, err := ParseGPL(strings.NewReader("GIMP Palette\n")); err == nil {
		t.Error("empty palette should fail")
	}
}

func TestLoadOrDefault(t *testing.T) {
	p, err := LoadOrDefault("")
	if err != nil || p.Name != "ember" {
		t.Errorf("LoadOrDefault(\"\") = %v, %v", p, err)
	}

	path := filepath.Join(t.TempDir(), "mono.gpl")
	if err := os.WriteFile(path, []byte("GIMP Palette\n10 20 30\n"), 0644); err != nil {
		t.Fatal(err)
	}
	p, err = LoadOrDefault(path)
	if err != nil || len(p.Colors) != 1 {
		t.Errorf("LoadOrDefault(file) = %v, %v", p, err)
	}

	if _, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.gpl")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestThemeColors(t *testing.T) {
	th := New(DefaultPalette())
	if th.Emphasis() == th.Tap() {
		t.Error("emphasis and tap roles should differ")
	}
	if !strings.HasPrefix(string(th.FG()), "#") {
		t.Errorf("FG() = %q", th.FG())
	}
}
