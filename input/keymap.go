package input

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed keymap.yml
var defaultKeyMap []byte

type (
	// KeyRow binds a run of keys to consecutive frets on one string.
	KeyRow struct {
		String int    `yaml:"string"`
		Fret   int    `yaml:"fret"`
		Keys   string `yaml:"keys"`
	}

	// KeyMapFile is the on-disk key map format.
	KeyMapFile struct {
		Split int      `yaml:"split"`
		Rows  []KeyRow `yaml:"rows"`
	}

	// KeyBinding is where one key lands on the board.
	KeyBinding struct {
		String int
		Fret   int
		Part   bool
		Column int
	}

	// KeyMap is the static physical-key -> position table.
	KeyMap struct {
		bindings map[string]KeyBinding
		order    []string
	}
)

// DefaultKeyMap returns the embedded key map.
func DefaultKeyMap() *KeyMap {
	km, err := ParseKeyMap(defaultKeyMap)
	if err != nil {
		panic(fmt.Errorf("failed to unmarshal default key map: %w", err))
	}
	return km
}

// ParseKeyMap decodes a YAML key map. Unknown fields are an error.
func ParseKeyMap(data []byte) (*KeyMap, error) {
	var file KeyMapFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode key map: %w", err)
	}
	return file.Build()
}

// LoadKeyMap reads a key map file, falling back to the default when the file
// does not exist.
func LoadKeyMap(path string) (*KeyMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultKeyMap(), nil
		}
		return nil, err
	}
	return ParseKeyMap(data)
}

// Build validates the file and indexes its bindings.
func (f KeyMapFile) Build() (*KeyMap, error) {
	km := &KeyMap{bindings: make(map[string]KeyBinding)}
	for i, row := range f.Rows {
		if row.String < 0 || row.Fret < 0 {
			return nil, fmt.Errorf("row %d: negative string or fret", i)
		}
		col := 0
		for _, r := range row.Keys {
			code := string(r)
			if _, dup := km.bindings[code]; dup {
				return nil, fmt.Errorf("row %d: key %q bound twice", i, code)
			}
			km.bindings[code] = KeyBinding{
				String: row.String,
				Fret:   row.Fret + col,
				Part:   f.Split > 0 && col >= f.Split,
				Column: col,
			}
			km.order = append(km.order, code)
			col++
		}
	}
	return km, nil
}

// Lookup returns the binding for a key code.
func (km *KeyMap) Lookup(code string) (KeyBinding, bool) {
	if km == nil {
		return KeyBinding{}, false
	}
	b, ok := km.bindings[code]
	return b, ok
}

// Codes returns all bound key codes in file order.
func (km *KeyMap) Codes() []string {
	if km == nil {
		return nil
	}
	return append([]string(nil), km.order...)
}

// CodeFor finds the key bound to (string, fret), for key hints.
func (km *KeyMap) CodeFor(str, fret int) (string, bool) {
	if km == nil {
		return "", false
	}
	for _, code := range km.order {
		b := km.bindings[code]
		if b.String == str && b.Fret == fret {
			return code, true
		}
	}
	return "", false
}
