package widgets

import (
	"fmt"
	"strings"

	"go-fretboard/input"
	"go-fretboard/tone"
)

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

// BoardKeyHelp lists, high string first as drawn, the keys that play each
// string. Strings with no bound key are left out.
func BoardKeyHelp(km *input.KeyMap, kb tone.Keyboard) KeySection {
	sec := KeySection{Title: "Board keys"}
	for s := len(kb) - 1; s >= 0; s-- {
		var codes strings.Builder
		first, last := -1, -1
		for f := range kb[s] {
			code, ok := km.CodeFor(s, f)
			if !ok {
				continue
			}
			if first < 0 {
				first = f
			}
			last = f
			codes.WriteString(code)
		}
		if first < 0 {
			continue
		}
		sec.Keys = append(sec.Keys, KeyBinding{
			Key:  codes.String(),
			Desc: fmt.Sprintf("%s string, frets %d-%d", kb[s][0].Tone, first, last),
		})
	}
	return sec
}
