package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the control bindings. Printable keys belong to the board, so
// controls live on ctrl chords and arrows.
type keyMap struct {
	Quit    key.Binding
	Clear   key.Binding
	Notes   key.Binding
	Levels  key.Binding
	Tags    key.Binding
	AllKeys key.Binding
	Piano   key.Binding
	Left    key.Binding
	Right   key.Binding
	Help    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "ctrl+q"), key.WithHelp("ctrl+q", "quit")),
		Clear:   key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "clear chord")),
		Notes:   key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "notes/numbers")),
		Levels:  key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "octaves")),
		Tags:    key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "markers")),
		AllKeys: key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "all octaves")),
		Piano:   key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "held/chord notes")),
		Left:    key.NewBinding(key.WithKeys("left"), key.WithHelp("←/→", "scroll frets")),
		Right:   key.NewBinding(key.WithKeys("right")),
		Help:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "more")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Notes, k.Left, k.Clear, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Notes, k.Levels, k.Tags, k.AllKeys, k.Piano},
		{k.Left, k.Clear, k.Help, k.Quit},
	}
}
