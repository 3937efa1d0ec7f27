package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-fretboard/debug"
	"go-fretboard/fretboard"
	"go-fretboard/input"
	"go-fretboard/midi"
	"go-fretboard/theme"
	"go-fretboard/tone"
	"go-fretboard/widgets"
)

const mousePointer = "mouse"

// Config holds what the model drives besides the board. Router and Devices
// may be nil when no MIDI hardware is wanted.
type Config struct {
	KeyMap    *input.KeyMap
	Router    *midi.Router
	Devices   *midi.DeviceManager
	LEDColors midi.LEDColors
	KeyHold   time.Duration // terminals send no key release
	Title     string
}

// layoutBounds holds cached layout info
type layoutBounds struct {
	boardTop int
	grid     widgets.Grid
}

// devices tracks attached controllers.
type devices struct {
	cancel map[string]context.CancelFunc
	pads   map[string]bool
}

type Model struct {
	Board  *fretboard.Board
	Theme  *theme.Theme
	cfg    Config
	styles widgets.BoardStyles
	keys   keyMap
	help   help.Model

	changes  chan fretboard.Change
	unsub    func()
	held     map[string]int // key code -> press generation
	gen      *int
	mouse    bool
	bounds   *layoutBounds
	devs     *devices
	ctx      context.Context
	quitting bool
}

// ChangeMsg carries one board change into the update loop.
type ChangeMsg fretboard.Change

type DeviceEventMsg midi.DeviceEvent

// keyReleaseMsg ends a terminal key press once the hold window passes
// without a repeat.
type keyReleaseMsg struct {
	code string
	gen  int
}

func NewModel(ctx context.Context, b *fretboard.Board, th *theme.Theme, cfg Config) Model {
	if cfg.KeyHold <= 0 {
		cfg.KeyHold = 250 * time.Millisecond
	}
	if cfg.KeyMap == nil {
		cfg.KeyMap = input.DefaultKeyMap()
	}
	if cfg.Title == "" {
		cfg.Title = "go-fretboard"
	}
	changes := make(chan fretboard.Change, 64)
	unsub := b.Subscribe(func(c fretboard.Change) {
		select {
		case changes <- c:
		default:
			// The view redraws from a snapshot, so a dropped change only
			// delays a frame.
		}
	})
	return Model{
		Board:   b,
		Theme:   th,
		cfg:     cfg,
		styles:  widgets.NewBoardStyles(th),
		keys:    defaultKeys(),
		help:    help.New(),
		changes: changes,
		unsub:   unsub,
		held:    make(map[string]int),
		gen:     new(int),
		bounds:  &layoutBounds{},
		devs: &devices{
			cancel: make(map[string]context.CancelFunc),
			pads:   make(map[string]bool),
		},
		ctx: ctx,
	}
}

func ListenForChanges(ch <-chan fretboard.Change) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return nil
		}
		return ChangeMsg(c)
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ListenForChanges(m.changes)}
	if m.cfg.Devices != nil {
		cmds = append(cmds, ListenForDevices(m.cfg.Devices))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case keyReleaseMsg:
		if m.held[msg.code] == msg.gen {
			delete(m.held, msg.code)
			m.Board.KeyUp(msg.code)
		}

	case tea.MouseMsg:
		m.handleMouse(msg)

	case ChangeMsg:
		return m, ListenForChanges(m.changes)

	case DeviceEventMsg:
		m.handleDevice(midi.DeviceEvent(msg))
		return m, ListenForDevices(m.cfg.Devices)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.unsub()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Clear):
		m.Board.ClearTaps()
	case key.Matches(msg, m.keys.Notes):
		m.toggle(func(o *fretboard.Options) { o.IsNote = !o.IsNote })
	case key.Matches(msg, m.keys.Levels):
		m.toggle(func(o *fretboard.Options) { o.HasLevel = !o.HasLevel })
	case key.Matches(msg, m.keys.Tags):
		m.toggle(func(o *fretboard.Options) { o.HasTag = !o.HasTag })
	case key.Matches(msg, m.keys.AllKeys):
		m.toggle(func(o *fretboard.Options) { o.IsAllKey = !o.IsAllKey })
	case key.Matches(msg, m.keys.Piano):
		m.toggle(func(o *fretboard.Options) { o.IsPianoKeyDown = !o.IsPianoKeyDown })
	case key.Matches(msg, m.keys.Left):
		m.scroll(-1)
	case key.Matches(msg, m.keys.Right):
		m.scroll(1)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	default:
		return m, m.press(msg.String())
	}
	return m, nil
}

// press holds a board key until the hold window passes without a repeat.
func (m Model) press(code string) tea.Cmd {
	if _, ok := m.cfg.KeyMap.Lookup(code); !ok {
		return nil
	}
	*m.gen++
	gen := *m.gen
	if _, down := m.held[code]; !down {
		m.Board.KeyDown(code)
	}
	m.held[code] = gen
	return tea.Tick(m.cfg.KeyHold, func(time.Time) tea.Msg {
		return keyReleaseMsg{code: code, gen: gen}
	})
}

func (m Model) toggle(fn func(*fretboard.Options)) {
	opts := m.Board.Options()
	fn(&opts)
	m.Board.SetOptions(opts)
}

// scroll moves the fret window, keeping its width. Row 0 is the nut and is
// always drawn.
func (m Model) scroll(delta int) {
	opts := m.Board.Options()
	frets := m.Board.View().Keyboard.Frets()
	width := opts.Range[1] - opts.Range[0]
	start := opts.Range[0] + delta
	if start > frets-width {
		start = frets - width
	}
	if start < 1 {
		start = 1
	}
	if start == opts.Range[0] {
		return
	}
	opts.Range = [2]int{start, start + width}
	m.Board.SetOptions(opts)
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	idx, hit := m.bounds.grid.Hit(msg.X, msg.Y-m.bounds.boardTop)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !hit {
			return
		}
		m.mouse = true
		m.Board.PointerDown(mousePointer, idx)
	case tea.MouseActionMotion:
		if m.mouse && hit {
			m.Board.PointerMove(mousePointer, idx)
		}
	case tea.MouseActionRelease:
		if m.mouse {
			m.mouse = false
			m.Board.PointerUp(mousePointer)
		}
	}
}

func (m Model) handleDevice(event midi.DeviceEvent) {
	switch event.Type {
	case midi.DeviceConnected:
		debug.Log("tui", "connected %s (%s)", event.ID, event.Controller.Type())
		if m.cfg.Router == nil {
			return
		}
		ctx, cancel := context.WithCancel(m.ctx)
		m.devs.cancel[event.ID] = cancel
		if event.Controller.Type() == midi.ControllerLaunchpad {
			m.devs.pads[event.ID] = true
		}
		go m.cfg.Router.Attach(ctx, event.Controller)
	case midi.DeviceDisconnected:
		debug.Log("tui", "disconnected %s", event.ID)
		if cancel, ok := m.devs.cancel[event.ID]; ok {
			cancel()
			delete(m.devs.cancel, event.ID)
		}
		delete(m.devs.pads, event.ID)
		if m.cfg.Router != nil {
			m.cfg.Router.Detach(event.ID)
		}
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	state := m.Board.Snapshot()
	opts := state.Render.Options

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	tapStyle := lipgloss.NewStyle().Foreground(m.Theme.Tap())

	mode := "notes"
	if !opts.IsNote {
		mode = "numbers"
	}
	part := "left"
	if state.Part {
		part = "right"
	}
	deviceStatus := ""
	if n := len(m.devs.cancel); n > 0 {
		deviceStatus = fmt.Sprintf("  midi:%d", n)
	}
	header := headerStyle.Render(fmt.Sprintf("%s  frets %d-%d  %s  hand:%s%s",
		m.cfg.Title, opts.Range[0], opts.Range[1]-1, mode, part, deviceStatus))

	if m.help.ShowAll {
		// Light up every cell a key can play while the key hints are up.
		state.Render = state.Render.Touch(keyCells(m.cfg.KeyMap, state.View.Keyboard))
	}
	board, grid := widgets.RenderBoard(state, m.styles)
	m.bounds.boardTop = lipgloss.Height(header) + 1
	m.bounds.grid = grid

	chord := dimStyle.Render("tap a chord")
	if notes := opts.PianoNotes(state.PianoPoints()); len(notes) > 0 {
		chord = tapStyle.Render(strings.Join(notes, " "))
	}

	sections := []string{header, "", board, "", chord}
	if m.cfg.Router != nil && len(m.devs.pads) > 0 {
		leds := midi.RenderLEDs(state, m.cfg.Router.Window(), m.cfg.LEDColors)
		sections = append(sections, "", widgets.RenderPadGrid(leds), widgets.RenderLegend(m.cfg.LEDColors))
	}
	sections = append(sections, "", m.help.View(m.keys))
	if m.help.ShowAll {
		hint := widgets.RenderKeyHelp([]widgets.KeySection{widgets.BoardKeyHelp(m.cfg.KeyMap, state.View.Keyboard)})
		sections = append(sections, "", dimStyle.Render(hint))
	}

	return strings.Join(sections, "\n")
}

// keyCells returns the position keys of every cell bound to a key.
func keyCells(km *input.KeyMap, kb tone.Keyboard) []string {
	var keys []string
	for _, code := range km.Codes() {
		bind, _ := km.Lookup(code)
		if p, ok := kb.At(bind.String, bind.Fret); ok {
			keys = append(keys, p.Key())
		}
	}
	return keys
}
