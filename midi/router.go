package midi

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go-fretboard/debug"
	"go-fretboard/fretboard"
)

const ledFPS = 30

// Router feeds controller events into a board as pointer gestures and keeps
// Launchpad LEDs in step with the board. Every held pad or key is its own
// pointer, so chords played on hardware aggregate like multi-touch.
type Router struct {
	board  *fretboard.Board
	colors LEDColors

	mu       sync.Mutex
	pads     PadMap
	notes    NoteMap
	notesFor *fretboard.View
	grids    map[string]*grid
	held     map[string]map[string]bool // source -> pointer ids down
	dirty    bool
}

type grid struct {
	c    Controller
	diff ledDiff
}

// NewRouter creates a router for b. The pad window starts at fret start.
func NewRouter(b *fretboard.Board, start int, colors LEDColors) *Router {
	return &Router{
		board:  b,
		colors: colors,
		pads:   PadMap{Start: start},
		grids:  make(map[string]*grid),
		held:   make(map[string]map[string]bool),
	}
}

// Run redraws LEDs at a fixed rate until ctx is done. Board changes only
// mark the frame dirty.
func (r *Router) Run(ctx context.Context) {
	cancel := r.board.Subscribe(func(fretboard.Change) { r.markDirty() })
	defer cancel()

	ticker := time.NewTicker(time.Second / ledFPS)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.flush()
		}
	}
}

// Attach starts forwarding c's events. It returns once c's channels close
// or ctx is done.
func (r *Router) Attach(ctx context.Context, c Controller) {
	if c.Type() == ControllerLaunchpad {
		r.mu.Lock()
		r.grids[c.ID()] = &grid{c: c}
		r.dirty = true
		r.mu.Unlock()
	}
	defer r.Detach(c.ID())

	pads, notes := c.PadEvents(), c.NoteEvents()
	for pads != nil || notes != nil {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-pads:
			if !ok {
				pads = nil
				continue
			}
			r.Pad(c.ID(), ev)
		case ev, ok := <-notes:
			if !ok {
				notes = nil
				continue
			}
			r.Note(c.ID(), ev)
		}
	}
}

// Detach forgets a controller and releases anything it was holding.
func (r *Router) Detach(id string) {
	r.mu.Lock()
	delete(r.grids, id)
	held := r.held[id]
	delete(r.held, id)
	r.mu.Unlock()
	// A disconnected device never sends its releases.
	for pointer := range held {
		r.board.PointerUp(pointer)
	}
}

func (r *Router) down(src, pointer string, idx int) {
	r.mu.Lock()
	if r.held[src] == nil {
		r.held[src] = make(map[string]bool)
	}
	r.held[src][pointer] = true
	r.mu.Unlock()
	r.board.PointerDown(pointer, idx)
}

func (r *Router) up(src, pointer string) {
	r.mu.Lock()
	delete(r.held[src], pointer)
	r.mu.Unlock()
	r.board.PointerUp(pointer)
}

// Pad handles one grid event.
func (r *Router) Pad(src string, ev PadEvent) {
	if ev.Row == 8 {
		if ev.Pressed {
			r.navigate(ev.Col)
		}
		return
	}
	pointer := fmt.Sprintf("pad:%s:%d:%d", src, ev.Row, ev.Col)
	if !ev.Pressed {
		r.up(src, pointer)
		return
	}
	r.mu.Lock()
	pads := r.pads
	r.mu.Unlock()
	idx, ok := pads.Index(r.board.View().Keyboard, ev.Row, ev.Col)
	if !ok {
		return
	}
	r.down(src, pointer, idx)
}

// Note handles one keyboard event.
func (r *Router) Note(src string, ev NoteEvent) {
	pointer := fmt.Sprintf("midi:%s:%d:%d", src, ev.Channel, ev.Note)
	if !ev.On {
		r.up(src, pointer)
		return
	}
	idx, ok := r.noteMap().Index(ev.Note)
	if !ok {
		debug.Log("router", "note %d not on the board", ev.Note)
		return
	}
	r.down(src, pointer, idx)
}

// noteMap returns the pitch index for the current layout, rebuilding it when
// the layout changes.
func (r *Router) noteMap() NoteMap {
	view := r.board.View()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.notesFor != view {
		r.notes = NewNoteMap(view.Keyboard)
		r.notesFor = view
	}
	return r.notes
}

// Window returns the current pad window.
func (r *Router) Window() PadMap {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pads
}

func (r *Router) navigate(col int) {
	frets := r.board.View().Keyboard.Frets()
	r.mu.Lock()
	switch col {
	case navLeft:
		r.pads = r.pads.Shift(-1, frets)
	case navRight:
		r.pads = r.pads.Shift(1, frets)
	}
	r.dirty = true
	start := r.pads.Start
	r.mu.Unlock()
	debug.Log("router", "pad window start=%d", start)
}

func (r *Router) markDirty() {
	r.mu.Lock()
	r.dirty = true
	r.mu.Unlock()
}

// flush sends changed LEDs to every grid.
func (r *Router) flush() {
	r.mu.Lock()
	if !r.dirty || len(r.grids) == 0 {
		r.mu.Unlock()
		return
	}
	r.dirty = false
	pads := r.pads
	grids := make([]*grid, 0, len(r.grids))
	for _, g := range r.grids {
		grids = append(grids, g)
	}
	r.mu.Unlock()

	leds := RenderLEDs(r.board.Snapshot(), pads, r.colors)
	for _, g := range grids {
		updates := g.diff.Diff(leds)
		if len(updates) == 0 {
			continue
		}
		debug.Log("led", "flush %s: batch=%d", g.c.ID(), len(updates))
		if err := g.c.SetLEDBatch(updates); err != nil {
			debug.Log("led", "flush %s: %v", g.c.ID(), err)
			g.diff.Reset()
		}
	}
}
