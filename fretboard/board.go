package fretboard

import (
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"go-fretboard/input"
	"go-fretboard/tone"
)

// ChangeKind says what a Change is about.
type ChangeKind int

const (
	ChangeEmphasis ChangeKind = iota + 1
	ChangeTaps
	ChangeLayout
	ChangePart
	ChangeOptions
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeEmphasis:
		return "emphasis"
	case ChangeTaps:
		return "taps"
	case ChangeLayout:
		return "layout"
	case ChangePart:
		return "part"
	case ChangeOptions:
		return "options"
	}
	return "unknown"
}

// Change is sent to subscribers after every state change. Dirty holds the
// position indices whose emphasis or tap state flipped; it is nil for layout
// and options changes, which affect every cell.
type Change struct {
	Kind     ChangeKind
	Dirty    []int
	Emphasis []string
	Taps     []tone.Point
	Part     bool
}

// Option configures a Board.
type Option func(*Board)

// WithPlayer sets the sound-triggering collaborator.
func WithPlayer(p Player) Option {
	return func(b *Board) { b.red.player = p }
}

// WithCheckedPoints sets the callback run once per non-empty settlement.
func WithCheckedPoints(fn func(points []tone.Point)) Option {
	return func(b *Board) { b.red.onChecked = fn }
}

// WithChangePart sets the callback run on every part flip.
func WithChangePart(fn func(part bool)) Option {
	return func(b *Board) { b.red.onPart = fn }
}

// WithClock replaces the real clock, for tests.
func WithClock(c input.Clock) Option {
	return func(b *Board) { b.clock = c }
}

// WithSettle sets the debounce window.
func WithSettle(d time.Duration) Option {
	return func(b *Board) { b.settle = d }
}

// WithKeyMap sets the physical key table.
func WithKeyMap(km *input.KeyMap) Option {
	return func(b *Board) { b.keymap = km }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Board) { b.log = l }
}

// WithTheory sets the label collaborator.
func WithTheory(t Theory) Option {
	return func(b *Board) { b.theory = t }
}

// WithOptions sets the initial display options.
func WithOptions(o Options) Option {
	return func(b *Board) { b.opts = o }
}

// Board ties the input aggregator, the debouncer and the reducer to one
// keyboard snapshot. All entry points are safe for concurrent use; callbacks
// and subscribers run after the board lock is released. The part callback
// runs under its own lock and must not send input back to the board.
type Board struct {
	mu     sync.Mutex
	agg    *input.Aggregator
	deb    *input.Debouncer
	view   *View
	taps   []tone.Point
	opts   Options
	theory Theory
	closed bool

	red    reducer
	keymap *input.KeyMap
	clock  input.Clock
	settle time.Duration
	log    *slog.Logger

	// partSeq numbers part flips under mu; partSent is the last one handed
	// to the callback.
	partMu   sync.Mutex
	partSeq  int
	partSent int

	subMu   sync.Mutex
	subs    map[int]func(Change)
	nextSub int
}

// New creates an empty board. Install a layout with SetKeyboard.
func New(opts ...Option) *Board {
	b := &Board{
		opts:   DefaultOptions(),
		clock:  input.RealClock{},
		settle: input.DefaultSettle,
		subs:   make(map[int]func(Change)),
		view:   NewView(nil),
	}
	for _, o := range opts {
		o(b)
	}
	if b.log == nil {
		b.log = slog.Default()
	}
	if b.keymap == nil {
		b.keymap = input.DefaultKeyMap()
	}
	b.agg = input.NewAggregator(b.resolver(b.view))
	b.deb = input.NewDebouncer(b.clock, b.settle, b.onSettle)
	return b
}

// resolver maps key codes onto the points of view.
func (b *Board) resolver(view *View) input.Resolver {
	km := b.keymap
	kb := view.Keyboard
	return func(code string) (string, bool, bool) {
		bind, ok := km.Lookup(code)
		if !ok {
			return "", false, false
		}
		p, ok := kb.At(bind.String, bind.Fret)
		if !ok {
			return "", false, false
		}
		return p.Key(), bind.Part, true
	}
}

// SetKeyboard installs a new layout. Emphasis, taps and any pending
// settlement belong to the old layout and are dropped. Installing the same
// keyboard again is a no-op.
func (b *Board) SetKeyboard(kb tone.Keyboard) {
	b.mu.Lock()
	if b.closed || sameKeyboard(b.view.Keyboard, kb) {
		b.mu.Unlock()
		return
	}
	b.deb.Reset()
	b.agg.Reset()
	b.view = NewView(kb)
	b.taps = nil
	b.agg.SetResolver(b.resolver(b.view))
	part := b.agg.Part()
	b.mu.Unlock()

	b.log.Debug("layout", "strings", kb.Strings(), "frets", kb.Frets())
	b.notify(Change{Kind: ChangeLayout, Part: part})
}

func sameKeyboard(a, b tone.Keyboard) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}

// View returns the current layout snapshot.
func (b *Board) View() *View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.view
}

// SetTaps replaces the committed selection from upstream, e.g. a chord
// fingering. Live emphasis is dropped, as on a chord change.
func (b *Board) SetTaps(points []tone.Point) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	prevEmph := b.agg.Emphasis()
	prevTaps := b.taps
	b.deb.Reset()
	b.agg.Reset()
	b.taps = slices.Clone(points)
	c := Change{
		Kind:  ChangeTaps,
		Dirty: dirty(prevEmph, nil, prevTaps, b.taps),
		Taps:  slices.Clone(b.taps),
		Part:  b.agg.Part(),
	}
	b.mu.Unlock()

	b.notify(c)
}

// ClearTaps forgets the committed selection.
func (b *Board) ClearTaps() {
	b.SetTaps(nil)
}

// Taps returns the committed selection.
func (b *Board) Taps() []tone.Point {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.taps)
}

// Emphasis returns the live emphasis.
func (b *Board) Emphasis() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.agg.Emphasis()
}

// Part returns the keyboard region most recently pressed.
func (b *Board) Part() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.agg.Part()
}

// SetOptions replaces the display options.
func (b *Board) SetOptions(o Options) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.opts = o
	part := b.agg.Part()
	b.mu.Unlock()

	b.notify(Change{Kind: ChangeOptions, Part: part})
}

// Options returns the display options.
func (b *Board) Options() Options {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opts
}

// SetTheory replaces the label collaborator.
func (b *Board) SetTheory(t Theory) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.theory = t
	part := b.agg.Part()
	b.mu.Unlock()

	b.notify(Change{Kind: ChangeOptions, Part: part})
}

// PointerDown binds pointer id to the cell at index. Indices off the board
// are ignored.
func (b *Board) PointerDown(id string, index int) {
	b.event(func() (input.Update, bool) {
		if !b.onBoard(index) {
			return input.Update{}, false
		}
		return b.agg.PointerDown(id, strconv.Itoa(index)), true
	})
}

// PointerMove moves an active pointer onto the cell at index. Moving off the
// board keeps the last cell.
func (b *Board) PointerMove(id string, index int) {
	b.event(func() (input.Update, bool) {
		if !b.onBoard(index) {
			return input.Update{}, false
		}
		return b.agg.PointerMove(id, strconv.Itoa(index)), true
	})
}

// PointerUp releases a pointer.
func (b *Board) PointerUp(id string) {
	b.event(func() (input.Update, bool) {
		return b.agg.PointerUp(id), true
	})
}

// PointerCancel releases every pointer.
func (b *Board) PointerCancel() {
	b.event(func() (input.Update, bool) {
		return b.agg.PointerCancel(), true
	})
}

// KeyDown presses a physical key.
func (b *Board) KeyDown(code string) {
	b.event(func() (input.Update, bool) {
		return b.agg.KeyDown(code), true
	})
}

// KeyUp releases a physical key.
func (b *Board) KeyUp(code string) {
	b.event(func() (input.Update, bool) {
		return b.agg.KeyUp(code), true
	})
}

func (b *Board) onBoard(index int) bool {
	return index >= 0 && index < len(b.view.Flat)
}

// event runs one aggregator mutation under the lock, pushes the new emphasis
// to the debouncer, then reports.
func (b *Board) event(apply func() (input.Update, bool)) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	prev := b.agg.Emphasis()
	u, ok := apply()
	if !ok {
		b.mu.Unlock()
		return
	}
	var changes []Change
	if u.Changed {
		b.deb.Push(u.Emphasis)
		changes = append(changes, Change{
			Kind:     ChangeEmphasis,
			Dirty:    dirty(prev, u.Emphasis, nil, nil),
			Emphasis: u.Emphasis,
			Part:     u.Part,
		})
	}
	var seq int
	if u.PartChanged {
		b.partSeq++
		seq = b.partSeq
		changes = append(changes, Change{Kind: ChangePart, Part: u.Part})
	}
	b.mu.Unlock()

	if u.PartChanged {
		b.deliverPart(seq, u.Part)
	}
	for _, c := range changes {
		b.notify(c)
	}
}

// deliverPart hands part flip seq to the callback. Flips from racing events
// can arrive here out of order; one overtaken by a later flip is dropped so
// the callback always ends on the current part.
func (b *Board) deliverPart(seq int, part bool) {
	b.partMu.Lock()
	defer b.partMu.Unlock()
	if seq <= b.partSent {
		return
	}
	b.partSent = seq
	b.log.Debug("part", "part", part)
	b.red.part(part)
}

// onSettle runs on the clock goroutine once the emphasis has been quiet for
// the settle window. A SetKeyboard or SetTaps that took the lock after the
// debouncer emitted has reset it, and the settlement is dropped.
func (b *Board) onSettle(keys []string, gen int) {
	b.mu.Lock()
	if b.closed || !b.deb.Live(gen) {
		b.mu.Unlock()
		return
	}
	points := b.red.resolve(keys, b.view)
	if points == nil {
		b.mu.Unlock()
		return
	}
	prevTaps := b.taps
	b.taps = slices.Clone(points)
	c := Change{
		Kind:  ChangeTaps,
		Dirty: dirty(nil, nil, prevTaps, b.taps),
		Taps:  slices.Clone(b.taps),
		Part:  b.agg.Part(),
	}
	b.mu.Unlock()

	b.log.Debug("settled", "keys", keys, "points", len(points))
	b.red.dispatch(points)
	b.notify(c)
}

// State is a consistent copy of what renderers need.
type State struct {
	View   *View
	Render *RenderContext
	Part   bool
}

// Snapshot returns the current view and render context.
func (b *Board) Snapshot() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	ctx := &RenderContext{
		Options:  b.opts,
		Theory:   b.theory,
		Emphasis: b.agg.Emphasis(),
		Taps:     slices.Clone(b.taps),
	}
	ctx.index()
	return State{View: b.view, Render: ctx, Part: b.agg.Part()}
}

// PianoPoints is what a piano-style view shows: the held cells when
// IsPianoKeyDown is set, otherwise the committed taps.
func (s State) PianoPoints() []tone.Point {
	if !s.Render.Options.IsPianoKeyDown {
		return s.Render.Taps
	}
	if s.View == nil {
		return nil
	}
	return Resolve(s.Render.Emphasis, s.View.Flat)
}

// Subscribe registers fn for every Change. The returned func unsubscribes.
func (b *Board) Subscribe(fn func(Change)) (cancel func()) {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = fn
	return func() {
		b.subMu.Lock()
		defer b.subMu.Unlock()
		delete(b.subs, id)
	}
}

func (b *Board) notify(c Change) {
	b.subMu.Lock()
	fns := make([]func(Change), 0, len(b.subs))
	ids := make([]int, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, b.subs[id])
	}
	b.subMu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}

// Close cancels any pending settlement. The board ignores events afterwards.
func (b *Board) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.deb.Stop()
	b.mu.Unlock()

	b.subMu.Lock()
	clear(b.subs)
	b.subMu.Unlock()
}

// dirty lists the indices whose emphasis or tap state differs between the
// two states: the union of both symmetric differences.
func dirty(prevEmph, nextEmph []string, prevTaps, nextTaps []tone.Point) []int {
	out := make(map[int]bool)
	symdiff(out, keyIndices(prevEmph), keyIndices(nextEmph))
	symdiff(out, tapIndices(prevTaps), tapIndices(nextTaps))

	idx := make([]int, 0, len(out))
	for i := range out {
		idx = append(idx, i)
	}
	slices.Sort(idx)
	return idx
}

func symdiff(out, a, b map[int]bool) {
	for i := range a {
		if !b[i] {
			out[i] = true
		}
	}
	for i := range b {
		if !a[i] {
			out[i] = true
		}
	}
}

func keyIndices(keys []string) map[int]bool {
	m := make(map[int]bool, len(keys))
	for _, k := range keys {
		if i, err := strconv.Atoi(k); err == nil {
			m[i] = true
		}
	}
	return m
}

func tapIndices(taps []tone.Point) map[int]bool {
	m := make(map[int]bool, len(taps))
	for _, p := range taps {
		m[p.Index] = true
	}
	return m
}
