// Package input merges pointer and keyboard activity over fretboard cells into
// one ordered emphasis set and debounces it into settlements.
package input

import "slices"

// Resolver maps a physical key code to a position key and the keyboard part
// it belongs to. ok is false for codes that are not on the board.
type Resolver func(code string) (key string, part bool, ok bool)

// Update is what an event did to the aggregator.
type Update struct {
	Emphasis    []string // current emphasis, insertion ordered
	Changed     bool     // emphasis differs from before the event
	Part        bool
	PartChanged bool
}

// Aggregator owns the live input tables. Pointer ids and key codes are two
// independent mappings (source id -> position key); emphasis is their union,
// recomputed on every mutation. It is not safe for concurrent use; the Board
// serializes access.
type Aggregator struct {
	resolve Resolver

	pointers map[string]string // pointer id -> position key
	keys     map[string]string // key code -> position key
	order    []string          // emphasis in first-insertion order
	part     bool
}

// NewAggregator creates an aggregator. A nil resolver ignores all keys.
func NewAggregator(resolve Resolver) *Aggregator {
	return &Aggregator{
		resolve:  resolve,
		pointers: make(map[string]string),
		keys:     make(map[string]string),
	}
}

// SetResolver swaps the key resolver (layout changes).
func (a *Aggregator) SetResolver(resolve Resolver) {
	a.resolve = resolve
}

// PointerDown binds pointer id to the cell under it.
func (a *Aggregator) PointerDown(id, key string) Update {
	a.pointers[id] = key
	return a.rebuild()
}

// PointerMove rebinds an active pointer. Moves of unknown pointers (hover)
// are ignored.
func (a *Aggregator) PointerMove(id, key string) Update {
	if _, ok := a.pointers[id]; !ok {
		return a.current()
	}
	a.pointers[id] = key
	return a.rebuild()
}

// PointerUp releases a pointer.
func (a *Aggregator) PointerUp(id string) Update {
	if _, ok := a.pointers[id]; !ok {
		return a.current()
	}
	delete(a.pointers, id)
	return a.rebuild()
}

// PointerCancel drops every pointer, e.g. when the pointer leaves the board.
func (a *Aggregator) PointerCancel() Update {
	clear(a.pointers)
	return a.rebuild()
}

// KeyDown presses a physical key. Repeats of a held key are no-ops apart from
// the part update.
func (a *Aggregator) KeyDown(code string) Update {
	if a.resolve == nil {
		return a.current()
	}
	key, part, ok := a.resolve(code)
	if !ok {
		return a.current()
	}
	partChanged := part != a.part
	a.part = part
	a.keys[code] = key
	u := a.rebuild()
	u.PartChanged = partChanged
	return u
}

// KeyUp releases a physical key.
func (a *Aggregator) KeyUp(code string) Update {
	if _, ok := a.keys[code]; !ok {
		return a.current()
	}
	delete(a.keys, code)
	return a.rebuild()
}

// Reset clears both tables. The part is kept.
func (a *Aggregator) Reset() Update {
	clear(a.pointers)
	clear(a.keys)
	return a.rebuild()
}

// Emphasis returns a copy of the current emphasis.
func (a *Aggregator) Emphasis() []string {
	return slices.Clone(a.order)
}

// Part returns the part of the most recent key-down.
func (a *Aggregator) Part() bool {
	return a.part
}

// Active reports the number of live pointers and keys.
func (a *Aggregator) Active() (pointers, keys int) {
	return len(a.pointers), len(a.keys)
}

func (a *Aggregator) current() Update {
	return Update{Emphasis: a.Emphasis(), Part: a.part}
}

// rebuild recomputes the union, keeping surviving keys in their earlier
// position and appending new ones.
func (a *Aggregator) rebuild() Update {
	live := make(map[string]bool, len(a.pointers)+len(a.keys))
	for _, k := range a.pointers {
		live[k] = true
	}
	for _, k := range a.keys {
		live[k] = true
	}

	next := make([]string, 0, len(live))
	seen := make(map[string]bool, len(live))
	for _, k := range a.order {
		if live[k] {
			next = append(next, k)
			seen[k] = true
		}
	}
	// New keys: map iteration order is random, so add them in a stable order.
	var added []string
	for k := range live {
		if !seen[k] {
			added = append(added, k)
		}
	}
	slices.Sort(added)
	next = append(next, added...)

	changed := !slices.Equal(next, a.order)
	a.order = next
	return Update{Emphasis: a.Emphasis(), Changed: changed, Part: a.part}
}
