package input

import (
	"slices"
	"sync"
	"time"
)

// DefaultSettle is how long input must stay quiet before the emphasis set is
// considered settled.
const DefaultSettle = 30 * time.Millisecond

// Debouncer holds back emphasis values until they have been stable for the
// settle window. It is idle or pending(value, deadline); a push while pending
// replaces the value and restarts the deadline. When the deadline passes the
// value is emitted unless it equals the previously settled one.
type Debouncer struct {
	mu      sync.Mutex
	clock   Clock
	settle  time.Duration
	emit    func(value []string, gen int)
	timer   Timer
	gen     int
	resetAt int // gen at the last Reset
	value   []string
	settled []string
	stopped bool
}

// NewDebouncer creates a debouncer that calls emit with each settled value
// and the generation it settled under. emit runs on the clock's goroutine,
// after the debouncer lock is released; a receiver with its own lock checks
// Live under that lock to drop a settlement that a Reset overtook.
func NewDebouncer(clock Clock, settle time.Duration, emit func(value []string, gen int)) *Debouncer {
	if clock == nil {
		clock = RealClock{}
	}
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Debouncer{clock: clock, settle: settle, emit: emit}
}

// Push records a new live value and (re)starts the settle window.
func (d *Debouncer) Push(value []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.value = slices.Clone(value)
	d.timer = d.clock.AfterFunc(d.settle, func() { d.fire(gen) })
}

// Pending reports whether a settlement is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Live reports whether no Reset or Stop has happened since the value of
// generation gen was pushed. Later pushes do not make it stale.
func (d *Debouncer) Live(gen int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.stopped && gen > d.resetAt
}

// Settled returns the last settled value.
func (d *Debouncer) Settled() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.settled)
}

// Reset cancels any pending settlement and forgets the settled value, so the
// next settlement fires even if it repeats the old one.
func (d *Debouncer) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancel()
	d.resetAt = d.gen
	d.settled = nil
}

// Stop cancels any pending settlement for good. Pushes after Stop are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancel()
	d.stopped = true
}

func (d *Debouncer) cancel() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	d.value = nil
}

func (d *Debouncer) fire(gen int) {
	d.mu.Lock()
	// A stale timer can still fire if Stop raced with expiry.
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	value := d.value
	if slices.Equal(value, d.settled) {
		d.mu.Unlock()
		return
	}
	d.settled = value
	d.mu.Unlock()

	if d.emit != nil {
		d.emit(slices.Clone(value), gen)
	}
}
