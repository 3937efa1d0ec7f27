package input

import (
	"slices"
	"testing"
	"time"
)

type recorder struct {
	got  [][]string
	gens []int
}

func (r *recorder) emit(v []string, gen int) {
	r.got = append(r.got, v)
	r.gens = append(r.gens, gen)
}

func TestDebounceCoalescesBurst(t *testing.T) {
	clock := NewManualClock()
	rec := &recorder{}
	d := NewDebouncer(clock, DefaultSettle, rec.emit)

	d.Push([]string{"1"})
	clock.Advance(10 * time.Millisecond)
	d.Push([]string{"1", "4"})
	clock.Advance(10 * time.Millisecond)
	d.Push([]string{"1", "4", "7"})
	clock.Advance(29 * time.Millisecond)

	if len(rec.got) != 0 {
		t.Fatalf("settled before window elapsed: %v", rec.got)
	}

	clock.Advance(time.Millisecond)
	if len(rec.got) != 1 {
		t.Fatalf("settlements = %d, want 1", len(rec.got))
	}
	if want := []string{"1", "4", "7"}; !slices.Equal(rec.got[0], want) {
		t.Errorf("settled = %v, want %v", rec.got[0], want)
	}
	if clock.Pending() != 0 {
		t.Errorf("pending timers = %d, want 0", clock.Pending())
	}
}

func TestDebounceSeparateGestures(t *testing.T) {
	clock := NewManualClock()
	rec := &recorder{}
	d := NewDebouncer(clock, DefaultSettle, rec.emit)

	d.Push([]string{"1"})
	clock.Advance(40 * time.Millisecond)
	d.Push([]string{"2"})
	clock.Advance(40 * time.Millisecond)

	if len(rec.got) != 2 {
		t.Fatalf("settlements = %d, want 2", len(rec.got))
	}
}

func TestDebounceSameValueDoesNotRefire(t *testing.T) {
	clock := NewManualClock()
	rec := &recorder{}
	d := NewDebouncer(clock, DefaultSettle, rec.emit)

	d.Push([]string{"3"})
	clock.Advance(50 * time.Millisecond)
	d.Push([]string{"3"})
	clock.Advance(50 * time.Millisecond)

	if len(rec.got) != 1 {
		t.Errorf("settlements = %d, want 1", len(rec.got))
	}

	// Going through empty and back fires again.
	d.Push(nil)
	clock.Advance(50 * time.Millisecond)
	d.Push([]string{"3"})
	clock.Advance(50 * time.Millisecond)

	if len(rec.got) != 3 {
		t.Errorf("settlements = %d, want 3 (empty is emitted to the owner)", len(rec.got))
	}
}

func TestDebounceStop(t *testing.T) {
	clock := NewManualClock()
	rec := &recorder{}
	d := NewDebouncer(clock, DefaultSettle, rec.emit)

	d.Push([]string{"1"})
	d.Stop()
	clock.Advance(time.Second)
	d.Push([]string{"2"})
	clock.Advance(time.Second)

	if len(rec.got) != 0 {
		t.Errorf("settled after Stop: %v", rec.got)
	}
	if d.Pending() {
		t.Error("Pending() after Stop")
	}
}

func TestDebounceReset(t *testing.T) {
	clock := NewManualClock()
	rec := &recorder{}
	d := NewDebouncer(clock, DefaultSettle, rec.emit)

	d.Push([]string{"5"})
	clock.Advance(time.Second)
	d.Push([]string{"6"})
	d.Reset()
	clock.Advance(time.Second)

	if len(rec.got) != 1 {
		t.Fatalf("settlements = %d, want 1", len(rec.got))
	}
	if d.Settled() != nil {
		t.Errorf("Settled() = %v after Reset", d.Settled())
	}

	d.Push([]string{"5"})
	clock.Advance(time.Second)
	if len(rec.got) != 2 {
		t.Errorf("same value after Reset should settle again")
	}
}

func TestDebounceLiveAfterReset(t *testing.T) {
	clock := NewManualClock()
	rec := &recorder{}
	d := NewDebouncer(clock, DefaultSettle, rec.emit)

	d.Push([]string{"3"})
	clock.Advance(DefaultSettle)
	if len(rec.gens) != 1 {
		t.Fatalf("settlements = %d, want 1", len(rec.gens))
	}
	gen := rec.gens[0]
	if !d.Live(gen) {
		t.Fatal("settled generation not live")
	}

	// A new gesture does not invalidate the settlement already emitted.
	d.Push([]string{"3", "4"})
	if !d.Live(gen) {
		t.Error("generation stale after a later Push")
	}

	// A Reset landing between emit and the receiver taking its lock does.
	d.Reset()
	if d.Live(gen) {
		t.Error("generation live after Reset")
	}

	d.Push([]string{"5"})
	clock.Advance(DefaultSettle)
	if len(rec.gens) != 2 || !d.Live(rec.gens[1]) {
		t.Fatalf("settlement after Reset not live: %v", rec.gens)
	}
	d.Stop()
	if d.Live(rec.gens[1]) {
		t.Error("generation live after Stop")
	}
}
