package fretboard

import (
	"strconv"

	"go-fretboard/tone"
)

// Player is the sound-triggering side. TriggerPointRelease means "these
// points are now the sounding set"; it is fire-and-forget.
type Player interface {
	TriggerPointRelease(points []tone.Point)
}

// PlayerFunc adapts a function to Player.
type PlayerFunc func(points []tone.Point)

func (f PlayerFunc) TriggerPointRelease(points []tone.Point) { f(points) }

// NopPlayer discards triggers.
type NopPlayer struct{}

func (NopPlayer) TriggerPointRelease([]tone.Point) {}

// Players fans one trigger out to several players, in order.
type Players []Player

func (ps Players) TriggerPointRelease(points []tone.Point) {
	for _, p := range ps {
		if p != nil {
			p.TriggerPointRelease(points)
		}
	}
}

// Resolve maps position keys back to points through the flat list, keeping
// key order. Keys that are not an index into flat are dropped; they can show
// up when a layout change races an in-flight touch.
func Resolve(keys []string, flat []tone.Point) []tone.Point {
	points := make([]tone.Point, 0, len(keys))
	for _, key := range keys {
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(flat) {
			continue
		}
		points = append(points, flat[i])
	}
	return points
}

// reducer turns settled emphasis into triggers and host callbacks.
type reducer struct {
	player    Player
	onChecked func([]tone.Point)
	onPart    func(bool)
}

// resolve turns one settled emphasis value into points. It returns nil when
// there is nothing to dispatch: an empty settlement, an empty layout, or keys
// that all went stale.
func (r *reducer) resolve(keys []string, view *View) []tone.Point {
	if len(keys) == 0 || view.Empty() {
		return nil
	}
	points := Resolve(keys, view.Flat)
	if len(points) == 0 {
		return nil
	}
	return points
}

// dispatch hands resolved points to the player, then to the host.
func (r *reducer) dispatch(points []tone.Point) {
	if r.player != nil {
		r.player.TriggerPointRelease(points)
	}
	if r.onChecked != nil {
		r.onChecked(points)
	}
}

func (r *reducer) part(p bool) {
	if r.onPart != nil {
		r.onPart(p)
	}
}
