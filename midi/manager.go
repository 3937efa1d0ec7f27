package midi

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go-fretboard/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// ErrPortsTimeout is returned when the MIDI backend does not answer a port
// listing in time. CoreMIDI is known to hang.
var ErrPortsTimeout = errors.New("midi port listing timed out")

const portsTimeout = 3 * time.Second

// Ports lists the input and output ports, giving up after a timeout.
func Ports() ([]drivers.In, []drivers.Out, error) {
	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ch <- result{ins: gomidi.GetInPorts(), outs: gomidi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		return r.ins, r.outs, nil
	case <-time.After(portsTimeout):
		return nil, nil, ErrPortsTimeout
	}
}

// DeviceManager handles hot-plug detection of MIDI controllers: Launchpads
// become pad grids, every other input port (apart from ignored ones) becomes
// a keyboard.
type DeviceManager struct {
	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration
	ignore      []string
	keyboards   bool
}

// NewDeviceManager creates a new device manager. Input ports whose name
// contains one of ignore (case-insensitive) are skipped; the synth's own
// port and "Midi Through" loops belong there.
func NewDeviceManager(keyboards bool, ignore ...string) *DeviceManager {
	lowered := []string{"through"}
	for _, s := range ignore {
		if s != "" {
			lowered = append(lowered, strings.ToLower(s))
		}
	}
	return &DeviceManager{
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		pollRate:    time.Second,
		ignore:      lowered,
		keyboards:   keyboards,
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns a snapshot of connected controllers
func (dm *DeviceManager) Controllers() map[string]Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	out := make(map[string]Controller, len(dm.controllers))
	for k, v := range dm.controllers {
		out[k] = v
	}
	return out
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	dm.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan(ctx)
		}
	}
}

func (dm *DeviceManager) scan(ctx context.Context) {
	inPorts, outPorts, err := Ports()
	if err != nil {
		// User needs to run: sudo killall coreaudiod midiserver
		debug.Log("devices", "scan skipped: %v", err)
		return
	}

	seenIDs := make(map[string]bool)

	for _, inPort := range inPorts {
		id := inPort.String()
		kind := dm.classify(id)
		if kind == ControllerUnknown {
			continue
		}
		seenIDs[id] = true

		dm.mu.RLock()
		_, exists := dm.controllers[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		var c Controller
		switch kind {
		case ControllerLaunchpad:
			c, err = NewLaunchpadController(id, inPort, matchOut(id, outPorts))
		case ControllerKeyboard:
			c, err = NewKeyboardController(id, inPort)
		}
		if err != nil {
			debug.Log("devices", "open %s: %v", id, err)
			continue
		}

		dm.mu.Lock()
		dm.controllers[id] = c
		dm.mu.Unlock()

		debug.Log("devices", "connected %s (%s)", id, kind)
		if !dm.publish(ctx, DeviceEvent{Type: DeviceConnected, Controller: c, ID: id}) {
			return
		}
	}

	// Check for disconnects
	dm.mu.Lock()
	var gone []string
	for id, c := range dm.controllers {
		if !seenIDs[id] {
			c.Close()
			delete(dm.controllers, id)
			gone = append(gone, id)
		}
	}
	dm.mu.Unlock()

	for _, id := range gone {
		debug.Log("devices", "disconnected %s", id)
		if !dm.publish(ctx, DeviceEvent{Type: DeviceDisconnected, ID: id}) {
			return
		}
	}
}

func (dm *DeviceManager) publish(ctx context.Context, ev DeviceEvent) bool {
	select {
	case dm.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// classify decides what, if anything, an input port becomes.
func (dm *DeviceManager) classify(name string) ControllerType {
	if isLaunchpad(name) {
		return ControllerLaunchpad
	}
	if !dm.keyboards {
		return ControllerUnknown
	}
	lower := strings.ToLower(name)
	if strings.Contains(lower, "launchpad") {
		// The Launchpad's DAW port
		return ControllerUnknown
	}
	for _, s := range dm.ignore {
		if strings.Contains(lower, s) {
			return ControllerUnknown
		}
	}
	return ControllerKeyboard
}

func matchOut(name string, outs []drivers.Out) drivers.Out {
	lower := strings.ToLower(name)
	for _, op := range outs {
		if strings.ToLower(op.String()) == lower {
			return op
		}
	}
	return nil
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

func isLaunchpad(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}
