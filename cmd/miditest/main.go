package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"go-fretboard/fretboard"
	"go-fretboard/midi"
	"go-fretboard/tone"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch os.Args[1] {
	case "list":
		listPorts()
	case "watch":
		watch(ctx)
	case "leds":
		testLEDs(ctx)
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list    - List all MIDI ports")
	fmt.Println("  watch   - Print controller connects, pads and notes")
	fmt.Println("  leds    - Show an E major chord on a Launchpad")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	ins, outs, err := midi.Ports()
	if err != nil {
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return
	}
	for i, p := range ins {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, p := range outs {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
}

func watch(ctx context.Context) {
	fmt.Println("Watching for controllers. Ctrl+C to exit.")

	dm := midi.NewDeviceManager(true)
	go dm.Run(ctx)

	for ev := range dm.Events() {
		switch ev.Type {
		case midi.DeviceConnected:
			fmt.Printf("[%s] + %s (%s)\n", time.Now().Format("15:04:05"), ev.ID, ev.Controller.Type())
			go printEvents(ev.Controller)
		case midi.DeviceDisconnected:
			fmt.Printf("[%s] - %s\n", time.Now().Format("15:04:05"), ev.ID)
		}
	}
}

func printEvents(c midi.Controller) {
	pads, notes := c.PadEvents(), c.NoteEvents()
	for pads != nil || notes != nil {
		select {
		case ev, ok := <-pads:
			if !ok {
				pads = nil
				continue
			}
			fmt.Printf("  %s pad row=%d col=%d vel=%d pressed=%v\n", c.ID(), ev.Row, ev.Col, ev.Velocity, ev.Pressed)
		case ev, ok := <-notes:
			if !ok {
				notes = nil
				continue
			}
			fmt.Printf("  %s note %s ch=%d vel=%d on=%v\n", c.ID(), tone.PitchName(int(ev.Note)), ev.Channel, ev.Velocity, ev.On)
		}
	}
}

// testLEDs lights an open E major chord through the same path the player
// uses: a board, a router and the LED diff.
func testLEDs(ctx context.Context) {
	fmt.Println("Testing LED control...")

	kb := tone.NewKeyboard(tone.Standard, 12)
	b := fretboard.New(fretboard.WithTheory(tone.Chromatic()))
	defer b.Close()
	b.SetKeyboard(kb)

	router := midi.NewRouter(b, 0, midi.DefaultLEDColors)
	go router.Run(ctx)

	dm := midi.NewDeviceManager(false)
	go dm.Run(ctx)

	for ev := range dm.Events() {
		if ev.Type != midi.DeviceConnected || ev.Controller.Type() != midi.ControllerLaunchpad {
			continue
		}
		fmt.Printf("Using %s\n", ev.ID)
		go router.Attach(ctx, ev.Controller)

		b.SetTaps([]tone.Point{kb[0][0], kb[1][2], kb[2][2], kb[3][1], kb[4][0], kb[5][0]})
		fmt.Println("Press pads to see emphasis. Ctrl+C to clear and exit.")
		<-ctx.Done()
		return
	}
	fmt.Println("No Launchpad found")
}
