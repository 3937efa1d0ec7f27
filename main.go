package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"go-fretboard/api"
	"go-fretboard/config"
	"go-fretboard/debug"
	"go-fretboard/fretboard"
	"go-fretboard/input"
	"go-fretboard/midi"
	"go-fretboard/serialout"
	"go-fretboard/theme"
	"go-fretboard/tone"
	"go-fretboard/tui"
)

var (
	version = "dev"
)

var (
	cfgPath    string
	debugPath  string
	verbose    bool
	tuningName string
	frets      int
	serverPort int
	recordPath string
	noMIDI     bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "go-fretboard",
	Short: "Play a guitar fretboard from the keyboard, mouse or MIDI controllers",
	Long: `go-fretboard draws a fretboard in the terminal. Hold keys, click cells,
press Launchpad pads or play a MIDI keyboard; every finger down at once is
collected into one chord, which is sent to a synth once the fingers settle.

Examples:
  go-fretboard
  go-fretboard --tuning dadgad --frets 12
  go-fretboard --record take1.mid
  go-fretboard serve --port 8080`,
	Version: version,
	RunE:    runPlay,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the board over HTTP",
	RunE:  runServe,
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI ports",
	RunE:  runPorts,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default ~/.config/go-fretboard/config.json)")
	rootCmd.PersistentFlags().StringVar(&debugPath, "debug", "", "write a debug log to this file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	rootCmd.PersistentFlags().StringVarP(&tuningName, "tuning", "t", "", "tuning name or note list, e.g. E2,A2,D3,G3,B3,E4")
	rootCmd.PersistentFlags().IntVarP(&frets, "frets", "f", 0, "frets per string, open string included")
	rootCmd.PersistentFlags().BoolVar(&noMIDI, "no-midi", false, "do not open MIDI ports")

	rootCmd.Flags().StringVarP(&recordPath, "record", "r", "", "record settled chords to a MIDI file")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "server port (default from config, 8080)")

	rootCmd.AddCommand(serveCmd, portsCmd)
}

// session is everything a command needs, built from the config.
type session struct {
	cfg    *config.Config
	board  *fretboard.Board
	keymap *input.KeyMap
	output *midi.Output
	sink   *serialout.Sink
	rec    *midi.Recorder
	log    *slog.Logger
}

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgPath != "" {
		cfg, err = config.LoadFile(cfgPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if tuningName != "" {
		cfg.Board.Tuning = tuningName
	}
	if frets > 0 {
		cfg.Board.Frets = frets
	}
	return cfg, cfg.Validate()
}

func newSession() (*session, error) {
	if debugPath != "" || verbose {
		if err := debug.Enable(debugPath, verbose); err != nil {
			return nil, fmt.Errorf("debug log: %w", err)
		}
	}
	log := debug.For("main")

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	tuning, err := tone.ParseTuning(cfg.Board.Tuning)
	if err != nil {
		return nil, err
	}
	scale, err := tone.NewScale(cfg.Board.Root, cfg.Board.Scale)
	if err != nil {
		return nil, err
	}
	km, err := input.LoadKeyMap(cfg.KeyMapPath())
	if err != nil {
		return nil, fmt.Errorf("key map: %w", err)
	}

	s := &session{cfg: cfg, keymap: km, log: log}
	var players fretboard.Players

	if !noMIDI && cfg.SynthOutput.PortName != "" {
		out, err := midi.OpenOutput(cfg.SynthOutput.PortName, uint8(cfg.SynthOutput.Channel), uint8(cfg.SynthOutput.Velocity))
		if err != nil {
			log.Warn("synth output unavailable", "err", err)
		} else {
			s.output = out
			players = append(players, out)
		}
	}
	if cfg.Serial.Device != "" {
		sink, err := serialout.Open(cfg.Serial.Device, cfg.Serial.Baud, debug.For("serial"))
		if err != nil {
			log.Warn("serial output unavailable", "err", err)
		} else {
			s.sink = sink
			players = append(players, sink)
		}
	}
	if recordPath != "" {
		s.rec = midi.NewRecorder(120, uint8(cfg.SynthOutput.Channel), nil)
		players = append(players, s.rec)
	}

	s.board = fretboard.New(
		fretboard.WithPlayer(players),
		fretboard.WithKeyMap(km),
		fretboard.WithSettle(cfg.Settle()),
		fretboard.WithTheory(scale),
		fretboard.WithOptions(cfg.Options),
		fretboard.WithLogger(debug.For("board")),
		fretboard.WithCheckedPoints(func(points []tone.Point) {
			debug.Log("board", "chord %v", cfg.Options.PianoNotes(points))
		}),
	)
	s.board.SetKeyboard(tone.NewKeyboard(tuning, cfg.Board.Frets))

	log.Info("session ready", "tuning", cfg.Board.Tuning, "frets", cfg.Board.Frets, "scale", scale.String(), "players", len(players))
	return s, nil
}

// Close stops the board, then its players.
func (s *session) Close() error {
	s.board.Close()
	var errs []error
	if s.output != nil {
		errs = append(errs, s.output.Close())
	}
	if s.sink != nil {
		errs = append(errs, s.sink.Close())
	}
	if s.rec != nil && s.rec.Chords() > 0 {
		if err := s.rec.WriteFile(recordPath); err != nil {
			errs = append(errs, err)
		} else {
			fmt.Printf("recorded %d chords to %s\n", s.rec.Chords(), recordPath)
		}
	}
	return errors.Join(errs...)
}

func runPlay(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}

	palette, err := theme.LoadOrDefault(s.cfg.UI.Palette)
	if err != nil {
		return err
	}
	th := theme.New(palette)
	colors := midi.LEDColors{
		Emphasis: th.RGB(theme.RoleEmphasis),
		Tap:      th.RGB(theme.RoleTap),
		Label:    th.RGB(theme.RoleSurface),
		Nav:      th.RGB(theme.RoleMuted),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tcfg := tui.Config{
		KeyMap:    s.keymap,
		LEDColors: colors,
		KeyHold:   s.cfg.KeyHold(),
		Title:     fmt.Sprintf("go-fretboard  %s  %s", s.cfg.Board.Tuning, s.cfg.Board.Root+" "+s.cfg.Board.Scale),
	}
	if !noMIDI {
		// The synth's own port must not loop back in as a keyboard.
		devices := midi.NewDeviceManager(s.cfg.Input.Keyboards, s.cfg.SynthOutput.PortName)
		router := midi.NewRouter(s.board, s.cfg.Input.PadStart, colors)
		go devices.Run(ctx)
		go router.Run(ctx)
		tcfg.Devices = devices
		tcfg.Router = router
	}

	m := tui.NewModel(ctx, s.board, th, tcfg)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	_, runErr := p.Run()
	cancel()
	return errors.Join(runErr, s.Close())
}

func runServe(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	port := serverPort
	if port == 0 {
		port = s.cfg.API.Port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	srv := api.NewServer(s.board, debug.For("api"))
	errc := make(chan error, 1)
	go func() { errc <- srv.Run(port) }()

	fmt.Printf("Serving the board on port %d\n", port)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", port)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return nil
	}
}

func runPorts(cmd *cobra.Command, args []string) error {
	ins, outs, err := midi.Ports()
	if err != nil {
		return fmt.Errorf("%w (on macOS: sudo killall coreaudiod midiserver)", err)
	}
	fmt.Println("=== MIDI Input Ports ===")
	for i, p := range ins {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, p := range outs {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
	return nil
}
