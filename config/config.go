package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go-fretboard/fretboard"
	"go-fretboard/input"
)

// AppName names the config directory.
const AppName = "go-fretboard"

// BoardConfig is the instrument layout and scale filter
type BoardConfig struct {
	Tuning string `json:"tuning"` // name from tone.Tunings, or "40,45,50"
	Frets  int    `json:"frets"`
	Root   string `json:"root"`
	Scale  string `json:"scale"`
}

// InputConfig stores input tuning
type InputConfig struct {
	SettleMs   int    `json:"settleMs,omitempty"`
	KeyHoldMs  int    `json:"keyHoldMs,omitempty"` // terminal keys have no release
	KeyMapPath string `json:"keyMapPath,omitempty"`
	Keyboards  bool   `json:"keyboards"` // MIDI keyboards as input
	PadStart   int    `json:"padStart,omitempty"`
}

// SynthOutputConfig defines the synth MIDI output
type SynthOutputConfig struct {
	PortName string `json:"portName,omitempty"`
	Channel  int    `json:"channel,omitempty"`
	Velocity int    `json:"velocity,omitempty"`
}

// SerialConfig defines the robot guitar link
type SerialConfig struct {
	Device string `json:"device,omitempty"`
	Baud   int    `json:"baud,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette string `json:"palette,omitempty"` // path to a GPL palette
}

// APIConfig configures the HTTP server
type APIConfig struct {
	Port int `json:"port,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Board       BoardConfig       `json:"board"`
	Options     fretboard.Options `json:"options"`
	Input       InputConfig       `json:"input"`
	SynthOutput SynthOutputConfig `json:"synthOutput,omitempty"`
	Serial      SerialConfig      `json:"serial,omitempty"`
	UI          UIConfig          `json:"ui,omitempty"`
	API         APIConfig         `json:"api,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Board: BoardConfig{
			Tuning: "standard",
			Frets:  16,
			Root:   "C",
			Scale:  "major",
		},
		Options: fretboard.DefaultOptions(),
		Input: InputConfig{
			SettleMs:  int(input.DefaultSettle / time.Millisecond),
			KeyHoldMs: 250,
			Keyboards: true,
		},
		SynthOutput: SynthOutputConfig{Velocity: 100},
		Serial:      SerialConfig{Baud: 115200},
		API:         APIConfig{Port: 8080},
	}
}

// Settle returns the debounce window.
func (c *Config) Settle() time.Duration {
	if c.Input.SettleMs <= 0 {
		return input.DefaultSettle
	}
	return time.Duration(c.Input.SettleMs) * time.Millisecond
}

// KeyHold returns how long a terminal key counts as held.
func (c *Config) KeyHold() time.Duration {
	if c.Input.KeyHoldMs <= 0 {
		return 250 * time.Millisecond
	}
	return time.Duration(c.Input.KeyHoldMs) * time.Millisecond
}

// Validate rejects values the board cannot work with.
func (c *Config) Validate() error {
	if c.Board.Frets <= 0 || c.Board.Frets > 36 {
		return fmt.Errorf("frets must be 1-36, got %d", c.Board.Frets)
	}
	r := c.Options.Range
	if r[0] < 0 || r[1] < r[0] {
		return fmt.Errorf("invalid range [%d, %d)", r[0], r[1])
	}
	if c.SynthOutput.Channel < 0 || c.SynthOutput.Channel > 15 {
		return fmt.Errorf("midi channel must be 0-15, got %d", c.SynthOutput.Channel)
	}
	return nil
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// KeyMapPath returns where a user key map overrides the built-in one.
func (c *Config) KeyMapPath() string {
	if c.Input.KeyMapPath != "" {
		return c.Input.KeyMapPath
	}
	dir, err := ConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "keymap.yml")
}

// Load reads the config from the default path
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads a config file, or returns defaults if it does not exist.
// Fields missing from the file keep their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path, creating its directory
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
