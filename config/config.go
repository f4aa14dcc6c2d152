// Package config is the on-disk configuration collaborator described in
// §6: a flat key-value file understood by the driver before it builds
// the engine and scheduler. Unknown keys are ignored; out-of-range
// values fail the load.
package config

import (
	"fmt"
	"os"

	"github.com/lixenwraith/polyphonica/core"
	"github.com/lixenwraith/polyphonica/toml"
)

// Configuration is the recognized option set from §6.
type Configuration struct {
	TempoBPM        float64 `toml:"tempo_bpm"`
	TimeSignature   string  `toml:"time_signature"`
	ClickType       string  `toml:"click_type"`
	AccentFirstBeat bool    `toml:"accent_first_beat"`
	Volume          float64 `toml:"volume"`
	MasterVolume    float64 `toml:"master_volume"`
	SampleRate      int     `toml:"sample_rate"`
}

// Default returns the configuration a fresh install starts from.
func Default() Configuration {
	return Configuration{
		TempoBPM:        120,
		TimeSignature:   "4/4",
		ClickType:       core.WoodBlock.String(),
		AccentFirstBeat: true,
		Volume:          1.0,
		MasterVolume:    1.0,
		SampleRate:      44100,
	}
}

// Load reads a configuration file and validates every recognized key
// against its §6 range. SampleRate of 0 means "unset"; the caller
// should fall back to the host's native rate.
func Load(path string) (Configuration, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Configuration{}, err
	}
	// sample_rate defaults to "unset" (0), distinct from the Default()
	// value, so callers can tell whether the file specified one.
	cfg.SampleRate = 0
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Configuration{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Configuration{}, err
	}
	return cfg, nil
}

// Save serializes cfg back to path in the flat TOML form.
func Save(path string, cfg Configuration) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks every field against its §6 range.
func (c Configuration) Validate() error {
	if c.TempoBPM < 40 || c.TempoBPM > 200 {
		return fmt.Errorf("config: tempo_bpm %v outside [40,200]", c.TempoBPM)
	}
	if _, err := ParseTimeSignature(c.TimeSignature); err != nil {
		return err
	}
	if _, ok := core.ClickTypeByName(c.ClickType); !ok {
		return fmt.Errorf("config: unknown click_type %q", c.ClickType)
	}
	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("config: volume %v outside [0,1]", c.Volume)
	}
	if c.MasterVolume < 0 || c.MasterVolume > 1 {
		return fmt.Errorf("config: master_volume %v outside [0,1]", c.MasterVolume)
	}
	if c.SampleRate < 0 {
		return fmt.Errorf("config: sample_rate %v must be non-negative", c.SampleRate)
	}
	return nil
}

// ParseTimeSignature parses the "N/D" form used by both Configuration
// and the pattern catalog.
func ParseTimeSignature(s string) (core.TimeSignature, error) {
	var beats, value int
	if _, err := fmt.Sscanf(s, "%d/%d", &beats, &value); err != nil {
		return core.TimeSignature{}, fmt.Errorf("config: invalid time_signature %q", s)
	}
	sig := core.TimeSignature{BeatsPerMeasure: beats, NoteValue: value}
	if !sig.Valid() {
		return core.TimeSignature{}, fmt.Errorf("config: invalid time_signature %q", s)
	}
	return sig, nil
}
