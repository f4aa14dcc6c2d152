package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metronome.toml")
	const doc = `tempo_bpm = 140
time_signature = "3/4"
click_type = "digital_beep"
accent_first_beat = true
volume = 0.8
master_volume = 1.0
sample_rate = 48000
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.TempoBPM != 140 {
		t.Errorf("expected tempo 140, got %v", cfg.TempoBPM)
	}
	if cfg.TimeSignature != "3/4" {
		t.Errorf("expected 3/4, got %v", cfg.TimeSignature)
	}
	if cfg.SampleRate != 48000 {
		t.Errorf("expected 48000, got %v", cfg.SampleRate)
	}
}

func TestLoadRejectsOutOfRangeTempo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(path, []byte(`tempo_bpm = 999`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for out-of-range tempo")
	}
}

func TestLoadIgnoresUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "extra.toml")
	const doc = `tempo_bpm = 120
click_type = "wood_block"
some_future_key = "ignored"
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}
