package timing

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCatalogRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patterns.json")

	original := map[string]DrumPattern{"basic_rock": BasicRock()}
	wantMeta := CatalogMeta{Version: "2.0", Description: "test fixture", Created: "2026-01-01"}
	if err := SaveCatalog(path, wantMeta, original); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, gotMeta, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if gotMeta != wantMeta {
		t.Fatalf("metadata not preserved across round trip: got %+v want %+v", gotMeta, wantMeta)
	}

	got := loaded["basic_rock"]
	want := original["basic_rock"]
	if len(got.Beats) != len(want.Beats) {
		t.Fatalf("beat count mismatch: got %d want %d", len(got.Beats), len(want.Beats))
	}
	for i := range want.Beats {
		if got.Beats[i].Position != want.Beats[i].Position {
			t.Errorf("beat %d position mismatch: got %v want %v", i, got.Beats[i].Position, want.Beats[i].Position)
		}
		if got.Beats[i].Accent != want.Beats[i].Accent {
			t.Errorf("beat %d accent mismatch", i)
		}
		if len(got.Beats[i].Samples) != len(want.Beats[i].Samples) {
			t.Errorf("beat %d sample count mismatch", i)
		}
	}
}

func TestLoadCatalogRejectsUnknownSampleName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	const doc = `{
		"catalog_version": "1.0",
		"drum_patterns": {
			"broken": {
				"name": "broken",
				"time_signature": "4/4",
				"tempo_range": [60, 180],
				"pattern": [{"beat": 1.0, "samples": ["not_a_real_sample"], "accent": true}]
			}
		}
	}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadCatalog(path); err == nil {
		t.Fatal("expected error for unknown sample name")
	}
}
