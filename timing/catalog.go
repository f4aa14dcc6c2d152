package timing

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/lixenwraith/polyphonica/core"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// catalogBeat is the wire shape of one DrumPatternBeat entry.
type catalogBeat struct {
	Beat    float64  `json:"beat"`
	Samples []string `json:"samples"`
	Accent  bool     `json:"accent"`
}

// catalogPattern is the wire shape of one drum_patterns entry.
type catalogPattern struct {
	Name          string        `json:"name"`
	TimeSignature string        `json:"time_signature"`
	TempoRange    [2]float64    `json:"tempo_range"`
	Pattern       []catalogBeat `json:"pattern"`
}

// Catalog is the top-level JSON document shape from §6: a named,
// versioned collection of drum patterns.
type Catalog struct {
	CatalogVersion string                    `json:"catalog_version"`
	Description    string                    `json:"description"`
	Created        string                    `json:"created"`
	DrumPatterns   map[string]catalogPattern `json:"drum_patterns"`
}

// CatalogMeta is the document-level metadata that sits alongside a
// catalog's patterns: version, description, and creation timestamp.
// LoadCatalog and SaveCatalog carry it separately from the pattern map
// so a load-then-save round trip preserves it instead of discarding it.
type CatalogMeta struct {
	Version     string
	Description string
	Created     string
}

// LoadCatalog reads and parses a pattern catalog file, converting every
// pattern's sample strings to ClickType and rejecting the whole catalog
// if any string doesn't resolve against the fixed ClickType set. It also
// returns the document's own metadata, so a caller that intends to save
// the catalog back can round-trip it via SaveCatalog.
func LoadCatalog(path string) (map[string]DrumPattern, CatalogMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, CatalogMeta{}, err
	}
	var raw Catalog
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, CatalogMeta{}, fmt.Errorf("timing: parse catalog %s: %w", path, err)
	}

	patterns := make(map[string]DrumPattern, len(raw.DrumPatterns))
	for key, cp := range raw.DrumPatterns {
		p, err := fromCatalogPattern(cp)
		if err != nil {
			return nil, CatalogMeta{}, fmt.Errorf("timing: pattern %q: %w", key, err)
		}
		if err := p.Validate(); err != nil {
			return nil, CatalogMeta{}, err
		}
		patterns[key] = p
	}
	meta := CatalogMeta{Version: raw.CatalogVersion, Description: raw.Description, Created: raw.Created}
	return patterns, meta, nil
}

// SaveCatalog serializes patterns back to the §6 JSON schema, carrying
// meta's version/description/created through unchanged. A zero-value
// meta.Version is written as "1.0", the schema's baseline version.
func SaveCatalog(path string, meta CatalogMeta, patterns map[string]DrumPattern) error {
	version := meta.Version
	if version == "" {
		version = "1.0"
	}
	raw := Catalog{
		CatalogVersion: version,
		Description:    meta.Description,
		Created:        meta.Created,
		DrumPatterns:   make(map[string]catalogPattern, len(patterns)),
	}
	for key, p := range patterns {
		raw.DrumPatterns[key] = toCatalogPattern(p)
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func fromCatalogPattern(cp catalogPattern) (DrumPattern, error) {
	sig, err := parseTimeSignature(cp.TimeSignature)
	if err != nil {
		return DrumPattern{}, err
	}
	beats := make([]DrumPatternBeat, 0, len(cp.Pattern))
	for _, cb := range cp.Pattern {
		samples := make([]core.ClickType, 0, len(cb.Samples))
		for _, s := range cb.Samples {
			ct, ok := core.ClickTypeByName(s)
			if !ok {
				return DrumPattern{}, fmt.Errorf("timing: unknown sample name %q", s)
			}
			samples = append(samples, ct)
		}
		beats = append(beats, DrumPatternBeat{Position: cb.Beat, Samples: samples, Accent: cb.Accent})
	}
	p := DrumPattern{
		Name:          cp.Name,
		TimeSignature: sig,
		Beats:         beats,
		MinTempoBPM:   cp.TempoRange[0],
		MaxTempoBPM:   cp.TempoRange[1],
	}
	p.sortBeats()
	return p, nil
}

func toCatalogPattern(p DrumPattern) catalogPattern {
	beats := make([]catalogBeat, 0, len(p.Beats))
	for _, b := range p.Beats {
		samples := make([]string, 0, len(b.Samples))
		for _, s := range b.Samples {
			samples = append(samples, s.String())
		}
		beats = append(beats, catalogBeat{Beat: b.Position, Samples: samples, Accent: b.Accent})
	}
	return catalogPattern{
		Name:          p.Name,
		TimeSignature: formatTimeSignature(p.TimeSignature),
		TempoRange:    [2]float64{p.MinTempoBPM, p.MaxTempoBPM},
		Pattern:       beats,
	}
}

func parseTimeSignature(s string) (core.TimeSignature, error) {
	var beats, value int
	if _, err := fmt.Sscanf(s, "%d/%d", &beats, &value); err != nil {
		return core.TimeSignature{}, fmt.Errorf("timing: invalid time_signature %q", s)
	}
	sig := core.TimeSignature{BeatsPerMeasure: beats, NoteValue: value}
	if !sig.Valid() {
		return core.TimeSignature{}, fmt.Errorf("timing: invalid time_signature %q", s)
	}
	return sig, nil
}

func formatTimeSignature(sig core.TimeSignature) string {
	return fmt.Sprintf("%d/%d", sig.BeatsPerMeasure, sig.NoteValue)
}
