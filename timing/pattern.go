package timing

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/lixenwraith/polyphonica/core"
)

const positionEpsilon = 0.01

// DrumPatternBeat is one strike position within a measure. position=1.0
// is the downbeat; position=1.5 is the eighth-note after beat 1.
type DrumPatternBeat struct {
	Position float64
	Samples  []core.ClickType
	Accent   bool
}

// DrumPattern is a one-measure rhythmic pattern: beats sorted ascending
// by position, with no duplicate positions within positionEpsilon.
type DrumPattern struct {
	Name          string
	TimeSignature core.TimeSignature
	Beats         []DrumPatternBeat
	MinTempoBPM   float64
	MaxTempoBPM   float64
	Metadata      map[string]string
}

// Validate checks the invariants from §3: no duplicate positions, every
// position inside the measure, and a well-formed tempo range.
func (p DrumPattern) Validate() error {
	if len(p.Beats) == 0 {
		return fmt.Errorf("timing: pattern %q has no beats", p.Name)
	}
	if p.MinTempoBPM >= p.MaxTempoBPM {
		return fmt.Errorf("timing: pattern %q has invalid tempo range [%v,%v]", p.Name, p.MinTempoBPM, p.MaxTempoBPM)
	}
	upper := float64(p.TimeSignature.BeatsPerMeasure) + 0.999
	for i, b := range p.Beats {
		if b.Position < 1 || b.Position > upper {
			return fmt.Errorf("timing: pattern %q beat %d position %v outside measure", p.Name, i, b.Position)
		}
		if len(b.Samples) == 0 {
			return fmt.Errorf("timing: pattern %q beat %d has no samples", p.Name, i)
		}
		for j := i + 1; j < len(p.Beats); j++ {
			if math.Abs(b.Position-p.Beats[j].Position) < positionEpsilon {
				return fmt.Errorf("timing: pattern %q has duplicate position %v", p.Name, b.Position)
			}
		}
	}
	return nil
}

// sortBeats sorts Beats ascending by position; callers that construct a
// DrumPattern by hand should call this before use.
func (p *DrumPattern) sortBeats() {
	sort.Slice(p.Beats, func(i, j int) bool { return p.Beats[i].Position < p.Beats[j].Position })
}

// BasicRock is the canonical seed pattern from the spec's scenario E.
func BasicRock() DrumPattern {
	p := DrumPattern{
		Name:          "basic rock",
		TimeSignature: core.CommonTime,
		MinTempoBPM:   60,
		MaxTempoBPM:   180,
		Beats: []DrumPatternBeat{
			{Position: 1.0, Samples: []core.ClickType{core.AcousticKick}, Accent: true},
			{Position: 1.5, Samples: []core.ClickType{core.HiHatClosed}},
			{Position: 2.0, Samples: []core.ClickType{core.AcousticSnare, core.HiHatClosed}},
			{Position: 2.5, Samples: []core.ClickType{core.HiHatClosed}},
			{Position: 3.0, Samples: []core.ClickType{core.AcousticKick, core.HiHatClosed}},
			{Position: 3.5, Samples: []core.ClickType{core.HiHatClosed}},
			{Position: 4.0, Samples: []core.ClickType{core.AcousticSnare, core.HiHatClosed}},
			{Position: 4.5, Samples: []core.ClickType{core.HiHatClosed}},
		},
	}
	p.sortBeats()
	return p
}

// PatternPlayer wraps a BeatScheduler's wall clock to sequence a
// DrumPattern's beats instead of a flat metronome click, per §4.7.
type PatternPlayer struct {
	clock TimeProvider

	pattern      *DrumPattern
	beatIndex    int
	nextBeatTime *time.Time
	enabled      bool
}

// NewPatternPlayer builds a player with no pattern loaded and playback
// disabled.
func NewPatternPlayer(clock TimeProvider) *PatternPlayer {
	return &PatternPlayer{clock: clock}
}

// Load installs pattern and resets playback position. Returns the
// pattern's validation error, if any, without installing it.
func (p *PatternPlayer) Load(pattern DrumPattern) error {
	if err := pattern.Validate(); err != nil {
		return err
	}
	pattern.sortBeats()
	p.pattern = &pattern
	p.beatIndex = 0
	p.nextBeatTime = nil
	return nil
}

// SetEnabled starts or stops pattern emission. Disabling clears the
// scheduled next-beat time so re-enabling restarts from the downbeat.
func (p *PatternPlayer) SetEnabled(v bool) {
	p.enabled = v
	if !v {
		p.nextBeatTime = nil
		p.beatIndex = 0
	}
}

// Poll advances the player against bpm and returns zero or one
// BeatEvent, per the three-step algorithm in §4.7.
func (p *PatternPlayer) Poll(bpm float64) *BeatEvent {
	if !p.enabled || p.pattern == nil || len(p.pattern.Beats) == 0 {
		return nil
	}
	now := p.clock.Now()
	beats := p.pattern.Beats

	if p.nextBeatTime == nil {
		// Collect every beat at the downbeat as one simultaneous emission.
		var samples []core.ClickType
		accent := false
		i := 0
		for i < len(beats) && beats[i].Position == beats[0].Position && beats[0].Position == 1.0 {
			samples = append(samples, beats[i].Samples...)
			accent = accent || beats[i].Accent
			i++
		}
		if len(samples) == 0 {
			samples = append(samples, beats[0].Samples...)
			accent = beats[0].Accent
			i = 1
		}
		p.beatIndex = i % len(beats)

		ev := &BeatEvent{
			BeatNumber:    1,
			Accent:        accent,
			Samples:       samples,
			Timestamp:     now,
			TempoBPM:      bpm,
			TimeSignature: p.pattern.TimeSignature,
		}
		p.scheduleNext(now, bpm, beats[0].Position)
		return ev
	}

	if !now.Before(*p.nextBeatTime) {
		b := beats[p.beatIndex]
		ev := &BeatEvent{
			BeatNumber:    int(b.Position),
			Accent:        b.Accent,
			Samples:       b.Samples,
			Timestamp:     now,
			TempoBPM:      bpm,
			TimeSignature: p.pattern.TimeSignature,
		}
		p.beatIndex = (p.beatIndex + 1) % len(beats)
		p.scheduleNext(now, bpm, b.Position)
		return ev
	}

	return nil
}

// scheduleNext rebases nextBeatTime from now by the interval to the
// beat now sitting at p.beatIndex, per §4.7's interval formula,
// accounting for the wrap from the pattern's last beat back to its first.
func (p *PatternPlayer) scheduleNext(now time.Time, bpm float64, justFiredPos float64) {
	beats := p.pattern.Beats
	next := beats[p.beatIndex]
	beatsPerMeasure := float64(p.pattern.TimeSignature.BeatsPerMeasure)
	ms := p.pattern.TimeSignature.BeatDurationMs(bpm)

	var intervalMs float64
	if next.Position > justFiredPos {
		intervalMs = (next.Position - justFiredPos) * ms
	} else {
		last := justFiredPos
		intervalMs = (beatsPerMeasure+1-last)*ms + (next.Position-1)*ms
	}

	t := now.Add(time.Duration(intervalMs * float64(time.Millisecond)))
	p.nextBeatTime = &t
}
