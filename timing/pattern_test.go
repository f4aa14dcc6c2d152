package timing

import (
	"testing"
	"time"
)

// Scenario E: pattern player over one measure of "basic rock" at 120 BPM.
func TestBasicRockPatternOneMeasure(t *testing.T) {
	clock := NewFakeTimeProvider(time.Unix(0, 0))
	player := NewPatternPlayer(clock)
	pattern := BasicRock()
	if err := player.Load(pattern); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	player.SetEnabled(true)

	var events []*BeatEvent
	const pollInterval = 10 * time.Millisecond
	for elapsed := time.Duration(0); elapsed < 2*time.Second; elapsed += pollInterval {
		if ev := player.Poll(120); ev != nil {
			events = append(events, ev)
		}
		clock.Advance(pollInterval)
	}

	if len(events) != 8 {
		t.Fatalf("expected 8 events in one measure, got %d", len(events))
	}

	var deltas []float64
	for i := 1; i < len(events); i++ {
		deltas = append(deltas, float64(events[i].Timestamp.Sub(events[i-1].Timestamp).Milliseconds()))
	}
	var sum float64
	for _, d := range deltas {
		sum += d
	}
	mean := sum / float64(len(deltas))
	var variance float64
	for _, d := range deltas {
		variance += (d - mean) * (d - mean)
	}
	variance /= float64(len(deltas))
	if variance > 25 { // stddev < 5ms
		t.Fatalf("inter-event jitter too high: variance=%v", variance)
	}
}

func TestPatternValidationRejectsDuplicatePositions(t *testing.T) {
	p := BasicRock()
	p.Beats = append(p.Beats, DrumPatternBeat{Position: 1.0, Samples: p.Beats[0].Samples})
	if err := p.Validate(); err == nil {
		t.Fatal("expected validation error for duplicate position")
	}
}

func TestSingleBeatPatternEmitsOncePerMeasure(t *testing.T) {
	clock := NewFakeTimeProvider(time.Unix(0, 0))
	player := NewPatternPlayer(clock)
	p := BasicRock()
	p.Beats = p.Beats[:1] // just the downbeat
	if err := player.Load(p); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	player.SetEnabled(true)

	count := 0
	for elapsed := time.Duration(0); elapsed < 2*time.Second; elapsed += 10 * time.Millisecond {
		if ev := player.Poll(120); ev != nil {
			count++
		}
		clock.Advance(10 * time.Millisecond)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 emission per measure, got %d", count)
	}
}
