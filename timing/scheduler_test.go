package timing

import (
	"testing"
	"time"

	"github.com/lixenwraith/polyphonica/core"
)

// Scenario D: metronome precision.
func TestMetronomePrecisionOverThirtySeconds(t *testing.T) {
	clock := NewFakeTimeProvider(time.Unix(0, 0))
	sched := NewBeatScheduler(clock, core.CommonTime, core.DigitalBeep)
	sched.Start()

	var events []*BeatEvent
	const pollInterval = 10 * time.Millisecond
	for elapsed := time.Duration(0); elapsed < 30*time.Second; elapsed += pollInterval {
		if ev := sched.Poll(120); ev != nil {
			events = append(events, ev)
		}
		clock.Advance(pollInterval)
	}

	if len(events) != 60 {
		t.Fatalf("expected 60 beat events at 120bpm over 30s, got %d", len(events))
	}
	for i, ev := range events {
		want := i%4 + 1
		if ev.BeatNumber != want {
			t.Fatalf("event %d: expected beat %d, got %d", i, want, ev.BeatNumber)
		}
		if want == 1 && !ev.Accent {
			t.Fatalf("event %d: beat 1 should be accented", i)
		}
	}
}

func TestStopClearsTimingState(t *testing.T) {
	clock := NewFakeTimeProvider(time.Unix(0, 0))
	sched := NewBeatScheduler(clock, core.CommonTime, core.WoodBlock)
	sched.Start()
	sched.Poll(120)
	clock.Advance(600 * time.Millisecond)
	sched.Poll(120)

	sched.Stop()
	if sched.CurrentBeat() != 1 {
		t.Fatalf("expected beat reset to 1 after stop, got %d", sched.CurrentBeat())
	}
	if ev := sched.Poll(120); ev != nil {
		t.Fatal("expected no events while stopped")
	}
}

func TestPauseResumeKeepsPhase(t *testing.T) {
	clock := NewFakeTimeProvider(time.Unix(0, 0))
	sched := NewBeatScheduler(clock, core.CommonTime, core.WoodBlock)
	sched.Start()
	sched.Poll(120) // first beat fires immediately, schedules next at +500ms

	clock.Advance(200 * time.Millisecond)
	sched.Pause()
	clock.Advance(10 * time.Second) // long pause, should not cause a burst
	sched.Resume()

	if ev := sched.Poll(120); ev != nil {
		t.Fatal("expected no event immediately after resume")
	}
	clock.Advance(300 * time.Millisecond) // remaining 300ms to complete the 500ms beat interval
	if ev := sched.Poll(120); ev == nil {
		t.Fatal("expected the resumed beat to fire after its remaining interval")
	}
}

func TestTimeSignatureChangeClampsCurrentBeat(t *testing.T) {
	clock := NewFakeTimeProvider(time.Unix(0, 0))
	sched := NewBeatScheduler(clock, core.TimeSignature{BeatsPerMeasure: 4, NoteValue: 4}, core.WoodBlock)
	sched.Start()
	sched.Poll(120)
	clock.Advance(520 * time.Millisecond)
	sched.Poll(120)
	clock.Advance(520 * time.Millisecond)
	sched.Poll(120) // currentBeat now 4

	sched.SetTimeSignature(core.TimeSignature{BeatsPerMeasure: 2, NoteValue: 4})
	if sched.CurrentBeat() != 2 {
		t.Fatalf("expected clamp to 2, got %d", sched.CurrentBeat())
	}
}
