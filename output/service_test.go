package output

import (
	"testing"
	"time"

	"github.com/lixenwraith/polyphonica/core"
	"github.com/lixenwraith/polyphonica/timing"
)

func TestDispatchTriggersOneVoicePerSample(t *testing.T) {
	svc := NewMetronomeService(core.CommonTime, core.WoodBlock, 120, 44100)
	ev := &timing.BeatEvent{
		BeatNumber: 1,
		Accent:     false,
		Samples:    []core.ClickType{core.WoodBlock},
		Timestamp:  time.Now(),
		TempoBPM:   120,
	}
	svc.dispatch(ev)
	svc.queue.Drain(svc.engine)
	if got := svc.engine.ActiveVoiceCount(); got != 1 {
		t.Fatalf("expected 1 active voice after dispatch, got %d", got)
	}
}

func TestDispatchAccentedEventTriggersOneVoice(t *testing.T) {
	svc := NewMetronomeService(core.CommonTime, core.AcousticKick, 120, 44100)
	ev := &timing.BeatEvent{
		BeatNumber: 1,
		Accent:     true,
		Samples:    []core.ClickType{core.AcousticKick},
		Timestamp:  time.Now(),
		TempoBPM:   120,
	}
	svc.dispatch(ev)
	svc.queue.Drain(svc.engine)
	if got := svc.engine.ActiveVoiceCount(); got != 1 {
		t.Fatalf("expected 1 active voice after accented dispatch, got %d", got)
	}
}

func TestPublishStatsReflectsEngineCounters(t *testing.T) {
	svc := NewMetronomeService(core.CommonTime, core.WoodBlock, 120, 44100)
	svc.engine.Trigger(core.SineWave(), 440, core.Envelope{SustainLvl: 1})
	svc.publishStats()
	if svc.registry.Ints.Get("active_voices").Load() != 1 {
		t.Fatalf("expected active_voices metric to reflect 1 active voice")
	}
}
