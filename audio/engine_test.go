package audio

import (
	"math"
	"testing"

	"github.com/lixenwraith/polyphonica/core"
)

func flatEnvelope(sustain float64) core.Envelope {
	return core.Envelope{AttackSecs: 0, DecaySecs: 0, SustainLvl: sustain, ReleaseSecs: 0}
}

// Scenario A: basic tone.
func TestBasicTone(t *testing.T) {
	e := NewEngine(44100)
	if _, ok := e.Trigger(core.SineWave(), 440, flatEnvelope(1)); !ok {
		t.Fatal("trigger failed")
	}

	buf := make([]float32, 441)
	e.ProcessBuffer(buf)

	if math.Abs(float64(buf[0])) > 0.05 {
		t.Errorf("expected near-zero first sample, got %v", buf[0])
	}
	peak := float32(0)
	for _, s := range buf {
		if s > peak {
			peak = s
		}
	}
	if peak < 0.9 {
		t.Errorf("expected peak near 1, got %v", peak)
	}
}

// Scenario B: envelope shape.
func TestEnvelopeShape(t *testing.T) {
	e := NewEngine(44100)
	env := core.Envelope{AttackSecs: 0.01, DecaySecs: 0.01, SustainLvl: 0.5, ReleaseSecs: 0.01}
	id, ok := e.Trigger(core.SineWave(), 1000, env)
	if !ok {
		t.Fatal("trigger failed")
	}

	buf := make([]float32, 1323)
	e.ProcessBuffer(buf[:1323])
	e.Release(id)

	rest := make([]float32, 441)
	e.ProcessBuffer(rest)

	maxAbs := func(s []float32) float32 {
		m := float32(0)
		for _, v := range s {
			if v < 0 {
				v = -v
			}
			if v > m {
				m = v
			}
		}
		return m
	}
	if maxAbs(rest) > 0.6 {
		t.Errorf("expected release to decay amplitude, got max %v", maxAbs(rest))
	}
}

// Scenario C: voice stealing.
func TestVoiceStealingAssignsDistinctIDs(t *testing.T) {
	e := NewEngine(44100)
	// fill the pool by triggering MaxVoices, then one more
	ids := make(map[uint32]bool)
	for i := 0; i < MaxVoices; i++ {
		id, ok := e.TriggerWithAmp(core.SineWave(), float64(200+i), flatEnvelope(1), 1)
		if !ok {
			t.Fatalf("trigger %d failed", i)
		}
		ids[id] = true
	}
	if e.ActiveVoiceCount() != MaxVoices {
		t.Fatalf("expected %d active voices, got %d", MaxVoices, e.ActiveVoiceCount())
	}

	extra, ok := e.TriggerWithAmp(core.SineWave(), 999, flatEnvelope(1), 1)
	if !ok {
		t.Fatal("expected steal to succeed")
	}
	if ids[extra] {
		t.Fatal("stolen voice id collided with an existing id")
	}
	if e.ActiveVoiceCount() != MaxVoices {
		t.Fatalf("active count changed after steal: %d", e.ActiveVoiceCount())
	}
}

// Scenario C2: when two voices are both releasing, the steal target must
// be whichever released first, not whichever has the smaller id.
func TestVoiceStealingPrefersOldestReleaseOverID(t *testing.T) {
	e := NewEngine(44100)
	longRelease := core.Envelope{AttackSecs: 0, DecaySecs: 0, SustainLvl: 1, ReleaseSecs: 10}

	for i := 0; i < MaxVoices-2; i++ {
		if _, ok := e.TriggerWithAmp(core.SineWave(), float64(200+i), longRelease, 1); !ok {
			t.Fatalf("filler trigger %d failed", i)
		}
	}
	idA, ok := e.TriggerWithAmp(core.SineWave(), 300, longRelease, 1)
	if !ok {
		t.Fatal("trigger A failed")
	}
	idB, ok := e.TriggerWithAmp(core.SineWave(), 301, longRelease, 1)
	if !ok {
		t.Fatal("trigger B failed")
	}
	if idA >= idB {
		t.Fatalf("expected A to be triggered before B, got ids %d, %d", idA, idB)
	}

	// B releases first and accumulates more time in envRelease, even
	// though its id is larger than A's.
	e.Release(idB)
	buf := make([]float32, 4410)
	e.ProcessBuffer(buf)
	e.Release(idA)
	e.ProcessBuffer(buf)

	extra, ok := e.TriggerWithAmp(core.SineWave(), 999, longRelease, 1)
	if !ok {
		t.Fatal("expected steal to succeed")
	}
	if extra == idA {
		t.Fatal("stole A (smaller id, released later) instead of B (oldest release request)")
	}
	if e.find(idB) >= 0 {
		t.Fatal("expected B, the oldest release request, to have been stolen")
	}
	if e.find(idA) < 0 {
		t.Fatal("expected A, released more recently, to remain active")
	}
}

func TestActiveVoiceCountNeverExceedsCapacity(t *testing.T) {
	e := NewEngine(44100)
	for i := 0; i < MaxVoices*3; i++ {
		e.TriggerWithAmp(core.SineWave(), float64(100+i), flatEnvelope(1), 1)
		if e.ActiveVoiceCount() > MaxVoices {
			t.Fatalf("active voice count exceeded capacity: %d", e.ActiveVoiceCount())
		}
	}
}

func TestStopAllSilencesImmediately(t *testing.T) {
	e := NewEngine(44100)
	e.Trigger(core.SineWave(), 440, flatEnvelope(1))
	e.Trigger(core.SquareWave(), 220, flatEnvelope(1))
	e.StopAll()

	buf := make([]float32, 64)
	e.ProcessBuffer(buf)
	for _, s := range buf {
		if s != 0 {
			t.Fatalf("expected silence after StopAll, got %v", s)
		}
	}
	if e.ActiveVoiceCount() != 0 {
		t.Fatalf("expected 0 active voices after StopAll, got %d", e.ActiveVoiceCount())
	}
}

func TestProcessBufferStaysInUnitRange(t *testing.T) {
	e := NewEngine(44100)
	for i := 0; i < MaxVoices; i++ {
		e.TriggerWithAmp(core.NoiseWave(), 440, flatEnvelope(1), 1)
	}
	buf := make([]float32, 2048)
	e.ProcessBuffer(buf)
	for _, s := range buf {
		if s > 1 || s < -1 {
			t.Fatalf("sample out of range: %v", s)
		}
	}
}

func TestReleaseTerminatesWithinReleaseWindow(t *testing.T) {
	e := NewEngine(44100)
	env := core.Envelope{AttackSecs: 0, DecaySecs: 0, SustainLvl: 1, ReleaseSecs: 0.01}
	id, _ := e.Trigger(core.SineWave(), 440, env)
	e.Release(id)

	buf := make([]float32, int(44100*0.02))
	e.ProcessBuffer(buf)

	if e.ActiveVoiceCount() != 0 {
		t.Fatalf("expected voice inactive after release window, got %d active", e.ActiveVoiceCount())
	}
}

func TestSetMasterAmpIdempotent(t *testing.T) {
	e := NewEngine(44100)
	e.SetMasterAmp(0.3)
	e.SetMasterAmp(0.3)
	if got := e.masterAmpLoad(); got != 0.3 {
		t.Fatalf("expected 0.3, got %v", got)
	}

	f := NewEngine(44100)
	f.SetMasterAmp(0.7)
	if got := f.masterAmpLoad(); got != 0.7 {
		t.Fatalf("expected 0.7, got %v", got)
	}
}

func TestEmptyBufferIsNoop(t *testing.T) {
	e := NewEngine(44100)
	e.Trigger(core.SineWave(), 440, flatEnvelope(1))
	e.ProcessBuffer(nil) // must not panic
}

func TestInvalidFrequencyFailsSilently(t *testing.T) {
	e := NewEngine(44100)
	e.Trigger(core.SineWave(), -1, flatEnvelope(1))
	buf := make([]float32, 64)
	e.ProcessBuffer(buf) // must not panic, must stay silent for that voice
	for _, s := range buf {
		if s != 0 {
			t.Fatalf("expected silence for invalid frequency voice, got %v", s)
		}
	}
}
