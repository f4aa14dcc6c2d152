package audio

import (
	"sync/atomic"

	"github.com/lixenwraith/polyphonica/core"
	"github.com/lixenwraith/polyphonica/status"
)

// MaxVoices is the fixed capacity of the engine's voice pool. It is a
// compile-time constant, not a configuration knob: the pool is scanned
// linearly every callback and must stay small enough for that to be
// cheap at audio-thread deadlines.
const MaxVoices = 32

// Engine owns the fixed voice pool and mixes it into host buffers. All
// of its trigger/release/set methods are safe to call from the audio
// thread itself (the package-level apply, used by the command queue) or, when no
// queue is wired up, from a single external goroutine holding the
// engine's own coarse lock — see control.go for both modes.
type Engine struct {
	sampleRate float64
	voices     [MaxVoices]voice
	nextID     uint32

	// queue, if set via AttachQueue, is drained at the top of every
	// ProcessBuffer/ProcessStereoBuffer call before mixing, per §4.5.
	queue *CommandQueue

	masterAmp status.AtomicFloat

	activeCount atomic.Int32
	soundsPlayed   atomic.Uint64
	voicesStolen   atomic.Uint64
	triggersDropped atomic.Uint64
}

// NewEngine builds an empty engine at the given sample rate with master
// amplitude 1.0.
func NewEngine(sampleRate int) *Engine {
	e := &Engine{sampleRate: float64(sampleRate)}
	for i := range e.voices {
		e.voices[i].done = true
	}
	e.SetMasterAmp(1.0)
	return e
}

// SetMasterAmp sets the master amplitude, clamped to [0,1]. Idempotent:
// calling it twice leaves the engine in the same state as the second
// call alone.
func (e *Engine) SetMasterAmp(x float64) {
	e.masterAmp.Set(clamp01(x))
}

func (e *Engine) masterAmpLoad() float64 {
	return e.masterAmp.Get()
}

// ActiveVoiceCount reports the number of currently active voices.
// Observational; safe from any thread.
func (e *Engine) ActiveVoiceCount() int {
	return int(e.activeCount.Load())
}

// Trigger allocates a voice playing waveform at frequency with envelope
// env and amplitude 1.0. See TriggerWithAmp for the general form.
func (e *Engine) Trigger(waveform core.Waveform, frequency float64, env core.Envelope) (uint32, bool) {
	return e.TriggerWithAmp(waveform, frequency, env, 1.0)
}

// TriggerWithAmp allocates a voice, stealing one if the pool is full.
// Fails only when the pool is full and no voice matches the stealing
// criteria, which cannot happen with a nonzero MaxVoices since every
// active voice is always a valid steal candidate.
func (e *Engine) TriggerWithAmp(waveform core.Waveform, frequency float64, env core.Envelope, amp float64) (uint32, bool) {
	slot := e.findFreeSlot()
	if slot < 0 {
		slot = e.findStealTarget()
	}
	if slot < 0 {
		e.triggersDropped.Add(1)
		return 0, false
	}

	if !e.voices[slot].done {
		e.voicesStolen.Add(1)
	} else {
		e.activeCount.Add(1)
	}

	id := e.nextID
	e.nextID++
	e.voices[slot].reset(id, waveform, frequency, env, amp)
	e.soundsPlayed.Add(1)
	return id, true
}

func (e *Engine) findFreeSlot() int {
	for i := range e.voices {
		if e.voices[i].done {
			return i
		}
	}
	return -1
}

// findStealTarget picks the slot to reclaim when the pool is full:
// the oldest release-requested voice first, else the voice with the
// smallest current envelope amplitude, ties broken by smallest voiceId.
//
// "Oldest release-requested" means the voice that has spent the longest
// time in envRelease, not the voice with the smallest id: phaseTime
// resets to 0 the instant a voice enters envRelease and grows
// monotonically while it stays there, so the releasing voice with the
// largest phaseTime is the one whose release was requested longest ago.
func (e *Engine) findStealTarget() int {
	bestReleasing := -1
	bestQuiet := -1
	for i := range e.voices {
		v := &e.voices[i]
		if v.state == envRelease {
			if bestReleasing < 0 ||
				v.phaseTime > e.voices[bestReleasing].phaseTime ||
				(v.phaseTime == e.voices[bestReleasing].phaseTime && v.id < e.voices[bestReleasing].id) {
				bestReleasing = i
			}
		}
	}
	if bestReleasing >= 0 {
		return bestReleasing
	}

	bestAmp := 2.0 // amplitude is always <= 1
	for i := range e.voices {
		v := &e.voices[i]
		lvl := v.currentLevel() * v.amp
		if lvl < bestAmp || (lvl == bestAmp && (bestQuiet < 0 || v.id < e.voices[bestQuiet].id)) {
			bestAmp = lvl
			bestQuiet = i
		}
	}
	return bestQuiet
}

// Release marks the voice with the given id, if still active, for a
// graceful envelope release. No-op if the id is not currently active.
func (e *Engine) Release(id uint32) {
	if i := e.find(id); i >= 0 {
		e.voices[i].requestRelease()
	}
}

// ReleaseAll release-requests every active voice.
func (e *Engine) ReleaseAll() {
	for i := range e.voices {
		if !e.voices[i].done {
			e.voices[i].requestRelease()
		}
	}
}

// StopAll force-silences every voice immediately, with no fade.
func (e *Engine) StopAll() {
	for i := range e.voices {
		if !e.voices[i].done {
			e.voices[i].done = true
		}
	}
	e.activeCount.Store(0)
}

// SetFrequency updates the target frequency of an active voice.
func (e *Engine) SetFrequency(id uint32, freq float64) {
	if i := e.find(id); i >= 0 {
		e.voices[i].freq = freq
	}
}

// SetAmp updates the per-voice amplitude of an active voice, clamped to
// [0,1].
func (e *Engine) SetAmp(id uint32, amp float64) {
	if i := e.find(id); i >= 0 {
		e.voices[i].amp = clamp01(amp)
	}
}

func (e *Engine) find(id uint32) int {
	for i := range e.voices {
		if !e.voices[i].done && e.voices[i].id == id {
			return i
		}
	}
	return -1
}

// AttachQueue wires a CommandQueue into the engine so ProcessBuffer and
// ProcessStereoBuffer drain it automatically before mixing.
func (e *Engine) AttachQueue(q *CommandQueue) {
	e.queue = q
}

// ProcessBuffer fills buf (mono) with the sum of active voices, scaled
// by master amplitude and clamped to [-1,1]. Retires any voice that
// became done during the call. Allocation-free; an empty buf is a no-op.
func (e *Engine) ProcessBuffer(buf []float32) {
	if len(buf) == 0 {
		return
	}
	if e.queue != nil {
		e.queue.Drain(e)
	}
	master := e.masterAmpLoad()
	retired := 0
	for frame := range buf {
		var mix float64
		for i := range e.voices {
			v := &e.voices[i]
			if v.done {
				continue
			}
			mix += v.advance(e.sampleRate)
			if v.done {
				retired++
			}
		}
		mix *= master
		buf[frame] = float32(clampUnit(mix))
	}
	if retired > 0 {
		e.recountActive()
	}
}

// ProcessStereoBuffer fills buf (interleaved L,R,L,R,...) with the mono
// mix duplicated across both channels.
func (e *Engine) ProcessStereoBuffer(buf []float32) {
	n := len(buf) / 2
	if n == 0 {
		return
	}
	if e.queue != nil {
		e.queue.Drain(e)
	}
	master := e.masterAmpLoad()
	retired := 0
	for frame := 0; frame < n; frame++ {
		var mix float64
		for i := range e.voices {
			v := &e.voices[i]
			if v.done {
				continue
			}
			mix += v.advance(e.sampleRate)
			if v.done {
				retired++
			}
		}
		mix *= master
		m := float32(clampUnit(mix))
		buf[frame*2] = m
		buf[frame*2+1] = m
	}
	if retired > 0 {
		e.recountActive()
	}
}

func (e *Engine) recountActive() {
	n := 0
	for i := range e.voices {
		if !e.voices[i].done {
			n++
		}
	}
	e.activeCount.Store(int32(n))
}

func clampUnit(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

// Stats is a snapshot of the engine's lifetime counters, exposed for the
// status/metrics collaborator.
type Stats struct {
	SoundsPlayed    uint64
	VoicesStolen    uint64
	TriggersDropped uint64
	ActiveVoices    int32
}

// Stats returns a snapshot of the engine's counters. Safe from any
// thread; the counters themselves are only ever written by the audio
// thread.
func (e *Engine) Stats() Stats {
	return Stats{
		SoundsPlayed:    e.soundsPlayed.Load(),
		VoicesStolen:    e.voicesStolen.Load(),
		TriggersDropped: e.triggersDropped.Load(),
		ActiveVoices:    e.activeCount.Load(),
	}
}
