// Package audio is the realtime polyphonic synthesis core: a fixed-size
// voice pool driven once per host audio callback, with no allocation and
// no locking on the hot path. Everything outside processBuffer talks to
// it through the control surface in control.go.
package audio

import (
	"math"
	"math/rand"

	"github.com/lixenwraith/polyphonica/core"
)

// envState is the ADSR phase of a single voice's envelope.
type envState int

const (
	envAttack envState = iota
	envDecay
	envSustain
	envRelease
	envFinished
)

// voice is one slot in the engine's fixed pool. Every field here is
// touched only by the audio thread; the control surface never mutates a
// voice directly, it only posts commands the audio thread applies at the
// top of processBuffer.
type voice struct {
	id   uint32
	done bool

	waveform core.Waveform
	freq     float64
	env      core.Envelope
	amp      float64

	phase      float64 // radians, analytic waveforms
	cursor     float64 // fractional source-sample position, Sample waveform
	rng        *rand.Rand
	releasing  bool

	state        envState
	phaseTime    float64
	releaseStart float64
}

// reset wipes a slot for reuse by a fresh trigger, overwriting whatever
// was there before (this is what makes voice-stealing instantaneous:
// the stolen slot's prior state simply never gets read again).
func (v *voice) reset(id uint32, wf core.Waveform, freq float64, env core.Envelope, amp float64) {
	v.id = id
	v.done = false
	v.waveform = wf
	v.freq = freq
	v.env = env
	v.amp = clamp01(amp)
	v.phase = 0
	v.cursor = 0
	v.rng = rand.New(rand.NewSource(int64(id)))
	v.releasing = false
	v.releaseStart = 0
	v.phaseTime = 0

	if env.AttackSecs <= 0 {
		v.state = envDecay
	} else {
		v.state = envAttack
	}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// requestRelease marks the voice for release; the envelope captures a
// continuous starting amplitude the next time advance() evaluates it.
func (v *voice) requestRelease() {
	v.releasing = true
}

// envelopeAmplitude returns e(phaseTime) per state and advances the
// state machine by one sample period dt, per the ADSR design in §4.2.
func (v *voice) envelopeAmplitude(dt float64) float64 {
	if v.releasing && v.state != envRelease && v.state != envFinished {
		v.releaseStart = v.currentLevel()
		v.state = envRelease
		v.phaseTime = 0
	}

	var out float64
	switch v.state {
	case envAttack:
		if v.env.AttackSecs <= 0 {
			out = 1
		} else {
			out = v.phaseTime / v.env.AttackSecs
		}
		v.phaseTime += dt
		if v.phaseTime >= v.env.AttackSecs {
			v.state = envDecay
			v.phaseTime = 0
			if v.env.DecaySecs <= 0 {
				// A zero-length decay is passed in the same frame
				v.advanceFromDecay()
			}
		}

	case envDecay:
		if v.env.DecaySecs <= 0 {
			out = v.env.SustainLvl
			v.advanceFromDecay()
		} else {
			t := v.phaseTime / v.env.DecaySecs
			out = 1 - t*(1-v.env.SustainLvl)
			v.phaseTime += dt
			if v.phaseTime >= v.env.DecaySecs {
				v.advanceFromDecay()
			}
		}

	case envSustain:
		out = v.env.SustainLvl

	case envRelease:
		if v.env.ReleaseSecs <= 0 {
			out = 0
			v.state = envFinished
		} else {
			t := v.phaseTime / v.env.ReleaseSecs
			out = v.releaseStart * (1 - t)
			if out < 0 {
				out = 0
			}
			v.phaseTime += dt
			if out <= 0 || v.phaseTime >= v.env.ReleaseSecs {
				v.state = envFinished
				out = 0
			}
		}

	case envFinished:
		out = 0
		v.done = true
	}
	return out
}

// advanceFromDecay moves past a just-finished Decay phase into Sustain,
// or straight to Release if the voice was already marked for release
// while still in Attack/Decay. A zero sustain level has nothing left to
// hold, so the voice finishes instead of entering Sustain.
func (v *voice) advanceFromDecay() {
	v.phaseTime = 0
	if v.releasing {
		v.state = envRelease
		v.releaseStart = v.env.SustainLvl
	} else if v.env.SustainLvl <= 0 {
		v.state = envFinished
	} else {
		v.state = envSustain
	}
}

// currentLevel reports the envelope's instantaneous amplitude without
// advancing state, used to capture a continuous release start point.
func (v *voice) currentLevel() float64 {
	switch v.state {
	case envAttack:
		if v.env.AttackSecs <= 0 {
			return 1
		}
		return v.phaseTime / v.env.AttackSecs
	case envDecay:
		if v.env.DecaySecs <= 0 {
			return v.env.SustainLvl
		}
		t := v.phaseTime / v.env.DecaySecs
		return 1 - t*(1-v.env.SustainLvl)
	case envSustain:
		return v.env.SustainLvl
	default:
		return 0
	}
}

// sourceSample evaluates the waveform at the voice's current phase,
// per §4.1. Malformed inputs silence the voice rather than propagate
// NaN/Inf into the mix.
func (v *voice) sourceSample() float64 {
	if math.IsNaN(v.freq) || math.IsInf(v.freq, 0) || v.freq <= 0 {
		v.done = true
		return 0
	}

	switch v.waveform.Kind {
	case core.WaveSine:
		return math.Sin(v.phase)
	case core.WaveSquare:
		s := math.Sin(v.phase)
		if s >= 0 {
			return 1
		}
		return -1
	case core.WaveSawtooth:
		u := math.Mod(v.phase/(2*math.Pi), 1)
		if u < 0 {
			u++
		}
		return 2*u - 1
	case core.WaveTriangle:
		u := math.Mod(v.phase/(2*math.Pi), 1)
		if u < 0 {
			u++
		}
		if u < 0.5 {
			return 4*u - 1
		}
		return 3 - 4*u
	case core.WavePulse:
		d := v.waveform.DutyCycle
		if d < 0 || d > 1 {
			v.done = true
			return 0
		}
		u := math.Mod(v.phase/(2*math.Pi), 1)
		if u < 0 {
			u++
		}
		if u < d {
			return 1
		}
		return -1
	case core.WaveNoise:
		return v.rng.Float64()*2 - 1
	case core.WaveSample:
		return v.sampleSource()
	default:
		v.done = true
		return 0
	}
}

// sampleSource reads the sample buffer at the fractional cursor with
// linear interpolation, per §4.3 step 4.
func (v *voice) sampleSource() float64 {
	ref := v.waveform.Sample
	if ref == nil || ref.Len() == 0 {
		v.done = true
		return 0
	}
	i0 := int(v.cursor)
	if i0 >= ref.Len()-1 {
		v.done = true
		if i0 < ref.Len() {
			return float64(ref.Mono[i0])
		}
		return 0
	}
	frac := v.cursor - float64(i0)
	a, b := float64(ref.Mono[i0]), float64(ref.Mono[i0+1])
	return a + (b-a)*frac
}

// advance computes one output sample and moves the voice forward by one
// frame at sample rate fs, per the five-step algorithm in §4.3.
func (v *voice) advance(fs float64) float64 {
	if v.done {
		return 0
	}

	e := v.envelopeAmplitude(1 / fs)
	s := v.sourceSample()

	switch v.waveform.Kind {
	case core.WaveSample:
		ref := v.waveform.Sample
		baseFreq := 1.0
		if ref != nil && ref.BaseFrequency > 0 {
			baseFreq = ref.BaseFrequency
		}
		srcRate := fs
		if ref != nil && ref.SourceSampleRate > 0 {
			srcRate = float64(ref.SourceSampleRate)
		}
		v.cursor += (v.freq / baseFreq) * (srcRate / fs)
	default:
		v.phase += 2 * math.Pi * v.freq / fs
		if v.phase >= 2*math.Pi {
			v.phase = math.Mod(v.phase, 2*math.Pi)
		}
	}

	if v.state == envFinished {
		v.done = true
	}

	return s * e * v.amp
}
