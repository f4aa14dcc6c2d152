// Package core holds the tagged-variant types shared by the audio
// synthesis engine and the beat-timing scheduler, so neither package
// has to import the other to agree on vocabulary.
package core

// WaveKind selects the oscillator shape a Waveform computes.
type WaveKind int

const (
	WaveSine WaveKind = iota
	WaveSquare
	WaveSawtooth
	WaveTriangle
	WavePulse
	WaveNoise
	WaveSample
)

func (k WaveKind) String() string {
	switch k {
	case WaveSine:
		return "sine"
	case WaveSquare:
		return "square"
	case WaveSawtooth:
		return "sawtooth"
	case WaveTriangle:
		return "triangle"
	case WavePulse:
		return "pulse"
	case WaveNoise:
		return "noise"
	case WaveSample:
		return "sample"
	default:
		return "unknown"
	}
}

// Waveform is the closed set of sound sources a Voice can carry.
// Pulse carries a duty cycle; Sample carries a reference to decoded PCM.
// Both fields are ignored by kinds that don't need them.
type Waveform struct {
	Kind      WaveKind
	DutyCycle float64 // WavePulse only, in [0,1]
	Sample    *SampleRef
}

// SampleRef is an immutable, shared-ownership PCM buffer. Multiple voices
// and a sample-library cache entry may reference the same buffer; the
// buffer is freed only once its last reference is dropped.
type SampleRef struct {
	Name             string
	Mono             []float32 // normalized to [-1, 1]
	SourceSampleRate int
	BaseFrequency    float64 // pitch the sample was captured at, supplied by the caller
}

func (s *SampleRef) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Mono)
}

// SineWave, SquareWave, etc. build the common analytic waveforms.
func SineWave() Waveform     { return Waveform{Kind: WaveSine} }
func SquareWave() Waveform   { return Waveform{Kind: WaveSquare} }
func SawtoothWave() Waveform { return Waveform{Kind: WaveSawtooth} }
func TriangleWave() Waveform { return Waveform{Kind: WaveTriangle} }
func NoiseWave() Waveform    { return Waveform{Kind: WaveNoise} }

// PulseWave builds a pulse waveform with the given duty cycle, clamped to [0,1].
func PulseWave(duty float64) Waveform {
	if duty < 0 {
		duty = 0
	} else if duty > 1 {
		duty = 1
	}
	return Waveform{Kind: WavePulse, DutyCycle: duty}
}

// SampleWave builds a Waveform that plays back the given PCM reference.
func SampleWave(ref *SampleRef) Waveform {
	return Waveform{Kind: WaveSample, Sample: ref}
}
