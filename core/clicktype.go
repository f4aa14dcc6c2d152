package core

// ClickType is the closed set of sound identities a metronome or pattern
// beat can carry. Synthetic types have no natural sample and always
// resolve through synthesisTable; sampled types prefer a loaded PCM
// sample but fall back to the same table when none is available.
type ClickType int

const (
	WoodBlock ClickType = iota
	DigitalBeep
	Cowbell
	ElectroClick
	AcousticKick
	AcousticSnare
	HiHatClosed
	HiHatOpen
	HiHatLoose
	HiHatVeryLoose
	RimShot
	Stick
	CymbalSplash
	CymbalRoll
	Ride
	RideBell
	KickTight
)

func (c ClickType) String() string {
	switch c {
	case WoodBlock:
		return "wood_block"
	case DigitalBeep:
		return "digital_beep"
	case Cowbell:
		return "cowbell"
	case ElectroClick:
		return "electro_click"
	case AcousticKick:
		return "acoustic_kick"
	case AcousticSnare:
		return "acoustic_snare"
	case HiHatClosed:
		return "hihat_closed"
	case HiHatOpen:
		return "hihat_open"
	case HiHatLoose:
		return "hihat_loose"
	case HiHatVeryLoose:
		return "hihat_very_loose"
	case RimShot:
		return "rim_shot"
	case Stick:
		return "stick"
	case CymbalSplash:
		return "cymbal_splash"
	case CymbalRoll:
		return "cymbal_roll"
	case Ride:
		return "ride"
	case RideBell:
		return "ride_bell"
	case KickTight:
		return "kick_tight"
	default:
		return "unknown"
	}
}

// ClickTypeByName resolves a catalog sample string to a ClickType. It is
// the only place string literals from JSON patterns become ClickType
// values, so an unrecognized string is always treated as an error by
// the caller rather than silently coerced.
func ClickTypeByName(name string) (ClickType, bool) {
	for _, c := range AllClickTypes {
		if c.String() == name {
			return c, true
		}
	}
	return 0, false
}

// AllClickTypes enumerates the closed ClickType set in declaration order.
var AllClickTypes = [...]ClickType{
	WoodBlock, DigitalBeep, Cowbell, ElectroClick,
	AcousticKick, AcousticSnare,
	HiHatClosed, HiHatOpen, HiHatLoose, HiHatVeryLoose,
	RimShot, Stick, CymbalSplash, CymbalRoll, Ride, RideBell,
	KickTight,
}

// HasSample reports whether c prefers a sampled PCM voice over a purely
// synthetic one when the sample library has it available.
func (c ClickType) HasSample() bool {
	switch c {
	case AcousticKick, AcousticSnare, HiHatClosed, HiHatOpen, HiHatLoose,
		HiHatVeryLoose, RimShot, Stick, CymbalSplash, CymbalRoll, Ride,
		RideBell, KickTight:
		return true
	default:
		return false
	}
}

// clickParams is one row of the synthesis table: the synthetic fallback
// waveform/frequency plus the envelope used when the click is triggered
// from a loaded sample (sample playback ignores frequency).
type clickParams struct {
	waveform       Waveform
	frequency      float64
	syntheticEnv   Envelope
	sampleEnv      Envelope
}

// defaultSampleEnvelope is used by clicks that have no sample-specific
// row; SampleEnvelope also returns it for synthetic-only ClickTypes,
// which have no sample.
var defaultSampleEnvelope = Envelope{AttackSecs: 0.001, DecaySecs: 0.1, SustainLvl: 0, ReleaseSecs: 0.05}

// synthesisTable maps each ClickType to its deterministic (Waveform,
// frequency, envelope) triple, transcribed from the reference
// metronome's click-type synthesis tables.
var synthesisTable = map[ClickType]clickParams{
	WoodBlock: {
		waveform:     NoiseWave(),
		frequency:    800,
		syntheticEnv: Envelope{AttackSecs: 0.001, DecaySecs: 0.05, SustainLvl: 0, ReleaseSecs: 0.02},
	},
	DigitalBeep: {
		waveform:     SineWave(),
		frequency:    1000,
		syntheticEnv: Envelope{AttackSecs: 0.001, DecaySecs: 0.08, SustainLvl: 0, ReleaseSecs: 0.05},
	},
	Cowbell: {
		waveform:     SquareWave(),
		frequency:    800,
		syntheticEnv: Envelope{AttackSecs: 0.001, DecaySecs: 0.15, SustainLvl: 0, ReleaseSecs: 0.1},
	},
	ElectroClick: {
		waveform:     PulseWave(0.25),
		frequency:    1200,
		syntheticEnv: Envelope{AttackSecs: 0.001, DecaySecs: 0.04, SustainLvl: 0, ReleaseSecs: 0.03},
	},
	AcousticKick: {
		waveform:     SineWave(),
		frequency:    60,
		syntheticEnv: Envelope{AttackSecs: 0.001, DecaySecs: 0.3, SustainLvl: 0, ReleaseSecs: 0.1},
		sampleEnv:    Envelope{AttackSecs: 0.001, DecaySecs: 1.0, SustainLvl: 0, ReleaseSecs: 0.001},
	},
	AcousticSnare: {
		waveform:     NoiseWave(),
		frequency:    800,
		syntheticEnv: Envelope{AttackSecs: 0.001, DecaySecs: 0.15, SustainLvl: 0, ReleaseSecs: 0.05},
		sampleEnv:    Envelope{AttackSecs: 0.001, DecaySecs: 0.5, SustainLvl: 0, ReleaseSecs: 0.001},
	},
	HiHatClosed: {
		waveform:     PulseWave(0.1),
		frequency:    8000,
		syntheticEnv: Envelope{AttackSecs: 0.001, DecaySecs: 0.08, SustainLvl: 0, ReleaseSecs: 0.02},
		sampleEnv:    Envelope{AttackSecs: 0.001, DecaySecs: 0.2, SustainLvl: 0, ReleaseSecs: 0.001},
	},
	HiHatOpen: {
		waveform:     PulseWave(0.1),
		frequency:    6000,
		syntheticEnv: Envelope{AttackSecs: 0.001, DecaySecs: 0.25, SustainLvl: 0, ReleaseSecs: 0.1},
		sampleEnv:    Envelope{AttackSecs: 0.001, DecaySecs: 1.0, SustainLvl: 0, ReleaseSecs: 0.001},
	},
	HiHatLoose: {
		waveform:     PulseWave(0.2),
		frequency:    5000,
		syntheticEnv: Envelope{AttackSecs: 0.001, DecaySecs: 0.4, SustainLvl: 0, ReleaseSecs: 0.15},
		sampleEnv:    Envelope{AttackSecs: 0.001, DecaySecs: 0.5, SustainLvl: 0, ReleaseSecs: 0.001},
	},
	HiHatVeryLoose: {
		waveform:     PulseWave(0.3),
		frequency:    4000,
		syntheticEnv: Envelope{AttackSecs: 0.001, DecaySecs: 0.8, SustainLvl: 0, ReleaseSecs: 0.3},
		sampleEnv:    Envelope{AttackSecs: 0.001, DecaySecs: 1.2, SustainLvl: 0, ReleaseSecs: 0.001},
	},
	RimShot: {
		waveform:     PulseWave(0.1),
		frequency:    400,
		syntheticEnv: Envelope{AttackSecs: 0.001, DecaySecs: 0.03, SustainLvl: 0, ReleaseSecs: 0.02},
		sampleEnv:    Envelope{AttackSecs: 0.001, DecaySecs: 0.3, SustainLvl: 0, ReleaseSecs: 0.001},
	},
	Stick: {
		waveform:     TriangleWave(),
		frequency:    2000,
		syntheticEnv: Envelope{AttackSecs: 0.001, DecaySecs: 0.02, SustainLvl: 0, ReleaseSecs: 0.01},
		sampleEnv:    Envelope{AttackSecs: 0.001, DecaySecs: 0.1, SustainLvl: 0, ReleaseSecs: 0.001},
	},
	CymbalSplash: {
		waveform:     NoiseWave(),
		frequency:    4000,
		syntheticEnv: Envelope{AttackSecs: 0.001, DecaySecs: 1.0, SustainLvl: 0, ReleaseSecs: 0.4},
		sampleEnv:    Envelope{AttackSecs: 0.001, DecaySecs: 1.5, SustainLvl: 0, ReleaseSecs: 0.001},
	},
	CymbalRoll: {
		waveform:     NoiseWave(),
		frequency:    3000,
		syntheticEnv: Envelope{AttackSecs: 0.001, DecaySecs: 1.5, SustainLvl: 0, ReleaseSecs: 0.6},
		sampleEnv:    Envelope{AttackSecs: 0.001, DecaySecs: 2.0, SustainLvl: 0, ReleaseSecs: 0.001},
	},
	Ride: {
		waveform:     TriangleWave(),
		frequency:    2000,
		syntheticEnv: Envelope{AttackSecs: 0.001, DecaySecs: 0.5, SustainLvl: 0, ReleaseSecs: 0.2},
		sampleEnv:    Envelope{AttackSecs: 0.001, DecaySecs: 0.8, SustainLvl: 0, ReleaseSecs: 0.001},
	},
	RideBell: {
		waveform:     SineWave(),
		frequency:    3000,
		syntheticEnv: Envelope{AttackSecs: 0.001, DecaySecs: 0.3, SustainLvl: 0, ReleaseSecs: 0.1},
		sampleEnv:    Envelope{AttackSecs: 0.001, DecaySecs: 0.3, SustainLvl: 0, ReleaseSecs: 0.001},
	},
	KickTight: {
		waveform:     SineWave(),
		frequency:    80,
		syntheticEnv: Envelope{AttackSecs: 0.001, DecaySecs: 0.2, SustainLvl: 0, ReleaseSecs: 0.05},
		sampleEnv:    Envelope{AttackSecs: 0.001, DecaySecs: 0.8, SustainLvl: 0, ReleaseSecs: 0.001},
	},
}

// SyntheticParams returns the (waveform, frequency, envelope) triple used
// when no loaded sample is available for c.
func (c ClickType) SyntheticParams() (Waveform, float64, Envelope) {
	p, ok := synthesisTable[c]
	if !ok {
		return SineWave(), 440, defaultSampleEnvelope
	}
	return p.waveform, p.frequency, p.syntheticEnv
}

// SampleEnvelope returns the envelope used to shape a loaded PCM sample
// for c; it is minimal by design so the sample's own character carries
// the sound rather than the ADSR curve.
func (c ClickType) SampleEnvelope() Envelope {
	p, ok := synthesisTable[c]
	if !ok || !c.HasSample() {
		return defaultSampleEnvelope
	}
	return p.sampleEnv
}

// AccentVolumeMultiplier scales baseVolume up by accentIntensity (a
// fraction, e.g. 0.5 = 50% louder), clamped to 1.0. Used by drivers that
// realize an accent as a louder strike of the same ClickType rather than
// a substituted one.
func AccentVolumeMultiplier(baseVolume, accentIntensity float64) float64 {
	v := baseVolume * (1 + accentIntensity)
	if v > 1 {
		return 1
	}
	return v
}

// AccentSubstitute returns the ClickType used in place of c when a beat
// is accented and the driver wants audible contrast rather than a louder
// copy of the same sound: sampled percussion swaps kick/snare-family
// timbres, synthetic clicks keep their own table entry (the driver
// typically also raises amplitude for those).
func (c ClickType) AccentSubstitute() ClickType {
	switch c {
	case AcousticKick, KickTight:
		return AcousticSnare
	case AcousticSnare, HiHatClosed, HiHatOpen, HiHatLoose, HiHatVeryLoose,
		RimShot, Stick, CymbalSplash, CymbalRoll, Ride, RideBell:
		return AcousticKick
	default:
		return c
	}
}
