// Package output is the thin, out-of-core collaborator that binds the
// engine to an actual sound card: the spec treats the audio device
// binding as something that "supplies a periodic callback requesting N
// interleaved frames at a known sample rate," and this package is that
// binding, built on gopxl/beep's speaker + oto backend.
package output

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/polyphonica/audio"
)

// EngineStreamer adapts an *audio.Engine to beep.Streamer by asking the
// engine to fill a stereo buffer of whatever length beep's mixer
// requests on a given callback.
type EngineStreamer struct {
	engine *audio.Engine
	buf    []float32
}

// NewEngineStreamer wraps engine as a beep.Streamer.
func NewEngineStreamer(engine *audio.Engine) *EngineStreamer {
	return &EngineStreamer{engine: engine}
}

// Stream fills samples with the engine's stereo mix. Never errors; the
// engine's own real-time discipline guarantees it always has output to
// give, silence if nothing is active.
func (s *EngineStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	need := len(samples) * 2
	if cap(s.buf) < need {
		s.buf = make([]float32, need)
	}
	buf := s.buf[:need]
	s.engine.ProcessStereoBuffer(buf)
	for i := range samples {
		samples[i][0] = float64(buf[i*2])
		samples[i][1] = float64(buf[i*2+1])
	}
	return len(samples), true
}

// Err always returns nil: the engine degrades to silence rather than
// surfacing a stream error, per its real-time discipline.
func (s *EngineStreamer) Err() error { return nil }

// Device opens the speaker backend at sampleRate and starts playing
// engine's output through it with the given buffer latency.
func Device(engine *audio.Engine, sampleRate int, bufferLatency time.Duration) error {
	rate := beep.SampleRate(sampleRate)
	if err := speaker.Init(rate, rate.N(bufferLatency)); err != nil {
		return err
	}
	speaker.Play(NewEngineStreamer(engine))
	return nil
}

// Close halts speaker playback and releases the backend.
func Close() {
	speaker.Close()
}
