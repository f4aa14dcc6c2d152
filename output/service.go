package output

import (
	"fmt"
	"time"

	"github.com/lixenwraith/polyphonica/audio"
	"github.com/lixenwraith/polyphonica/core"
	"github.com/lixenwraith/polyphonica/status"
	"github.com/lixenwraith/polyphonica/timing"
)

// MetronomeService is the outer driver loop the spec describes: it owns
// the speaker device, polls a BeatScheduler on a wall clock, and turns
// every emitted BeatEvent into a voice trigger on the engine through a
// CommandQueue. It implements service.Service so a cmd/ front end can
// manage it alongside other long-lived subsystems.
type MetronomeService struct {
	engine    *audio.Engine
	queue     *audio.CommandQueue
	scheduler *timing.BeatScheduler
	tracker   *timing.BeatTracker
	registry  *status.Registry

	bpm           float64
	pollInterval  time.Duration
	sampleRate    int
	bufferLatency time.Duration

	stop chan struct{}
	done chan struct{}
}

// NewMetronomeService wires an engine, scheduler and metrics registry
// into a single pollable unit. bpm must already satisfy §3's tempo
// range; the caller validates via config.Configuration.Validate.
func NewMetronomeService(sig core.TimeSignature, click core.ClickType, bpm float64, sampleRate int) *MetronomeService {
	engine := audio.NewEngine(sampleRate)
	queue := audio.NewCommandQueue(64)
	engine.AttachQueue(queue)

	clock := timing.NewMonotonicTimeProvider()
	sched := timing.NewBeatScheduler(clock, sig, click)

	return &MetronomeService{
		engine:        engine,
		queue:         queue,
		scheduler:     sched,
		tracker:       timing.NewBeatTracker(),
		registry:      status.NewRegistry(),
		bpm:           bpm,
		pollInterval:  5 * time.Millisecond,
		sampleRate:    sampleRate,
		bufferLatency: 50 * time.Millisecond,
	}
}

// Name identifies this service for the lifecycle manager.
func (m *MetronomeService) Name() string { return "metronome" }

// Dependencies reports none; the service owns its own engine and clock.
func (m *MetronomeService) Dependencies() []string { return nil }

// Init accepts an optional bpm override as args[0].
func (m *MetronomeService) Init(args ...any) error {
	if len(args) > 0 {
		bpm, ok := args[0].(float64)
		if !ok {
			return fmt.Errorf("metronome: Init expects a float64 bpm override")
		}
		m.bpm = bpm
	}
	return nil
}

// Start opens the speaker device and launches the polling goroutine.
// The scheduler itself is started here too; its Start clears the next
// beat time, so the first poll emits a beat at once and schedules the
// following one from that instant.
func (m *MetronomeService) Start() error {
	if err := Device(m.engine, m.sampleRate, m.bufferLatency); err != nil {
		return fmt.Errorf("metronome: opening audio device: %w", err)
	}
	m.scheduler.Start()
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	go m.run()
	return nil
}

// Stop halts the poll loop, silences every voice and closes the device.
// Idempotent: calling it twice is a harmless no-op the second time.
func (m *MetronomeService) Stop() error {
	if m.stop == nil {
		return nil
	}
	close(m.stop)
	<-m.done
	m.stop = nil
	m.queue.Submit(audio.StopAllCommand())
	Close()
	return nil
}

// SetBPM changes the tempo the poll loop feeds the scheduler on its
// next tick. Safe to call from any goroutine.
func (m *MetronomeService) SetBPM(bpm float64) { m.bpm = bpm }

// Tracker exposes the precision observer for a visualizer front end.
func (m *MetronomeService) Tracker() *timing.BeatTracker { return m.tracker }

// Registry exposes the metrics facade so a cmd/ front end can surface
// engine and scheduler counters without reaching into internals.
func (m *MetronomeService) Registry() *status.Registry { return m.registry }

func (m *MetronomeService) run() {
	defer close(m.done)
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			ev := m.scheduler.Poll(m.bpm)
			if ev == nil {
				continue
			}
			m.tracker.Record(ev)
			m.dispatch(ev)
			m.publishStats()
		}
	}
}

// dispatch turns one BeatEvent into voice triggers, substituting the
// accent sound per §3.4 when the event carries accent=true.
func (m *MetronomeService) dispatch(ev *timing.BeatEvent) {
	for _, click := range ev.Samples {
		sound := click
		if ev.Accent {
			sound = click.AccentSubstitute()
		}
		waveform, freq, env := sound.SyntheticParams()
		amp := 1.0
		if ev.Accent {
			amp = core.AccentVolumeMultiplier(amp, 0.5)
		}
		m.queue.Submit(audio.TriggerCommand(waveform, freq, env, amp, nil))
	}
}

func (m *MetronomeService) publishStats() {
	stats := m.engine.Stats()
	m.registry.Ints.Get("sounds_played").Store(int64(stats.SoundsPlayed))
	m.registry.Ints.Get("voices_stolen").Store(int64(stats.VoicesStolen))
	m.registry.Ints.Get("triggers_dropped").Store(int64(stats.TriggersDropped))
	m.registry.Ints.Get("active_voices").Store(int64(stats.ActiveVoices))

	prec := m.tracker.Precision()
	m.registry.Floats.Get("jitter_stddev_ms").Set(prec.StdDevMs)
}
