package timing

import (
	"time"

	"github.com/lixenwraith/polyphonica/core"
)

// SchedulerState is the BeatScheduler's run state.
type SchedulerState int

const (
	Stopped SchedulerState = iota
	Running
	Paused
)

// BeatScheduler is the discrete, drift-free beat clock from §4.6: it
// converts (tempo, time signature) into a stream of absolute trigger
// instants by rebasing its next-beat time from the actual trigger
// instant on every tick, never by accumulating a floating offset.
type BeatScheduler struct {
	clock TimeProvider

	state         SchedulerState
	timeSignature core.TimeSignature
	currentBeat   int
	nextBeatTime  *time.Time
	pausedAt      time.Time
	accentFirst   bool
	clickType     core.ClickType
}

// NewBeatScheduler builds a stopped scheduler in the given time
// signature, sounding click on every beat, using clock as its wall-clock
// source.
func NewBeatScheduler(clock TimeProvider, sig core.TimeSignature, click core.ClickType) *BeatScheduler {
	return &BeatScheduler{clock: clock, timeSignature: sig, currentBeat: 1, accentFirst: true, clickType: click}
}

// SetAccentFirstBeat toggles whether beat 1 of the measure is marked
// Accent in emitted events.
func (s *BeatScheduler) SetAccentFirstBeat(v bool) { s.accentFirst = v }

// SetClickType changes which sound each emitted beat carries.
func (s *BeatScheduler) SetClickType(click core.ClickType) { s.clickType = click }

// Start transitions Stopped/Paused -> Running, resetting currentBeat to
// 1 and clearing the scheduled next-beat time so the first Poll emits
// immediately and rebases from that instant.
func (s *BeatScheduler) Start() {
	s.state = Running
	s.currentBeat = 1
	s.nextBeatTime = nil
}

// Stop transitions to Stopped and clears all timing state.
func (s *BeatScheduler) Stop() {
	s.state = Stopped
	s.currentBeat = 1
	s.nextBeatTime = nil
}

// Pause captures the current instant and halts emission until Resume.
func (s *BeatScheduler) Pause() {
	if s.state != Running {
		return
	}
	s.pausedAt = s.clock.Now()
	s.state = Paused
}

// Resume shifts nextBeatTime forward by the elapsed pause duration so
// the pattern continues in phase rather than firing a burst of overdue
// beats.
func (s *BeatScheduler) Resume() {
	if s.state != Paused {
		return
	}
	elapsed := s.clock.Now().Sub(s.pausedAt)
	if s.nextBeatTime != nil {
		shifted := s.nextBeatTime.Add(elapsed)
		s.nextBeatTime = &shifted
	}
	s.state = Running
}

// SetTimeSignature changes the signature, clamping currentBeat if it now
// exceeds the new measure length.
func (s *BeatScheduler) SetTimeSignature(sig core.TimeSignature) {
	s.timeSignature = sig
	if s.currentBeat > sig.BeatsPerMeasure {
		s.currentBeat = sig.BeatsPerMeasure
	}
}

// State reports the scheduler's current run state.
func (s *BeatScheduler) State() SchedulerState { return s.state }

// CurrentBeat reports the 1-based beat number the scheduler is on.
func (s *BeatScheduler) CurrentBeat() int { return s.currentBeat }

// Poll advances the scheduler against bpm and returns zero or one
// BeatEvent, per the algorithm in §4.6. A poll before Start, or while
// Paused, always returns nil.
func (s *BeatScheduler) Poll(bpm float64) *BeatEvent {
	if s.state != Running {
		return nil
	}
	now := s.clock.Now()

	if s.nextBeatTime == nil {
		ev := s.emit(now, bpm)
		s.currentBeat = s.currentBeat%s.timeSignature.BeatsPerMeasure + 1
		s.schedule(now, bpm)
		return ev
	}

	if !now.Before(*s.nextBeatTime) {
		ev := s.emit(now, bpm)
		s.currentBeat = s.currentBeat%s.timeSignature.BeatsPerMeasure + 1
		s.schedule(now, bpm)
		return ev
	}

	return nil
}

func (s *BeatScheduler) emit(now time.Time, bpm float64) *BeatEvent {
	return &BeatEvent{
		BeatNumber:    s.currentBeat,
		Accent:        s.accentFirst && s.currentBeat == 1,
		Samples:       []core.ClickType{s.clickType},
		Timestamp:     now,
		TempoBPM:      bpm,
		TimeSignature: s.timeSignature,
	}
}

// schedule rebases nextBeatTime from base (the instant the current beat
// fired), not from the old nextBeatTime — the core drift-prevention step.
func (s *BeatScheduler) schedule(base time.Time, bpm float64) {
	next := base.Add(time.Duration(s.timeSignature.BeatDurationMs(bpm) * float64(time.Millisecond)))
	s.nextBeatTime = &next
}
