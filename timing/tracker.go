package timing

import (
	"math"
	"sync"
	"time"
)

// trackerHistory is the number of recent inter-event intervals kept for
// precision analysis, per §4.8.
const trackerHistory = 32

// BeatTracker observes the BeatEvent stream and exposes running
// precision statistics for the visualization driver, decoupling the
// visible "current beat" from wall-clock extrapolation: visualizers
// should read CurrentBeat(), not guess from elapsed time.
type BeatTracker struct {
	mu sync.Mutex

	last      *BeatEvent
	lastAt    time.Time
	intervals []float64 // milliseconds, most recent trackerHistory kept
}

// NewBeatTracker builds an empty tracker.
func NewBeatTracker() *BeatTracker {
	return &BeatTracker{intervals: make([]float64, 0, trackerHistory)}
}

// Record ingests a newly emitted BeatEvent.
func (t *BeatTracker) Record(ev *BeatEvent) {
	if ev == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.last != nil {
		delta := ev.Timestamp.Sub(t.lastAt).Seconds() * 1000
		t.intervals = append(t.intervals, delta)
		if len(t.intervals) > trackerHistory {
			t.intervals = t.intervals[len(t.intervals)-trackerHistory:]
		}
	}
	t.last = ev
	t.lastAt = ev.Timestamp
}

// CurrentBeat returns the beat number and accent flag of the most
// recently sounded beat.
func (t *BeatTracker) CurrentBeat() (beatNumber int, accent bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == nil {
		return 0, false
	}
	return t.last.BeatNumber, t.last.Accent
}

// Precision is a snapshot of interval statistics over the tracked
// history window.
type Precision struct {
	MeanIntervalMs   float64
	StdDevMs         float64
	MaxDeviationMs   float64
	SampleCount      int
}

// Precision computes mean, standard deviation, and max deviation of the
// tracked inter-event deltas. A system is "in spec" per §8 when StdDevMs
// stays under 5ms.
func (t *BeatTracker) Precision() Precision {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.intervals)
	if n == 0 {
		return Precision{}
	}
	var sum float64
	for _, d := range t.intervals {
		sum += d
	}
	mean := sum / float64(n)

	var variance, maxDev float64
	for _, d := range t.intervals {
		dev := d - mean
		variance += dev * dev
		if dev < 0 {
			dev = -dev
		}
		if dev > maxDev {
			maxDev = dev
		}
	}
	variance /= float64(n)

	return Precision{
		MeanIntervalMs: mean,
		StdDevMs:       math.Sqrt(variance),
		MaxDeviationMs: maxDev,
		SampleCount:    n,
	}
}
