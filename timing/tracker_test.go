package timing

import (
	"testing"
	"time"
)

func TestBeatTrackerPrecision(t *testing.T) {
	tr := NewBeatTracker()
	base := time.Unix(0, 0)
	for i := 0; i < 10; i++ {
		tr.Record(&BeatEvent{
			BeatNumber: i%4 + 1,
			Accent:     i%4 == 0,
			Timestamp:  base.Add(time.Duration(i) * 500 * time.Millisecond),
		})
	}

	beat, accent := tr.CurrentBeat()
	if beat != 9%4+1 {
		t.Fatalf("expected beat %d, got %d", 9%4+1, beat)
	}
	_ = accent

	prec := tr.Precision()
	if prec.StdDevMs > 0.01 {
		t.Fatalf("expected near-zero jitter for synthetic evenly spaced events, got %v", prec.StdDevMs)
	}
	if prec.SampleCount != 9 {
		t.Fatalf("expected 9 intervals from 10 events, got %d", prec.SampleCount)
	}
}

func TestBeatTrackerEmptyIsZeroValue(t *testing.T) {
	tr := NewBeatTracker()
	prec := tr.Precision()
	if prec.SampleCount != 0 {
		t.Fatalf("expected empty tracker, got %d samples", prec.SampleCount)
	}
	beat, _ := tr.CurrentBeat()
	if beat != 0 {
		t.Fatalf("expected 0 before any events recorded, got %d", beat)
	}
}
