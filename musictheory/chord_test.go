package musictheory

import "testing"

func TestChordNotes(t *testing.T) {
	c := Chord{Root: 60, Quality: Major}
	notes := c.Notes()
	want := []int{60, 64, 67}
	if len(notes) != len(want) {
		t.Fatalf("got %v, want %v", notes, want)
	}
	for i := range want {
		if notes[i] != want[i] {
			t.Errorf("note %d: got %d, want %d", i, notes[i], want[i])
		}
	}
}

func TestChordFrequenciesMatchNotes(t *testing.T) {
	c := Chord{Root: 69, Quality: Minor}
	freqs := c.Frequencies()
	notes := c.Notes()
	if len(freqs) != len(notes) {
		t.Fatalf("frequency count mismatch: %d vs %d", len(freqs), len(notes))
	}
	for i, n := range notes {
		if freqs[i] != NoteFreq(n) {
			t.Errorf("freq %d: got %v, want %v", i, freqs[i], NoteFreq(n))
		}
	}
}

func TestDiatonicTriad(t *testing.T) {
	cases := []struct {
		degree      int
		wantRoot    int
		wantQuality ChordQuality
	}{
		{1, 60, Major},
		{2, 62, Minor},
		{5, 67, Major},
		{7, 71, Diminished},
		{8, 60, Major}, // wraps back to degree 1
	}
	for _, c := range cases {
		got := DiatonicTriad(60, c.degree)
		if got.Root != c.wantRoot || got.Quality != c.wantQuality {
			t.Errorf("degree %d: got {%d,%v}, want {%d,%v}", c.degree, got.Root, got.Quality, c.wantRoot, c.wantQuality)
		}
	}
}
