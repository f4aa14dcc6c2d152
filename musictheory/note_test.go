package musictheory

import "testing"

func TestNoteFreqA4(t *testing.T) {
	got := NoteFreq(69)
	if got < 439.9 || got > 440.1 {
		t.Fatalf("expected ~440Hz for A4, got %v", got)
	}
}

func TestNoteFreqOutOfRange(t *testing.T) {
	if NoteFreq(-1) != 0 || NoteFreq(128) != 0 {
		t.Fatal("expected 0 for out-of-range MIDI notes")
	}
}

func TestParseNoteName(t *testing.T) {
	cases := []struct {
		name string
		want int
	}{
		{"C4", 60},
		{"A4", 69},
		{"C-1", 0},
		{"F#3", 54},
		{"Bb2", 46},
	}
	for _, c := range cases {
		got, err := ParseNoteName(c.name)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c.name, err)
		}
		if got != c.want {
			t.Errorf("%s: got %d, want %d", c.name, got, c.want)
		}
	}
}

func TestParseNoteNameRejectsGarbage(t *testing.T) {
	for _, bad := range []string{"", "H4", "C", "C##4", "Cx"} {
		if _, err := ParseNoteName(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
