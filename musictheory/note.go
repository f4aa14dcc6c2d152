// Package musictheory is the thin chord/note-name collaborator that sits
// outside the audio core: it turns note names and chord symbols into the
// raw frequencies the engine's trigger operations take. None of it runs
// on the audio thread.
package musictheory

import (
	"fmt"
	"math"
)

// NoteFrequencies contains precomputed frequencies for MIDI notes 0-127.
// A4 (note 69) = 440Hz, equal temperament.
var NoteFrequencies [128]float64

func init() {
	for i := range NoteFrequencies {
		NoteFrequencies[i] = 440.0 * math.Pow(2, (float64(i)-69.0)/12.0)
	}
}

// NoteFreq returns the frequency in Hz for a MIDI note number, or 0 if
// out of the representable range.
func NoteFreq(midi int) float64 {
	if midi < 0 || midi >= 128 {
		return 0
	}
	return NoteFrequencies[midi]
}

var pitchClasses = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// ParseNoteName parses a scientific pitch name such as "C4", "F#3", or
// "Bb2" into a MIDI note number. Octave 4 is the octave containing
// middle C (MIDI 60).
func ParseNoteName(name string) (int, error) {
	if len(name) < 2 {
		return 0, fmt.Errorf("musictheory: note name %q too short", name)
	}
	base, ok := pitchClasses[byte(upper(name[0]))]
	if !ok {
		return 0, fmt.Errorf("musictheory: unrecognized pitch letter in %q", name)
	}
	i := 1
	if name[i] == '#' || name[i] == 'b' {
		if name[i] == '#' {
			base++
		} else {
			base--
		}
		i++
	}
	if i >= len(name) {
		return 0, fmt.Errorf("musictheory: missing octave in %q", name)
	}
	octave := 0
	neg := false
	rest := name[i:]
	if rest[0] == '-' {
		neg = true
		rest = rest[1:]
	}
	if rest == "" {
		return 0, fmt.Errorf("musictheory: missing octave in %q", name)
	}
	for _, c := range rest {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("musictheory: invalid octave in %q", name)
		}
		octave = octave*10 + int(c-'0')
	}
	if neg {
		octave = -octave
	}
	midi := base + (octave+1)*12
	if midi < 0 || midi > 127 {
		return 0, fmt.Errorf("musictheory: note %q outside MIDI range", name)
	}
	return midi, nil
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}
