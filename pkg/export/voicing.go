package export

import (
	"strings"

	"github.com/james-see/jazzshed/pkg/harmony"
)

// Voicing returns a close-position block chord (root, 3rd, 5th and, when
// the symbol implies one, 7th or 6th) with the root in the given octave.
// C4 is MIDI note 60. ok is false for symbols without a recognizable root.
func Voicing(symbol string, octave int) (notes []uint8, ok bool) {
	root, ok := harmony.RootOf(symbol)
	if !ok {
		return nil, false
	}
	base := (octave+1)*12 + harmony.Index(string(root))

	for _, interval := range chordIntervals(harmony.SuffixOf(symbol)) {
		n := base + interval
		if n < 0 || n > 127 {
			continue
		}
		notes = append(notes, uint8(n))
	}
	return notes, len(notes) > 0
}

// chordIntervals maps a quality suffix to semitones above the root
func chordIntervals(suffix string) []int {
	s := strings.ToLower(suffix)
	major := strings.Contains(s, "maj")
	minor := strings.Contains(s, "m") && !major
	dim := strings.Contains(s, "dim") || strings.Contains(s, "m7b5")

	third := 4
	switch {
	case strings.Contains(s, "sus"):
		third = 5
	case minor:
		third = 3
	}

	fifth := 7
	switch {
	case dim || strings.Contains(s, "b5"):
		fifth = 6
	case strings.Contains(s, "aug") || strings.Contains(s, "+") || strings.Contains(s, "#5"):
		fifth = 8
	}

	intervals := []int{0, third, fifth}
	switch {
	case strings.Contains(s, "dim7"):
		intervals = append(intervals, 9)
	case major && (strings.Contains(s, "7") || strings.Contains(s, "9")):
		intervals = append(intervals, 11)
	case strings.Contains(s, "7") || strings.Contains(s, "9") || strings.Contains(s, "11") || strings.Contains(s, "13") || strings.Contains(s, "alt"):
		intervals = append(intervals, 10)
	case strings.Contains(s, "6"):
		intervals = append(intervals, 9)
	}
	return intervals
}
