// Package harmony provides the lead-sheet data model, chord transposition and
// harmonic pattern recognition for jazz tunes
package harmony

// PitchClass is one of the 12 canonical note spellings (flat-preferred)
type PitchClass string

// Canonical pitch classes in chromatic order starting from C
const (
	C  PitchClass = "C"
	Db PitchClass = "Db"
	D  PitchClass = "D"
	Eb PitchClass = "Eb"
	E  PitchClass = "E"
	F  PitchClass = "F"
	Gb PitchClass = "Gb"
	G  PitchClass = "G"
	Ab PitchClass = "Ab"
	A  PitchClass = "A"
	Bb PitchClass = "Bb"
	B  PitchClass = "B"
)

// PitchClasses lists the canonical spellings, index = semitones above C
var PitchClasses = []PitchClass{C, Db, D, Eb, E, F, Gb, G, Ab, A, Bb, B}

var sharpToFlat = map[string]PitchClass{
	"C#": Db,
	"D#": Eb,
	"F#": Gb,
	"G#": Ab,
	"A#": Bb,
}

// Normalize maps sharp spellings to their canonical flat equivalent.
// Anything else is returned unchanged, including unrecognized input.
func Normalize(note string) PitchClass {
	if flat, ok := sharpToFlat[note]; ok {
		return flat
	}
	return PitchClass(note)
}

// Index returns the semitone offset of a note above C, or -1 if the note
// is not a recognized spelling
func Index(note string) int {
	pc := Normalize(note)
	for i, p := range PitchClasses {
		if p == pc {
			return i
		}
	}
	return -1
}

// Valid reports whether p is one of the canonical spellings
func (p PitchClass) Valid() bool {
	return Index(string(p)) >= 0
}

// Add moves a pitch class up by n semitones (n may be negative).
// Unrecognized pitch classes are returned unchanged.
func (p PitchClass) Add(n int) PitchClass {
	i := Index(string(p))
	if i < 0 {
		return p
	}
	return PitchClasses[mod12(i+n)]
}

// String returns the spelling
func (p PitchClass) String() string {
	return string(p)
}

// IntervalFrom returns the ascending semitone distance from a to b (0-11).
// Returns -1 if either note is unrecognized.
func IntervalFrom(a, b string) int {
	ia, ib := Index(a), Index(b)
	if ia < 0 || ib < 0 {
		return -1
	}
	return (ib - ia + 12) % 12
}

func mod12(n int) int {
	return ((n % 12) + 12) % 12
}
