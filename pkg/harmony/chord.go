package harmony

import (
	"regexp"
	"strings"
)

// Transposition is the instrument a performer reads from
type Transposition string

const (
	TransposeC  Transposition = "C"  // Concert pitch (piano, guitar, trombone)
	TransposeBb Transposition = "Bb" // Tenor/soprano sax, trumpet, clarinet
	TransposeEb Transposition = "Eb" // Alto/baritone sax
)

// Transpositions lists the supported reading keys
var Transpositions = []Transposition{TransposeC, TransposeBb, TransposeEb}

// ParseTransposition parses an instrument key. Unknown values fall back to
// concert pitch.
func ParseTransposition(s string) Transposition {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bb", "b♭", "tenor", "trumpet":
		return TransposeBb
	case "eb", "e♭", "alto", "bari":
		return TransposeEb
	default:
		return TransposeC
	}
}

// Semitones returns how far the written pitch sits above concert pitch
func (t Transposition) Semitones() int {
	switch t {
	case TransposeBb:
		return 2 // major second up
	case TransposeEb:
		return 9 // major sixth up
	default:
		return 0
	}
}

// Next cycles C -> Bb -> Eb -> C
func (t Transposition) Next() Transposition {
	switch t {
	case TransposeC:
		return TransposeBb
	case TransposeBb:
		return TransposeEb
	default:
		return TransposeC
	}
}

var symbolPattern = regexp.MustCompile(`^([A-G][b#]?)(.*)$`)

// ParseSymbol splits a chord symbol into its root spelling and quality suffix.
// ok is false when the symbol has no recognizable root.
func ParseSymbol(symbol string) (root, suffix string, ok bool) {
	m := symbolPattern.FindStringSubmatch(symbol)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// RootOf returns the normalized root of a chord symbol
func RootOf(symbol string) (PitchClass, bool) {
	root, _, ok := ParseSymbol(symbol)
	if !ok {
		return "", false
	}
	pc := Normalize(root)
	if !pc.Valid() {
		return "", false
	}
	return pc, true
}

// SuffixOf returns the quality suffix of a chord symbol, or the empty string
// if the symbol has no recognizable root
func SuffixOf(symbol string) string {
	_, suffix, _ := ParseSymbol(symbol)
	return suffix
}

// Transpose rewrites a concert-pitch chord symbol for the target instrument.
// The suffix is never touched; symbols without a recognizable root are
// returned as given.
func Transpose(symbol string, to Transposition) string {
	return TransposeBy(symbol, to.Semitones())
}

// TransposeBy shifts the root of a chord symbol by n semitones
func TransposeBy(symbol string, n int) string {
	if mod12(n) == 0 {
		return symbol
	}
	root, suffix, ok := ParseSymbol(symbol)
	if !ok {
		return symbol
	}
	pc := Normalize(root)
	if !pc.Valid() {
		return symbol
	}
	return string(pc.Add(n)) + suffix
}

// TransposeKey transposes a pitch class for the target instrument
func TransposeKey(key PitchClass, to Transposition) PitchClass {
	return key.Add(to.Semitones())
}
