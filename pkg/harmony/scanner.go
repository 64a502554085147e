package harmony

import (
	"fmt"
	"strings"
)

// PatternType names a recognized harmonic idiom
type PatternType string

const (
	PatternIIVI       PatternType = "ii-V-I"
	PatternMinorIIVI  PatternType = "minor-ii-V-i"
	PatternTurnaround PatternType = "turnaround"
)

// fourthUp is root motion up a perfect fourth (down a fifth)
const fourthUp = 5

// Pattern is a detected idiom covering [StartBeat, EndBeat)
type Pattern struct {
	ID        string      `json:"id"`
	Type      PatternType `json:"type"`
	Key       PitchClass  `json:"key"`
	StartBeat float64     `json:"startBeat"`
	EndBeat   float64     `json:"endBeat"`
	Chords    []string    `json:"chords"`
}

// Contains reports whether beat falls inside the pattern
func (p Pattern) Contains(beat float64) bool {
	return beat >= p.StartBeat && beat < p.EndBeat
}

// Cadence reports whether the pattern is a resolved ii-V (major or minor)
func (p Pattern) Cadence() bool {
	return p.Type == PatternIIVI || p.Type == PatternMinorIIVI
}

// Transposed respells the key and chords for the target instrument
func (p Pattern) Transposed(to Transposition) Pattern {
	out := p
	out.Key = TransposeKey(p.Key, to)
	out.Chords = make([]string, len(p.Chords))
	for i, c := range p.Chords {
		out.Chords[i] = Transpose(c, to)
	}
	return out
}

// ScaleHint is the scale path a soloist would follow through the pattern
func (t PatternType) ScaleHint() string {
	switch t {
	case PatternIIVI:
		return "Dorian → Mixo → Ionian"
	case PatternMinorIIVI:
		return "m7b5 → Alt → Melodic m"
	case PatternTurnaround:
		return "I-VI-ii-V Cycles"
	default:
		return ""
	}
}

// scanned is a chord with its parsed root and lower-cased suffix
type scanned struct {
	Chord
	root   PitchClass
	suffix string
	ok     bool
}

func scanChord(c Chord) scanned {
	root, ok := RootOf(c.Symbol)
	return scanned{
		Chord:  c,
		root:   root,
		suffix: strings.ToLower(SuffixOf(c.Symbol)),
		ok:     ok,
	}
}

func fourthBetween(a, b scanned) bool {
	return a.ok && b.ok && IntervalFrom(string(a.root), string(b.root)) == fourthUp
}

func isHalfDiminished(s scanned) bool {
	return strings.Contains(s.suffix, "m7b5") || strings.Contains(s.suffix, "dim")
}

func isMinorSeventh(s scanned) bool {
	return strings.Contains(s.suffix, "m7")
}

func isDominant(s scanned) bool {
	return strings.HasSuffix(s.suffix, "7") || strings.Contains(s.suffix, "alt")
}

// isMinorTonic is a plain substring test, so maj chords also close a minor
// ii-V-i
func isMinorTonic(s scanned) bool {
	return strings.Contains(s.suffix, "m")
}

func isMajorResolution(s scanned) bool {
	return strings.Contains(s.suffix, "maj") ||
		strings.Contains(s.suffix, "6") ||
		(strings.HasSuffix(s.suffix, "7") && !strings.Contains(s.suffix, "m7"))
}

// Scan detects ii-V-I, minor ii-V-i and turnaround patterns in a
// concert-pitch chord sequence.
//
// The scan advances exactly one chord per step whatever it matched, so a
// chord that belongs to one pattern can also open the next one. Cadences
// may therefore overlap. Turnarounds are only emitted on beats not already
// covered by a cadence.
func Scan(chords []Chord) []Pattern {
	var (
		patterns []Pattern
		beat     float64
	)
	for i := range chords {
		c1 := scanChord(chords[i])
		var c2, c3 *scanned
		if i+1 < len(chords) {
			s := scanChord(chords[i+1])
			c2 = &s
		}
		if i+2 < len(chords) {
			s := scanChord(chords[i+2])
			c3 = &s
		}

		switch {
		case c2 != nil && c3 != nil &&
			isHalfDiminished(c1) &&
			fourthBetween(c1, *c2) && fourthBetween(*c2, *c3) &&
			isMinorTonic(*c3):
			patterns = append(patterns, newPattern(PatternMinorIIVI, c3.root, beat, i, c1, *c2, *c3))

		case c2 != nil && c3 != nil &&
			isMinorSeventh(c1) && !strings.Contains(c1.suffix, "b5") &&
			isDominant(*c2) && isMajorResolution(*c3) &&
			fourthBetween(c1, *c2) && fourthBetween(*c2, *c3):
			patterns = append(patterns, newPattern(PatternIIVI, c3.root, beat, i, c1, *c2, *c3))

		case c2 != nil &&
			isMinorSeventh(c1) && isDominant(*c2) &&
			fourthBetween(c1, *c2) &&
			!claimed(patterns, beat):
			patterns = append(patterns, newPattern(PatternTurnaround, c2.root, beat, i, c1, *c2))
		}

		beat += c1.Duration
	}
	return patterns
}

func newPattern(t PatternType, key PitchClass, start float64, index int, chords ...scanned) Pattern {
	p := Pattern{
		ID:        fmt.Sprintf("%s-%d", t, index),
		Type:      t,
		Key:       key,
		StartBeat: start,
		EndBeat:   start,
		Chords:    make([]string, len(chords)),
	}
	for i, c := range chords {
		p.Chords[i] = c.Symbol
		p.EndBeat += c.Duration
	}
	return p
}

// claimed reports whether a cadence already covers beat
func claimed(patterns []Pattern, beat float64) bool {
	for _, p := range patterns {
		if p.Cadence() && p.Contains(beat) {
			return true
		}
	}
	return false
}

// PatternAt returns the pattern sounding at beat, preferring cadences over
// turnarounds and earlier detections over later ones
func PatternAt(patterns []Pattern, beat float64) (Pattern, bool) {
	var (
		fallback Pattern
		found    bool
	)
	for _, p := range patterns {
		if !p.Contains(beat) {
			continue
		}
		if p.Cadence() {
			return p, true
		}
		if !found {
			fallback, found = p, true
		}
	}
	return fallback, found
}

// ScanTune scans the active harmony of a tune
func ScanTune(t *Tune, variant int) []Pattern {
	return Scan(FlattenChords(t.ActiveSections(variant)))
}
