package harmony

import (
	"strconv"
	"strings"
)

// BeatsPerBar is fixed: every chart is laid out in 4/4
const BeatsPerBar = 4.0

// Chord is one chord symbol held for a number of beats
type Chord struct {
	Symbol       string  `json:"symbol" yaml:"symbol" validate:"required"`
	Duration     float64 `json:"duration" yaml:"duration" validate:"gt=0"`
	RomanNumeral string  `json:"roman,omitempty" yaml:"roman,omitempty"`
	Annotation   string  `json:"note,omitempty" yaml:"note,omitempty"`
}

// Section is a named, ordered part of a tune (A1, Bridge, chorus...)
type Section struct {
	ID     string  `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name" validate:"required"`
	Chords []Chord `json:"chords" yaml:"chords" validate:"dive"`
}

// Variant is an alternative harmonization of a tune
type Variant struct {
	Name        string    `json:"name" yaml:"name" validate:"required"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Sections    []Section `json:"sections" yaml:"sections" validate:"dive"`
}

// Category groups tunes in the library
type Category string

const (
	CategoryMedium        Category = "Medium"
	CategoryLatin         Category = "Latin"
	CategoryBlues         Category = "Blues"
	CategoryRhythmChanges Category = "Rhythm Changes"
	CategoryWaltz         Category = "3/4"
	CategoryBallad        Category = "Ballad"
	CategoryModalBlues    Category = "Modal/Blues"
)

// Mastery is the user's own rating of how well they know a tune
type Mastery string

const (
	MasteryLearning Mastery = "Learning"
	MasteryFamiliar Mastery = "Familiar"
	MasterySolid    Mastery = "Solid"
	MasteryOwned    Mastery = "Owned"
)

// MasteryLevels in ascending order
var MasteryLevels = []Mastery{MasteryLearning, MasteryFamiliar, MasterySolid, MasteryOwned}

// Next cycles to the following mastery level, wrapping back to Learning
func (m Mastery) Next() Mastery {
	for i, l := range MasteryLevels {
		if l == m {
			return MasteryLevels[(i+1)%len(MasteryLevels)]
		}
	}
	return MasteryLearning
}

// Valid reports whether m is a known level
func (m Mastery) Valid() bool {
	for _, l := range MasteryLevels {
		if l == m {
			return true
		}
	}
	return false
}

// IIVChain marks bars (1-indexed) that hold a ii-V toward a target key
type IIVChain struct {
	Bars      []int  `json:"bars" yaml:"bars"`
	TargetKey string `json:"targetKey" yaml:"targetKey"`
	Quality   string `json:"quality,omitempty" yaml:"quality,omitempty"`
}

// Loop is a suggested bar range to repeat
type Loop struct {
	Name  string `json:"name" yaml:"name"`
	Bars  []int  `json:"bars" yaml:"bars"`
	Focus string `json:"focus" yaml:"focus"`
}

// PracticeTools holds hand-written study material for a tune
type PracticeTools struct {
	IIVChains        []IIVChain `json:"iiVChains,omitempty" yaml:"iiVChains,omitempty"`
	RecommendedLoops []Loop     `json:"recommendedLoops,omitempty" yaml:"recommendedLoops,omitempty"`
	SoloingTips      []string   `json:"soloingTips,omitempty" yaml:"soloingTips,omitempty"`
}

// Tune is static reference data for one standard. Only Mastery changes at
// runtime.
type Tune struct {
	ID            string         `json:"id" yaml:"id" validate:"required"`
	Title         string         `json:"title" yaml:"title" validate:"required"`
	Composer      string         `json:"composer" yaml:"composer"`
	Year          int            `json:"year,omitempty" yaml:"year,omitempty"`
	Key           string         `json:"key" yaml:"key" validate:"required"`
	Form          string         `json:"form" yaml:"form"`
	Tempo         string         `json:"tempo" yaml:"tempo"`
	Style         string         `json:"style,omitempty" yaml:"style,omitempty"`
	RealBookPage  string         `json:"realBookPage,omitempty" yaml:"realBookPage,omitempty"`
	Category      Category       `json:"category" yaml:"category"`
	Mastery       Mastery        `json:"mastery" yaml:"mastery"`
	Sections      []Section      `json:"sections" yaml:"sections" validate:"required,dive"`
	Variants      []Variant      `json:"variants" yaml:"variants" validate:"dive"`
	PracticeTools *PracticeTools `json:"practiceTools,omitempty" yaml:"practiceTools,omitempty"`
}

// ActiveSections returns the sections of the selected variant, or the
// default sections when variant does not address one
func (t *Tune) ActiveSections(variant int) []Section {
	if variant >= 0 && variant < len(t.Variants) {
		return t.Variants[variant].Sections
	}
	return t.Sections
}

// VariantIndex resolves a variant by name (case-insensitive) or by its
// index in decimal. It returns -1, meaning the default sections, when
// nothing matches.
func (t *Tune) VariantIndex(ref string) int {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return -1
	}
	if i, err := strconv.Atoi(ref); err == nil {
		if i >= 0 && i < len(t.Variants) {
			return i
		}
		return -1
	}
	for i, v := range t.Variants {
		if strings.EqualFold(v.Name, ref) {
			return i
		}
	}
	return -1
}

// BPM returns the numeric tempo, or def when the tempo is descriptive
// ("Medium Swing") or missing
func (t *Tune) BPM(def float64) float64 {
	bpm, err := strconv.ParseFloat(strings.TrimSpace(t.Tempo), 64)
	if err != nil || bpm <= 0 {
		return def
	}
	return bpm
}

// FlattenChords concatenates the chords of all sections in order
func FlattenChords(sections []Section) []Chord {
	var out []Chord
	for _, s := range sections {
		out = append(out, s.Chords...)
	}
	return out
}

// TotalBeats sums every chord duration across sections
func TotalBeats(sections []Section) float64 {
	total := 0.0
	for _, s := range sections {
		for _, c := range s.Chords {
			total += c.Duration
		}
	}
	return total
}

// TransposeSections returns a copy of sections with every symbol rewritten
// for the target instrument
func TransposeSections(sections []Section, to Transposition) []Section {
	out := make([]Section, len(sections))
	for i, s := range sections {
		chords := make([]Chord, len(s.Chords))
		for j, c := range s.Chords {
			c.Symbol = Transpose(c.Symbol, to)
			chords[j] = c
		}
		s.Chords = chords
		out[i] = s
	}
	return out
}

// Chunk splits chords into consecutive groups of size (the last may be
// shorter). Used for phrase recall drills.
func Chunk(chords []Chord, size int) [][]Chord {
	if size <= 0 {
		return nil
	}
	var chunks [][]Chord
	for i := 0; i < len(chords); i += size {
		end := min(i+size, len(chords))
		chunks = append(chunks, chords[i:end])
	}
	return chunks
}
