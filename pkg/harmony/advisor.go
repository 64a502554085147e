package harmony

import "strings"

// Scale names returned by RecommendedScale
const (
	ScaleLocrianNat2  = "Locrian ♮2"
	ScaleAltered      = "Altered"
	ScaleLydian       = "Lydian"
	ScaleDorian       = "Dorian"
	ScaleMixolydian   = "Mixolydian"
	ScaleMelodicMinor = "Melodic Minor"
	ScaleIonian       = "Major (Ionian)"
)

// ScaleFamily is a coarse grouping of RecommendedScale results
type ScaleFamily string

const (
	FamilyLocrian      ScaleFamily = "Locrian"
	FamilyAltered      ScaleFamily = "Altered"
	FamilyMajor        ScaleFamily = "Major"
	FamilyDorian       ScaleFamily = "Dorian"
	FamilyMixolydian   ScaleFamily = "Mixolydian"
	FamilyMelodicMinor ScaleFamily = "Melodic Minor"
)

// RecommendedScale picks a scale for a chord symbol from its quality suffix.
// The first matching rule wins.
func RecommendedScale(symbol string) string {
	s := strings.ToLower(SuffixOf(symbol))
	switch {
	case strings.Contains(s, "m7b5"):
		return ScaleLocrianNat2
	case strings.Contains(s, "alt"):
		return ScaleAltered
	case strings.Contains(s, "maj7"):
		return ScaleLydian
	case strings.Contains(s, "m7"):
		return ScaleDorian
	case strings.HasSuffix(s, "7"):
		return ScaleMixolydian
	case strings.Contains(s, "m"):
		return ScaleMelodicMinor
	default:
		return ScaleIonian
	}
}

// FamilyOf collapses a chord's recommended scale to its family
func FamilyOf(symbol string) ScaleFamily {
	switch RecommendedScale(symbol) {
	case ScaleLocrianNat2:
		return FamilyLocrian
	case ScaleAltered:
		return FamilyAltered
	case ScaleDorian:
		return FamilyDorian
	case ScaleMixolydian:
		return FamilyMixolydian
	case ScaleMelodicMinor:
		return FamilyMelodicMinor
	default:
		return FamilyMajor
	}
}

// GuideTones are the 3rd and 7th of a chord
type GuideTones struct {
	Third   PitchClass `json:"third"`
	Seventh PitchClass `json:"seventh"`
}

// GuideTonesOf derives the 3rd and 7th from the root and suffix. Triads
// still get a 7th (major 7th) so every chord has something to show.
func GuideTonesOf(symbol string) (GuideTones, bool) {
	root, ok := RootOf(symbol)
	if !ok {
		return GuideTones{}, false
	}
	s := strings.ToLower(SuffixOf(symbol))
	minor := strings.Contains(s, "m") && !strings.Contains(s, "maj")

	third := 4
	if minor {
		third = 3
	}
	seventh := 11
	switch {
	case strings.Contains(s, "maj7"):
		seventh = 11
	case minor || strings.Contains(s, "7"):
		seventh = 10
	}
	return GuideTones{Third: root.Add(third), Seventh: root.Add(seventh)}, true
}

// ScaleUsage records where a scale family first appears in a tune
type ScaleUsage struct {
	Family  ScaleFamily `json:"family"`
	Section string      `json:"section"`
	Measure int         `json:"measure"` // 1-indexed within Section
	Chord   string      `json:"chord"`
}

// RequiredScales lists each scale family the harmony needs, in order of first
// occurrence, with the section and bar where it first shows up
func RequiredScales(sections []Section) []ScaleUsage {
	var (
		usages []ScaleUsage
		seen   = make(map[ScaleFamily]bool)
	)
	for _, sm := range GroupMeasures(sections) {
		for _, m := range sm.Measures {
			for _, c := range m.Chords {
				f := FamilyOf(c.Symbol)
				if seen[f] {
					continue
				}
				seen[f] = true
				usages = append(usages, ScaleUsage{
					Family:  f,
					Section: sm.Name,
					Measure: m.Number,
					Chord:   c.Symbol,
				})
			}
		}
	}
	return usages
}

// ScaleInfo describes a scale from the technique catalogue
type ScaleInfo struct {
	Name        string `json:"name"`
	Intervals   string `json:"intervals"`
	Description string `json:"description"`
}

// ScaleCatalogue is the technique reference shown beside the chart
var ScaleCatalogue = []ScaleInfo{
	{Name: "Major Bebop", Intervals: "1 2 3 4 5 b6 6 7", Description: "Major scale with a passing tone between 5 and 6."},
	{Name: "Harmonic Minor", Intervals: "1 2 b3 4 5 b6 7", Description: "Essential for minor ii-V-i progressions. Use on the V7alt chord."},
	{Name: "Melodic Minor", Intervals: "1 2 b3 4 5 6 7", Description: `The "Jazz Minor". Used for altered dominants.`},
	{Name: "Dorian", Intervals: "1 2 b3 4 5 6 b7", Description: "The standard minor sound for ii-V-I progressions."},
}
