package harmony

import (
	"testing"
)

func TestRecommendedScale(t *testing.T) {
	tests := []struct {
		symbol string
		want   string
	}{
		{"Am7b5", ScaleLocrianNat2},
		{"G7alt", ScaleAltered},
		{"Ebmaj7", ScaleLydian},
		{"Dm7", ScaleDorian},
		{"G7", ScaleMixolydian},
		{"Gm6", ScaleMelodicMinor},
		{"Cm", ScaleMelodicMinor},
		{"Bb6", ScaleIonian},
		{"C", ScaleIonian},
		{"N.C.", ScaleIonian},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			if got := RecommendedScale(tt.symbol); got != tt.want {
				t.Errorf("RecommendedScale(%q) = %q, want %q", tt.symbol, got, tt.want)
			}
		})
	}
}

func TestGuideTonesOf(t *testing.T) {
	tests := []struct {
		symbol  string
		third   PitchClass
		seventh PitchClass
	}{
		{"Cmaj7", E, B},
		{"Cm7", Eb, Bb},
		{"G7", B, F},
		{"Am7b5", C, G},
		{"Dbmaj7", F, C},
		{"C", E, B},
		{"Gm6", Bb, F},
		{"F#7", Bb, E},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			got, ok := GuideTonesOf(tt.symbol)
			if !ok {
				t.Fatalf("GuideTonesOf(%q) not ok", tt.symbol)
			}
			if got.Third != tt.third || got.Seventh != tt.seventh {
				t.Errorf("GuideTonesOf(%q) = %s/%s, want %s/%s", tt.symbol, got.Third, got.Seventh, tt.third, tt.seventh)
			}
		})
	}

	if _, ok := GuideTonesOf("N.C."); ok {
		t.Error("GuideTonesOf(N.C.) should not be ok")
	}
}

func TestGuideTonesAfterTransposition(t *testing.T) {
	got, ok := GuideTonesOf(Transpose("Cmaj7", TransposeBb))
	if !ok || got.Third != Gb || got.Seventh != Db {
		t.Errorf("GuideTonesOf(Dmaj7) = %+v, want Gb/Db", got)
	}
}

func TestRequiredScales(t *testing.T) {
	sections := []Section{
		SectionFromBars("", "A1", []string{"Cm7 F7", "Bbmaj7", "Ebmaj7", "Am7b5 D7alt", "Gm6"}),
		SectionFromBars("", "B", []string{"Am7b5", "D7", "Gm6", "G7"}),
	}

	usages := RequiredScales(sections)

	want := []ScaleUsage{
		{Family: FamilyDorian, Section: "A1", Measure: 1, Chord: "Cm7"},
		{Family: FamilyMixolydian, Section: "A1", Measure: 1, Chord: "F7"},
		{Family: FamilyMajor, Section: "A1", Measure: 2, Chord: "Bbmaj7"},
		{Family: FamilyLocrian, Section: "A1", Measure: 4, Chord: "Am7b5"},
		{Family: FamilyAltered, Section: "A1", Measure: 4, Chord: "D7alt"},
		{Family: FamilyMelodicMinor, Section: "A1", Measure: 5, Chord: "Gm6"},
	}
	if len(usages) != len(want) {
		t.Fatalf("RequiredScales() = %+v, want %d entries", usages, len(want))
	}
	for i := range want {
		if usages[i] != want[i] {
			t.Errorf("usage %d = %+v, want %+v", i, usages[i], want[i])
		}
	}
}

func TestFamilyOfCollapsesMajor(t *testing.T) {
	if FamilyOf("Cmaj7") != FamilyMajor || FamilyOf("C6") != FamilyMajor {
		t.Error("Lydian and Ionian chords should share the Major family")
	}
}
