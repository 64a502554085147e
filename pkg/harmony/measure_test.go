package harmony

import (
	"testing"
)

func TestParseBar(t *testing.T) {
	tests := []struct {
		bar      string
		symbols  []string
		duration float64
	}{
		{"Bbmaj7", []string{"Bbmaj7"}, 4},
		{"Cm7 F7", []string{"Cm7", "F7"}, 2},
		{"  Dm7   G7  ", []string{"Dm7", "G7"}, 2},
		{"C A7 Dm7 G7", []string{"C", "A7", "Dm7", "G7"}, 1},
		{"", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.bar, func(t *testing.T) {
			chords := ParseBar(tt.bar)
			if len(chords) != len(tt.symbols) {
				t.Fatalf("ParseBar(%q) returned %d chords, want %d", tt.bar, len(chords), len(tt.symbols))
			}
			for i, c := range chords {
				if c.Symbol != tt.symbols[i] || c.Duration != tt.duration {
					t.Errorf("chord %d = %s/%v, want %s/%v", i, c.Symbol, c.Duration, tt.symbols[i], tt.duration)
				}
			}
		})
	}
}

func TestGroupMeasures(t *testing.T) {
	sections := []Section{
		SectionFromBars("a", "A", []string{"Cm7 F7", "Bbmaj7", "Ebmaj7"}),
		SectionFromBars("b", "B", []string{"Am7b5 D7", "Gm6"}),
	}

	grouped := GroupMeasures(sections)
	if len(grouped) != 2 {
		t.Fatalf("GroupMeasures() returned %d sections, want 2", len(grouped))
	}

	a, b := grouped[0], grouped[1]
	if len(a.Measures) != 3 || len(b.Measures) != 2 {
		t.Fatalf("measure counts = %d, %d, want 3, 2", len(a.Measures), len(b.Measures))
	}
	if len(a.Measures[0].Chords) != 2 {
		t.Errorf("first bar has %d chords, want 2", len(a.Measures[0].Chords))
	}

	wantStarts := []float64{0, 4, 8, 12, 16}
	var starts []float64
	for _, sm := range grouped {
		for _, m := range sm.Measures {
			starts = append(starts, m.StartBeat)
		}
	}
	for i := range wantStarts {
		if starts[i] != wantStarts[i] {
			t.Errorf("start beats = %v, want %v", starts, wantStarts)
			break
		}
	}

	if b.Measures[0].Number != 1 || b.Measures[1].Number != 2 {
		t.Errorf("measure numbers restart per section, got %d, %d", b.Measures[0].Number, b.Measures[1].Number)
	}
}

func TestGroupMeasuresCarriesOvershoot(t *testing.T) {
	sections := []Section{{Name: "A", Chords: []Chord{
		{Symbol: "Dm7", Duration: 3},
		{Symbol: "G7", Duration: 3}, // crosses the barline
		{Symbol: "Cmaj7", Duration: 2},
	}}}

	measures := GroupMeasures(sections)[0].Measures
	if len(measures) != 2 {
		t.Fatalf("got %d measures, want 2", len(measures))
	}
	if measures[0].Beats != 6 {
		t.Errorf("first measure beats = %v, want 6", measures[0].Beats)
	}
	if measures[1].StartBeat != 6 {
		t.Errorf("second measure start = %v, want 6", measures[1].StartBeat)
	}
	if measures[1].Beats != 2 {
		t.Errorf("trailing partial measure beats = %v, want 2", measures[1].Beats)
	}
}

func TestGroupMeasuresTotals(t *testing.T) {
	sections := []Section{
		SectionFromBars("", "A", []string{"Bb6 G7", "Cm7 F7", "Dm7 G7 C7", "Fm7 Bb7"}),
		{Name: "tag", Chords: []Chord{{Symbol: "Bb6", Duration: 5}, {Symbol: "F7", Duration: 1.5}}},
	}

	for _, sm := range GroupMeasures(sections) {
		var chordBeats, measureBeats float64
		for _, c := range sm.Chords {
			chordBeats += c.Duration
		}
		for _, m := range sm.Measures {
			measureBeats += m.Beats
		}
		if chordBeats != measureBeats {
			t.Errorf("section %s: measures hold %v beats, chords %v", sm.Name, measureBeats, chordBeats)
		}
	}
}

func TestMeasureContains(t *testing.T) {
	m := Measure{StartBeat: 8, Beats: 4}
	if !m.Contains(8) || !m.Contains(11.5) || m.Contains(12) || m.Contains(7) {
		t.Error("Contains() should cover [8,12)")
	}
}

func TestActiveSections(t *testing.T) {
	tune := &Tune{
		Sections: []Section{{Name: "default"}},
		Variants: []Variant{
			{Name: "Basic", Sections: []Section{{Name: "basic"}}},
			{Name: "Advanced", Sections: []Section{{Name: "advanced"}}},
		},
	}

	tests := []struct {
		variant int
		want    string
	}{
		{-1, "default"},
		{0, "basic"},
		{1, "advanced"},
		{2, "default"},
	}
	for _, tt := range tests {
		if got := tune.ActiveSections(tt.variant)[0].Name; got != tt.want {
			t.Errorf("ActiveSections(%d) = %s, want %s", tt.variant, got, tt.want)
		}
	}
}

func TestVariantIndex(t *testing.T) {
	tune := &Tune{Variants: []Variant{{Name: "Basic"}, {Name: "Advanced"}}}

	tests := []struct {
		ref  string
		want int
	}{
		{"", -1},
		{"0", 0},
		{"1", 1},
		{"2", -1},
		{"-1", -1},
		{"advanced", 1},
		{"Basic", 0},
		{"bebop", -1},
	}
	for _, tt := range tests {
		if got := tune.VariantIndex(tt.ref); got != tt.want {
			t.Errorf("VariantIndex(%q) = %d, want %d", tt.ref, got, tt.want)
		}
	}
}

func TestTuneBPM(t *testing.T) {
	if got := (&Tune{Tempo: "150"}).BPM(120); got != 150 {
		t.Errorf("BPM() = %v, want 150", got)
	}
	if got := (&Tune{Tempo: "Medium Swing"}).BPM(120); got != 120 {
		t.Errorf("BPM() = %v, want default 120", got)
	}
}

func TestMasteryNext(t *testing.T) {
	tests := []struct {
		in, want Mastery
	}{
		{MasteryLearning, MasteryFamiliar},
		{MasteryFamiliar, MasterySolid},
		{MasterySolid, MasteryOwned},
		{MasteryOwned, MasteryLearning},
		{Mastery("bogus"), MasteryLearning},
	}
	for _, tt := range tests {
		if got := tt.in.Next(); got != tt.want {
			t.Errorf("%s.Next() = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestChunk(t *testing.T) {
	chords := bars("C", "D7", "Dm7", "G7", "C", "E7", "A7", "Dm7", "G7")
	chunks := Chunk(chords, 4)

	if len(chunks) != 3 {
		t.Fatalf("Chunk() returned %d chunks, want 3", len(chunks))
	}
	if len(chunks[2]) != 1 || chunks[2][0].Symbol != "G7" {
		t.Errorf("last chunk = %+v, want [G7]", chunks[2])
	}
	if Chunk(chords, 0) != nil {
		t.Error("Chunk(size 0) should return nil")
	}
}
