package harmony

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want PitchClass
	}{
		{"C#", Db},
		{"D#", Eb},
		{"F#", Gb},
		{"G#", Ab},
		{"A#", Bb},
		{"Db", Db},
		{"B", B},
		{"H", "H"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"C#", "D#", "F#", "G#", "A#"}
	for _, pc := range PitchClasses {
		inputs = append(inputs, string(pc))
	}

	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(string(once)); twice != once {
			t.Errorf("Normalize(Normalize(%q)) = %q, want %q", in, twice, once)
		}
	}
}

func TestIntervalFrom(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"D", "G", 5},
		{"G", "C", 5},
		{"A", "D", 5},
		{"C", "C", 0},
		{"B", "C", 1},
		{"C", "B", 11},
		{"C#", "F#", 5},
		{"X", "C", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"->"+tt.b, func(t *testing.T) {
			if got := IntervalFrom(tt.a, tt.b); got != tt.want {
				t.Errorf("IntervalFrom(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestParseSymbol(t *testing.T) {
	tests := []struct {
		symbol string
		root   string
		suffix string
		ok     bool
	}{
		{"Cm7b5", "C", "m7b5", true},
		{"Bbmaj7", "Bb", "maj7", true},
		{"F#7alt", "F#", "7alt", true},
		{"G", "G", "", true},
		{"N.C.", "", "", false},
		{"", "", "", false},
		{"cm7", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			root, suffix, ok := ParseSymbol(tt.symbol)
			if root != tt.root || suffix != tt.suffix || ok != tt.ok {
				t.Errorf("ParseSymbol(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.symbol, root, suffix, ok, tt.root, tt.suffix, tt.ok)
			}
		})
	}
}

func TestTranspose(t *testing.T) {
	tests := []struct {
		symbol string
		to     Transposition
		want   string
	}{
		{"Cm7b5", TransposeBb, "Dm7b5"},
		{"G7alt", TransposeEb, "E7alt"},
		{"Bbmaj7", TransposeBb, "Cmaj7"},
		{"C#m7", TransposeBb, "Ebm7"},
		{"A7", TransposeEb, "Gb7"},
		{"N.C.", TransposeBb, "N.C."},
		{"N.C.", TransposeEb, "N.C."},
		{"Cb7", TransposeBb, "Cb7"},
		{"F#7", TransposeC, "F#7"},
		{"Dm7", Transposition("Ab"), "Dm7"},
	}

	for _, tt := range tests {
		t.Run(tt.symbol+"/"+string(tt.to), func(t *testing.T) {
			if got := Transpose(tt.symbol, tt.to); got != tt.want {
				t.Errorf("Transpose(%q, %s) = %q, want %q", tt.symbol, tt.to, got, tt.want)
			}
		})
	}
}

func TestTransposeConcertIsIdentity(t *testing.T) {
	symbols := []string{"Cmaj7", "C#m7", "Gb7alt", "N.C.", "", "%", "Bbm7b5"}
	for _, s := range symbols {
		if got := Transpose(s, TransposeC); got != s {
			t.Errorf("Transpose(%q, C) = %q, want unchanged", s, got)
		}
	}
}

func TestTransposeRoundTrip(t *testing.T) {
	inverse := map[Transposition]int{TransposeBb: -2, TransposeEb: -9}
	roots := append([]PitchClass{}, PitchClasses...)
	roots = append(roots, "C#", "D#", "F#", "G#", "A#")

	for to, back := range inverse {
		for _, r := range roots {
			there := Transpose(string(r), to)
			if got := TransposeBy(there, back); got != string(Normalize(string(r))) {
				t.Errorf("round trip %s via %s = %q, want %q", r, to, got, Normalize(string(r)))
			}
		}
	}
}

func TestTransposePreservesSuffix(t *testing.T) {
	symbols := []string{"Cm7b5", "Dbmaj7#11", "E7alt", "F#m6", "Ab13sus", "Bdim7", "G"}
	for _, s := range symbols {
		for _, to := range Transpositions {
			out := Transpose(s, to)
			if SuffixOf(out) != SuffixOf(s) {
				t.Errorf("Transpose(%q, %s) = %q, suffix %q changed to %q", s, to, out, SuffixOf(s), SuffixOf(out))
			}
		}
	}
}

func TestParseTransposition(t *testing.T) {
	tests := []struct {
		in   string
		want Transposition
	}{
		{"C", TransposeC},
		{"Bb", TransposeBb},
		{"bb", TransposeBb},
		{"Eb", TransposeEb},
		{"alto", TransposeEb},
		{"F", TransposeC},
		{"", TransposeC},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseTransposition(tt.in); got != tt.want {
				t.Errorf("ParseTransposition(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestTranspositionNext(t *testing.T) {
	if TransposeC.Next() != TransposeBb || TransposeBb.Next() != TransposeEb || TransposeEb.Next() != TransposeC {
		t.Error("Next() should cycle C -> Bb -> Eb -> C")
	}
}

func TestRootOf(t *testing.T) {
	if root, ok := RootOf("F#m7"); !ok || root != Gb {
		t.Errorf("RootOf(F#m7) = (%q, %v), want (Gb, true)", root, ok)
	}
	if _, ok := RootOf("N.C."); ok {
		t.Error("RootOf(N.C.) should not be ok")
	}
	if _, ok := RootOf("Fb7"); ok {
		t.Error("RootOf(Fb7) should not be ok: Fb is not a recognized spelling")
	}
}
