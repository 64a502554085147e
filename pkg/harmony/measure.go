package harmony

import (
	"fmt"
	"strings"
)

// Measure is one bar of a chart. StartBeat counts from the top of the tune,
// not the section.
type Measure struct {
	Number    int     `json:"number"` // 1-indexed within its section
	StartBeat float64 `json:"startBeat"`
	Beats     float64 `json:"beats"`
	Chords    []Chord `json:"chords"`
}

// EndBeat is the first beat after the measure
func (m Measure) EndBeat() float64 {
	return m.StartBeat + m.Beats
}

// Contains reports whether beat falls inside the measure
func (m Measure) Contains(beat float64) bool {
	return beat >= m.StartBeat && beat < m.EndBeat()
}

// SectionMeasures pairs a section with its bars
type SectionMeasures struct {
	Section
	Measures []Measure `json:"measures"`
}

// GroupMeasures closes a bar each time the accumulated duration reaches 4
// beats. A chord that overshoots the barline keeps its full length, so the
// next bar starts where that chord ends. A trailing partial bar is kept.
func GroupMeasures(sections []Section) []SectionMeasures {
	out := make([]SectionMeasures, 0, len(sections))
	offset := 0.0
	for _, s := range sections {
		sm := SectionMeasures{Section: s}
		var (
			chords []Chord
			beats  float64
		)
		closeBar := func() {
			sm.Measures = append(sm.Measures, Measure{
				Number:    len(sm.Measures) + 1,
				StartBeat: offset,
				Beats:     beats,
				Chords:    chords,
			})
			offset += beats
			chords, beats = nil, 0
		}
		for _, c := range s.Chords {
			chords = append(chords, c)
			beats += c.Duration
			if beats >= BeatsPerBar {
				closeBar()
			}
		}
		if len(chords) > 0 {
			closeBar()
		}
		out = append(out, sm)
	}
	return out
}

// ParseBar expands a bar-string token into chords: "Cm7 F7" is two chords of
// two beats each, "Bbmaj7" is one chord filling the bar
func ParseBar(bar string) []Chord {
	symbols := strings.Fields(bar)
	if len(symbols) == 0 {
		return nil
	}
	dur := BeatsPerBar / float64(len(symbols))
	chords := make([]Chord, len(symbols))
	for i, s := range symbols {
		chords[i] = Chord{Symbol: s, Duration: dur}
	}
	return chords
}

// SectionFromBars builds a section from bar-string shorthand
func SectionFromBars(id, name string, bars []string) Section {
	var chords []Chord
	for _, b := range bars {
		chords = append(chords, ParseBar(b)...)
	}
	if id == "" {
		id = fmt.Sprintf("sec-%s", strings.ToLower(strings.ReplaceAll(name, " ", "-")))
	}
	return Section{ID: id, Name: name, Chords: chords}
}
