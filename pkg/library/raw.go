package library

import (
	"fmt"
	"strings"

	"github.com/james-see/jazzshed/pkg/harmony"
)

// rawSection is a section as written in YAML: either detailed chords or
// bar-string shorthand
type rawSection struct {
	ID     string          `yaml:"id"`
	Name   string          `yaml:"name"`
	Chords []harmony.Chord `yaml:"chords"`
	Bars   []string        `yaml:"bars"`
}

type rawVariant struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Sections    []rawSection `yaml:"sections"`
}

type rawTune struct {
	ID            string                 `yaml:"id"`
	Title         string                 `yaml:"title"`
	Composer      string                 `yaml:"composer"`
	Year          int                    `yaml:"year"`
	Key           string                 `yaml:"key"`
	Form          string                 `yaml:"form"`
	Tempo         string                 `yaml:"tempo"`
	Style         string                 `yaml:"style"`
	RealBookPage  string                 `yaml:"realBookPage"`
	Category      harmony.Category       `yaml:"category"`
	Mastery       harmony.Mastery        `yaml:"mastery"`
	Sections      []rawSection           `yaml:"sections"`
	Variants      []rawVariant           `yaml:"variants"`
	PracticeTools *harmony.PracticeTools `yaml:"practiceTools"`
}

func (r rawTune) tune() *harmony.Tune {
	t := &harmony.Tune{
		ID:            r.ID,
		Title:         r.Title,
		Composer:      r.Composer,
		Year:          r.Year,
		Key:           r.Key,
		Form:          r.Form,
		Tempo:         r.Tempo,
		Style:         r.Style,
		RealBookPage:  r.RealBookPage,
		Category:      r.Category,
		Mastery:       r.Mastery,
		Sections:      expandSections(r.ID, "", r.Sections),
		PracticeTools: r.PracticeTools,
	}
	if t.Mastery == "" {
		t.Mastery = harmony.MasteryLearning
	}
	for _, v := range r.Variants {
		t.Variants = append(t.Variants, harmony.Variant{
			Name:        v.Name,
			Description: v.Description,
			Sections:    expandSections(r.ID, v.Name, v.Sections),
		})
	}
	return t
}

func expandSections(tuneID, variant string, raw []rawSection) []harmony.Section {
	out := make([]harmony.Section, 0, len(raw))
	for i, rs := range raw {
		id := rs.ID
		if id == "" {
			id = sectionID(tuneID, variant, rs.Name, i)
		}
		if len(rs.Bars) > 0 {
			out = append(out, harmony.SectionFromBars(id, rs.Name, rs.Bars))
			continue
		}
		chords := make([]harmony.Chord, len(rs.Chords))
		for j, c := range rs.Chords {
			if c.Duration == 0 {
				c.Duration = harmony.BeatsPerBar
			}
			chords[j] = c
		}
		out = append(out, harmony.Section{ID: id, Name: rs.Name, Chords: chords})
	}
	return out
}

func sectionID(tuneID, variant, name string, index int) string {
	parts := []string{tuneID}
	if variant != "" {
		parts = append(parts, variant)
	}
	parts = append(parts, name, fmt.Sprint(index+1))
	return strings.ToLower(strings.ReplaceAll(strings.Join(parts, "-"), " ", "-"))
}
