package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/james-see/jazzshed/pkg/advice"
	"github.com/james-see/jazzshed/pkg/harmony"
)

// Smoky club palette
var (
	brass     = lipgloss.Color("#E0A526")
	cream     = lipgloss.Color("#F2E8CF")
	smoke     = lipgloss.Color("#8A8A8A")
	midnight  = lipgloss.Color("#1B2A41")
	cadenceGn = lipgloss.Color("#6BCB77")
	minorPurp = lipgloss.Color("#B084F5")
	turnYel   = lipgloss.Color("#FFD93D")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(brass).
			Background(midnight).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(cream).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(brass).
			Bold(true).
			PaddingLeft(2)

	dimStyle = lipgloss.NewStyle().Foreground(smoke)

	statusStyle = lipgloss.NewStyle().
			Foreground(turnYel).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(brass).
			Padding(1, 2)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(midnight).
			Background(brass).
			Padding(0, 1)

	barStyle = lipgloss.NewStyle().
			Width(20).
			Foreground(cream)

	playheadStyle = lipgloss.NewStyle().
			Bold(true).
			Reverse(true)
)

// patternStyles color chords by the idiom they belong to
var patternStyles = map[harmony.PatternType]lipgloss.Style{
	harmony.PatternIIVI:       lipgloss.NewStyle().Foreground(cadenceGn),
	harmony.PatternMinorIIVI:  lipgloss.NewStyle().Foreground(minorPurp),
	harmony.PatternTurnaround: lipgloss.NewStyle().Foreground(turnYel),
}

const barsPerLine = 4

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(logo())
	s.WriteString("\n")

	switch m.state {
	case StateList:
		s.WriteString(m.viewList())
	case StateChart:
		s.WriteString(m.viewChart())
	case StateMoment:
		s.WriteString(m.viewMoment())
	case StateAdvice:
		s.WriteString(m.viewAdvice())
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateInspect:
		s.WriteString(m.viewInspect())
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.help()))
	return s.String()
}

func (m Model) help() string {
	switch m.state {
	case StateChart:
		return "space: play/stop • r: rewind • t: transpose • v: variant • m: mastery • a: advice • e: export • n: note • esc: back"
	case StateMoment:
		return "enter: save • esc: cancel"
	case StateAdvice, StateInspect:
		return "enter: back • q: quit"
	case StateFilePicker:
		return "enter: inspect • esc: back"
	default:
		return "↑/↓: navigate • enter: open • c: category • i: inspect MIDI • q: quit"
	}
}

func (m Model) viewList() string {
	var s strings.Builder

	filter := "ALL TUNES"
	if m.category != "" {
		filter = strings.ToUpper(string(m.category))
	}
	s.WriteString(titleStyle.Render(fmt.Sprintf(" %s ", filter)))
	s.WriteString("\n\n")

	if len(m.tunes) == 0 {
		s.WriteString(dimStyle.Render("  No tunes in this category"))
	}
	for i, t := range m.tunes {
		line := fmt.Sprintf("%-28s %-10s %s", t.Title, t.Key, t.Mastery)
		if i == m.listIndex {
			s.WriteString(selectedStyle.Render("▸ " + line))
			s.WriteString("\n")
			s.WriteString(lipgloss.NewStyle().Foreground(turnYel).PaddingLeft(4).Render(
				fmt.Sprintf("%s • %s • %s", t.Composer, t.Form, t.Tempo)))
		} else {
			s.WriteString(menuStyle.Render("  " + line))
		}
		s.WriteString("\n")
	}

	if m.err != nil {
		s.WriteString("\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s", m.err)))
	}
	return boxStyle.Render(s.String())
}

func (m Model) viewChart() string {
	var s strings.Builder
	t := m.tune

	s.WriteString(titleStyle.Render(fmt.Sprintf(" %s ", strings.ToUpper(t.Title))))
	s.WriteString("\n")

	variant := "Default"
	if m.variant >= 0 {
		variant = t.Variants[m.variant].Name
	}
	s.WriteString(dimStyle.Render(fmt.Sprintf("%s • Key %s • %s • %s • %s-instrument • %s • %s",
		t.Composer, harmony.Transpose(t.Key, m.transposition), t.Form, t.Tempo,
		m.transposition, variant, t.Mastery)))
	s.WriteString("\n\n")

	sections := harmony.GroupMeasures(harmony.TransposeSections(t.ActiveSections(m.variant), m.transposition))
	for _, sec := range sections {
		s.WriteString(sectionStyle.Render(sec.Name))
		s.WriteString("\n")
		for i := 0; i < len(sec.Measures); i += barsPerLine {
			end := min(i+barsPerLine, len(sec.Measures))
			cells := make([]string, 0, barsPerLine)
			for _, bar := range sec.Measures[i:end] {
				cells = append(cells, m.renderBar(bar))
			}
			s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
			s.WriteString("│\n")
		}
	}

	s.WriteString("\n")
	s.WriteString(m.legend())
	if info := m.playheadInfo(sections); info != "" {
		s.WriteString("\n")
		s.WriteString(info)
	}
	if m.status != "" {
		s.WriteString("\n")
		s.WriteString(statusStyle.Render(m.status))
	}
	if m.err != nil {
		s.WriteString("\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s", m.err)))
	}
	return boxStyle.Render(s.String())
}

// renderBar draws one measure. Chord beats are absolute so they line up with
// the concert-pitch patterns and the clock.
func (m Model) renderBar(bar harmony.Measure) string {
	var parts []string
	beat := bar.StartBeat
	for _, c := range bar.Chords {
		label := c.Symbol
		if p, ok := harmony.PatternAt(m.patterns, beat); ok {
			label = patternStyles[p.Type].Render(label)
		}
		if m.showPlayhead() && m.beat >= beat && m.beat < beat+c.Duration {
			label = playheadStyle.Render(label)
		}
		parts = append(parts, label)
		beat += c.Duration
	}
	return barStyle.Render("│ " + strings.Join(parts, " "))
}

func (m Model) showPlayhead() bool {
	return m.playing || m.beat > 0
}

func (m Model) legend() string {
	var parts []string
	for _, pt := range []harmony.PatternType{harmony.PatternIIVI, harmony.PatternMinorIIVI, harmony.PatternTurnaround} {
		parts = append(parts, patternStyles[pt].Render(fmt.Sprintf("■ %s (%s)", pt, pt.ScaleHint())))
	}
	return strings.Join(parts, "  ")
}

// playheadInfo shows the scale and guide tones under the playhead
func (m Model) playheadInfo(sections []harmony.SectionMeasures) string {
	if !m.showPlayhead() {
		return ""
	}
	for _, sec := range sections {
		for _, bar := range sec.Measures {
			if !bar.Contains(m.beat) {
				continue
			}
			beat := bar.StartBeat
			for _, c := range bar.Chords {
				if m.beat >= beat && m.beat < beat+c.Duration {
					line := fmt.Sprintf("▶ %s bar %d: %s → %s", sec.Name, bar.Number, c.Symbol, harmony.RecommendedScale(c.Symbol))
					if gt, ok := harmony.GuideTonesOf(c.Symbol); ok {
						line += fmt.Sprintf(" • guide tones %s/%s", gt.Third, gt.Seventh)
					}
					return selectedStyle.Render(line)
				}
				beat += c.Duration
			}
		}
	}
	return ""
}

func (m Model) viewMoment() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render(fmt.Sprintf(" QUICK MOMENT • %s ", m.tune.Title)))
	s.WriteString("\n\n")
	s.WriteString(m.moment.View())
	return boxStyle.Render(s.String())
}

func (m Model) viewAdvice() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render(fmt.Sprintf(" THE ORACLE • %s ", m.tune.Title)))
	s.WriteString("\n\n")

	if !m.advice.OK() && m.advice.Reason() == nil {
		s.WriteString(fmt.Sprintf("%s Consulting the veterans...", m.spinner.View()))
		return boxStyle.Render(s.String())
	}

	adv := m.advice.OrElse(advice.FallbackPracticeAdvice)
	s.WriteString(menuStyle.Render(adv.Strategy))
	s.WriteString("\n\n")
	s.WriteString(selectedStyle.Render(adv.Drill.Title))
	s.WriteString("\n")
	s.WriteString(menuStyle.Render(adv.Drill.Description))
	if err := m.advice.Reason(); err != nil {
		s.WriteString("\n")
		s.WriteString(dimStyle.Render(fmt.Sprintf("(offline: %s)", err)))
	}
	return boxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render(" SELECT MIDI FILE "))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	return s.String()
}

func (m Model) viewInspect() string {
	var s strings.Builder

	if m.err != nil {
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ Inspect failed: %s", m.err)))
		return boxStyle.Render(s.String())
	}

	sum := m.summary
	s.WriteString(titleStyle.Render(" MIDI CHART "))
	s.WriteString("\n\n")
	title := sum.Title
	if title == "" {
		title = filepath.Base(m.filePicker.Path)
	}
	s.WriteString(fmt.Sprintf("Title:    %s\n", title))
	s.WriteString(fmt.Sprintf("Tempo:    %.0f BPM\n", sum.BPM))
	s.WriteString(fmt.Sprintf("Sections: %s\n", strings.Join(sum.Markers, ", ")))
	s.WriteString(fmt.Sprintf("Chords:   %d (%d notes)\n", sum.Chords, sum.Notes))
	s.WriteString(fmt.Sprintf("Length:   %.0f beats", sum.Beats))
	return boxStyle.Render(s.String())
}

func logo() string {
	art := `
    _                     _              _
   (_) __ _ ________ ___| |__   ___  __| |
   | |/ _' |_  /_  // __| '_ \ / _ \/ _' |
   | | (_| |/ / / / \__ \ | | |  __/ (_| |
  _/ |\__,_/___/___||___/_| |_|\___|\__,_|
 |__/
`
	return lipgloss.NewStyle().Foreground(brass).Render(art)
}
