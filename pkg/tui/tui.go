// Package tui provides a terminal user interface for jazzshed
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/james-see/jazzshed/pkg/advice"
	"github.com/james-see/jazzshed/pkg/export"
	"github.com/james-see/jazzshed/pkg/harmony"
	"github.com/james-see/jazzshed/pkg/journal"
	"github.com/james-see/jazzshed/pkg/library"
	"github.com/james-see/jazzshed/pkg/transport"
)

// State represents the current TUI state
type State int

const (
	StateList State = iota
	StateChart
	StateMoment
	StateAdvice
	StateFilePicker
	StateInspect
)

// Options are the services the TUI reads from. Journal may be nil, which
// disables quick moments.
type Options struct {
	Library       *library.Library
	Journal       *journal.Journal
	Advice        *advice.Service
	Exporter      *export.MIDIExporter
	Transposition harmony.Transposition
	// ExportDir receives .mid files; defaults to the working directory
	ExportDir string
	Logger    *slog.Logger
}

// Model represents the TUI model
type Model struct {
	opts  Options
	state State

	// library view
	category  harmony.Category
	tunes     []harmony.Tune
	listIndex int

	// chart view
	tune          harmony.Tune
	variant       int
	transposition harmony.Transposition
	patterns      []harmony.Pattern
	clock         *transport.Clock
	clockGen      int
	ticks         chan clockTick
	beat          float64
	playing       bool

	moment     textinput.Model
	spinner    spinner.Model
	filePicker filepicker.Model
	advice     advice.Result[advice.PracticeAdvice]
	summary    *export.Summary

	status string
	err    error
	width  int
	height int
}

// clockTick tags a tick with the clock that produced it, so ticks from a
// replaced clock can be dropped
type clockTick struct {
	gen  int
	tick transport.Tick
}

type tickMsg clockTick

type adviceMsg struct {
	result advice.Result[advice.PracticeAdvice]
}

type exportDoneMsg struct {
	path string
	err  error
}

type momentSavedMsg struct {
	moment journal.QuickMoment
	err    error
}

type inspectDoneMsg struct {
	summary *export.Summary
	err     error
}

// New creates a new TUI model
func New(opts Options) Model {
	if opts.Exporter == nil {
		opts.Exporter = export.NewMIDIExporter()
	}
	if opts.Advice == nil {
		opts.Advice = advice.NewService(nil, advice.Options{})
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.ExportDir == "" {
		opts.ExportDir, _ = os.Getwd()
	}

	// Initialize file picker
	fp := filepicker.New()
	fp.AllowedTypes = []string{".mid", ".midi"}
	fp.CurrentDirectory = opts.ExportDir

	// Initialize spinner
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(brass)

	ti := textinput.New()
	ti.Placeholder = "what clicked, what didn't"
	ti.CharLimit = 280
	ti.Width = 60

	m := Model{
		opts:          opts,
		state:         StateList,
		variant:       -1,
		transposition: opts.Transposition,
		ticks:         make(chan clockTick, 16),
		moment:        ti,
		spinner:       s,
		filePicker:    fp,
	}
	if m.transposition == "" {
		m.transposition = harmony.TransposeC
	}
	m.tunes = opts.Library.List("")
	return m
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForTick(m.ticks))
}

// waitForTick blocks on the shared tick channel. Exactly one of these is
// outstanding at a time; each tickMsg schedules the next.
func waitForTick(ch <-chan clockTick) tea.Cmd {
	return func() tea.Msg {
		t, ok := <-ch
		if !ok {
			return nil
		}
		return tickMsg(t)
	}
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The file picker needs to receive all messages
	if m.state == StateFilePicker {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateList
				return m, nil
			case "ctrl+c":
				return m.quit()
			}
		}

		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)
		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			return m, inspectFile(path)
		}
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(max(msg.Height-12, 5))
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateList:
			return m.updateList(msg)
		case StateChart:
			return m.updateChart(msg)
		case StateMoment:
			return m.updateMoment(msg)
		case StateAdvice, StateInspect:
			return m.updateDismiss(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		if msg.gen == m.clockGen && m.playing {
			m.beat = msg.tick.Beat
		}
		return m, waitForTick(m.ticks)

	case adviceMsg:
		m.advice = msg.result
		return m, nil

	case exportDoneMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = fmt.Sprintf("Exported %s", msg.path)
		}
		return m, nil

	case momentSavedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = fmt.Sprintf("Moment logged for %s", m.tune.Title)
		}
		return m, nil

	case inspectDoneMsg:
		m.state = StateInspect
		m.summary = msg.summary
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.listIndex > 0 {
			m.listIndex--
		}
	case "down", "j":
		if m.listIndex < len(m.tunes)-1 {
			m.listIndex++
		}
	case "c":
		m.category = nextCategory(m.opts.Library.Categories(), m.category)
		m.tunes = m.opts.Library.List(m.category)
		m.listIndex = 0
	case "i":
		m.state = StateFilePicker
		return m, m.filePicker.Init()
	case "enter":
		if len(m.tunes) == 0 {
			return m, nil
		}
		return m.openChart(m.tunes[m.listIndex].ID), nil
	case "q", "ctrl+c":
		return m.quit()
	}
	return m, nil
}

// nextCategory cycles "" (all) through each category and back
func nextCategory(cats []harmony.Category, cur harmony.Category) harmony.Category {
	if cur == "" {
		if len(cats) == 0 {
			return ""
		}
		return cats[0]
	}
	for i, c := range cats {
		if c == cur && i+1 < len(cats) {
			return cats[i+1]
		}
	}
	return ""
}

// openChart loads a tune at its default sections
func (m Model) openChart(id string) Model {
	t, err := m.opts.Library.Get(id)
	if err != nil {
		m.err = err
		return m
	}
	m.tune = t
	m.variant = -1
	m.state = StateChart
	m.status = ""
	m.err = nil
	return m.resetPlayback()
}

// resetPlayback rescans the active harmony and swaps in a fresh clock
func (m Model) resetPlayback() Model {
	if m.clock != nil {
		m.clock.Stop()
	}
	m.playing = false
	m.beat = 0
	m.patterns = harmony.ScanTune(&m.tune, m.variant)

	m.clockGen++
	gen, ch := m.clockGen, m.ticks
	m.clock = transport.NewClock(transport.Options{
		BPM:        m.tune.BPM(transport.DefaultBPM),
		TotalBeats: harmony.TotalBeats(m.tune.ActiveSections(m.variant)),
		Logger:     m.opts.Logger,
		OnTick: func(t transport.Tick) {
			select {
			case ch <- clockTick{gen: gen, tick: t}:
			default:
				// UI is behind; the next tick carries the playhead anyway
			}
		},
	})
	return m
}

func (m Model) updateChart(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ", "p":
		if m.playing {
			m.clock.Stop()
			m.playing = false
			return m, nil
		}
		if err := m.clock.Start(context.Background()); err != nil {
			m.err = err
			return m, nil
		}
		m.playing = true
	case "r":
		m.clock.Stop()
		m.clock.Reset()
		m.playing = false
		m.beat = 0
	case "t":
		m.transposition = m.transposition.Next()
	case "v":
		if len(m.tune.Variants) == 0 {
			return m, nil
		}
		// -1 (default sections) -> 0 -> ... -> last -> -1
		m.variant++
		if m.variant >= len(m.tune.Variants) {
			m.variant = -1
		}
		m = m.resetPlayback()
	case "m":
		t, err := m.opts.Library.SetMastery(m.tune.ID, m.tune.Mastery.Next())
		if err != nil {
			m.err = err
			return m, nil
		}
		m.tune = t
		m.status = fmt.Sprintf("Mastery: %s", t.Mastery)
	case "a":
		m.state = StateAdvice
		m.advice = advice.Result[advice.PracticeAdvice]{}
		return m, tea.Batch(m.spinner.Tick, m.requestAdvice())
	case "e":
		return m, m.exportChart()
	case "n":
		if m.opts.Journal == nil {
			m.status = "Journal unavailable"
			return m, nil
		}
		m.state = StateMoment
		m.moment.SetValue("")
		return m, m.moment.Focus()
	case "esc", "backspace":
		m.clock.Stop()
		m.playing = false
		m.state = StateList
		m.status = ""
		m.tunes = m.opts.Library.List(m.category)
	case "q", "ctrl+c":
		return m.quit()
	}
	return m, nil
}

func (m Model) updateMoment(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.moment.Blur()
		m.state = StateChart
		return m, nil
	case "ctrl+c":
		return m.quit()
	case "enter":
		note := strings.TrimSpace(m.moment.Value())
		m.moment.Blur()
		m.state = StateChart
		if note == "" {
			return m, nil
		}
		return m, m.saveMoment(note)
	}

	var cmd tea.Cmd
	m.moment, cmd = m.moment.Update(msg)
	return m, cmd
}

func (m Model) updateDismiss(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		if m.state == StateAdvice {
			m.state = StateChart
		} else {
			m.state = StateList
			m.summary = nil
		}
		m.err = nil
		return m, nil
	case "q", "ctrl+c":
		return m.quit()
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.clock != nil {
		m.clock.Stop()
	}
	return m, tea.Quit
}

func (m Model) requestAdvice() tea.Cmd {
	svc, req := m.opts.Advice, advice.BuildPracticeRequest(m.tune, m.transposition)
	return func() tea.Msg {
		return adviceMsg{result: svc.RequestPracticeAdvice(context.Background(), req)}
	}
}

func (m Model) exportChart() tea.Cmd {
	chart := export.ChartFromTune(m.tune, m.variant, m.transposition)
	name := m.tune.ID
	if m.transposition != harmony.TransposeC {
		name += "-" + strings.ToLower(string(m.transposition))
	}
	path := filepath.Join(m.opts.ExportDir, name+".mid")
	exp := m.opts.Exporter
	return func() tea.Msg {
		return exportDoneMsg{path: path, err: exp.WriteMIDIFile(chart, path)}
	}
}

func (m Model) saveMoment(note string) tea.Cmd {
	j, tune := m.opts.Journal, m.tune.ID
	return func() tea.Msg {
		saved, err := j.AddMoment(context.Background(), journal.QuickMoment{Tune: tune, Note: note})
		return momentSavedMsg{moment: saved, err: err}
	}
}

func inspectFile(path string) tea.Cmd {
	return func() tea.Msg {
		sum, err := export.InspectFile(path)
		return inspectDoneMsg{summary: sum, err: err}
	}
}

// Run starts the TUI application
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
