package tui

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/james-see/jazzshed/pkg/harmony"
	"github.com/james-see/jazzshed/pkg/journal"
	"github.com/james-see/jazzshed/pkg/library"
	"github.com/james-see/jazzshed/pkg/transport"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	lib, err := library.Load()
	require.NoError(t, err)
	j, err := journal.Open(journal.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	return New(Options{Library: lib, Journal: j, ExportDir: t.TempDir()})
}

func key(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(Model)
	}
	return m, cmd
}

func openTune(t *testing.T, m Model, id string) Model {
	t.Helper()
	for m.tunes[m.listIndex].ID != id {
		require.Less(t, m.listIndex, len(m.tunes)-1, "tune %s not listed", id)
		m, _ = press(t, m, "down")
	}
	m, _ = press(t, m, "enter")
	require.Equal(t, StateChart, m.state)
	t.Cleanup(m.clock.Stop)
	return m
}

func TestListAndCategoryFilter(t *testing.T) {
	m := newTestModel(t)
	assert.Len(t, m.tunes, 11)
	assert.Contains(t, m.View(), "Autumn Leaves")

	cats := m.opts.Library.Categories()
	m, _ = press(t, m, "c")
	assert.Equal(t, cats[0], m.category)
	for _, tune := range m.tunes {
		assert.Equal(t, cats[0], tune.Category)
	}

	for range cats {
		m, _ = press(t, m, "c")
	}
	assert.Equal(t, harmony.Category(""), m.category, "cycles back to all")
	assert.Len(t, m.tunes, 11)
}

func TestChartTransposeAndVariant(t *testing.T) {
	m := openTune(t, newTestModel(t), "autumn-leaves")
	assert.Contains(t, m.View(), "Cm7")
	assert.NotEmpty(t, m.patterns)

	m, _ = press(t, m, "t")
	assert.Equal(t, harmony.TransposeBb, m.transposition)
	assert.Contains(t, m.View(), "Dm7")
	assert.Contains(t, m.View(), "A minor")

	m, _ = press(t, m, "esc")
	assert.Equal(t, StateList, m.state)

	m = openTune(t, m, "tenor-madness")
	assert.Equal(t, -1, m.variant)
	m, _ = press(t, m, "v")
	assert.Equal(t, 0, m.variant)
	assert.Contains(t, m.View(), "Basic")
	m, _ = press(t, m, "v", "v")
	assert.Equal(t, -1, m.variant, "wraps to default sections")
}

func TestMasteryCycles(t *testing.T) {
	m := openTune(t, newTestModel(t), "autumn-leaves")
	require.Equal(t, harmony.MasteryLearning, m.tune.Mastery)

	m, _ = press(t, m, "m")
	assert.Equal(t, harmony.MasteryFamiliar, m.tune.Mastery)

	stored, err := m.opts.Library.Get("autumn-leaves")
	require.NoError(t, err)
	assert.Equal(t, harmony.MasteryFamiliar, stored.Mastery)
}

func TestStaleTicksIgnored(t *testing.T) {
	m := openTune(t, newTestModel(t), "autumn-leaves")
	m.playing = true

	next, cmd := m.Update(tickMsg{gen: m.clockGen, tick: transport.Tick{Seq: 1, Beat: 5}})
	m = next.(Model)
	assert.NotNil(t, cmd, "keeps listening")
	assert.Equal(t, 5.0, m.beat)
	assert.Contains(t, m.View(), "bar 2")

	next, _ = m.Update(tickMsg{gen: m.clockGen - 1, tick: transport.Tick{Seq: 9, Beat: 30}})
	assert.Equal(t, 5.0, next.(Model).beat)
}

func TestPlaybackStartStop(t *testing.T) {
	m := openTune(t, newTestModel(t), "blue-bossa")

	m, _ = press(t, m, " ")
	assert.True(t, m.playing)
	assert.True(t, m.clock.Running())

	m, _ = press(t, m, " ")
	assert.False(t, m.playing)
	assert.False(t, m.clock.Running())

	m.beat = 7
	m, _ = press(t, m, "r")
	assert.Equal(t, 0.0, m.beat)
	assert.Equal(t, 0.0, m.clock.Beat())
}

func TestAdviceFallsBack(t *testing.T) {
	m := openTune(t, newTestModel(t), "blue-bossa")

	m, _ = press(t, m, "a")
	assert.Equal(t, StateAdvice, m.state)
	assert.Contains(t, m.View(), "Consulting")

	msg := m.requestAdvice()()
	next, _ := m.Update(msg)
	m = next.(Model)
	assert.False(t, m.advice.OK())
	assert.Contains(t, m.View(), "coffee break")

	m, _ = press(t, m, "enter")
	assert.Equal(t, StateChart, m.state)
}

func TestExportWritesMIDI(t *testing.T) {
	m := openTune(t, newTestModel(t), "blue-bossa")
	m, _ = press(t, m, "t")

	_, cmd := press(t, m, "e")
	require.NotNil(t, cmd)
	msg, ok := cmd().(exportDoneMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)
	assert.Equal(t, filepath.Join(m.opts.ExportDir, "blue-bossa-bb.mid"), msg.path)

	_, err := os.Stat(msg.path)
	assert.NoError(t, err)

	next, _ := m.Update(inspectFile(msg.path)())
	m = next.(Model)
	assert.Equal(t, StateInspect, m.state)
	require.NotNil(t, m.summary)
	assert.Equal(t, "Blue Bossa", m.summary.Title)
}

func TestQuickMoment(t *testing.T) {
	m := openTune(t, newTestModel(t), "blue-bossa")

	m, _ = press(t, m, "n")
	require.Equal(t, StateMoment, m.state)
	m, _ = press(t, m, "b", "r", "i", "d", "g", "e")
	m, cmd := press(t, m, "enter")
	assert.Equal(t, StateChart, m.state)
	require.NotNil(t, cmd)

	next, _ := m.Update(cmd())
	m = next.(Model)
	require.NoError(t, m.err)
	assert.Contains(t, m.status, "Blue Bossa")

	moments, err := m.opts.Journal.Moments(context.Background(), "blue-bossa")
	require.NoError(t, err)
	require.Len(t, moments, 1)
	assert.Equal(t, "bridge", moments[0].Note)
}
