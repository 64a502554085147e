package export

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/james-see/jazzshed/pkg/harmony"
)

func TestVoicing(t *testing.T) {
	tests := []struct {
		symbol string
		want   []uint8
	}{
		{"Cmaj7", []uint8{48, 52, 55, 59}},
		{"Cm7", []uint8{48, 51, 55, 58}},
		{"G7", []uint8{55, 59, 62, 65}},
		{"Am7b5", []uint8{57, 60, 63, 67}},
		{"Edim7", []uint8{52, 55, 58, 61}},
		{"Gm6", []uint8{55, 58, 62, 64}},
		{"Bb6", []uint8{58, 62, 65, 67}},
		{"C", []uint8{48, 52, 55}},
		{"Dsus", []uint8{50, 55, 57}},
		{"F#7alt", []uint8{54, 58, 61, 64}},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			got, ok := Voicing(tt.symbol, 3)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := Voicing("N.C.", 3)
	assert.False(t, ok)
}

func TestVoicingClipsRange(t *testing.T) {
	got, ok := Voicing("Bmaj7", 8)
	require.True(t, ok)
	for _, n := range got {
		assert.LessOrEqual(t, n, uint8(127))
	}
	assert.Less(t, len(got), 4)
}

func testChart() Chart {
	return Chart{
		Title: "Autumn Leaves",
		BPM:   150,
		Sections: []harmony.Section{
			harmony.SectionFromBars("", "A", []string{"Cm7 F7", "Bbmaj7"}),
			harmony.SectionFromBars("", "B", []string{"N.C.", "Am7b5 D7"}),
		},
	}
}

func TestChartToMIDI(t *testing.T) {
	data, err := NewMIDIExporter().ChartToMIDI(testChart())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("MThd")))

	sum, err := Inspect(data)
	require.NoError(t, err)
	assert.Equal(t, "Autumn Leaves", sum.Title)
	assert.InDelta(t, 150.0, sum.BPM, 0.01)
	assert.Equal(t, []string{"A", "B"}, sum.Markers)
	assert.Equal(t, 5, sum.Chords)
	assert.Equal(t, 20, sum.Notes)
	assert.Equal(t, 16.0, sum.Beats)
}

func TestChartToMIDIRawEvents(t *testing.T) {
	data, err := NewMIDIExporter().ChartToMIDI(Chart{
		BPM:      120,
		Sections: []harmony.Section{{Name: "A", Chords: []harmony.Chord{{Symbol: "C", Duration: 2}}}},
	})
	require.NoError(t, err)

	s, err := smf.ReadFrom(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, s.Tracks, 1)

	var (
		tick       int64
		onTicks    []int64
		offTicks   []int64
		sawTempo   bool
		sawTimeSig bool
	)
	for _, ev := range s.Tracks[0] {
		tick += int64(ev.Delta)
		msg := ev.Message
		switch {
		case len(msg) >= 6 && msg[0] == 0xFF && msg[1] == 0x51:
			sawTempo = true
			assert.Equal(t, []byte{0x07, 0xA1, 0x20}, []byte(msg[3:6]), "500000us per beat")
		case len(msg) >= 3 && msg[0] == 0xFF && msg[1] == 0x58:
			sawTimeSig = true
		case len(msg) >= 3 && msg[0] == 0x90 && msg[2] > 0:
			onTicks = append(onTicks, tick)
		case len(msg) >= 3 && (msg[0] == 0x80 || (msg[0] == 0x90 && msg[2] == 0)):
			offTicks = append(offTicks, tick)
		}
	}

	assert.True(t, sawTempo)
	assert.True(t, sawTimeSig)
	assert.Equal(t, []int64{0, 0, 0}, onTicks)
	assert.Equal(t, []int64{960, 960, 960}, offTicks)
}

func TestChartToMIDILeadingRest(t *testing.T) {
	data, err := NewMIDIExporter().ChartToMIDI(Chart{Sections: []harmony.Section{
		{Name: "intro", Chords: []harmony.Chord{{Symbol: "N.C.", Duration: 4}, {Symbol: "G7", Duration: 4}}},
	}})
	require.NoError(t, err)

	sum, err := Inspect(data)
	require.NoError(t, err)
	assert.Equal(t, 120.0, sum.BPM)
	assert.Equal(t, 1, sum.Chords)
	assert.Equal(t, 8.0, sum.Beats)
}

func TestChartToMIDITrailingRest(t *testing.T) {
	data, err := NewMIDIExporter().ChartToMIDI(Chart{Sections: []harmony.Section{
		{Name: "tag", Chords: []harmony.Chord{{Symbol: "C6", Duration: 4}, {Symbol: "N.C.", Duration: 4}}},
	}})
	require.NoError(t, err)

	sum, err := Inspect(data)
	require.NoError(t, err)
	assert.Equal(t, 8.0, sum.Beats)
}

func TestChartToMIDIEmpty(t *testing.T) {
	_, err := NewMIDIExporter().ChartToMIDI(Chart{})
	assert.Error(t, err)
}

func TestMetaTextTruncatesOnRuneBoundary(t *testing.T) {
	// 126 ASCII bytes then a two-byte rune straddling the 127 limit
	title := strings.Repeat("a", 126) + "é" + "tail"
	msg := metaText(0x03, title)

	length := int(msg[2])
	text := msg[3:]
	assert.Equal(t, 126, length)
	assert.Len(t, text, length)
	assert.True(t, utf8.Valid(text))

	short := metaText(0x06, "Bridge ♭")
	assert.Equal(t, "Bridge ♭", string(short[3:]))
	assert.Equal(t, len("Bridge ♭"), int(short[2]))
}

func TestChartFromTune(t *testing.T) {
	tune := harmony.Tune{
		Title:    "Tenor Madness",
		Tempo:    "Up",
		Sections: []harmony.Section{harmony.SectionFromBars("", "chorus", []string{"Bb7"})},
		Variants: []harmony.Variant{{Name: "Advanced", Sections: []harmony.Section{harmony.SectionFromBars("", "chorus", []string{"Bb7 G7"})}}},
	}

	c := ChartFromTune(tune, 0, harmony.TransposeBb)
	assert.Equal(t, 120.0, c.BPM)
	require.Len(t, c.Sections[0].Chords, 2)
	assert.Equal(t, "C7", c.Sections[0].Chords[0].Symbol)
	assert.Equal(t, "A7", c.Sections[0].Chords[1].Symbol)
}

func TestWriteAndInspectFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.mid")
	require.NoError(t, NewMIDIExporter().WriteMIDIFile(testChart(), path))

	sum, err := InspectFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5, sum.Chords)

	_, err = InspectFile(filepath.Join(t.TempDir(), "missing.mid"))
	assert.Error(t, err)
}
