// Package export renders chord charts as Standard MIDI Files
package export

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"unicode/utf8"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/james-see/jazzshed/pkg/harmony"
)

// Chart is what gets rendered: a title, a tempo and the active sections
type Chart struct {
	Title    string
	BPM      float64
	Sections []harmony.Section
}

// ChartFromTune selects a variant and transposition of a tune. The tempo
// falls back to 120 when the tune's tempo is descriptive.
func ChartFromTune(t harmony.Tune, variant int, to harmony.Transposition) Chart {
	return Chart{
		Title:    t.Title,
		BPM:      t.BPM(120),
		Sections: harmony.TransposeSections(t.ActiveSections(variant), to),
	}
}

// MIDIExporter writes block-chord MIDI
type MIDIExporter struct {
	ticksPerQuarter uint16
	octave          int
	velocity        uint8
	channel         uint8
}

// NewMIDIExporter creates an exporter voicing chords around middle C
func NewMIDIExporter() *MIDIExporter {
	return &MIDIExporter{
		ticksPerQuarter: 480,
		octave:          3,
		velocity:        80,
		channel:         0,
	}
}

// ChartToMIDI renders one track: tempo, 4/4 meter, a marker per section and
// one block chord per chord for its full duration. Unparseable symbols
// (N.C., slashes) become rests.
func (m *MIDIExporter) ChartToMIDI(c Chart) ([]byte, error) {
	if len(c.Sections) == 0 {
		return nil, errors.New("chart has no sections")
	}
	if c.BPM <= 0 {
		c.BPM = 120.0
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(m.ticksPerQuarter)

	var track smf.Track
	if c.Title != "" {
		track.Add(0, metaText(0x03, c.Title))
	}

	microsecondsPerBeat := uint32(60000000.0 / c.BPM)
	track.Add(0, smf.Message([]byte{
		0xFF, 0x51, 0x03,
		byte(microsecondsPerBeat >> 16),
		byte(microsecondsPerBeat >> 8),
		byte(microsecondsPerBeat),
	}))
	track.Add(0, smf.Message([]byte{0xFF, 0x58, 0x04, 0x04, 0x02, 0x18, 0x08}))

	// pending is silence carried into the next event's delta
	var pending uint32
	for _, sec := range c.Sections {
		track.Add(pending, metaText(0x06, sec.Name))
		pending = 0

		for _, ch := range sec.Chords {
			length := m.ticks(ch.Duration)
			notes, ok := Voicing(ch.Symbol, m.octave)
			if !ok {
				pending += length
				continue
			}

			for i, n := range notes {
				delta := uint32(0)
				if i == 0 {
					delta = pending
				}
				track.Add(delta, midi.NoteOn(m.channel, n, m.velocity))
			}
			pending = 0
			for i, n := range notes {
				delta := uint32(0)
				if i == 0 {
					delta = length
				}
				track.Add(delta, midi.NoteOff(m.channel, n))
			}
		}
	}

	// Trailing rests still count toward the length of the file
	track.Close(pending)

	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteMIDIFile renders the chart to filename
func (m *MIDIExporter) WriteMIDIFile(c Chart, filename string) error {
	data, err := m.ChartToMIDI(c)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

func (m *MIDIExporter) ticks(beats float64) uint32 {
	return uint32(math.Round(beats * float64(m.ticksPerQuarter)))
}

// metaText builds a text-type meta event. Text is cut to at most 127 bytes,
// on a rune boundary, so the length fits in a single variable-length byte.
func metaText(kind byte, text string) smf.Message {
	if len(text) > 127 {
		cut := 127
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	msg := []byte{0xFF, kind, byte(len(text))}
	return smf.Message(append(msg, text...))
}
