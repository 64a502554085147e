package export

import (
	"bytes"
	"fmt"
	"os"

	"gitlab.com/gomidi/midi/v2/smf"
)

// Summary describes a chart MIDI file
type Summary struct {
	Title   string
	BPM     float64
	Markers []string
	// Chords counts distinct note-on ticks
	Chords int
	Notes  int
	Beats  float64
}

// InspectFile reads and summarizes a MIDI file
func InspectFile(filename string) (*Summary, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read MIDI file: %w", err)
	}
	return Inspect(data)
}

// Inspect parses MIDI data written by ChartToMIDI (or any single-track
// file) and summarizes it
func Inspect(data []byte) (*Summary, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIDI: %w", err)
	}

	ticksPerQuarter := uint16(480)
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok {
		ticksPerQuarter = mt.Resolution()
	}

	sum := &Summary{BPM: 120.0}
	var maxTick int64
	for _, track := range s.Tracks {
		var tick int64
		lastOnset := int64(-1)
		for _, ev := range track {
			tick += int64(ev.Delta)
			msg := ev.Message

			switch {
			// Tempo meta (FF 51 03 tt tt tt)
			case len(msg) >= 6 && msg[0] == 0xFF && msg[1] == 0x51 && msg[2] == 0x03:
				microsecondsPerBeat := uint32(msg[3])<<16 | uint32(msg[4])<<8 | uint32(msg[5])
				if microsecondsPerBeat > 0 {
					sum.BPM = 60000000.0 / float64(microsecondsPerBeat)
				}
			// Track name (FF 03) and marker (FF 06)
			case len(msg) >= 3 && msg[0] == 0xFF && (msg[1] == 0x03 || msg[1] == 0x06):
				text := string(msg[3:])
				if msg[1] == 0x03 {
					sum.Title = text
				} else {
					sum.Markers = append(sum.Markers, text)
				}
			// Note on with velocity
			case len(msg) >= 3 && msg[0] >= 0x90 && msg[0] <= 0x9F && msg[2] > 0:
				sum.Notes++
				if tick != lastOnset {
					sum.Chords++
					lastOnset = tick
				}
			}
		}
		maxTick = max(maxTick, tick)
	}
	sum.Beats = float64(maxTick) / float64(ticksPerQuarter)
	return sum, nil
}
