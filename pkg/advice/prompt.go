package advice

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/james-see/jazzshed/pkg/journal"
)

const persona = "You are 'The Shed Oracle', a grizzled, encouraging, veteran jazz educator."

func practicePrompt(req PracticeRequest) string {
	hints := make([]string, len(req.Hints))
	for i, h := range req.Hints {
		hints[i] = h.String()
	}

	var b strings.Builder
	b.WriteString(persona + "\n")
	fmt.Fprintf(&b, "The student is practicing %q (Concert Key: %s) on a %s instrument.\n\n", req.TuneTitle, req.ConcertKey, req.Transposition)
	fmt.Fprintf(&b, "TRANSPOSITION RULES:\nAll chord/note names in your response MUST be transposed for the student's %s instrument.\n\n", req.Transposition)
	b.WriteString("Contextual hints based on tune's start:\n")
	b.WriteString(strings.Join(hints, "\n"))
	b.WriteString("\n\nPedagogy:\n")
	b.WriteString("- Provide a concise \"Veteran's Wisdom\" tip about approaching these changes, referencing the transposed chords.\n")
	b.WriteString("- Suggest a \"Practice Focus\" with a clear title and a short description.\n")
	b.WriteString("- Keep it brief, authentic to a veteran jazz player, and motivating.\n\n")
	b.WriteString("Provide the response in JSON format.")
	return b.String()
}

func balancePrompt(sessions []journal.Session) (string, error) {
	data, err := json.Marshal(sessions)
	if err != nil {
		return "", fmt.Errorf("failed to encode sessions: %w", err)
	}
	p := journal.PillarTotals(sessions)

	var b strings.Builder
	b.WriteString(persona + " Analyze this musician's weekly practice log.\n")
	fmt.Fprintf(&b, "Session Data: %s.\n", data)
	fmt.Fprintf(&b, "Pillar totals in minutes: tone %d, technique %d, tunes %d, transcriptions %d.\n",
		p.Tone, p.Technique, p.Tunes, p.Transcriptions)
	b.WriteString("Identify if they are neglecting 'Deep Shedding' or 'Long Tones'.\n")
	b.WriteString("Provide exactly 3 coaching points in JSON format.")
	return b.String(), nil
}
