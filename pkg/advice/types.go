package advice

import (
	"fmt"

	"github.com/james-see/jazzshed/pkg/harmony"
)

// Drill is a focused exercise suggestion
type Drill struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// PracticeAdvice is the coaching payload for one tune
type PracticeAdvice struct {
	Strategy string `json:"strategy"`
	Drill    Drill  `json:"drill"`
}

// BalanceAnalysis reviews how practice time is split across pillars
type BalanceAnalysis struct {
	Analysis       string   `json:"analysis"`
	CoachingPoints []string `json:"coachingPoints"`
}

// Shown when the service cannot answer
var (
	FallbackPracticeAdvice = PracticeAdvice{
		Strategy: "The Oracle is currently taking a coffee break. Try again later, kid.",
		Drill: Drill{
			Title:       "API Complications",
			Description: "Looks like the cosmic jazz frequencies are a bit off right now. Focus on your scales for a bit, then come back.",
		},
	}

	FallbackBalanceAnalysis = BalanceAnalysis{
		Analysis: "Looks like the crystal ball is foggy, kid. Can't quite get a read on your practice patterns right now.",
		CoachingPoints: []string{
			"Keep logging your sessions consistently.",
			"Ensure you're connected to the main grid.",
			"Sometimes the best analysis is your own ears. How does it feel?",
		},
	}
)

// ChordHint is precomputed context for one chord, already transposed
type ChordHint struct {
	Symbol     string             `json:"symbol"`
	Scale      string             `json:"scale"`
	GuideTones harmony.GuideTones `json:"guideTones"`
}

// String renders the hint as a prompt line
func (h ChordHint) String() string {
	if h.GuideTones.Third == "" {
		return fmt.Sprintf("For %s, consider %s.", h.Symbol, h.Scale)
	}
	return fmt.Sprintf("For %s, consider %s. Guide tones are %s and %s.",
		h.Symbol, h.Scale, h.GuideTones.Third, h.GuideTones.Seventh)
}

// PracticeRequest is everything the coach needs to know about a tune
type PracticeRequest struct {
	TuneTitle     string                `json:"tuneTitle"`
	ConcertKey    string                `json:"concertKey"`
	Transposition harmony.Transposition `json:"transposition"`
	Hints         []ChordHint           `json:"hints"`
}

// hintChords is how many opening chords are sent as context
const hintChords = 4

// BuildPracticeRequest takes the first chords of the first section,
// transposed for the instrument, with their scale and guide tones
func BuildPracticeRequest(t harmony.Tune, to harmony.Transposition) PracticeRequest {
	req := PracticeRequest{TuneTitle: t.Title, ConcertKey: t.Key, Transposition: to}
	if len(t.Sections) == 0 {
		return req
	}

	chords := t.Sections[0].Chords
	for _, c := range chords[:min(hintChords, len(chords))] {
		symbol := harmony.Transpose(c.Symbol, to)
		gt, _ := harmony.GuideTonesOf(symbol)
		req.Hints = append(req.Hints, ChordHint{
			Symbol:     symbol,
			Scale:      harmony.RecommendedScale(symbol),
			GuideTones: gt,
		})
	}
	return req
}
