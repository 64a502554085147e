package journal

import "time"

// QuickMoment is a free-text note captured while practicing a tune
type QuickMoment struct {
	ID   string    `json:"id"`
	Tune string    `json:"tune" validate:"required"`
	Time time.Time `json:"time"`
	Note string    `json:"note" validate:"required"`
}

// Session is one logged practice session. All durations are in minutes.
type Session struct {
	ID                 string    `json:"id"`
	Date               time.Time `json:"date"`
	Duration           int       `json:"duration" validate:"gte=0"`
	ToneTime           int       `json:"toneTime" validate:"gte=0"`
	TechniqueTime      int       `json:"techniqueTime" validate:"gte=0"`
	TunesTime          int       `json:"tunesTime" validate:"gte=0"`
	TranscriptionsTime int       `json:"transcriptionsTime" validate:"gte=0"`
	Notes              string    `json:"notes"`
}

// PillarSum is the sum of the four practice pillars
func (s Session) PillarSum() int {
	return s.ToneTime + s.TechniqueTime + s.TunesTime + s.TranscriptionsTime
}

// Pillars totals minutes per practice pillar
type Pillars struct {
	Tone           int `json:"tone"`
	Technique      int `json:"technique"`
	Tunes          int `json:"tunes"`
	Transcriptions int `json:"transcriptions"`
	Total          int `json:"total"`
}

// Neglected returns the pillars holding less than share of the total. An
// empty log neglects nothing.
func (p Pillars) Neglected(share float64) []string {
	if p.Total == 0 {
		return nil
	}
	var out []string
	for _, pl := range []struct {
		name    string
		minutes int
	}{
		{"tone", p.Tone},
		{"technique", p.Technique},
		{"tunes", p.Tunes},
		{"transcriptions", p.Transcriptions},
	} {
		if float64(pl.minutes)/float64(p.Total) < share {
			out = append(out, pl.name)
		}
	}
	return out
}
