package advice

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/james-see/jazzshed/pkg/harmony"
	"github.com/james-see/jazzshed/pkg/journal"
)

type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	delay   time.Duration
	prompts []Prompt
}

func (f *fakeGenerator) Generate(ctx context.Context, p Prompt) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, p)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.reply, f.err
}

func (f *fakeGenerator) lastPrompt() Prompt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prompts[len(f.prompts)-1]
}

func newTestService(gen Generator) *Service {
	return NewService(gen, Options{Timeout: time.Second, RPS: 100, Burst: 10})
}

func blueBossa() harmony.Tune {
	return harmony.Tune{
		Title: "Blue Bossa",
		Key:   "C minor",
		Sections: []harmony.Section{
			harmony.SectionFromBars("", "A", []string{"Cm7", "Fm7", "Dm7b5", "G7alt", "Cm7"}),
		},
	}
}

func TestBuildPracticeRequest(t *testing.T) {
	req := BuildPracticeRequest(blueBossa(), harmony.TransposeBb)

	assert.Equal(t, "Blue Bossa", req.TuneTitle)
	assert.Equal(t, "C minor", req.ConcertKey)
	require.Len(t, req.Hints, 4)

	first := req.Hints[0]
	assert.Equal(t, "Dm7", first.Symbol)
	assert.Equal(t, harmony.ScaleDorian, first.Scale)
	assert.Equal(t, harmony.GuideTones{Third: harmony.F, Seventh: harmony.C}, first.GuideTones)
	assert.Equal(t, "For Dm7, consider Dorian. Guide tones are F and C.", first.String())

	assert.Equal(t, "A7alt", req.Hints[3].Symbol)
	assert.Equal(t, harmony.ScaleAltered, req.Hints[3].Scale)
}

func TestBuildPracticeRequestShortAndEmpty(t *testing.T) {
	short := harmony.Tune{Sections: []harmony.Section{harmony.SectionFromBars("", "A", []string{"N.C.", "C6"})}}
	req := BuildPracticeRequest(short, harmony.TransposeC)
	require.Len(t, req.Hints, 2)
	assert.Equal(t, "For N.C., consider Major (Ionian).", req.Hints[0].String())

	assert.Empty(t, BuildPracticeRequest(harmony.Tune{}, harmony.TransposeEb).Hints)
}

func TestRequestPracticeAdvice(t *testing.T) {
	gen := &fakeGenerator{reply: `{"veteransWisdom":"Hear the Dm7 as home.","practiceFocus":{"title":"Guide tone lines","description":"Connect F to C."}}`}
	svc := newTestService(gen)

	res := svc.RequestPracticeAdvice(context.Background(), BuildPracticeRequest(blueBossa(), harmony.TransposeBb))
	got, ok := res.Get()
	require.True(t, ok, "reason: %v", res.Reason())
	assert.Equal(t, "Hear the Dm7 as home.", got.Strategy)
	assert.Equal(t, Drill{Title: "Guide tone lines", Description: "Connect F to C."}, got.Drill)

	p := gen.lastPrompt()
	assert.Same(t, practiceSchema, p.Schema)
	assert.Contains(t, p.Text, `"Blue Bossa"`)
	assert.Contains(t, p.Text, "Bb instrument")
	assert.Contains(t, p.Text, "For Dm7, consider Dorian.")
}

func TestRequestPracticeAdviceRepairsJSON(t *testing.T) {
	gen := &fakeGenerator{reply: `{"veteransWisdom": "Swing it.", "practiceFocus": {"title": "Time", "description": "Metronome on 2 and 4"`}
	res := newTestService(gen).RequestPracticeAdvice(context.Background(), PracticeRequest{})

	got, ok := res.Get()
	require.True(t, ok, "reason: %v", res.Reason())
	assert.Equal(t, "Swing it.", got.Strategy)
	assert.Equal(t, "Time", got.Drill.Title)
}

func TestRequestPracticeAdviceUnavailable(t *testing.T) {
	tests := []struct {
		name string
		gen  Generator
		want error
	}{
		{"no generator", nil, ErrDisabled},
		{"generator error", &fakeGenerator{err: errors.New("503")}, nil},
		{"empty reply", &fakeGenerator{reply: "  "}, ErrEmptyResponse},
		{"missing fields", &fakeGenerator{reply: `{"veteransWisdom":""}`}, ErrEmptyResponse},
		{"timeout", &fakeGenerator{reply: "{}", delay: 5 * time.Second}, context.DeadlineExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.gen, Options{Timeout: 50 * time.Millisecond, RPS: 100})
			res := svc.RequestPracticeAdvice(context.Background(), PracticeRequest{TuneTitle: "x"})

			_, ok := res.Get()
			assert.False(t, ok)
			require.Error(t, res.Reason())
			if tt.want != nil {
				assert.ErrorIs(t, res.Reason(), tt.want)
			}
			assert.Equal(t, FallbackPracticeAdvice, res.OrElse(FallbackPracticeAdvice))
		})
	}
}

func TestRateLimit(t *testing.T) {
	gen := &fakeGenerator{reply: `{"analysis":"ok","coachingPoints":[]}`}
	svc := NewService(gen, Options{Timeout: 20 * time.Millisecond, RPS: 0.01, Burst: 1})

	first := svc.RequestBalanceAnalysis(context.Background(), nil)
	assert.True(t, first.OK())

	second := svc.RequestBalanceAnalysis(context.Background(), nil)
	assert.False(t, second.OK())
	assert.ErrorIs(t, second.Reason(), ErrRateLimited)
}

func TestRequestBalanceAnalysis(t *testing.T) {
	gen := &fakeGenerator{reply: `{"analysis":"Too many tunes, not enough long tones.","coachingPoints":["a","b","c"]}`}
	svc := newTestService(gen)

	var sessions []journal.Session
	for i := range 10 {
		sessions = append(sessions, journal.Session{ID: "s" + string(rune('0'+i)), ToneTime: 1, TunesTime: 30})
	}

	res := svc.RequestBalanceAnalysis(context.Background(), sessions)
	got, ok := res.Get()
	require.True(t, ok)
	assert.Len(t, got.CoachingPoints, 3)

	p := gen.lastPrompt()
	assert.Same(t, balanceSchema, p.Schema)
	assert.NotContains(t, p.Text, `"id":"s2"`, "only the last 7 sessions are sent")
	assert.Contains(t, p.Text, `"id":"s3"`)
	assert.Contains(t, p.Text, "tone 7, technique 0, tunes 210")
	assert.True(t, strings.HasPrefix(p.Text, "You are 'The Shed Oracle'"))
}

func TestBalanceAnalysisFallback(t *testing.T) {
	res := NewService(nil, Options{}).RequestBalanceAnalysis(context.Background(), nil)
	assert.False(t, res.OK())
	assert.Len(t, res.OrElse(FallbackBalanceAnalysis).CoachingPoints, 3)
}

func TestResult(t *testing.T) {
	ok := Ok(3)
	v, present := ok.Get()
	assert.True(t, present)
	assert.Equal(t, 3, v)
	assert.NoError(t, ok.Reason())

	un := Unavailable[int](ErrDisabled)
	assert.Equal(t, 7, un.OrElse(7))
	assert.ErrorIs(t, un.Reason(), ErrDisabled)
}
