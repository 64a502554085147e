// Package advice asks a generative model for practice coaching. Every failure
// is absorbed here and surfaces as an Unavailable result.
package advice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kaptinlin/jsonrepair"
	"golang.org/x/time/rate"

	"github.com/james-see/jazzshed/pkg/journal"
)

// Sentinel reasons carried by Unavailable results
var (
	ErrDisabled      = errors.New("advice service not configured")
	ErrEmptyResponse = errors.New("advice service returned an empty response")
	ErrRateLimited   = errors.New("advice service rate limit exceeded")
)

// balanceWindow is how many recent sessions are reviewed
const balanceWindow = 7

// Options configures the service
type Options struct {
	Timeout time.Duration
	RPS     float64
	Burst   int
	Logger  *slog.Logger
}

// Service wraps a Generator with a timeout, a rate limit and fallbacks
type Service struct {
	gen     Generator
	limiter *rate.Limiter
	timeout time.Duration
	logger  *slog.Logger
}

// NewService creates a service. A nil generator yields a service whose every
// request is Unavailable.
func NewService(gen Generator, opts Options) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.RPS <= 0 {
		opts.RPS = 0.5
	}
	if opts.Burst <= 0 {
		opts.Burst = 2
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		gen:     gen,
		limiter: rate.NewLimiter(rate.Limit(opts.RPS), opts.Burst),
		timeout: opts.Timeout,
		logger:  opts.Logger,
	}
}

// Enabled reports whether a generator is configured
func (s *Service) Enabled() bool {
	return s.gen != nil
}

type practiceWire struct {
	VeteransWisdom string `json:"veteransWisdom"`
	PracticeFocus  Drill  `json:"practiceFocus"`
}

// RequestPracticeAdvice asks for a strategy and a drill for one tune
func (s *Service) RequestPracticeAdvice(ctx context.Context, req PracticeRequest) Result[PracticeAdvice] {
	var wire practiceWire
	if err := s.generate(ctx, Prompt{Text: practicePrompt(req), Schema: practiceSchema}, &wire); err != nil {
		s.logger.Warn("practice advice unavailable", "tune", req.TuneTitle, "error", err)
		return Unavailable[PracticeAdvice](err)
	}
	if strings.TrimSpace(wire.VeteransWisdom) == "" || strings.TrimSpace(wire.PracticeFocus.Title) == "" {
		s.logger.Warn("practice advice incomplete", "tune", req.TuneTitle)
		return Unavailable[PracticeAdvice](ErrEmptyResponse)
	}
	return Ok(PracticeAdvice{Strategy: wire.VeteransWisdom, Drill: wire.PracticeFocus})
}

// RequestBalanceAnalysis reviews the most recent sessions
func (s *Service) RequestBalanceAnalysis(ctx context.Context, sessions []journal.Session) Result[BalanceAnalysis] {
	if len(sessions) > balanceWindow {
		sessions = sessions[len(sessions)-balanceWindow:]
	}
	prompt, err := balancePrompt(sessions)
	if err != nil {
		return Unavailable[BalanceAnalysis](err)
	}

	var out BalanceAnalysis
	if err := s.generate(ctx, Prompt{Text: prompt, Schema: balanceSchema}, &out); err != nil {
		s.logger.Warn("balance analysis unavailable", "sessions", len(sessions), "error", err)
		return Unavailable[BalanceAnalysis](err)
	}
	if strings.TrimSpace(out.Analysis) == "" {
		s.logger.Warn("balance analysis incomplete")
		return Unavailable[BalanceAnalysis](ErrEmptyResponse)
	}
	return Ok(out)
}

func (s *Service) generate(ctx context.Context, p Prompt, v any) error {
	if s.gen == nil {
		return ErrDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}

	start := time.Now()
	text, err := s.gen.Generate(ctx, p)
	if err != nil {
		return err
	}
	s.logger.Debug("advice generated", "elapsed", time.Since(start), "bytes", len(text))

	if strings.TrimSpace(text) == "" {
		return ErrEmptyResponse
	}
	return unmarshalJSON([]byte(text), v)
}

// unmarshalJSON retries once through jsonrepair when the model returns
// malformed JSON
func unmarshalJSON(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		fixed, rerr := jsonrepair.JSONRepair(string(data))
		if rerr != nil {
			return fmt.Errorf("failed to repair response: %w", rerr)
		}
		return json.Unmarshal([]byte(fixed), v)
	}
	return err
}
