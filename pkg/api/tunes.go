package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/james-see/jazzshed/pkg/advice"
	"github.com/james-see/jazzshed/pkg/export"
	"github.com/james-see/jazzshed/pkg/harmony"
	"github.com/james-see/jazzshed/pkg/library"
)

// TuneSummary is a library row
type TuneSummary struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Composer string           `json:"composer"`
	Key      string           `json:"key"`
	Form     string           `json:"form"`
	Tempo    string           `json:"tempo"`
	Category harmony.Category `json:"category"`
	Mastery  harmony.Mastery  `json:"mastery"`
	Variants []string         `json:"variants,omitempty"`
}

// ChartResponse is a tune laid out for reading in one transposition
type ChartResponse struct {
	TuneSummary
	Transposition harmony.Transposition     `json:"transposition"`
	DisplayKey    string                    `json:"displayKey"`
	Variant       string                    `json:"variant,omitempty"`
	TotalBeats    float64                   `json:"totalBeats"`
	Sections      []harmony.SectionMeasures `json:"sections"`
	Patterns      []harmony.Pattern         `json:"patterns"`
	PracticeTools *harmony.PracticeTools    `json:"practiceTools,omitempty"`
}

// ChordResponse describes one chord symbol
type ChordResponse struct {
	Symbol     string                `json:"symbol"`
	Display    string                `json:"display"`
	Root       harmony.PitchClass    `json:"root"`
	Family     harmony.ScaleFamily   `json:"family"`
	Scale      string                `json:"scale"`
	GuideTones *harmony.GuideTones   `json:"guideTones,omitempty"`
	Transposed harmony.Transposition `json:"transposition"`
}

// MasteryRequest moves a tune to a new mastery level
type MasteryRequest struct {
	Mastery harmony.Mastery `json:"mastery" binding:"required"`
}

// AdviceResponse carries either model advice or the built-in fallback
type AdviceResponse struct {
	Available bool                   `json:"available"`
	Reason    string                 `json:"reason,omitempty"`
	Request   advice.PracticeRequest `json:"request"`
	Advice    advice.PracticeAdvice  `json:"advice"`
}

func summarize(t harmony.Tune) TuneSummary {
	s := TuneSummary{
		ID:       t.ID,
		Title:    t.Title,
		Composer: t.Composer,
		Key:      t.Key,
		Form:     t.Form,
		Tempo:    t.Tempo,
		Category: t.Category,
		Mastery:  t.Mastery,
	}
	for _, v := range t.Variants {
		s.Variants = append(s.Variants, v.Name)
	}
	return s
}

// lookupTune writes the 404 itself; callers just return on !ok
func (s *Server) lookupTune(c *gin.Context) (harmony.Tune, bool) {
	t, err := s.lib.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, library.ErrTuneNotFound) {
			abortError(c, http.StatusNotFound, err.Error())
		} else {
			abortError(c, http.StatusInternalServerError, err.Error())
		}
		return harmony.Tune{}, false
	}
	return t, true
}

// chartParams reads ?transpose= and ?variant=. Unknown transpositions fall
// back to concert pitch; unknown variants to the default sections.
func chartParams(c *gin.Context, t harmony.Tune) (harmony.Transposition, int) {
	return harmony.ParseTransposition(c.Query("transpose")), t.VariantIndex(c.Query("variant"))
}

// listTunes godoc
// @Summary List tunes
// @Description Returns the tune library, optionally filtered by category
// @Tags tunes
// @Produce json
// @Param category query string false "Category (Medium, Latin, Blues, Rhythm Changes, Modal/Blues)"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/tunes [get]
func (s *Server) listTunes(c *gin.Context) {
	tunes := s.lib.List(harmony.Category(c.Query("category")))
	out := make([]TuneSummary, 0, len(tunes))
	for _, t := range tunes {
		out = append(out, summarize(t))
	}
	c.JSON(http.StatusOK, gin.H{
		"tunes":      out,
		"categories": s.lib.Categories(),
	})
}

// getChart godoc
// @Summary Get a chord chart
// @Description Returns a tune grouped into measures, transposed for the instrument, with its detected patterns
// @Tags tunes
// @Produce json
// @Param id path string true "Tune ID"
// @Param transpose query string false "C, Bb or Eb (default: C)"
// @Param variant query string false "Variant name or index"
// @Success 200 {object} ChartResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/tunes/{id} [get]
func (s *Server) getChart(c *gin.Context) {
	t, ok := s.lookupTune(c)
	if !ok {
		return
	}
	to, variant := chartParams(c, t)

	active := t.ActiveSections(variant)
	transposed := harmony.TransposeSections(active, to)
	resp := ChartResponse{
		TuneSummary:   summarize(t),
		Transposition: to,
		DisplayKey:    harmony.Transpose(t.Key, to),
		TotalBeats:    harmony.TotalBeats(active),
		Sections:      harmony.GroupMeasures(transposed),
		Patterns:      transposePatterns(harmony.ScanTune(&t, variant), to),
		PracticeTools: t.PracticeTools,
	}
	if variant >= 0 {
		resp.Variant = t.Variants[variant].Name
	}
	c.JSON(http.StatusOK, resp)
}

// transposePatterns detects in concert pitch and respells for display, so
// the same beats are highlighted in every transposition
func transposePatterns(patterns []harmony.Pattern, to harmony.Transposition) []harmony.Pattern {
	out := make([]harmony.Pattern, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, p.Transposed(to))
	}
	return out
}

// listPatterns godoc
// @Summary Detect harmonic patterns
// @Description Returns the ii-V-I, minor ii-V-i and turnaround patterns in the active harmony
// @Tags analysis
// @Produce json
// @Param id path string true "Tune ID"
// @Param transpose query string false "C, Bb or Eb (default: C)"
// @Param variant query string false "Variant name or index"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /api/v1/tunes/{id}/patterns [get]
func (s *Server) listPatterns(c *gin.Context) {
	t, ok := s.lookupTune(c)
	if !ok {
		return
	}
	to, variant := chartParams(c, t)

	patterns := transposePatterns(harmony.ScanTune(&t, variant), to)
	hints := make(map[harmony.PatternType]string)
	for _, p := range patterns {
		hints[p.Type] = p.Type.ScaleHint()
	}
	c.JSON(http.StatusOK, gin.H{
		"tune":          t.ID,
		"transposition": to,
		"patterns":      patterns,
		"scaleHints":    hints,
	})
}

// listScales godoc
// @Summary Required scales
// @Description Returns the scale family needed for every chord, plus the technique catalogue
// @Tags analysis
// @Produce json
// @Param id path string true "Tune ID"
// @Param variant query string false "Variant name or index"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /api/v1/tunes/{id}/scales [get]
func (s *Server) listScales(c *gin.Context) {
	t, ok := s.lookupTune(c)
	if !ok {
		return
	}
	_, variant := chartParams(c, t)

	c.JSON(http.StatusOK, gin.H{
		"tune":      t.ID,
		"scales":    harmony.RequiredScales(t.ActiveSections(variant)),
		"catalogue": harmony.ScaleCatalogue,
	})
}

// exportMIDI godoc
// @Summary Export a chart as MIDI
// @Description Renders the active harmony as block chords in a Standard MIDI File
// @Tags export
// @Produce audio/midi
// @Param id path string true "Tune ID"
// @Param transpose query string false "C, Bb or Eb (default: C)"
// @Param variant query string false "Variant name or index"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string
// @Router /api/v1/tunes/{id}/midi [get]
func (s *Server) exportMIDI(c *gin.Context) {
	t, ok := s.lookupTune(c)
	if !ok {
		return
	}
	to, variant := chartParams(c, t)

	data, err := s.exporter.ChartToMIDI(export.ChartFromTune(t, variant, to))
	if err != nil {
		abortError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.mid", t.ID))
	c.Data(http.StatusOK, "audio/midi", data)
}

// setMastery godoc
// @Summary Set mastery level
// @Description Moves a tune to Learning, Familiar, Solid or Owned
// @Tags tunes
// @Accept json
// @Produce json
// @Param id path string true "Tune ID"
// @Param body body MasteryRequest true "New level"
// @Success 200 {object} TuneSummary
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/tunes/{id}/mastery [put]
func (s *Server) setMastery(c *gin.Context) {
	var req MasteryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, err.Error())
		return
	}

	t, err := s.lib.SetMastery(c.Param("id"), req.Mastery)
	switch {
	case errors.Is(err, library.ErrTuneNotFound):
		abortError(c, http.StatusNotFound, err.Error())
		return
	case err != nil:
		abortError(c, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Info("mastery updated", "tune", t.ID, "mastery", t.Mastery)
	c.JSON(http.StatusOK, summarize(t))
}

// describeChord godoc
// @Summary Describe a chord
// @Description Transposes a chord symbol and returns its scale and guide tones. Encode sharps as %23.
// @Tags analysis
// @Produce json
// @Param symbol path string true "Chord symbol in concert pitch"
// @Param transpose query string false "C, Bb or Eb (default: C)"
// @Success 200 {object} ChordResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/chords/{symbol} [get]
func (s *Server) describeChord(c *gin.Context) {
	symbol := strings.TrimSpace(c.Param("symbol"))
	root, ok := harmony.RootOf(symbol)
	if !ok {
		abortError(c, http.StatusBadRequest, fmt.Sprintf("not a chord symbol: %q", symbol))
		return
	}

	to := harmony.ParseTransposition(c.Query("transpose"))
	display := harmony.Transpose(symbol, to)
	resp := ChordResponse{
		Symbol:     symbol,
		Display:    display,
		Root:       harmony.TransposeKey(root, to),
		Family:     harmony.FamilyOf(display),
		Scale:      harmony.RecommendedScale(display),
		Transposed: to,
	}
	if gt, ok := harmony.GuideTonesOf(display); ok {
		resp.GuideTones = &gt
	}
	c.JSON(http.StatusOK, resp)
}

// practiceAdvice godoc
// @Summary Practice advice
// @Description Asks the coach for a strategy and a drill. Falls back to built-in advice when unavailable.
// @Tags practice
// @Produce json
// @Param id path string true "Tune ID"
// @Param transpose query string false "C, Bb or Eb (default: C)"
// @Success 200 {object} AdviceResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/tunes/{id}/advice [post]
func (s *Server) practiceAdvice(c *gin.Context) {
	t, ok := s.lookupTune(c)
	if !ok {
		return
	}
	to := harmony.ParseTransposition(c.Query("transpose"))

	req := advice.BuildPracticeRequest(t, to)
	res := s.advice.RequestPracticeAdvice(c.Request.Context(), req)
	resp := AdviceResponse{
		Available: res.OK(),
		Request:   req,
		Advice:    res.OrElse(advice.FallbackPracticeAdvice),
	}
	if err := res.Reason(); err != nil {
		resp.Reason = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}
