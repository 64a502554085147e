package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/james-see/jazzshed/pkg/advice"
	"github.com/james-see/jazzshed/pkg/journal"
)

// MomentRequest logs a quick note against a tune
type MomentRequest struct {
	Tune string `json:"tune" binding:"required"`
	Note string `json:"note" binding:"required"`
}

// SessionRequest logs a practice session. Minutes are per pillar; a zero
// duration is the pillar sum.
type SessionRequest struct {
	Date               time.Time `json:"date"`
	Duration           int       `json:"duration" binding:"gte=0"`
	ToneTime           int       `json:"toneTime" binding:"gte=0"`
	TechniqueTime      int       `json:"techniqueTime" binding:"gte=0"`
	TunesTime          int       `json:"tunesTime" binding:"gte=0"`
	TranscriptionsTime int       `json:"transcriptionsTime" binding:"gte=0"`
	Notes              string    `json:"notes"`
}

// AnalysisResponse carries either the model's review or the fallback
type AnalysisResponse struct {
	Available bool                   `json:"available"`
	Reason    string                 `json:"reason,omitempty"`
	Totals    journal.Pillars        `json:"totals"`
	Neglected []string               `json:"neglected,omitempty"`
	Analysis  advice.BalanceAnalysis `json:"analysis"`
}

// neglectedShare flags a pillar below this share of total practice time
const neglectedShare = 0.10

func (s *Server) requireJournal(c *gin.Context) bool {
	if s.journal == nil {
		abortError(c, http.StatusServiceUnavailable, "journal not configured")
		return false
	}
	return true
}

// journalError maps validation failures to 400, unknown IDs to 404 and
// everything else to 500
func journalError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		abortError(c, http.StatusBadRequest, err.Error())
		return
	}
	if errors.Is(err, journal.ErrNotFound) {
		abortError(c, http.StatusNotFound, err.Error())
		return
	}
	abortError(c, http.StatusInternalServerError, err.Error())
}

// listMoments godoc
// @Summary List quick moments
// @Description Returns logged moments oldest first, optionally for one tune
// @Tags journal
// @Produce json
// @Param tune query string false "Tune ID"
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]string
// @Router /api/v1/moments [get]
func (s *Server) listMoments(c *gin.Context) {
	if !s.requireJournal(c) {
		return
	}
	moments, err := s.journal.Moments(c.Request.Context(), c.Query("tune"))
	if err != nil {
		journalError(c, err)
		return
	}
	if moments == nil {
		moments = []journal.QuickMoment{}
	}
	c.JSON(http.StatusOK, gin.H{"moments": moments})
}

// addMoment godoc
// @Summary Log a quick moment
// @Description Stores a short practice note against a tune
// @Tags journal
// @Accept json
// @Produce json
// @Param body body MomentRequest true "Moment"
// @Success 201 {object} journal.QuickMoment
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/moments [post]
func (s *Server) addMoment(c *gin.Context) {
	if !s.requireJournal(c) {
		return
	}
	var req MomentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, err.Error())
		return
	}

	m, err := s.journal.AddMoment(c.Request.Context(), journal.QuickMoment{Tune: req.Tune, Note: req.Note})
	if err != nil {
		journalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// deleteMoment godoc
// @Summary Delete a quick moment
// @Tags journal
// @Param id path string true "Moment ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/moments/{id} [delete]
func (s *Server) deleteMoment(c *gin.Context) {
	if !s.requireJournal(c) {
		return
	}
	if err := s.journal.DeleteMoment(c.Request.Context(), c.Param("id")); err != nil {
		journalError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// listSessions godoc
// @Summary List practice sessions
// @Description Returns sessions oldest first with pillar totals
// @Tags journal
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]string
// @Router /api/v1/sessions [get]
func (s *Server) listSessions(c *gin.Context) {
	if !s.requireJournal(c) {
		return
	}
	sessions, err := s.journal.Sessions(c.Request.Context())
	if err != nil {
		journalError(c, err)
		return
	}
	if sessions == nil {
		sessions = []journal.Session{}
	}
	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"totals":   journal.PillarTotals(sessions),
	})
}

// addSession godoc
// @Summary Log a practice session
// @Description Stores minutes spent on tone, technique, tunes and transcriptions
// @Tags journal
// @Accept json
// @Produce json
// @Param body body SessionRequest true "Session"
// @Success 201 {object} journal.Session
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/sessions [post]
func (s *Server) addSession(c *gin.Context) {
	if !s.requireJournal(c) {
		return
	}
	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := s.journal.AddSession(c.Request.Context(), journal.Session{
		Date:               req.Date,
		Duration:           req.Duration,
		ToneTime:           req.ToneTime,
		TechniqueTime:      req.TechniqueTime,
		TunesTime:          req.TunesTime,
		TranscriptionsTime: req.TranscriptionsTime,
		Notes:              req.Notes,
	})
	if err != nil {
		journalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

// deleteSession godoc
// @Summary Delete a practice session
// @Tags journal
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/sessions/{id} [delete]
func (s *Server) deleteSession(c *gin.Context) {
	if !s.requireJournal(c) {
		return
	}
	if err := s.journal.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		journalError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// balanceAnalysis godoc
// @Summary Analyze practice balance
// @Description Reviews the last seven sessions across the four pillars
// @Tags practice
// @Produce json
// @Success 200 {object} AnalysisResponse
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/sessions/analysis [post]
func (s *Server) balanceAnalysis(c *gin.Context) {
	if !s.requireJournal(c) {
		return
	}
	ctx := c.Request.Context()
	sessions, err := s.journal.RecentSessions(ctx, 7)
	if err != nil {
		journalError(c, err)
		return
	}
	if len(sessions) == 0 {
		abortError(c, http.StatusBadRequest, "no sessions logged yet")
		return
	}

	totals := journal.PillarTotals(sessions)
	res := s.advice.RequestBalanceAnalysis(ctx, sessions)
	resp := AnalysisResponse{
		Available: res.OK(),
		Totals:    totals,
		Neglected: totals.Neglected(neglectedShare),
		Analysis:  res.OrElse(advice.FallbackBalanceAnalysis),
	}
	if err := res.Reason(); err != nil {
		resp.Reason = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}
