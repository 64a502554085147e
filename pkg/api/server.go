// Package api provides the REST API server for jazzshed
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/james-see/jazzshed/pkg/advice"
	"github.com/james-see/jazzshed/pkg/export"
	"github.com/james-see/jazzshed/pkg/journal"
	"github.com/james-see/jazzshed/pkg/library"
)

// @title Jazzshed API
// @version 1.0
// @description Chord charts, pattern analysis, scale advice and a practice journal for jazz musicians
// @host localhost:8080
// @BasePath /api/v1

// Deps are the services the handlers read from. Journal and Advice may be
// nil; their routes then answer 503.
type Deps struct {
	Library  *library.Library
	Journal  *journal.Journal
	Advice   *advice.Service
	Exporter *export.MIDIExporter
	Logger   *slog.Logger
}

// Server wires the handlers to a gin engine
type Server struct {
	lib      *library.Library
	journal  *journal.Journal
	advice   *advice.Service
	exporter *export.MIDIExporter
	logger   *slog.Logger
	router   *gin.Engine
}

// NewServer builds the router. A nil exporter or logger gets a default.
func NewServer(d Deps) *Server {
	s := &Server{
		lib:      d.Library,
		journal:  d.Journal,
		advice:   d.Advice,
		exporter: d.Exporter,
		logger:   d.Logger,
	}
	if s.exporter == nil {
		s.exporter = export.NewMIDIExporter()
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.advice == nil {
		s.advice = advice.NewService(nil, advice.Options{Logger: s.logger})
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/tunes", s.listTunes)
		v1.GET("/tunes/:id", s.getChart)
		v1.GET("/tunes/:id/patterns", s.listPatterns)
		v1.GET("/tunes/:id/scales", s.listScales)
		v1.GET("/tunes/:id/midi", s.exportMIDI)
		v1.PUT("/tunes/:id/mastery", s.setMastery)
		v1.POST("/tunes/:id/advice", s.practiceAdvice)
		v1.GET("/chords/:symbol", s.describeChord)
		v1.GET("/moments", s.listMoments)
		v1.POST("/moments", s.addMoment)
		v1.DELETE("/moments/:id", s.deleteMoment)
		v1.GET("/sessions", s.listSessions)
		v1.POST("/sessions", s.addSession)
		v1.DELETE("/sessions/:id", s.deleteSession)
		v1.POST("/sessions/analysis", s.balanceAnalysis)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	s.router = r
	return s
}

// Handler exposes the router for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on port until ctx is cancelled, then drains in-flight
// requests for up to five seconds
func (s *Server) Run(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api server listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	s.logger.Info("api server stopped")
	return nil
}

// StartServer starts the API server on the specified port
func StartServer(ctx context.Context, port int, d Deps) error {
	return NewServer(d).Run(ctx, port)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "jazzshed",
	})
}

func abortError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
