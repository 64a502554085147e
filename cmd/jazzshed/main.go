// Package main is the entry point for the jazzshed CLI
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/james-see/jazzshed/pkg/advice"
	"github.com/james-see/jazzshed/pkg/api"
	"github.com/james-see/jazzshed/pkg/config"
	"github.com/james-see/jazzshed/pkg/export"
	"github.com/james-see/jazzshed/pkg/journal"
	"github.com/james-see/jazzshed/pkg/library"
	"github.com/james-see/jazzshed/pkg/logger"
	"github.com/james-see/jazzshed/pkg/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flags   config.Flags
	variant string
	shed    *app
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "jazzshed",
	Short: "A practice companion for jazz musicians",
	Long: `jazzshed shows lead-sheet chord charts in concert, Bb or Eb, highlights
ii-V-I, minor ii-V-i and turnaround patterns, recommends scales and guide
tones, and keeps a practice journal.

Examples:
  jazzshed tunes --category Blues
  jazzshed chart autumn-leaves -t Bb
  jazzshed patterns tenor-madness --variant advanced
  jazzshed guide Dm7 G7alt Cmaj7
  jazzshed study all-the-things-you-are -t Eb
  jazzshed export blue-bossa -o blue-bossa.mid
  jazzshed session add --technique 30 --tunes 20
  jazzshed tui
  jazzshed serve --port 8080`,
	Version:           fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.Env, "env", "", "Environment (development, staging, production)")
	pf.StringVar(&flags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&flags.LogFormat, "log-format", "", "Log format (json, pretty)")
	pf.StringVar(&flags.DataDir, "data-dir", "", "Journal directory (default ~/.jazzshed)")
	pf.StringVarP(&flags.Transposition, "transpose", "t", "", "Instrument key: C, Bb or Eb")
	pf.StringVar(&flags.EnvFile, "env-file", "", "Path to a .env file (default .env)")

	// serve command
	serveCmd.Flags().StringVarP(&flags.Port, "port", "p", "", "Server port (default 8080)")

	// Add commands
	rootCmd.AddCommand(tunesCmd, chartCmd, patternsCmd, transposeCmd, scalesCmd, guideCmd, studyCmd, exportCmd, practiceCmd)
	rootCmd.AddCommand(momentCmd, sessionCmd, adviceCmd, balanceCmd)
	rootCmd.AddCommand(tuiCmd, serveCmd)
}

// app is what every command needs: resolved config, a logger and the library
type app struct {
	cfg *config.Config
	log *logger.Logger
	lib *library.Library
}

func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{
		Format:      cfg.Logger.Format,
		Environment: cfg.App.Environment,
		Level:       logger.ParseLevel(cfg.Logger.Level),
	}).WithField("command", cmd.Name())

	lib, err := library.Load()
	if err != nil {
		return fmt.Errorf("failed to load tune library: %w", err)
	}
	log.Debug("library loaded", "tunes", lib.Len())

	shed = &app{cfg: cfg, log: log, lib: lib}
	return nil
}

func (a *app) openJournal() (*journal.Journal, error) {
	path := a.cfg.JournalPath()
	if err := os.MkdirAll(path, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create journal dir: %w", err)
	}
	return journal.Open(journal.Options{Dir: path, Logger: a.log.Logger})
}

// adviceService returns a disabled service when no API key is configured
func (a *app) adviceService(ctx context.Context) *advice.Service {
	opts := advice.Options{
		Timeout: a.cfg.Advice.Timeout,
		RPS:     a.cfg.Advice.RPS,
		Logger:  a.log.Logger,
	}
	if !a.cfg.AdviceEnabled() {
		a.log.Debug("advice disabled, no API key")
		return advice.NewService(nil, opts)
	}

	gen, err := advice.NewGeminiGenerator(ctx, a.cfg.Advice.APIKey, a.cfg.Advice.Model)
	if err != nil {
		a.log.WithError(err).Warn("advice unavailable")
		return advice.NewService(nil, opts)
	}
	return advice.NewService(gen, opts)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runTUI(cmd *cobra.Command, args []string) error {
	j, err := shed.openJournal()
	if err != nil {
		// The charts still work without a journal
		shed.log.WithError(err).Warn("journal unavailable")
	} else {
		defer j.Close()
	}

	return tui.Run(tui.Options{
		Library:       shed.lib,
		Journal:       j,
		Advice:        shed.adviceService(cmd.Context()),
		Exporter:      export.NewMIDIExporter(),
		Transposition: shed.cfg.Practice.Transposition,
		Logger:        logger.Discard().Logger,
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	j, err := shed.openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	port, err := strconv.Atoi(shed.cfg.Server.Port)
	if err != nil {
		return fmt.Errorf("invalid port: %w", err)
	}

	fmt.Printf("Starting API server on port %d...\n", port)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", port)
	return api.StartServer(ctx, port, api.Deps{
		Library:  shed.lib,
		Journal:  j,
		Advice:   shed.adviceService(ctx),
		Exporter: export.NewMIDIExporter(),
		Logger:   shed.log.Logger,
	})
}
