// Package main is the entry point for the jazzshed API server
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/james-see/jazzshed/pkg/advice"
	"github.com/james-see/jazzshed/pkg/api"
	"github.com/james-see/jazzshed/pkg/config"
	"github.com/james-see/jazzshed/pkg/export"
	"github.com/james-see/jazzshed/pkg/journal"
	"github.com/james-see/jazzshed/pkg/library"
	"github.com/james-see/jazzshed/pkg/logger"
)

func main() {
	var f config.Flags
	flag.StringVar(&f.Port, "port", "", "Server port (default 8080)")
	flag.StringVar(&f.DataDir, "data-dir", "", "Journal directory (default ~/.jazzshed)")
	flag.StringVar(&f.Env, "env", "", "Environment (development, staging, production)")
	flag.StringVar(&f.LogLevel, "log-level", "", "Log level")
	flag.StringVar(&f.LogFormat, "log-format", "", "Log format (json, pretty)")
	flag.Parse()

	if err := run(f); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func run(f config.Flags) error {
	cfg, err := config.Load(f)
	if err != nil {
		return err
	}
	log := logger.New(logger.Config{
		Format:      cfg.Logger.Format,
		Environment: cfg.App.Environment,
		Level:       logger.ParseLevel(cfg.Logger.Level),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lib, err := library.Load()
	if err != nil {
		return fmt.Errorf("failed to load tune library: %w", err)
	}

	if err := os.MkdirAll(cfg.JournalPath(), 0o750); err != nil {
		return fmt.Errorf("failed to create journal dir: %w", err)
	}
	j, err := journal.Open(journal.Options{Dir: cfg.JournalPath(), Logger: log.Logger})
	if err != nil {
		return err
	}
	defer j.Close()

	opts := advice.Options{Timeout: cfg.Advice.Timeout, RPS: cfg.Advice.RPS, Logger: log.Logger}
	var gen advice.Generator
	if cfg.AdviceEnabled() {
		g, err := advice.NewGeminiGenerator(ctx, cfg.Advice.APIKey, cfg.Advice.Model)
		if err != nil {
			log.WithError(err).Warn("advice unavailable")
		} else {
			gen = g
		}
	}

	port, err := strconv.Atoi(cfg.Server.Port)
	if err != nil {
		return fmt.Errorf("invalid port: %w", err)
	}

	log.Info("starting jazzshed API server", "port", port, "env", cfg.App.Environment, "advice", gen != nil)
	log.Info(fmt.Sprintf("Swagger docs available at http://localhost:%d/swagger/index.html", port))

	return api.StartServer(ctx, port, api.Deps{
		Library:  lib,
		Journal:  j,
		Advice:   advice.NewService(gen, opts),
		Exporter: export.NewMIDIExporter(),
		Logger:   log.Logger,
	})
}
