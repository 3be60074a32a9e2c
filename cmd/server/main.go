// Package main is the entry point for CaseLedger, the financial analysis
// backend for criminal investigation casework. It ingests bank statement
// exports into a normalized transaction ledger, aggregates case metrics,
// runs red-flag detection (fractioning, fan-in/fan-out, circularity,
// incompatible profile) and renders report artifacts for case files.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opencoaf/caseledger/internal/config"
	"github.com/opencoaf/caseledger/internal/di"
	"github.com/opencoaf/caseledger/internal/scheduler"
	"github.com/opencoaf/caseledger/internal/server"
	"github.com/opencoaf/caseledger/pkg/logger"
)

// cleanupSchedule runs the retention job every day at 03:00 (seconds field
// first, robfig/cron v3 with seconds enabled).
const cleanupSchedule = "0 0 3 * * *"

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger with config level
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting CaseLedger")

	// Wire all dependencies using DI container. This initializes the 5
	// databases, repositories, clients, services and background jobs, and
	// merges settings stored in config.db over the environment.
	container, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.CloseDatabases()

	// Initialize HTTP server
	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Container: container,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
	})
	srv.SetCleanupJob(container.CleanupJob)

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Start the scheduler with the retention cleanup job
	sched := scheduler.New(log)
	if err := sched.AddJob(cleanupSchedule, container.CleanupJob); err != nil {
		log.Error().Err(err).Msg("Failed to register cleanup job")
	}
	sched.Start()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Stop the scheduler first so no job touches the databases mid-shutdown
	sched.Stop()

	// Graceful shutdown with a 10 second deadline for in-flight requests
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
