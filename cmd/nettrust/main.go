package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lcalzada-xor/nettrust/internal/app"
	"github.com/lcalzada-xor/nettrust/internal/config"
	"github.com/lcalzada-xor/nettrust/internal/telemetry"
)

var version = "dev"

const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

func main() {
	os.Exit(run())
}

// run returns the process exit code once every deferred cleanup has run.
func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		return exitConfig
	}

	// Setup Structured Logging; stdout is reserved for one-shot results
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize Tracing
	if cfg.TraceFile != "" {
		f, err := os.Create(cfg.TraceFile)
		if err != nil {
			slog.Error("Failed to open trace file", "path", cfg.TraceFile, "error", err)
			return exitFailed
		}
		defer f.Close()

		shutdownTracer, err := telemetry.InitTracer(f, version)
		if err != nil {
			slog.Error("Failed to init tracer", "error", err)
		} else {
			defer func() {
				if err := shutdownTracer(context.Background()); err != nil {
					slog.Error("Failed to shutdown tracer", "error", err)
				}
			}()
		}
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		return exitFailed
	}

	// Root Context with cancellation on Interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.OneShot() {
		if _, err := application.RunOnce(ctx, os.Stdout); err != nil {
			slog.Error("Scan failed", "file", cfg.ScanFile, "error", err)
			return exitFailed
		}
		return exitOK
	}

	slog.Info("NetTrust starting", "version", version, "addr", cfg.Addr)
	if err := application.Run(ctx); err != nil {
		slog.Error("Application error", "error", err)
		return exitFailed
	}
	return exitOK
}
