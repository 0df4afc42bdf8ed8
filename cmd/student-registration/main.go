// main is the entry point of the student registration service.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Open the in-memory store
//  4. Register the API and page routes
//  5. Start the HTTP server in a separate goroutine
//  6. Block until an OS signal (Ctrl+C / kill) arrives
//  7. Gracefully shut down: finish in-flight requests, then exit
//
// RUNNING THE SERVER:
//
//	go run ./cmd/student-registration --config=config/local.yaml
//
// or
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/student-registration
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aanand-mishra/student-registration/internal/config"
	"github.com/aanand-mishra/student-registration/internal/http/router"
	"github.com/aanand-mishra/student-registration/internal/http/session"
	"github.com/aanand-mishra/student-registration/internal/registration"
	"github.com/aanand-mishra/student-registration/internal/storage"
	"github.com/aanand-mishra/student-registration/internal/storage/memory"
	"github.com/aanand-mishra/student-registration/internal/storage/sqlite"
	"github.com/aanand-mishra/student-registration/internal/validation"
)

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting student-registration",
		slog.String("env", cfg.Env),
		slog.String("storage", cfg.Storage),
		slog.String("edit_mode", cfg.EditMode),
	)

	store, closeStore, err := openStorage(cfg.Storage)
	if err != nil {
		log.Error("failed to initialise storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	mode, err := registration.ParseEditMode(cfg.EditMode)
	if err != nil {
		log.Error("invalid edit mode", slog.String("error", err.Error()))
		os.Exit(1)
	}

	validate, err := validation.New()
	if err != nil {
		log.Error("failed to initialise validation", slog.String("error", err.Error()))
		os.Exit(1)
	}

	svc := registration.NewService(store, validate, mode, log)

	// Idle sessions are swept in the background until shutdown.
	sessions := session.NewManager(session.WithIdleTimeout(cfg.SessionIdleTimeout))
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sessions.Run(sweepCtx, time.Minute)

	handler, err := router.New(svc, sessions, router.Options{
		MaxPhotoBytes:  cfg.MaxPhotoBytes,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         log,
	})
	if err != nil {
		log.Error("failed to build routes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	server := &http.Server{
		Addr:         cfg.HTTPServer.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server encountered an error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

// openStorage returns the configured backend and a func releasing it.
func openStorage(kind string) (storage.Storage, func(), error) {
	switch kind {
	case config.StorageMemory:
		return memory.New(), func() {}, nil
	case config.StorageSQLite:
		s, err := sqlite.New()
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", kind)
}

// setupLogger returns a text logger at DEBUG in dev, JSON elsewhere.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case "staging":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
