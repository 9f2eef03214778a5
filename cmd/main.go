/*
Package main is the entry point for the Sala Chat relay server.

It loads configuration, initializes the global logging system, selects the
storage backend (in-memory or PostgreSQL), starts the eviction sweeper and the
HTTP server, and gracefully handles operating system interrupt signals
(SIGINT, SIGTERM) to ensure a smooth shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"salachat/internal/app/msglog"
	"salachat/internal/app/pgstore"
	"salachat/internal/app/presence"
	"salachat/internal/app/sweeper"
	"salachat/internal/configs"
	"salachat/internal/handler"
	"salachat/internal/pkg/logx"
)

func main() {
	// A missing .env file is fine; the environment may be set externally.
	_ = godotenv.Load()

	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Dur("sweep_interval", cfg.SweepInterval).
		Dur("stale_after", cfg.StaleAfter).
		Bool("postgres", cfg.DatabaseDSN != "").
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var presenceStore presence.Store
	var messageLog msglog.Log

	if cfg.DatabaseDSN != "" {
		pool, err := pgstore.NewPool(cfg.DatabaseDSN)
		if err != nil {
			logx.Fatal(err, "Failed to connect to database")
		}
		defer pool.Close()

		presenceStore = pgstore.NewPresenceStore(pool)
		messageLog = pgstore.NewMessageLog(pool)
	} else {
		memPresence := presence.NewMemoryStore()
		presenceStore = memPresence
		messageLog = msglog.NewMemoryLog(memPresence)
	}

	sweep := sweeper.New(presenceStore, messageLog, cfg.SweepInterval, cfg.StaleAfter)
	if err := sweep.Start(); err != nil {
		logx.Fatal(err, "Failed to start eviction sweeper")
	}

	deps := &handler.AppDeps{
		Presence: presenceStore,
		Messages: messageLog,
		Config:   cfg,
	}
	router := handler.Router(deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Sala Chat relay starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	sweep.Stop()

	logx.Info("Server gracefully stopped.")
}
