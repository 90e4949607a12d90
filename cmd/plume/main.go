// Copyright (c) 2026 Plume contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Command plume serves the portfolio/blog API: public post reading with
// engagement counters, and a session-authenticated admin surface for
// writing, image uploads, and the event log.
package main

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"plume/internal/ai"
	"plume/internal/auth"
	"plume/internal/config"
	"plume/internal/engagement"
	"plume/internal/geoip"
	"plume/internal/handler/api"
	"plume/internal/logging"
	"plume/internal/middleware"
	"plume/internal/scheduler"
	"plume/internal/session"
	"plume/internal/store"
	"plume/internal/version"
)

// Build-time version info injected via ldflags.
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
		_, _ = fmt.Printf("plume %s (commit: %s, built: %s)\n", info.Version, info.GitCommit, info.BuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load a .env file if present (development).
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(textHandler))

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// WARN and ERROR logs also land in the event log from here on.
	slog.SetDefault(slog.New(logging.NewEventLogHandler(textHandler, db)))

	ctx := context.Background()
	if cfg.DoSeed {
		if err := store.Seed(ctx, db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	geo := geoip.NewLookup()
	if cfg.GeoIPEnabled() {
		if err := geo.Init(cfg.GeoIPDBPath); err != nil {
			slog.Warn("GeoIP disabled", "error", err, "path", cfg.GeoIPDBPath)
		} else {
			slog.Info("GeoIP enabled", "path", cfg.GeoIPDBPath)
			defer func() { _ = geo.Close() }()
		}
	}

	var assistant *ai.Assistant
	if cfg.AssistEnabled() {
		assistant = ai.NewAssistant(cfg.OpenAIKey, cfg.OpenAIModel)
		slog.Info("editor assist enabled", "model", cfg.OpenAIModel)
	}

	isDev := cfg.IsDevelopment()
	sessions := session.New(db, isDev)
	gate := auth.NewGate(cfg.AdminEmail)
	tracker := engagement.NewTracker(store.New(db), geo)

	sched := scheduler.New(db, slog.Default(), geo, cfg.RetentionDays)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	apiHandler := api.NewHandler(db, sessions, gate, tracker, assistant, cfg)

	csrfKey := sha256.Sum256([]byte(cfg.SessionSecret))

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders(isDev))
	r.Use(middleware.NewGlobalRateLimiter(50, 100).Middleware())
	r.Use(middleware.CSRF(middleware.DefaultCSRFConfig(csrfKey[:], isDev)))
	r.Mount("/api", apiHandler.Routes())
	r.Get("/healthz", apiHandler.Healthz)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // image uploads can be slow
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
