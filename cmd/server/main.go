// Package main is the entry point for the rap lyrics server.
//
// main stays minimal: read configuration from the environment, build the
// shared dependencies (logger, generation client), and hand off to
// internal/server. All actual logic lives in the imported packages.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/harshyelwatkar/rapmania/internal/generator"
	"github.com/harshyelwatkar/rapmania/internal/generator/gemini"
	"github.com/harshyelwatkar/rapmania/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// PORT defaults to 8080.
	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	// DB_PATH overrides the default database location, e.g.
	// DB_PATH=/var/lib/rapmania/prod.db
	dbPath := "data/rapmania.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// JWT_SECRET must be a long random string. Generate one with:
	//   JWT_SECRET=$(openssl rand -hex 32)
	// Sessions are the front door of every write path, so unlike the other
	// credentials this one is mandatory.
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET is not set — refusing to start without a session secret")
		os.Exit(1)
	}

	// The lyric generator is optional: without GEMINI_API_KEY the server
	// still runs, and POST /api/rap/generate explains what's missing.
	var gen generator.Generator
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		gen = gemini.New(gemini.DefaultConfig(apiKey), logger)
	} else {
		logger.Warn("GEMINI_API_KEY not set — lyric generation will be unavailable")
	}

	// Google OAuth redirect flow is optional as well; the client-token
	// POST /api/auth/google works regardless.
	googleClientID := os.Getenv("GOOGLE_CLIENT_ID")
	googleClientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	googleCallbackURL := os.Getenv("GOOGLE_CALLBACK_URL")
	if googleCallbackURL == "" {
		googleCallbackURL = fmt.Sprintf("http://localhost:%d/auth/google/callback", port)
	}
	if googleClientID == "" || googleClientSecret == "" {
		logger.Warn("Google OAuth credentials not set — /auth/google/login will be unavailable")
	}

	cfg := server.Config{
		Port:               port,
		DBPath:             dbPath,
		JWTSecret:          jwtSecret,
		GoogleClientID:     googleClientID,
		GoogleClientSecret: googleClientSecret,
		GoogleCallbackURL:  googleCallbackURL,
	}

	srv, err := server.New(cfg, logger, gen)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until shutdown (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
