// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: handlers, services, repositories, and
// middleware are all wired together here. Each layer receives only what it
// needs — services get repository interfaces, handlers get services, and
// nothing below the handler layer ever sees HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/harshyelwatkar/rapmania/internal/auth"
	"github.com/harshyelwatkar/rapmania/internal/generator"
	"github.com/harshyelwatkar/rapmania/internal/handler"
	"github.com/harshyelwatkar/rapmania/internal/middleware"
	sqliteRepo "github.com/harshyelwatkar/rapmania/internal/repository/sqlite"
	"github.com/harshyelwatkar/rapmania/internal/service"
)

// Config holds server configuration. A struct (instead of parameters) keeps
// the signature stable as options grow and lets main load everything from
// the environment in one place.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string

	// Google OAuth for the server-side redirect flow. All three empty means
	// the flow is disabled; the routes stay registered and report a
	// misconfigured deployment.
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
}

// Server owns the router and the resources that must be released on
// shutdown, most importantly the database connection.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain:
//
//	sqlite.DB → services (auth, rap) → handlers → routes
//
// gen may be nil when the provider credential is absent; the generate
// endpoint then reports a misconfigured deployment instead of calling out.
func New(cfg Config, logger *slog.Logger, gen generator.Generator) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Reference data must exist before the first request.
	if err := db.SeedDefaultGenres(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("seeding genres: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(gen); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// Middleware executes in registration order:
//  1. RequestID — unique ID per request, for tracing
//  2. RealIP — real client IP from proxy headers
//  3. Recoverer — panics become 500s instead of crashes
//  4. Logger — one structured line per completed request
func (s *Server) setupRoutes(gen generator.Generator) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	var google *auth.GoogleProvider
	if s.config.GoogleClientID != "" && s.config.GoogleClientSecret != "" {
		google = auth.NewGoogleProvider(
			s.config.GoogleClientID,
			s.config.GoogleClientSecret,
			s.config.GoogleCallbackURL,
		)
	}

	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	rapService := service.NewRapService(s.db, s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, google, s.logger)
	genreHandler := handler.NewGenreHandler(s.db, s.logger)
	generateHandler := handler.NewGenerateHandler(gen, s.logger)
	rapHandler := handler.NewRapHandler(rapService, s.logger)

	requireAuth := auth.RequireAuth(tokens)
	optionalAuth := auth.OptionalAuth(tokens)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Server-side OAuth redirect flow lives outside /api: these are browser
	// navigations, not XHR calls.
	s.router.Get("/auth/google/login", authHandler.HandleGoogleLogin)
	s.router.Get("/auth/google/callback", authHandler.HandleGoogleCallback)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.HandleSignUp)
			r.Post("/signin", authHandler.HandleSignIn)
			r.Post("/google", authHandler.HandleGoogleSignIn)
			r.With(requireAuth).Post("/signout", authHandler.HandleSignOut)
			r.With(requireAuth).Get("/me", authHandler.HandleMe)
		})

		r.Get("/genres", genreHandler.HandleList)

		r.Route("/rap", func(r chi.Router) {
			r.With(requireAuth).Post("/generate", generateHandler.HandleGenerate)
			r.With(requireAuth).Post("/", rapHandler.HandleCreate)
			r.With(requireAuth).Get("/user", rapHandler.HandleListMine)
			r.Get("/public", rapHandler.HandleListPublic)
			r.Get("/search", rapHandler.HandleSearch)

			// The single-rap read is access-gated, so it needs to know who is
			// asking when a session exists — but must not require one.
			r.With(optionalAuth).Get("/{id}", rapHandler.HandleGet)
			r.With(requireAuth).Put("/{id}", rapHandler.HandleUpdate)
			r.With(requireAuth).Delete("/{id}", rapHandler.HandleDelete)

			r.With(requireAuth).Post("/{id}/like", rapHandler.HandleLike)
			r.With(requireAuth).Delete("/{id}/like", rapHandler.HandleUnlike)
			r.Get("/{id}/likes", rapHandler.HandleLikeCount)
		})
	})

	return nil
}

// Router exposes the configured router, mainly for tests that drive the full
// HTTP surface through httptest without binding a port.
func (s *Server) Router() http.Handler {
	return s.router
}

// Close releases the server's resources without going through Start's
// shutdown path. Used by tests.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the HTTP server and handles graceful shutdown:
//  1. stop accepting new connections
//  2. wait up to 30s for in-flight requests
//  3. close the database (flushes WAL, releases the file lock)
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // generation calls can take a while
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
