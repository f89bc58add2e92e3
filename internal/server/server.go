// Package server is the composition root: it opens the store, builds the
// dependency graph, defines every route, and runs the HTTP server with
// graceful shutdown.
//
// The server runs in one of two modes, decided at startup. With a store it
// serves the full API. Without one (no DB path, or the database failed to
// open) it degrades to demo mode: the catalog answers from the built-in
// demo set, and every account-backed route answers 503 instead of
// crashing. Degrading instead of exiting is deliberate — the catalog stays
// browsable even with no infrastructure at all.
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

	"github.com/meteoryte/banana-oracle/internal/auth"
	"github.com/meteoryte/banana-oracle/internal/config"
	"github.com/meteoryte/banana-oracle/internal/handler"
	"github.com/meteoryte/banana-oracle/internal/middleware"
	"github.com/meteoryte/banana-oracle/internal/oracle"
	"github.com/meteoryte/banana-oracle/internal/repository"
	sqliteRepo "github.com/meteoryte/banana-oracle/internal/repository/sqlite"
	"github.com/meteoryte/banana-oracle/internal/service"
)

// Server owns the router, the store, and the configuration.
type Server struct {
	router *chi.Mux
	cfg    config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB // nil in demo mode
}

// New builds the server and its full dependency graph.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	if len(cfg.JWTSecret) < 16 {
		return nil, fmt.Errorf("server: JWT_SECRET must be set (at least 16 characters)")
	}

	var db *sqliteRepo.DB
	if cfg.DBPath == "" {
		logger.Warn("no DB_PATH configured, running in demo mode")
	} else {
		var err error
		db, err = sqliteRepo.New(cfg.DBPath)
		if err != nil {
			logger.Warn("database unavailable, running in demo mode",
				slog.String("path", cfg.DBPath),
				slog.String("error", err.Error()),
			)
			db = nil
		}
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		if db != nil {
			db.Close()
		}
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// providers builds the enabled OAuth providers. Callback URLs are derived
// from the public base URL and must match each provider's app settings.
func (s *Server) providers() map[string]auth.Provider {
	providers := make(map[string]auth.Provider)
	if s.cfg.GitHub.Enabled() {
		providers["github"] = auth.NewGitHubProvider(
			s.cfg.GitHub.ClientID,
			s.cfg.GitHub.ClientSecret,
			s.cfg.PublicURL+"/api/auth/github/callback",
		)
	}
	if s.cfg.Google.Enabled() {
		providers["google"] = auth.NewGoogleProvider(
			s.cfg.Google.ClientID,
			s.cfg.Google.ClientSecret,
			s.cfg.PublicURL+"/api/auth/google/callback",
		)
	}
	return providers
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.CORS(s.cfg.FrontendURL))
	s.router.Use(middleware.NewRateLimiter(100, 15*time.Minute).Handler)

	// The catalog works in both modes; the store pieces are nil in demo
	// mode and the service falls back to the demo set.
	var bananaRepo repository.BananaRepository
	var pinger service.Pinger
	if s.db != nil {
		bananaRepo = s.db.Bananas()
		pinger = s.db
	}
	catalog := service.NewCatalogService(bananaRepo, pinger, s.logger)

	termsHandler := handler.NewTermsHandler(service.NewTermsService())
	healthHandler := handler.NewHealthHandler(pinger)

	if s.db == nil {
		s.setupDemoRoutes(catalog, termsHandler, healthHandler)
		return nil
	}

	tokens, err := auth.NewTokenService(s.cfg.JWTSecret)
	if err != nil {
		return err
	}
	sessions := auth.NewSessionManager(s.db.Sessions())
	authn := auth.NewAuthenticator(tokens, sessions)

	accounts := s.db.Accounts()
	identity := service.NewIdentityService(accounts, tokens, auth.NewPasswordService(), s.logger)
	quota := service.NewQuotaService(accounts, s.logger)

	oracleClient := oracle.New(s.cfg.OracleAPIKey, s.cfg.OracleBaseURL)
	if !oracleClient.Configured() {
		s.logger.Warn("ORACLE_API_KEY not set, the Oracle will answer 503")
	}
	oracleService := service.NewOracleService(oracleClient, accounts, quota, s.logger)

	bananaHandler := handler.NewBananaHandler(catalog, identity, s.logger)
	authHandler := handler.NewAuthHandler(identity, catalog, sessions, s.providers(), s.cfg.FrontendURL, s.logger)
	oracleHandler := handler.NewOracleHandler(oracleService, s.logger)

	// Load balancers probe the root path; API clients use /api/health.
	s.router.Get("/health", healthHandler.HandleHealth)

	s.router.Route("/api", func(api chi.Router) {
		api.Get("/health", healthHandler.HandleHealth)

		api.Route("/terms", func(r chi.Router) {
			r.Get("/", termsHandler.HandleDocument)
			r.Get("/version", termsHandler.HandleVersion)
			r.Get("/summary", termsHandler.HandleSummary)
			r.Get("/privacy", termsHandler.HandlePrivacy)
		})

		api.Route("/banana", func(r chi.Router) {
			r.Get("/", bananaHandler.HandleList)
			r.Get("/random", bananaHandler.HandleRandom)
			r.Get("/{id}", bananaHandler.HandleGet)

			r.Group(func(r chi.Router) {
				r.Use(authn.RequireAuth)
				r.Post("/", bananaHandler.HandleCreate)
				r.Put("/{id}", bananaHandler.HandleUpdate)
				r.Delete("/{id}", bananaHandler.HandleDelete)
				r.Post("/{id}/favorite", bananaHandler.HandleAddFavorite)
				r.Delete("/{id}/favorite", bananaHandler.HandleRemoveFavorite)
			})
		})

		api.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/logout", authHandler.HandleLogout)
			r.Get("/{provider}", authHandler.HandleOAuthStart)
			r.Get("/{provider}/callback", authHandler.HandleOAuthCallback)

			r.Group(func(r chi.Router) {
				r.Use(authn.RequireAuth)
				r.Get("/me", authHandler.HandleMe)
				r.Post("/accept-terms", authHandler.HandleAcceptTerms)
				r.Get("/check-terms", authHandler.HandleCheckTerms)
			})
		})

		api.Route("/oracle", func(r chi.Router) {
			r.Use(authn.RequireAuth)
			r.Post("/ask", oracleHandler.HandleAsk)
			r.Get("/status", oracleHandler.HandleStatus)
			r.Post("/generate-story", oracleHandler.HandleGenerateStory)
		})
	})

	return nil
}

// setupDemoRoutes mounts the reduced surface for a store-less server:
// catalog reads and the public documents work, everything touching
// accounts answers 503.
func (s *Server) setupDemoRoutes(
	catalog *service.CatalogService,
	termsHandler *handler.TermsHandler,
	healthHandler *handler.HealthHandler,
) {
	bananaHandler := handler.NewBananaHandler(catalog, nil, s.logger)
	unavailable := handler.Unavailable("account store unavailable; the server is running in demo mode")

	s.router.Get("/health", healthHandler.HandleHealth)

	s.router.Route("/api", func(api chi.Router) {
		api.Get("/health", healthHandler.HandleHealth)

		api.Route("/terms", func(r chi.Router) {
			r.Get("/", termsHandler.HandleDocument)
			r.Get("/version", termsHandler.HandleVersion)
			r.Get("/summary", termsHandler.HandleSummary)
			r.Get("/privacy", termsHandler.HandlePrivacy)
		})

		api.Route("/banana", func(r chi.Router) {
			r.Get("/", bananaHandler.HandleList)
			r.Get("/random", bananaHandler.HandleRandom)
			r.Get("/{id}", bananaHandler.HandleGet)

			// Writes would 503 through the catalog service anyway, but
			// favorites need an account store, so the whole mutating set
			// shares the explicit answer.
			r.Post("/", unavailable)
			r.Put("/{id}", unavailable)
			r.Delete("/{id}", unavailable)
			r.Post("/{id}/favorite", unavailable)
			r.Delete("/{id}/favorite", unavailable)
		})

		api.Mount("/auth", unavailable)
		api.Mount("/oracle", unavailable)
	})
}

// Start runs the server until SIGINT/SIGTERM, then drains in-flight
// requests for up to 30 seconds and closes the store.
func (s *Server) Start() error {
	if s.db != nil {
		defer s.db.Close()
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // Oracle completions can be slow
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.Bool("demoMode", s.db == nil),
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

// Router exposes the underlying mux for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
