// Package server exposes the analysis, generation, and publishing
// pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"brandforge/internal/analyzer"
	"brandforge/internal/config"
	"brandforge/internal/core"
	"brandforge/internal/logger"
	"brandforge/internal/persistence"
	"brandforge/internal/publish"
)

// Scraper fetches and analyzes a website.
type Scraper interface {
	Analyze(ctx context.Context, url string) (*core.WebsiteAnalysis, error)
}

// BrandAnalyzer synthesizes brand DNA from an analysis.
type BrandAnalyzer interface {
	GenerateBrandDNA(ctx context.Context, analysis *core.WebsiteAnalysis) (*analyzer.BrandDNAResult, error)
}

// CampaignGenerator runs campaign assembly.
type CampaignGenerator interface {
	GenerateCampaigns(ctx context.Context, profile *core.BrandProfile, platforms []core.Platform, types []core.CampaignType) ([]*core.Campaign, error)
	RegeneratePost(ctx context.Context, profile *core.BrandProfile, platform core.Platform, campaignType core.CampaignType, instructions string) (*core.Post, error)
}

// SocialPublisher pushes content to a connected account's platform.
type SocialPublisher interface {
	Publish(ctx context.Context, account *core.SocialAccount, content string, hashtags []string) (*publish.Result, error)
}

// AccountSyncer imports an account's live posts.
type AccountSyncer interface {
	Sync(ctx context.Context, account *core.SocialAccount) (int, error)
}

// Deps bundles everything the handlers need.
type Deps struct {
	DB        persistence.Database
	Scraper   Scraper
	Analyzer  BrandAnalyzer
	Generator CampaignGenerator
	Publisher SocialPublisher
	Syncer    AccountSyncer
}

// Server is the HTTP server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	deps       Deps
	config     config.Server
	log        *slog.Logger
}

// New creates a new HTTP server instance.
func New(deps Deps, cfg config.Server) *Server {
	s := &Server{
		router: chi.NewRouter(),
		deps:   deps,
		config: cfg,
		log:    logger.Get(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	// Generation runs can take minutes with the fixed inter-call waits,
	// so the request timeout has to be generous.
	s.router.Use(middleware.Timeout(10 * time.Minute))

	if s.config.CORS.Enabled {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.CORS.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
}

// setupRoutes configures routes for the server
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/api/status", s.handleStatus)

	s.router.Post("/api/analyze-website", s.handleAnalyzeWebsite)
	s.router.Post("/api/generate-brand-dna", s.handleGenerateBrandDNA)
	s.router.Get("/api/brand-profiles", s.handleListBrandProfiles)

	s.router.Post("/api/generate-campaigns", s.handleGenerateCampaigns)
	s.router.Get("/api/generate-campaigns", s.handleListCampaigns)
	s.router.Post("/api/regenerate-campaign", s.handleRegenerateCampaign)

	s.router.Post("/api/post-to-social", s.handlePostToSocial)
	s.router.Get("/api/social/accounts", s.handleListSocialAccounts)
	s.router.Post("/api/social/sync", s.handleSocialSync)

	s.router.Get("/api/analytics", s.handleAnalytics)
}

// Start begins listening. Blocks until the server stops.
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the handler tree, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
