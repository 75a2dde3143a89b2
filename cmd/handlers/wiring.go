package handlers

import (
	"context"
	"fmt"

	"brandforge/internal/analyzer"
	"brandforge/internal/campaign"
	"brandforge/internal/config"
	"brandforge/internal/freshness"
	"brandforge/internal/generation"
	"brandforge/internal/llm"
	"brandforge/internal/persistence"
	"brandforge/internal/publish"
	"brandforge/internal/scrape"
)

// app holds the wired pipeline shared by the CLI commands. Commands that
// never call the AI backends use newApp; generation commands use
// newGenerationApp so a missing API key only fails where it matters.
type app struct {
	cfg *config.Config
	db  *persistence.Mongo
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := persistence.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &app{cfg: cfg, db: db}, nil
}

func (a *app) Close(ctx context.Context) {
	if err := a.db.Close(ctx); err != nil {
		fmt.Printf("Warning: error closing database connection: %v\n", err)
	}
}

// generationApp adds the AI-backed components on top of app.
type generationApp struct {
	*app
	engine    *generation.Orchestrator
	scraper   *scrape.Scraper
	analyzer  *analyzer.Analyzer
	generator *campaign.Generator
}

func newGenerationApp(ctx context.Context) (*generationApp, error) {
	base, err := newApp(ctx)
	if err != nil {
		return nil, err
	}

	engine, err := buildEngine(ctx, base.cfg)
	if err != nil {
		base.Close(ctx)
		return nil, err
	}

	builder := freshness.NewBuilder(base.db, nil)

	return &generationApp{
		app:       base,
		engine:    engine,
		scraper:   scrape.New(base.cfg.Scrape),
		analyzer:  analyzer.New(engine),
		generator: campaign.NewGenerator(engine, builder, base.db, base.cfg.Generation),
	}, nil
}

// buildEngine wires the two-tier generation stack: Gemini as the primary
// backend, Anthropic as the optional fallback. The fallback is only
// attached when an API key is configured.
func buildEngine(ctx context.Context, cfg *config.Config) (*generation.Orchestrator, error) {
	primary, err := llm.NewGeminiClient(ctx, cfg.AI.Gemini)
	if err != nil {
		return nil, err
	}

	var fallback generation.StructuredGenerator
	if cfg.AI.Anthropic.APIKey != "" {
		client, err := llm.NewAnthropicClient(cfg.AI.Anthropic)
		if err != nil {
			return nil, err
		}
		fallback = client
	}

	return generation.NewOrchestrator(primary, fallback, cfg.AI.Anthropic.FallbackEnabled), nil
}

func newSyncer(db *persistence.Mongo) *publish.Syncer {
	return publish.NewSyncer(publish.NewFetcher(), db)
}
