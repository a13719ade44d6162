package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ersonp/lore-state/internal/application/handlers"
	"github.com/ersonp/lore-state/internal/domain/entities"
	"github.com/ersonp/lore-state/internal/domain/extraction"
	"github.com/ersonp/lore-state/internal/domain/ports"
	"github.com/ersonp/lore-state/internal/domain/services"
	"github.com/ersonp/lore-state/internal/infrastructure/config"
	"github.com/ersonp/lore-state/internal/infrastructure/logging"
	"github.com/ersonp/lore-state/internal/infrastructure/nlp/lexicon"
	nlpopenai "github.com/ersonp/lore-state/internal/infrastructure/nlp/openai"
	"github.com/ersonp/lore-state/internal/infrastructure/relationaldb/sqlite"
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and repositories are internal.
type Deps struct {
	Config         *config.Config
	Logger         *zap.Logger
	SegmentHandler *handlers.SegmentHandler
	RosterHandler  *handlers.RosterHandler
}

// withDeps loads config and builds dependencies, then calls the provided function.
// It handles cleanup automatically.
func withDeps(ctx context.Context, fn func(*Deps) error) error {
	if globalGame == "" {
		return errors.New("game is required (use --game flag)")
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := sqlite.NewRepository(cfg.SQLite)
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer store.Close()

	// Ensure schema exists
	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	deps := buildDeps(cfg, store, logger)
	return fn(deps)
}

// buildDeps wires services and handlers over an open store.
func buildDeps(cfg *config.Config, store ports.WorldStore, logger *zap.Logger) *Deps {
	generic := entities.NewGenericTerms(cfg.Matching.GenericTerms)
	lifecycle := services.NewLifecycle(services.NewMatcher(cfg.Matching.Threshold), generic)

	selector := extraction.NewSelector(newPrimary(cfg, generic), extraction.NewRegex(generic), cfg.Extraction.Timeout, logger)

	segmentService := services.NewSegmentService(store, selector, selector.Fallback(), lifecycle, logger)

	return &Deps{
		Config:         cfg,
		Logger:         logger,
		SegmentHandler: handlers.NewSegmentHandler(segmentService),
		RosterHandler:  handlers.NewRosterHandler(store),
	}
}

// newPrimary builds the linguistic strategy for the configured backend.
// The none backend never loads, so the selector settles on regex.
func newPrimary(cfg *config.Config, generic entities.GenericTerms) *extraction.Linguistic {
	var tagger ports.Tagger
	switch cfg.Extraction.Backend {
	case config.BackendLexicon:
		tagger = lexicon.New()
	case config.BackendOpenAI:
		tagger = nlpopenai.NewTagger(cfg.LLM)
	default:
		tagger = extraction.UnavailableTagger{}
	}
	return extraction.NewLinguistic(tagger, generic)
}
