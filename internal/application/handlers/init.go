// Package handlers contains application use case handlers.
package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/ersonp/lore-state/internal/domain/ports"
	"github.com/ersonp/lore-state/internal/infrastructure/config"
)

// StoreOpener opens the world store a configuration points at.
type StoreOpener func(cfg config.SQLiteConfig) (ports.WorldStore, error)

// InitHandler handles workspace initialization.
type InitHandler struct {
	open StoreOpener
}

// NewInitHandler creates a new init handler.
func NewInitHandler(open StoreOpener) *InitHandler {
	return &InitHandler{
		open: open,
	}
}

// InitResult contains the result of initialization.
type InitResult struct {
	ConfigPath   string
	DatabasePath string
}

// Handle writes the default config and creates the world schema.
func (h *InitHandler) Handle(ctx context.Context, basePath string) (*InitResult, error) {
	if config.Exists(basePath) {
		return nil, fmt.Errorf("lorestate already initialized in %s", basePath)
	}

	if err := config.WriteDefault(basePath); err != nil {
		return nil, fmt.Errorf("writing default config: %w", err)
	}

	cfg, err := config.Load(basePath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if h.open != nil {
		store, err := h.open(cfg.SQLite)
		if err != nil {
			return nil, fmt.Errorf("opening world store: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, errors.Join(fmt.Errorf("creating schema: %w", err), store.Close())
		}
		if err := store.Close(); err != nil {
			return nil, fmt.Errorf("closing world store: %w", err)
		}
	}

	return &InitResult{
		ConfigPath:   config.ConfigFilePath(basePath),
		DatabasePath: cfg.SQLite.Path,
	}, nil
}
