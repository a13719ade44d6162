// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ersonp/lore-state/internal/domain/ports"
)

// Tagger is a mock implementation of ports.Tagger.
type Tagger struct {
	// Parsed is returned by Parse.
	Parsed *ports.ParsedText
	// LoadErr is returned by Load.
	LoadErr error
	// ParseErr is returned by Parse.
	ParseErr error
	// Delay makes Parse block until the delay passes or ctx is done.
	Delay time.Duration
	// LoadDelay makes Load block the same way.
	LoadDelay time.Duration

	loads  atomic.Int32
	parses atomic.Int32
}

// Name identifies the mock backend.
func (m *Tagger) Name() string { return "mock" }

// Load returns the configured error and counts calls.
func (m *Tagger) Load(ctx context.Context) error {
	m.loads.Add(1)
	if m.LoadDelay > 0 {
		select {
		case <-time.After(m.LoadDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return m.LoadErr
}

// Parse returns the configured result or error.
func (m *Tagger) Parse(ctx context.Context, _ string) (*ports.ParsedText, error) {
	m.parses.Add(1)
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.ParseErr != nil {
		return nil, m.ParseErr
	}
	if m.Parsed == nil {
		return &ports.ParsedText{}, nil
	}
	return m.Parsed, nil
}

// Loads returns how many times Load was called.
func (m *Tagger) Loads() int { return int(m.loads.Load()) }

// Parses returns how many times Parse was called.
func (m *Tagger) Parses() int { return int(m.parses.Load()) }
