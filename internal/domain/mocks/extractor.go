package mocks

import (
	"context"
	"sync/atomic"

	"github.com/ersonp/lore-state/internal/domain/entities"
	"github.com/ersonp/lore-state/internal/domain/ports"
)

// Extractor is a mock implementation of ports.Extractor that returns a fixed
// extraction regardless of the input text.
type Extractor struct {
	Result *entities.Extraction
	Err    error

	calls atomic.Int32
}

var _ ports.Extractor = (*Extractor)(nil)

// Name returns the mock strategy name.
func (m *Extractor) Name() string {
	return "mock"
}

// Extract returns Err or a copy of Result.
func (m *Extractor) Extract(_ context.Context, _ string) (*entities.Extraction, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result == nil {
		return &entities.Extraction{Strategy: "mock"}, nil
	}
	out := *m.Result
	out.Relationships = append([]entities.Relationship(nil), m.Result.Relationships...)
	return &out, nil
}

// Calls returns how many times Extract was called.
func (m *Extractor) Calls() int {
	return int(m.calls.Load())
}
