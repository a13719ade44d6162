package extraction

import (
	"context"

	"github.com/ersonp/lore-state/internal/domain/ports"
)

// UnavailableTagger is a backend that is never available. It makes the
// selector use the regex strategy.
type UnavailableTagger struct{}

// Name returns "none".
func (UnavailableTagger) Name() string { return "none" }

// Load always reports the backend as unavailable.
func (UnavailableTagger) Load(context.Context) error { return ports.ErrTaggerUnavailable }

// Parse always reports the backend as unavailable.
func (UnavailableTagger) Parse(context.Context, string) (*ports.ParsedText, error) {
	return nil, ports.ErrTaggerUnavailable
}
