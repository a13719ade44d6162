package extraction

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ersonp/lore-state/internal/domain/entities"
	"github.com/ersonp/lore-state/internal/domain/ports"
)

// DefaultTimeout bounds one call to the primary strategy.
const DefaultTimeout = 2 * time.Second

// Selector runs the linguistic strategy when its tagger is available and the
// regex strategy otherwise. The tagger is loaded once; a load failure or an
// ErrTaggerUnavailable switches to the fallback for the rest of the process.
type Selector struct {
	primary  *Linguistic
	fallback *Regex
	timeout  time.Duration
	logger   *zap.Logger

	loadOnce sync.Once
	loadErr  error
	disabled atomic.Bool
}

var _ ports.Extractor = (*Selector)(nil)

// NewSelector creates a strategy selector. A nil primary means the fallback
// is always used.
func NewSelector(primary *Linguistic, fallback *Regex, timeout time.Duration, logger *zap.Logger) *Selector {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if fallback == nil {
		fallback = NewRegex(nil)
	}
	s := &Selector{
		primary:  primary,
		fallback: fallback,
		timeout:  timeout,
		logger:   logger,
	}
	if primary == nil {
		s.disabled.Store(true)
	}
	return s
}

// Name reports the strategy the next call will try first.
func (s *Selector) Name() string {
	if s.disabled.Load() {
		return s.fallback.Name()
	}
	return s.primary.Name()
}

// Fallback returns the regex strategy.
func (s *Selector) Fallback() *Regex {
	return s.fallback
}

// Extract runs the best available strategy on text.
func (s *Selector) Extract(ctx context.Context, text string) (*entities.Extraction, error) {
	if strings.TrimSpace(text) == "" {
		return emptyExtraction(s.Name()), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.usePrimary(ctx) {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		result, err := s.primary.Extract(callCtx, text)
		cancel()
		if err == nil {
			return result, nil
		}
		if errors.Is(err, ports.ErrTaggerUnavailable) {
			s.disable(err)
		} else {
			s.logger.Warn("primary extraction failed, using fallback for this call",
				zap.String("tagger", s.primary.Tagger().Name()),
				zap.Error(err))
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
	}

	return s.fallback.Extract(ctx, text)
}

func (s *Selector) usePrimary(ctx context.Context) bool {
	if s.disabled.Load() {
		return false
	}
	s.loadOnce.Do(func() {
		// The result is kept for the process, so the caller's cancellation
		// must not decide it.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		s.loadErr = s.primary.Tagger().Load(loadCtx)
		if s.loadErr != nil {
			s.disable(s.loadErr)
		}
	})
	return !s.disabled.Load()
}

func (s *Selector) disable(err error) {
	if s.disabled.Swap(true) {
		return
	}
	s.logger.Warn("extraction backend unavailable, falling back to regex strategy",
		zap.String("tagger", s.primary.Tagger().Name()),
		zap.Error(err))
}
