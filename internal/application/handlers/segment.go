package handlers

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ersonp/lore-state/internal/domain/entities"
	"github.com/ersonp/lore-state/internal/domain/services"
	"github.com/ersonp/lore-state/internal/infrastructure/parsers"
)

// SegmentHandler feeds narrative segments and generator declarations into
// the world model.
type SegmentHandler struct {
	service *services.SegmentService
}

// NewSegmentHandler creates a new segment handler.
func NewSegmentHandler(service *services.SegmentService) *SegmentHandler {
	return &SegmentHandler{
		service: service,
	}
}

// HandleSegment processes one segment of narrative text.
func (h *SegmentHandler) HandleSegment(ctx context.Context, gameID, segmentID string, turn int, text string) (*services.SegmentResult, error) {
	gid, err := ParseGameID(gameID)
	if err != nil {
		return nil, err
	}
	sid, err := parseSegmentID(segmentID)
	if err != nil {
		return nil, err
	}

	return h.service.ProcessSegment(ctx, gid, entities.Segment{ID: sid, Content: text}, turn)
}

// HandleDeclarations processes a JSON or CSV file of generator declarations.
func (h *SegmentHandler) HandleDeclarations(ctx context.Context, gameID string, turn int, path string) (*services.SegmentResult, error) {
	gid, err := ParseGameID(gameID)
	if err != nil {
		return nil, err
	}

	parser := parsers.ForFile(path)
	if parser == nil {
		return nil, fmt.Errorf("unsupported format for file: %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	out, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}

	return h.service.ProcessGeneratorOutput(ctx, gid, *out, turn)
}

// ParseGameID parses a decimal game identifier.
func ParseGameID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", services.ErrInvalidGameID, s)
	}
	return id, nil
}

func parseSegmentID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", services.ErrInvalidSegmentID, s)
	}
	return id, nil
}
