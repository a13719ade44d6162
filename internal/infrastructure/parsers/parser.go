// Package parsers reads narrative segments and generator declarations from files.
package parsers

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ersonp/lore-state/internal/domain/entities"
)

// MaxSegmentBytes caps the size of a single narrative segment.
const MaxSegmentBytes = 1 << 20

// Parser defines the interface for parsing generator declarations.
type Parser interface {
	Parse(r io.Reader) (*entities.GeneratorOutput, error)
}

// ForFormat returns the appropriate parser for the given format.
// Supported formats: "json", "csv".
func ForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case "json":
		return &JSONParser{}
	case "csv":
		return &CSVParser{}
	default:
		return nil
	}
}

// ForFile returns the appropriate parser based on file extension.
func ForFile(filename string) Parser {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return &JSONParser{}
	case ".csv":
		return &CSVParser{}
	default:
		return nil
	}
}

// ReadSegment reads narrative text, dropping a UTF-8 byte order mark and
// normalizing line endings.
func ReadSegment(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSegmentBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading segment: %w", err)
	}
	if len(data) > MaxSegmentBytes {
		return "", fmt.Errorf("segment exceeds %d bytes", MaxSegmentBytes)
	}
	text := strings.TrimPrefix(string(data), "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.TrimSpace(text), nil
}
