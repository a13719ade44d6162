package parsers

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ersonp/lore-state/internal/domain/entities"
)

// JSONParser parses a generator output object:
//
//	{"segmentId": 3, "newItems": [...], "newCharacters": [...]}
type JSONParser struct{}

// Parse reads JSON from the reader and returns the declarations.
func (p *JSONParser) Parse(r io.Reader) (*entities.GeneratorOutput, error) {
	var out entities.GeneratorOutput

	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&out); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	for i, item := range out.NewItems {
		if item.Name == "" {
			return nil, fmt.Errorf("newItems[%d]: name is required", i)
		}
	}
	for i, c := range out.NewCharacters {
		if c.Name == "" {
			return nil, fmt.Errorf("newCharacters[%d]: name is required", i)
		}
	}

	return &out, nil
}
