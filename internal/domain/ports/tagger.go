// Package ports defines interfaces for external service communication.
package ports

import (
	"context"
	"errors"

	"github.com/ersonp/lore-state/internal/domain/entities"
)

// ErrTaggerUnavailable signals that the linguistic backend cannot serve
// requests and the regex strategy should be used instead.
var ErrTaggerUnavailable = errors.New("tagger unavailable")

// POS is a coarse part-of-speech tag.
type POS int

const (
	POSOther POS = iota
	POSNoun
	POSProperNoun
	POSPronoun
	POSVerb
	POSAuxiliary
	POSAdjective
	POSAdverb
	POSDeterminer
	POSPreposition
	POSConjunction
	POSPunctuation
)

// IsNominal returns true if the POS is noun-like.
func (p POS) IsNominal() bool {
	return p == POSNoun || p == POSProperNoun
}

// EntityClass is the coarse class of a tagged named-entity span.
type EntityClass string

const (
	ClassPerson    EntityClass = "PERSON"
	ClassPlace     EntityClass = "PLACE"
	ClassFacility  EntityClass = "FACILITY"
	ClassProduct   EntityClass = "PRODUCT"
	ClassWorkOfArt EntityClass = "WORK_OF_ART"
	ClassOther     EntityClass = "OTHER"
)

// Token is one tagged word or punctuation mark of a sentence.
type Token struct {
	Text  string
	POS   POS
	Start int // byte offset into the sentence
	End   int
}

// Span covers the tokens [Start, End) of a sentence.
type Span struct {
	Text  string
	Class EntityClass // empty for plain noun phrases
	Start int
	End   int
}

// Sentence is one sentence with its tokens, named entities and noun phrases.
type Sentence struct {
	Text        string
	Tokens      []Token
	Entities    []Span
	NounPhrases []Span
}

// ParsedText is the backend's view of a piece of narrative text.
type ParsedText struct {
	Sentences []Sentence
}

// Tagger is the primary extraction backend: it parses text into sentences with
// tagged entities. Implementations may need a one-time, expensive Load.
type Tagger interface {
	// Name identifies the backend in logs.
	Name() string

	// Load prepares the backend. It must be safe to call more than once.
	Load(ctx context.Context) error

	// Parse tags the given text. Returns ErrTaggerUnavailable when the backend
	// cannot serve the request.
	Parse(ctx context.Context, text string) (*ParsedText, error)
}

// Extractor turns raw narrative text into mentions and relationships.
type Extractor interface {
	// Name identifies the strategy.
	Name() string

	// Extract returns the mentions and relationships found in text. Empty text
	// yields an empty extraction, not an error.
	Extract(ctx context.Context, text string) (*entities.Extraction, error)
}
