package extraction

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ersonp/lore-state/internal/domain/entities"
	"github.com/ersonp/lore-state/internal/domain/ports"
)

// StrategyLinguistic names the tagger-backed strategy.
const StrategyLinguistic = "linguistic"

// Linguistic extracts mentions from the tagged spans and noun phrases a
// ports.Tagger produces, and relationships from phrase patterns over tokens.
type Linguistic struct {
	tagger  ports.Tagger
	generic entities.GenericTerms
}

// NewLinguistic creates the tagger-backed strategy.
func NewLinguistic(tagger ports.Tagger, generic entities.GenericTerms) *Linguistic {
	if generic == nil {
		generic = entities.NewGenericTerms(nil)
	}
	return &Linguistic{tagger: tagger, generic: generic}
}

// Name returns the strategy name.
func (l *Linguistic) Name() string { return StrategyLinguistic }

// Tagger returns the backend this strategy parses with.
func (l *Linguistic) Tagger() ports.Tagger { return l.tagger }

// Extract parses text with the tagger. Tagger errors are returned unchanged
// so the caller can decide whether to fall back.
func (l *Linguistic) Extract(ctx context.Context, text string) (*entities.Extraction, error) {
	if strings.TrimSpace(text) == "" {
		return emptyExtraction(StrategyLinguistic), nil
	}

	parsed, err := l.tagger.Parse(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("parsing with %s: %w", l.tagger.Name(), err)
	}

	characters := newNameSet(l.generic)
	items := newNameSet(l.generic)
	locations := newNameSet(l.generic)
	concepts := newNameSet(l.generic)
	var rels relationshipSet

	for i := range parsed.Sentences {
		sent := &parsed.Sentences[i]
		spans := l.collectSpans(sent)

		for _, sp := range spans {
			switch sp.Class {
			case ports.ClassPerson:
				characters.add(sp.Text)
			case ports.ClassPlace, ports.ClassFacility:
				locations.add(sp.Text)
			case ports.ClassProduct, ports.ClassWorkOfArt:
				items.add(sp.Text)
			case ports.ClassOther:
				concepts.add(sp.Text)
			}
		}

		for _, r := range findRelationships(sent, spans) {
			rels.add(r)
		}
	}

	return &entities.Extraction{
		Characters:    characters.list(),
		Items:         items.list(),
		Locations:     locations.list(),
		Concepts:      concepts.list(),
		Relationships: rels.relationships(),
		Strategy:      StrategyLinguistic,
	}, nil
}

// collectSpans merges named-entity spans with the noun phrases that do not
// overlap them, classifying the noun phrases as items or locations. The
// result is ordered by start token.
func (l *Linguistic) collectSpans(sent *ports.Sentence) []ports.Span {
	spans := make([]ports.Span, 0, len(sent.Entities)+len(sent.NounPhrases))
	for _, e := range sent.Entities {
		if strings.TrimSpace(e.Text) != "" {
			spans = append(spans, e)
		}
	}

	for _, np := range sent.NounPhrases {
		if overlapsAny(np, sent.Entities) {
			continue
		}
		np, ok := trimNounPhrase(np, sent.Tokens)
		if !ok || l.generic.IsGeneric(np.Text) {
			continue
		}
		if inLocativePhrase(np, sent.Tokens) {
			np.Class = ports.ClassPlace
		} else {
			np.Class = ports.ClassProduct
		}
		spans = append(spans, np)
	}

	sort.SliceStable(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	return spans
}

// trimNounPhrase drops leading determiners and rejects phrases whose head is
// a pronoun, determiner or function word.
func trimNounPhrase(np ports.Span, tokens []ports.Token) (ports.Span, bool) {
	start, end := np.Start, np.End
	if start < 0 || end > len(tokens) || start >= end {
		return np, false
	}
	for start < end && (tokens[start].POS == ports.POSDeterminer || tokens[start].POS == ports.POSPronoun) {
		start++
	}
	if start >= end {
		return np, false
	}
	head := tokens[end-1]
	if !head.POS.IsNominal() || IsFunctionWord(head.Text) {
		return np, false
	}

	words := make([]string, 0, end-start)
	for _, t := range tokens[start:end] {
		words = append(words, t.Text)
	}
	return ports.Span{Text: strings.Join(words, " "), Start: np.Start, End: end}, true
}

// inLocativePhrase reports whether the phrase directly follows a locative preposition.
func inLocativePhrase(np ports.Span, tokens []ports.Token) bool {
	if np.Start == 0 || np.Start > len(tokens) {
		return false
	}
	prev := tokens[np.Start-1]
	return prev.POS == ports.POSPreposition && IsLocativePreposition(prev.Text)
}

func overlapsAny(sp ports.Span, others []ports.Span) bool {
	for _, o := range others {
		if sp.Start < o.End && o.Start < sp.End {
			return true
		}
	}
	return false
}

// findRelationships scans one sentence for identity phrases and state verbs.
func findRelationships(sent *ports.Sentence, spans []ports.Span) []entities.Relationship {
	var out []entities.Relationship
	tokens := sent.Tokens

	for i := range tokens {
		if n := matchPhrase(tokens, i); n > 0 {
			src, okSrc := precedingSpan(spans, i)
			tgt, okTgt := followingSpan(spans, i+n)
			if okSrc && okTgt {
				out = append(out, entities.Relationship{
					Type:    entities.RelationIdentity,
					Source:  src.Text,
					Target:  tgt.Text,
					Context: sent.Text,
				})
			}
			continue
		}

		if !isPredicate(tokens, i) {
			continue
		}
		state, ok := StateForVerb(tokens[i].Text)
		if !ok {
			continue
		}
		// A verb used transitively affects its object, not its subject.
		affected, found := spanStartingAt(spans, tokens, i+1)
		if !found {
			affected, found = precedingSpan(spans, i)
		}
		if !found {
			continue
		}
		out = append(out, entities.Relationship{
			Type:     entities.RelationStateChange,
			Source:   affected.Text,
			NewState: state,
			Context:  sent.Text,
		})
	}
	return out
}

// isPredicate reports whether token i is a verb, or an adjective following an
// auxiliary as in "was broken".
func isPredicate(tokens []ports.Token, i int) bool {
	switch tokens[i].POS {
	case ports.POSVerb:
		return true
	case ports.POSAdjective:
		return i > 0 && tokens[i-1].POS == ports.POSAuxiliary
	}
	return false
}

// matchPhrase returns the length of the identity phrase starting at token i, or 0.
func matchPhrase(tokens []ports.Token, i int) int {
	for _, phrase := range identityPhrases {
		if i+len(phrase) > len(tokens) {
			continue
		}
		ok := true
		for j, w := range phrase {
			if !strings.EqualFold(tokens[i+j].Text, w) {
				ok = false
				break
			}
		}
		if ok {
			return len(phrase)
		}
	}
	return 0
}

func precedingSpan(spans []ports.Span, before int) (ports.Span, bool) {
	for i := len(spans) - 1; i >= 0; i-- {
		if spans[i].End <= before {
			return spans[i], true
		}
	}
	return ports.Span{}, false
}

func followingSpan(spans []ports.Span, from int) (ports.Span, bool) {
	for _, sp := range spans {
		if sp.Start >= from {
			return sp, true
		}
	}
	return ports.Span{}, false
}

// spanStartingAt returns the span that begins at token idx, allowing for a
// leading determiner the span may or may not include.
func spanStartingAt(spans []ports.Span, tokens []ports.Token, idx int) (ports.Span, bool) {
	for _, sp := range spans {
		if sp.Start == idx {
			return sp, true
		}
		if sp.Start == idx+1 && idx < len(tokens) && tokens[idx].POS == ports.POSDeterminer {
			return sp, true
		}
	}
	return ports.Span{}, false
}

func emptyExtraction(strategy string) *entities.Extraction {
	return &entities.Extraction{
		Characters:    []string{},
		Items:         []string{},
		Locations:     []string{},
		Concepts:      []string{},
		Relationships: []entities.Relationship{},
		Strategy:      strategy,
	}
}
