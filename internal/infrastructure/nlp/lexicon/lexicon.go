// Package lexicon implements a rule-based tagger backed by an embedded word list.
package lexicon

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ersonp/lore-state/internal/domain/ports"
)

//go:embed lexicon.yaml
var defaultLexicon []byte

const lexiconVersion = 1

// lexiconFile is the on-disk layout of a lexicon.
type lexiconFile struct {
	Version      int      `yaml:"version"`
	Determiners  []string `yaml:"determiners"`
	Pronouns     []string `yaml:"pronouns"`
	Prepositions []string `yaml:"prepositions"`
	Conjunctions []string `yaml:"conjunctions"`
	Auxiliaries  []string `yaml:"auxiliaries"`
	Adverbs      []string `yaml:"adverbs"`
	Adjectives   []string `yaml:"adjectives"`
	Verbs        []string `yaml:"verbs"`
	Roles        []string `yaml:"roles"`
	Honorifics   []string `yaml:"honorifics"`
	Places       []string `yaml:"places"`
	Facilities   []string `yaml:"facilities"`
	Products     []string `yaml:"products"`
}

// Lexicon holds the word classes the tagger consults.
type Lexicon struct {
	closed     map[string]ports.POS
	adjectives map[string]struct{}
	verbs      map[string]struct{}
	roles      map[string]struct{}
	honorifics map[string]struct{}
	places     map[string]struct{}
	facilities map[string]struct{}
	products   map[string]struct{}
}

// ParseLexicon decodes a YAML lexicon. Closed-class lists are required; the
// first list a word appears in decides its tag.
func ParseLexicon(data []byte) (*Lexicon, error) {
	var f lexiconFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding lexicon: %w", err)
	}
	if f.Version != lexiconVersion {
		return nil, fmt.Errorf("unsupported lexicon version %d", f.Version)
	}

	var errs []error
	for _, list := range []struct {
		name  string
		words []string
	}{
		{"determiners", f.Determiners},
		{"pronouns", f.Pronouns},
		{"prepositions", f.Prepositions},
		{"auxiliaries", f.Auxiliaries},
	} {
		if len(list.words) == 0 {
			errs = append(errs, fmt.Errorf("lexicon: %s must not be empty", list.name))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	lex := &Lexicon{
		closed:     make(map[string]ports.POS),
		adjectives: toSet(f.Adjectives),
		verbs:      toSet(f.Verbs),
		roles:      toSet(f.Roles),
		honorifics: toSet(f.Honorifics),
		places:     toSet(f.Places),
		facilities: toSet(f.Facilities),
		products:   toSet(f.Products),
	}
	for _, class := range []struct {
		words []string
		pos   ports.POS
	}{
		{f.Determiners, ports.POSDeterminer},
		{f.Pronouns, ports.POSPronoun},
		{f.Prepositions, ports.POSPreposition},
		{f.Conjunctions, ports.POSConjunction},
		{f.Auxiliaries, ports.POSAuxiliary},
		{f.Adverbs, ports.POSAdverb},
	} {
		for _, w := range class.words {
			w = normalizeWord(w)
			if _, seen := lex.closed[w]; !seen && w != "" {
				lex.closed[w] = class.pos
			}
		}
	}
	return lex, nil
}

// Closed returns the closed-class tag of word, if any.
func (l *Lexicon) Closed(word string) (ports.POS, bool) {
	pos, ok := l.closed[normalizeWord(word)]
	return pos, ok
}

func (l *Lexicon) isAdjective(w string) bool { return has(l.adjectives, w) }
func (l *Lexicon) isVerb(w string) bool      { return has(l.verbs, w) }
func (l *Lexicon) isRole(w string) bool      { return has(l.roles, w) }
func (l *Lexicon) isHonorific(w string) bool { return has(l.honorifics, w) }

// isKnownOpen reports whether the lowercase word is a listed open-class word.
func (l *Lexicon) isKnownOpen(w string) bool {
	return l.isAdjective(w) || l.isVerb(w) || l.isRole(w) ||
		has(l.places, w) || has(l.facilities, w) || has(l.products, w)
}

// headClass classifies a proper name by one of its words.
func (l *Lexicon) headClass(w string) (ports.EntityClass, bool) {
	switch {
	case has(l.facilities, w):
		return ports.ClassFacility, true
	case has(l.places, w):
		return ports.ClassPlace, true
	case has(l.products, w):
		return ports.ClassProduct, true
	}
	return "", false
}

func toSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		if w = normalizeWord(w); w != "" {
			m[w] = struct{}{}
		}
	}
	return m
}

func has(set map[string]struct{}, w string) bool {
	_, ok := set[normalizeWord(w)]
	return ok
}

// normalizeWord lowercases a word and drops a possessive suffix.
func normalizeWord(w string) string {
	w = strings.ToLower(strings.TrimSpace(w))
	w = strings.ReplaceAll(w, "\u2019", "'")
	if strings.HasSuffix(w, "'s") && len(w) > 2 {
		w = w[:len(w)-2]
	}
	return strings.Trim(w, "'")
}
