package extraction

import (
	"strings"
	"unicode"

	"github.com/ersonp/lore-state/internal/domain/entities"
)

// Sentences splits text on sentence-final punctuation and line breaks.
// Returned sentences are trimmed and never empty.
func Sentences(text string) []string {
	var out []string
	start := 0
	runes := []rune(text)
	flush := func(end int) {
		if s := strings.TrimSpace(string(runes[start:end])); s != "" {
			out = append(out, s)
		}
		start = end
	}

	for i, r := range runes {
		switch {
		case r == '\n':
			flush(i)
			start = i + 1
		case r == '.' || r == '!' || r == '?':
			next := i + 1
			for next < len(runes) && (runes[next] == '"' || runes[next] == '\'' || runes[next] == '.' || runes[next] == '!' || runes[next] == '?') {
				next++
			}
			if next == len(runes) || unicode.IsSpace(runes[next]) {
				flush(next)
			}
		}
	}
	flush(len(runes))
	return out
}

// SentenceContaining returns the first sentence of text that mentions name,
// compared case-insensitively, or "" when none does.
func SentenceContaining(text, name string) string {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return ""
	}
	for _, s := range Sentences(text) {
		if strings.Contains(strings.ToLower(s), needle) {
			return s
		}
	}
	return ""
}

// nameSet collects surface forms in discovery order, dropping empty,
// generic and already seen names.
type nameSet struct {
	generic entities.GenericTerms
	seen    map[string]struct{}
	names   []string
}

func newNameSet(generic entities.GenericTerms) *nameSet {
	return &nameSet{generic: generic, seen: make(map[string]struct{})}
}

func (s *nameSet) add(name string) {
	name = strings.TrimSpace(strings.Trim(name, `.,;:!?"'()`))
	key := entities.NormalizeName(name)
	if key == "" || s.generic.IsGeneric(name) || IsFunctionWord(key) {
		return
	}
	if _, ok := s.seen[key]; ok {
		return
	}
	s.seen[key] = struct{}{}
	s.names = append(s.names, name)
}

func (s *nameSet) has(name string) bool {
	_, ok := s.seen[entities.NormalizeName(name)]
	return ok
}

func (s *nameSet) list() []string {
	if s.names == nil {
		return []string{}
	}
	return s.names
}

// relationshipSet deduplicates relationships, keeping the first occurrence.
type relationshipSet struct {
	seen map[string]struct{}
	list []entities.Relationship
}

func (s *relationshipSet) add(r entities.Relationship) {
	if entities.NormalizeName(r.Source) == "" {
		return
	}
	if r.Type == entities.RelationIdentity && entities.NormalizeName(r.Target) == "" {
		return
	}
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	key := r.Key()
	if _, ok := s.seen[key]; ok {
		return
	}
	s.seen[key] = struct{}{}
	s.list = append(s.list, r)
}

func (s *relationshipSet) relationships() []entities.Relationship {
	if s.list == nil {
		return []entities.Relationship{}
	}
	return s.list
}
