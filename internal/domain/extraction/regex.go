package extraction

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ersonp/lore-state/internal/domain/entities"
)

// StrategyRegex names the pattern-based fallback strategy.
const StrategyRegex = "regex"

const (
	detAlt  = `(?i:the|a|an|his|her|their|its|my|your|our)`
	word    = `[\p{L}\p{N}'-]+`
	lowWord = `\p{Ll}[\p{L}'-]*`
	// subject is an optional article and a one or two word noun phrase.
	subject = `\b(?:(?i:the|a|an)\s+)?(?P<source>(?:` + word + `\s+)?` + word + `)`
	// target is one word optionally followed by capitalized words.
	target = `(?:(?i:the|a|an)\s+)?(?P<target>` + word + `(?:\s+\p{Lu}` + word + `)*)`
)

var (
	capitalizedRunRegex = regexp.MustCompile(`\b\p{Lu}[\p{L}'-]*(?:\s+\p{Lu}[\p{L}'-]*)*`)
	determinerRegex     = regexp.MustCompile(`\b` + detAlt + `\s+(?P<phrase>` + lowWord + `(?:\s+` + lowWord + `)?)`)
	locativeRegex       = regexp.MustCompile(`\b(?i:in|at|into|inside|through|across|against|near|beneath|under|behind|towards|toward|within|onto|upon|over)\s+(?:` + detAlt + `\s+)?(?P<phrase>` + word + `(?:\s+` + word + `){0,2})`)
	lowerWordRegex      = regexp.MustCompile(`\b\p{Ll}[\p{Ll}'-]{3,}\b`)

	identityTemplates = []*regexp.Regexp{
		regexp.MustCompile(subject + `\s+(?i:is|was)\s+(?i:actually|really)\s+(?:(?i:revealed)\s+(?i:as|to\s+be)\s+)?` + target),
		regexp.MustCompile(subject + `\s+(?:(?i:is|was|has\s+been|had\s+been)\s+)?(?i:revealed)\s+(?i:as|to\s+be)\s+` + target),
		regexp.MustCompile(subject + `\s+(?i:turns|turned)\s+out\s+to\s+be\s+` + target),
	}

	stateSubjectRegex = regexp.MustCompile(subject + `\s+(?:(?i:is|was|were|got|has\s+been|had\s+been)\s+)?(?P<verb>(?i:` + stateVerbPattern() + `))\b`)
	stateObjectRegex  = regexp.MustCompile(`\b(?P<verb>(?i:` + stateVerbPattern() + `))\s+` + detAlt + `\s+(?P<source>` + lowWord + `(?:\s+` + lowWord + `)?)`)
)

// Regex is the fallback strategy: capitalized runs approximate characters,
// determiner phrases approximate items, prepositional phrases approximate
// locations and repeated common nouns approximate concepts.
type Regex struct {
	generic entities.GenericTerms
}

// NewRegex creates the fallback strategy.
func NewRegex(generic entities.GenericTerms) *Regex {
	if generic == nil {
		generic = entities.NewGenericTerms(nil)
	}
	return &Regex{generic: generic}
}

// Name returns the strategy name.
func (r *Regex) Name() string { return StrategyRegex }

// Extract never fails.
func (r *Regex) Extract(_ context.Context, text string) (*entities.Extraction, error) {
	if strings.TrimSpace(text) == "" {
		return emptyExtraction(StrategyRegex), nil
	}

	characters := newNameSet(r.generic)
	items := newNameSet(r.generic)
	locations := newNameSet(r.generic)
	concepts := newNameSet(r.generic)

	var rels relationshipSet
	identityNames := newNameSet(nil)
	for _, rel := range r.Relationships(text) {
		if IsFunctionWord(entities.NormalizeName(rel.Source)) {
			continue
		}
		rels.add(rel)
		if rel.Type == entities.RelationIdentity {
			identityNames.add(rel.Source)
			identityNames.add(rel.Target)
			characters.add(rel.Source)
		}
	}

	for _, sent := range Sentences(text) {
		for _, m := range capitalizedRunRegex.FindAllStringIndex(sent, -1) {
			run := sent[m[0]:m[1]]
			if m[0] == 0 && !strings.Contains(run, " ") && looksLikeOpener(run) {
				continue
			}
			characters.add(stripLeadingFunctionWords(run))
		}

		var locSpans [][]int
		for _, m := range locativeRegex.FindAllStringSubmatchIndex(sent, -1) {
			locSpans = append(locSpans, m[:2])
			locations.add(trimLocation(submatch(sent, m, locativeRegex, "phrase")))
		}

		for _, m := range determinerRegex.FindAllStringSubmatchIndex(sent, -1) {
			if insideAny(m[0], locSpans) {
				continue
			}
			phrase := trimItemPhrase(submatch(sent, m, determinerRegex, "phrase"))
			if !locations.has(phrase) && !identityNames.has(phrase) {
				items.add(phrase)
			}
		}
	}

	counts := make(map[string]int)
	var order []string
	for _, w := range lowerWordRegex.FindAllString(text, -1) {
		w = strings.ToLower(w)
		if IsFunctionWord(w) || looksAdjectival(w) {
			continue
		}
		if _, isState := StateForVerb(w); isState {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}
	for _, w := range order {
		if counts[w] > 1 && !items.has(w) && !locations.has(w) {
			concepts.add(w)
		}
	}

	return &entities.Extraction{
		Characters:    characters.list(),
		Items:         items.list(),
		Locations:     locations.list(),
		Concepts:      concepts.list(),
		Relationships: rels.relationships(),
		Strategy:      StrategyRegex,
	}, nil
}

// Relationships applies the identity and state-change templates to text.
// Pronoun sources such as "it" are kept for callers that know the referent.
func (r *Regex) Relationships(text string) []entities.Relationship {
	var out []entities.Relationship
	for _, sent := range Sentences(text) {
		for _, tmpl := range identityTemplates {
			for _, m := range tmpl.FindAllStringSubmatchIndex(sent, -1) {
				out = append(out, entities.Relationship{
					Type:    entities.RelationIdentity,
					Source:  trimSubject(submatch(sent, m, tmpl, "source")),
					Target:  submatch(sent, m, tmpl, "target"),
					Context: sent,
				})
			}
		}

		// A verb followed by a determiner phrase affects that object.
		objectVerbs := make(map[int]bool)
		for _, m := range stateObjectRegex.FindAllStringSubmatchIndex(sent, -1) {
			verb := submatch(sent, m, stateObjectRegex, "verb")
			state, ok := StateForVerb(verb)
			if !ok {
				continue
			}
			objectVerbs[m[2*stateObjectRegex.SubexpIndex("verb")]] = true
			out = append(out, entities.Relationship{
				Type:     entities.RelationStateChange,
				Source:   trimItemPhrase(submatch(sent, m, stateObjectRegex, "source")),
				NewState: state,
				Context:  sent,
			})
		}

		for _, m := range stateSubjectRegex.FindAllStringSubmatchIndex(sent, -1) {
			if objectVerbs[m[2*stateSubjectRegex.SubexpIndex("verb")]] {
				continue
			}
			state, ok := StateForVerb(submatch(sent, m, stateSubjectRegex, "verb"))
			if !ok {
				continue
			}
			out = append(out, entities.Relationship{
				Type:     entities.RelationStateChange,
				Source:   trimSubject(submatch(sent, m, stateSubjectRegex, "source")),
				NewState: state,
				Context:  sent,
			})
		}
	}

	var rels relationshipSet
	for _, rel := range out {
		src := entities.NormalizeName(rel.Source)
		if IsFunctionWord(src) && !IsPronoun(src) {
			continue
		}
		rels.add(rel)
	}
	return rels.relationships()
}

// submatch returns the named group of match m, or "".
func submatch(s string, m []int, re *regexp.Regexp, name string) string {
	idx := re.SubexpIndex(name)
	if idx < 0 || 2*idx+1 >= len(m) || m[2*idx] < 0 {
		return ""
	}
	return s[m[2*idx]:m[2*idx+1]]
}

// trimItemPhrase keeps a two-word phrase only when its first word looks
// like an adjective, so "sword shattered" becomes "sword".
func trimItemPhrase(phrase string) string {
	words := strings.Fields(phrase)
	switch {
	case len(words) == 0:
		return ""
	case len(words) == 1:
		return words[0]
	case looksAdjectival(words[0]) && !IsFunctionWord(words[1]):
		if _, isState := StateForVerb(words[1]); !isState {
			return words[0] + " " + words[1]
		}
	}
	return words[0]
}

// trimLocation drops leading function words from a prepositional object and
// cuts it at the next one.
func trimLocation(phrase string) string {
	words := strings.Fields(phrase)
	for len(words) > 0 && IsFunctionWord(words[0]) {
		words = words[1:]
	}
	for i, w := range words {
		if IsFunctionWord(w) {
			words = words[:i]
			break
		}
	}
	return strings.Join(words, " ")
}

// trimSubject reduces a captured subject to its noun phrase: "sword was"
// becomes "sword", "Her sword" becomes "sword" and "It was" becomes "It".
func trimSubject(subject string) string {
	words := strings.Fields(subject)
	for len(words) > 1 && IsFunctionWord(words[len(words)-1]) {
		words = words[:len(words)-1]
	}
	for len(words) > 1 && IsFunctionWord(words[0]) {
		words = words[1:]
	}
	if len(words) == 2 && !looksAdjectival(words[0]) && startsLower(words[1]) {
		return words[1]
	}
	return strings.Join(words, " ")
}

// looksLikeOpener reports whether a sentence-initial capitalized word is more
// likely an adverb or participle than a name.
func looksLikeOpener(w string) bool {
	lower := strings.ToLower(w)
	return IsFunctionWord(lower) || strings.HasSuffix(lower, "ly") || strings.HasSuffix(lower, "ing") || looksAdjectival(lower)
}

// stripLeadingFunctionWords turns "The King" into "King" and "The" into "".
func stripLeadingFunctionWords(run string) string {
	words := strings.Fields(run)
	for len(words) > 0 && IsFunctionWord(words[0]) {
		words = words[1:]
	}
	return strings.Join(words, " ")
}

func startsLower(w string) bool {
	r, _ := utf8.DecodeRuneInString(w)
	return unicode.IsLower(r)
}

func insideAny(pos int, spans [][]int) bool {
	for _, sp := range spans {
		if pos >= sp[0] && pos < sp[1] {
			return true
		}
	}
	return false
}
