package lexicon

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/ersonp/lore-state/internal/domain/extraction"
	"github.com/ersonp/lore-state/internal/domain/ports"
)

// Name is the backend name reported in logs and config.
const Name = "lexicon"

// Tagger is a rule-based ports.Tagger. It tags words from a lexicon and
// suffix heuristics, chunks noun phrases, and marks proper-name runs and
// role nouns as named entities.
type Tagger struct {
	source []byte

	once sync.Once
	lex  *Lexicon
	err  error
}

var _ ports.Tagger = (*Tagger)(nil)

// New creates a tagger over the embedded lexicon.
func New() *Tagger {
	return &Tagger{source: defaultLexicon}
}

// NewWithLexicon creates a tagger over a caller-supplied YAML lexicon.
func NewWithLexicon(data []byte) *Tagger {
	return &Tagger{source: data}
}

// Name returns the backend name.
func (t *Tagger) Name() string { return Name }

// Load parses the lexicon once. A broken lexicon makes the tagger unavailable.
func (t *Tagger) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.once.Do(func() {
		lex, err := ParseLexicon(t.source)
		if err != nil {
			t.err = fmt.Errorf("%w: %v", ports.ErrTaggerUnavailable, err)
			return
		}
		t.lex = lex
	})
	return t.err
}

// Parse splits text into sentences and tags each one.
func (t *Tagger) Parse(ctx context.Context, text string) (*ports.ParsedText, error) {
	if err := t.Load(ctx); err != nil {
		return nil, err
	}

	text = norm.NFC.String(text)
	parsed := &ports.ParsedText{}
	for _, s := range extraction.Sentences(text) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		parsed.Sentences = append(parsed.Sentences, t.parseSentence(s))
	}
	return parsed, nil
}

func (t *Tagger) parseSentence(text string) ports.Sentence {
	tokens := tokenize(text)
	t.tagTokens(tokens)
	t.retag(tokens)

	sent := ports.Sentence{Text: text, Tokens: tokens}
	sent.NounPhrases = findNounPhrases(text, tokens)
	sent.Entities = t.findEntities(text, tokens, sent.NounPhrases)
	return sent
}

// ============================================================================
// Tokenization
// ============================================================================

// tokenize splits a sentence into words and punctuation marks with byte offsets.
func tokenize(text string) []ports.Token {
	var tokens []ports.Token
	start := -1

	flush := func(end int) {
		if start < 0 {
			return
		}
		word := strings.TrimRight(text[start:end], "'-\u2019")
		if word != "" {
			tokens = append(tokens, ports.Token{Text: word, Start: start, End: start + len(word)})
		}
		start = -1
	}

	for i, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if start < 0 {
				start = i
			}
		case (r == '\'' || r == '-' || r == '\u2019') && start >= 0:
			// inside a word: "King's", "old-timer"
		case unicode.IsSpace(r):
			flush(i)
		default:
			flush(i)
			size := utf8.RuneLen(r)
			tokens = append(tokens, ports.Token{Text: text[i : i+size], POS: ports.POSPunctuation, Start: i, End: i + size})
		}
	}
	flush(len(text))
	return tokens
}

// ============================================================================
// Tagging
// ============================================================================

var adjectiveSuffixes = []string{"ous", "ful", "less", "ive", "able", "ible", "ish"}

// tagTokens assigns a tag to every word token from the lexicon, capitalization
// and suffixes, in that order.
func (t *Tagger) tagTokens(tokens []ports.Token) {
	for i := range tokens {
		tok := &tokens[i]
		if tok.POS == ports.POSPunctuation {
			continue
		}
		tok.POS = t.tagWord(tokens, i)
	}
}

func (t *Tagger) tagWord(tokens []ports.Token, i int) ports.POS {
	word := tokens[i].Text
	lower := normalizeWord(word)

	if pos, ok := t.lex.Closed(lower); ok {
		return pos
	}
	if isCapitalized(word) {
		if !isInitial(tokens, i) || !t.lex.isKnownOpen(lower) {
			return ports.POSProperNoun
		}
		// "King Aldric" at the start of a sentence is still a name.
		if t.lex.isHonorific(lower) && i+1 < len(tokens) && isCapitalized(tokens[i+1].Text) {
			return ports.POSProperNoun
		}
	}

	switch {
	case t.lex.isAdjective(lower):
		return ports.POSAdjective
	case t.lex.isVerb(lower):
		return ports.POSVerb
	}
	if _, ok := extraction.StateForVerb(lower); ok {
		return ports.POSVerb
	}
	if len(lower) > 4 && strings.HasSuffix(lower, "ly") {
		return ports.POSAdverb
	}
	for _, s := range adjectiveSuffixes {
		if len(lower) > len(s)+2 && strings.HasSuffix(lower, s) {
			return ports.POSAdjective
		}
	}
	if len(lower) > 4 && strings.HasSuffix(lower, "ed") {
		return ports.POSVerb
	}
	return ports.POSNoun
}

// retag fixes tags that depend on their neighbours: a verb after a
// determiner is a participle or a noun, and a modifier with no noun after
// it is the noun itself ("a stone", "the light").
func (t *Tagger) retag(tokens []ports.Token) {
	for i := range tokens {
		tok := &tokens[i]
		if i == 0 || !isModifierSlot(tokens[i-1].POS) {
			continue
		}
		lower := normalizeWord(tok.Text)
		if tok.POS == ports.POSVerb {
			if strings.HasSuffix(lower, "ed") || strings.HasSuffix(lower, "en") || t.lex.isAdjective(lower) {
				tok.POS = ports.POSAdjective
			} else {
				tok.POS = ports.POSNoun
			}
		}
		if tok.POS == ports.POSAdjective && !nounFollows(tokens, i) {
			tok.POS = ports.POSNoun
		}
	}
}

func isModifierSlot(prev ports.POS) bool {
	return prev == ports.POSDeterminer || prev == ports.POSAdjective
}

// nounFollows reports whether the adjectives after token i lead to a noun.
func nounFollows(tokens []ports.Token, i int) bool {
	for j := i + 1; j < len(tokens); j++ {
		switch tokens[j].POS {
		case ports.POSAdjective:
			continue
		case ports.POSNoun, ports.POSProperNoun:
			return true
		}
		return false
	}
	return false
}

func isCapitalized(word string) bool {
	r, _ := utf8.DecodeRuneInString(word)
	return unicode.IsUpper(r)
}

// isInitial reports whether token i opens the sentence or a quotation.
func isInitial(tokens []ports.Token, i int) bool {
	for j := i - 1; j >= 0; j-- {
		if tokens[j].POS != ports.POSPunctuation {
			return false
		}
		switch tokens[j].Text {
		case "\"", "\u201c", "'", ":", "(":
			return true
		}
	}
	return true
}

// ============================================================================
// Chunking
// ============================================================================

// findNounPhrases chunks Det? Adj* Noun+ runs, left to right.
func findNounPhrases(text string, tokens []ports.Token) []ports.Span {
	var out []ports.Span
	for i := 0; i < len(tokens); {
		if end, ok := tryNounPhrase(tokens, i); ok {
			out = append(out, spanOf(text, tokens, i, end, ""))
			i = end
			continue
		}
		i++
	}
	return out
}

// tryNounPhrase matches Det? Adj* Noun+ at start and returns the end index.
func tryNounPhrase(tokens []ports.Token, start int) (int, bool) {
	pos := start
	if pos < len(tokens) && tokens[pos].POS == ports.POSDeterminer {
		pos++
	}
	for pos < len(tokens) && tokens[pos].POS == ports.POSAdjective {
		pos++
	}
	nouns := 0
	for pos < len(tokens) && tokens[pos].POS.IsNominal() {
		pos++
		nouns++
	}
	if nouns == 0 {
		return 0, false
	}
	return pos, true
}

// ============================================================================
// Named entities
// ============================================================================

// findEntities marks proper-name runs and noun phrases headed by a role noun.
func (t *Tagger) findEntities(text string, tokens []ports.Token, nps []ports.Span) []ports.Span {
	var out []ports.Span

	for i := 0; i < len(tokens); {
		if tokens[i].POS != ports.POSProperNoun {
			i++
			continue
		}
		end := properRunEnd(tokens, i)
		out = append(out, spanOf(text, tokens, i, end, t.classifyName(tokens, i, end)))
		i = end
	}

	for _, np := range nps {
		head := tokens[np.End-1]
		if head.POS != ports.POSNoun || !t.lex.isRole(head.Text) {
			continue
		}
		start := np.Start
		for start < np.End && tokens[start].POS == ports.POSDeterminer {
			start++
		}
		sp := spanOf(text, tokens, start, np.End, ports.ClassPerson)
		if !overlaps(sp, out) {
			out = append(out, sp)
		}
	}
	return out
}

// properRunEnd extends a run of proper nouns across "of" and "of the", as in
// "Tower of Ash".
func properRunEnd(tokens []ports.Token, start int) int {
	end := start
	for end < len(tokens) {
		if tokens[end].POS == ports.POSProperNoun {
			end++
			continue
		}
		if strings.EqualFold(tokens[end].Text, "of") {
			next := end + 1
			if next < len(tokens) && strings.EqualFold(tokens[next].Text, "the") {
				next++
			}
			if next < len(tokens) && tokens[next].POS == ports.POSProperNoun {
				end = next
				continue
			}
		}
		break
	}
	return end
}

func (t *Tagger) classifyName(tokens []ports.Token, start, end int) ports.EntityClass {
	first := tokens[start].Text
	if t.lex.isHonorific(first) {
		return ports.ClassPerson
	}
	if class, ok := t.lex.headClass(first); ok {
		return class
	}
	if class, ok := t.lex.headClass(tokens[end-1].Text); ok {
		return class
	}
	if start > 0 {
		prev := tokens[start-1]
		if prev.POS == ports.POSDeterminer && start > 1 {
			prev = tokens[start-2]
		}
		if prev.POS == ports.POSPreposition && extraction.IsLocativePreposition(prev.Text) {
			return ports.ClassPlace
		}
	}
	return ports.ClassPerson
}

func spanOf(text string, tokens []ports.Token, start, end int, class ports.EntityClass) ports.Span {
	return ports.Span{
		Text:  text[tokens[start].Start:tokens[end-1].End],
		Class: class,
		Start: start,
		End:   end,
	}
}

func overlaps(sp ports.Span, others []ports.Span) bool {
	for _, o := range others {
		if sp.Start < o.End && o.Start < sp.End {
			return true
		}
	}
	return false
}
