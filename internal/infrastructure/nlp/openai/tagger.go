// Package openai provides a ports.Tagger backed by an OpenAI chat model.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ersonp/lore-state/internal/domain/ports"
	"github.com/ersonp/lore-state/internal/infrastructure/config"
)

// Name is the backend name reported in logs and config.
const Name = "openai"

const defaultModel = "gpt-4o-mini"

const taggingPrompt = `You are a part-of-speech tagger for narrative fiction. Split the given text into sentences and tag every token.

For each sentence return:
- text: the sentence exactly as written
- tokens: every word and punctuation mark in order, each with "text" and "pos"
  (pos is one of NOUN, PROPN, PRON, VERB, AUX, ADJ, ADV, DET, ADP, CCONJ, SCONJ, PUNCT, X)
- entities: named people, places, facilities, products and works of art, as token ranges
  {"start": first token index, "end": one past the last token index, "class": PERSON|PLACE|FACILITY|PRODUCT|WORK_OF_ART|OTHER}
  Common nouns that name a person's role (the beggar, the old hermit) are PERSON entities without the determiner.
- noun_phrases: every noun phrase as a token range {"start", "end"}, including its determiner

Return ONLY a valid JSON object {"sentences": [...]}, no other text.

Example:
Input: "Mara drank the potion."
Output: {"sentences": [{"text": "Mara drank the potion.",
  "tokens": [{"text": "Mara", "pos": "PROPN"}, {"text": "drank", "pos": "VERB"}, {"text": "the", "pos": "DET"}, {"text": "potion", "pos": "NOUN"}, {"text": ".", "pos": "PUNCT"}],
  "entities": [{"start": 0, "end": 1, "class": "PERSON"}],
  "noun_phrases": [{"start": 0, "end": 1}, {"start": 2, "end": 4}]}]}`

// Tagger implements ports.Tagger with a chat completion per Parse call.
type Tagger struct {
	client *openai.Client
	model  string
}

var _ ports.Tagger = (*Tagger)(nil)

// NewTagger creates an OpenAI tagger. A missing API key is not an error here;
// the tagger reports itself unavailable on Load instead.
func NewTagger(cfg config.LLMConfig) *Tagger {
	model := defaultModel
	if cfg.Model != "" {
		model = cfg.Model
	}

	var client *openai.Client
	if cfg.APIKey != "" {
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		client = openai.NewClientWithConfig(clientCfg)
	}

	return &Tagger{client: client, model: model}
}

// Name returns the backend name.
func (t *Tagger) Name() string { return Name }

// Load checks that the tagger can make requests.
func (t *Tagger) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.client == nil {
		return fmt.Errorf("%w: OpenAI API key is required", ports.ErrTaggerUnavailable)
	}
	return nil
}

// Parse asks the model to tag text and converts its answer.
func (t *Tagger) Parse(ctx context.Context, text string) (*ports.ParsedText, error) {
	if err := t.Load(ctx); err != nil {
		return nil, err
	}

	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: taggingPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		Temperature: 0,
	})
	if err != nil {
		if isPermanent(err) {
			return nil, fmt.Errorf("%w: %v", ports.ErrTaggerUnavailable, err)
		}
		return nil, fmt.Errorf("calling OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("no response from OpenAI")
	}

	content := cleanJSONResponse(resp.Choices[0].Message.Content)

	var raw rawParse
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("parsing tagger JSON: %w (response: %s)", err, content)
	}

	return raw.toParsedText(), nil
}

// isPermanent reports whether the API refused the request in a way retrying
// will not fix.
func isPermanent(err error) bool {
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.HTTPStatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return true
	}
	return false
}

// rawParse is the JSON structure the model returns.
type rawParse struct {
	Sentences []rawSentence `json:"sentences"`
}

type rawSentence struct {
	Text        string     `json:"text"`
	Tokens      []rawToken `json:"tokens"`
	Entities    []rawSpan  `json:"entities"`
	NounPhrases []rawSpan  `json:"noun_phrases"`
}

type rawToken struct {
	Text string `json:"text"`
	POS  string `json:"pos"`
}

type rawSpan struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Class string `json:"class,omitempty"`
}

func (r rawParse) toParsedText() *ports.ParsedText {
	out := &ports.ParsedText{Sentences: make([]ports.Sentence, 0, len(r.Sentences))}
	for _, rs := range r.Sentences {
		if len(rs.Tokens) == 0 {
			continue
		}
		out.Sentences = append(out.Sentences, rs.toSentence())
	}
	return out
}

func (rs rawSentence) toSentence() ports.Sentence {
	text := strings.TrimSpace(rs.Text)
	if text == "" {
		words := make([]string, len(rs.Tokens))
		for i, rt := range rs.Tokens {
			words[i] = rt.Text
		}
		text = strings.Join(words, " ")
	}

	tokens := make([]ports.Token, len(rs.Tokens))
	cursor := 0
	for i, rt := range rs.Tokens {
		tok := ports.Token{Text: rt.Text, POS: posFromTag(rt.POS), Start: cursor, End: cursor}
		if idx := strings.Index(text[cursor:], rt.Text); idx >= 0 && rt.Text != "" {
			tok.Start = cursor + idx
			tok.End = tok.Start + len(rt.Text)
			cursor = tok.End
		}
		tokens[i] = tok
	}

	sent := ports.Sentence{Text: text, Tokens: tokens}
	for _, sp := range rs.Entities {
		if span, ok := toSpan(sp, tokens, classFromTag(sp.Class)); ok {
			sent.Entities = append(sent.Entities, span)
		}
	}
	for _, sp := range rs.NounPhrases {
		if span, ok := toSpan(sp, tokens, ""); ok {
			sent.NounPhrases = append(sent.NounPhrases, span)
		}
	}
	return sent
}

// toSpan validates a token range and fills in its text. Ranges the model got
// wrong are dropped.
func toSpan(sp rawSpan, tokens []ports.Token, class ports.EntityClass) (ports.Span, bool) {
	if sp.Start < 0 || sp.End > len(tokens) || sp.Start >= sp.End {
		return ports.Span{}, false
	}
	words := make([]string, 0, sp.End-sp.Start)
	for _, tok := range tokens[sp.Start:sp.End] {
		words = append(words, tok.Text)
	}
	return ports.Span{
		Text:  strings.Join(words, " "),
		Class: class,
		Start: sp.Start,
		End:   sp.End,
	}, true
}

var posTags = map[string]ports.POS{
	"NOUN":  ports.POSNoun,
	"PROPN": ports.POSProperNoun,
	"PRON":  ports.POSPronoun,
	"VERB":  ports.POSVerb,
	"AUX":   ports.POSAuxiliary,
	"ADJ":   ports.POSAdjective,
	"ADV":   ports.POSAdverb,
	"DET":   ports.POSDeterminer,
	"ADP":   ports.POSPreposition,
	"CCONJ": ports.POSConjunction,
	"SCONJ": ports.POSConjunction,
	"PUNCT": ports.POSPunctuation,
}

func posFromTag(tag string) ports.POS {
	if pos, ok := posTags[strings.ToUpper(strings.TrimSpace(tag))]; ok {
		return pos
	}
	return ports.POSOther
}

func classFromTag(tag string) ports.EntityClass {
	switch strings.ToUpper(strings.TrimSpace(tag)) {
	case "PERSON", "PER":
		return ports.ClassPerson
	case "PLACE", "LOC", "GPE":
		return ports.ClassPlace
	case "FACILITY", "FAC":
		return ports.ClassFacility
	case "PRODUCT":
		return ports.ClassProduct
	case "WORK_OF_ART":
		return ports.ClassWorkOfArt
	}
	return ports.ClassOther
}

// cleanJSONResponse removes markdown code blocks if present.
func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}

	return strings.TrimSpace(content)
}
