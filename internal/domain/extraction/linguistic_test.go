package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lore-state/internal/domain/entities"
	"github.com/ersonp/lore-state/internal/domain/mocks"
	"github.com/ersonp/lore-state/internal/domain/ports"
)

type tok struct {
	text string
	pos  ports.POS
}

// sentence builds a parsed sentence from tokens, entity spans and noun phrases
// given as [start, end) token ranges.
func sentence(text string, toks []tok, ents map[[2]int]ports.EntityClass, nps ...[2]int) ports.Sentence {
	s := ports.Sentence{Text: text}
	for _, t := range toks {
		s.Tokens = append(s.Tokens, ports.Token{Text: t.text, POS: t.pos})
	}
	join := func(r [2]int) string {
		out := ""
		for i := r[0]; i < r[1]; i++ {
			if i > r[0] {
				out += " "
			}
			out += toks[i].text
		}
		return out
	}
	for r, class := range ents {
		s.Entities = append(s.Entities, ports.Span{Text: join(r), Class: class, Start: r[0], End: r[1]})
	}
	for _, r := range nps {
		s.NounPhrases = append(s.NounPhrases, ports.Span{Text: join(r), Start: r[0], End: r[1]})
	}
	return s
}

func TestLinguistic_ItemAndLocation(t *testing.T) {
	tagger := &mocks.Tagger{Parsed: &ports.ParsedText{Sentences: []ports.Sentence{
		sentence("The rusty sword gleamed in the torchlight.", []tok{
			{"The", ports.POSDeterminer}, {"rusty", ports.POSAdjective}, {"sword", ports.POSNoun},
			{"gleamed", ports.POSVerb}, {"in", ports.POSPreposition}, {"the", ports.POSDeterminer},
			{"torchlight", ports.POSNoun}, {".", ports.POSPunctuation},
		}, nil, [2]int{0, 3}, [2]int{5, 7}),
	}}}

	result, err := NewLinguistic(tagger, nil).Extract(context.Background(), "The rusty sword gleamed in the torchlight.")
	require.NoError(t, err)

	assert.Equal(t, []string{"rusty sword"}, result.Items)
	assert.Equal(t, []string{"torchlight"}, result.Locations)
	assert.Empty(t, result.Characters)
	assert.Empty(t, result.Relationships)
	assert.Equal(t, StrategyLinguistic, result.Strategy)
}

func TestLinguistic_IntransitiveStateChange(t *testing.T) {
	tagger := &mocks.Tagger{Parsed: &ports.ParsedText{Sentences: []ports.Sentence{
		sentence("The sword shattered against the stone wall.", []tok{
			{"The", ports.POSDeterminer}, {"sword", ports.POSNoun}, {"shattered", ports.POSVerb},
			{"against", ports.POSPreposition}, {"the", ports.POSDeterminer}, {"stone", ports.POSNoun},
			{"wall", ports.POSNoun}, {".", ports.POSPunctuation},
		}, nil, [2]int{0, 2}, [2]int{4, 7}),
	}}}

	result, err := NewLinguistic(tagger, nil).Extract(context.Background(), "x")
	require.NoError(t, err)

	assert.Equal(t, []string{"sword"}, result.Items)
	assert.Equal(t, []string{"stone wall"}, result.Locations)
	require.Len(t, result.Relationships, 1)
	rel := result.Relationships[0]
	assert.Equal(t, entities.RelationStateChange, rel.Type)
	assert.Equal(t, "sword", rel.Source)
	assert.Equal(t, entities.ItemStateBroken, rel.NewState)
	assert.Equal(t, "The sword shattered against the stone wall.", rel.Context)
}

func TestLinguistic_TransitiveStateChangeAffectsObject(t *testing.T) {
	tagger := &mocks.Tagger{Parsed: &ports.ParsedText{Sentences: []ports.Sentence{
		sentence("Mara drank the potion.", []tok{
			{"Mara", ports.POSProperNoun}, {"drank", ports.POSVerb}, {"the", ports.POSDeterminer},
			{"potion", ports.POSNoun}, {".", ports.POSPunctuation},
		}, map[[2]int]ports.EntityClass{{0, 1}: ports.ClassPerson}, [2]int{0, 1}, [2]int{2, 4}),
	}}}

	result, err := NewLinguistic(tagger, nil).Extract(context.Background(), "x")
	require.NoError(t, err)

	assert.Equal(t, []string{"Mara"}, result.Characters)
	assert.Equal(t, []string{"potion"}, result.Items)
	require.Len(t, result.Relationships, 1)
	assert.Equal(t, "potion", result.Relationships[0].Source)
	assert.Equal(t, entities.ItemStateConsumed, result.Relationships[0].NewState)
}

func TestLinguistic_IdentityReveal(t *testing.T) {
	tagger := &mocks.Tagger{Parsed: &ports.ParsedText{Sentences: []ports.Sentence{
		sentence("The beggar was actually revealed as the King.", []tok{
			{"The", ports.POSDeterminer}, {"beggar", ports.POSNoun}, {"was", ports.POSAuxiliary},
			{"actually", ports.POSAdverb}, {"revealed", ports.POSVerb}, {"as", ports.POSPreposition},
			{"the", ports.POSDeterminer}, {"King", ports.POSProperNoun}, {".", ports.POSPunctuation},
		}, map[[2]int]ports.EntityClass{
			{1, 2}: ports.ClassPerson,
			{7, 8}: ports.ClassPerson,
		}, [2]int{0, 2}, [2]int{6, 8}),
	}}}

	result, err := NewLinguistic(tagger, nil).Extract(context.Background(), "x")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"beggar", "King"}, result.Characters)
	assert.Empty(t, result.Items)
	require.Len(t, result.Relationships, 1, "both identity phrases yield the same relationship")
	rel := result.Relationships[0]
	assert.Equal(t, entities.RelationIdentity, rel.Type)
	assert.Equal(t, "beggar", rel.Source)
	assert.Equal(t, "King", rel.Target)
}

func TestLinguistic_NoEndpointNoRelationship(t *testing.T) {
	tagger := &mocks.Tagger{Parsed: &ports.ParsedText{Sentences: []ports.Sentence{
		sentence("It was actually broken.", []tok{
			{"It", ports.POSPronoun}, {"was", ports.POSAuxiliary}, {"actually", ports.POSAdverb},
			{"broken", ports.POSAdjective}, {".", ports.POSPunctuation},
		}, nil, [2]int{0, 1}),
	}}}

	result, err := NewLinguistic(tagger, nil).Extract(context.Background(), "x")
	require.NoError(t, err)

	assert.Empty(t, result.Items)
	assert.Empty(t, result.Relationships)
}

func TestLinguistic_FiltersGenericAndDuplicates(t *testing.T) {
	tagger := &mocks.Tagger{Parsed: &ports.ParsedText{Sentences: []ports.Sentence{
		sentence("The thing hit the lantern.", []tok{
			{"The", ports.POSDeterminer}, {"thing", ports.POSNoun}, {"hit", ports.POSVerb},
			{"the", ports.POSDeterminer}, {"lantern", ports.POSNoun}, {".", ports.POSPunctuation},
		}, nil, [2]int{0, 2}, [2]int{3, 5}),
		sentence("A Lantern glowed.", []tok{
			{"A", ports.POSDeterminer}, {"Lantern", ports.POSNoun}, {"glowed", ports.POSVerb}, {".", ports.POSPunctuation},
		}, nil, [2]int{0, 2}),
	}}}

	result, err := NewLinguistic(tagger, nil).Extract(context.Background(), "x")
	require.NoError(t, err)

	assert.Equal(t, []string{"lantern"}, result.Items)
}

func TestLinguistic_EmptyText(t *testing.T) {
	tagger := &mocks.Tagger{}

	result, err := NewLinguistic(tagger, nil).Extract(context.Background(), "   ")
	require.NoError(t, err)

	assert.True(t, result.IsEmpty())
	assert.Equal(t, 0, tagger.Parses())
}

func TestLinguistic_TaggerError(t *testing.T) {
	tagger := &mocks.Tagger{ParseErr: ports.ErrTaggerUnavailable}

	_, err := NewLinguistic(tagger, nil).Extract(context.Background(), "Some text.")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrTaggerUnavailable))
}
