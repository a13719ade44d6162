package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ersonp/lore-state/internal/domain/entities"
	"github.com/ersonp/lore-state/internal/domain/extraction"
	"github.com/ersonp/lore-state/internal/domain/mocks"
	"github.com/ersonp/lore-state/internal/domain/ports"
)

const testGame int64 = 1

func newSegmentService(store *mocks.WorldStore, extractor ports.Extractor) (*SegmentService, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return NewSegmentService(store, extractor, nil, NewLifecycle(nil, nil), zap.New(core)), logs
}

func listItems(t *testing.T, store *mocks.WorldStore) []*entities.Item {
	t.Helper()
	items, err := store.ListItems(context.Background(), testGame)
	require.NoError(t, err)
	return items
}

func listCharacters(t *testing.T, store *mocks.WorldStore) []*entities.Character {
	t.Helper()
	characters, err := store.ListCharacters(context.Background(), testGame)
	require.NoError(t, err)
	return characters
}

func TestProcessSegment_SwordStory(t *testing.T) {
	store := mocks.NewWorldStore()
	svc, _ := newSegmentService(store, extraction.NewRegex(nil))
	ctx := context.Background()

	_, err := svc.ProcessSegment(ctx, testGame, entities.Segment{ID: 1, Content: "The rusty sword gleamed in the torchlight."}, 1)
	require.NoError(t, err)

	items := listItems(t, store)
	require.Len(t, items, 1)
	sword := items[0]
	assert.Equal(t, "rusty sword", sword.Name)
	assert.Equal(t, []string{"sword"}, sword.Aliases)
	assert.Equal(t, entities.ItemStateDefault, sword.CurrentState)
	assert.Equal(t, 1, sword.AcquiredAt)
	assert.Nil(t, sword.LostAt)

	result, err := svc.ProcessSegment(ctx, testGame, entities.Segment{ID: 2, Content: "The sword shattered against the stone wall."}, 5)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, sword.ID, result.Items[0].ID)

	items = listItems(t, store)
	require.Len(t, items, 1, "the head noun resolves to the existing item")
	sword = items[0]
	assert.Equal(t, entities.ItemStateBroken, sword.CurrentState)
	require.NotNil(t, sword.LostAt)
	assert.Equal(t, 5, *sword.LostAt)
	assert.Equal(t, 5, sword.LastMentionedAt)
	require.Len(t, sword.StateHistory, 1)
	assert.Equal(t, entities.HistoryEntry{
		Turn:    5,
		Type:    "BROKEN",
		Context: "The sword shattered against the stone wall.",
	}, sword.StateHistory[0])

	mentions, err := store.ListMentions(ctx, testGame, entities.EntityTypeItem, sword.ID)
	require.NoError(t, err)
	require.Len(t, mentions, 2)
	assert.False(t, mentions[0].StateChange)
	assert.Equal(t, int64(1), mentions[0].SegmentID)
	assert.Equal(t, "The rusty sword gleamed in the torchlight.", mentions[0].Context)
	assert.True(t, mentions[1].StateChange)
	assert.Equal(t, "BROKEN", mentions[1].NewState)
	assert.Equal(t, int64(2), mentions[1].SegmentID)
}

func TestProcessSegment_IdentityRevealAddsAlias(t *testing.T) {
	store := mocks.NewWorldStore()
	context1 := "The beggar was actually revealed as the King."
	extractor := &mocks.Extractor{Result: &entities.Extraction{
		Characters: []string{"beggar", "King"},
		Relationships: []entities.Relationship{{
			Type: entities.RelationIdentity, Source: "beggar", Target: "King", Context: context1,
		}},
	}}
	svc, _ := newSegmentService(store, extractor)
	ctx := context.Background()

	_, err := svc.ProcessSegment(ctx, testGame, entities.Segment{ID: 1, Content: context1}, 2)
	require.NoError(t, err)

	characters := listCharacters(t, store)
	require.Len(t, characters, 1, "the revealed identity is not a new character")
	beggar := characters[0]
	assert.Equal(t, "beggar", beggar.Name)
	assert.Equal(t, []string{"King"}, beggar.Aliases)
	require.Len(t, beggar.StateHistory, 1)
	assert.Equal(t, entities.HistoryEventIdentityRevealed, beggar.StateHistory[0].Type)
	assert.Equal(t, "King", beggar.StateHistory[0].NewIdentity)
	assert.Empty(t, listItems(t, store))

	mentions, err := store.ListMentions(ctx, testGame, entities.EntityTypeCharacter, beggar.ID)
	require.NoError(t, err)
	require.Len(t, mentions, 1)
	assert.True(t, mentions[0].StateChange)
	assert.Equal(t, entities.HistoryEventIdentityRevealed, mentions[0].NewState)

	// Later mentions of the King resolve to the same character.
	extractor.Result = &entities.Extraction{Characters: []string{"the King"}}
	_, err = svc.ProcessSegment(ctx, testGame, entities.Segment{ID: 2, Content: "The King smiled."}, 4)
	require.NoError(t, err)

	characters = listCharacters(t, store)
	require.Len(t, characters, 1)
	assert.Equal(t, 4, characters[0].LastAppearedAt)
	assert.Equal(t, 2, characters[0].FirstAppearedAt)
}

func TestProcessSegment_IdentityRevealIndependentOfCandidateOrder(t *testing.T) {
	reveal := "The beggar was actually revealed as the King."
	orders := [][]string{
		{"beggar", "King"},
		{"King", "beggar"},
		{"beggar", "the King"},
	}

	for _, order := range orders {
		t.Run(strings.Join(order, ","), func(t *testing.T) {
			store := mocks.NewWorldStore()
			extractor := &mocks.Extractor{Result: &entities.Extraction{
				Characters: order,
				Relationships: []entities.Relationship{{
					Type: entities.RelationIdentity, Source: "beggar", Target: "King", Context: reveal,
				}},
			}}
			svc, _ := newSegmentService(store, extractor)

			_, err := svc.ProcessSegment(context.Background(), testGame, entities.Segment{ID: 1, Content: reveal}, 2)
			require.NoError(t, err)

			characters := listCharacters(t, store)
			require.Len(t, characters, 1)
			assert.Equal(t, []string{"King"}, characters[0].Aliases)
			require.Len(t, characters[0].StateHistory, 1)

			mentions := store.AllMentions()
			require.Len(t, mentions, 1, "one reveal, one mention")
			assert.True(t, mentions[0].StateChange)
			assert.Equal(t, entities.HistoryEventIdentityRevealed, mentions[0].NewState)
		})
	}
}

func TestProcessSegment_IdentityLinksExistingCharacter(t *testing.T) {
	store := mocks.NewWorldStore()
	king := store.SeedCharacter(&entities.Character{GameID: testGame, Name: "King Aldric", FirstAppearedAt: 1, LastAppearedAt: 1})
	extractor := &mocks.Extractor{Result: &entities.Extraction{
		Characters: []string{"hermit"},
		Relationships: []entities.Relationship{{
			Type: entities.RelationIdentity, Source: "hermit", Target: "King Aldric",
		}},
	}}
	svc, _ := newSegmentService(store, extractor)

	_, err := svc.ProcessSegment(context.Background(), testGame, entities.Segment{ID: 9, Content: "x"}, 3)
	require.NoError(t, err)

	characters := listCharacters(t, store)
	require.Len(t, characters, 2)
	hermit := characters[1]
	assert.Equal(t, "hermit", hermit.Name)
	require.NotNil(t, hermit.OriginalCharacterID)
	assert.Equal(t, king.ID, *hermit.OriginalCharacterID)
	assert.Empty(t, hermit.Aliases)
}

func TestProcessSegment_StateAtCreation(t *testing.T) {
	store := mocks.NewWorldStore()
	sentence := "Mara drank the Health Potion."
	extractor := &mocks.Extractor{Result: &entities.Extraction{
		Characters: []string{"Mara"},
		Items:      []string{"Health Potion"},
		Relationships: []entities.Relationship{{
			Type: entities.RelationStateChange, Source: "Health Potion", NewState: entities.ItemStateConsumed, Context: sentence,
		}},
	}}
	svc, _ := newSegmentService(store, extractor)

	result, err := svc.ProcessSegment(context.Background(), testGame, entities.Segment{ID: 5, Content: sentence}, 3)
	require.NoError(t, err)
	assert.Len(t, result.Items, 1)
	assert.Len(t, result.Characters, 1)

	items := listItems(t, store)
	require.Len(t, items, 1)
	potion := items[0]
	assert.Equal(t, entities.ItemStateConsumed, potion.CurrentState)
	assert.Equal(t, []string{"potion"}, potion.Aliases)
	require.Len(t, potion.StateHistory, 1)
	assert.Equal(t, 3, potion.StateHistory[0].Turn)
	require.NotNil(t, potion.LostAt)
	assert.Equal(t, 3, *potion.LostAt)

	mentions, err := store.ListMentions(context.Background(), testGame, entities.EntityTypeItem, potion.ID)
	require.NoError(t, err)
	require.Len(t, mentions, 1)
	assert.True(t, mentions[0].StateChange)
	assert.Equal(t, "CONSUMED", mentions[0].NewState)
	assert.Equal(t, sentence, mentions[0].Context)

	characters := listCharacters(t, store)
	require.Len(t, characters, 1)
	assert.Equal(t, "Mara", characters[0].Name)
}

func TestProcessSegment_UnclaimedStateChangeCreatesItem(t *testing.T) {
	store := mocks.NewWorldStore()
	extractor := &mocks.Extractor{Result: &entities.Extraction{
		Relationships: []entities.Relationship{{
			Type: entities.RelationStateChange, Source: "silver amulet", NewState: entities.ItemStateLost,
		}},
	}}
	svc, _ := newSegmentService(store, extractor)

	_, err := svc.ProcessSegment(context.Background(), testGame, entities.Segment{ID: 1, Content: "x"}, 2)
	require.NoError(t, err)

	items := listItems(t, store)
	require.Len(t, items, 1)
	assert.Equal(t, "silver amulet", items[0].Name)
	assert.Equal(t, entities.ItemStateLost, items[0].CurrentState)
}

func TestProcessSegment_GenericTermsAreNeverCreated(t *testing.T) {
	store := mocks.NewWorldStore()
	extractor := &mocks.Extractor{Result: &entities.Extraction{
		Items:      []string{"thing", "something", "the stuff"},
		Characters: []string{"someone", "Nobody"},
		Relationships: []entities.Relationship{
			{Type: entities.RelationStateChange, Source: "it", NewState: entities.ItemStateBroken},
			{Type: entities.RelationIdentity, Source: "someone", Target: "everyone"},
		},
	}}
	svc, _ := newSegmentService(store, extractor)

	result, err := svc.ProcessSegment(context.Background(), testGame, entities.Segment{ID: 1, Content: "x"}, 1)
	require.NoError(t, err)

	assert.Empty(t, result.Items)
	assert.Empty(t, result.Characters)
	assert.Empty(t, listItems(t, store))
	assert.Empty(t, listCharacters(t, store))
	assert.Empty(t, store.AllMentions())
}

func TestProcessSegment_CharacterNamesAreNotItems(t *testing.T) {
	store := mocks.NewWorldStore()
	extractor := &mocks.Extractor{Result: &entities.Extraction{
		Items:      []string{"Mara", "lantern"},
		Characters: []string{"Mara"},
	}}
	svc, _ := newSegmentService(store, extractor)

	_, err := svc.ProcessSegment(context.Background(), testGame, entities.Segment{ID: 1, Content: "Mara lit the lantern."}, 1)
	require.NoError(t, err)

	items := listItems(t, store)
	require.Len(t, items, 1)
	assert.Equal(t, "lantern", items[0].Name)
	assert.Len(t, listCharacters(t, store), 1)
}

func TestProcessSegment_FailedCommitLeavesRosterUnchanged(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*mocks.WorldStore)
	}{
		{"mention insert fails", func(s *mocks.WorldStore) {
			s.FailOn = "InsertMention"
			s.FailErr = errors.New("disk full")
		}},
		{"item update fails", func(s *mocks.WorldStore) {
			s.FailOn = "UpdateItem"
			s.FailErr = errors.New("constraint")
		}},
		{"commit fails", func(s *mocks.WorldStore) {
			s.CommitErr = errors.New("commit aborted")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mocks.NewWorldStore()
			store.SeedItem(&entities.Item{
				GameID: testGame, Name: "rusty sword", Aliases: []string{"sword"},
				CurrentState: entities.ItemStateDefault, AcquiredAt: 1, LastMentionedAt: 1,
			})
			tt.mutate(store)

			extractor := &mocks.Extractor{Result: &entities.Extraction{
				Items:      []string{"sword", "lantern"},
				Characters: []string{"Mara"},
				Relationships: []entities.Relationship{{
					Type: entities.RelationStateChange, Source: "sword", NewState: entities.ItemStateBroken,
				}},
			}}
			svc, logs := newSegmentService(store, extractor)

			_, err := svc.ProcessSegment(context.Background(), testGame, entities.Segment{ID: 2, Content: "x"}, 5)
			require.Error(t, err)

			items := listItems(t, store)
			require.Len(t, items, 1)
			assert.Equal(t, entities.ItemStateDefault, items[0].CurrentState)
			assert.Nil(t, items[0].LostAt)
			assert.Equal(t, 1, items[0].LastMentionedAt)
			assert.Empty(t, listCharacters(t, store))
			assert.Empty(t, store.AllMentions())
			assert.Equal(t, 0, store.Commits)
			assert.Equal(t, 1, logs.FilterMessage("commit failed, roster unchanged").Len())
		})
	}
}

func TestProcessSegment_Validation(t *testing.T) {
	tests := []struct {
		name    string
		gameID  int64
		segment entities.Segment
		turn    int
		wantErr error
	}{
		{"zero game", 0, entities.Segment{ID: 1, Content: "x"}, 1, ErrInvalidGameID},
		{"negative game", -3, entities.Segment{ID: 1, Content: "x"}, 1, ErrInvalidGameID},
		{"negative turn", 1, entities.Segment{ID: 1, Content: "x"}, -1, ErrInvalidTurn},
		{"missing segment id", 1, entities.Segment{Content: "x"}, 1, ErrInvalidSegmentID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := &mocks.Extractor{}
			svc, _ := newSegmentService(mocks.NewWorldStore(), extractor)

			_, err := svc.ProcessSegment(context.Background(), tt.gameID, tt.segment, tt.turn)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, extractor.Calls())
		})
	}
}

func TestProcessSegment_EmptyExtractionSkipsCommit(t *testing.T) {
	store := mocks.NewWorldStore()
	svc, _ := newSegmentService(store, &mocks.Extractor{})

	result, err := svc.ProcessSegment(context.Background(), testGame, entities.Segment{ID: 1, Content: "..."}, 0)
	require.NoError(t, err)

	assert.NotNil(t, result.Items)
	assert.NotNil(t, result.Characters)
	assert.Empty(t, result.Items)
	assert.Equal(t, 0, store.Commits)
}

func TestProcessSegment_ExtractorError(t *testing.T) {
	boom := errors.New("boom")
	svc, _ := newSegmentService(mocks.NewWorldStore(), &mocks.Extractor{Err: boom})

	_, err := svc.ProcessSegment(context.Background(), testGame, entities.Segment{ID: 1, Content: "x"}, 1)
	assert.ErrorIs(t, err, boom)
}

func TestProcessSegment_StoreReadError(t *testing.T) {
	store := mocks.NewWorldStore()
	store.Err = errors.New("db down")
	svc, _ := newSegmentService(store, &mocks.Extractor{Result: &entities.Extraction{Items: []string{"lantern"}}})

	_, err := svc.ProcessSegment(context.Background(), testGame, entities.Segment{ID: 1, Content: "x"}, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading items")
}

func TestProcessSegment_CanceledContext(t *testing.T) {
	svc, _ := newSegmentService(mocks.NewWorldStore(), &mocks.Extractor{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ProcessSegment(ctx, testGame, entities.Segment{ID: 1, Content: "x"}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessSegment_ConcurrentSegmentsForOneGame(t *testing.T) {
	store := mocks.NewWorldStore()
	extractor := &mocks.Extractor{Result: &entities.Extraction{Items: []string{"rusty sword"}}}
	svc, _ := newSegmentService(store, extractor)

	var wg sync.WaitGroup
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func(turn int) {
			defer wg.Done()
			_, err := svc.ProcessSegment(context.Background(), testGame, entities.Segment{ID: int64(turn), Content: "x"}, turn)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	items := listItems(t, store)
	require.Len(t, items, 1, "serialized per game so no duplicates are created")
	assert.Equal(t, 10, items[0].LastMentionedAt)
	assert.Len(t, store.AllMentions(), 10)
}

func TestProcessSegment_GamesAreIsolated(t *testing.T) {
	store := mocks.NewWorldStore()
	svc, _ := newSegmentService(store, &mocks.Extractor{Result: &entities.Extraction{Items: []string{"lantern"}}})
	ctx := context.Background()

	_, err := svc.ProcessSegment(ctx, 1, entities.Segment{ID: 1, Content: "x"}, 1)
	require.NoError(t, err)
	_, err = svc.ProcessSegment(ctx, 2, entities.Segment{ID: 2, Content: "x"}, 1)
	require.NoError(t, err)

	for _, game := range []int64{1, 2} {
		items, err := store.ListItems(ctx, game)
		require.NoError(t, err)
		assert.Len(t, items, 1, "game %d", game)
	}
}

func TestProcessGeneratorOutput_ExplicitTags(t *testing.T) {
	store := mocks.NewWorldStore()
	svc, _ := newSegmentService(store, &mocks.Extractor{})
	ctx := context.Background()

	out := entities.GeneratorOutput{
		SegmentID: 4,
		NewItems: []entities.DeclaredItem{{
			Name:        "Health Potion",
			Description: "A vial of red liquid.\nITEM_UPDATE: Health Potion | consumed | drank it mid-fight",
		}},
	}
	result, err := svc.ProcessGeneratorOutput(ctx, testGame, out, 3)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Nil(t, result.Extracted)

	items := listItems(t, store)
	require.Len(t, items, 1)
	potion := items[0]
	assert.Equal(t, "Health Potion", potion.Name)
	assert.Equal(t, entities.ItemStateConsumed, potion.CurrentState)
	assert.Equal(t, out.NewItems[0].Description, potion.Description)
	require.Len(t, potion.StateHistory, 1)
	assert.Equal(t, "drank it mid-fight", potion.StateHistory[0].Reason)

	mentions, err := store.ListMentions(ctx, testGame, entities.EntityTypeItem, potion.ID)
	require.NoError(t, err)
	require.Len(t, mentions, 1)
	assert.Equal(t, int64(4), mentions[0].SegmentID)
	assert.Equal(t, "CONSUMED", mentions[0].NewState)
}

func TestProcessGeneratorOutput_FallbackTemplates(t *testing.T) {
	store := mocks.NewWorldStore()
	svc, _ := newSegmentService(store, &mocks.Extractor{})

	out := entities.GeneratorOutput{NewItems: []entities.DeclaredItem{{
		Name:        "Oak Shield",
		Description: "It was shattered in the battle.",
	}}}
	_, err := svc.ProcessGeneratorOutput(context.Background(), testGame, out, 2)
	require.NoError(t, err)

	items := listItems(t, store)
	require.Len(t, items, 1)
	assert.Equal(t, entities.ItemStateBroken, items[0].CurrentState)
	assert.Empty(t, store.AllMentions(), "no segment id, no mentions")
}

func TestProcessGeneratorOutput_TagForAnotherItem(t *testing.T) {
	store := mocks.NewWorldStore()
	store.SeedItem(&entities.Item{GameID: testGame, Name: "Rusty Sword", CurrentState: entities.ItemStateDefault})
	svc, _ := newSegmentService(store, &mocks.Extractor{})

	out := entities.GeneratorOutput{NewItems: []entities.DeclaredItem{{
		Name:        "Lantern",
		Description: "A brass lantern.\nITEM_UPDATE: Rusty Sword | broken | hit the lantern",
	}}}
	_, err := svc.ProcessGeneratorOutput(context.Background(), testGame, out, 6)
	require.NoError(t, err)

	items := listItems(t, store)
	require.Len(t, items, 2)
	assert.Equal(t, entities.ItemStateBroken, items[0].CurrentState)
	assert.Equal(t, "Lantern", items[1].Name)
	assert.Equal(t, entities.ItemStateDefault, items[1].CurrentState)
}

func TestProcessGeneratorOutput_CharactersAndPendingLink(t *testing.T) {
	store := mocks.NewWorldStore()
	svc, _ := newSegmentService(store, &mocks.Extractor{})

	out := entities.GeneratorOutput{NewCharacters: []entities.DeclaredCharacter{
		{Name: "Queen Mab", Description: "Ruler of the fae.", Relationship: "enemy"},
		{Name: "old hermit", Description: "CHARACTER_UPDATE: old hermit | Queen Mab | the mask slipped"},
	}}
	result, err := svc.ProcessGeneratorOutput(context.Background(), testGame, out, 7)
	require.NoError(t, err)
	assert.Len(t, result.Characters, 2)

	characters := listCharacters(t, store)
	require.Len(t, characters, 2)
	mab, hermit := characters[0], characters[1]
	assert.Equal(t, "enemy", mab.Relationship)
	assert.Equal(t, "Ruler of the fae.", mab.Description)
	require.NotNil(t, hermit.OriginalCharacterID, "linked once the queen has an id")
	assert.Equal(t, mab.ID, *hermit.OriginalCharacterID)
	require.Len(t, hermit.StateHistory, 1)
	assert.Equal(t, "the mask slipped", hermit.StateHistory[0].Reason)
	assert.Equal(t, "Queen Mab", hermit.StateHistory[0].NewIdentity)
	assert.Nil(t, mab.OriginalCharacterID)
}

func TestProcessGeneratorOutput_ExistingCharacterUpdated(t *testing.T) {
	store := mocks.NewWorldStore()
	store.SeedCharacter(&entities.Character{GameID: testGame, Name: "Mara", FirstAppearedAt: 1, LastAppearedAt: 1})
	svc, _ := newSegmentService(store, &mocks.Extractor{})

	out := entities.GeneratorOutput{NewCharacters: []entities.DeclaredCharacter{
		{Name: "mara", Description: "A wandering smith.", Relationship: "ally"},
	}}
	_, err := svc.ProcessGeneratorOutput(context.Background(), testGame, out, 4)
	require.NoError(t, err)

	characters := listCharacters(t, store)
	require.Len(t, characters, 1)
	assert.Equal(t, "Mara", characters[0].Name)
	assert.Equal(t, "ally", characters[0].Relationship)
	assert.Equal(t, "A wandering smith.", characters[0].Description)
	assert.Equal(t, 4, characters[0].LastAppearedAt)
}

func TestProcessGeneratorOutput_Validation(t *testing.T) {
	svc, _ := newSegmentService(mocks.NewWorldStore(), &mocks.Extractor{})
	ctx := context.Background()

	_, err := svc.ProcessGeneratorOutput(ctx, 0, entities.GeneratorOutput{}, 1)
	assert.ErrorIs(t, err, ErrInvalidGameID)
	_, err = svc.ProcessGeneratorOutput(ctx, testGame, entities.GeneratorOutput{SegmentID: -1}, 1)
	assert.ErrorIs(t, err, ErrInvalidSegmentID)
	_, err = svc.ProcessGeneratorOutput(ctx, testGame, entities.GeneratorOutput{}, -2)
	assert.ErrorIs(t, err, ErrInvalidTurn)

	result, err := svc.ProcessGeneratorOutput(ctx, testGame, entities.GeneratorOutput{}, 1)
	require.NoError(t, err)
	assert.Empty(t, result.Items)
}
