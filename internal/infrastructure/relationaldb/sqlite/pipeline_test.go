package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ersonp/lore-state/internal/domain/entities"
	"github.com/ersonp/lore-state/internal/domain/extraction"
	"github.com/ersonp/lore-state/internal/domain/services"
	"github.com/ersonp/lore-state/internal/infrastructure/config"
	"github.com/ersonp/lore-state/internal/infrastructure/nlp/lexicon"
	"github.com/ersonp/lore-state/internal/infrastructure/relationaldb/sqlite"
)

func newPipeline(repo *sqlite.Repository) *services.SegmentService {
	fallback := extraction.NewRegex(nil)
	selector := extraction.NewSelector(extraction.NewLinguistic(lexicon.New(), nil), fallback, 0, zap.NewNop())
	return services.NewSegmentService(repo, selector, fallback, services.NewLifecycle(nil, nil), zap.NewNop())
}

func TestPipeline_FileDatabase(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "world.db")
	ctx := context.Background()

	repo, err := sqlite.NewRepository(config.SQLiteConfig{Path: dbPath})
	require.NoError(t, err)
	require.NoError(t, repo.EnsureSchema(ctx))

	svc := newPipeline(repo)

	_, err = svc.ProcessSegment(ctx, 1, entities.Segment{ID: 1, Content: "The rusty sword gleamed in the torchlight."}, 1)
	require.NoError(t, err)

	_, err = svc.ProcessSegment(ctx, 1, entities.Segment{ID: 2, Content: "The beggar was actually revealed as the King."}, 2)
	require.NoError(t, err)

	require.NoError(t, repo.Close())

	_, err = os.Stat(dbPath)
	require.NoError(t, err, "database file should exist")

	// Reopen and read back what the first connection committed.
	reopened, err := sqlite.NewRepository(config.SQLiteConfig{Path: dbPath})
	require.NoError(t, err)
	defer reopened.Close()

	items, err := reopened.ListItems(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "rusty sword", items[0].Name)
	assert.Equal(t, entities.ItemStateDefault, items[0].CurrentState)

	characters, err := reopened.ListCharacters(ctx, 1)
	require.NoError(t, err)
	require.Len(t, characters, 1)
	assert.Equal(t, "beggar", characters[0].Name)
	assert.Contains(t, characters[0].Aliases, "King")

	mentions, err := reopened.ListMentions(ctx, 1, entities.EntityTypeCharacter, characters[0].ID)
	require.NoError(t, err)
	require.Len(t, mentions, 1)
	assert.Equal(t, entities.HistoryEventIdentityRevealed, mentions[0].NewState)

	other, err := reopened.ListItems(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestPipeline_GeneratorOutput(t *testing.T) {
	repo, err := sqlite.NewRepository(config.SQLiteConfig{Path: ":memory:"})
	require.NoError(t, err)
	defer repo.Close()
	ctx := context.Background()
	require.NoError(t, repo.EnsureSchema(ctx))

	svc := newPipeline(repo)

	out := entities.GeneratorOutput{
		SegmentID: 9,
		NewItems: []entities.DeclaredItem{
			{Name: "Health Potion", Description: "ITEM_UPDATE: Health Potion | CONSUMED | drank it"},
		},
		NewCharacters: []entities.DeclaredCharacter{
			{Name: "Mara", Description: "A smuggler.", Relationship: "ally"},
		},
	}
	result, err := svc.ProcessGeneratorOutput(ctx, 1, out, 4)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	require.Len(t, result.Characters, 1)

	items, err := repo.ListItems(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, entities.ItemStateConsumed, items[0].CurrentState)
	require.NotNil(t, items[0].LostAt)
	assert.Equal(t, 4, *items[0].LostAt)

	mentions, err := repo.ListMentions(ctx, 1, entities.EntityTypeItem, items[0].ID)
	require.NoError(t, err)
	require.Len(t, mentions, 1)
	assert.Equal(t, int64(9), mentions[0].SegmentID)
}
