package ports

import (
	"context"

	"github.com/ersonp/lore-state/internal/domain/entities"
)

// WorldStore defines the persistence operations for one world model.
// All data is partitioned by game ID; nothing is shared across games.
type WorldStore interface {
	// EnsureSchema creates the database schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// Close closes the database connection.
	Close() error

	// ListItems returns every item of a game ordered by ID.
	ListItems(ctx context.Context, gameID int64) ([]*entities.Item, error)

	// ListCharacters returns every character of a game ordered by ID.
	ListCharacters(ctx context.Context, gameID int64) ([]*entities.Character, error)

	// FindItemByID finds an item by its ID. Returns nil if not found.
	FindItemByID(ctx context.Context, id int64) (*entities.Item, error)

	// FindCharacterByID finds a character by its ID. Returns nil if not found.
	FindCharacterByID(ctx context.Context, id int64) (*entities.Character, error)

	// ListMentions returns the mentions of one entity, oldest first.
	ListMentions(ctx context.Context, gameID int64, entityType entities.EntityType, entityID int64) ([]entities.Mention, error)

	// WithinTx runs fn inside a single transaction. If fn returns an error
	// nothing fn wrote is kept.
	WithinTx(ctx context.Context, fn func(tx WorldTx) error) error
}

// WorldTx is the write side of a WorldStore transaction.
type WorldTx interface {
	// CreateItem inserts a new item and sets its ID.
	CreateItem(ctx context.Context, item *entities.Item) error

	// UpdateItem overwrites the mutable fields of an existing item.
	UpdateItem(ctx context.Context, item *entities.Item) error

	// CreateCharacter inserts a new character and sets its ID.
	CreateCharacter(ctx context.Context, character *entities.Character) error

	// UpdateCharacter overwrites the mutable fields of an existing character.
	UpdateCharacter(ctx context.Context, character *entities.Character) error

	// InsertMention inserts an immutable mention record and sets its ID.
	InsertMention(ctx context.Context, mention *entities.Mention) error
}
