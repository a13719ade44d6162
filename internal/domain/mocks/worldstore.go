package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/ersonp/lore-state/internal/domain/entities"
	"github.com/ersonp/lore-state/internal/domain/ports"
)

// WorldStore is an in-memory implementation of ports.WorldStore.
// Reads return deep copies and WithinTx stages writes until fn succeeds, so a
// failed transaction leaves the store exactly as it was.
type WorldStore struct {
	mu         sync.Mutex
	items      map[int64]*entities.Item
	characters map[int64]*entities.Character
	mentions   []entities.Mention
	nextID     int64

	// Err is returned by every operation when set.
	Err error
	// CommitErr is returned by WithinTx after fn ran, discarding its writes.
	CommitErr error
	// FailOn names a WorldTx method ("CreateItem", "InsertMention", ...) that
	// returns FailErr inside transactions.
	FailOn  string
	FailErr error
	// Commits counts successful transactions.
	Commits int
}

// NewWorldStore creates a new empty mock WorldStore.
func NewWorldStore() *WorldStore {
	return &WorldStore{
		items:      make(map[int64]*entities.Item),
		characters: make(map[int64]*entities.Character),
	}
}

var _ ports.WorldStore = (*WorldStore)(nil)

// EnsureSchema creates the database schema if it doesn't exist.
func (m *WorldStore) EnsureSchema(_ context.Context) error {
	return m.Err
}

// Close closes the database connection.
func (m *WorldStore) Close() error {
	return nil
}

// ListItems returns copies of all items of a game ordered by ID.
func (m *WorldStore) ListItems(_ context.Context, gameID int64) ([]*entities.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]*entities.Item, 0, len(m.items))
	for _, item := range m.items {
		if item.GameID == gameID {
			result = append(result, item.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ListCharacters returns copies of all characters of a game ordered by ID.
func (m *WorldStore) ListCharacters(_ context.Context, gameID int64) ([]*entities.Character, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]*entities.Character, 0, len(m.characters))
	for _, c := range m.characters {
		if c.GameID == gameID {
			result = append(result, c.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// FindItemByID finds an item by its ID.
func (m *WorldStore) FindItemByID(_ context.Context, id int64) (*entities.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if item, ok := m.items[id]; ok {
		return item.Clone(), nil
	}
	return nil, nil
}

// FindCharacterByID finds a character by its ID.
func (m *WorldStore) FindCharacterByID(_ context.Context, id int64) (*entities.Character, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if c, ok := m.characters[id]; ok {
		return c.Clone(), nil
	}
	return nil, nil
}

// ListMentions returns the mentions of one entity in insertion order.
func (m *WorldStore) ListMentions(_ context.Context, gameID int64, entityType entities.EntityType, entityID int64) ([]entities.Mention, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.Mention
	for _, mention := range m.mentions {
		if mention.GameID == gameID && mention.EntityType == entityType && mention.EntityID == entityID {
			result = append(result, mention)
		}
	}
	return result, nil
}

// AllMentions returns every stored mention. Test helper.
func (m *WorldStore) AllMentions() []entities.Mention {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entities.Mention(nil), m.mentions...)
}

// SeedItem stores an item directly, assigning an ID when it has none. Test helper.
func (m *WorldStore) SeedItem(item *entities.Item) *entities.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item.ID == 0 {
		m.nextID++
		item.ID = m.nextID
	}
	m.items[item.ID] = item.Clone()
	return item
}

// SeedCharacter stores a character directly, assigning an ID when it has none. Test helper.
func (m *WorldStore) SeedCharacter(c *entities.Character) *entities.Character {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == 0 {
		m.nextID++
		c.ID = m.nextID
	}
	m.characters[c.ID] = c.Clone()
	return c
}

// WithinTx stages all writes made by fn and applies them only if fn and the
// configured CommitErr both allow it.
func (m *WorldStore) WithinTx(ctx context.Context, fn func(tx ports.WorldTx) error) error {
	m.mu.Lock()
	if m.Err != nil {
		m.mu.Unlock()
		return m.Err
	}
	tx := &worldTx{store: m, failOn: m.FailOn, err: m.FailErr}
	m.mu.Unlock()

	if err := fn(tx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CommitErr != nil {
		return m.CommitErr
	}
	for _, item := range tx.items {
		m.items[item.ID] = item
	}
	for _, c := range tx.characters {
		m.characters[c.ID] = c
	}
	m.mentions = append(m.mentions, tx.mentions...)
	m.Commits++
	return nil
}

// allocID hands out IDs that are never reused, even when a transaction fails.
func (m *WorldStore) allocID() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	return m.nextID
}

// worldTx collects staged writes for one WithinTx call.
type worldTx struct {
	items      []*entities.Item
	characters []*entities.Character
	mentions   []entities.Mention
	store      *WorldStore

	failOn string
	err    error
}

func (t *worldTx) fail(op string) error {
	if t.failOn == op {
		return t.err
	}
	return nil
}

func (t *worldTx) CreateItem(_ context.Context, item *entities.Item) error {
	if err := t.fail("CreateItem"); err != nil {
		return err
	}
	item.ID = t.store.allocID()
	t.items = append(t.items, item.Clone())
	return nil
}

func (t *worldTx) UpdateItem(_ context.Context, item *entities.Item) error {
	if err := t.fail("UpdateItem"); err != nil {
		return err
	}
	t.items = append(t.items, item.Clone())
	return nil
}

func (t *worldTx) CreateCharacter(_ context.Context, c *entities.Character) error {
	if err := t.fail("CreateCharacter"); err != nil {
		return err
	}
	c.ID = t.store.allocID()
	t.characters = append(t.characters, c.Clone())
	return nil
}

func (t *worldTx) UpdateCharacter(_ context.Context, c *entities.Character) error {
	if err := t.fail("UpdateCharacter"); err != nil {
		return err
	}
	t.characters = append(t.characters, c.Clone())
	return nil
}

func (t *worldTx) InsertMention(_ context.Context, mention *entities.Mention) error {
	if err := t.fail("InsertMention"); err != nil {
		return err
	}
	mention.ID = t.store.allocID()
	t.mentions = append(t.mentions, *mention)
	return nil
}
