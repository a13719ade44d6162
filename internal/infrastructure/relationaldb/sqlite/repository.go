// Package sqlite provides a SQLite implementation of the WorldStore interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ersonp/lore-state/internal/domain/entities"
	"github.com/ersonp/lore-state/internal/domain/ports"
	"github.com/ersonp/lore-state/internal/infrastructure/config"
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// Repository implements ports.WorldStore using SQLite.
type Repository struct {
	db   *sql.DB
	path string
}

var _ ports.WorldStore = (*Repository)(nil)

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if cfg.Path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable foreign keys for referential integrity
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// Enable WAL mode for better concurrent read/write performance
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Items (story objects with a lifecycle state)
	CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id INTEGER NOT NULL,
		canonical_id TEXT NOT NULL,
		name TEXT NOT NULL,
		normalized_name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		aliases TEXT NOT NULL DEFAULT '[]',
		current_state TEXT NOT NULL,
		state_history TEXT NOT NULL DEFAULT '[]',
		acquired_at INTEGER NOT NULL,
		last_mentioned_at INTEGER NOT NULL,
		lost_at INTEGER,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(game_id, canonical_id)
	);
	CREATE INDEX IF NOT EXISTS idx_items_game ON items(game_id);
	CREATE INDEX IF NOT EXISTS idx_items_normalized ON items(game_id, normalized_name);

	-- Characters (story people, possibly revealed to be someone else)
	CREATE TABLE IF NOT EXISTS characters (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id INTEGER NOT NULL,
		canonical_id TEXT NOT NULL,
		name TEXT NOT NULL,
		normalized_name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		relationship TEXT NOT NULL DEFAULT '',
		aliases TEXT NOT NULL DEFAULT '[]',
		state_history TEXT NOT NULL DEFAULT '[]',
		original_character_id INTEGER,
		first_appeared_at INTEGER NOT NULL,
		last_appeared_at INTEGER NOT NULL,
		last_mentioned_at INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(game_id, canonical_id)
	);
	CREATE INDEX IF NOT EXISTS idx_characters_game ON characters(game_id);
	CREATE INDEX IF NOT EXISTS idx_characters_normalized ON characters(game_id, normalized_name);

	-- Mentions (append-only extraction events)
	CREATE TABLE IF NOT EXISTS mentions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id INTEGER NOT NULL,
		entity_type TEXT NOT NULL,
		entity_id INTEGER NOT NULL,
		segment_id INTEGER NOT NULL,
		state_change INTEGER NOT NULL DEFAULT 0,
		new_state TEXT NOT NULL DEFAULT '',
		context TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_mentions_entity ON mentions(game_id, entity_type, entity_id);
	CREATE INDEX IF NOT EXISTS idx_mentions_segment ON mentions(game_id, segment_id);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

const itemColumns = `id, game_id, canonical_id, name, description, aliases, current_state,
	state_history, acquired_at, last_mentioned_at, lost_at, created_at, updated_at`

const characterColumns = `id, game_id, canonical_id, name, description, relationship, aliases,
	state_history, original_character_id, first_appeared_at, last_appeared_at,
	last_mentioned_at, created_at, updated_at`

// ListItems returns every item of a game ordered by ID.
func (r *Repository) ListItems(ctx context.Context, gameID int64) ([]*entities.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE game_id = ? ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	result := make([]*entities.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

// ListCharacters returns every character of a game ordered by ID.
func (r *Repository) ListCharacters(ctx context.Context, gameID int64) ([]*entities.Character, error) {
	query := `SELECT ` + characterColumns + ` FROM characters WHERE game_id = ? ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("querying characters: %w", err)
	}
	defer rows.Close()

	result := make([]*entities.Character, 0)
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// FindItemByID finds an item by its ID. Returns nil if not found.
func (r *Repository) FindItemByID(ctx context.Context, id int64) (*entities.Item, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// FindCharacterByID finds a character by its ID. Returns nil if not found.
func (r *Repository) FindCharacterByID(ctx context.Context, id int64) (*entities.Character, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+characterColumns+` FROM characters WHERE id = ?`, id)
	c, err := scanCharacter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListMentions returns the mentions of one entity, oldest first.
func (r *Repository) ListMentions(ctx context.Context, gameID int64, entityType entities.EntityType, entityID int64) ([]entities.Mention, error) {
	query := `
		SELECT id, game_id, entity_type, entity_id, segment_id, state_change, new_state, context, created_at
		FROM mentions
		WHERE game_id = ? AND entity_type = ? AND entity_id = ?
		ORDER BY id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, gameID, string(entityType), entityID)
	if err != nil {
		return nil, fmt.Errorf("querying mentions: %w", err)
	}
	defer rows.Close()

	result := make([]entities.Mention, 0)
	for rows.Next() {
		var m entities.Mention
		var entityTypeStr string
		if err := rows.Scan(
			&m.ID,
			&m.GameID,
			&entityTypeStr,
			&m.EntityID,
			&m.SegmentID,
			&m.StateChange,
			&m.NewState,
			&m.Context,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning mention: %w", err)
		}
		m.EntityType = entities.EntityType(entityTypeStr)
		result = append(result, m)
	}
	return result, rows.Err()
}

// WithinTx runs fn inside a single transaction. If fn returns an error the
// transaction is rolled back and nothing fn wrote is kept.
func (r *Repository) WithinTx(ctx context.Context, fn func(tx ports.WorldTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(&worldTx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rolling back: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// worldTx implements ports.WorldTx on an open transaction.
type worldTx struct {
	tx *sql.Tx
}

// CreateItem inserts a new item and sets its ID.
func (w *worldTx) CreateItem(ctx context.Context, item *entities.Item) error {
	aliases, history, err := encodeLists(item.Aliases, item.StateHistory)
	if err != nil {
		return err
	}
	stampCreated(&item.CreatedAt, &item.UpdatedAt)

	query := `
		INSERT INTO items (game_id, canonical_id, name, normalized_name, description, aliases,
			current_state, state_history, acquired_at, last_mentioned_at, lost_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := w.tx.ExecContext(ctx, query,
		item.GameID,
		item.CanonicalID,
		item.Name,
		entities.NormalizeName(item.Name),
		item.Description,
		aliases,
		string(item.CurrentState),
		history,
		item.AcquiredAt,
		item.LastMentionedAt,
		nullableInt(item.LostAt),
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading item id: %w", err)
	}
	item.ID = id
	return nil
}

// UpdateItem overwrites the mutable fields of an existing item.
func (w *worldTx) UpdateItem(ctx context.Context, item *entities.Item) error {
	aliases, history, err := encodeLists(item.Aliases, item.StateHistory)
	if err != nil {
		return err
	}

	query := `
		UPDATE items SET
			description = ?, aliases = ?, current_state = ?, state_history = ?,
			last_mentioned_at = ?, lost_at = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := w.tx.ExecContext(ctx, query,
		item.Description,
		aliases,
		string(item.CurrentState),
		history,
		item.LastMentionedAt,
		nullableInt(item.LostAt),
		item.UpdatedAt,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return requireRow(res, "item", item.ID)
}

// CreateCharacter inserts a new character and sets its ID.
func (w *worldTx) CreateCharacter(ctx context.Context, c *entities.Character) error {
	aliases, history, err := encodeLists(c.Aliases, c.StateHistory)
	if err != nil {
		return err
	}
	stampCreated(&c.CreatedAt, &c.UpdatedAt)

	query := `
		INSERT INTO characters (game_id, canonical_id, name, normalized_name, description, relationship,
			aliases, state_history, original_character_id, first_appeared_at, last_appeared_at,
			last_mentioned_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := w.tx.ExecContext(ctx, query,
		c.GameID,
		c.CanonicalID,
		c.Name,
		entities.NormalizeName(c.Name),
		c.Description,
		c.Relationship,
		aliases,
		history,
		nullableInt64(c.OriginalCharacterID),
		c.FirstAppearedAt,
		c.LastAppearedAt,
		c.LastMentionedAt,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting character: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading character id: %w", err)
	}
	c.ID = id
	return nil
}

// UpdateCharacter overwrites the mutable fields of an existing character.
func (w *worldTx) UpdateCharacter(ctx context.Context, c *entities.Character) error {
	aliases, history, err := encodeLists(c.Aliases, c.StateHistory)
	if err != nil {
		return err
	}

	query := `
		UPDATE characters SET
			description = ?, relationship = ?, aliases = ?, state_history = ?,
			original_character_id = ?, last_appeared_at = ?, last_mentioned_at = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := w.tx.ExecContext(ctx, query,
		c.Description,
		c.Relationship,
		aliases,
		history,
		nullableInt64(c.OriginalCharacterID),
		c.LastAppearedAt,
		c.LastMentionedAt,
		c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating character: %w", err)
	}
	return requireRow(res, "character", c.ID)
}

// InsertMention inserts an immutable mention record and sets its ID.
func (w *worldTx) InsertMention(ctx context.Context, m *entities.Mention) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = timeNow()
	}

	query := `
		INSERT INTO mentions (game_id, entity_type, entity_id, segment_id, state_change, new_state, context, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := w.tx.ExecContext(ctx, query,
		m.GameID,
		string(m.EntityType),
		m.EntityID,
		m.SegmentID,
		m.StateChange,
		m.NewState,
		m.Context,
		m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting mention: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading mention id: %w", err)
	}
	m.ID = id
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(s rowScanner) (*entities.Item, error) {
	var item entities.Item
	var state, aliases, history string
	var lostAt sql.NullInt64
	err := s.Scan(
		&item.ID,
		&item.GameID,
		&item.CanonicalID,
		&item.Name,
		&item.Description,
		&aliases,
		&state,
		&history,
		&item.AcquiredAt,
		&item.LastMentionedAt,
		&lostAt,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning item: %w", err)
	}

	item.CurrentState = entities.ItemState(state)
	if lostAt.Valid {
		lost := int(lostAt.Int64)
		item.LostAt = &lost
	}
	if err := decodeLists(aliases, history, &item.Aliases, &item.StateHistory); err != nil {
		return nil, fmt.Errorf("decoding item %d: %w", item.ID, err)
	}
	return &item, nil
}

func scanCharacter(s rowScanner) (*entities.Character, error) {
	var c entities.Character
	var aliases, history string
	var original sql.NullInt64
	err := s.Scan(
		&c.ID,
		&c.GameID,
		&c.CanonicalID,
		&c.Name,
		&c.Description,
		&c.Relationship,
		&aliases,
		&history,
		&original,
		&c.FirstAppearedAt,
		&c.LastAppearedAt,
		&c.LastMentionedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning character: %w", err)
	}

	if original.Valid {
		id := original.Int64
		c.OriginalCharacterID = &id
	}
	if err := decodeLists(aliases, history, &c.Aliases, &c.StateHistory); err != nil {
		return nil, fmt.Errorf("decoding character %d: %w", c.ID, err)
	}
	return &c, nil
}

func encodeLists(aliases []string, history []entities.HistoryEntry) (string, string, error) {
	if aliases == nil {
		aliases = []string{}
	}
	if history == nil {
		history = []entities.HistoryEntry{}
	}
	a, err := json.Marshal(aliases)
	if err != nil {
		return "", "", fmt.Errorf("marshaling aliases: %w", err)
	}
	h, err := json.Marshal(history)
	if err != nil {
		return "", "", fmt.Errorf("marshaling state history: %w", err)
	}
	return string(a), string(h), nil
}

func decodeLists(aliases, history string, outAliases *[]string, outHistory *[]entities.HistoryEntry) error {
	if err := json.Unmarshal([]byte(aliases), outAliases); err != nil {
		return fmt.Errorf("unmarshaling aliases: %w", err)
	}
	if err := json.Unmarshal([]byte(history), outHistory); err != nil {
		return fmt.Errorf("unmarshaling state history: %w", err)
	}
	return nil
}

func stampCreated(created, updated *time.Time) {
	now := timeNow()
	if created.IsZero() {
		*created = now
	}
	if updated.IsZero() {
		*updated = now
	}
}

func requireRow(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking %s update: %w", kind, err)
	}
	if n == 0 {
		return fmt.Errorf("%s not found: %d", kind, id)
	}
	return nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
