// Package entities contains core domain data structures.
package entities

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// EntityType distinguishes the two kinds of tracked story entities.
type EntityType string

const (
	EntityTypeItem      EntityType = "item"
	EntityTypeCharacter EntityType = "character"
)

// Named is implemented by every roster entry the matcher can compare against.
type Named interface {
	GetName() string
	GetAliases() []string
}

// HistoryEventIdentityRevealed is the history type recorded for identity reveals.
const HistoryEventIdentityRevealed = "IDENTITY_REVEALED"

// HistoryEntry is one append-only record of what happened to an entity.
type HistoryEntry struct {
	Turn        int    `json:"turn"`
	Type        string `json:"type"` // ItemState name or IDENTITY_REVEALED
	Context     string `json:"context,omitempty"`
	NewIdentity string `json:"new_identity,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// Item is a distinct story object tracked across turns.
type Item struct {
	ID              int64          `json:"id"`
	GameID          int64          `json:"game_id"`
	CanonicalID     string         `json:"canonical_id"`
	Name            string         `json:"name"`
	Description     string         `json:"description,omitempty"`
	Aliases         []string       `json:"aliases"`
	CurrentState    ItemState      `json:"current_state"`
	StateHistory    []HistoryEntry `json:"state_history"`
	AcquiredAt      int            `json:"acquired_at"`
	LastMentionedAt int            `json:"last_mentioned_at"`
	LostAt          *int           `json:"lost_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// GetName returns the primary surface form.
func (i *Item) GetName() string { return i.Name }

// GetAliases returns the alternate surface forms in discovery order.
func (i *Item) GetAliases() []string { return i.Aliases }

// Clone returns a deep copy so callers can mutate without touching the original.
func (i *Item) Clone() *Item {
	c := *i
	c.Aliases = append([]string(nil), i.Aliases...)
	c.StateHistory = append([]HistoryEntry(nil), i.StateHistory...)
	if i.LostAt != nil {
		lost := *i.LostAt
		c.LostAt = &lost
	}
	return &c
}

// Character is a distinct story person tracked across turns.
type Character struct {
	ID           int64          `json:"id"`
	GameID       int64          `json:"game_id"`
	CanonicalID  string         `json:"canonical_id"`
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	Relationship string         `json:"relationship,omitempty"`
	Aliases      []string       `json:"aliases"`
	StateHistory []HistoryEntry `json:"state_history"`
	// OriginalCharacterID is a weak reference: resolve it by lookup, never by traversal.
	OriginalCharacterID *int64    `json:"original_character_id,omitempty"`
	FirstAppearedAt     int       `json:"first_appeared_at"`
	LastAppearedAt      int       `json:"last_appeared_at"`
	LastMentionedAt     int       `json:"last_mentioned_at"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// GetName returns the primary surface form.
func (c *Character) GetName() string { return c.Name }

// GetAliases returns the alternate surface forms in discovery order.
func (c *Character) GetAliases() []string { return c.Aliases }

// Clone returns a deep copy so callers can mutate without touching the original.
func (c *Character) Clone() *Character {
	cp := *c
	cp.Aliases = append([]string(nil), c.Aliases...)
	cp.StateHistory = append([]HistoryEntry(nil), c.StateHistory...)
	if c.OriginalCharacterID != nil {
		id := *c.OriginalCharacterID
		cp.OriginalCharacterID = &id
	}
	return &cp
}

// HasAlias reports whether alias is already known, comparing normalized forms.
func HasAlias(aliases []string, alias string) bool {
	key := NormalizeName(alias)
	for _, a := range aliases {
		if NormalizeName(a) == key {
			return true
		}
	}
	return false
}

// NormalizeName canonicalizes a surface form into a comparison key: lowercase,
// trimmed, whitespace collapsed and the leading article removed.
// A name consisting of only an article is kept as is.
func NormalizeName(name string) string {
	lowered := norm.NFKC.String(strings.ToLower(norm.NFKC.String(name)))
	fields := strings.Fields(lowered)
	// Stacked articles ("the a sword") are all dropped so the result is a fixed point.
	for len(fields) > 1 && isArticle(fields[0]) {
		fields = fields[1:]
	}
	return strings.Join(fields, " ")
}

func isArticle(word string) bool {
	switch word {
	case "the", "a", "an":
		return true
	}
	return false
}
