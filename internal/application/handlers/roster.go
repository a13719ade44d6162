package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ersonp/lore-state/internal/domain/entities"
	"github.com/ersonp/lore-state/internal/domain/ports"
)

// ErrNotFound is returned when a requested roster entry does not exist in the game.
var ErrNotFound = errors.New("not found")

// RosterHandler serves read-only views of a game's world model.
type RosterHandler struct {
	store ports.WorldStore
}

// NewRosterHandler creates a new roster handler.
func NewRosterHandler(store ports.WorldStore) *RosterHandler {
	return &RosterHandler{
		store: store,
	}
}

// IdentityView pairs a character with the character it was revealed to be.
type IdentityView struct {
	Character *entities.Character
	Original  *entities.Character
}

// HandleItems lists the items of a game.
func (h *RosterHandler) HandleItems(ctx context.Context, gameID string) ([]*entities.Item, error) {
	gid, err := ParseGameID(gameID)
	if err != nil {
		return nil, err
	}

	items, err := h.store.ListItems(ctx, gid)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return items, nil
}

// HandleCharacters lists the characters of a game.
func (h *RosterHandler) HandleCharacters(ctx context.Context, gameID string) ([]*entities.Character, error) {
	gid, err := ParseGameID(gameID)
	if err != nil {
		return nil, err
	}

	characters, err := h.store.ListCharacters(ctx, gid)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	return characters, nil
}

// HandleMentions lists the mentions of one item or character, oldest first.
func (h *RosterHandler) HandleMentions(ctx context.Context, gameID, entityType, entityID string) ([]entities.Mention, error) {
	gid, err := ParseGameID(gameID)
	if err != nil {
		return nil, err
	}

	kind := entities.EntityType(strings.ToLower(strings.TrimSpace(entityType)))
	if kind != entities.EntityTypeItem && kind != entities.EntityTypeCharacter {
		return nil, fmt.Errorf("invalid entity type %q (want item or character)", entityType)
	}

	id, err := parseEntityID(entityID)
	if err != nil {
		return nil, err
	}

	mentions, err := h.store.ListMentions(ctx, gid, kind, id)
	if err != nil {
		return nil, fmt.Errorf("listing mentions: %w", err)
	}
	if mentions == nil {
		mentions = []entities.Mention{}
	}
	return mentions, nil
}

// HandleIdentity returns a character and, when its identity was revealed,
// the character it turned out to be. The link is followed one hop.
func (h *RosterHandler) HandleIdentity(ctx context.Context, gameID, characterID string) (*IdentityView, error) {
	gid, err := ParseGameID(gameID)
	if err != nil {
		return nil, err
	}
	id, err := parseEntityID(characterID)
	if err != nil {
		return nil, err
	}

	c, err := h.findCharacter(ctx, gid, id)
	if err != nil {
		return nil, err
	}

	view := &IdentityView{Character: c}
	if c.OriginalCharacterID == nil {
		return view, nil
	}

	original, err := h.findCharacter(ctx, gid, *c.OriginalCharacterID)
	if err != nil {
		return nil, fmt.Errorf("resolving original identity: %w", err)
	}
	view.Original = original
	return view, nil
}

func (h *RosterHandler) findCharacter(ctx context.Context, gameID, id int64) (*entities.Character, error) {
	c, err := h.store.FindCharacterByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding character: %w", err)
	}
	if c == nil || c.GameID != gameID {
		return nil, fmt.Errorf("character %d: %w", id, ErrNotFound)
	}
	return c, nil
}

func parseEntityID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid entity id %q", s)
	}
	return id, nil
}
