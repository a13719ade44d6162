package services

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ersonp/lore-state/internal/domain/entities"
)

// Lifecycle creates entities and applies state and identity transitions to them.
// It never touches the store; callers persist what it returns.
type Lifecycle struct {
	matcher *Matcher
	generic entities.GenericTerms
	now     func() time.Time
}

// NewLifecycle creates a lifecycle manager. A nil deny-list uses the defaults.
func NewLifecycle(matcher *Matcher, generic entities.GenericTerms) *Lifecycle {
	if matcher == nil {
		matcher = NewMatcher(DefaultMatchThreshold)
	}
	if generic == nil {
		generic = entities.NewGenericTerms(nil)
	}
	return &Lifecycle{
		matcher: matcher,
		generic: generic,
		now:     time.Now,
	}
}

// Matcher returns the matcher used to resolve identity targets.
func (l *Lifecycle) Matcher() *Matcher {
	return l.matcher
}

// IsGeneric reports whether name is too vague to become an entity.
func (l *Lifecycle) IsGeneric(name string) bool {
	return l.generic.IsGeneric(name)
}

// NewItem builds an unsaved item. It returns nil for generic names.
// A non-default initial state is recorded as the first history entry.
func (l *Lifecycle) NewItem(gameID int64, name string, turn int, initial entities.ItemState, context string) *entities.Item {
	return l.newItem(gameID, name, turn, initial, context, "")
}

func (l *Lifecycle) newItem(gameID int64, name string, turn int, initial entities.ItemState, context, reason string) *entities.Item {
	name = strings.TrimSpace(name)
	if l.IsGeneric(name) {
		return nil
	}
	if !initial.IsValid() {
		initial = entities.ItemStateDefault
	}

	now := l.now()
	item := &entities.Item{
		GameID:          gameID,
		CanonicalID:     uuid.New().String(),
		Name:            name,
		Aliases:         []string{},
		CurrentState:    initial,
		StateHistory:    []entities.HistoryEntry{},
		AcquiredAt:      turn,
		LastMentionedAt: turn,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if initial != entities.ItemStateDefault {
		item.StateHistory = append(item.StateHistory, entities.HistoryEntry{
			Turn:    turn,
			Type:    string(initial),
			Context: context,
			Reason:  reason,
		})
		if initial.IsLostClass() {
			lost := turn
			item.LostAt = &lost
		}
	}
	return item
}

// NewCharacter builds an unsaved character. It returns nil for generic names.
func (l *Lifecycle) NewCharacter(gameID int64, name string, turn int) *entities.Character {
	name = strings.TrimSpace(name)
	if l.IsGeneric(name) {
		return nil
	}

	now := l.now()
	return &entities.Character{
		GameID:          gameID,
		CanonicalID:     uuid.New().String(),
		Name:            name,
		Aliases:         []string{},
		StateHistory:    []entities.HistoryEntry{},
		FirstAppearedAt: turn,
		LastAppearedAt:  turn,
		LastMentionedAt: turn,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// HeadNounAlias returns the last word of a multi-word item name when it can
// serve as an alias: not generic, longer than two characters and not taken by
// another roster name or alias. It returns "" otherwise.
func (l *Lifecycle) HeadNounAlias(name string, taken func(key string) bool) string {
	words := strings.Fields(entities.NormalizeName(name))
	if len(words) < 2 {
		return ""
	}
	head := words[len(words)-1]
	if len([]rune(head)) <= 2 || l.IsGeneric(head) {
		return ""
	}
	if taken != nil && taken(head) {
		return ""
	}
	return head
}

// ApplyStateChange moves item into state and records it in the history.
// Re-entering the current state is a no-op and returns false. Entering a
// lost-class state sets LostAt only the first time.
func (l *Lifecycle) ApplyStateChange(item *entities.Item, state entities.ItemState, turn int, context string) bool {
	return l.applyStateChange(item, state, turn, context, "")
}

func (l *Lifecycle) applyStateChange(item *entities.Item, state entities.ItemState, turn int, context, reason string) bool {
	if item == nil || !state.IsValid() || item.CurrentState == state {
		return false
	}

	item.CurrentState = state
	item.StateHistory = append(item.StateHistory, entities.HistoryEntry{
		Turn:    turn,
		Type:    string(state),
		Context: context,
		Reason:  reason,
	})
	if state.IsLostClass() && item.LostAt == nil {
		lost := turn
		item.LostAt = &lost
	}
	item.UpdatedAt = l.now()
	return true
}

// ApplyIdentity records that c has been revealed to be target.
//
// When target resolves to another character T in roster, c gains a
// back-reference to T, unless T already refers back to c. Otherwise target is
// added to c's aliases if not yet known. Every applied reveal appends one
// IDENTITY_REVEALED history entry. A generic, unresolvable target is ignored.
//
// It returns T when a back-reference was made and whether anything was applied.
// A T without an ID yet is returned without setting OriginalCharacterID; the
// caller links it once T is saved.
func (l *Lifecycle) ApplyIdentity(c *entities.Character, target string, roster []*entities.Character, turn int, context string) (*entities.Character, bool) {
	return l.applyIdentity(c, target, roster, turn, context, "")
}

func (l *Lifecycle) applyIdentity(c *entities.Character, target string, roster []*entities.Character, turn int, context, reason string) (*entities.Character, bool) {
	target = strings.TrimSpace(target)
	if c == nil || entities.NormalizeName(target) == "" {
		return nil, false
	}

	t := l.matcher.MatchCharacter(target, roster)
	if t != nil && isSameCharacter(c, t) {
		t = nil
	}
	if t == nil && l.IsGeneric(target) {
		return nil, false
	}

	var linked *entities.Character
	switch {
	case t != nil && refersTo(t, c):
		// One hop back to the origin; keep the existing link only.
	case t != nil:
		if t.ID != 0 {
			id := t.ID
			c.OriginalCharacterID = &id
		}
		linked = t
	default:
		if entities.NormalizeName(c.Name) != entities.NormalizeName(target) && !entities.HasAlias(c.Aliases, target) {
			c.Aliases = append(c.Aliases, target)
		}
	}

	c.StateHistory = append(c.StateHistory, entities.HistoryEntry{
		Turn:        turn,
		Type:        entities.HistoryEventIdentityRevealed,
		Context:     context,
		NewIdentity: target,
		Reason:      reason,
	})
	c.UpdatedAt = l.now()
	return linked, true
}

// TouchItem records that item was mentioned at turn.
func (l *Lifecycle) TouchItem(item *entities.Item, turn int) {
	if turn > item.LastMentionedAt {
		item.LastMentionedAt = turn
		item.UpdatedAt = l.now()
	}
}

// TouchCharacter records that c appeared at turn.
func (l *Lifecycle) TouchCharacter(c *entities.Character, turn int) {
	changed := false
	if turn > c.LastAppearedAt {
		c.LastAppearedAt = turn
		changed = true
	}
	if turn > c.LastMentionedAt {
		c.LastMentionedAt = turn
		changed = true
	}
	if changed {
		c.UpdatedAt = l.now()
	}
}

func isSameCharacter(a, b *entities.Character) bool {
	return a == b || (a.ID != 0 && a.ID == b.ID)
}

func refersTo(from, to *entities.Character) bool {
	return from.OriginalCharacterID != nil && to.ID != 0 && *from.OriginalCharacterID == to.ID
}
