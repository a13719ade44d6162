package entities

import "strings"

// ItemState is the lifecycle state of an item.
type ItemState string

const (
	ItemStateDefault   ItemState = "DEFAULT"
	ItemStateBroken    ItemState = "BROKEN"
	ItemStateConsumed  ItemState = "CONSUMED"
	ItemStateGivenAway ItemState = "GIVEN_AWAY"
	ItemStateLost      ItemState = "LOST"
	ItemStateFound     ItemState = "FOUND"
	ItemStateModified  ItemState = "MODIFIED"
	ItemStateUsed      ItemState = "USED"
)

// AllItemStates lists every valid item state.
var AllItemStates = []ItemState{
	ItemStateDefault,
	ItemStateBroken,
	ItemStateConsumed,
	ItemStateGivenAway,
	ItemStateLost,
	ItemStateFound,
	ItemStateModified,
	ItemStateUsed,
}

// IsLostClass reports whether entering the state takes the item out of play.
func (s ItemState) IsLostClass() bool {
	switch s {
	case ItemStateBroken, ItemStateConsumed, ItemStateGivenAway, ItemStateLost:
		return true
	}
	return false
}

// IsValid reports whether s is one of the known states.
func (s ItemState) IsValid() bool {
	for _, st := range AllItemStates {
		if s == st {
			return true
		}
	}
	return false
}

// ParseItemState converts free text such as "given away" or "Broken" into a state.
func ParseItemState(s string) (ItemState, bool) {
	key := strings.ToUpper(strings.Join(strings.Fields(s), "_"))
	key = strings.ReplaceAll(key, "-", "_")
	state := ItemState(key)
	if !state.IsValid() {
		return "", false
	}
	return state, true
}
