package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "whitespace only", in: "  \t\n ", want: ""},
		{name: "lowercases", in: "Rusty Sword", want: "rusty sword"},
		{name: "strips the", in: "The rusty sword", want: "rusty sword"},
		{name: "strips a", in: "a Sword", want: "sword"},
		{name: "strips an", in: "An  Amulet", want: "amulet"},
		{name: "collapses whitespace", in: "  old \t\n  key  ", want: "old key"},
		{name: "keeps article inside name", in: "Sword of the King", want: "sword of the king"},
		{name: "article alone is kept", in: "The", want: "the"},
		{name: "article prefix of a word is kept", in: "Theodore", want: "theodore"},
		{name: "stacked articles", in: "the a sword", want: "sword"},
		{name: "compatibility forms folded", in: "ｓｗｏｒｄ", want: "sword"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.in))
		})
	}
}

func TestNormalizeName_Idempotent(t *testing.T) {
	inputs := []string{
		"", " ", "The", "the the sword", "A  an THE  Crown", "Ⅻ Knights", "ﬁre sword",
		"  The\tbeggar  ", "İstanbul Gate", "the", "a", "an an", "Queen Mab",
	}
	for _, in := range inputs {
		once := NormalizeName(in)
		assert.Equal(t, once, NormalizeName(once), "input %q", in)
	}
}

func TestHasAlias(t *testing.T) {
	aliases := []string{"The King", "old man"}

	assert.True(t, HasAlias(aliases, "king"))
	assert.True(t, HasAlias(aliases, "  OLD   man "))
	assert.False(t, HasAlias(aliases, "queen"))
	assert.False(t, HasAlias(nil, "king"))
}

func TestItemClone(t *testing.T) {
	lost := 4
	item := &Item{
		Name:         "rusty sword",
		Aliases:      []string{"sword"},
		StateHistory: []HistoryEntry{{Turn: 4, Type: string(ItemStateLost)}},
		LostAt:       &lost,
	}

	c := item.Clone()
	c.Aliases[0] = "blade"
	c.StateHistory = append(c.StateHistory, HistoryEntry{Turn: 5})
	*c.LostAt = 9

	assert.Equal(t, "sword", item.Aliases[0])
	assert.Len(t, item.StateHistory, 1)
	require.NotNil(t, item.LostAt)
	assert.Equal(t, 4, *item.LostAt)
}

func TestCharacterClone(t *testing.T) {
	orig := int64(7)
	c := &Character{Name: "beggar", Aliases: []string{"King"}, OriginalCharacterID: &orig}

	cp := c.Clone()
	cp.Aliases[0] = "Queen"
	*cp.OriginalCharacterID = 8

	assert.Equal(t, "King", c.Aliases[0])
	assert.Equal(t, int64(7), *c.OriginalCharacterID)
}

func TestParseItemState(t *testing.T) {
	tests := []struct {
		in     string
		want   ItemState
		wantOK bool
	}{
		{in: "BROKEN", want: ItemStateBroken, wantOK: true},
		{in: "consumed", want: ItemStateConsumed, wantOK: true},
		{in: "given away", want: ItemStateGivenAway, wantOK: true},
		{in: "Given-Away", want: ItemStateGivenAway, wantOK: true},
		{in: " lost ", want: ItemStateLost, wantOK: true},
		{in: "melted", wantOK: false},
		{in: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseItemState(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestItemState_IsLostClass(t *testing.T) {
	lostClass := map[ItemState]bool{
		ItemStateBroken:    true,
		ItemStateConsumed:  true,
		ItemStateGivenAway: true,
		ItemStateLost:      true,
	}
	for _, st := range AllItemStates {
		assert.Equal(t, lostClass[st], st.IsLostClass(), "state %s", st)
	}
}

func TestGenericTerms(t *testing.T) {
	g := NewGenericTerms(nil)

	assert.True(t, g.IsGeneric("thing"))
	assert.True(t, g.IsGeneric("The Thing"))
	assert.True(t, g.IsGeneric("someone"))
	assert.True(t, g.IsGeneric("  "))
	assert.False(t, g.IsGeneric("rusty sword"))

	custom := NewGenericTerms([]string{"Widget"})
	assert.True(t, custom.IsGeneric("widget"))
	assert.False(t, custom.IsGeneric("thing"))
}

func TestRelationshipKey(t *testing.T) {
	a := Relationship{Type: RelationStateChange, Source: "The Sword", NewState: ItemStateBroken, Context: "x"}
	b := Relationship{Type: RelationStateChange, Source: "sword", NewState: ItemStateBroken, Context: "y"}
	c := Relationship{Type: RelationStateChange, Source: "sword", NewState: ItemStateLost}

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
}
