package services

import (
	"github.com/ersonp/lore-state/internal/domain/entities"
)

// DefaultMatchThreshold is the minimum fuzzy similarity for a match.
const DefaultMatchThreshold = 0.85

// Matcher resolves surface forms against a roster of known entities.
// Exact name matches win over alias matches, and both win over fuzzy matches.
type Matcher struct {
	threshold float64
}

// NewMatcher creates a matcher. A threshold outside (0,1] falls back to the default.
func NewMatcher(threshold float64) *Matcher {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultMatchThreshold
	}
	return &Matcher{threshold: threshold}
}

// Threshold returns the fuzzy match threshold in use.
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// MatchItem returns the roster item name refers to, or nil.
func (m *Matcher) MatchItem(name string, roster []*entities.Item) *entities.Item {
	if i := matchIndex(m.threshold, name, roster); i >= 0 {
		return roster[i]
	}
	return nil
}

// MatchCharacter returns the roster character name refers to, or nil.
func (m *Matcher) MatchCharacter(name string, roster []*entities.Character) *entities.Character {
	if i := matchIndex(m.threshold, name, roster); i >= 0 {
		return roster[i]
	}
	return nil
}

// Match returns the index of the roster entry name refers to, or -1.
func (m *Matcher) Match(name string, roster []entities.Named) int {
	return matchIndex(m.threshold, name, roster)
}

// Matches reports whether name refers to the single candidate.
func (m *Matcher) Matches(name string, candidate entities.Named) bool {
	return matchIndex(m.threshold, name, []entities.Named{candidate}) == 0
}

func matchIndex[T entities.Named](threshold float64, name string, roster []T) int {
	key := entities.NormalizeName(name)
	if key == "" || len(roster) == 0 {
		return -1
	}

	names := make([]string, len(roster))
	for i, e := range roster {
		names[i] = entities.NormalizeName(e.GetName())
		if names[i] == key {
			return i
		}
	}

	for i, e := range roster {
		for _, alias := range e.GetAliases() {
			if entities.NormalizeName(alias) == key {
				return i
			}
		}
	}

	best, bestScore := -1, 0.0
	for i, n := range names {
		// Strict comparison keeps the earliest entry on ties.
		if score := Similarity(key, n); score > bestScore {
			best, bestScore = i, score
		}
	}
	if best >= 0 && bestScore >= threshold {
		return best
	}
	return -1
}
