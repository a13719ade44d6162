// Package extraction turns narrative text into entity mentions and relationships.
package extraction

import (
	"sort"
	"strings"

	"github.com/ersonp/lore-state/internal/domain/entities"
)

// stateVerbs maps verb forms to the item state they signal.
var stateVerbs = map[string]entities.ItemState{
	"broke":     entities.ItemStateBroken,
	"broken":    entities.ItemStateBroken,
	"shattered": entities.ItemStateBroken,
	"smashed":   entities.ItemStateBroken,
	"cracked":   entities.ItemStateBroken,
	"destroyed": entities.ItemStateBroken,

	"consumed": entities.ItemStateConsumed,
	"drank":    entities.ItemStateConsumed,
	"ate":      entities.ItemStateConsumed,
	"devoured": entities.ItemStateConsumed,
	"eaten":    entities.ItemStateConsumed,

	"used": entities.ItemStateUsed,

	"gave":   entities.ItemStateGivenAway,
	"given":  entities.ItemStateGivenAway,
	"handed": entities.ItemStateGivenAway,
	"traded": entities.ItemStateGivenAway,

	"lost":      entities.ItemStateLost,
	"dropped":   entities.ItemStateLost,
	"misplaced": entities.ItemStateLost,
	"stolen":    entities.ItemStateLost,

	"found":      entities.ItemStateFound,
	"recovered":  entities.ItemStateFound,
	"discovered": entities.ItemStateFound,
	"retrieved":  entities.ItemStateFound,

	"modified":  entities.ItemStateModified,
	"enchanted": entities.ItemStateModified,
	"repaired":  entities.ItemStateModified,
	"reforged":  entities.ItemStateModified,
	"upgraded":  entities.ItemStateModified,
}

// presentForms covers irregular and short verbs whose present tense no stem
// of a stateVerbs entry reaches. They are kept out of the regex templates.
var presentForms = map[string]entities.ItemState{
	"break": entities.ItemStateBroken, "breaks": entities.ItemStateBroken,
	"drink": entities.ItemStateConsumed, "drinks": entities.ItemStateConsumed,
	"eat": entities.ItemStateConsumed, "eats": entities.ItemStateConsumed,
	"use": entities.ItemStateUsed, "uses": entities.ItemStateUsed,
	"give": entities.ItemStateGivenAway, "gives": entities.ItemStateGivenAway,
	"lose": entities.ItemStateLost, "loses": entities.ItemStateLost,
	"drop": entities.ItemStateLost, "drops": entities.ItemStateLost,
	"find": entities.ItemStateFound, "finds": entities.ItemStateFound,
}

// stateStems indexes stateVerbs by stem so that regular present forms such
// as "shatters" find "shattered". Short stems such as "hand" are left out;
// they collide with common nouns.
var stateStems = func() map[string]entities.ItemState {
	m := make(map[string]entities.ItemState, len(stateVerbs))
	for word, state := range stateVerbs {
		if stem := Stem(word); len(stem) >= 5 {
			m[stem] = state
		}
	}
	return m
}()

// StateForVerb returns the item state a verb form signals.
func StateForVerb(word string) (entities.ItemState, bool) {
	lower := strings.ToLower(word)
	if st, ok := stateVerbs[lower]; ok {
		return st, true
	}
	if st, ok := presentForms[lower]; ok {
		return st, true
	}
	st, ok := stateStems[Stem(lower)]
	return st, ok
}

// stateVerbPattern is an alternation of every state verb form, longest first.
func stateVerbPattern() string {
	words := make([]string, 0, len(stateVerbs))
	for w := range stateVerbs {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) > len(words[j])
		}
		return words[i] < words[j]
	})
	return strings.Join(words, "|")
}

// Stem strips common inflection suffixes from a verb.
func Stem(word string) string {
	lower := strings.ToLower(word)
	for _, suffix := range []string{"ing", "ed", "es", "s"} {
		if strings.HasSuffix(lower, suffix) && len(lower) > len(suffix)+2 {
			return strings.TrimSuffix(lower, suffix)
		}
	}
	return lower
}

// identityPhrases are the token sequences that announce an identity reveal.
var identityPhrases = [][]string{
	{"is", "actually"},
	{"was", "actually"},
	{"is", "really"},
	{"was", "really"},
	{"revealed", "as"},
	{"revealed", "to", "be"},
	{"turns", "out", "to", "be"},
	{"turned", "out", "to", "be"},
}

var locativePrepositions = wordSet(
	"in", "at", "into", "inside", "through", "across", "against", "near",
	"beneath", "under", "behind", "toward", "towards", "within", "onto", "upon", "over",
)

// IsLocativePreposition reports whether word introduces a place.
func IsLocativePreposition(word string) bool {
	_, ok := locativePrepositions[strings.ToLower(word)]
	return ok
}

var determiners = wordSet(
	"the", "a", "an", "this", "that", "these", "those", "his", "her", "their",
	"its", "my", "your", "our", "some", "any", "every", "each", "no",
)

var functionWords = wordSet(
	"the", "a", "an", "and", "or", "but", "nor", "so", "yet", "of", "to", "in",
	"at", "on", "by", "for", "with", "from", "into", "onto", "upon", "over",
	"under", "as", "than", "then", "when", "while", "where", "which", "who",
	"whom", "whose", "that", "this", "these", "those", "is", "was", "were",
	"are", "be", "been", "being", "has", "had", "have", "do", "did", "does",
	"not", "very", "just", "still", "also", "only", "even", "there", "here",
	"he", "she", "it", "they", "we", "you", "i", "him", "her", "them", "us",
	"me", "his", "its", "their", "our", "your", "my", "after", "before",
	"against", "across", "through", "toward", "towards", "within", "inside",
	"near", "beneath", "behind", "about", "around", "out", "up", "down",
	"off", "all", "some", "any", "every", "each", "no", "one", "what",
	"would", "could", "should", "will", "can", "may", "might", "must",
	"actually", "really", "finally", "suddenly", "soon", "later", "now",
)

var pronouns = wordSet(
	"he", "she", "it", "they", "him", "her", "them", "his", "its", "their",
	"this", "that", "i", "we", "you",
)

// IsPronoun reports whether word is a personal or demonstrative pronoun.
func IsPronoun(word string) bool {
	_, ok := pronouns[strings.ToLower(word)]
	return ok
}

// IsFunctionWord reports whether word is a closed-class word that never names an entity.
func IsFunctionWord(word string) bool {
	_, ok := functionWords[strings.ToLower(word)]
	return ok
}

var adjectiveSuffixes = []string{
	"y", "ed", "en", "ic", "al", "ous", "ful", "less", "ish", "ive", "ent", "ant", "ble",
}

var commonAdjectives = wordSet(
	"old", "new", "ancient", "small", "large", "big", "great", "little", "dark",
	"bright", "black", "white", "red", "blue", "green", "gold", "silver", "iron",
	"long", "short", "sharp", "dull", "strange", "young", "cold", "hot", "broken",
	"hidden", "sacred", "cursed", "magic", "worn", "fine", "heavy", "light", "tiny",
)

// looksAdjectival guesses whether a lowercase word is an adjective.
func looksAdjectival(word string) bool {
	lower := strings.ToLower(word)
	if _, ok := commonAdjectives[lower]; ok {
		return true
	}
	if len(lower) < 4 {
		return false
	}
	for _, s := range adjectiveSuffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

func wordSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
