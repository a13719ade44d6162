package services

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Similarity scores two strings in [0,1] by normalized edit distance.
// Lengths are counted in runes. Strings whose lengths differ by more than half
// the longer length score 0 without computing the distance.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := max(la, lb)
	gap := la - lb
	if gap < 0 {
		gap = -gap
	}
	if float64(gap) > float64(longest)/2 {
		return 0.0
	}

	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(longest)
}
