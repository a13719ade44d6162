package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "sword", "sword", 1.0},
		{"both empty", "", "", 1.0},
		{"one empty", "sword", "", 0.0},
		{"other empty", "", "sword", 0.0},
		{"one edit", "rusty sword", "rusty swords", 1.0 - 1.0/12.0},
		{"plural", "sword", "swords", 1.0 - 1.0/6.0},
		{"classic", "kitten", "sitting", 1.0 - 3.0/7.0},
		{"length gap too large", "a", "abcd", 0.0},
		{"length gap at limit", "ab", "abcd", 0.5},
		{"runes not bytes", "café", "cafe", 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestSimilarity_Symmetric(t *testing.T) {
	pairs := [][2]string{{"amulet", "amulets"}, {"king", "kong"}, {"lantern", "lamp"}}
	for _, p := range pairs {
		assert.Equal(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]), "%s/%s", p[0], p[1])
	}
}
