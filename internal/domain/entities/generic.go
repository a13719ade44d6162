package entities

// DefaultGenericTerms are surface forms that never become roster entries.
// Config can replace the list; these are used when it does not.
var DefaultGenericTerms = []string{
	"thing", "things", "something", "anything", "everything", "nothing",
	"someone", "somebody", "anyone", "anybody", "everyone", "everybody",
	"no one", "nobody", "one", "ones", "stuff", "object", "objects",
	"item", "items", "person", "people", "way", "time", "moment",
	"it", "its", "itself", "they", "them", "their", "he", "him", "his",
	"she", "her", "hers", "you", "your", "i", "me", "my", "we", "us", "our",
	"this", "that", "these", "those", "what", "which", "who", "whom",
	"here", "there", "other", "others", "another",
}

// GenericTerms is a deny-list of surface forms too vague to identify an entity.
type GenericTerms map[string]struct{}

// NewGenericTerms builds a deny-list from the given words, falling back to the
// defaults when words is empty.
func NewGenericTerms(words []string) GenericTerms {
	if len(words) == 0 {
		words = DefaultGenericTerms
	}
	g := make(GenericTerms, len(words))
	for _, w := range words {
		if key := NormalizeName(w); key != "" {
			g[key] = struct{}{}
		}
	}
	return g
}

// IsGeneric reports whether name is empty after normalization or deny-listed.
func (g GenericTerms) IsGeneric(name string) bool {
	key := NormalizeName(name)
	if key == "" {
		return true
	}
	_, ok := g[key]
	return ok
}
