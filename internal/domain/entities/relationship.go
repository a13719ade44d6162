package entities

// RelationType defines the kind of relationship the extractor found.
type RelationType string

const (
	RelationIdentity    RelationType = "IDENTITY"
	RelationStateChange RelationType = "STATE_CHANGE"
)

// Relationship links a source surface form to a revealed identity or a new state.
// It is extractor output only and is never persisted.
type Relationship struct {
	Type     RelationType `json:"type"`
	Source   string       `json:"source"`
	Target   string       `json:"target,omitempty"`    // IDENTITY only
	NewState ItemState    `json:"new_state,omitempty"` // STATE_CHANGE only
	Context  string       `json:"context,omitempty"`
}

// Key identifies a relationship for deduplication.
func (r Relationship) Key() string {
	return string(r.Type) + "|" + NormalizeName(r.Source) + "|" + NormalizeName(r.Target) + "|" + string(r.NewState)
}

// Extraction is the strategy-independent output of one extraction run.
type Extraction struct {
	Characters    []string       `json:"characters"`
	Items         []string       `json:"items"`
	Locations     []string       `json:"locations"`
	Concepts      []string       `json:"concepts"`
	Relationships []Relationship `json:"relationships"`
	Strategy      string         `json:"strategy"`
}

// IsEmpty reports whether nothing at all was extracted.
func (e *Extraction) IsEmpty() bool {
	return len(e.Characters) == 0 && len(e.Items) == 0 && len(e.Locations) == 0 &&
		len(e.Concepts) == 0 && len(e.Relationships) == 0
}
