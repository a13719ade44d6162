package entities

// Segment is one unit of generated narrative text.
type Segment struct {
	ID      int64  `json:"id"`
	Content string `json:"content"`
}

// DeclaredItem is an item the story generator claims to have introduced.
type DeclaredItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DeclaredCharacter is a character the story generator claims to have introduced.
type DeclaredCharacter struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Relationship string `json:"relationship"`
}

// GeneratorOutput is the generator's structured claim list for one segment.
// SegmentID is optional; mentions are only recorded when it is set.
type GeneratorOutput struct {
	SegmentID     int64               `json:"segmentId,omitempty"`
	NewItems      []DeclaredItem      `json:"newItems"`
	NewCharacters []DeclaredCharacter `json:"newCharacters"`
}

// IsEmpty reports whether the generator declared nothing.
func (g GeneratorOutput) IsEmpty() bool {
	return len(g.NewItems) == 0 && len(g.NewCharacters) == 0
}
