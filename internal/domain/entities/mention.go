package entities

import "time"

// Mention records one extraction event that resolved to an entity.
// Mentions are inserted once and never updated.
type Mention struct {
	ID          int64      `json:"id"`
	GameID      int64      `json:"game_id"`
	EntityType  EntityType `json:"entity_type"`
	EntityID    int64      `json:"entity_id"`
	SegmentID   int64      `json:"segment_id"`
	StateChange bool       `json:"state_change"`
	NewState    string     `json:"new_state,omitempty"`
	Context     string     `json:"context,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
