package domain

// ChangeEvent is a single entry in the append-only change feed: a
// latest-state pointer, not a full event record. Between two client polls,
// intermediate states may be collapsed into one entry.
type ChangeEvent struct {
	Timestamp Timestamp
	Entity    Kind
	ID        string
	Deleted   bool
}
