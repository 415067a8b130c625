package domain

// EventKind names the events an entity's history is made of. Replay is pure
// and order-sensitive: a constructor rejects any history whose first event
// is not a create event for the right entity kind and id.
type EventKind string

const (
	EventCreated              EventKind = "created"
	EventDeleted              EventKind = "deleted"
	EventMetadataUpdated      EventKind = "metadata_updated"
	EventItemAdded            EventKind = "item_added"
	EventItemInserted         EventKind = "item_inserted"
	EventItemRemoved          EventKind = "item_removed"
	EventVersionAdded         EventKind = "version_added"
	EventAssetVersionAdded    EventKind = "asset_version_added"
	EventRenditionVersionAdded EventKind = "rendition_version_added"
)

// Kind identifies which aggregate a history belongs to.
type Kind string

const (
	KindJournal  Kind = "journal"
	KindBundle   Kind = "documents_bundle"
	KindDocument Kind = "document"
)

// Event is a single immutable fact appended to an entity's history.
// Payload is kind-specific; see the mutators in journal.go, bundle.go and
// document.go for the shapes each EventKind carries.
type Event struct {
	Entity    Kind
	ID        string
	Kind      EventKind
	Timestamp Timestamp
	Payload   map[string]any
}

func newEvent(entity Kind, id string, kind EventKind, ts Timestamp, payload map[string]any) Event {
	if payload == nil {
		payload = map[string]any{}
	}
	return Event{Entity: entity, ID: id, Kind: kind, Timestamp: ts, Payload: payload}
}
