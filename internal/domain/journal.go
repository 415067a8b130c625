package domain

import "fmt"

// JournalManifest is the deep-immutable snapshot returned by Journal.Manifest.
type JournalManifest struct {
	ID       string
	Created  Timestamp
	Updated  Timestamp
	Deleted  bool
	Metadata map[string]any
	Items    []ItemRef
}

// Journal is reconstructed by replaying an ordered event history. It holds
// an open metadata section plus an ordered, id-unique list of bundle
// references (items).
type Journal struct {
	id      string
	created Timestamp
	updated Timestamp
	deleted bool
	state   itemContainer
	history []Event
}

// NewJournal constructs a Journal from its id and an ordered event history.
// With an empty history, it is a brand-new journal: the caller must still
// append a create event via CreateJournal before persisting.
func NewJournal(id string, history []Event) (*Journal, error) {
	j := &Journal{id: id, state: newItemContainer()}
	for i, ev := range history {
		if ev.Entity != KindJournal || ev.ID != id {
			return nil, fmt.Errorf("%w: event %d belongs to %s/%s, not journal/%s", ErrValidation, i, ev.Entity, ev.ID, id)
		}
		if i == 0 && ev.Kind != EventCreated {
			return nil, fmt.Errorf("%w: history must start with a create event", ErrValidation)
		}
		if err := j.apply(ev); err != nil {
			return nil, err
		}
	}
	j.history = append([]Event(nil), history...)
	return j, nil
}

// JournalFromManifest reconstructs a Journal directly from a persisted
// manifest, skipping event replay. Used by services backed by a store that
// retains only the latest manifest per entity rather than its full event
// history; mutations made against the result still append events (for the
// change feed and for diffing against a later fetch), they just start from
// an empty in-memory history rather than one replayed from storage.
func JournalFromManifest(m JournalManifest) *Journal {
	return &Journal{
		id:      m.ID,
		created: m.Created,
		updated: m.Updated,
		deleted: m.Deleted,
		state:   itemContainer{metadata: cloneMetadata(m.Metadata), items: cloneItems(m.Items)},
	}
}

// CreateJournal starts a brand-new journal history with an optional initial
// metadata map.
func CreateJournal(id string, metadata map[string]any, now Timestamp) (*Journal, error) {
	j := &Journal{id: id, state: newItemContainer()}
	payload := map[string]any{"metadata": cloneMetadata(metadata)}
	ev := newEvent(KindJournal, id, EventCreated, now, payload)
	if err := j.apply(ev); err != nil {
		return nil, err
	}
	j.history = []Event{ev}
	return j, nil
}

func (j *Journal) apply(ev Event) error {
	switch ev.Kind {
	case EventCreated:
		j.created = ev.Timestamp
		j.updated = ev.Timestamp
		if md, ok := ev.Payload["metadata"].(map[string]any); ok {
			j.state.metadata = cloneMetadata(md)
		}
	case EventDeleted:
		if j.deleted {
			return ErrAlreadyDeleted
		}
		j.deleted = true
		j.updated = ev.Timestamp
	case EventMetadataUpdated:
		if cleared, ok := ev.Payload["cleared"].(bool); ok && cleared {
			j.state.clearMetadata(ev.Payload["key"].(string))
		} else {
			j.state.setMetadata(ev.Payload["key"].(string), ev.Payload["value"])
		}
		j.updated = ev.Timestamp
	case EventItemAdded:
		ref := itemRefFromPayload(ev.Payload)
		j.state.addItem(ref)
		j.updated = ev.Timestamp
	case EventItemInserted:
		ref := itemRefFromPayload(ev.Payload)
		pos, _ := ev.Payload["pos"].(int)
		if err := j.state.insertItem(pos, ref); err != nil {
			return err
		}
		j.updated = ev.Timestamp
	case EventItemRemoved:
		id, _ := ev.Payload["id"].(string)
		if err := j.state.removeItem(id); err != nil {
			return err
		}
		j.updated = ev.Timestamp
	default:
		return fmt.Errorf("%w: unknown journal event kind %q", ErrValidation, ev.Kind)
	}
	return nil
}

func itemRefFromPayload(payload map[string]any) ItemRef {
	ref := ItemRef{}
	if id, ok := payload["id"].(string); ok {
		ref.ID = id
	}
	if ns, ok := payload["ns"].([]string); ok {
		ref.NS = ns
	}
	return ref
}

func (j *Journal) append(kind EventKind, now Timestamp, payload map[string]any) error {
	ev := newEvent(KindJournal, j.id, kind, now, payload)
	if err := j.apply(ev); err != nil {
		return err
	}
	j.history = append(j.history, ev)
	return nil
}

// ID returns the journal's identifier.
func (j *Journal) ID() string { return j.id }

// Deleted reports whether the journal has been deleted.
func (j *Journal) Deleted() bool { return j.deleted }

// History returns the ordered event history.
func (j *Journal) History() []Event { return append([]Event(nil), j.history...) }

// Manifest returns a deep-immutable snapshot of the journal's current state.
func (j *Journal) Manifest() JournalManifest {
	return JournalManifest{
		ID:       j.id,
		Created:  j.created,
		Updated:  j.updated,
		Deleted:  j.deleted,
		Metadata: cloneMetadata(j.state.metadata),
		Items:    cloneItems(j.state.items),
	}
}

// Delete marks the journal as removed. History is preserved; re-creation
// with the same id is rejected by the service layer (see ErrAlreadyExists).
func (j *Journal) Delete(now Timestamp) error {
	if j.deleted {
		return ErrAlreadyDeleted
	}
	return j.append(EventDeleted, now, nil)
}

// SetMetadata sets a single metadata key.
func (j *Journal) SetMetadata(key string, value any, now Timestamp) error {
	return j.append(EventMetadataUpdated, now, map[string]any{"key": key, "value": value})
}

// ClearMetadata removes a single metadata key.
func (j *Journal) ClearMetadata(key string, now Timestamp) error {
	return j.append(EventMetadataUpdated, now, map[string]any{"key": key, "cleared": true})
}

// AddItem appends a bundle reference. A duplicate id is a no-op, matching
// the idempotent-intent rule for write operations.
func (j *Journal) AddItem(ref ItemRef, now Timestamp) error {
	return j.append(EventItemAdded, now, map[string]any{"id": ref.ID, "ns": ref.NS})
}

// InsertItem inserts a bundle reference at a specific position. Rejects
// duplicate ids with ErrDuplicateReference.
func (j *Journal) InsertItem(pos int, ref ItemRef, now Timestamp) error {
	if indexOfItem(j.state.items, ref.ID) >= 0 {
		return ErrDuplicateReference
	}
	return j.append(EventItemInserted, now, map[string]any{"id": ref.ID, "ns": ref.NS, "pos": pos})
}

// RemoveItem removes a bundle reference by id. Fails with
// ErrUnknownReference if id is not present.
func (j *Journal) RemoveItem(id string, now Timestamp) error {
	if indexOfItem(j.state.items, id) < 0 {
		return ErrUnknownReference
	}
	return j.append(EventItemRemoved, now, map[string]any{"id": id})
}
