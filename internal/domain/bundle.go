package domain

import "fmt"

// DocumentsBundleManifest is the deep-immutable snapshot returned by
// DocumentsBundle.Manifest.
type DocumentsBundleManifest struct {
	ID       string
	Created  Timestamp
	Updated  Timestamp
	Deleted  bool
	Metadata map[string]any
	Items    []ItemRef
}

// DocumentsBundle is an ordered, named container of document references
// (typically an issue). It shares the item-container shape with Journal but
// is a distinct aggregate: its items point at documents, not bundles.
type DocumentsBundle struct {
	id      string
	created Timestamp
	updated Timestamp
	deleted bool
	state   itemContainer
	history []Event
}

// NewDocumentsBundle constructs a bundle from its id and event history.
func NewDocumentsBundle(id string, history []Event) (*DocumentsBundle, error) {
	b := &DocumentsBundle{id: id, state: newItemContainer()}
	for i, ev := range history {
		if ev.Entity != KindBundle || ev.ID != id {
			return nil, fmt.Errorf("%w: event %d belongs to %s/%s, not documents_bundle/%s", ErrValidation, i, ev.Entity, ev.ID, id)
		}
		if i == 0 && ev.Kind != EventCreated {
			return nil, fmt.Errorf("%w: history must start with a create event", ErrValidation)
		}
		if err := b.apply(ev); err != nil {
			return nil, err
		}
	}
	b.history = append([]Event(nil), history...)
	return b, nil
}

// DocumentsBundleFromManifest reconstructs a DocumentsBundle directly from a
// persisted manifest, skipping event replay. See JournalFromManifest.
func DocumentsBundleFromManifest(m DocumentsBundleManifest) *DocumentsBundle {
	return &DocumentsBundle{
		id:      m.ID,
		created: m.Created,
		updated: m.Updated,
		deleted: m.Deleted,
		state:   itemContainer{metadata: cloneMetadata(m.Metadata), items: cloneItems(m.Items)},
	}
}

// CreateDocumentsBundle starts a brand-new bundle history.
func CreateDocumentsBundle(id string, metadata map[string]any, now Timestamp) (*DocumentsBundle, error) {
	b := &DocumentsBundle{id: id, state: newItemContainer()}
	payload := map[string]any{"metadata": cloneMetadata(metadata)}
	ev := newEvent(KindBundle, id, EventCreated, now, payload)
	if err := b.apply(ev); err != nil {
		return nil, err
	}
	b.history = []Event{ev}
	return b, nil
}

func (b *DocumentsBundle) apply(ev Event) error {
	switch ev.Kind {
	case EventCreated:
		b.created = ev.Timestamp
		b.updated = ev.Timestamp
		if md, ok := ev.Payload["metadata"].(map[string]any); ok {
			b.state.metadata = cloneMetadata(md)
		}
	case EventDeleted:
		if b.deleted {
			return ErrAlreadyDeleted
		}
		b.deleted = true
		b.updated = ev.Timestamp
	case EventMetadataUpdated:
		if cleared, ok := ev.Payload["cleared"].(bool); ok && cleared {
			b.state.clearMetadata(ev.Payload["key"].(string))
		} else {
			b.state.setMetadata(ev.Payload["key"].(string), ev.Payload["value"])
		}
		b.updated = ev.Timestamp
	case EventItemAdded:
		b.state.addItem(itemRefFromPayload(ev.Payload))
		b.updated = ev.Timestamp
	case EventItemInserted:
		pos, _ := ev.Payload["pos"].(int)
		if err := b.state.insertItem(pos, itemRefFromPayload(ev.Payload)); err != nil {
			return err
		}
		b.updated = ev.Timestamp
	case EventItemRemoved:
		id, _ := ev.Payload["id"].(string)
		if err := b.state.removeItem(id); err != nil {
			return err
		}
		b.updated = ev.Timestamp
	default:
		return fmt.Errorf("%w: unknown documents_bundle event kind %q", ErrValidation, ev.Kind)
	}
	return nil
}

func (b *DocumentsBundle) append(kind EventKind, now Timestamp, payload map[string]any) error {
	ev := newEvent(KindBundle, b.id, kind, now, payload)
	if err := b.apply(ev); err != nil {
		return err
	}
	b.history = append(b.history, ev)
	return nil
}

// ID returns the bundle's identifier.
func (b *DocumentsBundle) ID() string { return b.id }

// Deleted reports whether the bundle has been deleted.
func (b *DocumentsBundle) Deleted() bool { return b.deleted }

// History returns the ordered event history.
func (b *DocumentsBundle) History() []Event { return append([]Event(nil), b.history...) }

// Manifest returns a deep-immutable snapshot of the bundle's current state.
func (b *DocumentsBundle) Manifest() DocumentsBundleManifest {
	return DocumentsBundleManifest{
		ID:       b.id,
		Created:  b.created,
		Updated:  b.updated,
		Deleted:  b.deleted,
		Metadata: cloneMetadata(b.state.metadata),
		Items:    cloneItems(b.state.items),
	}
}

// Delete marks the bundle as removed.
func (b *DocumentsBundle) Delete(now Timestamp) error {
	if b.deleted {
		return ErrAlreadyDeleted
	}
	return b.append(EventDeleted, now, nil)
}

// SetMetadata sets a single metadata key.
func (b *DocumentsBundle) SetMetadata(key string, value any, now Timestamp) error {
	return b.append(EventMetadataUpdated, now, map[string]any{"key": key, "value": value})
}

// ClearMetadata removes a single metadata key.
func (b *DocumentsBundle) ClearMetadata(key string, now Timestamp) error {
	return b.append(EventMetadataUpdated, now, map[string]any{"key": key, "cleared": true})
}

// AddItem appends a document reference. Duplicate ids are a no-op.
func (b *DocumentsBundle) AddItem(ref ItemRef, now Timestamp) error {
	return b.append(EventItemAdded, now, map[string]any{"id": ref.ID, "ns": ref.NS})
}

// InsertItem inserts a document reference at a specific position.
func (b *DocumentsBundle) InsertItem(pos int, ref ItemRef, now Timestamp) error {
	if indexOfItem(b.state.items, ref.ID) >= 0 {
		return ErrDuplicateReference
	}
	return b.append(EventItemInserted, now, map[string]any{"id": ref.ID, "ns": ref.NS, "pos": pos})
}

// RemoveItem removes a document reference by id.
func (b *DocumentsBundle) RemoveItem(id string, now Timestamp) error {
	if indexOfItem(b.state.items, id) < 0 {
		return ErrUnknownReference
	}
	return b.append(EventItemRemoved, now, map[string]any{"id": id})
}
