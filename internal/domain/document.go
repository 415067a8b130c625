package domain

import (
	"fmt"
	"sort"
)

// AssetEntry is one bound URI in an asset or rendition slot's history.
type AssetEntry struct {
	Timestamp Timestamp
	URI       string
}

// DocumentVersion is one immutable snapshot in a document's version list:
// an XML URI, the creation timestamp, and the declared asset/rendition slot
// set with their per-slot URI histories.
type DocumentVersion struct {
	Data       string
	Timestamp  Timestamp
	Assets     map[string][]AssetEntry
	Renditions map[string][]AssetEntry
}

func newSlotMap(slots []string) map[string][]AssetEntry {
	m := make(map[string][]AssetEntry, len(slots))
	for _, s := range slots {
		m[s] = nil
	}
	return m
}

func cloneSlotMap(m map[string][]AssetEntry) map[string][]AssetEntry {
	out := make(map[string][]AssetEntry, len(m))
	for k, v := range m {
		if v == nil {
			out[k] = nil
			continue
		}
		cp := make([]AssetEntry, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

func (v DocumentVersion) clone() DocumentVersion {
	return DocumentVersion{
		Data:       v.Data,
		Timestamp:  v.Timestamp,
		Assets:     cloneSlotMap(v.Assets),
		Renditions: cloneSlotMap(v.Renditions),
	}
}

// slotKeySet returns the sorted set of keys in m, used to compare declared
// slot sets for equality regardless of map iteration order.
func slotKeySet(m map[string][]AssetEntry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sameSlotSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// DocumentManifest is the deep-immutable snapshot returned by
// Document.Manifest.
type DocumentManifest struct {
	ID       string
	Created  Timestamp
	Updated  Timestamp
	Deleted  bool
	Versions []DocumentVersion
}

// Document is identified by id and holds an append-only, oldest-first list
// of versions. Each version declares its own asset/rendition slot set,
// frozen once a later version is appended.
type Document struct {
	id       string
	created  Timestamp
	updated  Timestamp
	deleted  bool
	versions []DocumentVersion
	history  []Event
}

// NewDocument reconstructs a Document from its id and event history.
func NewDocument(id string, history []Event) (*Document, error) {
	d := &Document{id: id}
	for i, ev := range history {
		if ev.Entity != KindDocument || ev.ID != id {
			return nil, fmt.Errorf("%w: event %d belongs to %s/%s, not document/%s", ErrValidation, i, ev.Entity, ev.ID, id)
		}
		if i == 0 && ev.Kind != EventCreated {
			return nil, fmt.Errorf("%w: history must start with a create event", ErrValidation)
		}
		if err := d.apply(ev); err != nil {
			return nil, err
		}
	}
	d.history = append([]Event(nil), history...)
	return d, nil
}

// DocumentFromManifest reconstructs a Document directly from a persisted
// manifest, skipping event replay. See JournalFromManifest.
func DocumentFromManifest(m DocumentManifest) *Document {
	versions := make([]DocumentVersion, len(m.Versions))
	for i, v := range m.Versions {
		versions[i] = v.clone()
	}
	return &Document{
		id:       m.ID,
		created:  m.Created,
		updated:  m.Updated,
		deleted:  m.Deleted,
		versions: versions,
	}
}

// CreateDocument starts a brand-new document history with no versions.
func CreateDocument(id string, now Timestamp) (*Document, error) {
	d := &Document{id: id}
	ev := newEvent(KindDocument, id, EventCreated, now, nil)
	if err := d.apply(ev); err != nil {
		return nil, err
	}
	d.history = []Event{ev}
	return d, nil
}

func (d *Document) apply(ev Event) error {
	switch ev.Kind {
	case EventCreated:
		d.created = ev.Timestamp
		d.updated = ev.Timestamp
	case EventDeleted:
		if d.deleted {
			return ErrAlreadyDeleted
		}
		d.deleted = true
		d.updated = ev.Timestamp
	case EventVersionAdded:
		data, _ := ev.Payload["data"].(string)
		assetSlots, _ := ev.Payload["assetSlots"].([]string)
		renditionSlots, _ := ev.Payload["renditionSlots"].([]string)
		d.versions = append(d.versions, DocumentVersion{
			Data:       data,
			Timestamp:  ev.Timestamp,
			Assets:     newSlotMap(assetSlots),
			Renditions: newSlotMap(renditionSlots),
		})
		d.updated = ev.Timestamp
	case EventAssetVersionAdded, EventRenditionVersionAdded:
		if len(d.versions) == 0 {
			return fmt.Errorf("%w: no version to bind an asset to", ErrValidation)
		}
		slot, _ := ev.Payload["slot"].(string)
		uri, _ := ev.Payload["uri"].(string)
		latest := &d.versions[len(d.versions)-1]
		target := latest.Assets
		if ev.Kind == EventRenditionVersionAdded {
			target = latest.Renditions
		}
		if _, declared := target[slot]; !declared {
			return ErrAssetSlotUnknown
		}
		target[slot] = append(target[slot], AssetEntry{Timestamp: ev.Timestamp, URI: uri})
		d.updated = ev.Timestamp
	default:
		return fmt.Errorf("%w: unknown document event kind %q", ErrValidation, ev.Kind)
	}
	return nil
}

func (d *Document) append(kind EventKind, now Timestamp, payload map[string]any) error {
	ev := newEvent(KindDocument, d.id, kind, now, payload)
	if err := d.apply(ev); err != nil {
		return err
	}
	d.history = append(d.history, ev)
	return nil
}

// ID returns the document's identifier.
func (d *Document) ID() string { return d.id }

// Deleted reports whether the document has been deleted.
func (d *Document) Deleted() bool { return d.deleted }

// History returns the ordered event history.
func (d *Document) History() []Event { return append([]Event(nil), d.history...) }

// Manifest returns a deep-immutable snapshot of the document's current state.
func (d *Document) Manifest() DocumentManifest {
	versions := make([]DocumentVersion, len(d.versions))
	for i, v := range d.versions {
		versions[i] = v.clone()
	}
	return DocumentManifest{
		ID:       d.id,
		Created:  d.created,
		Updated:  d.updated,
		Deleted:  d.deleted,
		Versions: versions,
	}
}

// Delete marks the document deleted and records a deletion event. History
// is preserved.
func (d *Document) Delete(now Timestamp) error {
	if d.deleted {
		return ErrAlreadyDeleted
	}
	return d.append(EventDeleted, now, nil)
}

func (d *Document) latest() (*DocumentVersion, bool) {
	if len(d.versions) == 0 {
		return nil, false
	}
	return &d.versions[len(d.versions)-1], true
}

// NewVersion appends a version declaring assetSlots and renditionSlots,
// each starting unbound (empty inner list). Returns ErrVersionAlreadyExists
// if data and the declared slot sets are identical to the current latest
// version — services translate this into a no-op.
func (d *Document) NewVersion(data string, assetSlots, renditionSlots []string, now Timestamp) error {
	if latest, ok := d.latest(); ok {
		if latest.Data == data &&
			sameSlotSet(slotKeySet(latest.Assets), assetSlots) &&
			sameSlotSet(slotKeySet(latest.Renditions), renditionSlots) {
			return ErrVersionAlreadyExists
		}
	}
	return d.append(EventVersionAdded, now, map[string]any{
		"data":           data,
		"assetSlots":     append([]string(nil), assetSlots...),
		"renditionSlots": append([]string(nil), renditionSlots...),
	})
}

// NewAssetVersion binds uri into the latest version's asset slot. A no-op
// (no event appended) if uri already equals the slot's current tail value.
// Fails with ErrAssetSlotUnknown if slot was not declared for the latest
// version.
func (d *Document) NewAssetVersion(slot, uri string, now Timestamp) error {
	return d.newBoundVersion(slot, uri, now, false)
}

// NewRenditionVersion is NewAssetVersion's counterpart for the renditions
// section.
func (d *Document) NewRenditionVersion(slot, uri string, now Timestamp) error {
	return d.newBoundVersion(slot, uri, now, true)
}

func (d *Document) newBoundVersion(slot, uri string, now Timestamp, rendition bool) error {
	latest, ok := d.latest()
	if !ok {
		return fmt.Errorf("%w: no version to bind an asset to", ErrValidation)
	}
	target := latest.Assets
	if rendition {
		target = latest.Renditions
	}
	entries, declared := target[slot]
	if !declared {
		return ErrAssetSlotUnknown
	}
	if len(entries) > 0 && entries[len(entries)-1].URI == uri {
		return nil
	}
	kind := EventAssetVersionAdded
	if rendition {
		kind = EventRenditionVersionAdded
	}
	return d.append(kind, now, map[string]any{"slot": slot, "uri": uri})
}

// VersionByIndex returns the version at a 1-indexed position, matching the
// HTTP API's `?version=` query parameter. A non-positive index returns the
// latest version.
func (d *Document) VersionByIndex(oneIndexed int) (DocumentVersion, error) {
	if len(d.versions) == 0 {
		return DocumentVersion{}, fmt.Errorf("%w: document has no versions", ErrNotFound)
	}
	if oneIndexed <= 0 {
		return d.versions[len(d.versions)-1].clone(), nil
	}
	if oneIndexed > len(d.versions) {
		return DocumentVersion{}, fmt.Errorf("%w: no version at index %d", ErrNotFound, oneIndexed)
	}
	return d.versions[oneIndexed-1].clone(), nil
}

// VersionAt returns the version whose timestamp is the greatest that is
// less than or equal to at, with every asset/rendition slot truncated to
// entries with timestamp <= at. A slot with no qualifying entry is empty in
// the result, meaning it was not yet bound at that instant.
func (d *Document) VersionAt(at Timestamp) (DocumentVersion, error) {
	var best *DocumentVersion
	for i := range d.versions {
		v := &d.versions[i]
		if v.Timestamp.After(at) {
			continue
		}
		if best == nil || v.Timestamp.After(best.Timestamp) {
			best = v
		}
	}
	if best == nil {
		return DocumentVersion{}, fmt.Errorf("%w: no version as of %s", ErrNotFound, at)
	}
	out := best.clone()
	out.Assets = truncateSlots(out.Assets, at)
	out.Renditions = truncateSlots(out.Renditions, at)
	return out, nil
}

func truncateSlots(slots map[string][]AssetEntry, at Timestamp) map[string][]AssetEntry {
	out := make(map[string][]AssetEntry, len(slots))
	for slot, entries := range slots {
		var kept []AssetEntry
		for _, e := range entries {
			if e.Timestamp.After(at) {
				break
			}
			kept = append(kept, e)
		}
		out[slot] = kept
	}
	return out
}
