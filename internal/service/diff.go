package service

import "github.com/kernelapp/kernel/internal/domain"

// DiffKind names one entry in a structural diff between two manifest
// snapshots of the same entity.
type DiffKind string

const (
	DiffMetadataChanged DiffKind = "metadata_changed"
	DiffMetadataRemoved DiffKind = "metadata_removed"
	DiffItemAdded       DiffKind = "item_added"
	DiffItemRemoved     DiffKind = "item_removed"
	DiffDeleted         DiffKind = "deleted"
)

// DiffEntry is one detected change between a before/after manifest pair.
// The store retains only the latest manifest per entity (see the change
// feed's latest-state-pointer semantics), so there is no persisted event
// log to diff; DiffJournalVersions and DiffDocumentsBundleVersions instead
// compute an event-list-shaped diff structurally, from two manifest
// snapshots the caller already holds (for example one fetched before a
// mutating call and one fetched after).
type DiffEntry struct {
	Kind  DiffKind
	Key   string
	Value any
}

func itemSet(items []domain.ItemRef) map[string]domain.ItemRef {
	m := make(map[string]domain.ItemRef, len(items))
	for _, it := range items {
		m[it.ID] = it
	}
	return m
}

func diffItems(before, after []domain.ItemRef) []DiffEntry {
	beforeSet, afterSet := itemSet(before), itemSet(after)
	var entries []DiffEntry
	for id := range afterSet {
		if _, ok := beforeSet[id]; !ok {
			entries = append(entries, DiffEntry{Kind: DiffItemAdded, Key: id})
		}
	}
	for id := range beforeSet {
		if _, ok := afterSet[id]; !ok {
			entries = append(entries, DiffEntry{Kind: DiffItemRemoved, Key: id})
		}
	}
	return entries
}

func diffMetadata(before, after map[string]any) []DiffEntry {
	var entries []DiffEntry
	for k, v := range after {
		old, existed := before[k]
		if !existed || old != v {
			entries = append(entries, DiffEntry{Kind: DiffMetadataChanged, Key: k, Value: v})
		}
	}
	for k := range before {
		if _, ok := after[k]; !ok {
			entries = append(entries, DiffEntry{Kind: DiffMetadataRemoved, Key: k})
		}
	}
	return entries
}

// DiffJournalVersions computes the structural diff between two journal
// manifest snapshots.
func (f *Facade) DiffJournalVersions(before, after domain.JournalManifest) []DiffEntry {
	entries := diffMetadata(before.Metadata, after.Metadata)
	entries = append(entries, diffItems(before.Items, after.Items)...)
	if !before.Deleted && after.Deleted {
		entries = append(entries, DiffEntry{Kind: DiffDeleted})
	}
	return entries
}

// DiffDocumentsBundleVersions computes the structural diff between two
// documents bundle manifest snapshots.
func (f *Facade) DiffDocumentsBundleVersions(before, after domain.DocumentsBundleManifest) []DiffEntry {
	entries := diffMetadata(before.Metadata, after.Metadata)
	entries = append(entries, diffItems(before.Items, after.Items)...)
	if !before.Deleted && after.Deleted {
		entries = append(entries, DiffEntry{Kind: DiffDeleted})
	}
	return entries
}
