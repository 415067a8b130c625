// Package store defines the persistence ports used by the application
// services: a per-entity DataStore, a ChangesDataStore for the replication
// feed, and the Session unit of work that bundles both together.
package store

import (
	"context"

	"github.com/kernelapp/kernel/internal/domain"
)

// DataStore is the port one per-entity-kind adapter implements. Records are
// single documents keyed by id; Update takes the full manifest (last-writer-
// wins within a single commit).
type DataStore[M any] interface {
	Add(ctx context.Context, id string, manifest M) error
	Update(ctx context.Context, id string, manifest M) error
	Fetch(ctx context.Context, id string) (M, error)
	Delete(ctx context.Context, id string) error
}

// ChangesDataStore is the append-only, timestamp-ordered change feed port.
type ChangesDataStore interface {
	Add(ctx context.Context, change domain.ChangeEvent) error
	Filter(ctx context.Context, since *domain.Timestamp, limit int) ([]domain.ChangeEvent, error)
}

// Observer is notified after a session commits an entity write and its
// change-log append. Observer failures never roll back the commit; they are
// best-effort side channels (metrics, cache invalidation).
type Observer func(domain.ChangeEvent)

// Session bundles one DataStore handle per entity kind plus the changes
// store and an observer registry. Application services receive a Session
// and drive it through: fetch, reconstruct, mutate, write, append change,
// notify.
type Session struct {
	Journals  DataStore[domain.JournalManifest]
	Bundles   DataStore[domain.DocumentsBundleManifest]
	Documents DataStore[domain.DocumentManifest]
	Changes   ChangesDataStore

	observers []Observer
}

// NewSession builds a Session from its four store handles.
func NewSession(
	journals DataStore[domain.JournalManifest],
	bundles DataStore[domain.DocumentsBundleManifest],
	documents DataStore[domain.DocumentManifest],
	changes ChangesDataStore,
) *Session {
	return &Session{Journals: journals, Bundles: bundles, Documents: documents, Changes: changes}
}

// Observe registers an observer invoked after every committed change.
func (s *Session) Observe(o Observer) {
	s.observers = append(s.observers, o)
}

// Notify runs every registered observer for change. Called by services
// after a successful change-log append.
func (s *Session) Notify(change domain.ChangeEvent) {
	for _, o := range s.observers {
		o(change)
	}
}
