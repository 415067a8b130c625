// Package service implements the application-level use cases on top of a
// store.Session: fetch, reconstruct, mutate, write, append change, notify.
package service

import (
	"context"
	"errors"

	"github.com/kernelapp/kernel/internal/domain"
	"github.com/kernelapp/kernel/internal/store"
)

// Facade groups every use case behind a single struct, mirroring the
// teacher's one-struct-per-concern services. Every method is independent;
// none share mutable state beyond the session.
type Facade struct {
	session *store.Session
	clock   func() domain.Timestamp
}

// NewFacade builds a Facade over session, using the wall clock for every
// mutation's timestamp.
func NewFacade(session *store.Session) *Facade {
	return &Facade{session: session, clock: domain.Now}
}

func (f *Facade) now() domain.Timestamp { return f.clock() }

func (f *Facade) commitChange(ctx context.Context, entity domain.Kind, id string, deleted bool) error {
	change := domain.ChangeEvent{Timestamp: f.now(), Entity: entity, ID: id, Deleted: deleted}
	if err := f.session.Changes.Add(ctx, change); err != nil {
		return errors.Join(store.ErrChangeLogAppendFailed, err)
	}
	f.session.Notify(change)
	return nil
}

// FetchChanges returns the replication feed page starting after since,
// capped at limit entries (store-level default applies when limit <= 0).
func (f *Facade) FetchChanges(ctx context.Context, since *domain.Timestamp, limit int) ([]domain.ChangeEvent, error) {
	return f.session.Changes.Filter(ctx, since, limit)
}
