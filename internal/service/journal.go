package service

import (
	"context"

	"github.com/kernelapp/kernel/internal/domain"
)

// CreateJournal starts a new journal with optional initial metadata.
// Re-creating a deleted or currently live id fails with ErrAlreadyExists.
func (f *Facade) CreateJournal(ctx context.Context, id string, metadata map[string]any) (domain.JournalManifest, error) {
	if _, err := f.session.Journals.Fetch(ctx, id); err == nil {
		return domain.JournalManifest{}, domain.ErrAlreadyExists
	}

	j, err := domain.CreateJournal(id, metadata, f.now())
	if err != nil {
		return domain.JournalManifest{}, err
	}
	manifest := j.Manifest()
	if err := f.session.Journals.Add(ctx, id, manifest); err != nil {
		return domain.JournalManifest{}, err
	}
	if err := f.commitChange(ctx, domain.KindJournal, id, false); err != nil {
		return manifest, err
	}
	return manifest, nil
}

// SetJournalMetadata sets a single metadata key on an existing journal.
func (f *Facade) SetJournalMetadata(ctx context.Context, id, key string, value any) (domain.JournalManifest, error) {
	return f.mutateJournal(ctx, id, func(j *domain.Journal) error {
		return j.SetMetadata(key, value, f.now())
	})
}

// ClearJournalMetadata removes a single metadata key from an existing journal.
func (f *Facade) ClearJournalMetadata(ctx context.Context, id, key string) (domain.JournalManifest, error) {
	return f.mutateJournal(ctx, id, func(j *domain.Journal) error {
		return j.ClearMetadata(key, f.now())
	})
}

// AddDocumentsBundleToJournal appends a bundle reference to the journal's
// item list. Re-adding an id already present is a no-op. Fails with
// ErrUnknownReference if bundleID does not currently exist.
func (f *Facade) AddDocumentsBundleToJournal(ctx context.Context, journalID, bundleID string, ns []string) (domain.JournalManifest, error) {
	if _, err := f.session.Bundles.Fetch(ctx, bundleID); err != nil {
		return domain.JournalManifest{}, domain.ErrUnknownReference
	}
	return f.mutateJournal(ctx, journalID, func(j *domain.Journal) error {
		return j.AddItem(domain.ItemRef{ID: bundleID, NS: ns}, f.now())
	})
}

// InsertDocumentsBundleIntoJournal inserts a bundle reference at a specific
// position. Fails with ErrDuplicateReference if bundleID is already
// present, or ErrUnknownReference if bundleID does not currently exist.
func (f *Facade) InsertDocumentsBundleIntoJournal(ctx context.Context, journalID string, pos int, bundleID string, ns []string) (domain.JournalManifest, error) {
	if _, err := f.session.Bundles.Fetch(ctx, bundleID); err != nil {
		return domain.JournalManifest{}, domain.ErrUnknownReference
	}
	return f.mutateJournal(ctx, journalID, func(j *domain.Journal) error {
		return j.InsertItem(pos, domain.ItemRef{ID: bundleID, NS: ns}, f.now())
	})
}

// RemoveDocumentsBundleFromJournal removes a bundle reference by id.
func (f *Facade) RemoveDocumentsBundleFromJournal(ctx context.Context, journalID, bundleID string) (domain.JournalManifest, error) {
	return f.mutateJournal(ctx, journalID, func(j *domain.Journal) error {
		return j.RemoveItem(bundleID, f.now())
	})
}

// DeleteJournal marks the journal removed. Its history is preserved; the id
// cannot be reused by a later CreateJournal call.
func (f *Facade) DeleteJournal(ctx context.Context, id string) error {
	m, err := f.session.Journals.Fetch(ctx, id)
	if err != nil {
		return err
	}
	j := domain.JournalFromManifest(m)
	if err := j.Delete(f.now()); err != nil {
		return err
	}
	if err := f.session.Journals.Update(ctx, id, j.Manifest()); err != nil {
		return err
	}
	return f.commitChange(ctx, domain.KindJournal, id, true)
}

// FetchJournalManifest returns the journal's current manifest snapshot.
func (f *Facade) FetchJournalManifest(ctx context.Context, id string) (domain.JournalManifest, error) {
	return f.session.Journals.Fetch(ctx, id)
}

func (f *Facade) mutateJournal(ctx context.Context, id string, mutate func(*domain.Journal) error) (domain.JournalManifest, error) {
	m, err := f.session.Journals.Fetch(ctx, id)
	if err != nil {
		return domain.JournalManifest{}, err
	}
	if m.Deleted {
		return domain.JournalManifest{}, domain.ErrAlreadyDeleted
	}
	j := domain.JournalFromManifest(m)
	if err := mutate(j); err != nil {
		return domain.JournalManifest{}, err
	}
	manifest := j.Manifest()
	if err := f.session.Journals.Update(ctx, id, manifest); err != nil {
		return domain.JournalManifest{}, err
	}
	if err := f.commitChange(ctx, domain.KindJournal, id, false); err != nil {
		return manifest, err
	}
	return manifest, nil
}
