package service

import (
	"context"

	"github.com/kernelapp/kernel/internal/domain"
)

// CreateDocumentsBundle starts a new documents bundle with optional initial
// metadata. Re-creating a deleted or currently live id fails with
// ErrAlreadyExists.
func (f *Facade) CreateDocumentsBundle(ctx context.Context, id string, metadata map[string]any) (domain.DocumentsBundleManifest, error) {
	if _, err := f.session.Bundles.Fetch(ctx, id); err == nil {
		return domain.DocumentsBundleManifest{}, domain.ErrAlreadyExists
	}

	b, err := domain.CreateDocumentsBundle(id, metadata, f.now())
	if err != nil {
		return domain.DocumentsBundleManifest{}, err
	}
	manifest := b.Manifest()
	if err := f.session.Bundles.Add(ctx, id, manifest); err != nil {
		return domain.DocumentsBundleManifest{}, err
	}
	if err := f.commitChange(ctx, domain.KindBundle, id, false); err != nil {
		return manifest, err
	}
	return manifest, nil
}

// SetDocumentsBundleMetadata sets a single metadata key on an existing bundle.
func (f *Facade) SetDocumentsBundleMetadata(ctx context.Context, id, key string, value any) (domain.DocumentsBundleManifest, error) {
	return f.mutateBundle(ctx, id, func(b *domain.DocumentsBundle) error {
		return b.SetMetadata(key, value, f.now())
	})
}

// ClearDocumentsBundleMetadata removes a single metadata key from an
// existing bundle.
func (f *Facade) ClearDocumentsBundleMetadata(ctx context.Context, id, key string) (domain.DocumentsBundleManifest, error) {
	return f.mutateBundle(ctx, id, func(b *domain.DocumentsBundle) error {
		return b.ClearMetadata(key, f.now())
	})
}

// AddDocumentToDocumentsBundle appends a document reference to the bundle's
// item list. Re-adding an id already present is a no-op. Fails with
// ErrUnknownReference if docID does not currently exist.
func (f *Facade) AddDocumentToDocumentsBundle(ctx context.Context, bundleID, docID string, ns []string) (domain.DocumentsBundleManifest, error) {
	if _, err := f.session.Documents.Fetch(ctx, docID); err != nil {
		return domain.DocumentsBundleManifest{}, domain.ErrUnknownReference
	}
	return f.mutateBundle(ctx, bundleID, func(b *domain.DocumentsBundle) error {
		return b.AddItem(domain.ItemRef{ID: docID, NS: ns}, f.now())
	})
}

// InsertDocumentToDocumentsBundle inserts a document reference at a
// specific position. Fails with ErrDuplicateReference if docID is already
// present, or ErrUnknownReference if docID does not currently exist.
func (f *Facade) InsertDocumentToDocumentsBundle(ctx context.Context, bundleID string, pos int, docID string, ns []string) (domain.DocumentsBundleManifest, error) {
	if _, err := f.session.Documents.Fetch(ctx, docID); err != nil {
		return domain.DocumentsBundleManifest{}, domain.ErrUnknownReference
	}
	return f.mutateBundle(ctx, bundleID, func(b *domain.DocumentsBundle) error {
		return b.InsertItem(pos, domain.ItemRef{ID: docID, NS: ns}, f.now())
	})
}

// RemoveDocumentFromDocumentsBundle removes a document reference by id.
func (f *Facade) RemoveDocumentFromDocumentsBundle(ctx context.Context, bundleID, docID string) (domain.DocumentsBundleManifest, error) {
	return f.mutateBundle(ctx, bundleID, func(b *domain.DocumentsBundle) error {
		return b.RemoveItem(docID, f.now())
	})
}

// DeleteDocumentsBundle marks the bundle removed. Its history is preserved;
// the id cannot be reused by a later CreateDocumentsBundle call.
func (f *Facade) DeleteDocumentsBundle(ctx context.Context, id string) error {
	m, err := f.session.Bundles.Fetch(ctx, id)
	if err != nil {
		return err
	}
	b := domain.DocumentsBundleFromManifest(m)
	if err := b.Delete(f.now()); err != nil {
		return err
	}
	if err := f.session.Bundles.Update(ctx, id, b.Manifest()); err != nil {
		return err
	}
	return f.commitChange(ctx, domain.KindBundle, id, true)
}

// FetchDocumentsBundleManifest returns the bundle's current manifest snapshot.
func (f *Facade) FetchDocumentsBundleManifest(ctx context.Context, id string) (domain.DocumentsBundleManifest, error) {
	return f.session.Bundles.Fetch(ctx, id)
}

func (f *Facade) mutateBundle(ctx context.Context, id string, mutate func(*domain.DocumentsBundle) error) (domain.DocumentsBundleManifest, error) {
	m, err := f.session.Bundles.Fetch(ctx, id)
	if err != nil {
		return domain.DocumentsBundleManifest{}, err
	}
	b := domain.DocumentsBundleFromManifest(m)
	if err := mutate(b); err != nil {
		return domain.DocumentsBundleManifest{}, err
	}
	manifest := b.Manifest()
	if err := f.session.Bundles.Update(ctx, id, manifest); err != nil {
		return domain.DocumentsBundleManifest{}, err
	}
	if err := f.commitChange(ctx, domain.KindBundle, id, false); err != nil {
		return manifest, err
	}
	return manifest, nil
}
