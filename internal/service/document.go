package service

import (
	"context"
	"errors"

	"github.com/kernelapp/kernel/internal/domain"
)

// AssetBinding is one {slot, uri} pair from a PUT /documents/{id} payload's
// assets or renditions list.
type AssetBinding struct {
	Slot string
	URI  string
}

func slotsOf(bindings []AssetBinding) []string {
	slots := make([]string, len(bindings))
	for i, b := range bindings {
		slots[i] = b.Slot
	}
	return slots
}

func bindAll(d *domain.Document, bindings []AssetBinding, now domain.Timestamp, rendition bool) error {
	for _, b := range bindings {
		var err error
		if rendition {
			err = d.NewRenditionVersion(b.Slot, b.URI, now)
		} else {
			err = d.NewAssetVersion(b.Slot, b.URI, now)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// RegisterDocument creates a brand-new document with its first version.
// Fails with ErrAlreadyExists if id is already live or deleted.
func (f *Facade) RegisterDocument(ctx context.Context, id, dataURI string, assets, renditions []AssetBinding) (domain.DocumentManifest, error) {
	if _, err := f.session.Documents.Fetch(ctx, id); err == nil {
		return domain.DocumentManifest{}, domain.ErrAlreadyExists
	}

	now := f.now()
	d, err := domain.CreateDocument(id, now)
	if err != nil {
		return domain.DocumentManifest{}, err
	}
	if err := d.NewVersion(dataURI, slotsOf(assets), slotsOf(renditions), now); err != nil {
		return domain.DocumentManifest{}, err
	}
	if err := bindAll(d, assets, now, false); err != nil {
		return domain.DocumentManifest{}, err
	}
	if err := bindAll(d, renditions, now, true); err != nil {
		return domain.DocumentManifest{}, err
	}

	manifest := d.Manifest()
	if err := f.session.Documents.Add(ctx, id, manifest); err != nil {
		return domain.DocumentManifest{}, err
	}
	if err := f.commitChange(ctx, domain.KindDocument, id, false); err != nil {
		return manifest, err
	}
	return manifest, nil
}

// RegisterDocumentVersion appends a new version to an already-registered
// document. If dataURI and the declared slot set are identical to the
// current latest version, this is a no-op: the current manifest is returned
// unchanged and no change-log entry is appended.
func (f *Facade) RegisterDocumentVersion(ctx context.Context, id, dataURI string, assets, renditions []AssetBinding) (domain.DocumentManifest, error) {
	return f.mutateDocument(ctx, id, func(d *domain.Document) error {
		now := f.now()
		if err := d.NewVersion(dataURI, slotsOf(assets), slotsOf(renditions), now); err != nil {
			return err
		}
		if err := bindAll(d, assets, now, false); err != nil {
			return err
		}
		return bindAll(d, renditions, now, true)
	})
}

// RegisterAssetVersion binds uri into doc's latest version under slot. A
// no-op if uri already equals the slot's current tail value.
func (f *Facade) RegisterAssetVersion(ctx context.Context, docID, slot, uri string) (domain.DocumentManifest, error) {
	return f.mutateDocument(ctx, docID, func(d *domain.Document) error {
		return d.NewAssetVersion(slot, uri, f.now())
	})
}

// RegisterRenditionVersion is RegisterAssetVersion's counterpart for the
// renditions section.
func (f *Facade) RegisterRenditionVersion(ctx context.Context, docID, slot, uri string) (domain.DocumentManifest, error) {
	return f.mutateDocument(ctx, docID, func(d *domain.Document) error {
		return d.NewRenditionVersion(slot, uri, f.now())
	})
}

// DeleteDocument marks the document deleted. History is preserved.
func (f *Facade) DeleteDocument(ctx context.Context, id string) error {
	m, err := f.session.Documents.Fetch(ctx, id)
	if err != nil {
		return err
	}
	d := domain.DocumentFromManifest(m)
	if err := d.Delete(f.now()); err != nil {
		return err
	}
	if err := f.session.Documents.Update(ctx, id, d.Manifest()); err != nil {
		return err
	}
	return f.commitChange(ctx, domain.KindDocument, id, true)
}

// FetchDocumentManifest returns the document's current manifest snapshot.
func (f *Facade) FetchDocumentManifest(ctx context.Context, id string) (domain.DocumentManifest, error) {
	return f.session.Documents.Fetch(ctx, id)
}

// FetchDocumentData returns one version of the document: by 1-indexed
// position when versionAt is nil, or as of a specific instant otherwise.
func (f *Facade) FetchDocumentData(ctx context.Context, id string, versionIndex int, versionAt *domain.Timestamp) (domain.DocumentVersion, error) {
	m, err := f.session.Documents.Fetch(ctx, id)
	if err != nil {
		return domain.DocumentVersion{}, err
	}
	d := domain.DocumentFromManifest(m)
	if versionAt != nil {
		return d.VersionAt(*versionAt)
	}
	return d.VersionByIndex(versionIndex)
}

// FetchAssetsList returns the asset slot map for one version of the
// document, selected the same way as FetchDocumentData.
func (f *Facade) FetchAssetsList(ctx context.Context, id string, versionIndex int, versionAt *domain.Timestamp) (map[string][]domain.AssetEntry, error) {
	v, err := f.FetchDocumentData(ctx, id, versionIndex, versionAt)
	if err != nil {
		return nil, err
	}
	return v.Assets, nil
}

// mutateDocument fetches id, applies mutate, and persists the result unless
// mutate reports the mutation was a no-op: either by returning
// ErrVersionAlreadyExists (translated into success per the idempotence
// policy) or by leaving the reconstructed document's event history empty
// (the asset/rendition rebind no-op case).
func (f *Facade) mutateDocument(ctx context.Context, id string, mutate func(*domain.Document) error) (domain.DocumentManifest, error) {
	m, err := f.session.Documents.Fetch(ctx, id)
	if err != nil {
		return domain.DocumentManifest{}, err
	}
	d := domain.DocumentFromManifest(m)
	if err := mutate(d); err != nil {
		if errors.Is(err, domain.ErrVersionAlreadyExists) {
			return m, nil
		}
		return domain.DocumentManifest{}, err
	}
	if len(d.History()) == 0 {
		return m, nil
	}
	manifest := d.Manifest()
	if err := f.session.Documents.Update(ctx, id, manifest); err != nil {
		return domain.DocumentManifest{}, err
	}
	if err := f.commitChange(ctx, domain.KindDocument, id, false); err != nil {
		return manifest, err
	}
	return manifest, nil
}
