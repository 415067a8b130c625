package gormstore

import (
	"context"
	"errors"

	"github.com/kernelapp/kernel/internal/domain"
	"gorm.io/gorm"
)

// row is the subset of behavior every *Record type in this package shares:
// a primary key, a manifest payload, and an optimistic-concurrency token.
type row interface {
	JournalRecord | BundleRecord | DocumentRecord
}

// entityStore is a gorm-backed store.DataStore[M] implementation shared by
// the journals, documents_bundles and documents tables. R is the row type,
// M is the manifest type it carries.
type entityStore[R row, M any] struct {
	db      *gorm.DB
	newRow  func(id string, manifest []byte) R
	rowData func(R) []byte
}

func (s *entityStore[R, M]) Add(ctx context.Context, id string, manifest M) error {
	data, err := marshalManifest(manifest)
	if err != nil {
		return err
	}
	rec := s.newRow(id, data)
	err = s.db.WithContext(ctx).Create(&rec).Error
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return wrapTransient(err)
	}
	return nil
}

func (s *entityStore[R, M]) Update(ctx context.Context, id string, manifest M) error {
	data, err := marshalManifest(manifest)
	if err != nil {
		return err
	}
	result := s.db.WithContext(ctx).
		Model(new(R)).
		Where("id = ?", id).
		Updates(map[string]any{
			"manifest": data,
			"version":  gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return wrapTransient(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *entityStore[R, M]) Fetch(ctx context.Context, id string) (M, error) {
	var rec R
	var zero M
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, domain.ErrNotFound
		}
		return zero, wrapTransient(err)
	}
	return unmarshalManifest[M](s.rowData(rec))
}

func (s *entityStore[R, M]) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(new(R))
	if result.Error != nil {
		return wrapTransient(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func newJournalStore(db *gorm.DB) *entityStore[JournalRecord, domain.JournalManifest] {
	return &entityStore[JournalRecord, domain.JournalManifest]{
		db:      db,
		newRow:  func(id string, data []byte) JournalRecord { return JournalRecord{ID: id, Manifest: data, Version: 1} },
		rowData: func(r JournalRecord) []byte { return r.Manifest },
	}
}

func newBundleStore(db *gorm.DB) *entityStore[BundleRecord, domain.DocumentsBundleManifest] {
	return &entityStore[BundleRecord, domain.DocumentsBundleManifest]{
		db:      db,
		newRow:  func(id string, data []byte) BundleRecord { return BundleRecord{ID: id, Manifest: data, Version: 1} },
		rowData: func(r BundleRecord) []byte { return r.Manifest },
	}
}

func newDocumentStore(db *gorm.DB) *entityStore[DocumentRecord, domain.DocumentManifest] {
	return &entityStore[DocumentRecord, domain.DocumentManifest]{
		db:      db,
		newRow:  func(id string, data []byte) DocumentRecord { return DocumentRecord{ID: id, Manifest: data, Version: 1} },
		rowData: func(r DocumentRecord) []byte { return r.Manifest },
	}
}
