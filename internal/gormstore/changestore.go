package gormstore

import (
	"context"

	"github.com/kernelapp/kernel/internal/domain"
	"gorm.io/gorm"
)

// changeStore is the append-only feed backing store.ChangesDataStore,
// generalized from the teacher's ListVersions cursor pagination: instead of
// paging backwards by created_at DESC, the feed pages forwards by
// timestamp ASC so pull-based replication can resume from a since cursor.
type changeStore struct {
	db *gorm.DB
}

func newChangeStore(db *gorm.DB) *changeStore {
	return &changeStore{db: db}
}

func (s *changeStore) Add(ctx context.Context, change domain.ChangeEvent) error {
	rec := toChangeRecord(change)
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return wrapTransient(err)
	}
	return nil
}

func (s *changeStore) Filter(ctx context.Context, since *domain.Timestamp, limit int) ([]domain.ChangeEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 500
	}

	query := s.db.WithContext(ctx).Order("timestamp ASC, id ASC").Limit(limit)
	if since != nil {
		query = query.Where("timestamp > ?", since.Time())
	}

	var records []ChangeRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, wrapTransient(err)
	}

	out := make([]domain.ChangeEvent, len(records))
	for i, r := range records {
		out[i] = fromChangeRecord(r)
	}
	return out, nil
}
