package gormstore

import (
	"context"
	"testing"
	"time"

	"github.com/kernelapp/kernel/internal/domain"
	"github.com/kernelapp/kernel/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(DialectSQLite, ":memory:")
	require.NoError(t, err)
	return db
}

func TestJournalStore_AddFetchUpdateDelete(t *testing.T) {
	db := newTestDB(t)
	s := newJournalStore(db)
	ctx := context.Background()

	manifest := domain.JournalManifest{ID: "j1", Metadata: map[string]any{"title": "Acta"}}
	require.NoError(t, s.Add(ctx, "j1", manifest))

	got, err := s.Fetch(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, "j1", got.ID)
	assert.Equal(t, "Acta", got.Metadata["title"])

	err = s.Add(ctx, "j1", manifest)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	manifest.Metadata["title"] = "Acta Scientiarum"
	require.NoError(t, s.Update(ctx, "j1", manifest))
	got, err = s.Fetch(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, "Acta Scientiarum", got.Metadata["title"])

	require.NoError(t, s.Delete(ctx, "j1"))
	_, err = s.Fetch(ctx, "j1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJournalStore_FetchMissing(t *testing.T) {
	db := newTestDB(t)
	s := newJournalStore(db)

	_, err := s.Fetch(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJournalStore_UpdateMissing(t *testing.T) {
	db := newTestDB(t)
	s := newJournalStore(db)

	err := s.Update(context.Background(), "nope", domain.JournalManifest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChangeStore_FilterOrdersByTimestampAscending(t *testing.T) {
	db := newTestDB(t)
	cs := newChangeStore(db)
	ctx := context.Background()

	base := domain.Now()
	ids := []string{"j3", "j1", "j2"}
	for i, id := range ids {
		ts := domain.NewTimestamp(base.Time().Add(time.Duration(i) * time.Millisecond))
		require.NoError(t, cs.Add(ctx, domain.ChangeEvent{Timestamp: ts, Entity: domain.KindJournal, ID: id}))
	}

	events, err := cs.Filter(ctx, nil, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	for i, id := range ids {
		assert.Equal(t, id, events[i].ID)
	}

	mid := domain.NewTimestamp(base.Time().Add(500 * time.Microsecond))
	since, err := cs.Filter(ctx, &mid, 10)
	require.NoError(t, err)
	assert.Len(t, since, 2)
}

func TestChangeStore_FilterDefaultsLimitTo500(t *testing.T) {
	db := newTestDB(t)
	cs := newChangeStore(db)
	ctx := context.Background()

	base := domain.Now()
	for i := 0; i < 5; i++ {
		ts := domain.NewTimestamp(base.Time().Add(time.Duration(i) * time.Millisecond))
		require.NoError(t, cs.Add(ctx, domain.ChangeEvent{Timestamp: ts, Entity: domain.KindJournal, ID: "j"}))
	}

	events, err := cs.Filter(ctx, nil, 0)
	require.NoError(t, err)
	assert.Len(t, events, 5)

	events, err = cs.Filter(ctx, nil, -1)
	require.NoError(t, err)
	assert.Len(t, events, 5)
}

func TestSession_WrapsHandlesWithRetry(t *testing.T) {
	db := newTestDB(t)
	sess := NewSession(db, store.DefaultRetryConfig())

	ctx := context.Background()
	require.NoError(t, sess.Journals.Add(ctx, "j1", domain.JournalManifest{ID: "j1"}))
	got, err := sess.Journals.Fetch(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, "j1", got.ID)

	require.NoError(t, sess.Changes.Add(ctx, domain.ChangeEvent{Timestamp: domain.Now(), Entity: domain.KindJournal, ID: "j1"}))
	changes, err := sess.Changes.Filter(ctx, nil, 10)
	require.NoError(t, err)
	assert.Len(t, changes, 1)
}
