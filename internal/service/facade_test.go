package service

import (
	"context"
	"testing"

	"github.com/kernelapp/kernel/internal/domain"
	"github.com/kernelapp/kernel/internal/gormstore"
	"github.com/kernelapp/kernel/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFacade(t *testing.T) *Facade {
	t.Helper()
	db, err := gormstore.Open(gormstore.DialectSQLite, ":memory:")
	require.NoError(t, err)
	session := gormstore.NewSession(db, store.DefaultRetryConfig())
	return NewFacade(session)
}

func TestFacade_CreateJournal_RejectsDuplicateID(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	_, err := f.CreateJournal(ctx, "j1", map[string]any{"title": "Acta"})
	require.NoError(t, err)

	_, err = f.CreateJournal(ctx, "j1", nil)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestFacade_JournalMetadataRoundTrip(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	_, err := f.CreateJournal(ctx, "j1", nil)
	require.NoError(t, err)

	m, err := f.SetJournalMetadata(ctx, "j1", "title", "Acta Scientiarum")
	require.NoError(t, err)
	assert.Equal(t, "Acta Scientiarum", m.Metadata["title"])

	m, err = f.ClearJournalMetadata(ctx, "j1", "title")
	require.NoError(t, err)
	_, ok := m.Metadata["title"]
	assert.False(t, ok)
}

func TestFacade_AddDocumentsBundleToJournal_IdempotentOnDuplicate(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	_, err := f.CreateJournal(ctx, "j1", nil)
	require.NoError(t, err)
	_, err = f.CreateDocumentsBundle(ctx, "b1", nil)
	require.NoError(t, err)

	_, err = f.AddDocumentsBundleToJournal(ctx, "j1", "b1", nil)
	require.NoError(t, err)
	m, err := f.AddDocumentsBundleToJournal(ctx, "j1", "b1", nil)
	require.NoError(t, err)
	assert.Len(t, m.Items, 1)
}

func TestFacade_AddDocumentsBundleToJournal_RejectsUnknownBundle(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	_, err := f.CreateJournal(ctx, "j1", nil)
	require.NoError(t, err)

	_, err = f.AddDocumentsBundleToJournal(ctx, "j1", "nope", nil)
	assert.ErrorIs(t, err, domain.ErrUnknownReference)
}

func TestFacade_InsertDocumentsBundleIntoJournal_RejectsUnknownBundle(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	_, err := f.CreateJournal(ctx, "j1", nil)
	require.NoError(t, err)

	_, err = f.InsertDocumentsBundleIntoJournal(ctx, "j1", 0, "nope", nil)
	assert.ErrorIs(t, err, domain.ErrUnknownReference)
}

func TestFacade_DeleteJournal_PreventsFurtherWrites(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	_, err := f.CreateJournal(ctx, "j1", nil)
	require.NoError(t, err)
	require.NoError(t, f.DeleteJournal(ctx, "j1"))

	err = f.DeleteJournal(ctx, "j1")
	assert.ErrorIs(t, err, domain.ErrAlreadyDeleted)

	_, err = f.SetJournalMetadata(ctx, "j1", "title", "Acta")
	assert.ErrorIs(t, err, domain.ErrAlreadyDeleted)
}

func TestFacade_AddDocumentToDocumentsBundle_TwiceIsNoop(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	_, err := f.CreateDocumentsBundle(ctx, "b1", nil)
	require.NoError(t, err)
	_, err = f.RegisterDocument(ctx, "d1", "http://x/d1.xml", nil, nil)
	require.NoError(t, err)

	_, err = f.AddDocumentToDocumentsBundle(ctx, "b1", "d1", nil)
	require.NoError(t, err)
	m, err := f.AddDocumentToDocumentsBundle(ctx, "b1", "d1", nil)
	require.NoError(t, err)
	assert.Len(t, m.Items, 1)
}

func TestFacade_AddDocumentToDocumentsBundle_RejectsUnknownDocument(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	_, err := f.CreateDocumentsBundle(ctx, "b1", nil)
	require.NoError(t, err)

	_, err = f.AddDocumentToDocumentsBundle(ctx, "b1", "nope", nil)
	assert.ErrorIs(t, err, domain.ErrUnknownReference)
}

func TestFacade_InsertDocumentToDocumentsBundle_RejectsDuplicate(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	_, err := f.CreateDocumentsBundle(ctx, "b1", nil)
	require.NoError(t, err)
	_, err = f.RegisterDocument(ctx, "d1", "http://x/d1.xml", nil, nil)
	require.NoError(t, err)
	_, err = f.AddDocumentToDocumentsBundle(ctx, "b1", "d1", nil)
	require.NoError(t, err)

	_, err = f.InsertDocumentToDocumentsBundle(ctx, "b1", 0, "d1", nil)
	assert.ErrorIs(t, err, domain.ErrDuplicateReference)
}

func TestFacade_InsertDocumentToDocumentsBundle_RejectsUnknownDocument(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	_, err := f.CreateDocumentsBundle(ctx, "b1", nil)
	require.NoError(t, err)

	_, err = f.InsertDocumentToDocumentsBundle(ctx, "b1", 0, "nope", nil)
	assert.ErrorIs(t, err, domain.ErrUnknownReference)
}

func TestFacade_RegisterDocument_CreatesFirstVersionWithAssets(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	m, err := f.RegisterDocument(ctx, "d1", "http://x/d1.xml",
		[]AssetBinding{{Slot: "gf01", URI: "http://x/gf01.jpg"}}, nil)
	require.NoError(t, err)
	require.Len(t, m.Versions, 1)
	assert.Len(t, m.Versions[0].Assets["gf01"], 1)
	assert.Equal(t, "http://x/gf01.jpg", m.Versions[0].Assets["gf01"][0].URI)
}

func TestFacade_RegisterDocument_RejectsDuplicateID(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	_, err := f.RegisterDocument(ctx, "d1", "http://x/d1.xml", nil, nil)
	require.NoError(t, err)

	_, err = f.RegisterDocument(ctx, "d1", "http://x/d1-v2.xml", nil, nil)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestFacade_RegisterAssetVersion_RebindSameURIIsNoopAndLeavesFeedUntouched(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	_, err := f.RegisterDocument(ctx, "d1", "http://x/d1.xml",
		[]AssetBinding{{Slot: "gf01", URI: "http://x/gf01.jpg"}}, nil)
	require.NoError(t, err)

	before, err := f.FetchChanges(ctx, nil, 100)
	require.NoError(t, err)

	m, err := f.RegisterAssetVersion(ctx, "d1", "gf01", "http://x/gf01.jpg")
	require.NoError(t, err)
	assert.Len(t, m.Versions[0].Assets["gf01"], 1)

	after, err := f.FetchChanges(ctx, nil, 100)
	require.NoError(t, err)
	assert.Equal(t, len(before), len(after))
}

func TestFacade_RegisterAssetVersion_NewURIAppendsAndChangeFeedGrows(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	_, err := f.RegisterDocument(ctx, "d1", "http://x/d1.xml",
		[]AssetBinding{{Slot: "gf01", URI: "http://x/gf01.jpg"}}, nil)
	require.NoError(t, err)

	m, err := f.RegisterAssetVersion(ctx, "d1", "gf01", "http://x/gf01-v2.jpg")
	require.NoError(t, err)
	assert.Len(t, m.Versions[0].Assets["gf01"], 2)

	changes, err := f.FetchChanges(ctx, nil, 100)
	require.NoError(t, err)
	assert.Len(t, changes, 2)
	assert.True(t, changes[1].Timestamp.After(changes[0].Timestamp) || changes[1].Timestamp == changes[0].Timestamp)
}

func TestFacade_RegisterAssetVersion_UnknownSlotRejected(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	_, err := f.RegisterDocument(ctx, "d1", "http://x/d1.xml", nil, nil)
	require.NoError(t, err)

	_, err = f.RegisterAssetVersion(ctx, "d1", "nope", "http://x/nope.jpg")
	assert.ErrorIs(t, err, domain.ErrAssetSlotUnknown)
}

func TestFacade_RegisterDocumentVersion_IdenticalIsNoopWithNoNewChangeEntry(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	_, err := f.RegisterDocument(ctx, "d1", "http://x/d1.xml",
		[]AssetBinding{{Slot: "gf01", URI: "http://x/gf01.jpg"}}, nil)
	require.NoError(t, err)

	before, err := f.FetchChanges(ctx, nil, 100)
	require.NoError(t, err)

	m, err := f.RegisterDocumentVersion(ctx, "d1", "http://x/d1.xml",
		[]AssetBinding{{Slot: "gf01", URI: "http://x/gf01-ignored.jpg"}}, nil)
	require.NoError(t, err)
	assert.Len(t, m.Versions, 1)

	after, err := f.FetchChanges(ctx, nil, 100)
	require.NoError(t, err)
	assert.Equal(t, len(before), len(after))
}

func TestFacade_FetchDocumentData_ByIndexAndByTimestamp(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	_, err := f.RegisterDocument(ctx, "d1", "http://x/d1.xml", nil, nil)
	require.NoError(t, err)
	firstFetch, err := f.FetchDocumentManifest(ctx, "d1")
	require.NoError(t, err)
	firstTS := firstFetch.Versions[0].Timestamp

	_, err = f.RegisterDocumentVersion(ctx, "d1", "http://x/d1-v2.xml", nil, nil)
	require.NoError(t, err)

	latest, err := f.FetchDocumentData(ctx, "d1", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://x/d1-v2.xml", latest.Data)

	first, err := f.FetchDocumentData(ctx, "d1", 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://x/d1.xml", first.Data)

	atFirst, err := f.FetchDocumentData(ctx, "d1", 0, &firstTS)
	require.NoError(t, err)
	assert.Equal(t, "http://x/d1.xml", atFirst.Data)
}

func TestFacade_DiffJournalVersions_ReportsItemAndMetadataChanges(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	before, err := f.CreateJournal(ctx, "j1", map[string]any{"title": "Acta"})
	require.NoError(t, err)
	_, err = f.CreateDocumentsBundle(ctx, "b1", nil)
	require.NoError(t, err)

	after, err := f.SetJournalMetadata(ctx, "j1", "title", "Acta II")
	require.NoError(t, err)
	after, err = f.AddDocumentsBundleToJournal(ctx, "j1", "b1", nil)
	require.NoError(t, err)

	entries := f.DiffJournalVersions(before, after)
	var sawMetadata, sawItem bool
	for _, e := range entries {
		if e.Kind == DiffMetadataChanged && e.Key == "title" {
			sawMetadata = true
		}
		if e.Kind == DiffItemAdded && e.Key == "b1" {
			sawItem = true
		}
	}
	assert.True(t, sawMetadata)
	assert.True(t, sawItem)
}

func TestFacade_FetchChanges_OrdersByTimestampAscending(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	_, err := f.CreateJournal(ctx, "j1", nil)
	require.NoError(t, err)
	_, err = f.CreateDocumentsBundle(ctx, "b1", nil)
	require.NoError(t, err)

	changes, err := f.FetchChanges(ctx, nil, 10)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, "j1", changes[0].ID)
	assert.Equal(t, "b1", changes[1].ID)
}
