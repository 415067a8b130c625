package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_NewVersion_DeclaresEmptySlots(t *testing.T) {
	d, err := CreateDocument("doc-1", Now())
	require.NoError(t, err)

	require.NoError(t, d.NewVersion("/rawfiles/0347.xml", []string{"gf01"}, nil, Now()))

	m := d.Manifest()
	require.Len(t, m.Versions, 1)
	assert.Equal(t, "/rawfiles/0347.xml", m.Versions[0].Data)
	assert.Contains(t, m.Versions[0].Assets, "gf01")
	assert.Empty(t, m.Versions[0].Assets["gf01"])
}

func TestDocument_NewAssetVersion_BindsAndRebinds(t *testing.T) {
	d, err := CreateDocument("doc-1", Now())
	require.NoError(t, err)
	require.NoError(t, d.NewVersion("/rawfiles/0347.xml", []string{"gf01"}, nil, Now()))

	require.NoError(t, d.NewAssetVersion("gf01", "/rawfiles/gf01.jpg", Now()))
	require.NoError(t, d.NewAssetVersion("gf01", "/rawfiles/gf01-v2.jpg", Now()))

	m := d.Manifest()
	assert.Len(t, m.Versions[0].Assets["gf01"], 2)
	assert.Equal(t, "/rawfiles/gf01-v2.jpg", m.Versions[0].Assets["gf01"][1].URI)
}

func TestDocument_NewAssetVersion_SameURIIsNoop(t *testing.T) {
	d, err := CreateDocument("doc-1", Now())
	require.NoError(t, err)
	require.NoError(t, d.NewVersion("/rawfiles/0347.xml", []string{"gf01"}, nil, Now()))
	require.NoError(t, d.NewAssetVersion("gf01", "/rawfiles/gf01.jpg", Now()))

	before := d.Manifest()
	require.NoError(t, d.NewAssetVersion("gf01", "/rawfiles/gf01.jpg", Now()))
	after := d.Manifest()

	assert.Equal(t, before, after)
	assert.Len(t, d.History(), 3) // create + new_version + first asset_version; the repeat adds no fourth event
}

func TestDocument_NewAssetVersion_UnknownSlot(t *testing.T) {
	d, err := CreateDocument("doc-1", Now())
	require.NoError(t, err)
	require.NoError(t, d.NewVersion("/rawfiles/0347.xml", []string{"gf01"}, nil, Now()))

	err = d.NewAssetVersion("unknown", "/rawfiles/x.jpg", Now())
	assert.ErrorIs(t, err, ErrAssetSlotUnknown)
}

func TestDocument_OlderVersionsAreFrozen(t *testing.T) {
	d, err := CreateDocument("doc-1", Now())
	require.NoError(t, err)
	require.NoError(t, d.NewVersion("/rawfiles/v1.xml", []string{"gf01"}, nil, Now()))
	require.NoError(t, d.NewAssetVersion("gf01", "/rawfiles/gf01.jpg", Now()))
	v1Before := d.Manifest().Versions[0]

	require.NoError(t, d.NewVersion("/rawfiles/v2.xml", []string{"gf01"}, nil, Now()))
	require.NoError(t, d.NewAssetVersion("gf01", "/rawfiles/gf01-v2.jpg", Now()))

	v1After := d.Manifest().Versions[0]
	assert.Equal(t, v1Before, v1After)

	err = d.NewAssetVersion("gf01", "/rawfiles/should-fail.jpg", Now())
	assert.NoError(t, err) // binds against the *latest* version, not v1
}

func TestDocument_VersionByIndex(t *testing.T) {
	d, err := CreateDocument("doc-1", Now())
	require.NoError(t, err)
	require.NoError(t, d.NewVersion("/rawfiles/v1.xml", nil, nil, Now()))
	require.NoError(t, d.NewVersion("/rawfiles/v2.xml", nil, nil, Now()))

	v1, err := d.VersionByIndex(1)
	require.NoError(t, err)
	assert.Equal(t, "/rawfiles/v1.xml", v1.Data)

	latest, err := d.VersionByIndex(0)
	require.NoError(t, err)
	assert.Equal(t, "/rawfiles/v2.xml", latest.Data)

	_, err = d.VersionByIndex(5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDocument_VersionAt_TruncatesAssetHistory(t *testing.T) {
	d, err := CreateDocument("doc-1", Now())
	require.NoError(t, err)

	t0 := Now()
	require.NoError(t, d.NewVersion("/rawfiles/v1.xml", []string{"gf01"}, nil, t0))

	t1 := NewTimestamp(t0.Time().Add(time.Minute))
	require.NoError(t, d.NewAssetVersion("gf01", "/rawfiles/gf01.jpg", t1))

	t2 := NewTimestamp(t0.Time().Add(2 * time.Minute))
	require.NoError(t, d.NewAssetVersion("gf01", "/rawfiles/gf01-v2.jpg", t2))

	atT0, err := d.VersionAt(t0)
	require.NoError(t, err)
	assert.Empty(t, atT0.Assets["gf01"])

	atT1, err := d.VersionAt(t1)
	require.NoError(t, err)
	require.Len(t, atT1.Assets["gf01"], 1)
	assert.Equal(t, "/rawfiles/gf01.jpg", atT1.Assets["gf01"][0].URI)

	atT2, err := d.VersionAt(t2)
	require.NoError(t, err)
	require.Len(t, atT2.Assets["gf01"], 2)
}

func TestDocument_Versions_MonotonicTimestamps(t *testing.T) {
	d, err := CreateDocument("doc-1", Now())
	require.NoError(t, err)
	t0 := Now()
	t1 := NewTimestamp(t0.Time().Add(time.Second))
	require.NoError(t, d.NewVersion("/rawfiles/v1.xml", nil, nil, t0))
	require.NoError(t, d.NewVersion("/rawfiles/v2.xml", nil, nil, t1))

	m := d.Manifest()
	for i := 1; i < len(m.Versions); i++ {
		assert.False(t, m.Versions[i].Timestamp.Before(m.Versions[i-1].Timestamp))
	}
}

func TestDocument_NewVersion_IdenticalIsVersionAlreadyExists(t *testing.T) {
	d, err := CreateDocument("doc-1", Now())
	require.NoError(t, err)
	require.NoError(t, d.NewVersion("/rawfiles/v1.xml", []string{"gf01"}, nil, Now()))

	err = d.NewVersion("/rawfiles/v1.xml", []string{"gf01"}, nil, Now())
	assert.ErrorIs(t, err, ErrVersionAlreadyExists)
}

func TestDocument_Delete_MarksDeleted(t *testing.T) {
	d, err := CreateDocument("doc-1", Now())
	require.NoError(t, err)

	require.NoError(t, d.Delete(Now()))
	m := d.Manifest()
	assert.True(t, m.Deleted)

	err = d.Delete(Now())
	assert.ErrorIs(t, err, ErrAlreadyDeleted)
}

func TestDocument_ReplayFromHistory(t *testing.T) {
	d, err := CreateDocument("doc-1", Now())
	require.NoError(t, err)
	require.NoError(t, d.NewVersion("/rawfiles/v1.xml", []string{"gf01"}, []string{"pdf-en"}, Now()))
	require.NoError(t, d.NewAssetVersion("gf01", "/rawfiles/gf01.jpg", Now()))
	require.NoError(t, d.NewRenditionVersion("pdf-en", "/rawfiles/en.pdf", Now()))

	replayed, err := NewDocument("doc-1", d.History())
	require.NoError(t, err)
	assert.Equal(t, d.Manifest(), replayed.Manifest())
}
