package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal_CreateAndAddItem(t *testing.T) {
	now := Now()
	j, err := CreateJournal("jrn-1", map[string]any{"title": "Revista X"}, now)
	require.NoError(t, err)

	require.NoError(t, j.AddItem(ItemRef{ID: "b1", NS: []string{"2019", "v21", "n1"}}, Now()))

	m := j.Manifest()
	assert.Equal(t, "jrn-1", m.ID)
	assert.Equal(t, "Revista X", m.Metadata["title"])
	require.Len(t, m.Items, 1)
	assert.Equal(t, "b1", m.Items[0].ID)
	assert.Equal(t, []string{"2019", "v21", "n1"}, m.Items[0].NS)
}

func TestJournal_AddItem_DuplicateIsNoop(t *testing.T) {
	j, err := CreateJournal("jrn-1", nil, Now())
	require.NoError(t, err)

	require.NoError(t, j.AddItem(ItemRef{ID: "b1"}, Now()))
	before := j.Manifest()

	require.NoError(t, j.AddItem(ItemRef{ID: "b1"}, Now()))
	after := j.Manifest()

	assert.Equal(t, before.Items, after.Items)
	assert.Len(t, after.Items, 1)
}

func TestJournal_InsertItem_RejectsDuplicate(t *testing.T) {
	j, err := CreateJournal("jrn-1", nil, Now())
	require.NoError(t, err)
	require.NoError(t, j.AddItem(ItemRef{ID: "b1"}, Now()))

	err = j.InsertItem(0, ItemRef{ID: "b1"}, Now())
	assert.ErrorIs(t, err, ErrDuplicateReference)
}

func TestJournal_RemoveItem_UnknownReference(t *testing.T) {
	j, err := CreateJournal("jrn-1", nil, Now())
	require.NoError(t, err)

	err = j.RemoveItem("missing", Now())
	assert.ErrorIs(t, err, ErrUnknownReference)
}

func TestJournal_Delete_TwiceFails(t *testing.T) {
	j, err := CreateJournal("jrn-1", nil, Now())
	require.NoError(t, err)
	require.NoError(t, j.Delete(Now()))

	err = j.Delete(Now())
	assert.ErrorIs(t, err, ErrAlreadyDeleted)
}

func TestJournal_ReplayFromHistory(t *testing.T) {
	now := Now()
	j, err := CreateJournal("jrn-1", map[string]any{"title": "Revista X"}, now)
	require.NoError(t, err)
	require.NoError(t, j.AddItem(ItemRef{ID: "b1"}, Now()))
	require.NoError(t, j.SetMetadata("issn", "0034-8910", Now()))

	replayed, err := NewJournal("jrn-1", j.History())
	require.NoError(t, err)

	assert.Equal(t, j.Manifest(), replayed.Manifest())
}

func TestJournal_Metadata_SetAndClear(t *testing.T) {
	j, err := CreateJournal("jrn-1", nil, Now())
	require.NoError(t, err)

	require.NoError(t, j.SetMetadata("issn", "0034-8910", Now()))
	assert.Equal(t, "0034-8910", j.Manifest().Metadata["issn"])

	require.NoError(t, j.ClearMetadata("issn", Now()))
	_, present := j.Manifest().Metadata["issn"]
	assert.False(t, present)
}
