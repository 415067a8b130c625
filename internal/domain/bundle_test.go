package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentsBundle_AddDocumentTwiceIsNoop(t *testing.T) {
	b, err := CreateDocumentsBundle("bundle-1", nil, Now())
	require.NoError(t, err)

	require.NoError(t, b.AddItem(ItemRef{ID: "d1"}, Now()))
	require.NoError(t, b.AddItem(ItemRef{ID: "d1"}, Now()))

	m := b.Manifest()
	require.Len(t, m.Items, 1)
	assert.Equal(t, "d1", m.Items[0].ID)
}

func TestDocumentsBundle_InsertAtPosition(t *testing.T) {
	b, err := CreateDocumentsBundle("bundle-1", nil, Now())
	require.NoError(t, err)

	require.NoError(t, b.AddItem(ItemRef{ID: "d1"}, Now()))
	require.NoError(t, b.AddItem(ItemRef{ID: "d3"}, Now()))
	require.NoError(t, b.InsertItem(1, ItemRef{ID: "d2"}, Now()))

	m := b.Manifest()
	require.Len(t, m.Items, 3)
	assert.Equal(t, []string{"d1", "d2", "d3"}, []string{m.Items[0].ID, m.Items[1].ID, m.Items[2].ID})
}

func TestDocumentsBundle_RemoveItem(t *testing.T) {
	b, err := CreateDocumentsBundle("bundle-1", nil, Now())
	require.NoError(t, err)
	require.NoError(t, b.AddItem(ItemRef{ID: "d1"}, Now()))

	require.NoError(t, b.RemoveItem("d1", Now()))
	assert.Empty(t, b.Manifest().Items)
}
