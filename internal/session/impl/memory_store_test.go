package impl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_GetSeesOwnBufferedWrites(t *testing.T) {
	store := MakeMemoryStore()
	require.NoError(t, store.Set("k", "v"))

	v, found, err := store.Get("k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", v)
}

func TestMemoryStore_SavePersists(t *testing.T) {
	store := MakeMemoryStore()
	require.NoError(t, store.Set("k", "v"))
	require.NoError(t, store.Save())

	store.Discard()
	v, found, err := store.Get("k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", v)
}

func TestMemoryStore_DiscardDropsUnsavedWrites(t *testing.T) {
	store := MakeMemoryStore()
	require.NoError(t, store.Set("k", "v"))
	store.Discard()

	_, found, err := store.Get("k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_RemoveShadowsCommittedValue(t *testing.T) {
	store := MakeMemoryStore()
	require.NoError(t, store.Set("k", "v"))
	require.NoError(t, store.Save())

	require.NoError(t, store.Remove("k"))
	_, found, err := store.Get("k")
	require.NoError(t, err)
	assert.False(t, found, "buffered remove hides the committed value")

	// Until Save, the committed value survives a crash.
	store.Discard()
	_, found, err = store.Get("k")
	require.NoError(t, err)
	assert.True(t, found)

	require.NoError(t, store.Remove("k"))
	require.NoError(t, store.Save())
	_, found, err = store.Get("k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_SetAfterRemoveWins(t *testing.T) {
	store := MakeMemoryStore()
	require.NoError(t, store.Remove("k"))
	require.NoError(t, store.Set("k", "v2"))
	require.NoError(t, store.Save())

	v, found, err := store.Get("k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v2", v)
}
