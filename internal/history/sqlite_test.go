package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	store := newSQLite(t)

	msgs := sampleMessages()
	require.NoError(t, store.Save(msgs))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, msgs, loaded)
}

func TestSQLiteStore_EmptyDatabase(t *testing.T) {
	store := newSQLite(t)
	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Empty(t, loaded)
}

func TestSQLiteStore_SaveIsFullOverwrite(t *testing.T) {
	store := newSQLite(t)

	require.NoError(t, store.Save(sampleMessages()))
	require.NoError(t, store.Save(sampleMessages()[:1]))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
}

func TestSQLiteStore_Clear(t *testing.T) {
	store := newSQLite(t)

	require.NoError(t, store.Save(sampleMessages()))
	require.NoError(t, store.Clear())

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, loaded)
}
