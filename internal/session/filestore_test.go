package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileTokenStore_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "subdir", "nested", "session.json")

	store, err := NewFileTokenStore(path)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, path, store.Path())
}

func TestNewFileTokenStore_RequiresPath(t *testing.T) {
	_, err := NewFileTokenStore("")
	assert.Error(t, err)
}

func TestFileTokenStore_LoadMissingFile(t *testing.T) {
	store := newFileStore(t)

	tok, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestFileTokenStore_SaveAndLoad(t *testing.T) {
	store := newFileStore(t)
	fixed := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	require.NoError(t, store.Save("abc"))

	tok, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	var tf tokenFile
	require.NoError(t, json.Unmarshal(data, &tf))
	assert.Equal(t, tokenFileVersion, tf.Version)
	assert.True(t, fixed.Equal(tf.SavedAt))

	_, err = os.Stat(store.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must not linger")
}

func TestFileTokenStore_SaveOverwrites(t *testing.T) {
	store := newFileStore(t)

	require.NoError(t, store.Save("first"))
	require.NoError(t, store.Save("second"))

	tok, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "second", tok)
}

func TestFileTokenStore_Delete(t *testing.T) {
	store := newFileStore(t)
	require.NoError(t, store.Save("abc"))

	require.NoError(t, store.Delete())
	require.NoError(t, store.Delete(), "deleting twice is a no-op")

	tok, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestFileTokenStore_EmptyFile(t *testing.T) {
	store := newFileStore(t)
	require.NoError(t, os.WriteFile(store.Path(), nil, 0600))

	tok, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestFileTokenStore_Corrupted(t *testing.T) {
	store := newFileStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0600))

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrStoreCorrupted)
}

func TestFileTokenStore_FutureVersion(t *testing.T) {
	store := newFileStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte(`{"version": 99, "token": "x"}`), 0600))

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrStoreCorrupted)
}
