package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lbianchi/customgpt-go/internal/chat"
)

func sampleMessages() []chat.Message {
	return []chat.Message{
		{
			Role:      chat.RoleUser,
			Content:   chat.Content{Text: "hello"},
			Timestamp: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			Role: chat.RoleUser,
			Content: chat.Content{Parts: []chat.Part{
				{Type: chat.PartText, Text: "what is this?"},
				{Type: chat.PartImage, MediaType: "image/jpeg", Data: "aGVsbG8=", Detail: "high"},
			}},
			Timestamp: time.Date(2025, 3, 1, 10, 0, 1, 0, time.UTC),
		},
		{
			Role:      chat.RoleAssistant,
			Content:   chat.Content{Text: "a red square"},
			Timestamp: time.Date(2025, 3, 1, 10, 0, 2, 0, time.UTC),
		},
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	store := NewFileStore(path, false)

	msgs := sampleMessages()
	require.NoError(t, store.Save(msgs))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, msgs, loaded)
}

func TestFileStore_NeverWrittenIsEmpty(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "missing.json"), false)
	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Empty(t, loaded)
}

func TestFileStore_CorruptIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStore(path, false).Load()
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, "load", perr.Op)
}

func TestFileStore_LoadsLegacyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	legacy := `[
  {"role": "user", "content": "hello", "timestamp": "2024-06-01T10:20:30.123456"},
  {"role": "assistant", "content": "hi", "timestamp": "2024-06-01T10:20:31.000001"}
]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	loaded, err := NewFileStore(path, false).Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	require.Equal(t, chat.RoleUser, loaded[0].Role)
	require.Equal(t, "hello", loaded[0].Content.Text)
}

func TestFileStore_SaveWritesVersionedEnvelope(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	store := NewFileStore(path, false)
	require.NoError(t, store.Save(sampleMessages()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"version": 1`)
}

func TestFileStore_RejectsFutureSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 99, "messages": []}`), 0o644))

	_, err := NewFileStore(path, false).Load()
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
}

func TestFileStore_ClearRotatesBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.json")
	store := NewFileStore(path, true)

	require.NoError(t, store.Save(sampleMessages()))
	require.NoError(t, store.Clear())

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, loaded)

	backups, err := filepath.Glob(path + ".*.bak")
	require.NoError(t, err)
	require.Len(t, backups, 1)

	old, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	require.Contains(t, string(old), "hello")
}

func TestFileStore_ClearWithoutBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.json")
	store := NewFileStore(path, false)

	require.NoError(t, store.Save(sampleMessages()))
	require.NoError(t, store.Clear())

	backups, err := filepath.Glob(path + ".*.bak")
	require.NoError(t, err)
	require.Empty(t, backups)
}
