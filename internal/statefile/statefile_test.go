package statefile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/pulse/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func TestStoreSaveAndLoad(t *testing.T) {
	clock := &contract.FixedClock{T: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)}
	store := New(filepath.Join(t.TempDir(), "state"), clock)

	require.NoError(t, store.Save("forecasts", sample{Name: "cost", Value: 1.5}))

	var got sample
	require.NoError(t, store.Load("forecasts", &got))
	assert.Equal(t, sample{Name: "cost", Value: 1.5}, got)

	doc, err := store.Read("forecasts")
	require.NoError(t, err)
	assert.Equal(t, clock.T, doc.LastUpdated)
	_, err = uuid.Parse(doc.RunID)
	assert.NoError(t, err)
}

func TestStoreRunIDChangesPerSave(t *testing.T) {
	store := New(t.TempDir(), nil)
	require.NoError(t, store.Save("models", sample{}))
	first, err := store.Read("models")
	require.NoError(t, err)

	require.NoError(t, store.Save("models", sample{}))
	second, err := store.Read("models")
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, second.RunID)

	doc, err := store.SaveRun("models", "fixed", sample{})
	require.NoError(t, err)
	assert.Equal(t, "fixed", doc.RunID)
}

func TestStoreMissingDocument(t *testing.T) {
	store := New(t.TempDir(), nil)
	var got sample
	assert.ErrorIs(t, store.Load("featured", &got), contract.ErrNotFound)
	assert.NoError(t, store.Remove("featured"))
}

func TestStoreCorruptDocument(t *testing.T) {
	store := New(t.TempDir(), nil)
	require.NoError(t, os.WriteFile(store.Path("artifacts"), []byte("{not json"), 0o644))

	var got sample
	err := store.Load("artifacts", &got)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, contract.ErrNotFound)
}

func TestWriteAtomicLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "predictions.json")

	for i := range 5 {
		require.NoError(t, WriteAtomic(path, []byte(strings.Repeat("x", i+1))))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "predictions.json", entries[0].Name())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "xxxxx", string(data))
}

func TestWriteAtomicBadDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := WriteAtomic(filepath.Join(blocker, "doc.json"), []byte("{}"))
	assert.Error(t, err)
}
