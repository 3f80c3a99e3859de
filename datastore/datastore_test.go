package datastore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	XP    int `json:"xp"`
	Level int `json:"level"`
}

func testConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig(filepath.Join(t.TempDir(), "nested", "data.json"))
	cfg.AutoSaveInterval = 0
	return cfg
}

func TestNewCreatesEmptyFile(t *testing.T) {
	cfg := testConfig(t)
	ds, err := NewWithConfig(cfg)
	require.NoError(t, err)
	defer ds.Close()

	data, err := os.ReadFile(cfg.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
	assert.Empty(t, ds.Keys())
}

func TestPutGetPersist(t *testing.T) {
	cfg := testConfig(t)
	ds, err := NewWithConfig(cfg)
	require.NoError(t, err)

	require.NoError(t, ds.Put("b", map[string]record{"u1": {XP: 10, Level: 1}}))
	require.NoError(t, ds.Put("a", 42))
	assert.Equal(t, []string{"a", "b"}, ds.Keys())

	var n int
	ok, err := ds.Get("a", &n)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, n)

	ok, err = ds.Get("missing", &n)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, ds.Close())
	assert.Error(t, ds.Put("c", 1), "closed store rejects writes")
	assert.NoError(t, ds.Close(), "close is idempotent")

	reopened, err := NewWithConfig(cfg)
	require.NoError(t, err)
	defer reopened.Close()

	var got map[string]record
	ok, err = reopened.Get("b", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, map[string]record{"u1": {XP: 10, Level: 1}}, got)
}

func TestGetTypeMismatch(t *testing.T) {
	ds, err := NewWithConfig(testConfig(t))
	require.NoError(t, err)
	defer ds.Close()

	require.NoError(t, ds.Put("k", "text"))
	var n int
	ok, err := ds.Get("k", &n)
	assert.True(t, ok)
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	ds, err := NewWithConfig(testConfig(t))
	require.NoError(t, err)
	defer ds.Close()

	require.NoError(t, ds.Put("k", 1))
	ds.Delete("k")
	assert.Empty(t, ds.Keys())
}

func TestBackupsArePruned(t *testing.T) {
	cfg := testConfig(t)
	cfg.BackupCount = 2
	ds, err := NewWithConfig(cfg)
	require.NoError(t, err)
	defer ds.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, ds.Put("n", i))
		require.NoError(t, ds.checkpoint())
	}
	backups, err := filepath.Glob(cfg.FilePath + ".backup.*")
	require.NoError(t, err)
	assert.Len(t, backups, 2)
}

func TestForcedSaveSkipsBackup(t *testing.T) {
	cfg := testConfig(t)
	cfg.BackupCount = 3
	ds, err := NewWithConfig(cfg)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		require.NoError(t, ds.Put("n", i))
		require.NoError(t, ds.SaveToFile())
	}
	backups, err := filepath.Glob(cfg.FilePath + ".backup.*")
	require.NoError(t, err)
	assert.Empty(t, backups)

	require.NoError(t, ds.Put("n", 99))
	require.NoError(t, ds.Close())
	backups, err = filepath.Glob(cfg.FilePath + ".backup.*")
	require.NoError(t, err)
	assert.Len(t, backups, 1, "close keeps the previous file")
}

func TestUnchangedDataIsNotRewritten(t *testing.T) {
	cfg := testConfig(t)
	cfg.BackupCount = 3
	ds, err := NewWithConfig(cfg)
	require.NoError(t, err)
	defer ds.Close()

	require.NoError(t, ds.Put("n", 1))
	require.NoError(t, ds.checkpoint())
	require.NoError(t, ds.checkpoint())

	backups, _ := filepath.Glob(cfg.FilePath + ".backup.*")
	assert.Len(t, backups, 1, "second save was a no-op")
}

func TestCorruptFile(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755))
	require.NoError(t, os.WriteFile(cfg.FilePath, []byte("{oops"), 0o644))

	_, err := NewWithConfig(cfg)
	assert.ErrorContains(t, err, "invalid JSON")
}

func TestEmptyPath(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}
