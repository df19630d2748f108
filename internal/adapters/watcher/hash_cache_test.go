package watcher_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pynix/internal/adapters/watcher"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestHashCache_FirstObservationIsAChange(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pynix.yaml")
	writeConfig(t, path, "packages: [numpy]\n")

	cache := watcher.NewHashCache()

	changed, err := cache.Changed(path)
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestHashCache_UnchangedContentIsNotAChange(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pynix.yaml")
	writeConfig(t, path, "packages: [numpy]\n")

	cache := watcher.NewHashCache()

	_, err := cache.Changed(path)
	require.NoError(t, err)

	changed, err := cache.Changed(path)
	require.NoError(t, err)
	assert.False(t, changed)

	// Rewriting identical bytes still counts as unchanged.
	writeConfig(t, path, "packages: [numpy]\n")

	changed, err = cache.Changed(path)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestHashCache_ContentEditIsAChange(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pynix.yaml")
	writeConfig(t, path, "packages: [numpy]\n")

	cache := watcher.NewHashCache()

	_, err := cache.Changed(path)
	require.NoError(t, err)

	writeConfig(t, path, "packages: [numpy, scipy]\n")

	changed, err := cache.Changed(path)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = cache.Changed(path)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestHashCache_TouchIsNotAChange(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pynix.yaml")
	writeConfig(t, path, "packages: [numpy]\n")

	cache := watcher.NewHashCache()

	_, err := cache.Changed(path)
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, os.Chtimes(path, now, now))

	changed, err := cache.Changed(path)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestHashCache_DeletionReportsOnce(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pynix.yaml")
	writeConfig(t, path, "packages: [numpy]\n")

	cache := watcher.NewHashCache()

	_, err := cache.Changed(path)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))

	changed, err := cache.Changed(path)
	require.NoError(t, err)
	assert.True(t, changed, "deleting an observed file is a change")

	changed, err = cache.Changed(path)
	require.NoError(t, err)
	assert.False(t, changed, "a file that stays absent is not a repeated change")

	writeConfig(t, path, "packages: [numpy]\n")

	changed, err = cache.Changed(path)
	require.NoError(t, err)
	assert.True(t, changed, "a recreated file is a change")
}

func TestHashCache_MissingUnseenFile(t *testing.T) {
	t.Parallel()

	cache := watcher.NewHashCache()

	changed, err := cache.Changed(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.False(t, changed)
}
