package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pynix/internal/adapters/watcher"
)

// startConfigWatcher wires a real fs watcher to a ConfigWatcher with a
// short debounce window and counts onChange invocations.
func startConfigWatcher(t *testing.T, cfg string) *atomic.Int32 {
	t.Helper()

	var reloads atomic.Int32

	w, err := watcher.NewWatcher(quietLogger(t))
	require.NoError(t, err)

	cw := watcher.NewConfigWatcher(w, quietLogger(t), cfg, 20*time.Millisecond, func() {
		reloads.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	t.Cleanup(func() { _ = cw.Stop() })

	require.NoError(t, cw.Start(ctx))

	return &reloads
}

func TestConfigWatcher_ReloadsOnContentChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := filepath.Join(dir, "pynix.yaml")
	writeConfig(t, cfg, "packages: [numpy]\n")

	reloads := startConfigWatcher(t, cfg)

	writeConfig(t, cfg, "packages: [numpy, scipy]\n")

	require.Eventually(t, func() bool {
		return reloads.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestConfigWatcher_AtomicReplaceTriggersReload(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := filepath.Join(dir, "pynix.yaml")
	writeConfig(t, cfg, "packages: [numpy]\n")

	reloads := startConfigWatcher(t, cfg)

	tmp := filepath.Join(dir, "pynix.yaml.tmp")
	writeConfig(t, tmp, "packages: [scipy]\n")
	require.NoError(t, os.Rename(tmp, cfg))

	require.Eventually(t, func() bool {
		return reloads.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestConfigWatcher_IgnoresEventsWithoutContentChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := filepath.Join(dir, "pynix.yaml")
	writeConfig(t, cfg, "packages: [numpy]\n")

	reloads := startConfigWatcher(t, cfg)

	// A touch and a byte-identical rewrite both produce events, but the
	// content hash has not moved.
	now := time.Now()
	require.NoError(t, os.Chtimes(cfg, now, now))
	writeConfig(t, cfg, "packages: [numpy]\n")

	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, reloads.Load())
}

func TestConfigWatcher_StartupIsNotAChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := filepath.Join(dir, "pynix.yaml")
	writeConfig(t, cfg, "packages: [numpy]\n")

	reloads := startConfigWatcher(t, cfg)

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, reloads.Load())
}
