package watcher

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"
)

// HashCache remembers the last observed content hash per path so callers
// can tell real edits apart from touches that leave the content intact.
type HashCache struct {
	mu      sync.Mutex
	entries map[string]uint64
}

// NewHashCache creates an empty hash cache.
func NewHashCache() *HashCache {
	return &HashCache{entries: make(map[string]uint64)}
}

// Changed hashes the file at path and reports whether its content differs
// from the last observation. The first observation of an existing path
// reports true. A deletion reports true once, then false until the file
// reappears.
func (h *HashCache) Changed(path string) (bool, error) {
	sum, err := hashFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return false, err
		}

		h.mu.Lock()
		defer h.mu.Unlock()

		_, seen := h.entries[path]
		delete(h.entries, path)

		return seen, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	prev, seen := h.entries[path]
	h.entries[path] = sum

	return !seen || prev != sum, nil
}

func hashFile(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path comes from the watch target, not user input
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, err
		}

		return 0, zerr.Wrap(err, "failed to open watched file")
	}
	defer func() { _ = f.Close() }()

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.Wrap(err, "failed to hash watched file")
	}

	return hasher.Sum64(), nil
}
