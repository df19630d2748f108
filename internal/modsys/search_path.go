package modsys

import (
	"slices"
	"sync"
)

// SearchPath is the ordered list of directories modules are resolved
// against, the in-process equivalent of the interpreter's sys.path.
type SearchPath struct {
	mu   sync.Mutex
	dirs []string
}

// NewSearchPath creates a SearchPath seeded with the given directories.
func NewSearchPath(dirs ...string) *SearchPath {
	return &SearchPath{dirs: slices.Clone(dirs)}
}

// Dirs returns a copy of the current directory list.
func (p *SearchPath) Dirs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.dirs)
}

// Extend appends dirs and returns a restore function that puts back the
// exact list captured before the call. Nested Extend/restore pairs must
// unwind in LIFO order.
func (p *SearchPath) Extend(dirs []string) (restore func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	snapshot := slices.Clone(p.dirs)
	p.dirs = append(p.dirs, dirs...)

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.dirs = snapshot
	}
}

// Contains reports whether dir is currently on the path.
func (p *SearchPath) Contains(dir string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Contains(p.dirs, dir)
}
