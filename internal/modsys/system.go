// Package modsys is an explicit in-process model of the host import
// machinery: a module registry keyed by dotted name, an ordered finder
// chain, and the process search path. Importing resolves parents before
// children and publishes every loaded module in the registry, the way the
// interpreter's own import system maintains sys.modules.
package modsys

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/pynix/internal/core/domain"
	"go.trai.ch/pynix/internal/core/ports"
	"go.trai.ch/zerr"
)

// Finder locates a loader for a dotted module name. A nil loader means the
// finder has no opinion and the next entry in the chain is consulted.
type Finder interface {
	Find(ctx context.Context, name string, searchPath []string) Loader
}

// Loader produces the module object for a name its finder matched.
type Loader interface {
	Load(ctx context.Context, name string) (*Module, error)
}

// System owns the shared import state. All methods are safe for concurrent
// use; finders and loaders run outside the registry lock so they may call
// back into the system.
type System struct {
	mu      sync.RWMutex
	modules map[domain.InternedString]*Module
	finders []Finder

	path     *SearchPath
	terminal Finder
}

// NewSystem creates a System whose terminal finder resolves names against
// the search path through the given importer.
func NewSystem(importer ports.ModuleImporter, searchDirs ...string) *System {
	s := &System{
		modules: make(map[domain.InternedString]*Module),
		path:    NewSearchPath(searchDirs...),
	}
	s.terminal = &pathFinder{sys: s, importer: importer}
	return s
}

// Path returns the process search path.
func (s *System) Path() *SearchPath {
	return s.path
}

// Lookup returns the registered module for a dotted name.
func (s *System) Lookup(name string) (*Module, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.modules[domain.NewInternedString(name)]
	return m, ok
}

// Bind publishes a module under name, replacing any existing binding.
func (s *System) Bind(name string, m *Module) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modules[domain.NewInternedString(name)] = m
}

// Unbind removes the binding for name, if any.
func (s *System) Unbind(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.modules, domain.NewInternedString(name))
}

// Modules returns the sorted names of every registered module.
func (s *System) Modules() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.modules))
	for name := range s.modules {
		names = append(names, name.String())
	}
	slices.Sort(names)
	return names
}

// AddFinder inserts f ahead of the terminal path finder, after previously
// added finders, and returns a function that removes it again.
func (s *System) AddFinder(f Finder) (remove func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finders = append(s.finders, f)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, existing := range s.finders {
				if existing == f {
					s.finders = slices.Delete(s.finders, i, i+1)
					return
				}
			}
		})
	}
}

// Import resolves a dotted name to its module, loading and registering it
// (and its parents, parents first) on first use. Every failure surfaces as
// domain.ErrModuleNotFound with the underlying cause attached.
func (s *System) Import(ctx context.Context, name string) (*Module, error) {
	if err := domain.ValidateModuleName(name); err != nil {
		return nil, zerr.Wrap(errors.Join(domain.ErrModuleNotFound, err), "malformed module name")
	}

	if m, ok := s.Lookup(name); ok {
		return m, nil
	}

	if parent, _, ok := splitParent(name); ok {
		if _, err := s.Import(ctx, parent); err != nil {
			return nil, zerr.With(err, "importing", name)
		}
	}

	loader := s.findLoader(ctx, name)
	if loader == nil {
		return nil, zerr.With(domain.ErrModuleNotFound, "module", name)
	}

	m, err := loader.Load(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrModuleNotFound) {
			return nil, err
		}
		loadErr := zerr.Wrap(errors.Join(domain.ErrModuleNotFound, err), "module loader failed")
		return nil, zerr.With(loadErr, "module", name)
	}

	return s.register(name, m), nil
}

// findLoader walks the finder chain in order, terminal path finder last.
// Finders run on a snapshot of the chain and search path, outside the lock.
func (s *System) findLoader(ctx context.Context, name string) Loader {
	s.mu.RLock()
	finders := slices.Clone(s.finders)
	s.mu.RUnlock()

	searchPath := s.path.Dirs()
	for _, f := range finders {
		if loader := f.Find(ctx, name, searchPath); loader != nil {
			return loader
		}
	}
	return s.terminal.Find(ctx, name, searchPath)
}

// register publishes m under name unless a concurrent import won the race,
// in which case the already registered module is kept and returned.
func (s *System) register(name string, m *Module) *Module {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := domain.NewInternedString(name)
	if existing, ok := s.modules[key]; ok {
		return existing
	}
	s.modules[key] = m
	return m
}

// splitParent splits "a.b.c" into ("a.b", "c"). It reports false for
// top-level names.
func splitParent(name string) (parent, leaf string, ok bool) {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return "", name, false
	}
	return name[:i], name[i+1:], true
}
