package modsys

import (
	"context"

	"go.trai.ch/pynix/internal/core/domain"
	"go.trai.ch/pynix/internal/core/ports"
)

// pathFinder is the terminal finder: it resolves names against the search
// path by the conventional site layout. Submodules are looked up inside
// their parent package's directory; the parent is guaranteed to be
// registered because Import loads parents first.
type pathFinder struct {
	sys      *System
	importer ports.ModuleImporter
}

func (f *pathFinder) Find(_ context.Context, name string, searchPath []string) Loader {
	if f.importer == nil {
		return nil
	}

	parent, leaf, nested := splitParent(name)

	var dirs []string
	if nested {
		pm, ok := f.sys.Lookup(parent)
		if !ok || !pm.Origin().IsPackage() {
			return nil
		}
		dirs = []string{pm.Path()}
	} else {
		dirs = searchPath
	}

	for _, dir := range dirs {
		if origin, ok := f.importer.Locate(dir, leaf); ok {
			return &originLoader{origin: origin}
		}
	}
	return nil
}

// originLoader publishes the module handle for an origin the path finder
// located.
type originLoader struct {
	origin domain.ModuleOrigin
}

func (l *originLoader) Load(_ context.Context, name string) (*Module, error) {
	return NewModule(name, l.origin), nil
}
