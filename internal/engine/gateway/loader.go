// Package gateway connects the module system to the package resolver: a
// finder that intercepts synthetic namespace imports, a loader that turns
// resolved search paths into module objects, and a registrar that installs
// the pair into a modsys.System.
package gateway

import (
	"context"
	"fmt"
	"strings"

	"go.trai.ch/pynix/internal/core/domain"
	"go.trai.ch/pynix/internal/core/ports"
	"go.trai.ch/pynix/internal/modsys"
	"go.trai.ch/zerr"
)

// Loader materializes synthetic modules from resolved search paths. For a
// deep name (<namespace>.<pkg>.<sub>...) it imports the dotted remainder
// through the ordinary module system with the paths temporarily on the
// search path, so the synthetic name aliases the very module object a bare
// import would produce. For a shallow name (<namespace>.<pkg>) it imports
// every top-level module of the primary site directory and aggregates them
// into a read-only namespace module.
type Loader struct {
	sys      *modsys.System
	importer ports.ModuleImporter
	logger   ports.Logger
	tracer   ports.Tracer
	prefix   string
}

// NewLoader creates a Loader for the given namespace.
func NewLoader(
	sys *modsys.System,
	importer ports.ModuleImporter,
	logger ports.Logger,
	tracer ports.Tracer,
	namespace string,
) *Loader {
	return &Loader{
		sys:      sys,
		importer: importer,
		logger:   logger,
		tracer:   tracer,
		prefix:   namespace + ".",
	}
}

// Load imports the fully qualified synthetic name against the given search
// paths. The search-path extension is undone on every exit path and the
// restored path is bit-identical to the pre-call value.
func (l *Loader) Load(ctx context.Context, name string, paths domain.SearchPathSet) (*modsys.Module, error) {
	ctx, span := l.tracer.Start(ctx, "gateway.load",
		ports.WithAttribute("module", name))
	defer span.End()

	rest, ok := strings.CutPrefix(name, l.prefix)
	if !ok || rest == "" {
		return nil, zerr.With(domain.ErrInvalidModuleName, "module", name)
	}

	// Site directories can carry .pth files whose entries belong on the
	// search path too; expansion happens here, at load time, so persisted
	// resolutions stay raw.
	restore := l.sys.Path().Extend(l.importer.ExpandSiteDirs(paths))
	defer restore()

	if _, remainder, deep := strings.Cut(rest, "."); deep {
		mod, err := l.sys.Import(ctx, remainder)
		if err != nil {
			return nil, zerr.Wrap(err, "failed to import packaged submodule")
		}
		return mod, nil
	}

	return l.loadNamespace(ctx, span, name, paths)
}

// loadNamespace builds the shallow aggregate for name. Members that fail to
// import are skipped; the aggregate binds even when it ends up empty.
func (l *Loader) loadNamespace(ctx context.Context, span ports.Span, name string, paths domain.SearchPathSet) (*modsys.Module, error) {
	primary, ok := paths.Primary()
	if !ok {
		return nil, zerr.With(domain.ErrModuleNotFound, "module", name)
	}

	members, err := l.importer.TopLevelModules(primary)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to enumerate site directory")
	}

	attached := make(map[string]*modsys.Module, len(members))
	for _, member := range members {
		mod, err := l.sys.Import(ctx, member)
		if err != nil {
			l.logger.Debug(fmt.Sprintf("skipping namespace member %s: %v", member, err))
			continue
		}
		attached[member] = mod
	}
	span.SetAttribute("members", len(attached))

	return modsys.NewNamespace(name, attached), nil
}
