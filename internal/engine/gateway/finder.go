package gateway

import (
	"context"
	"fmt"
	"strings"

	"go.trai.ch/pynix/internal/core/domain"
	"go.trai.ch/pynix/internal/core/ports"
	"go.trai.ch/pynix/internal/modsys"
)

// finder intercepts imports under the synthetic namespace prefix. It asks
// the resolver for the immediate child package's search paths and, when some
// exist, hands out a loader bound to them. An empty set or a resolution
// error means no opinion: the error is logged and normal resolution runs,
// failing with the ordinary not-found if nothing else matches.
type finder struct {
	resolver ports.PackageResolver
	loader   *Loader
	logger   ports.Logger
	prefix   string
}

func newFinder(resolver ports.PackageResolver, loader *Loader, logger ports.Logger, namespace string) *finder {
	return &finder{
		resolver: resolver,
		loader:   loader,
		logger:   logger,
		prefix:   namespace + ".",
	}
}

func (f *finder) Find(ctx context.Context, name string, _ []string) modsys.Loader {
	rest, ok := strings.CutPrefix(name, f.prefix)
	if !ok || rest == "" {
		return nil
	}

	child, _, _ := strings.Cut(rest, ".")
	paths, err := f.resolver.GetOrResolve(ctx, domain.PackageName(child))
	if err != nil {
		f.logger.Debug(fmt.Sprintf("resolution of %s failed, deferring to normal imports: %v", child, err))
		return nil
	}
	if paths.Empty() {
		return nil
	}

	return &boundLoader{loader: f.loader, paths: paths}
}

// boundLoader carries the resolved paths from the find step to the load
// step.
type boundLoader struct {
	loader *Loader
	paths  domain.SearchPathSet
}

func (b *boundLoader) Load(ctx context.Context, name string) (*modsys.Module, error) {
	return b.loader.Load(ctx, name, b.paths)
}
