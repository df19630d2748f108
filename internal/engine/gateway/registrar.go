package gateway

import (
	"sync"

	"go.trai.ch/pynix/internal/core/domain"
	"go.trai.ch/pynix/internal/core/ports"
	"go.trai.ch/pynix/internal/modsys"
	"go.trai.ch/zerr"
)

// Handle undoes one Initialize. Dispose removes the installed finder and,
// when this handle created it, the namespace root binding. It is safe to
// call more than once.
type Handle struct {
	once      sync.Once
	remove    func()
	sys       *modsys.System
	namespace string
	ownsRoot  bool
}

// Initialize installs the namespace finder into the system's lookup chain
// and binds the namespace root module so parent-first imports of
// <namespace>.<pkg> have a parent to land on. Each call installs an
// independent finder with its own handle.
func Initialize(
	sys *modsys.System,
	resolver ports.PackageResolver,
	importer ports.ModuleImporter,
	logger ports.Logger,
	tracer ports.Tracer,
	namespace string,
) (*Handle, error) {
	if err := domain.ValidatePackageName(domain.PackageName(namespace)); err != nil {
		return nil, zerr.With(err, "namespace", namespace)
	}

	loader := NewLoader(sys, importer, logger, tracer, namespace)
	remove := sys.AddFinder(newFinder(resolver, loader, logger, namespace))

	ownsRoot := false
	if _, ok := sys.Lookup(namespace); !ok {
		sys.Bind(namespace, modsys.NewNamespace(namespace, nil))
		ownsRoot = true
	}

	return &Handle{
		remove:    remove,
		sys:       sys,
		namespace: namespace,
		ownsRoot:  ownsRoot,
	}, nil
}

// Dispose removes the finder and any root binding this handle created.
func (h *Handle) Dispose() {
	h.once.Do(func() {
		h.remove()
		if h.ownsRoot {
			h.sys.Unbind(h.namespace)
		}
	})
}
