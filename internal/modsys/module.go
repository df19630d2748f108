package modsys

import (
	"maps"
	"slices"

	"go.trai.ch/pynix/internal/core/domain"
)

// Module is a loaded module handle: the registry's value object. It carries
// no executable state; the origin records where the module lives on disk.
// Aggregate modules built for a bare package request additionally expose a
// read-only member view.
type Module struct {
	name    domain.InternedString
	origin  domain.ModuleOrigin
	members map[string]*Module
}

// NewModule creates a plain module handle.
func NewModule(name string, origin domain.ModuleOrigin) *Module {
	return &Module{
		name:   domain.NewInternedString(name),
		origin: origin,
	}
}

// NewNamespace creates a synthetic aggregate module holding the given
// members. The member map is copied; the view stays read-only afterwards.
func NewNamespace(name string, members map[string]*Module) *Module {
	return &Module{
		name:    domain.NewInternedString(name),
		origin:  domain.ModuleOrigin{Kind: domain.KindNamespace},
		members: maps.Clone(members),
	}
}

// Name returns the fully qualified dotted name the module was loaded as.
func (m *Module) Name() string {
	return m.name.String()
}

// Origin returns where the module lives on disk.
func (m *Module) Origin() domain.ModuleOrigin {
	return m.origin
}

// Kind returns the module's origin kind.
func (m *Module) Kind() domain.ModuleKind {
	return m.origin.Kind
}

// Path returns the module's on-disk path. Empty for synthetic aggregates.
func (m *Module) Path() string {
	return m.origin.Path
}

// Member returns the named member of an aggregate module.
func (m *Module) Member(name string) (*Module, bool) {
	member, ok := m.members[name]
	return member, ok
}

// Members returns the sorted member names of an aggregate module. Plain
// modules have none.
func (m *Module) Members() []string {
	if len(m.members) == 0 {
		return nil
	}
	return slices.Sorted(maps.Keys(m.members))
}
