package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// ModuleRequest is a parsed synthetic-namespace import request such as
// "nixpkgs.scipy.sparse.linalg": the namespace prefix, the package name
// immediately under it, and the dotted remainder below the package.
type ModuleRequest struct {
	Namespace string
	Package   PackageName
	// Remainder is the dotted path after the package ("sparse.linalg").
	// Empty for a shallow request naming the bare package.
	Remainder string
}

// ParseModuleRequest splits a dotted module name under the given namespace.
// It reports false when the name is not under the namespace or names the
// namespace itself with no package component.
func ParseModuleRequest(namespace, name string) (ModuleRequest, bool) {
	prefix := namespace + "."
	if !strings.HasPrefix(name, prefix) {
		return ModuleRequest{}, false
	}
	rest := strings.TrimPrefix(name, prefix)
	if rest == "" {
		return ModuleRequest{}, false
	}
	pkg, remainder, _ := strings.Cut(rest, ".")
	if pkg == "" {
		return ModuleRequest{}, false
	}
	return ModuleRequest{
		Namespace: namespace,
		Package:   PackageName(pkg),
		Remainder: remainder,
	}, true
}

// Full returns the fully qualified dotted name of the request.
func (r ModuleRequest) Full() string {
	if r.Remainder == "" {
		return r.Namespace + "." + string(r.Package)
	}
	return r.Namespace + "." + string(r.Package) + "." + r.Remainder
}

// Shallow reports whether the request names the bare package with no
// submodule suffix.
func (r ModuleRequest) Shallow() bool {
	return r.Remainder == ""
}

// ValidatePackageName checks that a package name can appear as a nixpkgs
// attribute and as a single dotted-name component.
func ValidatePackageName(name PackageName) error {
	s := string(name)
	if s == "" {
		return ErrInvalidPackageName
	}
	if strings.ContainsAny(s, "./\\ \t\n") {
		return ErrInvalidPackageName
	}
	return nil
}

// ValidateModuleName checks that a dotted module name is well formed: at
// least one component, no empty components.
func ValidateModuleName(name string) error {
	if name == "" {
		return ErrInvalidModuleName
	}
	for _, part := range strings.Split(name, ".") {
		if part == "" {
			return zerr.With(ErrInvalidModuleName, "name", name)
		}
	}
	return nil
}

// ModuleKind classifies what a module's origin is on disk.
type ModuleKind string

const (
	// KindSource is a plain .py source file.
	KindSource ModuleKind = "source"
	// KindExtension is a compiled extension (.so).
	KindExtension ModuleKind = "extension"
	// KindPackage is a directory with an __init__.py.
	KindPackage ModuleKind = "package"
	// KindNamespace is a directory without an __init__.py, or a synthetic
	// aggregate published for a bare package request.
	KindNamespace ModuleKind = "namespace"
)

// ModuleOrigin is where a module lives on disk: the resolved path and what
// kind of artifact it is. For packages and namespaces Path is the directory
// that contains the package's submodules.
type ModuleOrigin struct {
	Path string
	Kind ModuleKind
}

// IsPackage reports whether the origin can contain submodules.
func (o ModuleOrigin) IsPackage() bool {
	return o.Kind == KindPackage || o.Kind == KindNamespace
}
