// Package domain contains the core domain types for pynix.
package domain

// PackageName identifies a requested package (e.g. "scipy").
// It is the unique key for resolution caching.
type PackageName string

// String returns the package name as a plain string.
func (p PackageName) String() string {
	return string(p)
}

// StorePath is an immutable reference to a materialized store directory
// (e.g. "/nix/store/abc123-python3.12-scipy-1.11.4"). Once materialized,
// its directory tree does not change for the lifetime of the process.
type StorePath string

// String returns the store path as a plain string.
func (s StorePath) String() string {
	return string(s)
}

// Closure is the ordered, deduplicated list of store paths a package needs at
// runtime. The first element is the build output of the requested package
// itself; the remaining elements are its transitive propagated dependencies.
type Closure []StorePath

// NewClosure builds a Closure from raw store path strings, deduplicating
// while preserving first-seen order.
func NewClosure(paths []string) Closure {
	seen := make(map[string]struct{}, len(paths))
	closure := make(Closure, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		closure = append(closure, StorePath(p))
	}
	return closure
}

// Primary returns the store path of the requested package's own build output.
// It reports false for an empty closure.
func (c Closure) Primary() (StorePath, bool) {
	if len(c) == 0 {
		return "", false
	}
	return c[0], true
}

// Strings returns the closure as plain string paths, preserving order.
func (c Closure) Strings() []string {
	out := make([]string, len(c))
	for i, p := range c {
		out[i] = string(p)
	}
	return out
}

// SearchPathSet is the ordered list of module search directories derived from
// a closure. It may legitimately be empty, meaning the package resolved but
// contributes no importable directories.
type SearchPathSet []string

// Empty reports whether the set contributes no directories.
func (s SearchPathSet) Empty() bool {
	return len(s) == 0
}

// Primary returns the first search directory, the conventional location of
// the requested package's own modules. It reports false for an empty set.
func (s SearchPathSet) Primary() (string, bool) {
	if len(s) == 0 {
		return "", false
	}
	return s[0], true
}

// Clone returns an independent copy of the set. Cache entries hand out clones
// so callers cannot mutate the memoized value.
func (s SearchPathSet) Clone() SearchPathSet {
	if s == nil {
		return nil
	}
	out := make(SearchPathSet, len(s))
	copy(out, s)
	return out
}
