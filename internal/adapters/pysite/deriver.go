// Package pysite implements the site-directory side of resolution: deriving
// module search directories from store outputs, inspecting them for
// importable modules, and probing the system interpreter.
package pysite

import (
	"path/filepath"

	"go.trai.ch/pynix/internal/core/domain"
)

// SiteDeriver implements ports.PathDeriver over the conventional output
// layout.
type SiteDeriver struct{}

// NewSiteDeriver creates a SiteDeriver.
func NewSiteDeriver() *SiteDeriver {
	return &SiteDeriver{}
}

// DerivePaths maps each store path to its site directories by globbing
// lib/py*/*-packages, concatenated in closure order. The glob matches both
// python3.X/site-packages and pypy-style layouts. Outputs without a matching
// layout contribute nothing; the result may legitimately be empty.
func (d *SiteDeriver) DerivePaths(closure domain.Closure) domain.SearchPathSet {
	var paths domain.SearchPathSet
	for _, storePath := range closure {
		pattern := filepath.Join(string(storePath), "lib", "py*", "*-packages")
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		paths = append(paths, matches...)
	}
	return paths
}
