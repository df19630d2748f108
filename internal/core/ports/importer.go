package ports

import "go.trai.ch/pynix/internal/core/domain"

// ModuleImporter defines the interface for inspecting site directories for
// importable modules. It owns the on-disk layout conventions (source files,
// extensions, package dirs, .pth references) so the import machinery stays
// filesystem-agnostic.
//
//go:generate mockgen -source=importer.go -destination=mocks/mock_importer.go -package=mocks
type ModuleImporter interface {
	// Locate resolves a single module name component inside dir and reports
	// its origin. It reports false when dir holds nothing importable under
	// that name.
	Locate(dir, name string) (domain.ModuleOrigin, bool)

	// TopLevelModules lists the importable top-level module names in dir,
	// sorted, applying the site-dir filter rules (hidden entries, cache and
	// metadata directories are skipped; eggs and file entries are normalized
	// to module names).
	TopLevelModules(dir string) ([]string, error)

	// ExpandSiteDirs returns paths with each directory's .pth-referenced
	// directories appended after it, preserving order and dropping
	// duplicates.
	ExpandSiteDirs(paths domain.SearchPathSet) domain.SearchPathSet
}
