package pysite

import (
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/pynix/internal/core/domain"
)

// Importer implements ports.ModuleImporter: it locates module origins by the
// conventional site layout and expands .pth references the way site dirs are
// processed at interpreter startup.
type Importer struct{}

// NewImporter creates an Importer.
func NewImporter() *Importer {
	return &Importer{}
}

// Locate resolves a single name component inside dir. Regular packages win
// over source files, source files over extensions, and a bare directory
// counts as a namespace package only when nothing else matches.
func (i *Importer) Locate(dir, name string) (domain.ModuleOrigin, bool) {
	if dir == "" || name == "" {
		return domain.ModuleOrigin{}, false
	}

	candidate := filepath.Join(dir, name)

	if info, err := os.Stat(filepath.Join(candidate, "__init__.py")); err == nil && !info.IsDir() {
		return domain.ModuleOrigin{Path: candidate, Kind: domain.KindPackage}, true
	}

	if info, err := os.Stat(candidate + ".py"); err == nil && !info.IsDir() {
		return domain.ModuleOrigin{Path: candidate + ".py", Kind: domain.KindSource}, true
	}

	if ext, ok := locateExtension(dir, name); ok {
		return domain.ModuleOrigin{Path: ext, Kind: domain.KindExtension}, true
	}

	if info, err := os.Stat(candidate); err == nil && info.IsDir() {
		return domain.ModuleOrigin{Path: candidate, Kind: domain.KindNamespace}, true
	}

	return domain.ModuleOrigin{}, false
}

// locateExtension finds a compiled extension for name, either bare
// ("name.so") or with a tagged suffix ("name.cpython-312-....so").
func locateExtension(dir, name string) (string, bool) {
	bare := filepath.Join(dir, name+".so")
	if info, err := os.Stat(bare); err == nil && !info.IsDir() {
		return bare, true
	}

	matches, err := filepath.Glob(filepath.Join(dir, name+".*.so"))
	if err != nil || len(matches) == 0 {
		return "", false
	}
	return matches[0], true
}

// TopLevelModules lists the importable top-level module names in dir.
func (i *Importer) TopLevelModules(dir string) ([]string, error) {
	return topLevelModules(dir)
}

// ExpandSiteDirs returns paths with each directory's .pth-referenced entries
// appended after it, preserving order and dropping duplicates.
func (i *Importer) ExpandSiteDirs(paths domain.SearchPathSet) domain.SearchPathSet {
	if len(paths) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(paths))
	out := make(domain.SearchPathSet, 0, len(paths))
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, dir := range paths {
		add(dir)
		for _, extra := range pthEntries(dir) {
			add(extra)
		}
	}
	return out
}

// pthEntries reads every .pth file in dir and returns the existing paths
// they reference. Comment lines and interpreter-startup "import" lines are
// ignored; relative entries resolve against dir.
func pthEntries(dir string) []string {
	matches, err := filepath.Glob(filepath.Join(dir, "*.pth"))
	if err != nil || len(matches) == 0 {
		return nil
	}

	var out []string
	for _, pth := range matches {
		data, err := os.ReadFile(pth)
		if err != nil {
			continue
		}
		for line := range strings.Lines(string(data)) {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			if strings.HasPrefix(line, "import ") || strings.HasPrefix(line, "import\t") {
				continue
			}
			candidate := line
			if !filepath.IsAbs(candidate) {
				candidate = filepath.Join(dir, line)
			}
			if _, err := os.Stat(candidate); err == nil {
				out = append(out, candidate)
			}
		}
	}
	return out
}
