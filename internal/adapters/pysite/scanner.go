package pysite

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.trai.ch/zerr"
)

// topLevelModules lists the importable top-level module names in a site
// directory. Hidden entries, __pycache__, and metadata-only directories
// (*.egg-info, *.dist-info) are skipped; plain directories count by name;
// *.egg entries normalize to the leading name before the first dash; source
// and extension files normalize to their stem.
func topLevelModules(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to list site directory")
	}

	seen := make(map[string]struct{})
	add := func(name string) {
		if name != "" {
			seen[name] = struct{}{}
		}
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || name == "__pycache__" {
			continue
		}
		if strings.HasSuffix(name, ".egg-info") || strings.HasSuffix(name, ".dist-info") {
			continue
		}

		if isDirEntry(dir, entry) {
			if strings.HasSuffix(name, ".egg") {
				add(eggName(name))
			} else {
				add(name)
			}
			continue
		}

		switch {
		case strings.HasSuffix(name, ".egg"):
			add(eggName(name))
		case strings.HasSuffix(name, ".py"), strings.HasSuffix(name, ".so"):
			add(moduleStem(name))
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// isDirEntry reports whether the entry is a directory, following symlinks
// the way store outputs link site-package trees together.
func isDirEntry(dir string, entry fs.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	return err == nil && info.IsDir()
}

// eggName normalizes an egg entry ("scipy-1.11.4-py3.12.egg") to its leading
// module name.
func eggName(entry string) string {
	base := strings.TrimSuffix(entry, ".egg")
	name, _, _ := strings.Cut(base, "-")
	return name
}

// moduleStem normalizes a module file to its importable name. Extension
// files carry tagged suffixes ("mod.cpython-312-x86_64-linux-gnu.so"), so
// everything from the first dot on is dropped.
func moduleStem(file string) string {
	name, _, _ := strings.Cut(file, ".")
	return name
}
