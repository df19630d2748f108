// Package catalog maintains the package-set index: the name-to-description
// map fetched through the evaluator, sorted by name and cached on disk with
// a TTL.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.trai.ch/pynix/internal/core/domain"
	"go.trai.ch/pynix/internal/core/ports"
	"go.trai.ch/zerr"
)

// Engine serves the package catalog. While the cached copy is younger than
// the TTL it is served as-is; otherwise the index is re-fetched and the
// cache rewritten. When a fetch fails but a cached copy exists, the stale
// copy is served instead of the error.
type Engine struct {
	evaluator ports.Evaluator
	logger    ports.Logger

	// path is the cache file; empty keeps the engine fetch-only.
	path string
	ttl  time.Duration
}

// NewEngine creates an Engine caching under cacheDir. An empty cacheDir
// disables the disk cache.
func NewEngine(evaluator ports.Evaluator, logger ports.Logger, cacheDir string, ttl time.Duration) *Engine {
	path := ""
	if cacheDir != "" {
		path = domain.CatalogPath(cacheDir)
	}
	return &Engine{
		evaluator: evaluator,
		logger:    logger,
		path:      path,
		ttl:       ttl,
	}
}

// Catalog returns the package index. refresh bypasses the freshness check
// and always fetches.
func (e *Engine) Catalog(ctx context.Context, refresh bool) (*domain.Catalog, error) {
	cached, cacheErr := e.load()
	if !refresh && cacheErr == nil && !cached.Stale(e.ttl, time.Now()) {
		return cached, nil
	}

	fetched, err := e.fetch(ctx)
	if err != nil {
		if cacheErr == nil {
			e.logger.Warn(fmt.Sprintf("catalog fetch failed, serving cached copy: %v", err))
			return cached, nil
		}
		return nil, zerr.Wrap(errors.Join(domain.ErrCatalogUnavailable, err), "failed to fetch package catalog")
	}

	if err := e.save(fetched); err != nil {
		e.logger.Warn(fmt.Sprintf("failed to persist package catalog: %v", err))
	}
	return fetched, nil
}

func (e *Engine) fetch(ctx context.Context) (*domain.Catalog, error) {
	index, err := e.evaluator.FetchCatalog(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.CatalogEntry, 0, len(index))
	for name, desc := range index {
		entries = append(entries, domain.CatalogEntry{Name: name, Description: desc})
	}
	slices.SortFunc(entries, func(a, b domain.CatalogEntry) int {
		return strings.Compare(a.Name, b.Name)
	})

	return &domain.Catalog{Entries: entries, FetchedAt: time.Now().UTC()}, nil
}

func (e *Engine) load() (*domain.Catalog, error) {
	if e.path == "" {
		return nil, domain.ErrCacheMiss
	}

	data, err := os.ReadFile(e.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrCacheMiss
		}
		return nil, zerr.Wrap(errors.Join(domain.ErrCacheReadFailed, err), "failed to read catalog cache")
	}

	var catalog domain.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, zerr.Wrap(errors.Join(domain.ErrCacheUnmarshalFailed, err), "failed to unmarshal catalog cache")
	}
	return &catalog, nil
}

func (e *Engine) save(catalog *domain.Catalog) error {
	if e.path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(e.path), domain.DirPerm); err != nil {
		return zerr.Wrap(err, "failed to create cache directory")
	}

	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return zerr.Wrap(errors.Join(domain.ErrCacheMarshalFailed, err), "failed to marshal catalog")
	}

	tmp, err := os.CreateTemp(filepath.Dir(e.path), "catalog-*.json")
	if err != nil {
		return zerr.Wrap(err, "failed to create temporary catalog file")
	}
	defer func() {
		if _, statErr := os.Stat(tmp.Name()); statErr == nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.Wrap(err, "failed to write catalog file")
	}
	if err := tmp.Close(); err != nil {
		return zerr.Wrap(err, "failed to close catalog file")
	}
	if err := os.Chmod(tmp.Name(), domain.FilePerm); err != nil {
		return zerr.Wrap(err, "failed to set catalog file permissions")
	}
	if err := os.Rename(tmp.Name(), e.path); err != nil {
		return zerr.Wrap(err, "failed to move catalog file into place")
	}
	return nil
}
