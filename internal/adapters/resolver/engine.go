// Package resolver implements the memoizing resolution pipeline behind
// ports.PackageResolver: evaluate the closure, materialize it, derive search
// paths, remember the result.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.trai.ch/pynix/internal/core/domain"
	"go.trai.ch/pynix/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// Engine implements ports.PackageResolver. Results are memoized in-process
// for the engine's lifetime and persisted to a disk layer for warm starts;
// concurrent requests for the same uncached package collapse into a single
// flight. Errors pass through uncached.
type Engine struct {
	evaluator    ports.Evaluator
	materializer ports.Materializer
	deriver      ports.PathDeriver
	logger       ports.Logger
	tracer       ports.Tracer

	source domain.Source
	interp domain.Interpreter

	// resolutionsDir is the disk layer; empty disables persistence.
	resolutionsDir string

	mu   sync.RWMutex
	memo map[domain.PackageName]domain.SearchPathSet

	requestGroup singleflight.Group
}

// NewEngine creates an Engine. cacheDir is the root cache directory; the
// disk layer lives in its resolutions subdirectory. An empty cacheDir keeps
// the engine memory-only.
func NewEngine(
	evaluator ports.Evaluator,
	materializer ports.Materializer,
	deriver ports.PathDeriver,
	logger ports.Logger,
	tracer ports.Tracer,
	source domain.Source,
	interp domain.Interpreter,
	cacheDir string,
) *Engine {
	resolutionsDir := ""
	if cacheDir != "" {
		resolutionsDir = domain.ResolutionsPath(cacheDir)
	}
	return &Engine{
		evaluator:      evaluator,
		materializer:   materializer,
		deriver:        deriver,
		logger:         logger,
		tracer:         tracer,
		source:         source,
		interp:         interp,
		resolutionsDir: resolutionsDir,
		memo:           make(map[domain.PackageName]domain.SearchPathSet),
	}
}

// GetOrResolve returns the search paths for the named package, running the
// external pipeline at most once per name. Unknown packages memoize as an
// empty set so repeated misses stay free of external calls.
func (e *Engine) GetOrResolve(ctx context.Context, name domain.PackageName) (domain.SearchPathSet, error) {
	if err := domain.ValidatePackageName(name); err != nil {
		return nil, zerr.With(err, "package", string(name))
	}

	if paths, ok := e.lookup(name); ok {
		return paths, nil
	}

	id := domain.GenerateResolutionID(e.source, e.interp, name)
	result, err, _ := e.requestGroup.Do(id, func() (any, error) {
		// Double check: a concurrent flight may have filled the memo
		// between the fast path and joining this flight.
		if paths, ok := e.lookup(name); ok {
			return paths, nil
		}

		paths, err := e.resolve(ctx, name, id)
		if err != nil {
			return nil, err
		}

		e.remember(name, paths)
		return paths.Clone(), nil
	})
	if err != nil {
		return nil, err
	}
	return result.(domain.SearchPathSet), nil
}

// resolve runs the pipeline for one package: disk layer first, then
// evaluate, materialize, derive.
func (e *Engine) resolve(ctx context.Context, name domain.PackageName, id string) (domain.SearchPathSet, error) {
	ctx, span := e.tracer.Start(ctx, "resolver.resolve",
		ports.WithAttribute("package", string(name)))
	defer span.End()

	if res, err := LoadResolution(e.resolutionFile(id)); err == nil {
		e.logger.Debug(fmt.Sprintf("resolution loaded from disk cache: %s", name))
		span.SetAttribute("cache", "disk")
		return res.SearchPaths, nil
	}

	closure, err := e.evaluator.ResolveClosure(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownPackage) {
			// Unknown packages are a negative result, not a failure: they
			// memoize as an empty set so the finder can decline cheaply.
			// The negative entry stays in-process; it is not persisted.
			e.logger.Debug(fmt.Sprintf("package unknown to the package set: %s", name))
			span.SetAttribute("unknown_package", true)
			return nil, nil
		}
		span.RecordError(err)
		return nil, err
	}

	if err := e.materializer.Materialize(ctx, name, closure); err != nil {
		span.RecordError(err)
		return nil, err
	}

	paths := e.deriver.DerivePaths(closure)
	span.SetAttribute("search_paths", len(paths))

	res := &domain.Resolution{
		Package:     name,
		Closure:     closure,
		SearchPaths: paths,
		ResolvedAt:  time.Now().UTC(),
	}
	if err := SaveResolution(e.resolutionFile(id), res); err != nil {
		// The disk layer is an optimization; a write failure costs one
		// re-resolution on the next cold start.
		e.logger.Warn(fmt.Sprintf("failed to persist resolution for %s: %v", name, err))
	}

	return paths, nil
}

// Invalidate drops the memoized and persisted entries for the named package
// so the next request re-resolves it.
func (e *Engine) Invalidate(_ context.Context, name domain.PackageName) error {
	if err := domain.ValidatePackageName(name); err != nil {
		return zerr.With(err, "package", string(name))
	}

	id := domain.GenerateResolutionID(e.source, e.interp, name)
	e.requestGroup.Forget(id)

	e.mu.Lock()
	delete(e.memo, name)
	e.mu.Unlock()

	if e.resolutionsDir == "" {
		return nil
	}
	if err := os.Remove(e.resolutionFile(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.Wrap(err, "failed to remove persisted resolution")
	}
	return nil
}

// InvalidateAll drops every memoized entry and the whole disk layer.
func (e *Engine) InvalidateAll(_ context.Context) error {
	e.mu.Lock()
	e.memo = make(map[domain.PackageName]domain.SearchPathSet)
	e.mu.Unlock()

	if e.resolutionsDir == "" {
		return nil
	}
	if err := os.RemoveAll(e.resolutionsDir); err != nil {
		return zerr.Wrap(err, "failed to remove resolution cache directory")
	}
	return nil
}

// Cached returns the number of memoized resolutions.
func (e *Engine) Cached() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.memo)
}

func (e *Engine) lookup(name domain.PackageName) (domain.SearchPathSet, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	paths, ok := e.memo[name]
	return paths.Clone(), ok
}

func (e *Engine) remember(name domain.PackageName, paths domain.SearchPathSet) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.memo[name] = paths
}

func (e *Engine) resolutionFile(id string) string {
	if e.resolutionsDir == "" {
		return ""
	}
	return filepath.Join(e.resolutionsDir, id+".json")
}
