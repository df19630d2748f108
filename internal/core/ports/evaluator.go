// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/pynix/internal/core/domain"
)

// Evaluator defines the interface for querying the package manager's
// evaluator. It is a pure query surface; nothing it does mutates the store.
//
//go:generate mockgen -source=evaluator.go -destination=mocks/mock_evaluator.go -package=mocks
type Evaluator interface {
	// ResolveClosure returns the ordered, deduplicated runtime closure of the
	// named package: its own build output first, then its transitive
	// propagated dependencies.
	//
	// Returns domain.ErrUnknownPackage when the package set has no attribute
	// for the name, and domain.ErrResolutionFailed for any other evaluation
	// failure.
	ResolveClosure(ctx context.Context, name domain.PackageName) (domain.Closure, error)

	// FetchCatalog evaluates the package set's name-to-description index.
	FetchCatalog(ctx context.Context) (map[string]string, error)
}
