package ports

import (
	"context"

	"go.trai.ch/pynix/internal/core/domain"
)

// PackageResolver is the resolution pipeline behind a memoizing cache:
// evaluate the closure, materialize it, derive search paths, remember the
// result. Implemented in-process by the resolver engine and remotely by the
// daemon client.
//
//go:generate mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type PackageResolver interface {
	// GetOrResolve returns the search paths for the named package, running
	// the external resolution pipeline at most once per name per process.
	// Repeated requests return the memoized result, including a memoized
	// empty result for packages unknown to the package set. Errors are not
	// memoized.
	GetOrResolve(ctx context.Context, name domain.PackageName) (domain.SearchPathSet, error)

	// Invalidate drops the memoized entry for the named package so the next
	// request re-resolves it.
	Invalidate(ctx context.Context, name domain.PackageName) error

	// InvalidateAll drops every memoized entry.
	InvalidateAll(ctx context.Context) error
}
