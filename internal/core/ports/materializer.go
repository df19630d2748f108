package ports

import (
	"context"

	"go.trai.ch/pynix/internal/core/domain"
)

// Materializer defines the interface for realizing store paths on disk.
//
//go:generate mockgen -source=materializer.go -destination=mocks/mock_materializer.go -package=mocks
type Materializer interface {
	// Materialize ensures the closure's outputs exist on disk, triggering a
	// build/fetch when they do not. Only the primary output's presence is a
	// hard postcondition; dependency outputs are expected to materialize as a
	// side effect of realizing the primary closure.
	//
	// Returns domain.ErrMaterializationFailed when the build fails and
	// domain.ErrStoreUnavailable when the builder cannot be reached at all.
	// Failures are never cached; a later call may retry.
	Materialize(ctx context.Context, name domain.PackageName, closure domain.Closure) error
}
