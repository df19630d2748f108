package ports

import "go.trai.ch/pynix/internal/core/domain"

// PathDeriver defines the interface for mapping materialized store paths to
// module search directories.
//
//go:generate mockgen -source=deriver.go -destination=mocks/mock_deriver.go -package=mocks
type PathDeriver interface {
	// DerivePaths maps each store path to zero or more site directories by
	// the fixed layout convention, concatenated in closure order. It never
	// fails; an output without a matching layout contributes no paths and
	// the result may legitimately be empty.
	DerivePaths(closure domain.Closure) domain.SearchPathSet
}
