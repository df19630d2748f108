package ports

import (
	"context"
	"io"

	"go.trai.ch/pynix/internal/core/domain"
)

// Executor defines the interface for running a command inside a resolved
// package environment.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs command (argv form) with PYTHONPATH extended by paths,
	// streaming output to stdout and stderr. It returns an error wrapping
	// domain.ErrExecutionFailed when the command exits non-zero.
	Execute(ctx context.Context, command []string, paths domain.SearchPathSet, stdout, stderr io.Writer) error
}
