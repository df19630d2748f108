package ports

import (
	"context"

	"go.trai.ch/pynix/internal/core/domain"
)

// InterpreterProber defines the interface for detecting the system Python
// interpreter's version when the configuration does not pin one.
//
//go:generate mockgen -source=interpreter.go -destination=mocks/mock_interpreter.go -package=mocks
type InterpreterProber interface {
	// Probe returns the version of the system interpreter. It returns an
	// error wrapping domain.ErrInterpreterProbeFailed when no interpreter
	// can be found or its version cannot be parsed.
	Probe(ctx context.Context) (domain.Interpreter, error)
}
