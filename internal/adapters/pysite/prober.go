package pysite

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"go.trai.ch/pynix/internal/core/domain"
	"go.trai.ch/zerr"
)

// execCommandContext creates the probe command. Tests swap it out to
// intercept process execution.
var execCommandContext = exec.CommandContext

// SetExecCommandContext replaces the command factory and returns a function
// that restores the previous one.
func SetExecCommandContext(fn func(ctx context.Context, name string, args ...string) *exec.Cmd) func() {
	prev := execCommandContext
	execCommandContext = fn
	return func() {
		execCommandContext = prev
	}
}

// Prober implements ports.InterpreterProber by asking the system python3
// for its version.
type Prober struct{}

// NewProber creates a Prober.
func NewProber() *Prober {
	return &Prober{}
}

// Probe runs python3 and parses its reported major.minor version.
func (p *Prober) Probe(ctx context.Context) (domain.Interpreter, error) {
	cmd := execCommandContext(ctx, "python3", "-c",
		`import sys; print("%d.%d" % sys.version_info[:2])`)

	output, err := cmd.Output()
	if err != nil {
		return domain.Interpreter{}, zerr.Wrap(
			errors.Join(domain.ErrInterpreterProbeFailed, err),
			"python3 probe did not run",
		)
	}

	version := strings.TrimSpace(string(output))
	interp, err := domain.ParseInterpreter(version)
	if err != nil {
		probeErr := zerr.Wrap(
			errors.Join(domain.ErrInterpreterProbeFailed, err),
			"python3 reported an unparsable version",
		)
		return domain.Interpreter{}, zerr.With(probeErr, "output", version)
	}
	return interp, nil
}
