// Package shell runs commands inside a resolved package environment.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"go.trai.ch/pynix/internal/core/domain"
	"go.trai.ch/pynix/internal/core/ports"
	"go.trai.ch/zerr"
)

// execCommandContext is swapped out by tests.
var execCommandContext = exec.CommandContext

// SetExecCommandContext replaces the command constructor and returns a
// function that restores the previous one.
func SetExecCommandContext(fn func(ctx context.Context, name string, args ...string) *exec.Cmd) func() {
	prev := execCommandContext
	execCommandContext = fn
	return func() { execCommandContext = prev }
}

// Executor implements ports.Executor using os/exec. The child inherits the
// host environment with PYTHONPATH extended by the resolved search paths,
// resolved entries first so they win over whatever the host already has.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{logger: logger}
}

// Execute runs command (argv form) with PYTHONPATH extended by paths,
// streaming output to stdout and stderr.
func (e *Executor) Execute(
	ctx context.Context,
	command []string,
	paths domain.SearchPathSet,
	stdout, stderr io.Writer,
) error {
	if len(command) == 0 {
		return domain.ErrNoCommandSpecified
	}

	e.logger.Debug(fmt.Sprintf("executing %s with %d search paths", command[0], len(paths)))

	//nolint:gosec // the command is the user's own argv
	cmd := execCommandContext(ctx, command[0], command[1:]...)
	cmd.Env = mergeEnvironment(os.Environ(), paths)
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			execErr := zerr.Wrap(errors.Join(domain.ErrExecutionFailed, err), "command exited with failure")
			return zerr.With(execErr, "exit_code", exitErr.ExitCode())
		}
		return zerr.Wrap(errors.Join(domain.ErrExecutionFailed, err), "failed to run command")
	}
	return nil
}

// mergeEnvironment returns the host environment with paths prepended to
// PYTHONPATH.
func mergeEnvironment(sysEnv []string, paths domain.SearchPathSet) []string {
	if paths.Empty() {
		return sysEnv
	}

	prefix := strings.Join(paths, string(os.PathListSeparator))
	merged := make([]string, 0, len(sysEnv)+1)
	found := false
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if ok && k == "PYTHONPATH" {
			found = true
			if v != "" {
				entry = "PYTHONPATH=" + prefix + string(os.PathListSeparator) + v
			} else {
				entry = "PYTHONPATH=" + prefix
			}
		}
		merged = append(merged, entry)
	}
	if !found {
		merged = append(merged, "PYTHONPATH="+prefix)
	}
	return merged
}
