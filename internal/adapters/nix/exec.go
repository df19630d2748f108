package nix

import (
	"context"
	"os/exec"
)

// execCommandContext creates the commands that talk to the nix CLI. Tests
// swap it out to intercept process execution.
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
