package nix

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"strings"

	"go.trai.ch/pynix/internal/core/domain"
	"go.trai.ch/zerr"
)

// Store implements ports.Materializer by shelling out to `nix build`.
type Store struct {
	source domain.Source
	interp domain.Interpreter
}

// NewStore creates a Store bound to a package source and interpreter.
func NewStore(source domain.Source, interp domain.Interpreter) *Store {
	return &Store{
		source: source,
		interp: interp,
	}
}

// Materialize realizes the package's primary output in the Nix store.
// The closure's dependency outputs materialize as a side effect of realizing
// the primary attribute; only the primary output's on-disk presence is
// verified. Failures are terminal for this attempt and never cached.
func (s *Store) Materialize(ctx context.Context, name domain.PackageName, closure domain.Closure) error {
	primary, ok := closure.Primary()
	if !ok {
		return zerr.With(domain.ErrPrimaryOutputMissing, "package", string(name))
	}

	attrPath := s.interp.AttrPath(name)
	expr := buildExpression(s.source, attrPath)

	//nolint:gosec // expression is generated from validated inputs
	cmd := execCommandContext(ctx, "nix",
		"build", "--json", "--no-link", "--impure",
		"--extra-experimental-features", "nix-command flakes",
		"--expr", expr,
	)

	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr := strings.TrimSpace(string(exitErr.Stderr))
			buildErr := zerr.Wrap(exitErr, domain.ErrMaterializationFailed.Error())
			buildErr = zerr.With(buildErr, "package", string(name))
			return zerr.With(buildErr, "stderr", stderr)
		}

		storeErr := zerr.Wrap(err, domain.ErrStoreUnavailable.Error())
		return zerr.With(storeErr, "package", string(name))
	}

	var results buildResults
	if err := json.Unmarshal(output, &results); err != nil {
		parseErr := zerr.Wrap(err, "failed to parse nix build JSON output")
		return zerr.With(parseErr, "package", string(name))
	}

	if len(results) == 0 {
		emptyErr := zerr.With(domain.ErrMaterializationFailed, "package", string(name))
		return zerr.With(emptyErr, "reason", "empty build results from nix build")
	}

	if out, ok := results[0].Outputs["out"]; !ok || out == "" {
		outErr := zerr.With(domain.ErrMaterializationFailed, "package", string(name))
		return zerr.With(outErr, "reason", "no 'out' output found in build results")
	}

	// The postcondition is the evaluated primary path, not whatever the build
	// reported: a divergence between the two means the resolution is stale.
	if _, err := os.Stat(string(primary)); err != nil {
		missingErr := zerr.Wrap(err, domain.ErrPrimaryOutputMissing.Error())
		missingErr = zerr.With(missingErr, "package", string(name))
		return zerr.With(missingErr, "store_path", string(primary))
	}

	return nil
}
