// Package nix implements the Evaluator and Materializer ports using the Nix CLI.
package nix

import (
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"strings"

	"go.trai.ch/pynix/internal/core/domain"
	"go.trai.ch/zerr"
)

// Evaluator implements ports.Evaluator by shelling out to `nix eval`.
type Evaluator struct {
	source domain.Source
	interp domain.Interpreter
}

// NewEvaluator creates an Evaluator bound to a package source and interpreter.
func NewEvaluator(source domain.Source, interp domain.Interpreter) *Evaluator {
	return &Evaluator{
		source: source,
		interp: interp,
	}
}

// ResolveClosure evaluates the package's derivation and the transitive closure
// of its propagated runtime dependencies, returning their store paths with the
// package's own output first. An unknown attribute is reported as
// domain.ErrUnknownPackage; any other evaluation failure as
// domain.ErrResolutionFailed.
func (e *Evaluator) ResolveClosure(ctx context.Context, name domain.PackageName) (domain.Closure, error) {
	if err := domain.ValidatePackageName(name); err != nil {
		return nil, zerr.With(err, "package", string(name))
	}

	attrPath := e.interp.AttrPath(name)
	expr := closureExpression(e.source, attrPath)

	output, err := e.eval(ctx, expr)
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr := strings.TrimSpace(string(exitErr.Stderr))
			if isUnknownAttribute(stderr) {
				unknownErr := zerr.Wrap(
					errors.Join(domain.ErrUnknownPackage, exitErr),
					"package attribute missing from package set",
				)
				unknownErr = zerr.With(unknownErr, "attr_path", attrPath)
				return nil, zerr.With(unknownErr, "stderr", stderr)
			}

			evalErr := zerr.Wrap(exitErr, domain.ErrResolutionFailed.Error())
			evalErr = zerr.With(evalErr, "package", string(name))
			return nil, zerr.With(evalErr, "stderr", stderr)
		}

		unavailErr := zerr.Wrap(err, domain.ErrEvaluatorUnavailable.Error())
		return nil, zerr.With(unavailErr, "package", string(name))
	}

	var paths []string
	if err := json.Unmarshal(output, &paths); err != nil {
		parseErr := zerr.Wrap(err, domain.ErrEvalOutputParseFailed.Error())
		return nil, zerr.With(parseErr, "package", string(name))
	}

	closure := domain.NewClosure(paths)
	if len(closure) == 0 {
		emptyErr := zerr.With(domain.ErrEvalOutputParseFailed, "package", string(name))
		return nil, zerr.With(emptyErr, "reason", "empty closure from evaluator")
	}

	return closure, nil
}

// FetchCatalog evaluates the whole package set into a name-to-description map.
func (e *Evaluator) FetchCatalog(ctx context.Context) (map[string]string, error) {
	expr := catalogExpression(e.source, e.interp)

	output, err := e.eval(ctx, expr)
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr := strings.TrimSpace(string(exitErr.Stderr))
			catErr := zerr.Wrap(exitErr, domain.ErrCatalogUnavailable.Error())
			return nil, zerr.With(catErr, "stderr", stderr)
		}
		return nil, zerr.Wrap(err, domain.ErrEvaluatorUnavailable.Error())
	}

	var entries map[string]string
	if err := json.Unmarshal(output, &entries); err != nil {
		return nil, zerr.Wrap(err, domain.ErrEvalOutputParseFailed.Error())
	}

	return entries, nil
}

// eval runs `nix eval` on the given expression and returns its stdout.
// Errors come back unclassified; callers inspect exec.ExitError.Stderr.
func (e *Evaluator) eval(ctx context.Context, expr string) ([]byte, error) {
	//nolint:gosec // expression is generated from validated inputs
	cmd := execCommandContext(ctx, "nix",
		"eval", "--json", "--impure",
		"--extra-experimental-features", "nix-command flakes",
		"--expr", expr,
	)
	return cmd.Output()
}

// isUnknownAttribute reports whether evaluator stderr describes a missing
// attribute rather than a general evaluation failure. Nix phrases this as
// "attribute '<name>' missing" for plain attr sets and "does not provide
// attribute" for flake outputs.
func isUnknownAttribute(stderr string) bool {
	if strings.Contains(stderr, "does not have attribute") {
		return true
	}
	if strings.Contains(stderr, "does not provide attribute") {
		return true
	}
	return strings.Contains(stderr, "attribute") && strings.Contains(stderr, "missing")
}
