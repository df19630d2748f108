package domain

import (
	"fmt"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

// Interpreter identifies the target Python interpreter by version. The
// version selects both the nixpkgs package set to query and the site-dir
// layout to expect inside materialized outputs.
type Interpreter struct {
	Major int
	Minor int
}

// DefaultInterpreter is used when no version is configured and probing the
// system interpreter fails.
var DefaultInterpreter = Interpreter{Major: 3, Minor: 12}

// ParseInterpreter parses a "major.minor" version string (e.g. "3.12").
func ParseInterpreter(s string) (Interpreter, error) {
	major, minor, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok {
		return Interpreter{}, zerr.With(ErrInvalidInterpreterVersion, "version", s)
	}
	maj, err := strconv.Atoi(major)
	if err != nil {
		return Interpreter{}, zerr.With(ErrInvalidInterpreterVersion, "version", s)
	}
	// Tolerate a trailing patch component ("3.12.1").
	minor, _, _ = strings.Cut(minor, ".")
	min, err := strconv.Atoi(minor)
	if err != nil {
		return Interpreter{}, zerr.With(ErrInvalidInterpreterVersion, "version", s)
	}
	if maj <= 0 || min < 0 {
		return Interpreter{}, zerr.With(ErrInvalidInterpreterVersion, "version", s)
	}
	return Interpreter{Major: maj, Minor: min}, nil
}

// Version returns the "major.minor" form (e.g. "3.12").
func (i Interpreter) Version() string {
	return fmt.Sprintf("%d.%d", i.Major, i.Minor)
}

// PackageSet returns the nixpkgs attribute name of this interpreter's package
// set, e.g. "python312Packages" for 3.12.
func (i Interpreter) PackageSet() string {
	return fmt.Sprintf("python%d%dPackages", i.Major, i.Minor)
}

// AttrPath returns the attribute path of a package under this interpreter's
// package set, e.g. "python312Packages.scipy".
func (i Interpreter) AttrPath(name PackageName) string {
	return i.PackageSet() + "." + string(name)
}
