package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// GenerateResolutionID creates the deterministic identity of one resolution
// request. Two requests share an ID exactly when they would yield the same
// search paths: same nixpkgs source, same interpreter, same package name.
// The ID keys both the disk cache and request coalescing.
func GenerateResolutionID(source Source, interp Interpreter, name PackageName) string {
	var builder strings.Builder
	builder.WriteString(source.ID())
	builder.WriteString(";")
	builder.WriteString(interp.Version())
	builder.WriteString(";")
	builder.WriteString(string(name))

	hash := sha256.Sum256([]byte(builder.String()))
	return hex.EncodeToString(hash[:])
}

// Resolution is the result of resolving one package: the closure the
// evaluator reported and the search paths derived from it. This is also the
// persisted disk-cache form.
type Resolution struct {
	Package     PackageName   `json:"package"`
	Closure     Closure       `json:"closure"`
	SearchPaths SearchPathSet `json:"search_paths"`
	ResolvedAt  time.Time     `json:"resolved_at"`
}
