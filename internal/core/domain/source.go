package domain

import "fmt"

// Source identifies which nixpkgs the evaluator consults. Part of the
// resolution identity: the same package against a different source is a
// different resolution.
type Source struct {
	// Channel is a channel name looked up via the NIX_PATH (e.g. "nixpkgs",
	// meaning the expression imports <nixpkgs>).
	Channel string

	// Rev optionally pins nixpkgs to an exact commit. When set it takes
	// precedence over Channel and the expression fetches the flake at that
	// revision instead.
	Rev string
}

// DefaultSource returns the unpinned <nixpkgs> channel source.
func DefaultSource() Source {
	return Source{Channel: "nixpkgs"}
}

// Pinned reports whether the source is locked to an exact nixpkgs commit.
func (s Source) Pinned() bool {
	return s.Rev != ""
}

// PkgsExpr returns the Nix expression evaluating to the package collection
// for this source.
func (s Source) PkgsExpr() string {
	if s.Pinned() {
		return fmt.Sprintf(
			"(builtins.getFlake %q).legacyPackages.${builtins.currentSystem}",
			"github:NixOS/nixpkgs/"+s.Rev,
		)
	}
	channel := s.Channel
	if channel == "" {
		channel = "nixpkgs"
	}
	return fmt.Sprintf("import <%s> { }", channel)
}

// ID returns the stable identity string used in resolution IDs.
func (s Source) ID() string {
	if s.Pinned() {
		return "rev:" + s.Rev
	}
	channel := s.Channel
	if channel == "" {
		channel = "nixpkgs"
	}
	return "channel:" + channel
}
