package nix

import (
	"fmt"
	"strings"

	"go.trai.ch/pynix/internal/core/domain"
)

// closureExpression generates a Nix expression that evaluates to the JSON list
// of store paths for a package and its transitive runtime dependencies.
// builtins.genericClosure deduplicates by store path and walks breadth-first,
// so the package's own output always comes first.
func closureExpression(source domain.Source, attrPath string) string {
	var builder strings.Builder

	builder.WriteString("let\n")
	builder.WriteString(fmt.Sprintf("pkgs = %s;\n", source.PkgsExpr()))
	builder.WriteString(fmt.Sprintf("root = pkgs.%s;\n", attrPath))
	builder.WriteString("closure = builtins.genericClosure {\n")
	builder.WriteString("startSet = [ { key = root.outPath; drv = root; } ];\n")
	builder.WriteString("operator = item: map (d: { key = d.outPath; drv = d; })\n")
	builder.WriteString("(builtins.filter (d: d != null && builtins.isAttrs d && d ? outPath)\n")
	builder.WriteString("(item.drv.propagatedBuildInputs or [ ]));\n")
	builder.WriteString("};\n")
	builder.WriteString("in\n")
	builder.WriteString("map (item: item.key) closure\n")

	return builder.String()
}

// catalogExpression generates a Nix expression that evaluates to a JSON object
// mapping every attribute of the interpreter's package set to its description.
// Broken or aliased attributes evaluate to an empty description instead of
// aborting the whole catalog, hence the tryEval guard.
func catalogExpression(source domain.Source, interp domain.Interpreter) string {
	var builder strings.Builder

	builder.WriteString("let\n")
	builder.WriteString(fmt.Sprintf("pkgs = %s;\n", source.PkgsExpr()))
	builder.WriteString(fmt.Sprintf("ps = pkgs.%s;\n", interp.PackageSet()))
	builder.WriteString("in\n")
	builder.WriteString("builtins.mapAttrs (name: value:\n")
	builder.WriteString("let result = builtins.tryEval (value.meta.description or \"\");\n")
	builder.WriteString("in if result.success && builtins.isString result.value then result.value else \"\"\n")
	builder.WriteString(") ps\n")

	return builder.String()
}

// buildExpression generates the Nix expression handed to `nix build` for
// realizing a single package attribute.
func buildExpression(source domain.Source, attrPath string) string {
	return fmt.Sprintf("let pkgs = %s; in pkgs.%s", source.PkgsExpr(), attrPath)
}
