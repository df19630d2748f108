package nix

import "go.trai.ch/pynix/internal/core/domain"

// ClosureExpressionForTest exports the private closureExpression generator for testing purposes.
func ClosureExpressionForTest(source domain.Source, attrPath string) string {
	return closureExpression(source, attrPath)
}

// CatalogExpressionForTest exports the private catalogExpression generator for testing purposes.
func CatalogExpressionForTest(source domain.Source, interp domain.Interpreter) string {
	return catalogExpression(source, interp)
}

// BuildExpressionForTest exports the private buildExpression generator for testing purposes.
func BuildExpressionForTest(source domain.Source, attrPath string) string {
	return buildExpression(source, attrPath)
}

// IsUnknownAttributeForTest exports the private stderr classifier for testing purposes.
func IsUnknownAttributeForTest(stderr string) bool {
	return isUnknownAttribute(stderr)
}
