package nix_test

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/pynix/internal/adapters/nix"
	"go.trai.ch/pynix/internal/core/domain"
)

func TestClosureExpression_Golden(t *testing.T) {
	expr := nix.ClosureExpressionForTest(domain.DefaultSource(), "python312Packages.scipy")

	g := goldie.New(t)
	g.Assert(t, "expr_closure_channel", []byte(expr))
}

func TestClosureExpression_PinnedSource_Golden(t *testing.T) {
	source := domain.Source{Rev: "0123abc"}
	expr := nix.ClosureExpressionForTest(source, "python312Packages.scipy")

	g := goldie.New(t)
	g.Assert(t, "expr_closure_pinned", []byte(expr))
}

func TestCatalogExpression_Golden(t *testing.T) {
	expr := nix.CatalogExpressionForTest(domain.DefaultSource(), domain.Interpreter{Major: 3, Minor: 12})

	g := goldie.New(t)
	g.Assert(t, "expr_catalog", []byte(expr))
}

func TestBuildExpression_Golden(t *testing.T) {
	expr := nix.BuildExpressionForTest(domain.DefaultSource(), "python312Packages.scipy")

	g := goldie.New(t)
	g.Assert(t, "expr_build", []byte(expr))
}

func TestExpressions_Deterministic(t *testing.T) {
	source := domain.DefaultSource()
	interp := domain.Interpreter{Major: 3, Minor: 11}
	attrPath := interp.AttrPath("numpy")

	for range 3 {
		assert.Equal(t,
			nix.ClosureExpressionForTest(source, attrPath),
			nix.ClosureExpressionForTest(source, attrPath))
		assert.Equal(t,
			nix.CatalogExpressionForTest(source, interp),
			nix.CatalogExpressionForTest(source, interp))
		assert.Equal(t,
			nix.BuildExpressionForTest(source, attrPath),
			nix.BuildExpressionForTest(source, attrPath))
	}
}

func TestExpressions_CarryInterpreterVersion(t *testing.T) {
	interp := domain.Interpreter{Major: 3, Minor: 11}
	attrPath := interp.AttrPath("scipy")
	assert.Equal(t, "python311Packages.scipy", attrPath)

	expr := nix.ClosureExpressionForTest(domain.DefaultSource(), attrPath)
	assert.Contains(t, expr, "python311Packages.scipy")

	catalog := nix.CatalogExpressionForTest(domain.DefaultSource(), interp)
	assert.Contains(t, catalog, "python311Packages")
}
