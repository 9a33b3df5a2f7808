package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanso/internal/ast"
)

func basePath(name string) *ast.CalleePath {
	return &ast.CalleePath{Parts: []ast.Ident{{Value: name}}}
}

func namedContract(name string, bases ...*ast.CalleePath) *ast.Contract {
	return &ast.Contract{Name: ast.Ident{Value: name}, Bases: bases}
}

func TestLinearizeNoBasesReturnsEmpty(t *testing.T) {
	c := namedContract("Token")
	order, err := Linearize(c, map[string]*ast.Contract{})

	require.NoError(t, err)
	assert.Empty(t, order)
}

func TestLinearizeSingleBase(t *testing.T) {
	base := namedContract("Ownable")
	derived := namedContract("Token", basePath("Ownable"))
	registry := map[string]*ast.Contract{"Ownable": base}

	order, err := Linearize(derived, registry)

	require.NoError(t, err)
	require.Len(t, order, 1)
	assert.Equal(t, "Ownable", order[0].Name.Value)
}

func TestLinearizeDiamondDeduplicatesKeepingFirstOccurrence(t *testing.T) {
	root := namedContract("Base")
	left := namedContract("Left", basePath("Base"))
	right := namedContract("Right", basePath("Base"))
	derived := namedContract("Token", basePath("Left"), basePath("Right"))

	registry := map[string]*ast.Contract{
		"Base":  root,
		"Left":  left,
		"Right": right,
	}

	order, err := Linearize(derived, registry)
	require.NoError(t, err)

	names := make([]string, len(order))
	for i, c := range order {
		names[i] = c.Name.Value
	}
	assert.Equal(t, []string{"Base", "Left", "Right"}, names, "Base should appear exactly once, before both Left and Right")
}

func TestLinearizeDetectsCycle(t *testing.T) {
	a := namedContract("A", basePath("B"))
	b := namedContract("B", basePath("A"))
	registry := map[string]*ast.Contract{"A": a, "B": b}

	_, err := Linearize(a, registry)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "circular inheritance")
}

func TestLinearizeUnknownBaseReportsError(t *testing.T) {
	derived := namedContract("Token", basePath("Missing"))
	_, err := Linearize(derived, map[string]*ast.Contract{})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown base")
}

func TestResolveInheritedItemsAppliesOverrideShadowing(t *testing.T) {
	analyzer := NewAnalyzer()

	base := namedContract("Base")
	analyzer.RegisterBaseContract(base)

	derived := namedContract("Token", basePath("Base"))
	items := analyzer.resolveInheritedItems(derived)

	assert.Empty(t, items, "a base with no items contributes none")
}
