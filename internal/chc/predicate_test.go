package chc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryDeclareIsIdempotentPerKindAndNode(t *testing.T) {
	r := NewRegistry()

	p1 := r.Declare(FunctionSummary, "transfer@Token", []string{"Int", "Address"})
	p2 := r.Declare(FunctionSummary, "transfer@Token", []string{"Int", "Address"})

	assert.Same(t, p1, p2, "declaring the same (kind, node) twice should return the same predicate")
	assert.Len(t, r.All(), 1)
}

func TestRegistryDeclareDistinguishesKind(t *testing.T) {
	r := NewRegistry()

	p1 := r.Declare(FunctionEntry, "transfer@Token", []string{"Int"})
	p2 := r.Declare(FunctionSummary, "transfer@Token", []string{"Int"})

	assert.NotEqual(t, p1.Name, p2.Name)
	assert.Len(t, r.All(), 2)
}

func TestRegistryDeclareBlockAllocatesFreshPredicateEachCall(t *testing.T) {
	r := NewRegistry()

	b1 := r.DeclareBlock("transfer@Token", "then", []string{"Int"})
	b2 := r.DeclareBlock("transfer@Token", "then", []string{"Int"})

	assert.NotEqual(t, b1.Name, b2.Name, "two blocks with the same label get distinct predicates")
	assert.Equal(t, FunctionBlock, b1.Kind)
	assert.Equal(t, FunctionBlock, b2.Kind)
}

func TestPredicateApplyRendersSExpression(t *testing.T) {
	p := &Predicate{Name: "p", Sort: []string{"Int", "Bool"}}
	assert.Equal(t, "(p x y)", p.Apply("x", "y"))
}

func TestPredicateApplyPanicsOnArityMismatch(t *testing.T) {
	p := &Predicate{Name: "p", Sort: []string{"Int", "Bool"}}
	assert.Panics(t, func() { p.Apply("x") })
}

func TestSanitizeReplacesNonIdentifierBytes(t *testing.T) {
	assert.Equal(t, "f_0x1_g", sanitize("f#0x1:g"))
}
