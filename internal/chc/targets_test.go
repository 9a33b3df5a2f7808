package chc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kanso/internal/errors"
	"kanso/internal/ir"
)

func TestTargetQueryRendersExistsWhenArgsPresent(t *testing.T) {
	registry := NewRegistry()
	pred := registry.Declare(FunctionBlock, "Token::run#b#1", []string{"Int", "Int"})

	target := &Target{
		ErrorID:     errors.VerificationAssert,
		Scope:       "Token::run",
		From:        pred,
		Args:        []string{"a0", "a1"},
		Constraints: []string{"(= a0 1)"},
	}

	query := target.Query()
	assert.Contains(t, query, "(assert (exists (")
	assert.Contains(t, query, pred.Apply("a0", "a1"))
	assert.Contains(t, query, "(= a0 1)")
}

func TestTargetQueryRendersBareAssertWhenNoArgs(t *testing.T) {
	registry := NewRegistry()
	pred := registry.DeclareError("checked")

	target := &Target{ErrorID: errors.VerificationAssert, From: pred}
	query := target.Query()

	assert.Equal(t, "(assert "+pred.Apply()+")", query)
}

func TestRegisterAssertAddsAssertTarget(t *testing.T) {
	engine := NewTargetEngine()
	pred := &Predicate{Name: "p", Sort: []string{"Int"}}

	engine.RegisterAssert("Token::run", pred, []string{"a0"})

	require := engine.All()
	assert.Len(t, require, 1)
	assert.Equal(t, errors.VerificationAssert, require[0].ErrorID)
}

func TestRegisterArithmeticDispatchesOnOperator(t *testing.T) {
	pred := &Predicate{Name: "p", Sort: []string{"Int"}}
	cases := []struct {
		op   string
		want int
	}{
		{"+", errors.VerificationOverflow},
		{"-", errors.VerificationUnderflow},
		{"*", errors.VerificationOverflow},
		{"/", errors.VerificationDivByZero},
		{"%", errors.VerificationDivByZero},
	}
	for _, c := range cases {
		engine := NewTargetEngine()
		engine.RegisterArithmetic("Token::run", &ir.BinaryInstruction{Op: c.op}, pred, []string{"a0"}, "(= guard true)")
		require := engine.All()
		assert.Len(t, require, 1, "op %s", c.op)
		assert.Equal(t, c.want, require[0].ErrorID, "op %s", c.op)
		assert.Equal(t, []string{"(= guard true)"}, require[0].Constraints)
	}
}

func TestRegisterArithmeticIgnoresUnknownOperator(t *testing.T) {
	engine := NewTargetEngine()
	pred := &Predicate{Name: "p", Sort: []string{"Int"}}
	engine.RegisterArithmetic("Token::run", &ir.BinaryInstruction{Op: "=="}, pred, []string{"a0"}, "true")
	assert.Empty(t, engine.All())
}

func TestRegisterPopEmptyArrayBindsLengthZeroConstraint(t *testing.T) {
	engine := NewTargetEngine()
	pred := &Predicate{Name: "p", Sort: []string{"Int"}}
	engine.RegisterPopEmptyArray("Token::run", pred, []string{"a0"}, "len0")

	require := engine.All()
	assert.Len(t, require, 1)
	assert.Equal(t, errors.VerificationPopEmptyArray, require[0].ErrorID)
	assert.Equal(t, []string{"(= len0 0)"}, require[0].Constraints)
}

func TestForScopeFiltersByScope(t *testing.T) {
	engine := NewTargetEngine()
	pred := &Predicate{Name: "p", Sort: nil}
	engine.RegisterAssert("Token::a", pred, nil)
	engine.RegisterAssert("Token::b", pred, nil)

	assert.Len(t, engine.ForScope("Token::a"), 1)
	assert.Len(t, engine.ForScope("Token::b"), 1)
	assert.Empty(t, engine.ForScope("Token::c"))
}
