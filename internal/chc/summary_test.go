package chc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanso/internal/ir"
)

func noParamFunction(name string) *ir.Function {
	return &ir.Function{Name: name}
}

func TestEncodeInterfaceBindsAddrAndPostStateFromSummaryTail(t *testing.T) {
	program := testProgram() // 2 storage vars
	registry := NewRegistry()
	enc := NewSummaryEncoder(registry, program, program.Contract)

	fn := noParamFunction("withdraw")
	sb := SortBuilder{}
	summary := registry.Declare(FunctionSummary, "Token::withdraw", sb.FunctionSummarySort(program, fn))

	rule := enc.EncodeInterface(fn, summary)

	require.Len(t, rule.BoundVars, summary.Arity())
	assert.Len(t, rule.Body, 2)
	assert.Contains(t, rule.Body, summary.Apply(namesOf(rule.BoundVars)...))

	// err, addr, state0, S0(2), value, state1, S1(2) -> addr is index 1, postState index 6.
	assert.Contains(t, rule.Head, rule.BoundVars[1].Name)
	assert.Contains(t, rule.Head, rule.BoundVars[6].Name)
}

func TestEncodeConstructorInterfaceBindsAddrAndPostStateFromCtorSummaryTail(t *testing.T) {
	program := testProgram()
	registry := NewRegistry()
	enc := NewSummaryEncoder(registry, program, program.Contract)

	sb := SortBuilder{}
	ctorSummary := registry.Declare(FunctionSummary, "Token::ctor", sb.ConstructorSummarySort(program))

	rule := enc.EncodeConstructorInterface(ctorSummary)

	require.Len(t, rule.BoundVars, ctorSummary.Arity())
	assert.Len(t, rule.Body, 2)
	// err, addr, state0, S0(2), value, state1, S1(2) -> addr is index 1, postState index 6.
	assert.Contains(t, rule.Head, rule.BoundVars[1].Name)
	assert.Contains(t, rule.Head, rule.BoundVars[6].Name)
}

func TestEncodeNondetInterfaceIsAnUnconstrainedFact(t *testing.T) {
	program := testProgram()
	registry := NewRegistry()
	enc := NewSummaryEncoder(registry, program, program.Contract)

	rule := enc.EncodeNondetInterface("IERC20")

	assert.Empty(t, rule.Body)
	assert.NotEmpty(t, rule.Head)
	sb := SortBuilder{}
	assert.Len(t, rule.BoundVars, len(sb.NondetInterfaceSort(program)))
}

func TestEncodeImplicitConstructorAssertsErrZero(t *testing.T) {
	program := testProgram()
	registry := NewRegistry()
	enc := NewSummaryEncoder(registry, program, program.Contract)

	rule := enc.EncodeImplicitConstructor()

	require.Len(t, rule.BoundVars, 3)
	assert.Equal(t, []string{"(= err0 0)"}, rule.Body)
}

func TestEncodeConstructorSummaryConjoinsImplicitAndExit(t *testing.T) {
	program := testProgram()
	registry := NewRegistry()
	enc := NewSummaryEncoder(registry, program, program.Contract)

	implicit := registry.Declare(ImplicitConstructor, program.Contract, SortBuilder{}.ImplicitConstructorSort())
	exit := registry.Declare(FunctionSummary, "Token::ctor", SortBuilder{}.ConstructorSummarySort(program))

	rule := enc.EncodeConstructorSummary(implicit, exit)

	assert.Len(t, rule.Body, 2)
	assert.Len(t, rule.BoundVars, implicit.Arity()+exit.Arity())
}

func TestEncodeTransactionInductionTiesPriorInterfaceToNewSummary(t *testing.T) {
	program := testProgram()
	registry := NewRegistry()
	enc := NewSummaryEncoder(registry, program, program.Contract)

	fn := noParamFunction("deposit")
	summary := registry.Declare(FunctionSummary, "Token::deposit", SortBuilder{}.FunctionSummarySort(program, fn))
	ifacePred := registry.Declare(Interface, program.Contract, SortBuilder{}.InterfaceSort(program))

	rule := enc.EncodeTransactionInduction(fn, summary)

	require.Len(t, rule.Body, 6)
	assert.True(t, ruleBodyContainsPredicate(rule.Body, ifacePred.Name))
	assert.True(t, ruleBodyContainsPredicate(rule.Body, summary.Name))
	summaryErrArg := namesOf(rule.BoundVars)[ifacePred.Arity()]
	assert.Contains(t, rule.Body, "(= "+summaryErrArg+" 0)")
	assert.Contains(t, rule.Head, ifacePred.Name)
}

func TestArgNamesForUsesPredicateNameAsDisambiguator(t *testing.T) {
	pred := &Predicate{Name: "iface_Token", Sort: []string{"Int", "Int"}}
	names := argNamesFor(pred, "prev")
	assert.Equal(t, []string{"prev_iface_Token0", "prev_iface_Token1"}, names)
}

func TestEqAllConjoinsPairwiseEquality(t *testing.T) {
	assert.Equal(t, "true", eqAll(nil, nil))
	assert.Equal(t, "(= a0 b0)", eqAll([]string{"a0"}, []string{"b0"}))
	assert.Equal(t, "(and (= a0 b0) (= a1 b1))", eqAll([]string{"a0", "a1"}, []string{"b0", "b1"}))
}

func namesOf(vars []BoundVar) []string {
	out := make([]string, len(vars))
	for i, v := range vars {
		out[i] = v.Name
	}
	return out
}

func ruleBodyContainsPredicate(body []string, predName string) bool {
	for _, b := range body {
		if len(b) > len(predName)+1 && b[1:len(predName)+1] == predName {
			return true
		}
	}
	return false
}
