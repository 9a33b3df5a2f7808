package chc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuleSMTLIB2WithBoundVarsAndBody(t *testing.T) {
	r := &Rule{
		Name:      "example",
		BoundVars: []BoundVar{{Name: "x", Sort: "Int"}, {Name: "ok", Sort: "Bool"}},
		Body:      []string{"(block x ok)", "(= ok true)"},
		Head:      "(next x)",
	}

	got := r.SMTLIB2()
	assert.Contains(t, got, "(forall ((x Int) (ok Bool))")
	assert.Contains(t, got, "(and (block x ok) (= ok true))")
	assert.Contains(t, got, "(=> (and (block x ok) (= ok true)) (next x))")
}

func TestRuleSMTLIB2NoBoundVarsFactRule(t *testing.T) {
	r := &Rule{Head: "(base 0 0)"}
	assert.Equal(t, "(assert (=> true (base 0 0)))", r.SMTLIB2())
}

func TestRuleSMTLIB2BareBodyAssertion(t *testing.T) {
	r := &Rule{BoundVars: []BoundVar{{Name: "x", Sort: "Int"}}, Body: []string{"(p x)"}}
	got := r.SMTLIB2()
	assert.Contains(t, got, "(forall ((x Int)) (p x))")
}

func TestSmtSortMapping(t *testing.T) {
	assert.Equal(t, "Bool", smtSort("Bool"))
	assert.Equal(t, "Int", smtSort("Address"))
	assert.Equal(t, "Int", smtSort("Error"))
	assert.Equal(t, "Int", smtSort("Int"))
}
