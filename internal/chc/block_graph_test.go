package chc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanso/internal/ir"
)

func simpleJumpFunction() *ir.Function {
	entry := &ir.BasicBlock{Label: "entry"}
	ret := &ir.BasicBlock{Label: "ret"}
	entry.Terminator = &ir.JumpTerminator{Target: ret}
	ret.Terminator = &ir.ReturnTerminator{Value: &ir.Value{Name: "x"}}

	return &ir.Function{
		Name:       "run",
		Params:     []*ir.Parameter{{Name: "x", Type: &ir.IntType{Bits: 256}}},
		ReturnType: &ir.IntType{Bits: 256},
		Entry:      entry,
		Blocks:     []*ir.BasicBlock{entry, ret},
	}
}

func newBuilder(program *ir.Program, scope string, ce *CallEncoder, te *TargetEngine) (*BlockGraphBuilder, *FunctionAssertions, *CallGraph) {
	registry := NewRegistry()
	cg := NewCallGraph()
	fa := NewFunctionAssertions()
	return NewBlockGraphBuilder(registry, program, scope, cg, fa, ce, te), fa, cg
}

func TestBuildJumpAndReturnProducesEntryJumpAndReturnRules(t *testing.T) {
	fn := simpleJumpFunction()
	program := testProgram()
	builder, _, _ := newBuilder(program, "Token::run", nil, NewTargetEngine())

	entry, exit, rules := builder.Build(fn)

	require.NotNil(t, entry)
	require.NotNil(t, exit)
	assert.Equal(t, FunctionSummary, exit.Kind)
	assert.GreaterOrEqual(t, len(rules), 3, "expect an entry-identity rule, a jump rule, and a return rule")

	var sawJump, sawReturn bool
	for _, r := range rules {
		if r.Head != "" && r.Name != "" {
			if containsSuffix(r.Name, "_jump") {
				sawJump = true
			}
			if containsSuffix(r.Name, "_return") {
				sawReturn = true
			}
		}
	}
	assert.True(t, sawJump, "expected a jump rule among: %+v", ruleNames(rules))
	assert.True(t, sawReturn, "expected a return rule among: %+v", ruleNames(rules))
}

func TestBuildBranchTerminatorProducesTrueAndFalseRules(t *testing.T) {
	cond := &ir.Value{Name: "cond"}
	entry := &ir.BasicBlock{Label: "entry"}
	trueBlk := &ir.BasicBlock{Label: "t"}
	falseBlk := &ir.BasicBlock{Label: "f"}
	entry.Terminator = &ir.BranchTerminator{Condition: cond, TrueBlock: trueBlk, FalseBlock: falseBlk}
	trueBlk.Terminator = &ir.ReturnTerminator{}
	falseBlk.Terminator = &ir.ReturnTerminator{}

	fn := &ir.Function{Name: "pick", Entry: entry, Blocks: []*ir.BasicBlock{entry, trueBlk, falseBlk}}
	program := testProgram()
	builder, _, _ := newBuilder(program, "Token::pick", nil, NewTargetEngine())

	_, _, rules := builder.Build(fn)

	var sawTrue, sawFalse bool
	for _, r := range rules {
		if containsSuffix(r.Name, "_true") {
			sawTrue = true
			assert.Contains(t, r.Body, "(= "+sanitize(cond.Name)+" true)")
		}
		if containsSuffix(r.Name, "_false") {
			sawFalse = true
			assert.Contains(t, r.Body, "(= "+sanitize(cond.Name)+" false)")
		}
	}
	assert.True(t, sawTrue)
	assert.True(t, sawFalse)
}

func TestBuildRevertAssertRegistersTargetAndAssertion(t *testing.T) {
	entry := &ir.BasicBlock{Label: "entry"}
	entry.Terminator = &ir.RevertInstruction{Reason: "assert"}

	fn := &ir.Function{Name: "checked", Entry: entry, Blocks: []*ir.BasicBlock{entry}}
	program := testProgram()
	te := NewTargetEngine()
	builder, fa, _ := newBuilder(program, "Token::checked", nil, te)

	builder.Build(fn)

	assert.Len(t, te.All(), 1)
	assert.Equal(t, "Token::checked", te.All()[0].Scope)
	assert.Len(t, fa.In("Token::checked"), 1)
}

func TestBuildRevertRequireDoesNotRegisterAssertTarget(t *testing.T) {
	entry := &ir.BasicBlock{Label: "entry"}
	entry.Terminator = &ir.RevertInstruction{Reason: "require"}

	fn := &ir.Function{Name: "guarded", Entry: entry, Blocks: []*ir.BasicBlock{entry}}
	program := testProgram()
	te := NewTargetEngine()
	builder, fa, _ := newBuilder(program, "Token::guarded", nil, te)

	builder.Build(fn)

	assert.Empty(t, te.All())
	assert.Empty(t, fa.In("Token::guarded"))
}

func containsSuffix(s, suffix string) bool {
	if len(s) < len(suffix) {
		return false
	}
	return s[len(s)-len(suffix):] == suffix
}

func ruleNames(rules []*Rule) []string {
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.Name
	}
	return names
}
