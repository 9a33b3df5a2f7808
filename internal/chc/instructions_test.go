package chc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanso/internal/ir"
)

func TestEncodeInstructionsRegistersArithmeticTargetForUnboundedOperand(t *testing.T) {
	left := symValue("a", 256)
	right := symValue("b", 256)
	add := &ir.BinaryInstruction{Op: "+", Left: left, Right: right}

	entry := &ir.BasicBlock{Label: "entry", Instructions: []ir.Instruction{add}}
	entry.Terminator = &ir.ReturnTerminator{}
	fn := &ir.Function{Name: "add", Entry: entry, Blocks: []*ir.BasicBlock{entry}}

	program := testProgram()
	te := NewTargetEngine()
	builder, _, _ := newBuilder(program, "Token::add", nil, te)

	builder.Build(fn)

	require.Len(t, te.All(), 1)
	assert.Contains(t, te.All()[0].Constraints[0], "+")
}

func TestEncodeInstructionsSkipsArithmeticTargetWhenProvablySafe(t *testing.T) {
	add := &ir.BinaryInstruction{Op: "+", Left: constValue("1", 8), Right: constValue("2", 8)}

	entry := &ir.BasicBlock{Label: "entry", Instructions: []ir.Instruction{add}}
	entry.Terminator = &ir.ReturnTerminator{}
	fn := &ir.Function{Name: "add", Entry: entry, Blocks: []*ir.BasicBlock{entry}}

	program := testProgram()
	te := NewTargetEngine()
	builder, _, _ := newBuilder(program, "Token::add", nil, te)

	builder.Build(fn)

	assert.Empty(t, te.All())
}

func TestEncodeInstructionsRegistersPopEmptyArrayTargetForVectorPopBack(t *testing.T) {
	vec := symValue("items", 256)
	popCall := &ir.CallInstruction{Module: "vector", Function: "pop_back", Args: []*ir.Value{vec}}

	entry := &ir.BasicBlock{Label: "entry", Instructions: []ir.Instruction{popCall}}
	entry.Terminator = &ir.ReturnTerminator{}
	fn := &ir.Function{Name: "pop", Entry: entry, Blocks: []*ir.BasicBlock{entry}}

	program := testProgram()
	te := NewTargetEngine()
	builder, _, _ := newBuilder(program, "Token::pop", nil, te)

	builder.Build(fn)

	require.Len(t, te.All(), 1)
	assert.Contains(t, te.All()[0].Constraints[0], "items_len")
}

func TestEncodeInstructionsSplitsBlockAtInternalCallSite(t *testing.T) {
	calleeEntry := &ir.BasicBlock{Label: "entry"}
	calleeEntry.Terminator = &ir.ReturnTerminator{Value: &ir.Value{Name: "r"}}
	callee := &ir.Function{
		Name:       "helper",
		ReturnType: &ir.IntType{Bits: 256},
		Entry:      calleeEntry,
		Blocks:     []*ir.BasicBlock{calleeEntry},
	}

	call := &ir.CallInstruction{Function: "helper", Result: &ir.Value{Name: "res"}}
	entry := &ir.BasicBlock{Label: "entry", Instructions: []ir.Instruction{call}}
	entry.Terminator = &ir.ReturnTerminator{Value: &ir.Value{Name: "res"}}
	caller := &ir.Function{Name: "run", Entry: entry, Blocks: []*ir.BasicBlock{entry}}

	program := testProgram()
	program.Functions = []*ir.Function{caller, callee}

	registry := NewRegistry()
	cg := NewCallGraph()
	fa := NewFunctionAssertions()
	encoder := NewCallEncoder(registry, program, cg, "Token::run", map[string]bool{})
	encoder.Classify(caller)

	builder := NewBlockGraphBuilder(registry, program, "Token::run", cg, fa, encoder, nil)
	_, _, rules := builder.Build(caller)

	var sawCallRule bool
	for _, r := range rules {
		if containsSuffix(r.Name, "_helper") && len(r.Body) == 2 {
			sawCallRule = true
			assert.NotEmpty(t, r.Head)
		}
	}
	assert.True(t, sawCallRule, "expected a call rule among: %+v", ruleNames(rules))
}

func TestEncodeInstructionsSplitsBlockAtExternalCallSite(t *testing.T) {
	call := &ir.CallInstruction{Module: "IToken", Function: "totalSupply"}
	entry := &ir.BasicBlock{Label: "entry", Instructions: []ir.Instruction{call}}
	entry.Terminator = &ir.ReturnTerminator{}
	fn := &ir.Function{Name: "run", Entry: entry, Blocks: []*ir.BasicBlock{entry}}

	program := testProgram()
	registry := NewRegistry()
	cg := NewCallGraph()
	fa := NewFunctionAssertions()
	encoder := NewCallEncoder(registry, program, cg, "Token::run", map[string]bool{"IToken": true})
	encoder.Classify(fn)

	builder := NewBlockGraphBuilder(registry, program, "Token::run", cg, fa, encoder, nil)
	_, _, rules := builder.Build(fn)

	var sawExtCallRule bool
	for _, r := range rules {
		if containsSuffix(r.Name, "_IToken") {
			sawExtCallRule = true
		}
	}
	assert.True(t, sawExtCallRule, "expected an external call rule among: %+v", ruleNames(rules))
}
