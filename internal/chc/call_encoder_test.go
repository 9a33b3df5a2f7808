package chc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kanso/internal/ir"
)

func TestClassifyRecordsInternalEdgeAndFlagsUnknownBlock(t *testing.T) {
	program := testProgram()
	cg := NewCallGraph()
	registry := NewRegistry()
	interfaces := map[string]bool{"IERC20": true}

	internalCall := &ir.CallInstruction{Function: "helper", Module: ""}
	externalCall := &ir.CallInstruction{Function: "transfer", Module: "IERC20"}
	unknownCall := &ir.CallInstruction{Function: "mystery", Module: "SomeOther"}

	block := &ir.BasicBlock{
		Label:        "body",
		Instructions: []ir.Instruction{internalCall, externalCall, unknownCall},
	}
	fn := &ir.Function{Name: "run", Entry: block, Blocks: []*ir.BasicBlock{block}}

	encoder := NewCallEncoder(registry, program, cg, "Token::run", interfaces)
	encoder.Classify(fn)

	assert.ElementsMatch(t, []string{"helper"}, cg.Callees("Token::run"))
	assert.True(t, encoder.HasUnknownCall(block))
}

func TestClassifyLeavesBlockWithOnlyKnownCallsUnflagged(t *testing.T) {
	program := testProgram()
	cg := NewCallGraph()
	registry := NewRegistry()

	block := &ir.BasicBlock{
		Label:        "body",
		Instructions: []ir.Instruction{&ir.CallInstruction{Function: "helper", Module: ""}},
	}
	fn := &ir.Function{Name: "run", Entry: block, Blocks: []*ir.BasicBlock{block}}

	encoder := NewCallEncoder(registry, program, cg, "Token::run", nil)
	encoder.Classify(fn)

	assert.False(t, encoder.HasUnknownCall(block))
}

func TestClassOfDistinguishesInternalExternalUnknown(t *testing.T) {
	program := testProgram()
	encoder := NewCallEncoder(NewRegistry(), program, NewCallGraph(), "Token::run", map[string]bool{"IERC20": true})

	assert.Equal(t, callInternal, encoder.classOf(&ir.CallInstruction{Module: ""}))
	assert.Equal(t, callInternal, encoder.classOf(&ir.CallInstruction{Module: "Token"}))
	assert.Equal(t, callExternal, encoder.classOf(&ir.CallInstruction{Module: "IERC20"}))
	assert.Equal(t, callUnknown, encoder.classOf(&ir.CallInstruction{Module: "Mystery"}))
}

func TestEraseKnowledgeHavocsOnlyCrossFunctionSlots(t *testing.T) {
	program := testProgram() // 2 storage slots
	encoder := NewCallEncoder(NewRegistry(), program, NewCallGraph(), "Token::run", nil)

	args := []string{"err", "addr", "state0", "s0_0", "s0_1", "x"}
	erased := encoder.EraseKnowledge(args, program)

	assert.Equal(t, []string{"err_havoc", "addr_havoc", "state0_havoc", "s0_0_havoc", "s0_1_havoc", "x"}, erased)
}

func TestCalleeScopeFormatsContractAndFunction(t *testing.T) {
	assert.Equal(t, "Token::transfer", calleeScope("Token", "transfer"))
}

func TestEncodeInternalCallAppliesCalleeSummaryBetweenCallerFrames(t *testing.T) {
	program := testProgram() // 2 storage slots
	registry := NewRegistry()
	encoder := NewCallEncoder(registry, program, NewCallGraph(), "Token::run", nil)

	callerPred := registry.DeclareBlock("Token::run", "entry", SortBuilder{}.FunctionEntrySort(program, &ir.Function{}))
	preArgs := []string{"err_0", "addr_0", "state_0", "stor0_0", "stor1_0", "value_0"}

	callee := &ir.Function{Name: "helper", ReturnType: &ir.IntType{Bits: 256}}
	call := &ir.CallInstruction{Function: "helper", Result: &ir.Value{Name: "res"}}

	postFrame := []string{"err_1", "addr_0", "state_1", "stor0_1", "stor1_1", "value_0"}
	headPred := registry.DeclareBlock("Token::run", "entry_call0", SortBuilder{}.FunctionEntrySort(program, &ir.Function{}))

	rule := encoder.EncodeInternalCall(callerPred, preArgs, callee, call, headPred, postFrame, "entry_call0")

	assert.Contains(t, rule.Body[0], callerPred.Name)
	assert.Contains(t, rule.Body[1], "function_summary")
	assert.Contains(t, rule.Body[1], "res")
	assert.Equal(t, headPred.Apply(postFrame...), rule.Head)
}

func TestEncodeExternalCallAssertsNondetInterfaceBetweenCallerFrames(t *testing.T) {
	program := testProgram()
	registry := NewRegistry()
	encoder := NewCallEncoder(registry, program, NewCallGraph(), "Token::run", map[string]bool{"IToken": true})

	callerPred := registry.DeclareBlock("Token::run", "entry", SortBuilder{}.FunctionEntrySort(program, &ir.Function{}))
	preArgs := []string{"err_0", "addr_0", "state_0", "stor0_0", "stor1_0", "value_0"}
	postFrame := []string{"err_1", "addr_0", "state_1", "stor0_1", "stor1_1", "value_0"}
	headPred := registry.DeclareBlock("Token::run", "entry_extcall0", SortBuilder{}.FunctionEntrySort(program, &ir.Function{}))

	rule := encoder.EncodeExternalCall("IToken", callerPred, preArgs, headPred, postFrame, "entry_extcall0")

	assert.Contains(t, rule.Body[0], callerPred.Name)
	assert.Contains(t, rule.Body[1], "nondet_interface")
	assert.Equal(t, headPred.Apply(postFrame...), rule.Head)
}

func TestDedupStringsRemovesRepeatsPreservingFirstOccurrenceOrder(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, dedupStrings([]string{"a", "b", "a", "c", "b"}))
}
