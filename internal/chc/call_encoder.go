package chc

import (
	"fmt"

	"kanso/internal/ir"
)

// CallEncoder classifies every ir.CallInstruction the block graph builder
// walks over and produces the rules spec.md §4.4 assigns to each class:
// internal calls apply the callee's function summary; external/static
// calls on a known interface assert against that interface's nondet
// summary; anything else is an unknown call, which erases knowledge of
// every cross-function symbol rather than modeling an effect.
type CallEncoder struct {
	registry   *Registry
	sorts      SortBuilder
	program    *ir.Program
	callGraph  *CallGraph
	scope      string
	interfaces map[string]bool // known contract/interface names, for external-vs-unknown classification

	unknownBlocks map[*ir.BasicBlock]bool
}

func NewCallEncoder(registry *Registry, program *ir.Program, callGraph *CallGraph, scope string, interfaces map[string]bool) *CallEncoder {
	return &CallEncoder{
		registry:      registry,
		program:       program,
		callGraph:     callGraph,
		scope:         scope,
		interfaces:    interfaces,
		unknownBlocks: make(map[*ir.BasicBlock]bool),
	}
}

// Classify scans every instruction in fn's blocks, recording the call
// graph edges for internal calls and marking blocks that contain an
// unknown call so the block graph builder knows to erase knowledge there.
func (e *CallEncoder) Classify(fn *ir.Function) {
	for _, block := range fn.Blocks {
		for _, inst := range block.Instructions {
			call, ok := inst.(*ir.CallInstruction)
			if !ok {
				continue
			}
			switch e.classOf(call) {
			case callInternal:
				e.callGraph.AddEdge(e.scope, call.Function)
			case callUnknown:
				e.unknownBlocks[block] = true
			}
		}
	}
}

type callClass int

const (
	callInternal callClass = iota
	callExternal
	callUnknown
)

// classOf implements spec.md §4.4's classification: a call into the same
// contract's own linearized function set is internal; a call whose Module
// names a declared interface is external; everything else (including
// std::evm primitives the encoder has no model for, and calls through a
// value of unknown concrete type) is unknown.
func (e *CallEncoder) classOf(call *ir.CallInstruction) callClass {
	if call.Module == "" || call.Module == e.program.Contract {
		return callInternal
	}
	if e.interfaces != nil && e.interfaces[call.Module] {
		return callExternal
	}
	return callUnknown
}

func (e *CallEncoder) HasUnknownCall(block *ir.BasicBlock) bool {
	return e.unknownBlocks[block]
}

// EraseKnowledge returns a fresh arg list for the crossing predicate,
// replacing every state/error slot with a freshly named unconstrained
// symbol — spec.md §4.4/§9's "knowledge erasure" after an unknown call.
// Parameters (which an unknown call cannot retroactively change) pass
// through unmodified.
func (e *CallEncoder) EraseKnowledge(args []string, program *ir.Program) []string {
	erased := append([]string{}, args...)
	// args[0..3+len(state)) is err, addr, state-symbol, S̄ per FunctionEntrySort's
	// layout; only those cross-function-visible slots are erased.
	erasedCount := 3 + len(program.Storage)
	for i := 0; i < erasedCount && i < len(erased); i++ {
		erased[i] = fmt.Sprintf("%s_havoc", erased[i])
	}
	return erased
}

// EncodeInternalCall builds the apply-summary rule for one call site: the
// caller's frame before the call, conjoined with the callee's
// FunctionSummary relation, implies headPred holding at the caller's frame
// after the call (spec.md §4.4's "internal calls apply the callee's
// summary directly, threading state/error through"). postFrame supplies
// the fresh err/state/storage names the call site advances to — the
// caller's address and parameters an internal call cannot retroactively
// change pass through preArgs unmodified.
func (e *CallEncoder) EncodeInternalCall(callerPred *Predicate, preArgs []string, callee *ir.Function, call *ir.CallInstruction, headPred *Predicate, postFrame []string, label string) *Rule {
	summary := e.registry.Declare(FunctionSummary, calleeScope(e.program.Contract, callee.Name), e.sorts.FunctionSummarySort(e.program, callee))
	stateLen := len(e.sorts.stateSort(e.program))

	paramsPre := make([]string, len(call.Args))
	for i, a := range call.Args {
		paramsPre[i] = valueSymbol(a)
	}

	calleeArgs := []string{postFrame[0], preArgs[1], preArgs[2]}
	calleeArgs = append(calleeArgs, preArgs[3:3+stateLen]...)
	calleeArgs = append(calleeArgs, preArgs[3+stateLen]) // value: an internal call is still the same call frame, msg.value doesn't change
	calleeArgs = append(calleeArgs, paramsPre...)
	calleeArgs = append(calleeArgs, postFrame[2])
	calleeArgs = append(calleeArgs, postFrame[3:3+stateLen]...)
	calleeArgs = append(calleeArgs, paramsPre...) // params_post: by-value params pass straight through
	if callee.ReturnType != nil {
		for i := range flattenReturnSort(callee.ReturnType) {
			if i == 0 && call.Result != nil {
				calleeArgs = append(calleeArgs, valueSymbol(call.Result))
			} else {
				calleeArgs = append(calleeArgs, fmt.Sprintf("%s_ret%d", sanitize(label), i))
			}
		}
	}

	postArgs := append(append([]string{}, postFrame...), preArgs[4+stateLen:]...)
	bound := dedupStrings(append(append(append([]string{}, preArgs...), calleeArgs...), postArgs...))

	return &Rule{
		Name:      fmt.Sprintf("call_%s_%s", sanitize(label), callee.Name),
		BoundVars: boundVars(bound),
		Body:      []string{callerPred.Apply(preArgs...), summary.Apply(calleeArgs...)},
		Head:      headPred.Apply(postArgs...),
	}
}

// EncodeExternalCall asserts the target interface's NondetInterface
// relation between pre- and post-call state, modeling "some unknown
// function of the callee contract ran and it respects the interface's
// declared effect shape, but nothing more" (spec.md §4.4), and returns the
// implication rule threading the caller's frame through it.
func (e *CallEncoder) EncodeExternalCall(iface string, callerPred *Predicate, preArgs []string, headPred *Predicate, postFrame []string, label string) *Rule {
	pred := e.registry.Declare(NondetInterface, iface, SortBuilder{}.NondetInterfaceSort(e.program))
	stateLen := len(e.sorts.stateSort(e.program))

	ndArgs := append([]string{postFrame[0], preArgs[1], preArgs[2]}, preArgs[3:3+stateLen]...)
	ndArgs = append(ndArgs, postFrame[2])
	ndArgs = append(ndArgs, postFrame[3:3+stateLen]...)

	postArgs := append(append([]string{}, postFrame...), preArgs[4+stateLen:]...)
	bound := dedupStrings(append(append(append([]string{}, preArgs...), ndArgs...), postArgs...))

	return &Rule{
		Name:      fmt.Sprintf("extcall_%s_%s", sanitize(label), iface),
		BoundVars: boundVars(bound),
		Body:      []string{callerPred.Apply(preArgs...), pred.Apply(ndArgs...)},
		Head:      headPred.Apply(postArgs...),
	}
}

func dedupStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func calleeScope(contract, fn string) string {
	return fmt.Sprintf("%s::%s", contract, fn)
}
