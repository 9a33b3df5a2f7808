package chc

import (
	"fmt"

	"kanso/internal/ast"
	"kanso/internal/ir"
)

// BlockGraphBuilder turns one function's already-built IR control-flow
// graph into FunctionBlock predicates and implication rules, per spec.md
// §4.2. Unlike a from-scratch encoder walking the AST, if/while/for/
// break/continue have already been lowered into ir.BasicBlock/Terminator
// once, by internal/ir's builder (see internal/ir/control_flow.go) — this
// builder's job is only to turn that CFG into predicates and rules, not to
// re-derive control flow from the AST a second time.
type BlockGraphBuilder struct {
	registry *Registry
	sorts    SortBuilder
	program  *ir.Program

	scope string // "C::f" — used to key predicate names and the call graph

	blockPreds map[*ir.BasicBlock]*Predicate
	rules      []*Rule

	callGraph  *CallGraph
	assertions *FunctionAssertions

	callEncoder *CallEncoder
	targets     *TargetEngine

	idx        *IndexManager
	fr         *frame
	entryFrame []string
}

func NewBlockGraphBuilder(registry *Registry, program *ir.Program, scope string, cg *CallGraph, fa *FunctionAssertions, ce *CallEncoder, te *TargetEngine) *BlockGraphBuilder {
	return &BlockGraphBuilder{
		registry:    registry,
		program:     program,
		scope:       scope,
		blockPreds:  make(map[*ir.BasicBlock]*Predicate),
		callGraph:   cg,
		assertions:  fa,
		callEncoder: ce,
		targets:     te,
		idx:         NewIndexManager(),
		fr:          newFrame(program),
	}
}

// Build encodes fn's entire body: a FunctionEntry predicate, one
// FunctionBlock predicate per basic block, and the implication rules
// connecting them, terminating either at a return (flowing to the function
// summary) or a revert (a dead end whose reachability is bound to a
// verification target elsewhere).
func (b *BlockGraphBuilder) Build(fn *ir.Function) (entry, exit *Predicate, rules []*Rule) {
	entrySort := b.sorts.FunctionEntrySort(b.program, fn)
	entryPred := b.registry.Declare(FunctionEntry, b.scope, entrySort)

	args := b.entryArgs(fn)
	b.entryFrame = args

	for _, block := range fn.Blocks {
		b.blockPreds[block] = b.registry.DeclareBlock(b.scope, block.Label, entrySort)
	}

	// entry ⇒ body(entry block), identity rule asserting parameter/state
	// identity at SSA-0 (spec.md §4.2's "asserts parameter identity with
	// SSA-0, asserts err = 0 and state = state(0)").
	bodyPred := b.blockPreds[fn.Entry]
	entryRule := &Rule{
		Name:      fmt.Sprintf("entry_%s", b.scope),
		BoundVars: boundVars(args),
		Head:      bodyPred.Apply(args...),
	}
	// Non-payable functions reject a nonzero msg.value outright: the entry
	// rule only fires when value is 0, so any call site sending value
	// against a non-payable function has no way to reach the body.
	if fn.Mutability != ast.MutPayable {
		entryRule.Body = []string{fmt.Sprintf("(= %s 0)", args[b.fr.valueIndex()])}
	}
	b.rules = append(b.rules, entryRule)

	summarySort := b.sorts.FunctionSummarySort(b.program, fn)
	if fn.Create {
		summarySort = b.sorts.ConstructorSummarySort(b.program)
	}
	summaryExit := b.registry.Declare(FunctionSummary, b.scope, summarySort)

	for _, block := range fn.Blocks {
		b.encodeBlock(fn, block, summaryExit)
	}

	return entryPred, summaryExit, b.rules
}

func (b *BlockGraphBuilder) entryArgs(fn *ir.Function) []string {
	args := b.fr.current(b.idx)
	for _, p := range fn.Params {
		args = append(args, sanitize(p.Name))
	}
	return args
}

func (b *BlockGraphBuilder) freshBlockArgs(fn *ir.Function) []string {
	args := b.fr.fresh(b.idx)
	for _, p := range fn.Params {
		args = append(args, sanitize(p.Name))
	}
	return args
}

func (b *BlockGraphBuilder) encodeBlock(fn *ir.Function, block *ir.BasicBlock, summary *Predicate) {
	startPred := b.blockPreds[block]
	startArgs := b.freshBlockArgs(fn)

	// Havoc knowledge before proceeding out of any block whose body
	// contains an unknown external call — spec.md §4.2's merge-block
	// knowledge erasure requirement.
	if b.callEncoder != nil && b.callEncoder.HasUnknownCall(block) {
		startArgs = b.callEncoder.EraseKnowledge(startArgs, b.program)
		b.fr.erase(b.idx)
	}

	// Arithmetic/call/pop instructions inside the block may advance pred
	// and args past startPred/startArgs — a call site splits the block at
	// that point into its own fresh predicate (spec.md §4.4).
	pred, args := b.encodeInstructions(fn, block, startPred, startArgs)

	switch term := block.Terminator.(type) {
	case *ir.BranchTerminator:
		b.rules = append(b.rules, &Rule{
			Name:      fmt.Sprintf("%s_true", pred.Name),
			BoundVars: boundVars(args),
			Body:      []string{pred.Apply(args...), fmt.Sprintf("(= %s true)", conditionSymbol(term.Condition))},
			Head:      b.blockPreds[term.TrueBlock].Apply(args...),
		})
		b.rules = append(b.rules, &Rule{
			Name:      fmt.Sprintf("%s_false", pred.Name),
			BoundVars: boundVars(args),
			Body:      []string{pred.Apply(args...), fmt.Sprintf("(= %s false)", conditionSymbol(term.Condition))},
			Head:      b.blockPreds[term.FalseBlock].Apply(args...),
		})

	case *ir.JumpTerminator:
		b.rules = append(b.rules, &Rule{
			Name:      fmt.Sprintf("%s_jump", pred.Name),
			BoundVars: boundVars(args),
			Body:      []string{pred.Apply(args...)},
			Head:      b.blockPreds[term.Target].Apply(args...),
		})

	case *ir.ReturnTerminator:
		summaryArgs := b.summaryArgs(fn, args, term)
		bound := dedupStrings(append(append([]string{}, args...), summaryArgs...))
		b.rules = append(b.rules, &Rule{
			Name:      fmt.Sprintf("%s_return", pred.Name),
			BoundVars: boundVars(bound),
			Body:      []string{pred.Apply(args...)},
			Head:      summary.Apply(summaryArgs...),
		})

	case *ir.RevertInstruction:
		// Dead end: no successor rule. The assert/require target generator
		// (targets.go) separately binds reachability of this block's
		// predicate to a verification target, using term.Reason to pick
		// Assert vs. a generic revert (which carries no arithmetic target
		// of its own — reaching it is by construction, not a bug).
		if b.targets != nil && term.Reason == "assert" {
			b.targets.RegisterAssert(b.scope, pred, args)
			b.assertions.Record(b.scope, nil)
		}

	default:
		// Unreachable per the IR builder's own invariant (every block gets
		// a terminator) — see internal/ir/builder.go's buildBlock, which
		// always closes a block before returning control to the caller.
	}
}

// summaryArgs assembles one full FunctionSummarySort/ConstructorSummarySort
// tuple for a return site: the overall call outcome (err, addr) plus the
// function's entry-time frame as the "pre" half, the return block's live
// frame as the "post" half, and any returned value(s) — per spec.md §4.1's
// "[err, addr, state_pre, S̄_pre, value, params_pre..., state_post, S̄_post,
// params_post..., returns...]" layout. Constructors use the narrower
// ConstructorSummarySort, which carries neither params nor returns.
func (b *BlockGraphBuilder) summaryArgs(fn *ir.Function, blockArgs []string, ret *ir.ReturnTerminator) []string {
	stateLen := len(b.program.Storage)
	pre := b.entryFrame

	if fn.Create {
		args := []string{pre[0], pre[1], pre[2]}
		args = append(args, pre[3:3+stateLen]...)
		args = append(args, pre[3+stateLen]) // value
		args = append(args, blockArgs[2])
		args = append(args, blockArgs[3:3+stateLen]...)
		return args
	}

	args := []string{pre[0], pre[1]}
	args = append(args, pre[2:4+stateLen]...) // state_pre, S̄_pre, value
	args = append(args, pre[4+stateLen:]...)  // params_pre
	args = append(args, blockArgs[2])
	args = append(args, blockArgs[3:3+stateLen]...)
	args = append(args, blockArgs[4+stateLen:]...) // params_post, skipping the post-call value slot
	if ret.Value != nil {
		args = append(args, valueSymbol(ret.Value))
	}
	return args
}

func boundVars(args []string) []BoundVar {
	vars := make([]BoundVar, len(args))
	for i, a := range args {
		vars[i] = BoundVar{Name: a, Sort: "Int"}
	}
	return vars
}

func conditionSymbol(v *ir.Value) string {
	if v == nil {
		return "true"
	}
	return sanitize(v.Name)
}

func valueSymbol(v *ir.Value) string {
	if v == nil {
		return "0"
	}
	return sanitize(v.Name)
}
