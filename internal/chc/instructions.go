package chc

import (
	"fmt"

	"kanso/internal/ir"
)

// encodeInstructions walks block's instruction list — the IR's already-
// lowered three-address form, see internal/ir/builder.go — between its
// predicate's entry frame and its terminator, turning every arithmetic
// and call instruction into the facts and target registrations spec.md
// §4.4/§4.5 describe. A call site splits the block at that point: the
// predicate/frame pair it returns may be a fresh call-site predicate
// rather than block's own, so later instructions and the terminator see
// the call's effect.
func (b *BlockGraphBuilder) encodeInstructions(fn *ir.Function, block *ir.BasicBlock, pred *Predicate, args []string) (*Predicate, []string) {
	for i, inst := range block.Instructions {
		switch v := inst.(type) {
		case *ir.BinaryInstruction:
			b.encodeArithmetic(pred, args, v)

		case *ir.CallInstruction:
			if isVectorPop(v) {
				if b.targets != nil {
					b.targets.RegisterPopEmptyArray(b.scope, pred, args, popLengthSymbol(v))
				}
				continue
			}
			if b.callEncoder == nil {
				continue
			}
			switch b.callEncoder.classOf(v) {
			case callInternal:
				callee := b.lookupFunction(v.Function)
				if callee == nil {
					continue
				}
				rule, nextPred, nextArgs := b.encodeInternalCallSite(fn, block, i, pred, args, callee, v)
				b.rules = append(b.rules, rule)
				pred, args = nextPred, nextArgs
			case callExternal:
				rule, nextPred, nextArgs := b.encodeExternalCallSite(fn, block, i, pred, args, v)
				b.rules = append(b.rules, rule)
				pred, args = nextPred, nextArgs
			}
		}
	}
	return pred, args
}

// encodeArithmetic registers the matching overflow/underflow/divide-by-
// zero target for inst, unless both operands' statically known ranges
// already rule the fault out (rangeOf's tautology pruning).
func (b *BlockGraphBuilder) encodeArithmetic(pred *Predicate, args []string, inst *ir.BinaryInstruction) {
	if b.targets == nil {
		return
	}
	guard := arithmeticGuard(inst)
	if guard == "" {
		return
	}
	if safe, known := provablySafe(inst); known && safe {
		return
	}
	b.targets.RegisterArithmetic(b.scope, inst, pred, args, guard)
}

// arithmeticGuard renders the SMT-LIB2 condition under which inst's
// operator actually faults at runtime: unsigned overflow past the
// operand's bit width for "+"/"*", underflow below zero for "-", and a
// zero divisor for "/"/"%".
func arithmeticGuard(inst *ir.BinaryInstruction) string {
	left := valueSymbol(inst.Left)
	right := valueSymbol(inst.Right)
	switch inst.Op {
	case "+":
		return fmt.Sprintf("(> (+ %s %s) %s)", left, right, maxUintBig(bitsOf(inst)).String())
	case "*":
		return fmt.Sprintf("(> (* %s %s) %s)", left, right, maxUintBig(bitsOf(inst)).String())
	case "-":
		return fmt.Sprintf("(> %s %s)", right, left)
	case "/", "%":
		return fmt.Sprintf("(= %s 0)", right)
	default:
		return ""
	}
}

func bitsOf(inst *ir.BinaryInstruction) int {
	if inst.Left != nil {
		if it, ok := inst.Left.Type.(*ir.IntType); ok {
			return it.Bits
		}
	}
	return 256
}

// isVectorPop recognizes a call into std::vector's pop_back — the only
// vector operation spec.md §4.5's PopEmptyArray target cares about. The
// front end lowers it through the generic call path (internal/stdlib's
// vector module has no instruction of its own), so it's recognized here by
// callee name rather than by a dedicated ir.Instruction type.
func isVectorPop(call *ir.CallInstruction) bool {
	return call.Module == "vector" && call.Function == "pop_back"
}

// popLengthSymbol names the length symbol RegisterPopEmptyArray binds to
// zero: the IR has no real length-tracking for vectors, so the encoder
// derives a deterministic per-call-site name from the vector argument
// itself, existentially quantified like any other fresh symbol.
func popLengthSymbol(call *ir.CallInstruction) string {
	if len(call.Args) == 0 {
		return "popped_vec_len"
	}
	return fmt.Sprintf("%s_len", valueSymbol(call.Args[0]))
}

func (b *BlockGraphBuilder) lookupFunction(name string) *ir.Function {
	for _, fn := range b.program.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// encodeInternalCallSite declares the fresh call-site predicate an
// internal call advances to and defers the actual rule construction to
// CallEncoder.EncodeInternalCall.
func (b *BlockGraphBuilder) encodeInternalCallSite(fn *ir.Function, block *ir.BasicBlock, site int, pred *Predicate, args []string, callee *ir.Function, call *ir.CallInstruction) (*Rule, *Predicate, []string) {
	label := fmt.Sprintf("%s_call%d", block.Label, site)
	stateLen := len(b.program.Storage)

	postFrame := append([]string{b.idx.Fresh("err"), args[1], b.idx.Fresh("state")}, b.freshStorage()...)
	postFrame = append(postFrame, args[3+stateLen]) // value: a call site cannot change the caller's own msg.value

	headPred := b.registry.DeclareBlock(b.scope, label, b.sorts.FunctionEntrySort(b.program, fn))
	rule := b.callEncoder.EncodeInternalCall(pred, args, callee, call, headPred, postFrame, label)

	newArgs := append(append([]string{}, postFrame...), args[4+stateLen:]...)
	return rule, headPred, newArgs
}

// encodeExternalCallSite mirrors encodeInternalCallSite for a call onto a
// known interface, deferring to CallEncoder.EncodeExternalCall.
func (b *BlockGraphBuilder) encodeExternalCallSite(fn *ir.Function, block *ir.BasicBlock, site int, pred *Predicate, args []string, call *ir.CallInstruction) (*Rule, *Predicate, []string) {
	label := fmt.Sprintf("%s_extcall%d", block.Label, site)
	stateLen := len(b.program.Storage)

	postFrame := append([]string{b.idx.Fresh("err"), args[1], b.idx.Fresh("state")}, b.freshStorage()...)
	postFrame = append(postFrame, args[3+stateLen]) // value: unchanged across the call site

	headPred := b.registry.DeclareBlock(b.scope, label, b.sorts.FunctionEntrySort(b.program, fn))
	rule := b.callEncoder.EncodeExternalCall(call.Module, pred, args, headPred, postFrame, label)

	newArgs := append(append([]string{}, postFrame...), args[4+stateLen:]...)
	return rule, headPred, newArgs
}

func (b *BlockGraphBuilder) freshStorage() []string {
	out := make([]string, len(b.program.Storage))
	for i := range b.program.Storage {
		out[i] = b.idx.Fresh(fmt.Sprintf("stor%d", i))
	}
	return out
}
