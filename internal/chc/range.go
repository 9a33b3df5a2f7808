package chc

import (
	"math/big"

	"kanso/internal/ir"
)

// valueRange is a closed interval [Lo, Hi] a value is statically known to
// stay within.
type valueRange struct {
	Lo, Hi *big.Int
}

// rangeOf derives the tightest range the encoder can cheaply establish for
// v without a full abstract-interpretation pass: a constant literal's range
// is itself; anything else falls back to its declared bit width's complete
// unsigned range. The second return is false when v carries no fixed-width
// integer type at all, in which case no arithmetic range check applies.
//
// This backs the arithmetic target generator's tautology/trivial-condition
// pruning: when both operands' ranges already preclude a fault, registering
// the target would only ever yield an UNSAT query, so it's skipped.
func rangeOf(v *ir.Value) (valueRange, bool) {
	if v == nil {
		return valueRange{}, false
	}
	it, ok := v.Type.(*ir.IntType)
	if !ok {
		return valueRange{}, false
	}
	if lit, ok := constantValue(v); ok {
		return valueRange{Lo: lit, Hi: lit}, true
	}
	return valueRange{Lo: big.NewInt(0), Hi: maxUintBig(it.Bits)}, true
}

func constantValue(v *ir.Value) (*big.Int, bool) {
	ci, ok := v.DefInst.(*ir.ConstantInstruction)
	if !ok {
		return nil, false
	}
	s, ok := ci.Value.(string)
	if !ok {
		return nil, false
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, false
	}
	return n, true
}

func maxUintBig(bits int) *big.Int {
	return new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(bits)), big.NewInt(1))
}

// provablySafe reports whether inst's operands' known ranges already
// preclude the fault its operator could otherwise cause. The second return
// is false when either operand's range couldn't be established at all, in
// which case the caller must register the target rather than trust a
// vacuous answer.
func provablySafe(inst *ir.BinaryInstruction) (safe bool, known bool) {
	l, lok := rangeOf(inst.Left)
	r, rok := rangeOf(inst.Right)
	if !lok || !rok {
		return false, false
	}
	max := maxUintBig(bitsOf(inst))
	switch inst.Op {
	case "+":
		return new(big.Int).Add(l.Hi, r.Hi).Cmp(max) <= 0, true
	case "*":
		return new(big.Int).Mul(l.Hi, r.Hi).Cmp(max) <= 0, true
	case "-":
		return l.Lo.Cmp(r.Hi) >= 0, true
	case "/", "%":
		return r.Lo.Sign() > 0, true
	default:
		return false, false
	}
}
