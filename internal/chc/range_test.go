package chc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanso/internal/ir"
)

func constValue(n string, bits int) *ir.Value {
	v := &ir.Value{Name: "c", Type: &ir.IntType{Bits: bits}}
	v.DefInst = &ir.ConstantInstruction{Result: v, Value: n, Type: v.Type}
	return v
}

func symValue(name string, bits int) *ir.Value {
	return &ir.Value{Name: name, Type: &ir.IntType{Bits: bits}}
}

func TestRangeOfConstantIsItsOwnSingletonRange(t *testing.T) {
	v := constValue("5", 256)
	rng, ok := rangeOf(v)

	require.True(t, ok)
	assert.Equal(t, int64(5), rng.Lo.Int64())
	assert.Equal(t, int64(5), rng.Hi.Int64())
}

func TestRangeOfNonConstantFallsBackToFullBitWidth(t *testing.T) {
	v := symValue("amount", 8)
	rng, ok := rangeOf(v)

	require.True(t, ok)
	assert.Equal(t, int64(0), rng.Lo.Int64())
	assert.Equal(t, int64(255), rng.Hi.Int64())
}

func TestRangeOfNonIntTypeIsUnknown(t *testing.T) {
	v := &ir.Value{Name: "flag", Type: &ir.BoolType{}}
	_, ok := rangeOf(v)
	assert.False(t, ok)
}

func TestProvablySafeAdditionOfTwoSmallConstantsNeverOverflows(t *testing.T) {
	inst := &ir.BinaryInstruction{Op: "+", Left: constValue("1", 8), Right: constValue("2", 8)}
	safe, known := provablySafe(inst)
	assert.True(t, known)
	assert.True(t, safe)
}

func TestProvablySafeAdditionOfMaxConstantsCanOverflow(t *testing.T) {
	inst := &ir.BinaryInstruction{Op: "+", Left: constValue("200", 8), Right: constValue("200", 8)}
	safe, known := provablySafe(inst)
	assert.True(t, known)
	assert.False(t, safe)
}

func TestProvablySafeSubtractionRequiresLeftLowerBoundAtLeastRightUpperBound(t *testing.T) {
	inst := &ir.BinaryInstruction{Op: "-", Left: symValue("a", 8), Right: constValue("5", 8)}
	safe, known := provablySafe(inst)
	assert.True(t, known)
	assert.False(t, safe) // "a" ranges [0,255], its lower bound 0 is below 5

	inst2 := &ir.BinaryInstruction{Op: "-", Left: constValue("10", 8), Right: constValue("5", 8)}
	safe2, known2 := provablySafe(inst2)
	assert.True(t, known2)
	assert.True(t, safe2)
}

func TestProvablySafeDivisionRequiresStrictlyPositiveDivisorRange(t *testing.T) {
	inst := &ir.BinaryInstruction{Op: "/", Left: symValue("a", 256), Right: symValue("b", 256)}
	safe, known := provablySafe(inst)
	assert.True(t, known)
	assert.False(t, safe) // "b" could be zero

	inst2 := &ir.BinaryInstruction{Op: "/", Left: symValue("a", 256), Right: constValue("3", 256)}
	safe2, known2 := provablySafe(inst2)
	assert.True(t, known2)
	assert.True(t, safe2)
}

func TestProvablySafeUnknownOperandRangeIsNotKnown(t *testing.T) {
	boolVal := &ir.Value{Name: "flag", Type: &ir.BoolType{}}
	inst := &ir.BinaryInstruction{Op: "+", Left: boolVal, Right: constValue("1", 8)}
	_, known := provablySafe(inst)
	assert.False(t, known)
}
