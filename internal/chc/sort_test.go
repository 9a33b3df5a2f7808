package chc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kanso/internal/ir"
)

func testProgram() *ir.Program {
	return &ir.Program{
		Contract: "Token",
		Storage: []*ir.StorageSlot{
			{Name: "balance", Type: &ir.IntType{Bits: 256}},
			{Name: "paused", Type: &ir.BoolType{}},
		},
	}
}

func TestSortOfMapsIRTypesToSorts(t *testing.T) {
	assert.Equal(t, "Int", sortOf(&ir.IntType{Bits: 256}))
	assert.Equal(t, "Bool", sortOf(&ir.BoolType{}))
	assert.Equal(t, "Address", sortOf(&ir.AddressType{}))
}

func TestInterfaceSortIsAddressStateThenStateVars(t *testing.T) {
	sb := SortBuilder{}
	got := sb.InterfaceSort(testProgram())
	assert.Equal(t, []string{"Address", "Int", "Int", "Bool"}, got)
}

func TestFunctionSummarySortIncludesParamsStateAndReturns(t *testing.T) {
	sb := SortBuilder{}
	fn := &ir.Function{
		Name:       "transfer",
		Params:     []*ir.Parameter{{Name: "to", Type: &ir.AddressType{}}, {Name: "amount", Type: &ir.IntType{Bits: 256}}},
		ReturnType: &ir.BoolType{},
	}
	got := sb.FunctionSummarySort(testProgram(), fn)

	// err, addr, state0, S0(2), value(1), params(2), state1, S1(2), params_post(2), return(1)
	assert.Equal(t, 3+2+1+2+1+2+2+1, len(got))
	assert.Equal(t, "Int", got[0])
	assert.Equal(t, "Address", got[1])
}

func TestFlattenReturnSortUnpacksTuple(t *testing.T) {
	tup := &ir.TupleType{Elements: []ir.Type{&ir.BoolType{}, &ir.IntType{Bits: 256}}}
	assert.Equal(t, []string{"Bool", "Int"}, flattenReturnSort(tup))
}
