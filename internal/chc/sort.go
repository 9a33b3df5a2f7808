package chc

import "kanso/internal/ir"

// SortBuilder computes the signature (sort tuple) of each predicate family
// from contract/function shape, per spec.md §4.1. It has no state of its
// own: every method is a pure function of the IR it's handed.
type SortBuilder struct{}

// stateSort returns one sort entry per contract state variable, in storage
// declaration order, so every predicate over contract state agrees on
// variable order without needing to carry names in the sort tuple itself.
func (SortBuilder) stateSort(program *ir.Program) []string {
	sort := make([]string, len(program.Storage))
	for i, slot := range program.Storage {
		sort[i] = sortOf(slot.Type)
	}
	return sort
}

func sortOf(t ir.Type) string {
	switch v := t.(type) {
	case *ir.BoolType:
		return "Bool"
	case *ir.AddressType:
		return "Address"
	case *ir.IntType:
		_ = v
		return "Int"
	default:
		return "Int"
	}
}

// InterfaceSort: (address, state, S̄) — spec.md §4.1.
func (b SortBuilder) InterfaceSort(program *ir.Program) []string {
	return append([]string{"Address", "Int"}, b.stateSort(program)...)
}

// NondetInterfaceSort: (err, address, state0, S̄0, state1, S̄1).
func (b SortBuilder) NondetInterfaceSort(program *ir.Program) []string {
	state := b.stateSort(program)
	sort := []string{"Int", "Address", "Int"}
	sort = append(sort, state...)
	sort = append(sort, "Int")
	sort = append(sort, state...)
	return sort
}

// ImplicitConstructorSort: (err, address, state).
func (SortBuilder) ImplicitConstructorSort() []string {
	return []string{"Int", "Address", "Int"}
}

// ConstructorSummarySort matches a constructor call shape: err, addr,
// state pre/post, state-variables pre/post, and the value sent with the
// deployment transaction (constructors take no params beyond what the
// front end models as implicit initializers; value appears once, since
// msg.value can't change mid-call).
func (b SortBuilder) ConstructorSummarySort(program *ir.Program) []string {
	state := b.stateSort(program)
	sort := []string{"Int", "Address", "Int"}
	sort = append(sort, state...)
	sort = append(sort, "Int") // value
	sort = append(sort, "Int")
	sort = append(sort, state...)
	return sort
}

// FunctionSummarySort: (err, address, state_pre, S̄_pre, value, params,
// state_post, S̄_post, params_post, returns). value sits once, in the pre
// half, next to the other symbols fixed for the call's whole lifetime.
func (b SortBuilder) FunctionSummarySort(program *ir.Program, fn *ir.Function) []string {
	state := b.stateSort(program)
	sort := []string{"Int", "Address", "Int"}
	sort = append(sort, state...)
	sort = append(sort, "Int") // value
	for _, p := range fn.Params {
		sort = append(sort, sortOf(p.Type))
	}
	sort = append(sort, "Int")
	sort = append(sort, state...)
	for _, p := range fn.Params {
		sort = append(sort, sortOf(p.Type)) // post-call parameter slots (reference params may change)
	}
	if fn.ReturnType != nil {
		sort = append(sort, flattenReturnSort(fn.ReturnType)...)
	}
	return sort
}

func flattenReturnSort(t ir.Type) []string {
	if tup, ok := t.(*ir.TupleType); ok {
		var out []string
		for _, elem := range tup.Elements {
			out = append(out, sortOf(elem))
		}
		return out
	}
	return []string{sortOf(t)}
}

// FunctionEntrySort and FunctionBlockSort share the same shape: a function's
// live variable set at that control-flow point, namely the summary's
// pre-call arguments sans the trailing return slots (a block predicate
// never yet knows what the function returns).
func (b SortBuilder) FunctionEntrySort(program *ir.Program, fn *ir.Function) []string {
	state := b.stateSort(program)
	sort := []string{"Int", "Address", "Int"}
	sort = append(sort, state...)
	sort = append(sort, "Int") // value
	for _, p := range fn.Params {
		sort = append(sort, sortOf(p.Type))
	}
	return sort
}
