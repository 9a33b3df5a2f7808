package chc

import (
	"fmt"

	"kanso/internal/ir"
)

// SummaryEncoder builds the contract-level relations spec.md §4.3
// describes: the public Interface relation (one per externally callable
// function, asserting its summary holds), the NondetInterface relation
// any external call target asserts against, the (Implicit)Constructor
// relations binding deployment, and the inductive transaction rule tying
// one transaction's post-state to the next transaction's pre-state.
type SummaryEncoder struct {
	registry *Registry
	sorts    SortBuilder
	program  *ir.Program
	contract string
}

func NewSummaryEncoder(registry *Registry, program *ir.Program, contract string) *SummaryEncoder {
	return &SummaryEncoder{registry: registry, program: program, contract: contract}
}

// EncodeInterface emits: Interface(addr, state, S̄) ⇐ ∃err. FunctionSummary(err=0, addr, state, S̄, params, state', S̄', ..., returns) for some params/returns — a successful call into fn from the outside establishes the public Interface relation at the post-state, per spec.md §4.3.
func (s *SummaryEncoder) EncodeInterface(fn *ir.Function, summary *Predicate) *Rule {
	ifacePred := s.registry.Declare(Interface, s.contract, s.sorts.InterfaceSort(s.program))

	summaryArgs := argNamesFor(summary, "sum")
	// err, addr, state_post, S̄_post are at the tail half of the summary
	// tuple (see SortBuilder.FunctionSummarySort): [err,addr,state0,S̄0,
	// value,params...,state1,S̄1,params_post...,returns...].
	stateLen := len(s.sorts.stateSort(s.program))
	addr := summaryArgs[1]
	postBase := 4 + stateLen + len(fn.Params)
	postState := summaryArgs[postBase]
	postS := summaryArgs[postBase+1 : postBase+1+stateLen]

	ifaceArgs := append([]string{addr, postState}, postS...)

	return &Rule{
		Name:      fmt.Sprintf("interface_%s_%s", s.contract, fn.Name),
		BoundVars: boundVars(summaryArgs),
		Body:      []string{summary.Apply(summaryArgs...), fmt.Sprintf("(= %s 0)", summaryArgs[0])},
		Head:      ifacePred.Apply(ifaceArgs...),
	}
}

// EncodeNondetInterface emits the over-approximating "something external
// happened" relation every external/static call target asserts against:
// it is satisfied by any (err, addr, state0, S̄0, state1, S̄1) tuple, i.e.
// no constraint at all — deliberately unconstrained, since the encoder
// has no model of the callee's internals (spec.md §4.4).
func (s *SummaryEncoder) EncodeNondetInterface(iface string) *Rule {
	pred := s.registry.Declare(NondetInterface, iface, s.sorts.NondetInterfaceSort(s.program))
	args := argNamesFor(pred, "nd")
	return &Rule{
		Name:      fmt.Sprintf("nondet_%s", iface),
		BoundVars: boundVars(args),
		Head:      pred.Apply(args...),
	}
}

// EncodeImplicitConstructor emits the zero-initialization rule run before
// any user-defined constructor body: err=0, state holds at some address —
// spec.md §4.3's "deployment begins from the implicit constructor's
// summary." The relation carries no storage slots, so no storage defaults
// are asserted here.
func (s *SummaryEncoder) EncodeImplicitConstructor() *Rule {
	pred := s.registry.Declare(ImplicitConstructor, s.contract, SortBuilder{}.ImplicitConstructorSort())
	args := []string{"err0", "addr0", "state0"}
	return &Rule{
		Name:      fmt.Sprintf("implicit_ctor_%s", s.contract),
		BoundVars: boundVars(args),
		Body:      []string{fmt.Sprintf("(= %s 0)", args[0])},
		Head:      pred.Apply(args...),
	}
}

// EncodeConstructorSummary threads the implicit constructor into the
// user-defined constructor's own block graph exit, producing the
// ConstructorSummary relation deployment ultimately establishes.
func (s *SummaryEncoder) EncodeConstructorSummary(implicit *Predicate, ctorExit *Predicate) *Rule {
	summary := s.registry.Declare(ConstructorSummary, s.contract, s.sorts.ConstructorSummarySort(s.program))
	implicitArgs := argNamesFor(implicit, "ic")
	exitArgs := argNamesFor(ctorExit, "ce")
	bound := append(append([]string{}, implicitArgs...), exitArgs...)
	return &Rule{
		Name:      fmt.Sprintf("ctor_summary_%s", s.contract),
		BoundVars: boundVars(bound),
		Body:      []string{implicit.Apply(implicitArgs...), ctorExit.Apply(exitArgs...)},
		Head:      summary.Apply(exitArgs...),
	}
}

// EncodeConstructorInterface closes the constructor chain: Interface(addr,
// state, S̄) ⇐ ConstructorSummary(err=0, addr, state0, S̄0, state1, S̄1) —
// the deployment-time counterpart to EncodeInterface, binding the contract's
// Interface relation at the state the constructor actually left behind
// instead of requiring a call into a user function first (spec.md §4.3,
// "Contract without explicit constructor: implicit-constructor ⇒
// summary(C) ⇒ interface(C)").
func (s *SummaryEncoder) EncodeConstructorInterface(ctorSummary *Predicate) *Rule {
	ifacePred := s.registry.Declare(Interface, s.contract, s.sorts.InterfaceSort(s.program))

	summaryArgs := argNamesFor(ctorSummary, "ctorsum")
	stateLen := len(s.sorts.stateSort(s.program))
	addr := summaryArgs[1]
	postBase := 4 + stateLen
	postState := summaryArgs[postBase]
	postS := summaryArgs[postBase+1 : postBase+1+stateLen]

	return &Rule{
		Name:      fmt.Sprintf("ctor_interface_%s", s.contract),
		BoundVars: boundVars(summaryArgs),
		Body:      []string{ctorSummary.Apply(summaryArgs...), fmt.Sprintf("(= %s 0)", summaryArgs[0])},
		Head:      ifacePred.Apply(append([]string{addr, postState}, postS...)...),
	}
}

// EncodeTransactionInduction emits spec.md §4.3's inductive transaction
// rule: the Interface relation is also closed under "one more transaction
// ran" — Interface(addr, state1, S̄1) holds whenever Interface(addr,
// state0, S̄0) held and some FunctionSummary carried it from state0 to
// state1. Together with EncodeInterface's base case, this makes Interface
// an over-approximation of every reachable post-transaction state, which
// is what the fixed-point solver actually computes a least fixed point
// for.
func (s *SummaryEncoder) EncodeTransactionInduction(fn *ir.Function, summary *Predicate) *Rule {
	ifacePred := s.registry.Declare(Interface, s.contract, s.sorts.InterfaceSort(s.program))
	ifaceArgs := argNamesFor(ifacePred, "prev")
	summaryArgs := argNamesFor(summary, "tx")

	stateLen := len(s.sorts.stateSort(s.program))
	addr := summaryArgs[1]
	preState := summaryArgs[2]
	preS := summaryArgs[3 : 3+stateLen]
	postBase := 4 + stateLen + len(fn.Params)
	postState := summaryArgs[postBase]
	postS := summaryArgs[postBase+1 : postBase+1+stateLen]

	bound := append(append([]string{}, ifaceArgs...), summaryArgs...)
	return &Rule{
		Name:      fmt.Sprintf("tx_induct_%s_%s", s.contract, fn.Name),
		BoundVars: boundVars(bound),
		Body: []string{
			ifacePred.Apply(ifaceArgs...),
			summary.Apply(summaryArgs...),
			fmt.Sprintf("(= %s 0)", summaryArgs[0]),
			fmt.Sprintf("(= %s %s)", ifaceArgs[0], addr),
			fmt.Sprintf("(= %s %s)", ifaceArgs[1], preState),
			eqAll(ifaceArgs[2:], preS),
		},
		Head: ifacePred.Apply(append([]string{addr, postState}, postS...)...),
	}
}

func argNamesFor(pred *Predicate, prefix string) []string {
	args := make([]string, len(pred.Sort))
	for i := range pred.Sort {
		args[i] = fmt.Sprintf("%s_%s%d", prefix, pred.Name, i)
	}
	return args
}

func eqAll(a, b []string) string {
	if len(a) == 0 {
		return "true"
	}
	out := fmt.Sprintf("(= %s %s)", a[0], b[0])
	for i := 1; i < len(a) && i < len(b); i++ {
		out = fmt.Sprintf("(and %s (= %s %s))", out, a[i], b[i])
	}
	return out
}
