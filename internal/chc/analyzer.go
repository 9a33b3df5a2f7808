package chc

// Analyzer ties the package's pieces together: predicate/sort
// construction, the block graph builder, call/summary encoding, and
// target collection, then discharges every collected query through a
// solver.Driver. An UNSAT answer proves the target's property; a SAT
// answer yields a counterexample.

import (
	"fmt"

	"kanso/internal/errors"
	"kanso/internal/ir"
	"kanso/internal/solver"
)

// Finding is one violated verification target, with its reconstructed
// counterexample trace.
type Finding struct {
	ErrorID int
	Scope   string
	Trace   *Counterexample
}

// Analyzer is the package's external entry point — spec.md §6's
// "analyze(sourceUnit)" — wired against a solver.Driver rather than any
// concrete solver, so the encoder never imports go-z3 itself.
type Analyzer struct {
	driver     solver.Driver
	registry   *Registry
	callGraph  *CallGraph
	assertions *FunctionAssertions
	targets    *TargetEngine
	interfaces map[string]bool

	declared         map[string]bool
	transactionRoots []string
}

func NewAnalyzer(driver solver.Driver, interfaces map[string]bool) *Analyzer {
	return &Analyzer{
		driver:     driver,
		registry:   NewRegistry(),
		callGraph:  NewCallGraph(),
		assertions: NewFunctionAssertions(),
		targets:    NewTargetEngine(),
		interfaces: interfaces,
		declared:   make(map[string]bool),
	}
}

// Analyze encodes program's every function into relations and rules,
// registers them with the driver, then queries every collected
// verification target. It returns one Finding per target the solver
// proved reachable (Sat); targets the solver proved unreachable (Unsat)
// are simply absent from the result, per spec.md §4.6.
func (a *Analyzer) Analyze(program *ir.Program) ([]*Finding, error) {
	summaries := NewSummaryEncoder(a.registry, program, program.Contract)

	var allRules []*Rule

	for _, fn := range program.Functions {
		scope := fmt.Sprintf("%s::%s", program.Contract, fn.Name)

		encoder := NewCallEncoder(a.registry, program, a.callGraph, scope, a.interfaces)
		encoder.Classify(fn)

		builder := NewBlockGraphBuilder(a.registry, program, scope, a.callGraph, a.assertions, encoder, a.targets)
		_, summaryExit, rules := builder.Build(fn)
		allRules = append(allRules, rules...)

		switch {
		case fn.Create:
			// The constructor runs once, from the implicit constructor's
			// zero-state, and closes the Interface relation directly
			// rather than through the inductive transaction rule
			// (spec.md §4.3's constructor chain).
			implicit := a.registry.Declare(ImplicitConstructor, program.Contract, SortBuilder{}.ImplicitConstructorSort())
			allRules = append(allRules, summaries.EncodeConstructorSummary(implicit, summaryExit))
			ctorSummaryPred := a.registry.Declare(ConstructorSummary, program.Contract, SortBuilder{}.ConstructorSummarySort(program))
			allRules = append(allRules, summaries.EncodeConstructorInterface(ctorSummaryPred))
		case fn.External:
			allRules = append(allRules, summaries.EncodeInterface(fn, summaryExit))
			allRules = append(allRules, summaries.EncodeTransactionInduction(fn, summaryExit))
		}

		if fn.External || fn.Create {
			a.transactionRoots = append(a.transactionRoots, scope)
		}
	}

	for iface := range a.interfaces {
		allRules = append(allRules, summaries.EncodeNondetInterface(iface))
	}
	allRules = append(allRules, summaries.EncodeImplicitConstructor())

	if err := a.register(program, allRules); err != nil {
		return nil, err
	}

	return a.runTargets()
}

// register pushes every predicate's relation declaration followed by
// every rule's SMT-LIB2 text into the driver, per spec.md §6's
// registerRelation/addRule pair.
func (a *Analyzer) register(program *ir.Program, rules []*Rule) error {
	for _, pred := range a.registry.All() {
		if a.declared[pred.Name] {
			continue
		}
		if err := a.driver.RegisterRelation(pred.Name, pred.Sort); err != nil {
			return fmt.Errorf("register %s: %w", pred.Name, err)
		}
		a.declared[pred.Name] = true
	}
	for _, rule := range rules {
		if err := a.driver.AddRule(rule.SMTLIB2(), rule.Name); err != nil {
			return fmt.Errorf("rule %s: %w", rule.Name, err)
		}
	}
	return nil
}

// runTargets queries the driver once per collected verification target,
// per spec.md §4.6. Assert targets are fanned out per transaction root:
// every External/Create function's own assertion sites plus those of every
// function it can reach (CallGraph.ReachableFrom) are queried once each,
// deduplicated across roots that share a helper. An assert target whose
// scope no root's BFS ever reaches (a helper no transaction root calls, or
// a function analyzed on its own without any declared entry point) is
// still queried directly afterward — the fan-out sharpens which queries get
// grouped under which transaction, it never drops coverage. Arithmetic and
// PopEmptyArray targets carry no such transaction-boundary question — an
// overflow is a bug wherever it sits — so they're always queried directly.
// A Sat verdict means the property is violated and the returned CexGraph is
// walked into a human-readable trace.
func (a *Analyzer) runTargets() ([]*Finding, error) {
	var findings []*Finding
	seen := make(map[*Target]bool)

	for _, root := range a.transactionRoots {
		for _, scope := range a.callGraph.ReachableFrom(root) {
			for _, target := range a.targets.ForScope(scope) {
				if target.ErrorID != errors.VerificationAssert || seen[target] {
					continue
				}
				seen[target] = true
				if f := a.queryTarget(target); f != nil {
					findings = append(findings, f)
				}
			}
		}
	}

	for _, target := range a.targets.All() {
		if target.ErrorID == errors.VerificationAssert && seen[target] {
			continue // already queried via the BFS fan-out above
		}
		if f := a.queryTarget(target); f != nil {
			findings = append(findings, f)
		}
	}

	return findings, nil
}

func (a *Analyzer) queryTarget(target *Target) *Finding {
	result, graph, err := a.driver.Query(target.Query())
	if err != nil {
		return nil // unparseable/unsupported query — surfaced via UnhandledQueries
	}
	if result != solver.Sat {
		return nil
	}
	return &Finding{
		ErrorID: target.ErrorID,
		Scope:   target.Scope,
		Trace:   Reconstruct(target, graph),
	}
}

// UnhandledQueries surfaces every query the driver could not discharge —
// spec.md §6's "exposed to callers" contract, letting the CLI report
// partial verification rather than silently dropping coverage.
func (a *Analyzer) UnhandledQueries() []string {
	return a.driver.UnhandledQueries()
}
