// Package solver declares the narrow interface the CHC core consumes to
// register relations, assert Horn rules, and run reachability queries, and
// ships the one concrete implementation (Z3Driver) that backs it with Z3's
// SMT solver. internal/chc only ever sees Result/CexGraph/Driver from here —
// it never imports go-z3 itself.
package solver

import "fmt"

// Result is the solver's classification of a query, mirroring spec.md §6's
// four-way outcome plus the conflicting-solvers case when more than one
// backend is consulted and they disagree.
type Result int

const (
	Unknown Result = iota
	Sat
	Unsat
	Conflicting
	TransportError
)

func (r Result) String() string {
	switch r {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	case Conflicting:
		return "conflicting"
	case TransportError:
		return "error"
	default:
		return "unknown"
	}
}

// CexNode is one node of a counterexample witness DAG: a predicate
// application together with the argument values the model assigned it.
type CexNode struct {
	ID        int
	Predicate string
	Args      []string
}

// CexGraph is the labelled DAG a `sat` query returns: nodes keyed by id,
// edges from a node to the children that justify it, and the id of the
// root (the reached error predicate).
type CexGraph struct {
	Root  int
	Nodes map[int]CexNode
	Edges map[int][]int
}

func (g *CexGraph) String() string {
	if g == nil {
		return "<no model>"
	}
	return fmt.Sprintf("cex(root=%d, nodes=%d)", g.Root, len(g.Nodes))
}

// Driver is the concrete CHC solver driver spec.md §6 describes: register a
// relation, assert body ⇒ head rules against it, and query reachability of a
// predicate. Every method is synchronous; the core pushes/pops around each
// query itself via Driver's own incremental stack semantics.
type Driver interface {
	// RegisterRelation introduces an uninterpreted relation of the given
	// name and argument sorts (e.g. "Int", "Bool", "Address").
	RegisterRelation(name string, argSorts []string) error

	// AddRule asserts body ⇒ head, where expr is a fully-formed SMT-LIB2
	// Horn rule (the chc package is responsible for rendering it — the
	// symbolic-expression layer it builds on is a declared external
	// collaborator, not something this driver parses semantically).
	AddRule(expr string, name string) error

	// Query checks reachability of expr (normally a 0-ary error relation
	// applied to no arguments) and returns the classification plus, for
	// `sat`, the counterexample witness.
	Query(expr string) (Result, *CexGraph, error)

	// Push/Pop bound the lifetime of block-local rules, so encoding one
	// function's body doesn't leak constraints into the next.
	Push()
	Pop()

	// Reset drops every registered relation and rule, for analyzing a
	// fresh compilation unit with the same driver instance.
	Reset()

	// UnhandledQueries returns queries this driver could not answer
	// locally (forwarded up so analyze() can report them instead of
	// silently treating them as `unknown`).
	UnhandledQueries() []string
}
