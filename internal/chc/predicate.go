// Package chc translates kanso's IR into a system of Constrained Horn
// Clauses and discharges safety queries against them through the narrow
// solver.Driver interface. It never imports the concrete solver backend —
// only internal/solver's Driver/Result/CexGraph types.
package chc

import "fmt"

// Kind classifies a Predicate the way spec.md §3 enumerates: the encoder
// creates exactly one predicate per (kind, AST/IR node) pair and never
// reuses a name across analyses.
type Kind int

const (
	Interface Kind = iota
	NondetInterface
	ImplicitConstructor
	ConstructorSummary
	FunctionEntry
	FunctionSummary
	FunctionBlock
	Error
	Custom
)

func (k Kind) String() string {
	switch k {
	case Interface:
		return "interface"
	case NondetInterface:
		return "nondet-interface"
	case ImplicitConstructor:
		return "implicit-constructor"
	case ConstructorSummary:
		return "constructor-summary"
	case FunctionEntry:
		return "function-entry"
	case FunctionSummary:
		return "function-summary"
	case FunctionBlock:
		return "function-block"
	case Error:
		return "error"
	default:
		return "custom"
	}
}

// SummaryLayout records which prefix of a summary predicate's argument list
// encodes which logical group, so call encoding can slice the argument
// vector without recomputing the contract/function shape every call site.
type SummaryLayout struct {
	StateVarCount int // contract state variables, once for pre- and once for post-state
	ParamCount    int
	ReturnCount   int
}

// Predicate is an uninterpreted relation symbol: a fixed arity/sort tuple,
// a stable name, and a back-reference to the node it was built for.
type Predicate struct {
	ID     int
	Kind   Kind
	Name   string
	Sort   []string // argument sorts, e.g. "Int", "Bool", "Address"
	Node   string   // human-readable back-reference (function/contract/block name)
	Layout *SummaryLayout
}

func (p *Predicate) Arity() int { return len(p.Sort) }

// Apply renders a predicate application with the given argument
// expressions, e.g. "(function_summary_C__f err addr s0 bal0 value amt s1 bal1 amt1 r0)".
func (p *Predicate) Apply(args ...string) string {
	if len(args) != len(p.Sort) {
		panic(fmt.Sprintf("predicate %s: arity mismatch, want %d got %d", p.Name, len(p.Sort), len(args)))
	}
	out := "(" + p.Name
	for _, a := range args {
		out += " " + a
	}
	return out + ")"
}

// Registry allocates predicates exactly once per (kind, node) pair and
// assigns deterministic names from a monotonic counter plus the back-
// reference, matching invariant 1 of spec.md §3.
type Registry struct {
	nextID     int
	byKey      map[string]*Predicate
	predicates []*Predicate
	blockSeq   int
}

func NewRegistry() *Registry {
	return &Registry{byKey: make(map[string]*Predicate)}
}

// Declare creates (or returns the existing) predicate for kind+node. node
// must be a string that's unique per AST/IR identity within this analysis
// (e.g. "C" for a contract, "f@C" for a function-in-contract pair).
func (r *Registry) Declare(kind Kind, node string, sort []string) *Predicate {
	key := fmt.Sprintf("%d:%s", kind, node)
	if existing, ok := r.byKey[key]; ok {
		return existing
	}
	pred := &Predicate{
		ID:   r.nextID,
		Kind: kind,
		Name: r.nameFor(kind, node),
		Sort: sort,
		Node: node,
	}
	r.nextID++
	r.byKey[key] = pred
	r.predicates = append(r.predicates, pred)
	return pred
}

// DeclareBlock allocates a fresh FunctionBlock predicate; unlike Declare,
// every call produces a new predicate (one per control-flow point visited,
// not one per AST node revisited), disambiguated by a monotonic block
// counter as spec.md §3 invariant 1 requires.
func (r *Registry) DeclareBlock(functionNode string, label string, sort []string) *Predicate {
	r.blockSeq++
	node := fmt.Sprintf("%s#%s#%d", functionNode, label, r.blockSeq)
	pred := &Predicate{
		ID:   r.nextID,
		Kind: FunctionBlock,
		Name: sanitize(fmt.Sprintf("block_%s_%s_%d", functionNode, label, r.blockSeq)),
		Sort: sort,
		Node: node,
	}
	r.nextID++
	r.byKey[fmt.Sprintf("%d:%s", FunctionBlock, node)] = pred
	r.predicates = append(r.predicates, pred)
	return pred
}

// DeclareError allocates a fresh 0-ary Error predicate for one verification
// target; every target gets its own, per spec.md §4.6 step 1.
func (r *Registry) DeclareError(node string) *Predicate {
	pred := &Predicate{
		ID:   r.nextID,
		Kind: Error,
		Name: sanitize(fmt.Sprintf("error_%s_%d", node, r.nextID)),
		Sort: nil,
		Node: node,
	}
	r.nextID++
	r.predicates = append(r.predicates, pred)
	return pred
}

func (r *Registry) nameFor(kind Kind, node string) string {
	return sanitize(fmt.Sprintf("%s_%s", kind.String(), node))
}

func (r *Registry) All() []*Predicate { return r.predicates }

func sanitize(s string) string {
	out := make([]byte, 0, len(s))
	for _, c := range []byte(s) {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
