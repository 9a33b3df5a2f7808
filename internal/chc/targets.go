package chc

import (
	"fmt"

	"kanso/internal/errors"
	"kanso/internal/ir"
)

// Target is one verification query: reachability of from (with the given
// bound args and side constraints) witnesses a violation identified by
// ErrorID, per spec.md §4.5/§4.6.
type Target struct {
	ErrorID     int
	Scope       string
	From        *Predicate
	Args        []string
	Constraints []string
}

// Query renders the target as the SMT-LIB2 text the solver driver's Query
// expects: reachability of From under Constraints is UNSAT iff the
// property holds.
func (t *Target) Query() string {
	rule := &Rule{
		BoundVars: boundVars(t.Args),
		Body:      append([]string{t.From.Apply(t.Args...)}, t.Constraints...),
	}
	body := "true"
	if len(rule.Body) > 0 {
		conj := rule.Body[0]
		for _, c := range rule.Body[1:] {
			conj = "(and " + conj + " " + c + ")"
		}
		body = conj
	}
	if len(rule.BoundVars) == 0 {
		return "(assert " + body + ")"
	}
	return "(assert (exists (" + boundVarList(rule.BoundVars) + ") " + body + "))"
}

// TargetEngine collects every verification target discovered while
// walking a contract's IR, per spec.md §4.5 (arithmetic target generation)
// and §4.6 (the Assert-target BFS fan-out over the call graph).
type TargetEngine struct {
	targets []*Target
}

func NewTargetEngine() *TargetEngine {
	return &TargetEngine{}
}

func (e *TargetEngine) RegisterAssert(scope string, from *Predicate, args []string) {
	e.targets = append(e.targets, &Target{
		ErrorID: errors.VerificationAssert,
		Scope:   scope,
		From:    from,
		Args:    args,
	})
}

// RegisterArithmetic inspects a single BinaryInstruction and, for the
// operators that can fail at runtime, registers the matching target —
// spec.md §4.5's dispatch on the operator's literal lexeme. "+"/"-"/"*"
// bind Overflow/Underflow/Overflow and "/" and "%" bind DivByZero; guard is
// the fault condition arithmeticGuard renders (a range check against the
// operand's bit width, or a zero-divisor check).
func (e *TargetEngine) RegisterArithmetic(scope string, inst *ir.BinaryInstruction, from *Predicate, args []string, guard string) {
	var id int
	switch inst.Op {
	case "+":
		id = errors.VerificationOverflow
	case "-":
		id = errors.VerificationUnderflow
	case "*":
		id = errors.VerificationOverflow
	case "/", "%":
		id = errors.VerificationDivByZero
	default:
		return
	}
	e.targets = append(e.targets, &Target{
		ErrorID:     id,
		Scope:       scope,
		From:        from,
		Args:        args,
		Constraints: []string{guard},
	})
}

// RegisterPopEmptyArray binds the PopEmptyArray target against a block
// reachable only when a vector's length is already zero at the point a
// pop is attempted — spec.md §4.5's non-arithmetic structural target.
func (e *TargetEngine) RegisterPopEmptyArray(scope string, from *Predicate, args []string, lengthSymbol string) {
	e.targets = append(e.targets, &Target{
		ErrorID:     errors.VerificationPopEmptyArray,
		Scope:       scope,
		From:        from,
		Args:        args,
		Constraints: []string{fmt.Sprintf("(= %s 0)", lengthSymbol)},
	})
}

func (e *TargetEngine) All() []*Target {
	return e.targets
}

// ForScope returns every target registered against scope directly, used
// by the Assert BFS fan-out (spec.md §4.6) to seed one query per
// reachable function's own assertion sites.
func (e *TargetEngine) ForScope(scope string) []*Target {
	var out []*Target
	for _, t := range e.targets {
		if t.Scope == scope {
			out = append(out, t)
		}
	}
	return out
}
