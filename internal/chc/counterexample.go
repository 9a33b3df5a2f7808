package chc

import (
	"fmt"
	"strings"

	"kanso/internal/errors"
	"kanso/internal/solver"
)

// Counterexample is a human-readable walk of one Sat verdict's
// derivation, naming the predicate chain the solver used to witness
// reachability of the violated target — spec.md §4.6's DAG-walk
// reconstruction.
type Counterexample struct {
	Target *Target
	Steps  []string
}

// Reconstruct walks graph depth-first from its root, rendering each node
// as "predicate(args)" and recording the walk order as Steps — a
// flattened, readable trace rather than the raw proof DAG, since most
// nodes in a Spacer answer are simple predicate applications with no
// branching structure worth preserving for a human reader.
func Reconstruct(target *Target, graph *solver.CexGraph) *Counterexample {
	cex := &Counterexample{Target: target}
	if graph == nil {
		cex.Steps = []string{"<no model: query returned without Sat>"}
		return cex
	}

	visited := make(map[int]bool)
	var walk func(id int)
	walk = func(id int) {
		if visited[id] {
			return
		}
		visited[id] = true
		node, ok := graph.Nodes[id]
		if !ok {
			return
		}
		cex.Steps = append(cex.Steps, formatNode(node))
		for _, child := range graph.Edges[id] {
			walk(child)
		}
	}
	walk(graph.Root)
	return cex
}

func formatNode(node solver.CexNode) string {
	if len(node.Args) == 0 {
		return node.Predicate
	}
	return fmt.Sprintf("%s(%s)", node.Predicate, strings.Join(node.Args, ", "))
}

// String renders the counterexample as a flat, indented trace suitable
// for a CLI diagnostic's "note" section.
func (c *Counterexample) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "violation of %s at %s:\n", errors.VerificationTargetName(c.Target.ErrorID), c.Target.Scope)
	for i, step := range c.Steps {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, step)
	}
	return sb.String()
}
