package chc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kanso/internal/errors"
	"kanso/internal/solver"
)

func TestReconstructWithNilGraphYieldsNoModelStep(t *testing.T) {
	target := &Target{ErrorID: errors.VerificationAssert, Scope: "Token::run"}
	cex := Reconstruct(target, nil)

	assert.Equal(t, []string{"<no model: query returned without Sat>"}, cex.Steps)
}

func TestReconstructWalksGraphDepthFirstFromRoot(t *testing.T) {
	graph := &solver.CexGraph{
		Root: 0,
		Nodes: map[int]solver.CexNode{
			0: {ID: 0, Predicate: "p", Args: []string{"1", "2"}},
			1: {ID: 1, Predicate: "q"},
		},
		Edges: map[int][]int{0: {1}},
	}
	target := &Target{ErrorID: errors.VerificationOverflow, Scope: "Token::add"}

	cex := Reconstruct(target, graph)

	assert.Equal(t, []string{"p(1, 2)", "q"}, cex.Steps)
}

func TestReconstructStopsOnAlreadyVisitedNode(t *testing.T) {
	graph := &solver.CexGraph{
		Root: 0,
		Nodes: map[int]solver.CexNode{
			0: {ID: 0, Predicate: "p"},
			1: {ID: 1, Predicate: "q"},
		},
		Edges: map[int][]int{0: {1, 1}, 1: {0}},
	}
	target := &Target{ErrorID: errors.VerificationAssert}

	cex := Reconstruct(target, graph)

	assert.Equal(t, []string{"p", "q"}, cex.Steps, "a cycle or shared child must not be walked twice")
}

func TestCounterexampleStringIncludesTargetNameAndScope(t *testing.T) {
	target := &Target{ErrorID: errors.VerificationDivByZero, Scope: "Token::divide"}
	cex := &Counterexample{Target: target, Steps: []string{"a", "b"}}

	out := cex.String()

	assert.Contains(t, out, "DivByZero")
	assert.Contains(t, out, "Token::divide")
	assert.Contains(t, out, "1. a")
	assert.Contains(t, out, "2. b")
}
