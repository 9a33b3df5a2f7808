package chc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallGraphReachableFromIncludesRootAndTransitiveCallees(t *testing.T) {
	g := NewCallGraph()
	g.AddEdge("transfer", "deduct")
	g.AddEdge("deduct", "checkBalance")
	g.AddEdge("transfer", "emitEvent")

	reachable := g.ReachableFrom("transfer")

	assert.Contains(t, reachable, "transfer")
	assert.Contains(t, reachable, "deduct")
	assert.Contains(t, reachable, "checkBalance")
	assert.Contains(t, reachable, "emitEvent")
	assert.Len(t, reachable, 4)
}

func TestCallGraphReachableFromLeafHasNoCallees(t *testing.T) {
	g := NewCallGraph()
	g.AddEdge("transfer", "deduct")

	assert.Equal(t, []string{"deduct"}, g.ReachableFrom("deduct"))
}

func TestFunctionAssertionsRecordsPerScope(t *testing.T) {
	fa := NewFunctionAssertions()
	assert.Empty(t, fa.In("transfer"))

	fa.Record("transfer", nil)
	fa.Record("transfer", nil)
	fa.Record("deduct", nil)

	assert.Len(t, fa.In("transfer"), 2)
	assert.Len(t, fa.In("deduct"), 1)
}
