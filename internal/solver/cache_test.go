package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseCacheLookupMiss(t *testing.T) {
	c := NewResponseCache()
	_, ok := c.Lookup("(assert (error))")
	assert.False(t, ok)
}

func TestResponseCacheStoreThenLookupHit(t *testing.T) {
	c := NewResponseCache()
	query := "(assert (error))"
	c.Store(query, CachedResponse{Result: Unsat})

	got, ok := c.Lookup(query)
	assert.True(t, ok)
	assert.Equal(t, Unsat, got.Result)
	assert.Equal(t, 1, c.Len())
}

func TestResponseCacheKeysByContentNotIdentity(t *testing.T) {
	c := NewResponseCache()
	c.Store("(assert (p x))", CachedResponse{Result: Sat})

	_, ok := c.Lookup("(assert (p y))")
	assert.False(t, ok, "a different query text must not hit the same cache entry")
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "sat", Sat.String())
	assert.Equal(t, "unsat", Unsat.String())
	assert.Equal(t, "unknown", Unknown.String())
	assert.Equal(t, "conflicting", Conflicting.String())
}

func TestCexGraphStringHandlesNil(t *testing.T) {
	var g *CexGraph
	assert.Equal(t, "<no model>", g.String())
}
