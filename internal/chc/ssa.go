package chc

import "fmt"

// IndexManager maintains a monotonic version counter per tracked symbol
// (contract state variables, the error flag, the blockchain state symbol)
// and lets the block graph builder snapshot/restore it across branch merges
// and call-frame save/restore, per spec.md §4.1/§4.4.
//
// This is a separate, coarser index than the IR's own SSA values: the IR
// already gives every local a unique name inside one function body, but the
// encoder additionally needs versions for symbols that cross function and
// block boundaries (state variables, `error`, `state`) which the IR builder
// never versions on its own.
type IndexManager struct {
	versions map[string]int
}

func NewIndexManager() *IndexManager {
	return &IndexManager{versions: make(map[string]int)}
}

// Current returns the SSA-indexed name for a symbol at its current version,
// e.g. "balance_3".
func (m *IndexManager) Current(symbol string) string {
	return fmt.Sprintf("%s_%d", symbol, m.versions[symbol])
}

// Index returns the bare current version number, for building sort-tuple
// argument lists where only the index (not a full name) is needed.
func (m *IndexManager) Index(symbol string) int {
	return m.versions[symbol]
}

// Fresh advances symbol's version and returns its new SSA-indexed name —
// used whenever the encoder assigns a new value to a tracked symbol.
func (m *IndexManager) Fresh(symbol string) string {
	m.versions[symbol]++
	return m.Current(symbol)
}

// Snapshot captures every tracked symbol's version, for branch merges
// (spec.md §4.2) or call-frame save/restore (§4.4).
type Snapshot map[string]int

func (m *IndexManager) Snapshot() Snapshot {
	snap := make(Snapshot, len(m.versions))
	for k, v := range m.versions {
		snap[k] = v
	}
	return snap
}

func (m *IndexManager) Restore(snap Snapshot) {
	m.versions = make(map[string]int, len(snap))
	for k, v := range snap {
		m.versions[k] = v
	}
}

// EraseKnowledge advances each of the given symbols to a fresh unconstrained
// version — the "knowledge erasure" of spec.md §4.4/§9 after an unknown
// call. Returning fresh names (rather than zero) keeps every erased symbol
// distinct from any value the solver previously reasoned about.
func (m *IndexManager) EraseKnowledge(symbols []string) {
	for _, s := range symbols {
		m.versions[s]++
	}
}
