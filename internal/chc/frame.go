package chc

import (
	"fmt"

	"kanso/internal/ir"
)

// frame names the cross-function-visible prefix every FunctionEntrySort/
// FunctionSummarySort shares: err, addr, contract state, one symbol per
// storage slot, and the call's msg.value (spec.md §4.1, extended with the
// payability check SPEC_FULL.md adds). It is the only part of a live
// argument tuple the index manager versions — parameters ride alongside
// unversioned, since neither a branch merge nor a call can retroactively
// change a caller's own by-value parameters. value sits last, after
// storage rather than beside addr, so it never shifts EraseKnowledge's
// erasable prefix or the params_pre/params_post slicing that already
// assumed storage ends the cross-function block.
type frame struct {
	keys []string
}

func newFrame(program *ir.Program) *frame {
	keys := []string{"err", "addr", "state"}
	for i := range program.Storage {
		keys = append(keys, fmt.Sprintf("stor%d", i))
	}
	keys = append(keys, "value")
	return &frame{keys: keys}
}

func (f *frame) len() int { return len(f.keys) }

// valueIndex is msg.value's position within any tuple this frame produced
// (current/fresh), always the last frame slot, right before parameters.
func (f *frame) valueIndex() int { return len(f.keys) - 1 }

// current reads every tracked symbol's present version without advancing
// it — used once, at function entry, before anything has run.
func (f *frame) current(idx *IndexManager) []string {
	args := make([]string, len(f.keys))
	for i, k := range f.keys {
		args[i] = idx.Current(k)
	}
	return args
}

// fresh advances every tracked symbol to a new version, for a block visited
// with no more specific provenance for its incoming frame than "some prior
// block flowed into it."
func (f *frame) fresh(idx *IndexManager) []string {
	args := make([]string, len(f.keys))
	for i, k := range f.keys {
		args[i] = idx.Fresh(k)
	}
	return args
}

// erase bumps every tracked symbol's version after an unknown call, so the
// havocked names EraseKnowledge fabricates can never collide with a name
// used anywhere else in the function (spec.md §4.4/§9).
func (f *frame) erase(idx *IndexManager) {
	idx.EraseKnowledge(f.keys)
}
