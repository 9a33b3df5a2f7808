package chc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameCurrentNamesErrAddrStateAndOneSymbolPerStorageSlot(t *testing.T) {
	fr := newFrame(testProgram())
	idx := NewIndexManager()

	assert.Equal(t, 6, fr.len())
	assert.Equal(t, []string{"err_0", "addr_0", "state_0", "stor0_0", "stor1_0", "value_0"}, fr.current(idx))
	assert.Equal(t, 5, fr.valueIndex())
}

func TestFrameFreshAdvancesEverySymbolsVersion(t *testing.T) {
	fr := newFrame(testProgram())
	idx := NewIndexManager()

	fr.current(idx)
	fresh := fr.fresh(idx)

	assert.Equal(t, []string{"err_1", "addr_1", "state_1", "stor0_1", "stor1_1", "value_1"}, fresh)
}

func TestFrameEraseBumpsEverySymbolPastAnyOtherUse(t *testing.T) {
	fr := newFrame(testProgram())
	idx := NewIndexManager()

	fr.erase(idx)

	assert.Equal(t, []string{"err_1", "addr_1", "state_1", "stor0_1", "stor1_1", "value_1"}, fr.current(idx))
}
