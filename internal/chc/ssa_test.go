package chc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexManagerFreshAdvancesVersion(t *testing.T) {
	m := NewIndexManager()

	assert.Equal(t, "balance_0", m.Current("balance"))
	assert.Equal(t, "balance_1", m.Fresh("balance"))
	assert.Equal(t, 1, m.Index("balance"))
	assert.Equal(t, "balance_1", m.Current("balance"))
}

func TestIndexManagerSnapshotRestore(t *testing.T) {
	m := NewIndexManager()
	m.Fresh("error")
	m.Fresh("error")
	snap := m.Snapshot()

	m.Fresh("error")
	assert.Equal(t, 3, m.Index("error"))

	m.Restore(snap)
	assert.Equal(t, 2, m.Index("error"))
}

func TestIndexManagerEraseKnowledgeBumpsEverySymbol(t *testing.T) {
	m := NewIndexManager()
	m.EraseKnowledge([]string{"state", "balance"})

	assert.Equal(t, 1, m.Index("state"))
	assert.Equal(t, 1, m.Index("balance"))
}
