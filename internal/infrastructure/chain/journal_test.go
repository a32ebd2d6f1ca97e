package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJournal_RevertToSnapshot(t *testing.T) {
	journal := NewJournal()
	var trail []int

	journal.Record(func() { trail = append(trail, 1) })
	snapshot := journal.Snapshot()
	journal.Record(func() { trail = append(trail, 2) })
	journal.Record(func() { trail = append(trail, 3) })

	journal.RevertToSnapshot(snapshot)

	assert.Equal(t, []int{3, 2}, trail, "undo runs newest first and stops at the snapshot")
	assert.Equal(t, 1, journal.Len())
}

func TestJournal_Commit(t *testing.T) {
	journal := NewJournal()
	undone := false
	journal.Record(func() { undone = true })

	journal.Commit()
	journal.RevertToSnapshot(0)

	assert.False(t, undone)
	assert.Zero(t, journal.Len())
}

func TestJournal_RevertOutOfRange(t *testing.T) {
	journal := NewJournal()
	undone := 0
	journal.Record(func() { undone++ })

	journal.RevertToSnapshot(5)
	journal.RevertToSnapshot(-1)

	assert.Zero(t, undone)
	assert.Equal(t, 1, journal.Len())
}
