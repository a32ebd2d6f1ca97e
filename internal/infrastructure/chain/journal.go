package chain

import "sync"

// Journal records how to undo every state change made by the stores
// sharing it, so a failed operation can be rolled back as a whole.
type Journal struct {
	mu      sync.Mutex
	entries []func()
}

// NewJournal creates an empty journal
func NewJournal() *Journal {
	return &Journal{}
}

// Record appends an undo step. Stores call it while applying a change.
func (j *Journal) Record(undo func()) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, undo)
}

// Snapshot returns an identifier for the current state.
func (j *Journal) Snapshot() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}

// RevertToSnapshot undoes every change recorded since id, newest first.
func (j *Journal) RevertToSnapshot(id int) {
	j.mu.Lock()
	if id < 0 || id > len(j.entries) {
		j.mu.Unlock()
		return
	}
	undo := append([]func(){}, j.entries[id:]...)
	j.entries = j.entries[:id]
	j.mu.Unlock()

	// undo steps take store locks, so run them outside ours
	for i := len(undo) - 1; i >= 0; i-- {
		undo[i]()
	}
}

// Commit forgets recorded changes; they can no longer be reverted.
func (j *Journal) Commit() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = j.entries[:0]
}

// Len returns the number of pending undo steps
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}
