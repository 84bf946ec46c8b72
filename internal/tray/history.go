package tray

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/dicetray/internal/game/dice"
)

// DefaultHistoryCapacity bounds the history when no capacity is configured.
const DefaultHistoryCapacity = 50

// HistoryEntry records one completed roll.
//
// Invariant: immutable once pushed.
type HistoryEntry struct {
	RollID    uuid.UUID
	SetID     string
	Advantage dice.Advantage
	Counts    DiceCounts
	Bonus     int
	Hidden    bool
	DiceByID  map[DieType]Die
	Results   []dice.DieRoll
	Total     int
}

func (e HistoryEntry) clone() HistoryEntry {
	out := e
	out.Counts = e.Counts.Clone()
	out.DiceByID = make(map[DieType]Die, len(e.DiceByID))
	for t, d := range e.DiceByID {
		out.DiceByID[t] = d
	}
	out.Results = append([]dice.DieRoll(nil), e.Results...)
	return out
}

// HistoryStore is an append-only log of completed rolls in completion order.
// When a capacity is set, the oldest entry is evicted once it is exceeded.
//
// HistoryStore is not safe for concurrent use; Tray serializes access to it.
type HistoryStore struct {
	capacity int
	entries  []HistoryEntry
}

// NewHistoryStore creates a store retaining at most capacity entries; zero or
// less keeps every entry.
func NewHistoryStore(capacity int) *HistoryStore {
	return &HistoryStore{capacity: capacity}
}

// PushRecentRoll appends entry.
func (h *HistoryStore) PushRecentRoll(entry HistoryEntry) {
	h.entries = append(h.entries, entry.clone())
	if h.capacity > 0 && len(h.entries) > h.capacity {
		drop := len(h.entries) - h.capacity
		h.entries = append([]HistoryEntry(nil), h.entries[drop:]...)
	}
}

// Entries returns a snapshot of all entries, oldest first.
func (h *HistoryStore) Entries() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.clone()
	}
	return out
}

// Recent returns up to n entries, newest first. n <= 0 returns all of them.
func (h *HistoryStore) Recent(n int) []HistoryEntry {
	if n <= 0 || n > len(h.entries) {
		n = len(h.entries)
	}
	out := make([]HistoryEntry, 0, n)
	for i := len(h.entries) - 1; i >= len(h.entries)-n; i-- {
		out = append(out, h.entries[i].clone())
	}
	return out
}

// Len returns the number of retained entries.
func (h *HistoryStore) Len() int { return len(h.entries) }
