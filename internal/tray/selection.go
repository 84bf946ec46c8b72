package tray

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cory-johannsen/dicetray/internal/game/dice"
)

// DiceCounts maps a die type to how many of it are selected. A missing key
// means zero.
type DiceCounts map[DieType]int

// Get returns the count for t, zero when absent.
func (c DiceCounts) Get(t DieType) int { return c[t] }

// Clone returns an independent copy with zero entries dropped.
func (c DiceCounts) Clone() DiceCounts {
	out := make(DiceCounts, len(c))
	for t, n := range c {
		if n != 0 {
			out[t] = n
		}
	}
	return out
}

// Equal compares two count maps treating absent keys as zero.
func (c DiceCounts) Equal(o DiceCounts) bool {
	for t, n := range c {
		if o[t] != n {
			return false
		}
	}
	for t, n := range o {
		if c[t] != n {
			return false
		}
	}
	return true
}

// Total returns the number of dice across all types.
func (c DiceCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Types returns the die types with a positive count, ordered by DieType.Less.
func (c DiceCounts) Types() []DieType {
	types := make([]DieType, 0, len(c))
	for t, n := range c {
		if n > 0 {
			types = append(types, t)
		}
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Less(types[j]) })
	return types
}

// String renders the counts as "2d6 + 1d20" in Types order, or "none".
func (c DiceCounts) String() string {
	types := c.Types()
	if len(types) == 0 {
		return "none"
	}
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = fmt.Sprintf("%dd%d", c[t], t.Faces)
	}
	return strings.Join(parts, " + ")
}

// Expression renders the counts and bonus as a roll expression: the canonical
// specifier "2d6+3" for a single die type, otherwise "2d6 + 1d20 +3".
func (c DiceCounts) Expression(bonus int) string {
	if types := c.Types(); len(types) == 1 {
		return dice.Specifier{Count: c[types[0]], Sides: types[0].Faces, Modifier: bonus}.String()
	}
	if bonus == 0 {
		return c.String()
	}
	return fmt.Sprintf("%s %+d", c, bonus)
}

// SelectionStore holds the die counts, dice set, bonus, advantage mode and
// hidden flag the next roll will be built from.
//
// All operations are total. SelectionStore is not safe for concurrent use;
// Tray serializes access to it.
type SelectionStore struct {
	set       *DiceSet
	baseline  DiceCounts
	counts    DiceCounts
	bonus     int
	advantage dice.Advantage
	hidden    bool
}

// NewSelectionStore creates a store selecting set, with counts at the set's
// default loadout.
//
// Precondition: set must be non-nil.
func NewSelectionStore(set *DiceSet) *SelectionStore {
	s := &SelectionStore{}
	s.SelectSet(set)
	return s
}

// IncrementDieCount adds one die of type t, creating the entry if absent.
func (s *SelectionStore) IncrementDieCount(t DieType) {
	s.counts[t]++
}

// ResetDiceCounts restores the counts to the default loadout.
func (s *SelectionStore) ResetDiceCounts() {
	s.counts = s.baseline.Clone()
}

// SetBonus sets the flat bonus.
func (s *SelectionStore) SetBonus(n int) { s.bonus = n }

// SetAdvantage sets the advantage mode.
func (s *SelectionStore) SetAdvantage(a dice.Advantage) { s.advantage = a }

// SetHidden marks the next roll as hidden.
func (s *SelectionStore) SetHidden(h bool) { s.hidden = h }

// SelectSet switches dice set. The baseline becomes the new set's default
// loadout and the counts are reset to it.
func (s *SelectionStore) SelectSet(set *DiceSet) {
	s.set = set
	s.baseline = set.Baseline()
	s.ResetDiceCounts()
}

// Reset restores counts, bonus and advantage to their defaults. The dice set
// and hidden flag are kept.
func (s *SelectionStore) Reset() {
	s.ResetDiceCounts()
	s.bonus = 0
	s.advantage = dice.None
}

// HasNonDefaultSelection reports whether the counts differ from the baseline.
func (s *SelectionStore) HasNonDefaultSelection() bool {
	return !s.counts.Equal(s.baseline)
}

// DiceSet returns the selected dice set.
func (s *SelectionStore) DiceSet() *DiceSet { return s.set }

// Counts returns a snapshot of the current counts.
func (s *SelectionStore) Counts() DiceCounts { return s.counts.Clone() }

// Baseline returns a snapshot of the default loadout.
func (s *SelectionStore) Baseline() DiceCounts { return s.baseline.Clone() }

// Bonus returns the flat bonus.
func (s *SelectionStore) Bonus() int { return s.bonus }

// Advantage returns the advantage mode.
func (s *SelectionStore) Advantage() dice.Advantage { return s.advantage }

// Hidden reports whether the next roll is hidden.
func (s *SelectionStore) Hidden() bool { return s.hidden }
