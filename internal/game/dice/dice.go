// Package dice provides the specifier grammar, the randomness abstraction and
// the per-die roll primitives used by the dice tray.
package dice

import (
	"fmt"
	"strings"
)

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Advantage selects how a paired roll is resolved.
type Advantage int

const (
	// None rolls every die once.
	None Advantage = iota
	// WithAdvantage rolls a pair and keeps the higher value.
	WithAdvantage
	// WithDisadvantage rolls a pair and keeps the lower value.
	WithDisadvantage
)

// String returns the wire name of the mode: "", "advantage" or "disadvantage".
func (a Advantage) String() string {
	switch a {
	case WithAdvantage:
		return "advantage"
	case WithDisadvantage:
		return "disadvantage"
	default:
		return ""
	}
}

// ParseAdvantage maps a mode name to an Advantage. The empty string, "none"
// and "normal" select None.
//
// Postcondition: Returns the mode or an error naming the unknown input.
func ParseAdvantage(s string) (Advantage, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "normal":
		return None, nil
	case "advantage", "adv":
		return WithAdvantage, nil
	case "disadvantage", "dis":
		return WithDisadvantage, nil
	default:
		return None, fmt.Errorf("dice: unknown advantage mode %q", s)
	}
}

// DieRoll is the outcome of one requested die. Discarded is zero unless the
// die was rolled as an advantage/disadvantage pair.
//
// Invariant: only Kept contributes to a total.
type DieRoll struct {
	Kept      int
	Discarded int
}

// Paired reports whether the die was rolled as a pair.
func (d DieRoll) Paired() bool { return d.Discarded != 0 }

// String renders "5" for a single die and "2 vs 5, kept 5" for a pair.
func (d DieRoll) String() string {
	if !d.Paired() {
		return fmt.Sprintf("%d", d.Kept)
	}
	return fmt.Sprintf("%d vs %d, kept %d", d.Discarded, d.Kept, d.Kept)
}

// RollResult holds the full audit trail for a single specifier evaluation.
//
// Postcondition: Total() == sum(kept dice) + Modifier.
type RollResult struct {
	Expression string    // canonical specifier, e.g. "2d6+3"
	Dice       []DieRoll // individual die results before modifier
	Modifier   int       // flat modifier (may be negative)
}

// Kept returns the kept value of every die in roll order.
func (r RollResult) Kept() []int {
	kept := make([]int, len(r.Dice))
	for i, d := range r.Dice {
		kept[i] = d.Kept
	}
	return kept
}

// Total returns the sum of all kept die results plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d.Kept
	}
	return total
}

// String returns a human-readable audit string in the format:
//
//	"2d6+3 → [4 5] +3 = 12"
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	parts := make([]string, len(r.Dice))
	for i, d := range r.Dice {
		if d.Paired() {
			parts[i] = fmt.Sprintf("(%s)", d)
			continue
		}
		parts[i] = d.String()
	}
	return fmt.Sprintf("%s → [%s] %+d = %d", r.Expression, strings.Join(parts, " "), r.Modifier, r.Total())
}
