package tray

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/dicetray/internal/game/dice"
)

// ResolvedDie is the engine's outcome for one requested die.
type ResolvedDie struct {
	Instance InstanceID
	Type     DieType
	Roll     dice.DieRoll
}

// Resolution is the full outcome of a roll request.
//
// Invariant: Total == sum(Dice[i].Roll.Kept) + Bonus.
type Resolution struct {
	RollID uuid.UUID
	Dice   []ResolvedDie
	Bonus  int
	Total  int
}

// Resolve rolls every die of req and logs the outcome through roller. Paired
// dice contribute only their kept value.
//
// Postcondition: len(result.Dice) == len(req.Dice), in request order.
func Resolve(req RollRequest, roller *dice.Roller) Resolution {
	res := Resolution{RollID: req.ID, Bonus: req.Bonus, Total: req.Bonus}
	res.Dice = make([]ResolvedDie, len(req.Dice))
	counts := make(DiceCounts)
	rolls := make([]dice.DieRoll, len(req.Dice))
	for i, d := range req.Dice {
		roll := roller.RollPair(d.Type.Faces, d.Advantage)
		res.Dice[i] = ResolvedDie{Instance: d.Instance, Type: d.Type, Roll: roll}
		res.Total += roll.Kept
		counts[d.Type]++
		rolls[i] = roll
	}
	if len(rolls) > 0 {
		roller.LogResult(dice.RollResult{
			Expression: counts.Expression(req.Bonus),
			Dice:       rolls,
			Modifier:   req.Bonus,
		})
	}
	return res
}
