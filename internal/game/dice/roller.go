package dice

import "go.uber.org/zap"

// Roller draws die values from a Source and logs every evaluated roll at
// debug level.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewRoller creates a Roller that rolls with src and logs to logger.
//
// Precondition: src and logger must be non-nil.
func NewRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// RollDie returns a uniformly distributed value in [1, sides].
//
// Precondition: sides >= 1.
func (r *Roller) RollDie(sides int) int {
	return r.src.Intn(sides) + 1
}

// RollPair resolves one die under adv. With None a single value is drawn;
// otherwise two independent values are drawn and the max (advantage) or min
// (disadvantage) is kept.
//
// Postcondition: result.Kept in [1, sides]; result.Discarded is 0 or in [1, sides].
func (r *Roller) RollPair(sides int, adv Advantage) DieRoll {
	first := r.RollDie(sides)
	if adv == None {
		return DieRoll{Kept: first}
	}
	second := r.RollDie(sides)
	keepFirst := first >= second
	if adv == WithDisadvantage {
		keepFirst = first <= second
	}
	if keepFirst {
		return DieRoll{Kept: first, Discarded: second}
	}
	return DieRoll{Kept: second, Discarded: first}
}

// LogResult records an evaluated roll at debug level. Callers that roll die by
// die through RollPair report the assembled result here.
func (r *Roller) LogResult(result RollResult) {
	paired := 0
	for _, d := range result.Dice {
		if d.Paired() {
			paired++
		}
	}
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Kept()),
		zap.Int("paired", paired),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
}
