package tray

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cory-johannsen/dicetray/internal/game/dice"
)

// ErrInvalidTransition is returned when StartRoll is called while a roll is
// still in flight. Reaching it is a caller defect.
var ErrInvalidTransition = errors.New("tray: invalid roll lifecycle transition")

// State is the roll lifecycle state.
type State int

const (
	// Idle means no roll is active.
	Idle State = iota
	// Rolling means at least one die of the active roll is unresolved.
	Rolling
	// Finished means every die of the active roll is resolved.
	Finished
)

func (s State) String() string {
	switch s {
	case Rolling:
		return "rolling"
	case Finished:
		return "finished"
	default:
		return "idle"
	}
}

// InstanceID identifies one die of one roll request.
type InstanceID struct {
	RollID uuid.UUID
	Index  int
}

func (id InstanceID) String() string {
	return fmt.Sprintf("%s#%d", id.RollID, id.Index)
}

// RequestedDie is one die of a RollRequest. Advantage is None unless the die
// is rolled as a pair.
type RequestedDie struct {
	Instance  InstanceID
	Type      DieType
	Advantage dice.Advantage
}

// RollRequest is the expansion of a selection into individual dice.
//
// Invariant: immutable after NewRollRequest; Dice[i].Instance.Index == i.
type RollRequest struct {
	ID     uuid.UUID
	Dice   []RequestedDie
	Bonus  int
	Hidden bool
}

// NewRollRequest expands counts into one RequestedDie per die, ordered by die
// type. When adv is not None it applies to dice with keptFaces faces, or to
// every die when keptFaces is zero.
//
// Postcondition: len(result.Dice) == counts.Total() over positive counts.
func NewRollRequest(counts DiceCounts, adv dice.Advantage, keptFaces, bonus int, hidden bool) RollRequest {
	req := RollRequest{ID: uuid.New(), Bonus: bonus, Hidden: hidden}
	for _, t := range counts.Types() {
		mode := dice.None
		if keptFaces == 0 || t.Faces == keptFaces {
			mode = adv
		}
		for i := 0; i < counts[t]; i++ {
			req.Dice = append(req.Dice, RequestedDie{
				Instance:  InstanceID{RollID: req.ID, Index: len(req.Dice)},
				Type:      t,
				Advantage: mode,
			})
		}
	}
	return req
}

// RollValue pairs a die instance with its outcome. Roll is nil until recorded.
type RollValue struct {
	Instance InstanceID
	Type     DieType
	Roll     *dice.DieRoll
}

// RollStore tracks the active roll request and the values recorded for it.
//
// RollStore is not safe for concurrent use; Tray serializes access to it.
type RollStore struct {
	request *RollRequest
	values  []RollValue
	pending int
}

// NewRollStore returns an Idle store.
func NewRollStore() *RollStore {
	return &RollStore{}
}

// State returns the lifecycle state.
func (s *RollStore) State() State {
	switch {
	case s.request == nil:
		return Idle
	case s.pending > 0:
		return Rolling
	default:
		return Finished
	}
}

// IsFinishedRolling reports true when no roll is active or every die of the
// active roll has a value. Use State to tell the two apart.
func (s *RollStore) IsFinishedRolling() bool {
	return s.State() != Rolling
}

// StartRoll makes req the active roll with every value unresolved.
//
// Precondition: State() != Rolling.
// Postcondition: State() == Rolling, or Finished when req has no dice.
func (s *RollStore) StartRoll(req RollRequest) error {
	if s.State() == Rolling {
		return fmt.Errorf("%w: start roll %s while roll %s is rolling", ErrInvalidTransition, req.ID, s.request.ID)
	}
	s.request = &req
	s.values = make([]RollValue, len(req.Dice))
	for i, d := range req.Dice {
		s.values[i] = RollValue{Instance: d.Instance, Type: d.Type}
	}
	s.pending = len(req.Dice)
	return nil
}

// RecordDieValue sets the value of one die of the active roll. Recordings for
// a cleared or superseded roll, unknown instances and already resolved dice
// are dropped.
//
// Postcondition: returns true iff the value was applied.
func (s *RollStore) RecordDieValue(id InstanceID, roll dice.DieRoll) bool {
	if s.request == nil || id.RollID != s.request.ID {
		return false
	}
	if id.Index < 0 || id.Index >= len(s.values) {
		return false
	}
	v := &s.values[id.Index]
	if v.Roll != nil {
		return false
	}
	r := roll
	v.Roll = &r
	s.pending--
	return true
}

// ClearRoll discards the active roll.
//
// Postcondition: State() == Idle.
func (s *RollStore) ClearRoll() {
	s.request = nil
	s.values = nil
	s.pending = 0
}

// Values returns a copy of the recorded values in request order.
func (s *RollStore) Values() []RollValue {
	out := make([]RollValue, len(s.values))
	for i, v := range s.values {
		out[i] = RollValue{Instance: v.Instance, Type: v.Type}
		if v.Roll != nil {
			r := *v.Roll
			out[i].Roll = &r
		}
	}
	return out
}

// Total returns the sum of kept values plus the bonus once Finished.
func (s *RollStore) Total() (int, bool) {
	if s.State() != Finished {
		return 0, false
	}
	total := s.request.Bonus
	for _, v := range s.values {
		total += v.Roll.Kept
	}
	return total, true
}
