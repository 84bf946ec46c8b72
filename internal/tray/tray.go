package tray

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicetray/internal/game/dice"
)

// User-facing failures. Tray reports them through its Notifier and also
// returns them to the caller.
var (
	ErrRollInProgress = errors.New("a roll is still in progress")
	ErrNothingToRoll  = errors.New("no dice selected")
	ErrUnknownDie     = errors.New("unknown die")
	ErrUnknownSet     = errors.New("unknown dice set")
	ErrTooManyDice    = errors.New("too many dice")
	ErrNoSuchRoll     = errors.New("no such roll in history")
)

// Notifier shows an error to the participant. Calls are fire-and-forget.
type Notifier interface {
	NotifyError(msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg string)

// NotifyError calls f(msg).
func (f NotifierFunc) NotifyError(msg string) { f(msg) }

// RecordFunc records the outcome of one die. It returns false once the roll
// the die belongs to has been cleared or superseded.
type RecordFunc func(id InstanceID, roll dice.DieRoll) bool

// Revealer decides when each resolved die becomes known. Implementations may
// record values in any order and at any pace, and should stop once record
// returns false.
type Revealer interface {
	Reveal(res Resolution, record RecordFunc)
}

// RevealerFunc adapts a function to Revealer.
type RevealerFunc func(res Resolution, record RecordFunc)

// Reveal calls f(res, record).
func (f RevealerFunc) Reveal(res Resolution, record RecordFunc) { f(res, record) }

// ImmediateRevealer records every die synchronously in request order.
var ImmediateRevealer Revealer = RevealerFunc(func(res Resolution, record RecordFunc) {
	for _, d := range res.Dice {
		if !record(d.Instance, d.Roll) {
			return
		}
	}
})

// Selection is a read-only snapshot of the selection store.
type Selection struct {
	SetID     string
	Counts    DiceCounts
	Bonus     int
	Advantage dice.Advantage
	Hidden    bool
	Pending   bool
}

// Option configures a Tray.
type Option func(*Tray)

// WithRevealer replaces ImmediateRevealer.
func WithRevealer(r Revealer) Option {
	return func(t *Tray) { t.revealer = r }
}

// WithCompletionHook registers fn to run after each completed roll has been
// added to the history. fn runs without the tray lock held.
func WithCompletionHook(fn func(HistoryEntry)) Option {
	return func(t *Tray) { t.onComplete = fn }
}

// WithKeptFaces sets the face count advantage applies to; zero applies it to
// every die. The default is 20.
func WithKeptFaces(faces int) Option {
	return func(t *Tray) { t.keptFaces = faces }
}

// WithMaxDice caps the number of dice in one roll; zero disables the cap.
func WithMaxDice(n int) Option {
	return func(t *Tray) { t.maxDice = n }
}

// Tray wires the selection, roll lifecycle and history stores to the roll
// engine. It is safe for concurrent use: every store access happens under one
// mutex, and reveal/notify/completion callbacks run outside it.
type Tray struct {
	mu        sync.Mutex
	catalog   *Catalog
	selection *SelectionStore
	rolls     *RollStore
	history   *HistoryStore
	roller    *dice.Roller
	notifier  Notifier
	logger    *zap.Logger

	revealer   Revealer
	onComplete func(HistoryEntry)
	keptFaces  int
	maxDice    int

	// pending is the history entry for the active roll, snapshotted at launch.
	pending *HistoryEntry
}

// NewTray creates a Tray over the given stores.
//
// Precondition: all arguments must be non-nil.
// Postcondition: Returns a Tray using ImmediateRevealer unless overridden.
func NewTray(
	catalog *Catalog,
	selection *SelectionStore,
	rolls *RollStore,
	history *HistoryStore,
	roller *dice.Roller,
	notifier Notifier,
	logger *zap.Logger,
	opts ...Option,
) *Tray {
	t := &Tray{
		catalog:   catalog,
		selection: selection,
		rolls:     rolls,
		history:   history,
		roller:    roller,
		notifier:  notifier,
		logger:    logger,
		revealer:  ImmediateRevealer,
		keptFaces: 20,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Submit parses input and, on success, replaces the selection with the
// specified dice of the selected set and sets the bonus. A finished roll is
// cleared first. On failure the participant is notified and nothing changes.
func (t *Tray) Submit(input string) error {
	t.mu.Lock()
	err := t.submitLocked(input)
	t.mu.Unlock()
	if err != nil {
		t.fail(input, err)
	}
	return err
}

// Launch expands the selection into a roll request, starts it and hands the
// resolved dice to the revealer.
//
// Postcondition: on success State() is Rolling until the revealer records
// every die; on failure the participant is notified.
func (t *Tray) Launch() (RollRequest, error) {
	t.mu.Lock()
	req, res, err := t.launchLocked()
	t.mu.Unlock()
	if err != nil {
		t.fail("", err)
		return RollRequest{}, err
	}
	t.revealer.Reveal(res, t.Record)
	return req, nil
}

// Roll submits input and launches the resulting selection atomically.
func (t *Tray) Roll(input string) (RollRequest, error) {
	t.mu.Lock()
	err := t.submitLocked(input)
	var (
		req RollRequest
		res Resolution
	)
	if err == nil {
		req, res, err = t.launchLocked()
	}
	t.mu.Unlock()
	if err != nil {
		t.fail(input, err)
		return RollRequest{}, err
	}
	t.revealer.Reveal(res, t.Record)
	return req, nil
}

// Reroll restores the composition of the n-th most recent history entry
// (1 = newest) and launches it.
func (t *Tray) Reroll(n int) (RollRequest, error) {
	t.mu.Lock()
	err := t.restoreLocked(n)
	var (
		req RollRequest
		res Resolution
	)
	if err == nil {
		req, res, err = t.launchLocked()
	}
	t.mu.Unlock()
	if err != nil {
		t.fail("", err)
		return RollRequest{}, err
	}
	t.revealer.Reveal(res, t.Record)
	return req, nil
}

// Record stores the outcome of one die. When it completes the active roll the
// history gains an entry, the selection is reset and the completion hook runs.
//
// Postcondition: returns false, changing nothing, for stale or duplicate values.
func (t *Tray) Record(id InstanceID, roll dice.DieRoll) bool {
	t.mu.Lock()
	if !t.rolls.RecordDieValue(id, roll) {
		t.mu.Unlock()
		t.logger.Debug("dropped die value",
			zap.Stringer("instance", id),
			zap.Int("kept", roll.Kept),
		)
		return false
	}

	var done *HistoryEntry
	if t.rolls.State() == Finished && t.pending != nil {
		entry := *t.pending
		for _, v := range t.rolls.Values() {
			entry.Results = append(entry.Results, *v.Roll)
		}
		entry.Total, _ = t.rolls.Total()
		t.history.PushRecentRoll(entry)
		t.selection.Reset()
		t.pending = nil
		done = &entry
	}
	hook := t.onComplete
	t.mu.Unlock()

	if done != nil {
		t.logger.Debug("roll finished",
			zap.Stringer("roll_id", done.RollID),
			zap.Int("dice", len(done.Results)),
			zap.Int("bonus", done.Bonus),
			zap.Int("total", done.Total),
		)
		if hook != nil {
			hook(*done)
		}
	}
	return true
}

// Clear cancels the active roll. Values recorded for it afterwards are dropped.
func (t *Tray) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rolls.ClearRoll()
	t.pending = nil
}

// AddDie increments the count of the selected set's die with the given faces.
func (t *Tray) AddDie(faces int) error {
	t.mu.Lock()
	set := t.selection.DiceSet()
	d, ok := set.Die(faces)
	if ok {
		t.selection.IncrementDieCount(d.Type)
	}
	t.mu.Unlock()
	if !ok {
		err := fmt.Errorf("%w: dice set %s has no d%d", ErrUnknownDie, set.ID, faces)
		t.fail("", err)
		return err
	}
	return nil
}

// SelectSet switches the selected dice set and resets the counts to its
// default loadout.
func (t *Tray) SelectSet(id string) error {
	t.mu.Lock()
	set, ok := t.catalog.Set(id)
	if ok {
		t.selection.SelectSet(set)
	}
	t.mu.Unlock()
	if !ok {
		err := fmt.Errorf("%w %q", ErrUnknownSet, id)
		t.fail("", err)
		return err
	}
	return nil
}

// SetBonus sets the flat bonus of the next roll.
func (t *Tray) SetBonus(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.selection.SetBonus(n)
}

// SetAdvantage sets the advantage mode of the next roll.
func (t *Tray) SetAdvantage(a dice.Advantage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.selection.SetAdvantage(a)
}

// SetHidden marks subsequent rolls as hidden or visible.
func (t *Tray) SetHidden(h bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.selection.SetHidden(h)
}

// ResetSelection restores counts, bonus and advantage to their defaults.
func (t *Tray) ResetSelection() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.selection.Reset()
}

// Selection returns a snapshot of the selection.
func (t *Tray) Selection() Selection {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Selection{
		SetID:     t.selection.DiceSet().ID,
		Counts:    t.selection.Counts(),
		Bonus:     t.selection.Bonus(),
		Advantage: t.selection.Advantage(),
		Hidden:    t.selection.Hidden(),
		Pending:   t.selection.HasNonDefaultSelection(),
	}
}

// State returns the roll lifecycle state.
func (t *Tray) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rolls.State()
}

// Values returns the active roll's values in request order.
func (t *Tray) Values() []RollValue {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rolls.Values()
}

// History returns every retained history entry, oldest first.
func (t *Tray) History() []HistoryEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.history.Entries()
}

// Recent returns up to n history entries, newest first.
func (t *Tray) Recent(n int) []HistoryEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.history.Recent(n)
}

// Catalog returns the dice-set catalog.
func (t *Tray) Catalog() *Catalog { return t.catalog }

func (t *Tray) submitLocked(input string) error {
	if t.rolls.State() == Rolling {
		return ErrRollInProgress
	}
	spec, err := dice.Parse(input)
	if err != nil {
		return err
	}
	set := t.selection.DiceSet()
	die, ok := set.Die(spec.Sides)
	if !ok {
		return fmt.Errorf("%w: dice set %s has no d%d", ErrUnknownDie, set.ID, spec.Sides)
	}
	// The set's default loadout stays in the selection alongside the specified dice.
	if n := t.selection.Baseline().Total() + spec.Count; t.maxDice > 0 && n > t.maxDice {
		return fmt.Errorf("%w: %d requested, limit is %d", ErrTooManyDice, n, t.maxDice)
	}

	if t.rolls.State() == Finished {
		t.rolls.ClearRoll()
	}
	t.selection.ResetDiceCounts()
	for i := 0; i < spec.Count; i++ {
		t.selection.IncrementDieCount(die.Type)
	}
	t.selection.SetBonus(spec.Modifier)
	return nil
}

func (t *Tray) restoreLocked(n int) error {
	if t.rolls.State() == Rolling {
		return ErrRollInProgress
	}
	recent := t.history.Recent(n)
	if n < 1 || len(recent) < n {
		return fmt.Errorf("%w: #%d", ErrNoSuchRoll, n)
	}
	entry := recent[n-1]

	if entry.SetID != t.selection.DiceSet().ID {
		set, ok := t.catalog.Set(entry.SetID)
		if !ok {
			return fmt.Errorf("%w %q", ErrUnknownSet, entry.SetID)
		}
		t.selection.SelectSet(set)
	}
	t.selection.ResetDiceCounts()
	baseline := t.selection.Baseline()
	for _, ty := range entry.Counts.Types() {
		for i := baseline.Get(ty); i < entry.Counts.Get(ty); i++ {
			t.selection.IncrementDieCount(ty)
		}
	}
	t.selection.SetBonus(entry.Bonus)
	t.selection.SetAdvantage(entry.Advantage)
	return nil
}

func (t *Tray) launchLocked() (RollRequest, Resolution, error) {
	if t.rolls.State() == Rolling {
		return RollRequest{}, Resolution{}, ErrRollInProgress
	}
	if !t.selection.HasNonDefaultSelection() {
		return RollRequest{}, Resolution{}, ErrNothingToRoll
	}
	counts := t.selection.Counts()
	n := counts.Total()
	if n == 0 {
		return RollRequest{}, Resolution{}, ErrNothingToRoll
	}
	if t.maxDice > 0 && n > t.maxDice {
		return RollRequest{}, Resolution{}, fmt.Errorf("%w: %d selected, limit is %d", ErrTooManyDice, n, t.maxDice)
	}

	adv := t.selection.Advantage()
	req := NewRollRequest(counts, adv, t.keptFaces, t.selection.Bonus(), t.selection.Hidden())
	if err := t.rolls.StartRoll(req); err != nil {
		t.logger.Error("starting roll", zap.Error(err))
		return RollRequest{}, Resolution{}, err
	}

	diceByID := make(map[DieType]Die, len(counts))
	for _, ty := range counts.Types() {
		d, ok := t.catalog.Die(ty)
		if !ok {
			d = Die{Type: ty}
		}
		diceByID[ty] = d
	}
	t.pending = &HistoryEntry{
		RollID:    req.ID,
		SetID:     t.selection.DiceSet().ID,
		Advantage: adv,
		Counts:    counts,
		Bonus:     req.Bonus,
		Hidden:    req.Hidden,
		DiceByID:  diceByID,
	}

	res := Resolve(req, t.roller)
	t.logger.Debug("roll launched",
		zap.Stringer("roll_id", req.ID),
		zap.Int("dice", len(req.Dice)),
		zap.Int("bonus", req.Bonus),
		zap.String("advantage", adv.String()),
		zap.Bool("hidden", req.Hidden),
	)
	return req, res, nil
}

// fail reports err to the participant. Malformed specifiers embed the raw input.
func (t *Tray) fail(input string, err error) {
	if errors.Is(err, dice.ErrMalformedSpecifier) {
		t.logger.Debug("rejected roll specifier", zap.String("input", input), zap.Error(err))
		t.notifier.NotifyError(fmt.Sprintf("Error: Incorrect roll input \"%s\"", input))
		return
	}
	if errors.Is(err, ErrInvalidTransition) {
		t.logger.Error("roll lifecycle violation", zap.Error(err))
	}
	t.notifier.NotifyError("Error: " + err.Error())
}
