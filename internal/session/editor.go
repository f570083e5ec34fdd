package session

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/claude/replog/internal/models"
)

// DefaultWeightLabel is the weight unit shown when no unit source is set.
const DefaultWeightLabel = "Lbs"

// Submitter receives the payload of a confirmed workout.
type Submitter interface {
	Submit(ctx context.Context, payload models.WorkoutPayload) error
}

// UnitLabeler provides the label attached to weight inputs ("Lbs", "Kg").
// The editor shows it and never converts values with it.
type UnitLabeler interface {
	WeightUnitLabel() string
}

// ErrNothingPending is returned by Confirm when no action awaits confirmation.
var ErrNothingPending = errors.New("no action pending")

type setEntry struct {
	Set
	ref uint64
	row *DragRow[uint64]
}

type entry struct {
	Exercise
	ref  uint64
	sets []setEntry
}

func setEntryID(e *entry, id int) { e.ID = id }

// Editor is a running workout session: its exercises, their sets and the
// pending confirmation.
//
// Exercises are numbered 1..N. Every exercise holds at least one set. Set rows
// share one swipe coordinator, so at most one of them is open. Index-based
// calls with an index outside the current bounds do nothing and report false.
type Editor struct {
	title     string
	exercises []entry
	pending   PendingAction

	addForm *Composer

	nextRef uint64
	swipe   *SwipeCoordinator[uint64]

	submitter Submitter
	units     UnitLabeler
	log       *slog.Logger
}

// Option configures an Editor.
type Option func(*Editor)

// WithSubmitter sets where confirmed workouts go. Without one, payloads are
// only logged.
func WithSubmitter(s Submitter) Option {
	return func(e *Editor) { e.submitter = s }
}

// WithUnits sets the weight unit label source.
func WithUnits(u UnitLabeler) Option {
	return func(e *Editor) { e.units = u }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Editor) { e.log = log }
}

// NewEditor starts a session for w. Each exercise is seeded with one blank set.
func NewEditor(w models.Workout, opts ...Option) *Editor {
	e := &Editor{
		title:   w.Title,
		addForm: NewExerciseForm(),
		swipe:   NewSwipeCoordinator[uint64](),
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	for _, name := range w.Exercises {
		e.appendExercise(name)
	}
	return e
}

// Title returns the workout name.
func (e *Editor) Title() string { return e.title }

// WeightLabel returns the unit label for weight inputs.
func (e *Editor) WeightLabel() string {
	if e.units == nil {
		return DefaultWeightLabel
	}
	return e.units.WeightUnitLabel()
}

// Exercises returns the exercises in order.
func (e *Editor) Exercises() []Exercise {
	out := make([]Exercise, len(e.exercises))
	for i, ex := range e.exercises {
		out[i] = ex.Exercise
	}
	return out
}

// Sets returns a copy of the sets of the exercise numbered exerciseID.
func (e *Editor) Sets(exerciseID int) []Set {
	ex := e.exercise(exerciseID)
	if ex == nil {
		return nil
	}
	out := make([]Set, len(ex.sets))
	for i, s := range ex.sets {
		out[i] = s.Set
	}
	return out
}

// AddSet appends a blank set to the exercise numbered exerciseID.
func (e *Editor) AddSet(exerciseID int) bool {
	ex := e.exercise(exerciseID)
	if ex == nil {
		return false
	}
	e.appendSet(ex)
	return true
}

// RemoveSet removes the set at index from the exercise numbered exerciseID.
// The last remaining set is never removed.
func (e *Editor) RemoveSet(exerciseID, index int) bool {
	ex := e.exercise(exerciseID)
	if ex == nil || index < 0 || index >= len(ex.sets) || len(ex.sets) <= 1 {
		return false
	}
	ref := ex.sets[index].ref
	ex.sets = append(ex.sets[:index:index], ex.sets[index+1:]...)
	e.swipe.Unregister(ref)
	return true
}

// UpdateSet replaces one field of a set. The value is stored as given.
func (e *Editor) UpdateSet(exerciseID, index int, field Field, value string) bool {
	ex := e.exercise(exerciseID)
	if ex == nil || index < 0 || index >= len(ex.sets) {
		return false
	}
	ex.sets[index].Set = ex.sets[index].with(field, value)
	return true
}

// AddExercises appends one exercise per non-blank name, each with one blank
// set, and returns how many were added.
func (e *Editor) AddExercises(names []string) int {
	n := 0
	for _, name := range names {
		if blank(name) {
			continue
		}
		e.appendExercise(name)
		n++
	}
	return n
}

// AddForm returns the add-exercise form. It has its own swipe coordinator.
func (e *Editor) AddForm() *Composer { return e.addForm }

// CommitAddForm merges the add-exercise form into the session.
//
// A form with no named exercise is treated as a cancel: it is reset and ok is
// true with nothing added. A form with any blank slot is rejected with its
// flags set and nothing changes. Otherwise the names are appended and the form
// is reset.
func (e *Editor) CommitAddForm() (added int, ok bool) {
	if e.addForm.ValidCount() == 0 {
		e.addForm.Reset()
		return 0, true
	}
	w, ok := e.addForm.Submit()
	if !ok {
		return 0, false
	}
	return e.AddExercises(w.Exercises), true
}

// CloseAddForm discards the add-exercise form.
func (e *Editor) CloseAddForm() {
	e.addForm.Reset()
}

// SetRow returns the swipe row of a set, or nil.
func (e *Editor) SetRow(exerciseID, index int) *DragRow[uint64] {
	ex := e.exercise(exerciseID)
	if ex == nil || index < 0 || index >= len(ex.sets) {
		return nil
	}
	return ex.sets[index].row
}

// OpenSet returns the position of the set row that is swiped open.
func (e *Editor) OpenSet() (exerciseID, index int, ok bool) {
	ref, open := e.swipe.Open()
	if !open {
		return 0, 0, false
	}
	for _, ex := range e.exercises {
		for i, s := range ex.sets {
			if s.ref == ref {
				return ex.ID, i, true
			}
		}
	}
	return 0, 0, false
}

// Pending returns the action awaiting confirmation.
func (e *Editor) Pending() PendingAction { return e.pending }

// RequestDeleteExercise asks to delete the exercise at index (0-based).
// Nothing changes until ConfirmDelete. It is refused while another action
// awaits confirmation.
func (e *Editor) RequestDeleteExercise(index int) bool {
	if e.pending.Awaiting() || index < 0 || index >= len(e.exercises) {
		return false
	}
	e.pending = PendingAction{Kind: ActionDeleteExercise, Target: index}
	return true
}

// ConfirmDelete deletes the exercise named by the pending request, together
// with its sets, and renumbers the rest. The pending state is cleared even if
// the target no longer exists.
func (e *Editor) ConfirmDelete() bool {
	if e.pending.Kind != ActionDeleteExercise {
		return false
	}
	index := e.pending.Target
	e.pending = PendingAction{}

	if index < 0 || index >= len(e.exercises) {
		return false
	}
	for _, s := range e.exercises[index].sets {
		e.swipe.Unregister(s.ref)
	}
	e.exercises, _, _ = RemoveID[entry, struct{}](e.exercises, nil, index+1, setEntryID)
	return true
}

// CancelDelete drops a pending delete request.
func (e *Editor) CancelDelete() {
	if e.pending.Kind == ActionDeleteExercise {
		e.pending = PendingAction{}
	}
}

// RequestSubmit asks to submit the workout. Nothing is sent until
// ConfirmSubmit. It is refused while another action awaits confirmation.
func (e *Editor) RequestSubmit() bool {
	if e.pending.Awaiting() {
		return false
	}
	e.pending = PendingAction{Kind: ActionSubmitWorkout}
	return true
}

// ConfirmSubmit builds the payload and hands it to the submitter. The session
// itself is left as it is. A submitter error is logged and returned.
func (e *Editor) ConfirmSubmit(ctx context.Context) (models.WorkoutPayload, bool, error) {
	if e.pending.Kind != ActionSubmitWorkout {
		return models.WorkoutPayload{}, false, nil
	}
	e.pending = PendingAction{}

	payload := e.Payload()
	if e.submitter == nil {
		e.log.Info("workout ready for submission", "workout", payload.WorkoutName,
			"exercises", len(payload.Exercises), "sets", payload.SetCount())
		return payload, true, nil
	}
	if err := e.submitter.Submit(ctx, payload); err != nil {
		e.log.Error("workout submission failed", "workout", payload.WorkoutName, "error", err)
		return payload, true, err
	}
	return payload, true, nil
}

// CancelSubmit drops a pending submit request.
func (e *Editor) CancelSubmit() {
	if e.pending.Kind == ActionSubmitWorkout {
		e.pending = PendingAction{}
	}
}

// Confirm carries out whatever action is pending.
func (e *Editor) Confirm(ctx context.Context) error {
	switch e.pending.Kind {
	case ActionDeleteExercise:
		e.ConfirmDelete()
		return nil
	case ActionSubmitWorkout:
		_, _, err := e.ConfirmSubmit(ctx)
		return err
	default:
		return ErrNothingPending
	}
}

// Cancel drops whatever action is pending.
func (e *Editor) Cancel() {
	e.pending = PendingAction{}
}

// Payload builds the submission payload. Blank reps or weight are sent as "0".
func (e *Editor) Payload() models.WorkoutPayload {
	p := models.WorkoutPayload{
		WorkoutName: e.title,
		Exercises:   make([]models.PayloadExercise, 0, len(e.exercises)),
	}
	for _, ex := range e.exercises {
		pe := models.PayloadExercise{
			Name: ex.Name,
			Sets: make([]models.PayloadSet, 0, len(ex.sets)),
		}
		for i, s := range ex.sets {
			pe.Sets = append(pe.Sets, models.PayloadSet{
				SetNumber: i + 1,
				Reps:      orZero(s.Reps),
				Weight:    orZero(s.Weight),
			})
		}
		p.Exercises = append(p.Exercises, pe)
	}
	return p
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

func (e *Editor) exercise(id int) *entry {
	if id < 1 || id > len(e.exercises) {
		return nil
	}
	return &e.exercises[id-1]
}

func (e *Editor) appendExercise(name string) {
	e.nextRef++
	e.exercises = Append(e.exercises, entry{Exercise: Exercise{Name: name}, ref: e.nextRef}, setEntryID)
	e.appendSet(&e.exercises[len(e.exercises)-1])
}

func (e *Editor) appendSet(ex *entry) {
	e.nextRef++
	exRef, ref := ex.ref, e.nextRef
	row := NewDragRow(ref, e.swipe,
		func() bool { return e.setCount(exRef) > 1 },
		func() { e.removeSetRef(exRef, ref) },
	)
	ex.sets = append(ex.sets, setEntry{ref: ref, row: row})
}

func (e *Editor) setCount(exRef uint64) int {
	for _, ex := range e.exercises {
		if ex.ref == exRef {
			return len(ex.sets)
		}
	}
	return 0
}

func (e *Editor) removeSetRef(exRef, ref uint64) {
	for _, ex := range e.exercises {
		if ex.ref != exRef {
			continue
		}
		for i, s := range ex.sets {
			if s.ref == ref {
				e.RemoveSet(ex.ID, i)
				return
			}
		}
	}
}
