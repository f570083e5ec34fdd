package session

import (
	"strings"

	"github.com/claude/replog/internal/models"
)

// slot is a composer exercise plus the stable reference its swipe row is
// keyed by. The reference survives renumbering.
type slot struct {
	Exercise
	ref uint64
}

func setSlotID(s *slot, id int) { s.ID = id }

// Composer is the form state used to build a new workout, or a batch of new
// exercises when it has no title.
//
// The exercise list is never empty: a fresh or reset composer holds one blank
// slot, and removing the last slot reseeds a blank one.
type Composer struct {
	requireTitle bool

	title string
	slots []slot
	flags Flags

	nextRef uint64
	swipe   *SwipeCoordinator[uint64]
	rows    map[uint64]*DragRow[uint64]
}

// NewComposer returns a blank create-workout form.
func NewComposer() *Composer {
	return newComposer(true)
}

// NewExerciseForm returns a blank add-exercise form. It has no title field.
func NewExerciseForm() *Composer {
	return newComposer(false)
}

func newComposer(requireTitle bool) *Composer {
	c := &Composer{requireTitle: requireTitle}
	c.Reset()
	return c
}

// Reset restores the initial configuration: an empty title, one blank slot,
// no flags and no open row.
func (c *Composer) Reset() {
	c.title = ""
	c.slots = nil
	c.flags = Flags{}
	c.swipe = NewSwipeCoordinator[uint64]()
	c.rows = make(map[uint64]*DragRow[uint64])
	c.AddExerciseSlot()
}

// Title returns the workout name as typed.
func (c *Composer) Title() string { return c.title }

// SetTitle updates the workout name and clears its flag once it is non-blank.
func (c *Composer) SetTitle(text string) {
	c.title = text
	c.flags.titleChanged(text)
}

// Exercises returns a copy of the exercise slots in order.
func (c *Composer) Exercises() []Exercise {
	out := make([]Exercise, len(c.slots))
	for i, s := range c.slots {
		out[i] = s.Exercise
	}
	return out
}

// Flags returns a copy of the current validation flags.
func (c *Composer) Flags() Flags { return c.flags.clone() }

// ValidCount returns the number of slots with a non-blank name.
func (c *Composer) ValidCount() int {
	n := 0
	for _, s := range c.slots {
		if !blank(s.Name) {
			n++
		}
	}
	return n
}

// AddExerciseSlot appends a blank exercise and returns its id.
func (c *Composer) AddExerciseSlot() int {
	c.nextRef++
	ref := c.nextRef
	c.slots = Append(c.slots, slot{ref: ref}, setSlotID)
	c.rows[ref] = NewDragRow(ref, c.swipe,
		func() bool { return len(c.slots) > 1 },
		func() { c.removeRef(ref) },
	)
	return len(c.slots)
}

// RemoveExerciseSlot removes the exercise numbered id and renumbers the rest.
// Flags follow their exercise. An out-of-range id is ignored.
func (c *Composer) RemoveExerciseSlot(id int) bool {
	if id < 1 || id > len(c.slots) {
		return false
	}
	c.swipe.CloseAll()

	ref := c.slots[id-1].ref
	slots, invalid, _ := RemoveID(c.slots, c.flags.ExerciseInvalid, id, setSlotID)
	c.slots = slots
	c.flags.ExerciseInvalid = invalid

	c.swipe.Unregister(ref)
	delete(c.rows, ref)

	if len(c.slots) == 0 {
		c.AddExerciseSlot()
	}
	return true
}

// UpdateExerciseName sets the name of the exercise numbered id. The flag for
// that exercise clears once the name is non-blank.
func (c *Composer) UpdateExerciseName(id int, text string) bool {
	if id < 1 || id > len(c.slots) {
		return false
	}
	c.slots[id-1].Name = text
	c.flags.exerciseChanged(id, text)
	return true
}

// Fill types title and names into the form, one slot per name, starting at
// the first slot. The form is expected to be freshly reset.
func (c *Composer) Fill(title string, names []string) {
	c.SetTitle(title)
	for i, name := range names {
		id := 1
		if i > 0 {
			id = c.AddExerciseSlot()
		}
		c.UpdateExerciseName(id, name)
	}
}

// Submit validates the whole form. On success it returns the workout with the
// trimmed title and the non-blank exercise names, and resets the form. On
// failure it records the flags and leaves everything else as it was.
func (c *Composer) Submit() (models.Workout, bool) {
	c.flags = Validate(c.title, c.requireTitle, c.Exercises())
	if !c.flags.Valid() {
		return models.Workout{}, false
	}

	w := models.Workout{Title: strings.TrimSpace(c.title)}
	for _, s := range c.slots {
		if !blank(s.Name) {
			w.Exercises = append(w.Exercises, s.Name)
		}
	}
	c.Reset()
	return w, true
}

// Row returns the swipe row of the exercise numbered id, or nil.
func (c *Composer) Row(id int) *DragRow[uint64] {
	if id < 1 || id > len(c.slots) {
		return nil
	}
	return c.rows[c.slots[id-1].ref]
}

// OpenExercise returns the id of the exercise whose row is swiped open.
func (c *Composer) OpenExercise() (int, bool) {
	ref, ok := c.swipe.Open()
	if !ok {
		return 0, false
	}
	for _, s := range c.slots {
		if s.ref == ref {
			return s.ID, true
		}
	}
	return 0, false
}

func (c *Composer) removeRef(ref uint64) {
	for _, s := range c.slots {
		if s.ref == ref {
			c.RemoveExerciseSlot(s.ID)
			return
		}
	}
}
