package session

// RowView is the drag state of one row.
type RowView struct {
	Phase         Phase   `json:"phase"`
	Offset        float64 `json:"offset"`
	ArmLevel      float64 `json:"arm_level"`
	DeleteEnabled bool    `json:"delete_enabled"`
}

// SetView is a set with its position and row state.
type SetView struct {
	Number int     `json:"number"`
	Reps   string  `json:"reps"`
	Weight string  `json:"weight"`
	Row    RowView `json:"row"`
}

// ExerciseView is an exercise with its sets.
type ExerciseView struct {
	Exercise
	Sets []SetView `json:"sets"`
}

// FormView is the state of a composer.
type FormView struct {
	Title      string     `json:"title,omitempty"`
	Exercises  []Exercise `json:"exercises"`
	Flags      Flags      `json:"flags"`
	ValidCount int        `json:"valid_count"`
}

// EditorView is a read-only snapshot of an editor, shaped for JSON.
type EditorView struct {
	Title       string         `json:"title"`
	WeightLabel string         `json:"weight_label"`
	Exercises   []ExerciseView `json:"exercises"`
	Pending     PendingAction  `json:"pending"`
	AddForm     FormView       `json:"add_form"`
}

// View returns a snapshot of the composer.
func (c *Composer) View() FormView {
	return FormView{
		Title:      c.title,
		Exercises:  c.Exercises(),
		Flags:      c.Flags(),
		ValidCount: c.ValidCount(),
	}
}

// View returns a snapshot of the editor.
func (e *Editor) View() EditorView {
	v := EditorView{
		Title:       e.title,
		WeightLabel: e.WeightLabel(),
		Exercises:   make([]ExerciseView, 0, len(e.exercises)),
		Pending:     e.pending,
		AddForm:     e.addForm.View(),
	}
	for _, ex := range e.exercises {
		ev := ExerciseView{Exercise: ex.Exercise, Sets: make([]SetView, 0, len(ex.sets))}
		for i, s := range ex.sets {
			ev.Sets = append(ev.Sets, SetView{
				Number: i + 1,
				Reps:   s.Reps,
				Weight: s.Weight,
				Row:    rowView(s.row),
			})
		}
		v.Exercises = append(v.Exercises, ev)
	}
	return v
}

func rowView[K comparable](r *DragRow[K]) RowView {
	if r == nil {
		return RowView{}
	}
	return RowView{
		Phase:         r.Phase(),
		Offset:        r.Offset(),
		ArmLevel:      r.ArmLevel(),
		DeleteEnabled: r.DeleteEnabled(),
	}
}
