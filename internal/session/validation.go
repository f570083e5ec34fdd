package session

import "strings"

// Flags records which fields currently fail the non-empty check.
// Only failing exercises have an entry in ExerciseInvalid.
type Flags struct {
	TitleInvalid    bool         `json:"title_invalid"`
	ExerciseInvalid map[int]bool `json:"exercise_invalid,omitempty"`
}

// Validate derives the flags for a form. The title is only checked when
// requireTitle is set; the add-exercise form has no title.
func Validate(title string, requireTitle bool, exercises []Exercise) Flags {
	f := Flags{TitleInvalid: requireTitle && blank(title)}
	for _, ex := range exercises {
		if blank(ex.Name) {
			if f.ExerciseInvalid == nil {
				f.ExerciseInvalid = make(map[int]bool)
			}
			f.ExerciseInvalid[ex.ID] = true
		}
	}
	return f
}

// Valid reports whether no field is flagged.
func (f Flags) Valid() bool {
	return !f.TitleInvalid && len(f.ExerciseInvalid) == 0
}

// Exercise reports whether the exercise numbered id is flagged.
func (f Flags) Exercise(id int) bool {
	return f.ExerciseInvalid[id]
}

func (f Flags) clone() Flags {
	out := Flags{TitleInvalid: f.TitleInvalid}
	if len(f.ExerciseInvalid) > 0 {
		out.ExerciseInvalid = make(map[int]bool, len(f.ExerciseInvalid))
		for id, v := range f.ExerciseInvalid {
			out.ExerciseInvalid[id] = v
		}
	}
	return out
}

// titleChanged clears the title flag once text is non-blank. A flag is only
// ever raised by a full Validate pass.
func (f *Flags) titleChanged(text string) {
	if !blank(text) {
		f.TitleInvalid = false
	}
}

func (f *Flags) exerciseChanged(id int, text string) {
	if !blank(text) {
		delete(f.ExerciseInvalid, id)
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
