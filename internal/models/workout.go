package models

// Workout is a committed workout: a title and the ordered exercise names.
type Workout struct {
	Title     string   `json:"title"`
	Exercises []string `json:"exercises"`
}

// WorkoutTemplate is a workout type loaded from the template source.
type WorkoutTemplate struct {
	Name      string   `json:"name"`
	Exercises []string `json:"exercises"`
	Sets      int      `json:"sets"`
	Reps      string   `json:"reps"`
}

// Workout returns the template as a workout to start a session from.
func (t WorkoutTemplate) Workout() Workout {
	exercises := make([]string, len(t.Exercises))
	copy(exercises, t.Exercises)
	return Workout{Title: t.Name, Exercises: exercises}
}

// WorkoutPayload is the submitted form of a finished session.
type WorkoutPayload struct {
	WorkoutName string            `json:"workoutName"`
	Exercises   []PayloadExercise `json:"exercises"`
}

// PayloadExercise is one exercise of a submitted workout.
type PayloadExercise struct {
	Name string       `json:"name"`
	Sets []PayloadSet `json:"sets"`
}

// PayloadSet is one logged set. SetNumber starts at 1.
type PayloadSet struct {
	SetNumber int    `json:"setNumber"`
	Reps      string `json:"reps"`
	Weight    string `json:"weight"`
}

// SetCount returns the number of sets across all exercises.
func (p WorkoutPayload) SetCount() int {
	n := 0
	for _, ex := range p.Exercises {
		n += len(ex.Sets)
	}
	return n
}
