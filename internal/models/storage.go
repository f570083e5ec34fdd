package models

import (
	"time"

	"github.com/google/uuid"
)

// LoggedWorkoutRow is a row for the logged_workouts table.
type LoggedWorkoutRow struct {
	ID          uuid.UUID `json:"id"`
	UserID      int       `json:"user_id"`
	Name        string    `json:"name"`
	SubmittedAt time.Time `json:"submitted_at"`
	WeightUnit  string    `json:"weight_unit"`
	SetCount    int       `json:"set_count"`
}

// LoggedSetRow is a row for the logged_sets table. Reps and weight are kept
// as the text the user entered.
type LoggedSetRow struct {
	WorkoutID      uuid.UUID `json:"workout_id"`
	UserID         int       `json:"user_id"`
	ExerciseNumber int       `json:"exercise_number"`
	ExerciseName   string    `json:"exercise_name"`
	SetNumber      int       `json:"set_number"`
	Reps           string    `json:"reps"`
	Weight         string    `json:"weight"`
}
