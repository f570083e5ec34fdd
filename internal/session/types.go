// Package session is the in-memory workout composition and session editing
// engine.
//
// A Composer builds a new workout (or a batch of exercises) from form state.
// An Editor owns a running session: its exercises, each exercise's sets, the
// swipe state of the set rows and the confirmation gate for destructive or
// final actions. Both keep exercise identifiers contiguous (1..N) across every
// insert and delete.
//
// Nothing in this package locks. Each Composer and Editor must be driven from
// one goroutine at a time; Registry serializes access for concurrent hosts.
package session

import (
	"fmt"
	"strings"
)

// Exercise is a numbered exercise slot. ID is positional and changes when an
// earlier exercise in the same list is removed.
type Exercise struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Set is one logged set. Both fields are free numeric text; nothing here
// checks that they parse.
type Set struct {
	Reps   string `json:"reps"`
	Weight string `json:"weight"`
}

// Field names an editable Set field.
type Field int

const (
	FieldReps Field = iota
	FieldWeight
)

func (f Field) String() string {
	switch f {
	case FieldReps:
		return "reps"
	case FieldWeight:
		return "weight"
	default:
		return fmt.Sprintf("Field(%d)", int(f))
	}
}

// ParseField maps "reps" or "weight" to a Field.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reps":
		return FieldReps, nil
	case "weight":
		return FieldWeight, nil
	}
	return 0, fmt.Errorf("unknown set field %q", s)
}

func (s Set) with(f Field, value string) Set {
	switch f {
	case FieldReps:
		s.Reps = value
	case FieldWeight:
		s.Weight = value
	}
	return s
}

func setExerciseID(e *Exercise, id int) { e.ID = id }
