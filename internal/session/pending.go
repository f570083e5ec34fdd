package session

import "fmt"

// ActionKind names an action waiting for confirmation.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionDeleteExercise
	ActionSubmitWorkout
)

func (k ActionKind) String() string {
	switch k {
	case ActionNone:
		return "none"
	case ActionDeleteExercise:
		return "delete_exercise"
	case ActionSubmitWorkout:
		return "submit_workout"
	default:
		return fmt.Sprintf("ActionKind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name.
func (k ActionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *ActionKind) UnmarshalText(text []byte) error {
	for c := ActionNone; c <= ActionSubmitWorkout; c++ {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown action %q", text)
}

// PendingAction is the action a confirmation prompt is asking about.
// Target is the exercise index for ActionDeleteExercise and unused otherwise.
// The zero value means nothing is pending.
type PendingAction struct {
	Kind   ActionKind `json:"kind"`
	Target int        `json:"target"`
}

// Awaiting reports whether a confirmation is outstanding.
func (p PendingAction) Awaiting() bool {
	return p.Kind != ActionNone
}
