package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestViewJSONRoundTrip verifies enum fields encode by name and decode back.
func TestViewJSONRoundTrip(t *testing.T) {
	e := NewEditor(pushWorkout())
	e.RequestDeleteExercise(1)
	e.SetRow(1, 0).Release(60)

	data, err := json.Marshal(e.View())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"delete_exercise"`)
	assert.Contains(t, string(data), `"phase":"settling"`)

	var got EditorView
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, PendingAction{Kind: ActionDeleteExercise, Target: 1}, got.Pending)
	assert.Equal(t, PhaseSettling, got.Exercises[0].Sets[0].Row.Phase)

	var k ActionKind
	assert.Error(t, k.UnmarshalText([]byte("explode")))
	var p Phase
	assert.Error(t, p.UnmarshalText([]byte("open")))
}
