package session

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(exs []Exercise) []int {
	out := make([]int, len(exs))
	for i, e := range exs {
		out[i] = e.ID
	}
	return out
}

// TestRemoveIDRenumbers verifies survivors keep their order and are
// renumbered without gaps.
func TestRemoveIDRenumbers(t *testing.T) {
	items := []Exercise{{1, "a"}, {2, "b"}, {3, "c"}, {4, "d"}}

	out, _, ok := RemoveID[Exercise, bool](items, nil, 2, setExerciseID)
	require.True(t, ok)
	assert.Equal(t, []Exercise{{1, "a"}, {2, "c"}, {3, "d"}}, out)
}

// TestRemoveIDCarriesAuxByIdentity verifies that auxiliary state follows the
// item it was recorded for even when another item has the same name.
func TestRemoveIDCarriesAuxByIdentity(t *testing.T) {
	items := []Exercise{{1, "Squat"}, {2, "Squat"}, {3, ""}}
	aux := map[int]bool{1: true, 3: true}

	out, remapped, ok := RemoveID(items, aux, 1, setExerciseID)
	require.True(t, ok)
	assert.Equal(t, []Exercise{{1, "Squat"}, {2, ""}}, out)
	assert.Equal(t, map[int]bool{2: true}, remapped)
}

// TestRemoveIDOutOfRange verifies an unknown id leaves the inputs alone.
func TestRemoveIDOutOfRange(t *testing.T) {
	items := []Exercise{{1, "a"}}
	aux := map[int]bool{1: true}

	for _, id := range []int{0, 2, -1} {
		out, gotAux, ok := RemoveID(items, aux, id, setExerciseID)
		assert.False(t, ok, "id %d", id)
		assert.Equal(t, items, out)
		assert.Equal(t, aux, gotAux)
	}
}

// TestAppendAssignsNextID verifies appended items get N+1.
func TestAppendAssignsNextID(t *testing.T) {
	var items []Exercise
	items = Append(items, Exercise{Name: "a"}, setExerciseID)
	items = Append(items, Exercise{Name: "b", ID: 99}, setExerciseID)
	assert.Equal(t, []int{1, 2}, ids(items))
}

// TestContiguityUnderRandomEdits applies a long random sequence of appends and
// removals and checks the identifiers after every step.
func TestContiguityUnderRandomEdits(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var items []Exercise
	for step := 0; step < 500; step++ {
		if len(items) == 0 || rng.Intn(3) > 0 {
			items = Append(items, Exercise{}, setExerciseID)
		} else {
			items, _, _ = RemoveID[Exercise, bool](items, nil, 1+rng.Intn(len(items)), setExerciseID)
		}
		require.True(t, Contiguous(ids(items)), "step %d: ids %v", step, ids(items))
	}
}

// TestContiguous covers the helper itself.
func TestContiguous(t *testing.T) {
	assert.True(t, Contiguous(nil))
	assert.True(t, Contiguous([]int{1, 2, 3}))
	assert.False(t, Contiguous([]int{1, 3}))
	assert.False(t, Contiguous([]int{2, 1}))
	assert.False(t, Contiguous([]int{1, 1}))
}
