package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendToEmpty(t *testing.T) {
	got := Append(nil, 7, 100)

	require.Len(t, got, 1)
	assert.Equal(t, 7, got[0])
}

func TestAppendStaysWithinCapacityAndKeepsNewest(t *testing.T) {
	const capacity = 100

	var history []int
	for i := 0; i < 250; i++ {
		history = Append(history, i, capacity)
		require.LessOrEqual(t, len(history), capacity)
	}

	require.Len(t, history, capacity)
	for i, v := range history {
		assert.Equal(t, 150+i, v, "history must hold the last %d appends in arrival order", capacity)
	}
}

func TestAppendDoesNotMutateInput(t *testing.T) {
	old := Append(Append(nil, 1, 3), 2, 3)
	snapshot := make([]int, len(old))
	copy(snapshot, old)

	_ = Append(old, 3, 3)
	_ = Append(old, 4, 2)

	assert.Equal(t, snapshot, old)
}

func TestAppendEvictsOldestFirst(t *testing.T) {
	history := []string{"a", "b", "c"}

	got := Append(history, "d", 3)

	assert.Equal(t, []string{"b", "c", "d"}, got)
}
