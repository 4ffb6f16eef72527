package board

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func boxes(n int) []Box {
	out := make([]Box, n)
	for i := range out {
		out[i] = Box{Top: float64(i * 40), Height: 40}
	}
	return out
}

func TestDropIndex(t *testing.T) {
	items := boxes(4) // midpoints 20, 60, 100, 140

	require.Equal(t, 0, DropIndex(5, items))
	require.Equal(t, 1, DropIndex(20, items))
	require.Equal(t, 2, DropIndex(61, items))
	require.Equal(t, 4, DropIndex(500, items))
	require.Equal(t, 0, DropIndex(10, nil))
}

func TestSameListIndex(t *testing.T) {
	require.Equal(t, 3, SameListIndex(2, 4))
	require.Equal(t, 1, SameListIndex(3, 1))
	require.Equal(t, 2, SameListIndex(2, 2))
}

func TestReorder_SameListCorrection(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	got := Reorder(items, 2, 4)
	require.Equal(t, []string{"a", "b", "d", "c", "e"}, got)
	require.Equal(t, "c", got[3])
	require.Equal(t, []string{"a", "b", "c", "d", "e"}, items)

	require.Equal(t, []string{"c", "a", "b", "d", "e"}, Reorder(items, 2, 0))
	require.Equal(t, []string{"a", "b", "d", "e", "c"}, Reorder(items, 2, 5))
	require.Equal(t, []string{"a", "b", "d", "e", "c"}, Reorder(items, 2, 99))
}

func TestMoveBefore_Displaces(t *testing.T) {
	cols := []string{"todo", "doing", "review", "done"}

	require.Equal(t, []string{"doing", "review", "todo", "done"}, MoveBefore(cols, 0, 2))
	require.Equal(t, []string{"done", "todo", "doing", "review"}, MoveBefore(cols, 3, 0))
	require.Equal(t, cols, MoveBefore(cols, 1, 1))
}

func TestTaskIDs_MonotonicAndReadable(t *testing.T) {
	var g taskIDs
	at := time.Unix(1_700_000_000, 0)

	first := g.next("Fix Login  Bug!", at)
	second := g.next("Fix Login  Bug!", at)
	require.Equal(t, "fix-login-bug-1700000000000000000", first)
	require.Equal(t, "fix-login-bug-1700000000000000001", second)
	require.Equal(t, "task-1700000000000000002", g.next("!!!", at))
}
