package board

import "slices"

// Box is the rendered vertical extent of an item in a column.
type Box struct {
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// DropIndex returns the insertion index for a pointer at pointerY: the first
// item whose midpoint lies below the pointer, or len(boxes) when none does.
func DropIndex(pointerY float64, boxes []Box) int {
	for i, b := range boxes {
		if b.Top+b.Height/2 > pointerY {
			return i
		}
	}
	return len(boxes)
}

// SameListIndex corrects a naive target index for a move within one list,
// where removing the source shifts every later item up by one.
func SameListIndex(from, to int) int {
	if from < to {
		return to - 1
	}
	return to
}

// insertAt inserts v at i, clamping i into [0, len(s)].
func insertAt[T any](s []T, i int, v T) []T {
	i = max(0, min(i, len(s)))
	return slices.Insert(s, i, v)
}

// Reorder moves the element at from so that it lands at the naive target
// index to, in a new slice.
func Reorder[T any](items []T, from, to int) []T {
	if from < 0 || from >= len(items) {
		return slices.Clone(items)
	}
	out := slices.Clone(items)
	v := out[from]
	out = slices.Delete(out, from, from+1)
	return insertAt(out, SameListIndex(from, to), v)
}

// MoveBefore removes the element at dragged and reinserts it at target's
// pre-removal position. The displaced element shifts; it is not swapped.
func MoveBefore[T any](items []T, dragged, target int) []T {
	out := slices.Clone(items)
	if dragged == target || dragged < 0 || dragged >= len(out) {
		return out
	}
	v := out[dragged]
	out = slices.Delete(out, dragged, dragged+1)
	return insertAt(out, target, v)
}
