// Package ordering implements the slice bookkeeping behind drag-and-drop
// reordering: array moves, contiguous order-index assignment, and merging a
// reordered scope back into a mixed-scope collection.
package ordering

import (
	"slices"
	"sort"

	"github.com/yuchou/tripledger/internal/models"
)

// Move returns a copy of s with the element at from relocated to to.
// Elements between the two positions shift by one; everything else keeps
// its relative order. Out-of-range indexes or from == to return s
// unchanged, so a drop onto the element's own position is a no-op.
func Move[S ~[]E, E any](s S, from, to int) S {
	if from == to || from < 0 || to < 0 || from >= len(s) || to >= len(s) {
		return s
	}
	out := slices.Clone(s)
	moved := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, moved)
}

// AssignItemOrder sets each item's OrderIndex to its position, 0-based and
// contiguous.
func AssignItemOrder(items []models.ItineraryItem) {
	for i := range items {
		items[i].OrderIndex = i
	}
}

// AssignExpenseOrder sets each expense's OrderIndex to its position,
// 0-based and contiguous.
func AssignExpenseOrder(expenses []models.Expense) {
	for i := range expenses {
		expenses[i].OrderIndex = i
	}
}

// MergeExpenses replaces elements of all whose IDs appear in reordered with
// their reordered versions, then stably re-sorts the whole collection by
// OrderIndex. Expenses outside the reordered scope are untouched.
//
// OrderIndex is contiguous per date group, not globally unique, so the sort
// interleaves groups; stability guarantees that equal indexes keep their
// relative order and each group stays internally ordered after the caller
// groups by date.
func MergeExpenses(all, reordered []models.Expense) []models.Expense {
	byID := make(map[string]models.Expense, len(reordered))
	for _, e := range reordered {
		byID[e.ID] = e
	}

	merged := make([]models.Expense, len(all))
	for i, e := range all {
		if updated, ok := byID[e.ID]; ok {
			merged[i] = updated
		} else {
			merged[i] = e
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].OrderIndex < merged[j].OrderIndex
	})
	return merged
}
