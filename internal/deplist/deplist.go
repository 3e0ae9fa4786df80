// Package deplist compares successive dependency lists and classifies how
// they changed between two invocation cycles.
//
// A List is an ordered snapshot of dependency values taken once per cycle.
// A nil List means no list was supplied at all, which is a different
// situation from an explicitly empty list: the differ treats absence as a
// length change against any present list, and FindUnstable refuses to run
// without both sides present.
package deplist

import (
	"hookguard/internal/ident"
)

// List is one cycle's dependency snapshot. nil means absent.
type List []any

// AbsentLength is reported for the length of an absent list.
const AbsentLength = -1

// Report describes the difference between two dependency lists.
// HasChanges is true exactly when LengthChanged is true or ChangedIndices is
// non-empty.
type Report struct {
	HasChanges     bool
	LengthChanged  bool
	ChangedIndices []int
	PreviousLength int
	CurrentLength  int
}

// Diff compares the current cycle's list against the previous cycle's.
// Either side may be absent. When both are present, indices are walked up to
// the longer length; an out-of-range position never equals an in-range
// value. Pure and deterministic, O(max length).
func Diff(current, previous List) Report {
	switch {
	case current == nil && previous == nil:
		return Report{PreviousLength: AbsentLength, CurrentLength: AbsentLength}
	case current == nil || previous == nil:
		// Length mismatch dominates: per-index comparison is meaningless
		// when one side is absent.
		return Report{
			HasChanges:     true,
			LengthChanged:  true,
			PreviousLength: lengthOf(previous),
			CurrentLength:  lengthOf(current),
		}
	}

	r := Report{
		LengthChanged:  len(current) != len(previous),
		PreviousLength: len(previous),
		CurrentLength:  len(current),
	}
	n := max(len(current), len(previous))
	for i := 0; i < n; i++ {
		if i >= len(current) || i >= len(previous) {
			r.ChangedIndices = append(r.ChangedIndices, i)
			continue
		}
		if !ident.Is(current[i], previous[i]) {
			r.ChangedIndices = append(r.ChangedIndices, i)
		}
	}
	r.HasChanges = r.LengthChanged || len(r.ChangedIndices) > 0
	return r
}

// FindUnstable returns the indices of current whose value has a new identity
// but is shallow-equal to the previous cycle's value: a recreated but
// content-equivalent object that defeats memoization. Both lists must be
// present; otherwise the result is empty.
func FindUnstable(current, previous List) []int {
	if current == nil || previous == nil {
		return nil
	}
	var unstable []int
	for i, cur := range current {
		if i >= len(previous) {
			break
		}
		prev := previous[i]
		if ident.Is(cur, prev) {
			continue
		}
		if !ident.IsComposite(cur) || !ident.IsComposite(prev) {
			continue
		}
		if ident.ShallowEqual(cur, prev) {
			unstable = append(unstable, i)
		}
	}
	return unstable
}

func lengthOf(l List) int {
	if l == nil {
		return AbsentLength
	}
	return len(l)
}
