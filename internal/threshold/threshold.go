// Package threshold holds the pure classification rules that decide when
// accumulated per-site counters amount to a reportable problem.
//
// The two rules are deliberately distinct: callback identity churn and
// memo recomputation encode different tolerances and are not unified.
package threshold

const (
	// changeWarmup is the number of initial cycles exempt from the
	// every-cycle rule; first mount plus one re-render is normal churn.
	changeWarmup = 2

	// changeCap is the absolute identity-change count above which the
	// change rule fires regardless of cycle count.
	changeCap = 5

	// DefaultRecompute is the recomputation threshold applied when a site
	// does not configure its own.
	DefaultRecompute = 10
)

// ExcessiveChange reports whether a tracked identity has changed too often:
// either on every one of more than changeWarmup cycles, or more than
// changeCap times in total.
func ExcessiveChange(changeCount, totalCycles int) bool {
	if totalCycles > changeWarmup && changeCount == totalCycles {
		return true
	}
	return changeCount > changeCap
}

// ExcessiveRecompute reports whether a memoized computation is re-executing
// on literally every cycle, and has done so more than limit times. A limit
// of zero or less selects DefaultRecompute.
func ExcessiveRecompute(recomputeCount, totalCycles, limit int) bool {
	if limit <= 0 {
		limit = DefaultRecompute
	}
	return recomputeCount > limit && recomputeCount == totalCycles
}
