package hookguard

import (
	"hookguard/internal/config"
	"hookguard/internal/diag"
	"hookguard/internal/trace"
)

// ReplayResult summarises one replayed trace.
type ReplayResult struct {
	Unit   string
	Cycles int
	Sites  int
	Bag    *diag.Bag
}

// Replay feeds a recorded trace back through the detection engine and
// collects the diagnostics it would have produced live. Every replayed run
// gets a private deduplication store, so two replays of one trace agree.
func Replay(tr *trace.Trace, tuning config.Tuning) *ReplayResult {
	bag := diag.NewBag(tuning.MaxDiagnostics)
	u := New(
		WithReporter(diag.BagReporter{Bag: bag}),
		WithStore(diag.NewStore()),
		WithRecomputeThreshold(tuning.RecomputeThreshold),
	)
	defer u.Unmount()

	in := trace.NewInterner()
	sites := make(map[string]*Site)
	for _, c := range tr.Cycles {
		s, ok := sites[c.Site]
		if !ok {
			s = u.Site(c.Site)
			sites[c.Site] = s
		}
		deps := in.Deps(c)
		Memo(s, func() struct{} { return struct{}{} }, deps)
	}

	bag.Sort()
	return &ReplayResult{
		Unit:   tr.Unit,
		Cycles: len(tr.Cycles),
		Sites:  len(sites),
		Bag:    bag,
	}
}
