package hookguard

import (
	"fmt"

	"hookguard/internal/config"
	"hookguard/internal/deplist"
	"hookguard/internal/diag"
	"hookguard/internal/track"
)

// Site binds one logical call-site within a unit. Create it once per
// binding and pass it back on every cycle; Drop it when the call-site
// ceases to exist.
type Site struct {
	unit   *Unit
	handle track.Handle
	label  string

	recomputeLimit int
	required       bool

	// wrapper slots, touched only from the site's own cycles
	memo     any
	hasMemo  bool
	callback any
	hasCB    bool
}

// SiteOption configures a Site at creation.
type SiteOption func(*Site)

// WithSiteRecomputeThreshold overrides the excessive-recompute limit for
// this site only.
func WithSiteRecomputeThreshold(n int) SiteOption {
	return func(s *Site) { s.recomputeLimit = n }
}

// Required escalates a missing context provider from a warning to an error
// for this site.
func Required() SiteOption {
	return func(s *Site) { s.required = true }
}

// Site creates a call-site binding. An empty label is resolved by the
// unit's resolver (best-effort stack inspection by default).
func (u *Unit) Site(label string, opts ...SiteOption) *Site {
	if label == "" {
		label = resolveLabel(u.resolver)
	}
	s := &Site{
		unit:           u,
		handle:         u.arena.Bind(),
		label:          label,
		recomputeLimit: u.recomputeLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Label returns the site's display label.
func (s *Site) Label() string { return s.label }

// Drop destroys the site's tracker and previous-value slot, and runs any
// outstanding effect cleanup.
func (s *Site) Drop() {
	s.unit.mu.Lock()
	cleanup := s.unit.cleanups[s.handle]
	delete(s.unit.cleanups, s.handle)
	s.unit.mu.Unlock()
	runCleanup(cleanup)
	s.unit.arena.Drop(s.handle)
}

func (s *Site) diagSite() diag.Site {
	return diag.Site{Label: s.label, ID: uint32(s.handle)}
}

func resolveLabel(r func() string) (label string) {
	defer func() {
		if recover() != nil {
			label = "unknown"
		}
	}()
	label = r()
	if label == "" {
		label = "unknown"
	}
	return label
}

// cycleResult is what one observation pass hands back to a wrapper.
type cycleResult struct {
	tracker *track.Tracker
	// changed means the wrapper should recompute: the deps differ from the
	// previous cycle, no list was supplied, this is the first cycle, or
	// detection failed and recomputing is the safe default.
	changed bool
	first   bool
}

// observe runs one invocation cycle of the detection engine for this site:
// diff against the previous snapshot, unstable-reference scan, structural
// reports, and the unconditional previous-value update. warnAbsent selects
// the missing-dependency-list warning for wrappers where an absent list
// defeats the point of the call.
func (s *Site) observe(deps deplist.List, warnAbsent bool) (res cycleResult) {
	// Detection must never crash the host: any panic in the diagnostic
	// path degrades to "recompute, no issue found".
	res.changed = true
	defer func() { _ = recover() }()

	tr := s.unit.arena.Get(s.handle)
	if tr == nil {
		// Dropped site still invoked; keep the wrapper functional.
		return res
	}
	res.tracker = tr
	total := tr.BeginCycle()

	if rec := s.unit.recorder; rec != nil && config.Enabled() {
		rec.RecordCycle(s.label, deps, deps == nil)
	}

	prev, seeded := tr.PreviousDeps()
	// The holder is updated unconditionally whatever branch below is
	// taken: cycle N+1 must see exactly cycle N.
	defer tr.StoreDeps(deps)

	if !seeded {
		res.first = true
		return res
	}

	if deps == nil && prev == nil {
		if warnAbsent && total > 1 {
			diag.ReportWarning(s.unit.reporterOnce(), diag.DepListAbsent, s.diagSite(),
				"no dependency list supplied").
				WithDetail("the value is recreated on every cycle").
				WithRemedy("list the values this call-site depends on").
				Emit()
		}
		return res
	}

	rep := deplist.Diff(deps, prev)
	res.changed = rep.HasChanges

	switch {
	case (deps == nil) != (prev == nil):
		// Re-reported on every recurrence: the caller should see each
		// toggle afresh.
		diag.ReportWarning(s.unit.reporterAlways(), diag.DepListToggled, s.diagSite(),
			"dependency list supplied on some cycles but not others").
			WithDetail(fmt.Sprintf("previous length %s, current length %s",
				lengthLabel(rep.PreviousLength), lengthLabel(rep.CurrentLength))).
			WithRemedy("supply the dependency list on every cycle").
			Emit()
	case rep.LengthChanged:
		diag.ReportWarning(s.unit.reporterAlways(), diag.DepLengthChanged, s.diagSite(),
			"dependency list changed length between cycles").
			WithDetail(fmt.Sprintf("previous length %d, current length %d",
				rep.PreviousLength, rep.CurrentLength)).
			WithRemedy("keep the dependency list the same shape on every cycle").
			Emit()
	}

	if unstable := deplist.FindUnstable(deps, prev); len(unstable) > 0 {
		diag.ReportWarning(s.unit.reporterOnce(), diag.StbUnstableReference, s.diagSite(),
			"dependency is recreated with equal content every cycle").
			WithDetail(fmt.Sprintf("indices %v have new identity but unchanged shallow content", unstable)).
			WithRemedy("hoist the value out of the cycle or memoize it").
			Emit()
	}

	return res
}

func lengthLabel(n int) string {
	if n == deplist.AbsentLength {
		return "absent"
	}
	return fmt.Sprintf("%d", n)
}
