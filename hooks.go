package hookguard

import (
	"errors"
	"fmt"
	"sync"

	"hookguard/internal/deplist"
	"hookguard/internal/diag"
	"hookguard/internal/threshold"
)

// ErrNoProvider is returned by UseContext on a Required site when the
// context has no provider.
var ErrNoProvider = errors.New("context consumed without a provider")

// Deps builds an explicit dependency list. Pass nil instead to mean "no
// list supplied"; Deps() with no arguments is an empty list, which is a
// different thing.
func Deps(vals ...any) []any {
	if vals == nil {
		return []any{}
	}
	return vals
}

// Memo returns the memoized result of compute, re-executing it only when
// the dependency list changed since the previous cycle (or on every cycle
// when deps is nil). Call once per cycle.
func Memo[T any](s *Site, compute func() T, deps []any) T {
	res := s.observe(deplist.List(deps), true)
	if res.changed || !s.hasMemo {
		s.memo = compute()
		s.hasMemo = true
		s.noteRecompute(res)
	}
	v, ok := s.memo.(T)
	if !ok {
		// Shared site between wrappers of different types; recompute
		// rather than fail the host.
		v = compute()
		s.memo = v
	}
	return v
}

// Callback memoizes fn by its dependency list and tracks how often the
// returned identity changes across cycles. Call once per cycle.
func Callback[T any](s *Site, fn T, deps []any) T {
	res := s.observe(deplist.List(deps), true)
	if res.changed || !s.hasCB {
		s.callback = fn
		s.hasCB = true
	}
	stored, ok := s.callback.(T)
	if !ok {
		s.callback = fn
		stored = fn
	}
	s.noteIdentity(res, stored)
	return stored
}

// Effect schedules run whenever the dependency list changed since the
// previous cycle (always on the first cycle, and on every cycle when deps
// is nil). run may return a cleanup, invoked before the next run and at
// unit unmount. Call once per cycle.
func Effect(s *Site, run func() func(), deps []any) {
	res := s.observe(deplist.List(deps), false)
	if !res.changed && !res.first {
		return
	}
	s.unit.mu.Lock()
	prev := s.unit.cleanups[s.handle]
	delete(s.unit.cleanups, s.handle)
	s.unit.mu.Unlock()
	runCleanup(prev)

	cleanup := run()
	if cleanup != nil && s.unit.Mounted() {
		s.unit.setCleanup(s.handle, cleanup)
	}
}

// noteRecompute counts one re-execution and reports when the computation
// is re-running on literally every cycle.
func (s *Site) noteRecompute(res cycleResult) {
	defer func() { _ = recover() }()
	if res.tracker == nil {
		return
	}
	n := res.tracker.CountRecompute()
	if threshold.ExcessiveRecompute(n, res.tracker.Cycles(), s.recomputeLimit) {
		diag.ReportWarning(s.unit.reporterOnce(), diag.FrqExcessiveRecompute, s.diagSite(),
			"memoized computation re-executes on every cycle").
			WithDetail(fmt.Sprintf("%d recomputations in %d cycles", n, res.tracker.Cycles())).
			WithRemedy("stabilize the dependency list so memoization can take hold").
			Emit()
	}
}

// noteIdentity feeds the returned value's identity into the per-site
// statistics and reports excessive churn.
func (s *Site) noteIdentity(res cycleResult, v any) {
	defer func() { _ = recover() }()
	if res.tracker == nil {
		return
	}
	_, count := res.tracker.Update(v)
	if threshold.ExcessiveChange(count, res.tracker.Cycles()) {
		diag.ReportWarning(s.unit.reporterOnce(), diag.FrqExcessiveChange, s.diagSite(),
			"tracked value changes identity on every cycle").
			WithDetail(fmt.Sprintf("%d identity changes in %d cycles", count, res.tracker.Cycles())).
			WithRemedy("memoize the value or move it out of the cycle").
			Emit()
	}
}

// stateCell holds one State slot.
type stateCell[T any] struct {
	mu    sync.Mutex
	value T
}

// State creates a state slot on the unit and returns a getter and setter.
// A set observed after the unit unmounted is reported once and skipped;
// setters are safe to call from other goroutines.
func State[T any](u *Unit, initial T) (get func() T, set func(T)) {
	s := u.Site("")
	cell := &stateCell[T]{value: initial}
	get = func() T {
		cell.mu.Lock()
		defer cell.mu.Unlock()
		return cell.value
	}
	set = func(v T) {
		if !u.Mounted() {
			diag.ReportWarning(u.reporterOnce(), diag.LifUpdateAfterUnmount, s.diagSite(),
				"state update after unit unmounted").
				WithDetail("the update was skipped").
				WithRemedy("cancel or guard deferred updates when the unit unmounts").
				Emit()
			return
		}
		cell.mu.Lock()
		cell.value = v
		cell.mu.Unlock()
	}
	return get, set
}

// Context carries a value provided somewhere up the host's composition
// tree.
type Context[T any] struct {
	mu       sync.Mutex
	value    T
	provided bool
}

// NewContext returns an unprovided context.
func NewContext[T any]() *Context[T] {
	return &Context[T]{}
}

// Provide sets the context value.
func (c *Context[T]) Provide(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = v
	c.provided = true
}

// Clear removes the provided value.
func (c *Context[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	c.value = zero
	c.provided = false
}

// UseContext reads the context at a site. Without a provider it warns once
// and returns the zero value; on a Required site it returns ErrNoProvider
// instead of warning. This is the single opt-in escalation in the engine;
// default is warn-only.
func UseContext[T any](s *Site, c *Context[T]) (T, error) {
	c.mu.Lock()
	v, provided := c.value, c.provided
	c.mu.Unlock()
	if provided {
		return v, nil
	}
	var zero T
	if s.required {
		return zero, fmt.Errorf("%s: %w", s.label, ErrNoProvider)
	}
	diag.ReportWarning(s.unit.reporterOnce(), diag.CtxMissingProvider, s.diagSite(),
		"context consumed without a provider").
		WithRemedy("provide the context value before the first cycle, or mark the site Required to fail fast").
		Emit()
	return zero, nil
}
