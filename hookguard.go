// Package hookguard wraps hook-style state and effect primitives with
// development-time misuse detection.
//
// A host framework creates one Unit per owning component instance and one
// Site per logical call-site inside it. Every render cycle the wrappers
// (Memo, Callback, Effect, State, UseContext) hand the current dependency
// list to the engine, which compares it against the previous cycle's
// snapshot, classifies the change, accumulates per-site statistics and
// emits deduplicated diagnostics to a sink. Detection is heuristic and
// side-channel only: wrappers never change values, never block, and a
// failure anywhere in the diagnostic path degrades to silence rather than
// crashing the host.
//
// The global switch (SetEnabled, or the HOOKGUARD environment variable)
// gates emission and trace recording; pure comparisons are not gated and
// the wrappers keep their memoization semantics either way.
package hookguard

import (
	"io"
	"sync"
	"sync/atomic"

	"hookguard/internal/callsite"
	"hookguard/internal/config"
	"hookguard/internal/diag"
	"hookguard/internal/diagfmt"
	"hookguard/internal/threshold"
	"hookguard/internal/trace"
	"hookguard/internal/track"
)

// Enabled reports whether diagnostics are globally enabled.
func Enabled() bool { return config.Enabled() }

// SetEnabled flips the global diagnostics switch; it takes effect on the
// very next cycle.
func SetEnabled(on bool) { config.SetEnabled(on) }

// DefaultRecomputeThreshold is the excessive-recompute limit applied when a
// site does not configure its own.
const DefaultRecomputeThreshold = threshold.DefaultRecompute

// Unit is one owning component instance. Cycles for a given unit are
// strictly sequential; distinct units may run on different goroutines and
// share nothing but the deduplication store.
type Unit struct {
	arena    *track.Arena
	store    *diag.Store
	sink     diag.Reporter
	once     diag.Reporter
	resolver callsite.Resolver
	recorder *trace.Recorder

	recomputeLimit int

	mounted atomic.Bool

	mu       sync.Mutex
	cleanups map[track.Handle]func()
}

// Option configures a Unit.
type Option func(*unitOptions)

type unitOptions struct {
	reporter       diag.Reporter
	writer         io.Writer
	color          bool
	store          *diag.Store
	resolver       callsite.Resolver
	recorder       *trace.Recorder
	recomputeLimit int
}

// WithReporter routes diagnostics to a custom reporter instead of the
// console sink.
func WithReporter(r diag.Reporter) Option {
	return func(o *unitOptions) { o.reporter = r }
}

// WithWriter selects the console sink's writer (default stderr).
func WithWriter(w io.Writer) Option {
	return func(o *unitOptions) { o.writer = w }
}

// WithColor enables colored console output.
func WithColor(on bool) Option {
	return func(o *unitOptions) { o.color = on }
}

// WithStore shares a deduplication store across units so each distinct
// issue is reported once per process, not once per unit.
func WithStore(s *diag.Store) Option {
	return func(o *unitOptions) { o.store = s }
}

// WithResolver replaces the stack-based call-site label resolver.
func WithResolver(r callsite.Resolver) Option {
	return func(o *unitOptions) { o.resolver = r }
}

// WithRecorder attaches a trace recorder; every cycle's dependency
// snapshot is captured for offline replay.
func WithRecorder(r *trace.Recorder) Option {
	return func(o *unitOptions) { o.recorder = r }
}

// WithRecomputeThreshold sets the unit-wide excessive-recompute limit.
// Zero keeps the default; sites may still override per call-site.
func WithRecomputeThreshold(n int) Option {
	return func(o *unitOptions) { o.recomputeLimit = n }
}

// sharedStore deduplicates across units that do not bring their own store:
// one report per distinct issue per process lifetime.
var sharedStore = diag.NewStore()

// New creates a mounted unit.
func New(opts ...Option) *Unit {
	var o unitOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.store == nil {
		o.store = sharedStore
	}
	if o.reporter == nil {
		fmtOpts := diagfmt.DefaultOptions()
		fmtOpts.Color = o.color
		o.reporter = diagfmt.NewConsole(o.writer, fmtOpts)
	}
	if o.resolver == nil {
		o.resolver = func() string { return callsite.Resolve(2) }
	}
	u := &Unit{
		arena:          track.NewArena(),
		store:          o.store,
		sink:           o.reporter,
		once:           diag.NewDedupReporter(o.reporter, o.store),
		resolver:       o.resolver,
		recorder:       o.recorder,
		recomputeLimit: o.recomputeLimit,
		cleanups:       make(map[track.Handle]func()),
	}
	u.mounted.Store(true)
	return u
}

// Mounted reports whether the unit is still mounted.
func (u *Unit) Mounted() bool { return u.mounted.Load() }

// Unmount marks the unit unmounted and runs outstanding effect cleanups.
// State setters observed after this point are reported and skipped.
func (u *Unit) Unmount() {
	if !u.mounted.CompareAndSwap(true, false) {
		return
	}
	u.mu.Lock()
	cleanups := u.cleanups
	u.cleanups = make(map[track.Handle]func())
	u.mu.Unlock()
	for _, cleanup := range cleanups {
		runCleanup(cleanup)
	}
}

// Reset clears the unit's trackers and its deduplication store. Test
// isolation only; never called from production paths.
func (u *Unit) Reset() {
	u.arena.Reset()
	u.store.Clear()
}

// reporter returns the dedup-filtered reporter, or a nop when diagnostics
// are globally disabled. The switch is consulted on every call, never
// cached.
func (u *Unit) reporterOnce() diag.Reporter {
	if !config.Enabled() {
		return diag.NopReporter{}
	}
	return u.once
}

// reporterAlways bypasses deduplication for findings that are re-reported
// on every recurrence.
func (u *Unit) reporterAlways() diag.Reporter {
	if !config.Enabled() {
		return diag.NopReporter{}
	}
	return u.sink
}

func (u *Unit) setCleanup(h track.Handle, cleanup func()) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if cleanup == nil {
		delete(u.cleanups, h)
		return
	}
	u.cleanups[h] = cleanup
}

func runCleanup(cleanup func()) {
	if cleanup == nil {
		return
	}
	cleanup()
}
