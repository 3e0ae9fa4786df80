// Package track owns the per-call-site mutable state: identity-change
// counters, recompute counters and the single-slot previous-value holder
// that carries one cycle's dependency snapshot into the next.
//
// Trackers live in an Arena keyed by an opaque Handle. A handle is created
// once per logical call-site and passed back on every cycle; dropping the
// handle destroys the record. Cycles for a single site are strictly
// sequential, but distinct sites may run on different goroutines, so the
// arena index is mutex-guarded.
package track

import (
	"sync"
	"sync/atomic"

	"hookguard/internal/deplist"
	"hookguard/internal/ident"
)

// Handle identifies one logical call-site within an Arena.
type Handle uint32

// NoHandle is the zero Handle; it never names a live tracker.
const NoHandle Handle = 0

// Tracker accumulates statistics for one call-site.
type Tracker struct {
	identityChanges int
	lastIdentity    any
	hasIdentity     bool

	cycles     int
	recomputes int

	prevDeps    deplist.List
	hasPrevDeps bool
}

// Update records the current cycle's tracked identity. The change counter
// increments exactly when the identity differs from the previous cycle's;
// the stored identity is replaced unconditionally.
func (tr *Tracker) Update(current any) (changed bool, count int) {
	if !tr.hasIdentity || !ident.Is(current, tr.lastIdentity) {
		tr.identityChanges++
		changed = true
	}
	tr.lastIdentity = current
	tr.hasIdentity = true
	return changed, tr.identityChanges
}

// BeginCycle advances the cycle counter and returns the new total.
func (tr *Tracker) BeginCycle() int {
	tr.cycles++
	return tr.cycles
}

// Cycles returns the number of cycles observed so far.
func (tr *Tracker) Cycles() int { return tr.cycles }

// CountRecompute increments and returns the recompute counter.
func (tr *Tracker) CountRecompute() int {
	tr.recomputes++
	return tr.recomputes
}

// Recomputes returns the recompute counter.
func (tr *Tracker) Recomputes() int { return tr.recomputes }

// Changes returns the identity-change counter.
func (tr *Tracker) Changes() int { return tr.identityChanges }

// PreviousDeps returns the dependency snapshot stored by the previous
// cycle. ok is false before the first StoreDeps call.
func (tr *Tracker) PreviousDeps() (deps deplist.List, ok bool) {
	return tr.prevDeps, tr.hasPrevDeps
}

// StoreDeps replaces the previous-value slot. Called unconditionally at the
// end of every cycle so that cycle N always observes exactly cycle N-1.
func (tr *Tracker) StoreDeps(deps deplist.List) {
	tr.prevDeps = deps
	tr.hasPrevDeps = true
}

// Reset restores the tracker to its initial state. Test isolation only.
func (tr *Tracker) Reset() {
	*tr = Tracker{}
}

// nextHandle is process-wide so handles stay unique across arenas: the
// deduplication key derived from a handle must never collide between
// call-sites of different units.
var nextHandle atomic.Uint32

// Arena allocates and resolves per-site trackers.
type Arena struct {
	mu       sync.Mutex
	trackers map[Handle]*Tracker
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{trackers: make(map[Handle]*Tracker)}
}

// Bind allocates a tracker and returns its handle.
func (a *Arena) Bind() Handle {
	h := Handle(nextHandle.Add(1))
	a.mu.Lock()
	defer a.mu.Unlock()
	a.trackers[h] = &Tracker{}
	return h
}

// Get resolves a handle to its tracker, or nil for a dropped or unknown
// handle.
func (a *Arena) Get(h Handle) *Tracker {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.trackers[h]
}

// Drop destroys the tracker bound to h. Subsequent Get calls return nil.
func (a *Arena) Drop(h Handle) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.trackers, h)
}

// Len returns the number of live trackers.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.trackers)
}

// Reset drops every tracker. Test isolation only; the handle sequence is
// process-wide and keeps advancing.
func (a *Arena) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.trackers = make(map[Handle]*Tracker)
}
