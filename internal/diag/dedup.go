package diag

import "sync"

// Key deduplicates diagnostics: one entry per (call-site, issue kind).
type Key struct {
	Site uint32
	Code Code
}

// Store is an owned set of already-emitted keys. It grows monotonically
// until Clear and never expires entries. Mutex-guarded: units sharing a
// store may cycle on different goroutines, and check-then-insert is a race
// otherwise.
type Store struct {
	mu   sync.Mutex
	seen map[Key]struct{}
}

// NewStore returns an empty deduplication store.
func NewStore() *Store {
	return &Store{seen: make(map[Key]struct{})}
}

// InsertIfAbsent records the key and reports whether it was new.
func (s *Store) InsertIfAbsent(k Key) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[k]; ok {
		return false
	}
	s.seen[k] = struct{}{}
	return true
}

// Len returns the number of recorded keys.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

// Clear empties the store. Test isolation only; not reachable from normal
// call paths.
func (s *Store) Clear() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = make(map[Key]struct{})
}

// DedupReporter forwards each (site, code) pair to the wrapped reporter at
// most once per store lifetime.
type DedupReporter struct {
	next  Reporter
	store *Store
}

// NewDedupReporter returns a Reporter that filters repeats through store,
// forwarding first occurrences to next. A nil store allocates a private one.
func NewDedupReporter(next Reporter, store *Store) *DedupReporter {
	if store == nil {
		store = NewStore()
	}
	return &DedupReporter{next: next, store: store}
}

func (r *DedupReporter) Report(d Diagnostic) {
	if r == nil {
		return
	}
	if !r.store.InsertIfAbsent(Key{Site: d.Site.ID, Code: d.Code}) {
		return
	}
	if r.next != nil {
		r.next.Report(d)
	}
}

// Store exposes the underlying deduplication store.
func (r *DedupReporter) Store() *Store {
	if r == nil {
		return nil
	}
	return r.store
}
