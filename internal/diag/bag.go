package diag

import (
	"sort"
	"sync"

	"fortio.org/safecast"
)

// Bag is a bounded, thread-safe collection of diagnostics. The CLI renders
// a sorted bag; tests assert against its contents.
type Bag struct {
	mu    sync.Mutex
	items []Diagnostic
	max   uint16
}

// NewBag returns a bag that holds at most max diagnostics. Out-of-range
// values fall back to a sane cap.
func NewBag(max int) *Bag {
	capped, err := safecast.Conv[uint16](max)
	if err != nil || capped == 0 {
		capped = 100
	}
	return &Bag{
		items: make([]Diagnostic, 0, capped),
		max:   capped,
	}
}

// Add appends a diagnostic, honouring the limit. Returns false when the bag
// is full.
func (b *Bag) Add(d Diagnostic) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) >= int(b.max) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// HasWarnings reports whether any diagnostic is at least a warning.
func (b *Bag) HasWarnings() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		if b.items[i].Severity >= SevWarning {
			return true
		}
	}
	return false
}

// HasErrors reports whether any diagnostic is an error.
func (b *Bag) HasErrors() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// Items returns a copy of the collected diagnostics.
func (b *Bag) Items() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Diagnostic, len(b.items))
	copy(out, b.items)
	return out
}

// Sort orders diagnostics by site label, site id, code, severity (desc),
// then message, for stable deterministic output.
func (b *Bag) Sort() {
	b.mu.Lock()
	defer b.mu.Unlock()
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Site.Label != dj.Site.Label {
			return di.Site.Label < dj.Site.Label
		}
		if di.Site.ID != dj.Site.ID {
			return di.Site.ID < dj.Site.ID
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Message < dj.Message
	})
}
