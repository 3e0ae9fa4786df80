// Package trace records dependency-list snapshots cycle by cycle so a run
// can be replayed through the detection engine offline.
//
// Live values do not survive serialisation, so a trace stores identity
// tokens instead: composite values get a ref that is stable for the
// lifetime of the object, plus a shallow rendering of their immediate
// content. Replay interns one object per ref, which round-trips both
// identity and shallow-equality semantics: the replayed run produces the
// same diagnostics as the live one.
package trace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"hookguard/internal/ident"
)

// SchemaVersion increments when the trace format changes.
const SchemaVersion uint16 = 1

// ErrSchemaMismatch indicates a trace written by an incompatible version.
var ErrSchemaMismatch = errors.New("trace schema mismatch")

// Value is one dependency position in one cycle.
type Value struct {
	// Ref is the identity token of a composite value; empty for
	// primitives.
	Ref string `msgpack:"ref,omitempty"`
	// Prim is the rendered primitive payload; nil for composites.
	Prim *string `msgpack:"prim,omitempty"`
	// Fields is the shallow content of a composite: key to value token.
	Fields map[string]string `msgpack:"fields,omitempty"`
}

// Cycle is one invocation cycle of one call-site.
type Cycle struct {
	Site   string  `msgpack:"site"`
	Absent bool    `msgpack:"absent"`
	Deps   []Value `msgpack:"deps"`
}

// Trace is a whole recorded run of one owning unit.
type Trace struct {
	Schema uint16  `msgpack:"schema"`
	Unit   string  `msgpack:"unit"`
	Cycles []Cycle `msgpack:"cycles"`
}

// Recorder accumulates cycles from a live unit.
type Recorder struct {
	mu     sync.Mutex
	unit   string
	cycles []Cycle

	// identity table: index is the ref ordinal
	refs []any
}

// NewRecorder returns a recorder for the named unit.
func NewRecorder(unit string) *Recorder {
	return &Recorder{unit: unit}
}

// RecordCycle appends one cycle's snapshot. absent marks a cycle that
// supplied no dependency list at all.
func (r *Recorder) RecordCycle(site string, deps []any, absent bool) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c := Cycle{Site: site, Absent: absent}
	if !absent {
		c.Deps = make([]Value, 0, len(deps))
		for _, d := range deps {
			c.Deps = append(c.Deps, r.valueFor(d))
		}
	}
	r.cycles = append(r.cycles, c)
}

// Snapshot returns the trace recorded so far.
func (r *Recorder) Snapshot() *Trace {
	if r == nil {
		return &Trace{Schema: SchemaVersion}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cycles := make([]Cycle, len(r.cycles))
	copy(cycles, r.cycles)
	return &Trace{Schema: SchemaVersion, Unit: r.unit, Cycles: cycles}
}

func (r *Recorder) valueFor(v any) Value {
	if !ident.IsComposite(v) {
		p := renderPrim(v)
		return Value{Prim: &p}
	}
	return Value{Ref: r.refFor(v), Fields: ident.ShallowFields(v, r.token)}
}

// refFor assigns a stable ordinal token per distinct identity. Linear scan
// over the identity table; trace recording is a dev-time path.
func (r *Recorder) refFor(v any) string {
	for i, known := range r.refs {
		if ident.Is(known, v) {
			return fmt.Sprintf("o%d", i)
		}
	}
	r.refs = append(r.refs, v)
	return fmt.Sprintf("o%d", len(r.refs)-1)
}

func (r *Recorder) token(v any) string {
	if ident.IsComposite(v) {
		return "r:" + r.refFor(v)
	}
	return "p:" + renderPrim(v)
}

func renderPrim(v any) string {
	return fmt.Sprintf("%T:%v", v, v)
}

// Save writes the recorded trace atomically (temp file plus rename).
func (r *Recorder) Save(path string) error {
	return Save(path, r.Snapshot())
}

// Save serialises a trace to path, replacing any existing file atomically.
func Save(path string, tr *Trace) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-trace-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(tr); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// Load reads and validates a trace file.
func Load(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var tr Trace
	if err := msgpack.NewDecoder(f).Decode(&tr); err != nil {
		return nil, fmt.Errorf("%s: failed to decode trace: %w", path, err)
	}
	if tr.Schema != SchemaVersion {
		return nil, fmt.Errorf("%s: schema %d: %w", path, tr.Schema, ErrSchemaMismatch)
	}
	return &tr, nil
}

// Interner materialises trace values back into live values for replay.
// Composite values with the same ref share one instance, so identity
// semantics survive the round trip; distinct refs with equal fields come
// back as distinct but shallow-equal maps.
type Interner struct {
	objs map[string]map[string]any
}

// NewInterner returns an empty interner, scoped to one replayed trace.
func NewInterner() *Interner {
	return &Interner{objs: make(map[string]map[string]any)}
}

// Value converts one trace value into a live value.
func (in *Interner) Value(v Value) any {
	if v.Prim != nil {
		return *v.Prim
	}
	if obj, ok := in.objs[v.Ref]; ok {
		return obj
	}
	obj := make(map[string]any, len(v.Fields))
	for k, tok := range v.Fields {
		obj[k] = tok
	}
	in.objs[v.Ref] = obj
	return obj
}

// Deps converts a cycle's snapshot into a live dependency list; absent
// cycles yield nil.
func (in *Interner) Deps(c Cycle) []any {
	if c.Absent {
		return nil
	}
	deps := make([]any, 0, len(c.Deps))
	for _, v := range c.Deps {
		deps = append(deps, in.Value(v))
	}
	return deps
}
