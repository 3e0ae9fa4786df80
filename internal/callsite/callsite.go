// Package callsite resolves a human-readable label for the code location
// that created a call-site binding.
//
// Resolution inspects the runtime call stack, skips frames that belong to
// this module, and falls back to "unknown" when nothing useful remains.
// Labels are cosmetic: they appear in diagnostics and never influence
// detection. Resolved labels are cached in a global depot keyed by an
// FNV-1a hash of the program counters, so repeated bindings from the same
// location pay for symbolisation once.
package callsite

import (
	"fmt"
	"hash/fnv"
	"runtime"
	"strings"
	"sync"
)

// Unknown is the fallback label when stack inspection yields nothing.
const Unknown = "unknown"

// maxFrames bounds how deep the resolver looks for a caller outside this
// module. Misuse is visible near the top of the stack.
const maxFrames = 16

// Resolver produces a call-site label. Hosts may plug their own; the
// default inspects the runtime stack.
type Resolver func() string

// labelDepot deduplicates resolved labels by stack hash.
var labelDepot sync.Map // uint64 → string

// Resolve returns a best-effort label for the nearest caller outside this
// module, as "pkg.Func (file:line)". skip counts additional frames to drop
// before the search starts, not including Resolve itself.
func Resolve(skip int) string {
	var pcs [maxFrames]uintptr
	n := runtime.Callers(skip+2, pcs[:])
	if n == 0 {
		return Unknown
	}

	h := fnv.New64a()
	for _, pc := range pcs[:n] {
		var b [8]byte
		for i := 0; i < 8; i++ {
			b[i] = byte(pc >> (8 * i))
		}
		h.Write(b[:])
	}
	key := h.Sum64()
	if cached, ok := labelDepot.Load(key); ok {
		return cached.(string)
	}

	label := symbolize(pcs[:n])
	labelDepot.Store(key, label)
	return label
}

func symbolize(pcs []uintptr) string {
	frames := runtime.CallersFrames(pcs)
	for {
		frame, more := frames.Next()
		if frame.Function == "" {
			if !more {
				break
			}
			continue
		}
		if isInternalFrame(frame.Function) {
			if !more {
				break
			}
			continue
		}
		return fmt.Sprintf("%s (%s:%d)", shortFunc(frame.Function), shortFile(frame.File), frame.Line)
	}
	return Unknown
}

// isInternalFrame filters this module's own frames plus the runtime and
// testing scaffolding so the label points at host code. External test
// packages count as host code.
func isInternalFrame(fn string) bool {
	if strings.Contains(fn, "_test.") {
		return false
	}
	switch {
	case strings.HasPrefix(fn, "hookguard."),
		strings.HasPrefix(fn, "hookguard/"),
		strings.HasPrefix(fn, "runtime."),
		strings.HasPrefix(fn, "testing.tRunner"):
		return true
	}
	return false
}

func shortFunc(fn string) string {
	if i := strings.LastIndex(fn, "/"); i >= 0 {
		return fn[i+1:]
	}
	return fn
}

func shortFile(file string) string {
	if i := strings.LastIndex(file, "/"); i >= 0 {
		return file[i+1:]
	}
	return file
}
