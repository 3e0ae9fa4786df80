package diagfmt

import (
	"io"
	"os"
	"sync"

	"hookguard/internal/config"
	"hookguard/internal/diag"
)

// Console is a diag.Reporter that renders each diagnostic onto a writer as
// it arrives. It checks the global diagnostics switch on every call and
// becomes inert when diagnostics are disabled; the switch is never cached.
type Console struct {
	mu   sync.Mutex
	w    io.Writer
	opts Options
}

// NewConsole returns a console sink. A nil writer defaults to stderr.
func NewConsole(w io.Writer, opts Options) *Console {
	if w == nil {
		w = os.Stderr
	}
	return &Console{w: w, opts: opts}
}

func (c *Console) Report(d diag.Diagnostic) {
	if c == nil || !config.Enabled() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	Pretty(c.w, []diag.Diagnostic{d}, c.opts)
}
