// Package diagfmt renders diagnostics for human and machine consumption.
// It owns all formatting concerns; the diag package stays data-only.
package diagfmt

// Options configures pretty-printing of diagnostics.
type Options struct {
	Color bool
	// Width is the maximum display width per line, 0 for unlimited.
	Width int
	// ShowDetail includes the detail line when present.
	ShowDetail bool
	// ShowRemedy includes the remedy line when present.
	ShowRemedy bool
}

// DefaultOptions returns the options used by the runtime console sink.
func DefaultOptions() Options {
	return Options{ShowDetail: true, ShowRemedy: true}
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	// Max truncates the output, not the underlying bag. 0 means no limit.
	Max int
	// Indent pretty-prints the JSON document.
	Indent bool
}
