package diagfmt

import (
	"encoding/json"
	"io"

	"hookguard/internal/diag"
)

// DiagnosticJSON is the stable machine-readable form of one diagnostic.
type DiagnosticJSON struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Site     string `json:"site"`
	SiteID   uint32 `json:"site_id"`
	Message  string `json:"message"`
	Detail   string `json:"detail,omitempty"`
	Remedy   string `json:"remedy,omitempty"`
}

// Output is the root structure of the JSON document.
type Output struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

// BuildOutput converts diagnostics into the JSON document structure without
// serialising it.
func BuildOutput(diags []diag.Diagnostic, opts JSONOpts) Output {
	n := len(diags)
	if opts.Max > 0 && opts.Max < n {
		n = opts.Max
	}
	out := Output{
		Diagnostics: make([]DiagnosticJSON, 0, n),
		Count:       len(diags),
	}
	for _, d := range diags[:n] {
		out.Diagnostics = append(out.Diagnostics, DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Site:     d.Site.String(),
			SiteID:   d.Site.ID,
			Message:  d.Message,
			Detail:   d.Detail,
			Remedy:   d.Remedy,
		})
	}
	return out
}

// JSON serialises diagnostics to w.
func JSON(w io.Writer, diags []diag.Diagnostic, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	if opts.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(BuildOutput(diags, opts))
}
