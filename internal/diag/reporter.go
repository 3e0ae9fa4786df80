package diag

// Reporter is the minimal contract for receiving diagnostics from the
// checks. Implementations: BagReporter (collects into a Bag), NopReporter,
// DedupReporter (suppresses repeats), diagfmt.Console (renders to a sink).
type Reporter interface {
	Report(d Diagnostic)
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}

// BagReporter collects diagnostics into a Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}

// ReportBuilder accumulates diagnostic details before emitting to a
// Reporter.
type ReportBuilder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

// NewReportBuilder constructs a builder bound to a Reporter.
func NewReportBuilder(r Reporter, sev Severity, code Code, site Site, msg string) *ReportBuilder {
	return &ReportBuilder{
		reporter: r,
		diag:     New(sev, code, site, msg),
	}
}

// ReportWarning is a shortcut for SevWarning diagnostics.
func ReportWarning(r Reporter, code Code, site Site, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, code, site, msg)
}

// ReportError is a shortcut for SevError diagnostics.
func ReportError(r Reporter, code Code, site Site, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, site, msg)
}

// WithDetail attaches contextual detail text.
func (b *ReportBuilder) WithDetail(detail string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithDetail(detail)
	return b
}

// WithRemedy attaches a one-line suggestion.
func (b *ReportBuilder) WithRemedy(remedy string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithRemedy(remedy)
	return b
}

// Emit sends the diagnostic to the underlying reporter exactly once.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	if b.reporter != nil {
		b.reporter.Report(b.diag)
	}
	b.emitted = true
}

// Diagnostic returns the accumulated diagnostic without emitting.
func (b *ReportBuilder) Diagnostic() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	return b.diag
}
