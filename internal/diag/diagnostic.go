package diag

// Site names the call-site a diagnostic belongs to. Label is the
// best-effort human-readable identifier; ID is the stable handle used for
// deduplication.
type Site struct {
	Label string
	ID    uint32
}

func (s Site) String() string {
	if s.Label != "" {
		return s.Label
	}
	return "unknown"
}

// Diagnostic is one detected issue. Pure value, immutable once built.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Site     Site
	Message  string
	Detail   string
	Remedy   string
}

func New(sev Severity, code Code, site Site, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Site:     site,
		Message:  msg,
	}
}

func NewWarning(code Code, site Site, msg string) Diagnostic {
	return New(SevWarning, code, site, msg)
}

func (d Diagnostic) WithDetail(detail string) Diagnostic {
	d.Detail = detail
	return d
}

func (d Diagnostic) WithRemedy(remedy string) Diagnostic {
	d.Remedy = remedy
	return d
}
