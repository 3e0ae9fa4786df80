package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"hookguard/internal/diag"
)

var (
	infoColor    = color.New(color.FgCyan)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	codeColor    = color.New(color.FgWhite, color.Faint)
)

// Pretty renders diagnostics in a fixed template order:
//
//	<site>: <SEVERITY> <CODE>: <message>
//	    detail: <detail>
//	    remedy: <remedy>
//
// Callers that need stable order should sort the input first.
func Pretty(w io.Writer, diags []diag.Diagnostic, opts Options) {
	for _, d := range diags {
		writeLine(w, opts, fmt.Sprintf("%s: %s %s: %s",
			d.Site, severityLabel(d.Severity, opts.Color), codeLabel(d.Code, opts.Color), d.Message))
		if opts.ShowDetail && d.Detail != "" {
			writeLine(w, opts, "    detail: "+d.Detail)
		}
		if opts.ShowRemedy && d.Remedy != "" {
			writeLine(w, opts, "    remedy: "+d.Remedy)
		}
	}
}

// Render returns the pretty form of a single diagnostic as a string.
func Render(d diag.Diagnostic, opts Options) string {
	var sb strings.Builder
	Pretty(&sb, []diag.Diagnostic{d}, opts)
	return sb.String()
}

func writeLine(w io.Writer, opts Options, line string) {
	if opts.Width > 0 {
		line = runewidth.Truncate(line, opts.Width, "…")
	}
	fmt.Fprintln(w, line)
}

func severityLabel(s diag.Severity, colored bool) string {
	if !colored {
		return s.String()
	}
	switch s {
	case diag.SevInfo:
		return infoColor.Sprint(s.String())
	case diag.SevWarning:
		return warningColor.Sprint(s.String())
	case diag.SevError:
		return errorColor.Sprint(s.String())
	}
	return s.String()
}

func codeLabel(c diag.Code, colored bool) string {
	if !colored {
		return c.ID()
	}
	return codeColor.Sprint(c.ID())
}
