package diag

import (
	"fmt"
	"strings"
)

// Formatter renders Records as human text, in the manner of the
// teacher's CompilerError.Format/FormatErrors: a short header per
// record plus the accumulated path and parameters, with an optional
// count header when formatting more than one record.
type Formatter struct {
	// Color enables ANSI severity coloring when writing to a terminal.
	Color bool
}

func severityColor(sev Severity) string {
	switch sev {
	case Error:
		return "\033[1;31m" // bold red
	case Warning:
		return "\033[1;33m" // bold yellow
	default:
		return "\033[2m" // dim
	}
}

const colorReset = "\033[0m"

// FormatOne renders a single record.
func (f Formatter) FormatOne(r Record) string {
	var sb strings.Builder
	if f.Color {
		sb.WriteString(severityColor(r.Severity))
	}
	sb.WriteString(fmt.Sprintf("%s: %s", r.Severity, CategoryName(r.Category)))
	if f.Color {
		sb.WriteString(colorReset)
	}
	if p := r.PathString(); p != "" {
		sb.WriteString(" at ")
		sb.WriteString(p)
	}
	if len(r.Params) > 0 {
		args := make([]string, len(r.Params))
		for i, p := range r.Params {
			args[i] = p.String()
		}
		sb.WriteString(" (")
		sb.WriteString(strings.Join(args, ", "))
		sb.WriteString(")")
	}
	return sb.String()
}

// FormatAll renders every record, one per line, with a summary header
// when there is more than one.
func (f Formatter) FormatAll(records []Record) string {
	if len(records) == 0 {
		return ""
	}
	if len(records) == 1 {
		return f.FormatOne(records[0])
	}
	var sb strings.Builder
	errs, warns := 0, 0
	for _, r := range records {
		switch r.Severity {
		case Error:
			errs++
		case Warning:
			warns++
		}
	}
	sb.WriteString(fmt.Sprintf("%d diagnostic(s): %d error(s), %d warning(s)\n\n", len(records), errs, warns))
	for i, r := range records {
		sb.WriteString(fmt.Sprintf("[%d/%d] ", i+1, len(records)))
		sb.WriteString(f.FormatOne(r))
		if i < len(records)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
