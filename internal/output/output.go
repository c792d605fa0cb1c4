// Package output provides formatters that render audit reports in different formats.
package output

import (
	"fmt"
	"io"

	"github.com/ancients-collective/hostaudit/internal/types"
)

// Formatter writes an audit report to the given writer.
type Formatter interface {
	Write(w io.Writer, report *types.AuditReport) error
}

// Formats lists the accepted --format values.
var Formats = []string{"text", "json", "jsonl", "yaml"}

// Show filters accepted by --show.
const (
	ShowAll      = "all"
	ShowFindings = "findings"
	ShowFail     = "fail"
	ShowPass     = "pass"
)

// New returns the formatter for format. text is configured by text; the
// document formats ignore it.
func New(format string, text TextFormatter) (Formatter, error) {
	switch format {
	case "", "text":
		return &text, nil
	case "json":
		return &JSONFormatter{}, nil
	case "jsonl":
		return &JSONLFormatter{Show: text.Show}, nil
	case "yaml":
		return &YAMLFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// ShouldDisplay reports whether a result passes the show filter.
// findings keeps everything that is neither PASS nor INFO.
func ShouldDisplay(r types.AuditResult, show string) bool {
	switch show {
	case ShowFail:
		return r.Status == types.StatusFail
	case ShowPass:
		return r.Status == types.StatusPass
	case ShowFindings:
		return r.Status != types.StatusPass && r.Status != types.StatusInfo
	default:
		return true
	}
}

// Filter returns the results that pass the show filter, in order.
func Filter(results []types.AuditResult, show string) []types.AuditResult {
	out := make([]types.AuditResult, 0, len(results))
	for _, r := range results {
		if ShouldDisplay(r, show) {
			out = append(out, r)
		}
	}
	return out
}

// TopSeverity returns the most severe finding of r, or "" when it has none.
func TopSeverity(r types.AuditResult) types.Severity {
	var top types.Severity
	for _, f := range r.Findings {
		if top == "" || types.SeverityRank[f.Severity] < types.SeverityRank[top] {
			top = f.Severity
		}
	}
	return top
}
