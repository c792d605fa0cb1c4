package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/ancients-collective/hostaudit/internal/types"
)

// JSONLFormatter writes an audit as newline-delimited JSON (one object per line).
// The first line is a header with run, host and summary information, the
// second the resolved facts, and each subsequent line one check result.
type JSONLFormatter struct {
	// Show filters the result lines; the header always carries the full summary.
	Show string
}

// Write renders the audit as JSONL: header line + facts line + one line per result.
func (f *JSONLFormatter) Write(w io.Writer, report *types.AuditReport) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	header := struct {
		Type      string              `json:"type"`
		Tool      string              `json:"tool"`
		Version   string              `json:"version"`
		RunID     string              `json:"run_id"`
		Timestamp string              `json:"timestamp"`
		Host      types.HostIdentity  `json:"host"`
		Summary   types.ReportSummary `json:"summary"`
		Score     int                 `json:"score"`
	}{
		Type:      "header",
		Tool:      report.Meta.Tool,
		Version:   report.Meta.Version,
		RunID:     report.Meta.RunID,
		Timestamp: report.Meta.StartedAt.Format(time.RFC3339),
		Host:      report.Host,
		Summary:   report.Summary,
		Score:     report.Score,
	}
	if err := enc.Encode(header); err != nil {
		return err
	}

	facts := struct {
		Type  string          `json:"type"`
		Facts types.HostFacts `json:"facts"`
	}{
		Type:  "facts",
		Facts: report.Facts,
	}
	if err := enc.Encode(facts); err != nil {
		return err
	}

	for _, r := range Filter(report.Checks, f.Show) {
		line := struct {
			Type   string            `json:"type"`
			Result types.AuditResult `json:"result"`
		}{
			Type:   "result",
			Result: r,
		}
		if err := enc.Encode(line); err != nil {
			return err
		}
	}

	return nil
}
