package output

import (
	"encoding/json"
	"io"

	"github.com/ancients-collective/hostaudit/internal/types"
)

// JSONFormatter writes an audit report as a single JSON object.
type JSONFormatter struct{}

// Write renders the full report as pretty-printed JSON.
func (f *JSONFormatter) Write(w io.Writer, report *types.AuditReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(report)
}
