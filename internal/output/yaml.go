package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ancients-collective/hostaudit/internal/types"
)

// YAMLFormatter writes an audit report as a single YAML document.
type YAMLFormatter struct{}

// Write renders the full report as YAML with two-space indentation.
func (f *YAMLFormatter) Write(w io.Writer, report *types.AuditReport) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return err
	}
	return enc.Close()
}
