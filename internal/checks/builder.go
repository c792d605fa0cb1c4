package checks

import (
	"fmt"
	"strings"
	"time"

	"github.com/ancients-collective/hostaudit/internal/parse"
	"github.com/ancients-collective/hostaudit/internal/types"
)

// Builder accumulates the probe history of one check and turns it into
// exactly one AuditResult. Each terminal method fixes status, score factor
// and findings together so the invariants between them cannot drift.
type Builder struct {
	result  types.AuditResult
	scoring Scoring
	start   time.Time
}

// NewBuilder starts a result for the check id.
func NewBuilder(id, name string, scoring Scoring) *Builder {
	return &Builder{
		result: types.AuditResult{
			ID:     id,
			Name:   name,
			Weight: scoring.Weight(id),
			Evidence: types.CheckEvidence{
				Probes: []types.Evidence{},
			},
		},
		scoring: scoring,
		start:   time.Now(),
	}
}

// Tool names the binary the verdict relies on.
func (b *Builder) Tool(tool, notes string) *Builder {
	b.result.Evidence.Tool = tool
	b.result.Evidence.Notes = notes
	return b
}

// Probe appends a raw probe record.
func (b *Builder) Probe(ev types.Evidence) {
	b.result.Evidence.Probes = append(b.result.Evidence.Probes, ev)
}

// Parsed records a value interpreted from the probes.
func (b *Builder) Parsed(key, value string) {
	if b.result.Evidence.Parsed == nil {
		b.result.Evidence.Parsed = make(map[string]string)
	}
	b.result.Evidence.Parsed[key] = value
}

// ParsedState records a classified control state.
func (b *Builder) ParsedState(key string, s parse.State) {
	b.Parsed(key, stateString(s))
}

// Pass reports the control as confirmed on.
func (b *Builder) Pass() types.AuditResult {
	return b.finish(types.StatusPass, 1.0)
}

// Warn reports a control that is on with a weakened hardening signal.
func (b *Builder) Warn(f types.Finding) types.AuditResult {
	return b.finish(types.StatusWarn, b.scoring.PartialFactor, f)
}

// Fail reports the control as confirmed off.
func (b *Builder) Fail(f types.Finding) types.AuditResult {
	return b.finish(types.StatusFail, 0.0, f)
}

// NotChecked reports that the control could not be probed. The finding is
// always MEDIUM.
func (b *Builder) NotChecked(f types.Finding) types.AuditResult {
	f.Severity = types.SeverityMedium
	return b.finish(types.StatusNotChecked, b.scoring.UnknownFactor, f)
}

// ProbeFailed reports a probe that could not run, quoting its exit code
// and whatever it printed.
func (b *Builder) ProbeFailed(ev types.Evidence, title, remediation string) types.AuditResult {
	tool := "probe"
	if len(ev.Cmd) > 0 {
		tool = ev.Cmd[0]
	}
	msg := ev.Stderr
	if msg == "" {
		msg = ev.Stdout
	}
	return b.NotChecked(types.Finding{
		Title:       title,
		Detail:      strings.TrimSpace(fmt.Sprintf("%s failed (rc=%d). %s", tool, ev.RC, msg)),
		Remediation: remediation,
	})
}

// Unexpected reports well-formed output that matched no known phrase. The
// output is quoted verbatim so the phrase list can be extended.
func (b *Builder) Unexpected(subject, output string) types.AuditResult {
	return b.Warn(types.Finding{
		Severity:    types.SeverityLow,
		Title:       subject + " could not be interpreted",
		Detail:      fmt.Sprintf("Unexpected output: %q", output),
		Remediation: "Verify the setting manually and extend the recognised phrases if needed.",
	})
}

func (b *Builder) finish(status types.Status, factor float64, findings ...types.Finding) types.AuditResult {
	b.result.Status = status
	b.result.ScoreFactor = factor
	b.result.Findings = append([]types.Finding{}, findings...)
	b.result.Duration = time.Since(b.start)
	b.result.DurationMS = b.result.Duration.Milliseconds()
	return b.result
}

func stateString(s parse.State) string {
	if s == parse.StateUnknown {
		return "unknown"
	}
	return string(s)
}
