// Package types defines the fact, evidence and result types shared across hostaudit packages.
package types

import "time"

// Status is the verdict of a check.
type Status string

const (
	// StatusPass means the control is confirmed on.
	StatusPass Status = "PASS"
	// StatusWarn means the control is on but a hardening signal is off,
	// or the output could not be interpreted.
	StatusWarn Status = "WARN"
	// StatusFail means the control is confirmed off.
	StatusFail Status = "FAIL"
	// StatusInfo marks informational results that are not scored.
	StatusInfo Status = "INFO"
	// StatusNotChecked means the probe could not run.
	StatusNotChecked Status = "NOT_CHECKED"
)

// Severity is the importance of a finding.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// SeverityRank orders severities for sorting, most severe first.
var SeverityRank = map[Severity]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
}

// Finding is one human-readable observation owned by an AuditResult.
type Finding struct {
	Severity    Severity `json:"severity" yaml:"severity"`
	Title       string   `json:"title" yaml:"title"`
	Detail      string   `json:"detail" yaml:"detail"`
	Remediation string   `json:"remediation" yaml:"remediation"`
}

// CheckEvidence is the probe history of a check: the tool it relied on,
// every raw probe and the values parsed out of them.
type CheckEvidence struct {
	Tool   string            `json:"tool,omitempty" yaml:"tool,omitempty"`
	Notes  string            `json:"notes,omitempty" yaml:"notes,omitempty"`
	Probes []Evidence        `json:"probes" yaml:"probes"`
	Parsed map[string]string `json:"parsed,omitempty" yaml:"parsed,omitempty"`
}

// AuditResult is the scored verdict for one security control.
type AuditResult struct {
	// ID is the stable check identifier, e.g. "firewall".
	ID string `json:"id" yaml:"id"`

	// Name is the human-readable check name.
	Name string `json:"name" yaml:"name"`

	// Weight is the relative importance of the check in the aggregate score.
	Weight int `json:"weight" yaml:"weight"`

	// Status is the verdict.
	Status Status `json:"status" yaml:"status"`

	// ScoreFactor in [0,1] is applied against Weight.
	ScoreFactor float64 `json:"score_factor" yaml:"score_factor"`

	// Evidence is the probe history behind the verdict.
	Evidence CheckEvidence `json:"evidence" yaml:"evidence"`

	// Findings are ordered observations, empty on a clean PASS.
	Findings []Finding `json:"findings" yaml:"findings"`

	// Duration is how long the check took (not serialized).
	Duration time.Duration `json:"-" yaml:"-"`

	// DurationMS is the duration in milliseconds for serialization.
	DurationMS int64 `json:"duration_ms" yaml:"duration_ms"`
}
