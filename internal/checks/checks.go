// Package checks classifies security controls (firewall, disk encryption)
// into scored AuditResults. Every platform exposes the same check IDs; a
// platform without an implementation reports them as NOT_CHECKED.
package checks

import (
	"context"
	"fmt"

	"github.com/ancients-collective/hostaudit/internal/engine"
	"github.com/ancients-collective/hostaudit/internal/parse"
	"github.com/ancients-collective/hostaudit/internal/types"
)

// Check identifiers, stable across platforms.
const (
	IDFirewall       = "firewall"
	IDDiskEncryption = "disk_encryption"
)

// Default scoring constants.
const (
	DefaultUnknownFactor = 0.6
	DefaultPartialFactor = 0.5
)

// DefaultWeights are the relative importance of each check.
var DefaultWeights = map[string]int{
	IDFirewall:       10,
	IDDiskEncryption: 20,
}

// Scoring holds the score factors and weights applied to verdicts.
type Scoring struct {
	// UnknownFactor is applied to NOT_CHECKED results.
	UnknownFactor float64
	// PartialFactor is applied to WARN results.
	PartialFactor float64
	// Weights overrides DefaultWeights per check ID.
	Weights map[string]int
}

// DefaultScoring returns the built-in factors and weights.
func DefaultScoring() Scoring {
	return Scoring{
		UnknownFactor: DefaultUnknownFactor,
		PartialFactor: DefaultPartialFactor,
		Weights:       map[string]int{},
	}
}

// Weight returns the configured weight for id, falling back to the default
// and finally to 1.
func (s Scoring) Weight(id string) int {
	if w, ok := s.Weights[id]; ok && w > 0 {
		return w
	}
	if w, ok := DefaultWeights[id]; ok {
		return w
	}
	return 1
}

// probeFunc performs the probes of one check and classifies them.
type probeFunc func(ctx context.Context, r engine.Runner, b *Builder) types.AuditResult

// Check is one scored control as implemented on the current platform.
type Check struct {
	ID   string
	Name string

	probe probeFunc
}

// Registry holds the checks of one platform.
type Registry struct {
	runner  engine.Runner
	scoring Scoring
	checks  []Check
}

// New returns the checks for goos, probing through runner.
func New(goos string, runner engine.Runner, scoring Scoring) *Registry {
	r := &Registry{runner: runner, scoring: scoring}
	switch goos {
	case types.PlatformDarwin:
		r.checks = darwinChecks()
	case types.PlatformLinux:
		r.checks = linuxChecks()
	case types.PlatformWindows:
		r.checks = windowsChecks()
	default:
		r.checks = []Check{
			{ID: IDFirewall, Name: "Firewall status", probe: unsupported(goos)},
			{ID: IDDiskEncryption, Name: "Disk encryption status", probe: unsupported(goos)},
		}
	}
	return r
}

// Checks returns the checks in execution order.
func (r *Registry) Checks() []Check {
	return append([]Check(nil), r.checks...)
}

// IDs returns the check identifiers in execution order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.checks))
	for i, c := range r.checks {
		ids[i] = c.ID
	}
	return ids
}

// Lookup finds a check by ID.
func (r *Registry) Lookup(id string) (Check, bool) {
	for _, c := range r.checks {
		if c.ID == id {
			return c, true
		}
	}
	return Check{}, false
}

// Run executes one check. It never fails: probe problems become NOT_CHECKED.
func (r *Registry) Run(ctx context.Context, c Check) types.AuditResult {
	return c.probe(ctx, r.runner, NewBuilder(c.ID, c.Name, r.scoring))
}

func unsupported(goos string) probeFunc {
	return func(_ context.Context, _ engine.Runner, b *Builder) types.AuditResult {
		return b.NotChecked(types.Finding{
			Title:       "Check not supported",
			Detail:      fmt.Sprintf("not supported on %s", goos),
			Remediation: "Verify this control manually.",
		})
	}
}

// run executes argv and records it on b.
func run(ctx context.Context, r engine.Runner, b *Builder, argv ...string) types.Evidence {
	ev := engine.Record(argv, r.Run(ctx, argv))
	b.Probe(ev)
	return ev
}

// usable reports whether a probe produced output worth classifying.
func usable(ev types.Evidence) bool {
	kind, _ := engine.Classify(ev)
	return kind == ""
}

// control describes how the primary state of one on/off control is reported.
type control struct {
	subject     string
	offSeverity types.Severity
	offTitle    string
	offDetail   string
	offFix      string
}

func (c control) verdict(b *Builder, output string, state parse.State) types.AuditResult {
	switch state {
	case parse.StateOn:
		return b.Pass()
	case parse.StateOff:
		return b.Fail(types.Finding{
			Severity:    c.offSeverity,
			Title:       c.offTitle,
			Detail:      c.offDetail,
			Remediation: c.offFix,
		})
	default:
		return b.Unexpected(c.subject, output)
	}
}
