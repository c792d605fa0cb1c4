// Package report assembles the AuditReport of a run, computes its
// aggregate score and persists it atomically.
package report

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/ancients-collective/hostaudit/internal/types"
)

// Tool is the producer name recorded in report metadata.
const Tool = "hostaudit"

// Input gathers what a finished run contributes to its report.
type Input struct {
	Version   string
	StartedAt time.Time
	Duration  time.Duration
	IsRoot    bool
	CheckID   string
	Warnings  []string

	Host   types.HostIdentity
	Facts  types.HostFacts
	Checks []types.AuditResult
}

// Build assembles the report for in and assigns it a fresh run ID.
func Build(in Input) *types.AuditReport {
	results := in.Checks
	if results == nil {
		results = []types.AuditResult{}
	}

	summary := Summarize(results)
	summary.FactsNotChecked = FactsNotChecked(in.Facts)

	return &types.AuditReport{
		Meta: types.ReportMeta{
			Tool:       Tool,
			Version:    in.Version,
			RunID:      uuid.NewString(),
			StartedAt:  in.StartedAt.UTC(),
			DurationMS: in.Duration.Milliseconds(),
			IsRoot:     in.IsRoot,
			CheckID:    in.CheckID,
			Warnings:   in.Warnings,
		},
		Host:    in.Host,
		Facts:   in.Facts,
		Checks:  results,
		Summary: summary,
		Score:   Score(results),
	}
}

// Score is round(100 * Σ(weight × factor) / Σ weight) over every result
// that is not INFO. It is 0 when nothing is scorable.
func Score(results []types.AuditResult) int {
	var weighted, total float64
	for _, r := range results {
		if r.Status == types.StatusInfo || r.Weight <= 0 {
			continue
		}
		weighted += float64(r.Weight) * r.ScoreFactor
		total += float64(r.Weight)
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * weighted / total))
}

// Summarize counts results per status.
func Summarize(results []types.AuditResult) types.ReportSummary {
	s := types.ReportSummary{TotalChecks: len(results)}
	for _, r := range results {
		switch r.Status {
		case types.StatusPass:
			s.Passed++
		case types.StatusWarn:
			s.Warned++
		case types.StatusFail:
			s.Failed++
		case types.StatusInfo:
			s.Info++
		case types.StatusNotChecked:
			s.NotChecked++
		}
	}
	return s
}

// FactsNotChecked counts the facts no source could satisfy.
func FactsNotChecked(f types.HostFacts) int {
	n := 0
	for _, s := range []types.FactStatus{
		f.DefaultRoute.FactStatus,
		f.DNS.FactStatus,
		f.Proxy.FactStatus,
		f.Host.FactStatus,
		f.CPU.FactStatus,
		f.Memory.FactStatus,
		f.Disks.FactStatus,
		f.Users.FactStatus,
		f.Interfaces.FactStatus,
		f.ListeningPorts.FactStatus,
	} {
		if s.NotChecked {
			n++
		}
	}
	return n
}
