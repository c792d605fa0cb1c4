package report

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ancients-collective/hostaudit/internal/types"
)

func result(id string, weight int, status types.Status, factor float64) types.AuditResult {
	return types.AuditResult{ID: id, Name: id, Weight: weight, Status: status, ScoreFactor: factor,
		Evidence: types.CheckEvidence{Probes: []types.Evidence{}}, Findings: []types.Finding{}}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name    string
		results []types.AuditResult
		want    int
	}{
		{"no checks", nil, 0},
		{"all pass", []types.AuditResult{
			result("firewall", 10, types.StatusPass, 1),
			result("disk_encryption", 20, types.StatusPass, 1),
		}, 100},
		{"firewall off", []types.AuditResult{
			result("firewall", 10, types.StatusFail, 0),
			result("disk_encryption", 20, types.StatusPass, 1),
		}, 67},
		{"unknown and partial", []types.AuditResult{
			result("firewall", 10, types.StatusWarn, 0.5),
			result("disk_encryption", 20, types.StatusNotChecked, 0.6),
		}, 57},
		{"info is not scored", []types.AuditResult{
			result("firewall", 10, types.StatusFail, 0),
			result("inventory", 50, types.StatusInfo, 1),
		}, 0},
		{"only info", []types.AuditResult{result("inventory", 5, types.StatusInfo, 1)}, 0},
		{"rounds half up", []types.AuditResult{
			result("a", 1, types.StatusPass, 1),
			result("b", 1, types.StatusWarn, 0.01),
		}, 51},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.results))
		})
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize([]types.AuditResult{
		result("a", 1, types.StatusPass, 1),
		result("b", 1, types.StatusWarn, 0.5),
		result("c", 1, types.StatusFail, 0),
		result("d", 1, types.StatusNotChecked, 0.6),
		result("e", 1, types.StatusInfo, 1),
		result("f", 1, types.StatusFail, 0),
	})

	assert.Equal(t, types.ReportSummary{TotalChecks: 6, Passed: 1, Warned: 1, Failed: 2, Info: 1, NotChecked: 1}, got)
}

func TestBuild(t *testing.T) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	facts := types.HostFacts{
		DefaultRoute: types.DefaultRoute{FactStatus: types.NotCheckedStatus(types.ErrProbeFailed, "x", "y", nil)},
		DNS:          types.DNSConfig{Nameservers: []string{"1.1.1.1"}, FactStatus: types.CheckedStatus("resolv.conf", nil)},
		Memory:       types.MemoryInfo{FactStatus: types.NotCheckedStatus(types.ErrProbeUnavailable, "denied", "sudo", nil)},
	}

	rep := Build(Input{
		Version:   "1.2.3",
		StartedAt: started,
		Duration:  1500 * time.Millisecond,
		IsRoot:    true,
		CheckID:   "firewall",
		Host:      types.HostIdentity{Hostname: "web-1", OS: "linux"},
		Facts:     facts,
		Checks:    []types.AuditResult{result("firewall", 10, types.StatusPass, 1)},
	})

	assert.Equal(t, Tool, rep.Meta.Tool)
	assert.Equal(t, "1.2.3", rep.Meta.Version)
	_, err := uuid.Parse(rep.Meta.RunID)
	assert.NoError(t, err)
	assert.Equal(t, time.UTC, rep.Meta.StartedAt.Location())
	assert.True(t, started.Equal(rep.Meta.StartedAt))
	assert.Equal(t, int64(1500), rep.Meta.DurationMS)
	assert.True(t, rep.Meta.IsRoot)
	assert.Equal(t, "firewall", rep.Meta.CheckID)
	assert.Equal(t, "web-1", rep.Host.Hostname)
	assert.Equal(t, 100, rep.Score)
	assert.Equal(t, 1, rep.Summary.Passed)
	assert.Equal(t, 2, rep.Summary.FactsNotChecked)

	other := Build(Input{})
	assert.NotEqual(t, rep.Meta.RunID, other.Meta.RunID, "every run gets its own ID")
	assert.NotNil(t, other.Checks)
	assert.Equal(t, 0, other.Score)
}

func TestReport_JSONRoundTrip(t *testing.T) {
	rep := Build(Input{
		Version:   "dev",
		StartedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Facts: types.HostFacts{
			DefaultRoute: types.DefaultRoute{
				Gateway:    types.Ptr("10.0.0.1"),
				Interface:  types.Ptr("eth0"),
				FactStatus: types.CheckedStatus("ip_route", []types.Evidence{{Cmd: []string{"ip", "route", "show", "default"}, Stdout: "default via 10.0.0.1 dev eth0"}}),
			},
			Proxy: types.ProxyConfig{
				HTTPProxy:  types.Ptr("http://proxy:3128"),
				Sources:    []string{"env"},
				FactStatus: types.CheckedStatus("env", nil),
			},
		},
		Checks: []types.AuditResult{{
			ID: "firewall", Name: "Firewall", Weight: 10, Status: types.StatusFail,
			Evidence: types.CheckEvidence{Tool: "ufw", Probes: []types.Evidence{{Cmd: []string{"ufw", "status", "verbose"}, Stdout: "Status: inactive"}}},
			Findings: []types.Finding{{Severity: types.SeverityHigh, Title: "Firewall is disabled"}},
			Duration: 3 * time.Millisecond, DurationMS: 3,
		}},
	})

	data, err := json.Marshal(rep)
	require.NoError(t, err)

	var back types.AuditReport
	require.NoError(t, json.Unmarshal(data, &back))

	diff := cmp.Diff(*rep, back,
		cmpopts.IgnoreFields(types.AuditResult{}, "Duration"),
		cmpopts.EquateEmpty(),
	)
	assert.Empty(t, diff)
}

func TestReport_JSONShape(t *testing.T) {
	rep := Build(Input{
		Facts: types.HostFacts{
			DNS: types.DNSConfig{FactStatus: types.NotCheckedStatus(types.ErrResourceReadError, "unreadable", "check permissions", nil)},
		},
	})
	data, err := json.Marshal(rep)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.ElementsMatch(t, []string{"meta", "host", "facts", "checks", "summary", "score"}, keys(doc))

	dns := doc["facts"].(map[string]any)["dns"].(map[string]any)
	assert.Equal(t, true, dns["not_checked"])
	assert.Equal(t, "unreadable", dns["error"])
	assert.Equal(t, "resource_read_error", dns["error_kind"])
	assert.Nil(t, dns["source"])
	assert.Equal(t, []any{}, dns["evidence"])
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestValidateOutputPath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"report.json", false},
		{filepath.Join(os.TempDir(), "out", "report.json"), false},
		{"/etc/hostaudit.json", true},
		{"/etc", true},
		{"/proc/self/x", true},
		{"/usr/local/share/report.json", true},
		{"/tmp/../etc/passwd", true},
		{"/etcetera/report.json", false},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := ValidateOutputPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWriteFile_CreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "report.json")

	err := WriteFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, `{"score":100}`)
		return err
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"score":100}`, string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestWriteFile_FailedWriteKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0o644))

	err := WriteFile(path, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return errors.New("encoder exploded")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encoder exploded")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteFile_RefusesSystemPath(t *testing.T) {
	called := false
	err := WriteFile("/etc/hostaudit-report.json", func(io.Writer) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to write")
	assert.False(t, called)
}
