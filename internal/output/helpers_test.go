package output

import (
	"time"

	"github.com/ancients-collective/hostaudit/internal/types"
)

// testTimestamp is a fixed time for deterministic test output.
var testTimestamp = time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)

func probe(stdout string, argv ...string) types.Evidence {
	return types.Evidence{Cmd: argv, Stdout: stdout}
}

// newTestReport builds a representative AuditReport for testing.
func newTestReport() *types.AuditReport {
	return &types.AuditReport{
		Meta: types.ReportMeta{
			Tool:       "hostaudit",
			Version:    "1.0.0",
			RunID:      "5f0c6c0e-8d3b-4f61-9b7c-2a1d3e4f5a6b",
			StartedAt:  testTimestamp,
			DurationMS: 1234,
			IsRoot:     true,
		},
		Host: types.HostIdentity{
			Hostname:      "test-host",
			OS:            "linux",
			OSVersion:     "6.1.0",
			Arch:          "amd64",
			DistroID:      "ubuntu",
			DistroVersion: "22.04",
			DistroFamily:  "debian",
			EnvType:       "vm",
			EnvRuntime:    "kvm",
		},
		Facts: types.HostFacts{
			DefaultRoute: types.DefaultRoute{
				Gateway:    types.Ptr("192.168.1.1"),
				Interface:  types.Ptr("eth0"),
				FactStatus: types.CheckedStatus("ip_route", []types.Evidence{probe("default via 192.168.1.1 dev eth0", "ip", "route", "show", "default")}),
			},
			DNS: types.DNSConfig{
				FactStatus: types.NotCheckedStatus(types.ErrResourceReadError,
					"resolv.conf [resource_read_error]: permission denied", "Make /etc/resolv.conf readable.", nil),
			},
			Proxy: types.ProxyConfig{
				HTTPSProxy: types.Ptr("http://proxy.corp:3128"),
				NoProxy:    types.Ptr("localhost,127.0.0.1"),
				Sources:    []string{"env"},
				FactStatus: types.CheckedStatus("env", nil),
			},
			Memory: types.MemoryInfo{
				TotalBytes: types.Ptr(uint64(8 << 30)),
				FactStatus: types.CheckedStatus("gopsutil/mem", nil),
			},
			ListeningPorts: types.ListeningPorts{
				TCP:        []types.SocketEntry{},
				UDP:        []types.SocketEntry{},
				FactStatus: types.NotCheckedStatus(types.ErrProbeUnavailable, "permission denied", "Run with elevated privileges.", nil),
			},
		},
		Checks: []types.AuditResult{
			{
				ID:          "firewall",
				Name:        "Firewall status (ufw / firewalld)",
				Weight:      10,
				Status:      types.StatusFail,
				ScoreFactor: 0,
				Evidence: types.CheckEvidence{
					Tool:   "ufw",
					Probes: []types.Evidence{probe("Status: inactive", "ufw", "status", "verbose")},
					Parsed: map[string]string{"ufw_status": "off"},
				},
				Findings: []types.Finding{{
					Severity:    types.SeverityHigh,
					Title:       "Firewall is disabled",
					Detail:      "ufw reports Status: inactive.",
					Remediation: "Enable the firewall with `ufw enable` after allowing required services.",
				}},
				DurationMS: 12,
			},
			{
				ID:          "disk_encryption",
				Name:        "Disk encryption status (dm-crypt)",
				Weight:      20,
				Status:      types.StatusPass,
				ScoreFactor: 1,
				Evidence: types.CheckEvidence{
					Tool:   "lsblk",
					Probes: []types.Evidence{probe("disk\ncrypt", "lsblk", "-rno", "TYPE")},
				},
				Findings:   []types.Finding{},
				DurationMS: 3,
			},
		},
		Summary: types.ReportSummary{TotalChecks: 2, Passed: 1, Failed: 1, FactsNotChecked: 2},
		Score:   67,
	}
}

// newCleanReport builds a report with no findings.
func newCleanReport() *types.AuditReport {
	r := newTestReport()
	r.Checks = r.Checks[1:]
	r.Summary = types.ReportSummary{TotalChecks: 1, Passed: 1}
	r.Facts.DNS = types.DNSConfig{
		Nameservers:   []string{"10.0.0.53"},
		SearchDomains: []string{"corp.example"},
		FactStatus:    types.CheckedStatus("resolv.conf", nil),
	}
	r.Facts.ListeningPorts = types.ListeningPorts{}
	r.Score = 100
	return r
}

// newWarnReport builds a report with a WARN and a NOT_CHECKED result.
func newWarnReport() *types.AuditReport {
	r := newTestReport()
	r.Checks = []types.AuditResult{
		{
			ID: "firewall", Name: "Firewall status (socketfilterfw)", Weight: 10,
			Status: types.StatusWarn, ScoreFactor: 0.5,
			Evidence: types.CheckEvidence{Probes: []types.Evidence{}},
			Findings: []types.Finding{{Severity: types.SeverityLow, Title: "Stealth mode is disabled"}},
		},
		{
			ID: "disk_encryption", Name: "FileVault disk encryption status", Weight: 20,
			Status: types.StatusNotChecked, ScoreFactor: 0.6,
			Evidence: types.CheckEvidence{Probes: []types.Evidence{}},
			Findings: []types.Finding{{Severity: types.SeverityMedium, Title: "Could not query FileVault status"}},
		},
	}
	r.Summary = types.ReportSummary{TotalChecks: 2, Warned: 1, NotChecked: 1}
	r.Score = 57
	return r
}

// newEmptyReport builds a report with zero results.
func newEmptyReport() *types.AuditReport {
	return &types.AuditReport{
		Meta:   types.ReportMeta{Tool: "hostaudit", Version: "1.0.0", StartedAt: testTimestamp, IsRoot: true},
		Host:   types.HostIdentity{Hostname: "empty-host", OS: "linux", EnvType: "bare-metal"},
		Checks: []types.AuditResult{},
	}
}
