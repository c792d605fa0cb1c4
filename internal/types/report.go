package types

import "time"

// AuditReport is the top-level structure for a complete audit run.
// It is serialized directly for the json and yaml output formats.
type AuditReport struct {
	// Meta describes the run itself.
	Meta ReportMeta `json:"meta" yaml:"meta"`

	// Host describes the audited system.
	Host HostIdentity `json:"host" yaml:"host"`

	// Facts holds the normalized inventory facts.
	Facts HostFacts `json:"facts" yaml:"facts"`

	// Checks is the ordered list of scored verdicts.
	Checks []AuditResult `json:"checks" yaml:"checks"`

	// Summary counts checks per status.
	Summary ReportSummary `json:"summary" yaml:"summary"`

	// Score is the weighted aggregate on a 0-100 scale.
	Score int `json:"score" yaml:"score"`
}

// ReportMeta describes the run that produced a report.
type ReportMeta struct {
	// Tool is the producing tool name.
	Tool string `json:"tool" yaml:"tool"`

	// Version is the hostaudit version that produced this report.
	Version string `json:"version" yaml:"version"`

	// RunID uniquely identifies the run.
	RunID string `json:"run_id" yaml:"run_id"`

	// StartedAt is when the audit started.
	StartedAt time.Time `json:"started_at" yaml:"started_at"`

	// DurationMS is the total audit duration in milliseconds.
	DurationMS int64 `json:"duration_ms" yaml:"duration_ms"`

	// IsRoot indicates whether the audit ran with root privileges.
	IsRoot bool `json:"is_root" yaml:"is_root"`

	// CheckID is set when a single check was targeted by --id.
	CheckID string `json:"check_id,omitempty" yaml:"check_id,omitempty"`

	// Warnings are non-fatal detection warnings.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// HostIdentity describes the system that was audited.
type HostIdentity struct {
	// Hostname is the system hostname.
	Hostname string `json:"hostname" yaml:"hostname"`

	// OS is the operating system name.
	OS string `json:"os" yaml:"os"`

	// OSVersion is the kernel version.
	OSVersion string `json:"os_version" yaml:"os_version"`

	// Arch is the CPU architecture.
	Arch string `json:"arch" yaml:"arch"`

	// DistroID is the Linux distribution ID.
	DistroID string `json:"distro_id,omitempty" yaml:"distro_id,omitempty"`

	// DistroVersion is the Linux distribution version.
	DistroVersion string `json:"distro_version,omitempty" yaml:"distro_version,omitempty"`

	// DistroFamily is the Linux distribution family.
	DistroFamily string `json:"distro_family,omitempty" yaml:"distro_family,omitempty"`

	// EnvType is the environment category (container, vm, bare-metal).
	EnvType string `json:"env_type" yaml:"env_type"`

	// EnvRuntime is the specific runtime (docker, kvm, etc.).
	EnvRuntime string `json:"env_runtime,omitempty" yaml:"env_runtime,omitempty"`

	// MachineID is the stable machine identifier.
	MachineID string `json:"machine_id,omitempty" yaml:"machine_id,omitempty"`
}

// HostFacts holds every normalized fact gathered during a run.
type HostFacts struct {
	DefaultRoute   DefaultRoute       `json:"default_route" yaml:"default_route"`
	DNS            DNSConfig          `json:"dns" yaml:"dns"`
	Proxy          ProxyConfig        `json:"proxy" yaml:"proxy"`
	Host           HostInfo           `json:"host" yaml:"host"`
	CPU            CPUInfo            `json:"cpu" yaml:"cpu"`
	Memory         MemoryInfo         `json:"memory" yaml:"memory"`
	Disks          DiskInventory      `json:"disks" yaml:"disks"`
	Users          UserInventory      `json:"users" yaml:"users"`
	Interfaces     InterfaceInventory `json:"interfaces" yaml:"interfaces"`
	ListeningPorts ListeningPorts     `json:"listening_ports" yaml:"listening_ports"`
}

// ReportSummary provides aggregate statistics for a run.
type ReportSummary struct {
	// TotalChecks is the number of checks executed.
	TotalChecks int `json:"total_checks" yaml:"total_checks"`

	Passed     int `json:"passed" yaml:"passed"`
	Warned     int `json:"warned" yaml:"warned"`
	Failed     int `json:"failed" yaml:"failed"`
	Info       int `json:"info" yaml:"info"`
	NotChecked int `json:"not_checked" yaml:"not_checked"`

	// FactsNotChecked counts facts that no source could satisfy.
	FactsNotChecked int `json:"facts_not_checked" yaml:"facts_not_checked"`
}
